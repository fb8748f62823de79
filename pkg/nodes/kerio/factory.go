// Package kerionode provides the Kerio Connect node factories for the registry system.
package kerionode

import (
	"context"
	"log/slog"
	"slices"

	"github.com/dukex/operion-kerio/pkg/eventbus"
	"github.com/dukex/operion-kerio/pkg/kerio"
	"github.com/dukex/operion-kerio/pkg/models"
	"github.com/dukex/operion-kerio/pkg/operations"
	"github.com/dukex/operion-kerio/pkg/protocol"
)

const (
	UserNodeType          = "kerio:user"
	AuthNodeType          = "kerio:auth"
	AutoresponderNodeType = "kerio:autoresponder"
	PasswordNodeType      = "kerio:password"
)

// KerioNodeFactory creates KerioNode instances restricted to a set of
// resources, and optionally to one operation.
type KerioNodeFactory struct {
	id          string
	name        string
	description string
	resources   []string
	operation   string

	logger            *slog.Logger
	publisher         eventbus.EventPublisher
	clientOptions     []kerio.Option
	translatorOptions []operations.Option
}

// FactoryOption configures a KerioNodeFactory.
type FactoryOption func(*KerioNodeFactory)

func WithLogger(logger *slog.Logger) FactoryOption {
	return func(f *KerioNodeFactory) {
		f.logger = logger
	}
}

// WithEventPublisher publishes an audit event for every execution.
func WithEventPublisher(publisher eventbus.EventPublisher) FactoryOption {
	return func(f *KerioNodeFactory) {
		f.publisher = publisher
	}
}

func WithClientOptions(opts ...kerio.Option) FactoryOption {
	return func(f *KerioNodeFactory) {
		f.clientOptions = append(f.clientOptions, opts...)
	}
}

func WithTranslatorOptions(opts ...operations.Option) FactoryOption {
	return func(f *KerioNodeFactory) {
		f.translatorOptions = append(f.translatorOptions, opts...)
	}
}

func newFactory(id, name, description string, resources []string, operation string, opts []FactoryOption) *KerioNodeFactory {
	f := &KerioNodeFactory{
		id:          id,
		name:        name,
		description: description,
		resources:   resources,
		operation:   operation,
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// NewUserNodeFactory creates the factory for the node exposing every resource.
func NewUserNodeFactory(opts ...FactoryOption) protocol.NodeFactory {
	return newFactory(UserNodeType, "Kerio Connect User",
		"Runs Kerio Connect groupware operations (mail, calendar, contacts, tasks, notes, delegation, settings) for the configured account",
		operations.Resources(), "", opts)
}

// NewAuthNodeFactory creates the factory for login and logout.
func NewAuthNodeFactory(opts ...FactoryOption) protocol.NodeFactory {
	return newFactory(AuthNodeType, "Kerio Connect Authentication",
		"Logs in to Kerio Connect and returns the session token and cookie, or invalidates a session",
		[]string{"authentication"}, "", opts)
}

// NewAutoresponderNodeFactory creates the factory for out-of-office settings.
func NewAutoresponderNodeFactory(opts ...FactoryOption) protocol.NodeFactory {
	return newFactory(AutoresponderNodeType, "Kerio Connect Autoresponder",
		"Reads, sets, schedules or disables the out-of-office reply",
		[]string{"autoresponder"}, "", opts)
}

// NewPasswordNodeFactory creates the factory for password changes.
func NewPasswordNodeFactory(opts ...FactoryOption) protocol.NodeFactory {
	return newFactory(PasswordNodeType, "Kerio Connect Password",
		"Changes the account password",
		[]string{"misc"}, "changePassword", opts)
}

// Create creates a new KerioNode instance.
func (f *KerioNodeFactory) Create(ctx context.Context, id string, config map[string]any) (models.Node, error) {
	return NewKerioNode(id, f, config)
}

func (f *KerioNodeFactory) ID() string {
	return f.id
}

func (f *KerioNodeFactory) Name() string {
	return f.name
}

func (f *KerioNodeFactory) Description() string {
	return f.description
}

// operationNames returns the operation names reachable through this factory.
func (f *KerioNodeFactory) operationNames() []string {
	var names []string

	for _, d := range operations.Descriptors() {
		if !slices.Contains(f.resources, d.Resource) {
			continue
		}

		if f.operation != "" && d.Operation != f.operation || slices.Contains(names, d.Operation) {
			continue
		}

		names = append(names, d.Operation)
	}

	return names
}

// defaultResource is the resource used when the config omits one.
func (f *KerioNodeFactory) defaultResource() string {
	if len(f.resources) == 1 {
		return f.resources[0]
	}

	return ""
}

// Schema returns the JSON schema for Kerio node configuration.
func (f *KerioNodeFactory) Schema() map[string]any {
	required := []string{"credentials"}
	if f.defaultResource() == "" {
		required = append(required, "resource")
	}

	if f.operation == "" {
		required = append(required, "operation")
	}

	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"resource": map[string]any{
				"type":        "string",
				"description": "Groupware resource",
				"enum":        f.resources,
			},
			"operation": map[string]any{
				"type":        "string",
				"description": "Operation on the resource",
				"enum":        f.operationNames(),
			},
			"fields": map[string]any{
				"type":        "object",
				"description": "Operation fields. String values support templating; token and cookie carry the session",
				"examples": []map[string]any{
					{
						"token":  "{{.node_results.login.token}}",
						"cookie": "{{.node_results.login.cookie}}",
					},
					{
						"token":        "{{.node_results.login.token}}",
						"cookie":       "{{.node_results.login.cookie}}",
						"to":           "{{.trigger_data.webhook.email}}",
						"subject":      "Welcome",
						"emailContent": "Hello {{.trigger_data.webhook.name}}",
					},
				},
			},
			"credentials": map[string]any{
				"type":        "object",
				"description": "Kerio Connect account. Values support templating",
				"properties": map[string]any{
					"serverUrl": map[string]any{"type": "string", "description": "Server base URL, e.g. https://mail.example.com"},
					"username":  map[string]any{"type": "string"},
					"password":  map[string]any{"type": "string"},
					"ignoreSSL": map[string]any{
						"type":        []string{"boolean", "string"},
						"description": "Skip TLS certificate verification",
						"default":     false,
					},
				},
				"required": []string{"serverUrl", "username"},
			},
		},
		"required": required,
	}
}
