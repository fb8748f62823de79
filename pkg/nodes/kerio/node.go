package kerionode

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/dukex/operion-kerio/pkg/credentials"
	"github.com/dukex/operion-kerio/pkg/events"
	"github.com/dukex/operion-kerio/pkg/kerio"
	"github.com/dukex/operion-kerio/pkg/models"
	"github.com/dukex/operion-kerio/pkg/operations"
	"github.com/dukex/operion-kerio/pkg/otelhelper"
	"github.com/dukex/operion-kerio/pkg/template"
	"github.com/xeipuuv/gojsonschema"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

const tracerName = "operion-kerio/nodes"

const (
	OutputPortSuccess = "success"
	OutputPortError   = "error"
	InputPortMain     = "main"
)

// KerioNode runs one groupware operation per execution.
type KerioNode struct {
	id      string
	factory *KerioNodeFactory
	config  KerioConfig
	logger  *slog.Logger
}

// KerioConfig is the parsed node configuration. Fields and credentials keep
// their raw values so templates can be rendered at execution time.
type KerioConfig struct {
	Resource    string         `json:"resource"`
	Operation   string         `json:"operation"`
	Fields      map[string]any `json:"fields"`
	Credentials map[string]any `json:"credentials"`
}

// NewKerioNode validates config against the factory schema and scope.
func NewKerioNode(id string, factory *KerioNodeFactory, config map[string]any) (*KerioNode, error) {
	n := &KerioNode{
		id:      id,
		factory: factory,
		logger:  factory.logger.With("node_id", id, "node_type", factory.id),
	}

	if err := n.Validate(config); err != nil {
		return nil, err
	}

	n.config = parseConfig(factory, config)

	return n, nil
}

func parseConfig(factory *KerioNodeFactory, config map[string]any) KerioConfig {
	parsed := KerioConfig{
		Resource:    factory.defaultResource(),
		Operation:   factory.operation,
		Fields:      map[string]any{},
		Credentials: map[string]any{},
	}

	if resource, ok := config["resource"].(string); ok && resource != "" {
		parsed.Resource = resource
	}

	if operation, ok := config["operation"].(string); ok && operation != "" {
		parsed.Operation = operation
	}

	if fields, ok := config["fields"].(map[string]any); ok {
		parsed.Fields = fields
	}

	if creds, ok := config["credentials"].(map[string]any); ok {
		parsed.Credentials = creds
	}

	return parsed
}

func (n *KerioNode) ID() string {
	return n.id
}

func (n *KerioNode) Type() string {
	return n.factory.id
}

// Execute renders the configured fields, runs the operation and returns the
// result on the success port, or the classified failure on the error port.
func (n *KerioNode) Execute(ctx models.ExecutionContext, inputs map[string]models.NodeResult) (map[string]models.NodeResult, error) {
	started := time.Now()
	op := events.Operation{
		ExecutionID: ctx.ID,
		NodeID:      n.id,
		Resource:    n.config.Resource,
		Operation:   n.config.Operation,
	}

	if d, err := operations.Lookup(n.config.Resource, n.config.Operation); err == nil {
		op.Method = d.Method
	}

	spanCtx, span := otelhelper.StartSpan(ctx.Ctx(), otel.Tracer(tracerName), "kerio.node.execute",
		attribute.String(otelhelper.NodeIDKey, n.id),
		attribute.String(otelhelper.NodeTypeKey, n.factory.id),
		attribute.String(otelhelper.ExecutionIDKey, ctx.ID),
		attribute.String(otelhelper.ResourceKey, op.Resource),
		attribute.String(otelhelper.OperationKey, op.Operation),
	)
	defer span.End()

	ctx.Context = spanCtx

	creds, err := n.renderCredentials(&ctx)
	if err != nil {
		return n.fail(ctx, op, started, err), nil
	}

	op.Server = creds.ServerURL
	span.SetAttributes(attribute.String(otelhelper.ServerKey, creds.ServerURL))

	rendered, err := template.RenderFields(n.config.Fields, &ctx)
	if err != nil {
		return n.fail(ctx, op, started, kerio.NewValidationError("fields", fmt.Sprintf("failed to render fields: %v", err))), nil
	}

	fields := operations.Fields(rendered.(map[string]any))

	session := kerio.Session{
		BaseURL: creds.ServerURL,
		Token:   fields.String("token"),
		Cookie:  fields.String("cookie"),
	}

	clientOptions := append([]kerio.Option{kerio.WithLogger(n.logger)}, n.factory.clientOptions...)
	translatorOptions := append([]operations.Option{
		operations.WithLogger(n.logger),
		operations.WithCredentials(creds.Username, creds.Password),
	}, n.factory.translatorOptions...)

	translator := operations.NewTranslator(creds.Client(clientOptions...), translatorOptions...)

	result, err := translator.Execute(ctx.Ctx(), session, n.config.Resource, n.config.Operation, fields)
	if err != nil {
		otelhelper.SetError(span, err, attribute.String(otelhelper.ErrorKindKey, kerio.ErrorKind(err)))

		return n.fail(ctx, op, started, err), nil
	}

	otelhelper.SetOK(span)

	n.publish(ctx, events.OperationExecuted{
		BaseEvent: events.NewBaseEvent(events.OperationExecutedEvent, ctx.PublishedWorkflowID),
		Operation: op,
		Duration:  time.Since(started),
	})

	return map[string]models.NodeResult{
		OutputPortSuccess: {
			NodeID:    n.id,
			Data:      resultData(result),
			Status:    string(models.NodeStatusSuccess),
			Timestamp: time.Now().UTC(),
		},
	}, nil
}

func (n *KerioNode) renderCredentials(ctx *models.ExecutionContext) (credentials.Credentials, error) {
	rendered, err := template.RenderFields(n.config.Credentials, ctx)
	if err != nil {
		return credentials.Credentials{}, kerio.NewValidationError("credentials", fmt.Sprintf("failed to render credentials: %v", err))
	}

	raw := operations.Fields(rendered.(map[string]any))
	creds := credentials.Credentials{
		ServerURL: kerio.NormalizeBaseURL(raw.String("serverUrl")),
		Username:  raw.String("username"),
		Password:  raw.String("password"),
		IgnoreSSL: raw.BoolOr("ignoreSSL", false),
	}

	if err := creds.Validate(); err != nil {
		return credentials.Credentials{}, kerio.NewValidationError("credentials", err.Error())
	}

	return creds, nil
}

// resultData wraps non-object results so every success port carries an object.
func resultData(result any) map[string]any {
	if m, ok := result.(map[string]any); ok {
		return m
	}

	return map[string]any{"result": result}
}

func (n *KerioNode) fail(ctx models.ExecutionContext, op events.Operation, started time.Time, err error) map[string]models.NodeResult {
	kind := kerio.ErrorKind(err)
	data := map[string]any{
		"error":   err.Error(),
		"kind":    kind,
		"success": false,
	}

	failed := events.OperationFailed{
		BaseEvent: events.NewBaseEvent(events.OperationFailedEvent, ctx.PublishedWorkflowID),
		Operation: op,
		Error:     err.Error(),
		Kind:      kind,
		Duration:  time.Since(started),
	}

	var apiErr *kerio.APIError
	if errors.As(err, &apiErr) {
		data["code"] = apiErr.Code
		failed.Code = apiErr.Code
	}

	n.logger.WarnContext(ctx.Ctx(), "Kerio operation failed",
		"resource", op.Resource, "operation", op.Operation, "kind", kind, "error", err)

	n.publish(ctx, failed)

	return map[string]models.NodeResult{
		OutputPortError: {
			NodeID:    n.id,
			Data:      data,
			Status:    string(models.NodeStatusError),
			Timestamp: time.Now().UTC(),
			Error:     err.Error(),
		},
	}
}

func (n *KerioNode) publish(ctx models.ExecutionContext, event interface {
	GetType() events.EventType
}) {
	if n.factory.publisher == nil {
		return
	}

	if err := n.factory.publisher.Publish(ctx.Ctx(), n.id, event); err != nil {
		n.logger.ErrorContext(ctx.Ctx(), "Failed to publish operation event", "event_type", event.GetType(), "error", err)
	}
}

func (n *KerioNode) GetInputPorts() []models.InputPort {
	return []models.InputPort{
		{
			Port: models.Port{
				ID:          models.MakePortID(n.id, InputPortMain),
				NodeID:      n.id,
				Name:        InputPortMain,
				Description: "Main input for triggering the operation",
			},
		},
	}
}

func (n *KerioNode) GetOutputPorts() []models.OutputPort {
	return []models.OutputPort{
		{
			Port: models.Port{
				ID:          models.MakePortID(n.id, OutputPortSuccess),
				NodeID:      n.id,
				Name:        OutputPortSuccess,
				Description: "Operation result; non-object results are wrapped in {result}",
				Schema:      map[string]any{"type": "object"},
			},
		},
		{
			Port: models.Port{
				ID:          models.MakePortID(n.id, OutputPortError),
				NodeID:      n.id,
				Name:        OutputPortError,
				Description: "Classified failure of the operation",
				Schema: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"error":   map[string]any{"type": "string"},
						"kind":    map[string]any{"type": "string"},
						"code":    map[string]any{"type": "number"},
						"success": map[string]any{"type": "boolean"},
					},
				},
			},
		},
	}
}

func (n *KerioNode) InputRequirements() models.InputRequirements {
	return models.InputRequirements{
		RequiredPorts: []string{InputPortMain},
		OptionalPorts: []string{},
		WaitMode:      models.WaitModeAll,
	}
}

// Validate checks config against the factory schema and the operations the
// factory exposes.
func (n *KerioNode) Validate(config map[string]any) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(n.factory.Schema()),
		gojsonschema.NewGoLoader(config),
	)
	if err != nil {
		return fmt.Errorf("failed to validate config: %w", err)
	}

	if !result.Valid() {
		messages := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			messages = append(messages, e.String())
		}

		return kerio.NewValidationError("config", "invalid config: "+strings.Join(messages, "; "))
	}

	parsed := parseConfig(n.factory, config)

	if !slices.Contains(n.factory.resources, parsed.Resource) ||
		(n.factory.operation != "" && parsed.Operation != n.factory.operation) {
		return &kerio.UnsupportedOperationError{Resource: parsed.Resource, Operation: parsed.Operation}
	}

	_, err = operations.Lookup(parsed.Resource, parsed.Operation)

	return err
}
