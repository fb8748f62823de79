package operations

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/dukex/operion-kerio/pkg/kerio"
	"github.com/go-playground/validator/v10"
)

var mailAddressPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Caller performs JSON-RPC calls and attachment uploads for a session.
type Caller interface {
	Call(ctx context.Context, session kerio.Session, req kerio.Request) (*kerio.Reply, error)
	Upload(ctx context.Context, session kerio.Session, attachment kerio.Attachment) (*kerio.Reply, error)
}

// Translator turns resource/operation selections into Kerio JSON-RPC calls.
// It holds no per-call state and is safe for concurrent use.
type Translator struct {
	caller      Caller
	logger      *slog.Logger
	validate    *validator.Validate
	location    *time.Location
	now         func() time.Time
	application kerio.Application
	username    string
	password    string
}

// Option configures a Translator.
type Option func(*Translator)

// WithLogger sets the translator logger.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Translator) {
		t.logger = logger
	}
}

// WithLocation sets the zone used for local compact date encoding.
func WithLocation(loc *time.Location) Option {
	return func(t *Translator) {
		t.location = loc
	}
}

// WithClock replaces the wall clock used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(t *Translator) {
		t.now = now
	}
}

// WithApplication sets the application identity sent on login.
func WithApplication(app kerio.Application) Option {
	return func(t *Translator) {
		t.application = app
	}
}

// WithCredentials sets the username and password used by authentication/login.
func WithCredentials(username, password string) Option {
	return func(t *Translator) {
		t.username = username
		t.password = password
	}
}

// NewTranslator creates a translator that sends calls through caller.
func NewTranslator(caller Caller, opts ...Option) *Translator {
	t := &Translator{
		caller:      caller,
		logger:      slog.Default(),
		location:    time.Local,
		now:         time.Now,
		application: kerio.DefaultApplication,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}

	for _, opt := range opts {
		opt(t)
	}

	if err := t.validate.RegisterValidation("mailaddr", func(fl validator.FieldLevel) bool {
		return mailAddressPattern.MatchString(fl.Field().String())
	}); err != nil {
		panic(fmt.Sprintf("register mailaddr validation: %v", err))
	}

	t.logger = t.logger.With("module", "kerio_translator")

	return t
}

// Execute runs resource/operation with fields against session and returns
// the shaped result. Unknown pairs fail before any network call.
func (t *Translator) Execute(ctx context.Context, session kerio.Session, resource, operation string, fields Fields) (any, error) {
	d, err := Lookup(resource, operation)
	if err != nil {
		return nil, err
	}

	if fields == nil {
		fields = Fields{}
	}

	logger := t.logger.With("resource", resource, "operation", operation)

	if d.run != nil {
		logger.DebugContext(ctx, "Executing multi-step operation")

		return d.run(t, ctx, session, fields)
	}

	req, err := t.build(d, fields)
	if err != nil {
		return nil, err
	}

	logger.DebugContext(ctx, "Executing operation", "method", req.Method, "id", req.ID)

	reply, err := t.caller.Call(ctx, session, req)
	if err != nil {
		logger.DebugContext(ctx, "Operation failed", "method", req.Method, "error", err)

		return nil, err
	}

	post := d.post
	if post == nil {
		post = pass
	}

	return post(t, fields, req, reply)
}

// Build returns the request envelope a single-request operation would send.
func (t *Translator) Build(resource, operation string, fields Fields) (kerio.Request, error) {
	d, err := Lookup(resource, operation)
	if err != nil {
		return kerio.Request{}, err
	}

	if !d.SingleRequest() {
		return kerio.Request{}, fmt.Errorf("%s/%s is not a single request operation", resource, operation)
	}

	if fields == nil {
		fields = Fields{}
	}

	return t.build(d, fields)
}

func (t *Translator) build(d Descriptor, fields Fields) (kerio.Request, error) {
	params, err := d.params(t, fields)
	if err != nil {
		return kerio.Request{}, err
	}

	return d.request(params, fields), nil
}

func (t *Translator) formatLocal(ts time.Time) string {
	return kerio.FormatLocal(ts, t.location)
}
