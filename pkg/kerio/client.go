package kerio

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/dukex/operion-kerio/pkg/otelhelper"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const maxErrorBody = 4096

// Reply is a successful JSON-RPC response.
type Reply struct {
	// Result is the decoded result member, nil when absent.
	Result any
	// Raw is the undecoded result member.
	Raw json.RawMessage
	// Header holds the HTTP response headers.
	Header http.Header
}

// ResultMap returns Result as an object, or nil when it is not one.
func (r *Reply) ResultMap() map[string]any {
	m, _ := r.Result.(map[string]any)

	return m
}

// Attachment is a binary payload for the attachment upload endpoint.
type Attachment struct {
	FileName    string
	ContentType string
	Description string
	Data        []byte
}

// Client posts JSON-RPC envelopes to a Kerio Connect server.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	tracer     trace.Tracer
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for every request.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets the client logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithTracer sets the tracer used for per-call spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *Client) {
		c.tracer = tracer
	}
}

// NewClient creates a client. Without WithHTTPClient it verifies TLS certificates.
func NewClient(opts ...Option) *Client {
	c := &Client{
		logger: slog.Default(),
		tracer: otelhelper.NewNoopTracer("kerio"),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		c.httpClient = NewHTTPClient(false)
	}

	return c
}

// NewHTTPClient builds an instrumented HTTP client.
// When ignoreSSL is set, certificate verification is disabled for that client only.
func NewHTTPClient(ignoreSSL bool) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if ignoreSSL {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // opt-in per credential
	}

	return &http.Client{
		Transport: otelhttp.NewTransport(transport),
	}
}

// Call posts req to the session's JSON-RPC endpoint.
// The X-Token and Cookie headers are sent only when the session carries them.
func (c *Client) Call(ctx context.Context, session Session, req Request) (*Reply, error) {
	ctx, span := otelhelper.StartSpan(ctx, c.tracer, "kerio.call",
		attribute.String(otelhelper.RPCMethodKey, req.Method),
		attribute.Int(otelhelper.RPCRequestIDKey, req.ID),
	)
	defer span.End()

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s request: %w", req.Method, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, session.Endpoint(), bytes.NewReader(body))
	if err != nil {
		return nil, &TransportError{Method: req.Method, Err: err}
	}

	httpReq.Header.Set("Content-Type", ContentType)
	httpReq.Header.Set("Accept", "application/json")
	setSessionHeaders(httpReq, session)

	c.logger.DebugContext(ctx, "Sending JSON-RPC request",
		"method", req.Method,
		"id", req.ID,
		"endpoint", session.Endpoint())

	reply, err := c.do(httpReq, req.Method)
	if err != nil {
		otelhelper.SetError(span, err, attribute.String(otelhelper.ErrorKindKey, ErrorKind(err)))

		return nil, err
	}

	return reply, nil
}

// Upload posts an attachment to the session's upload endpoint.
// The upload response is a JSON-RPC envelope like any other call.
func (c *Client) Upload(ctx context.Context, session Session, attachment Attachment) (*Reply, error) {
	const method = UploadMethod

	ctx, span := otelhelper.StartSpan(ctx, c.tracer, "kerio.upload",
		attribute.String(otelhelper.RPCMethodKey, method),
		attribute.Int("kerio.attachment.size", len(attachment.Data)),
	)
	defer span.End()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, session.UploadEndpoint(), bytes.NewReader(attachment.Data))
	if err != nil {
		return nil, &TransportError{Method: method, Err: err}
	}

	httpReq.Header.Set("filename", attachment.FileName)
	httpReq.Header.Set("name", attachment.FileName)
	httpReq.Header.Set("Content-Type", attachment.ContentType)
	httpReq.Header.Set("Content-Description", attachment.Description)
	httpReq.Header.Set("Content-Length", strconv.Itoa(len(attachment.Data)))
	setSessionHeaders(httpReq, session)

	c.logger.DebugContext(ctx, "Uploading attachment",
		"file_name", attachment.FileName,
		"content_type", attachment.ContentType,
		"size", len(attachment.Data))

	reply, err := c.do(httpReq, method)
	if err != nil {
		otelhelper.SetError(span, err, attribute.String(otelhelper.ErrorKindKey, ErrorKind(err)))

		return nil, err
	}

	return reply, nil
}

func setSessionHeaders(httpReq *http.Request, session Session) {
	if session.Token != "" {
		httpReq.Header.Set(HeaderToken, session.Token)
	}

	if session.Cookie != "" {
		httpReq.Header.Set(HeaderCookie, session.Cookie)
	}
}

func (c *Client) do(httpReq *http.Request, method string) (*Reply, error) {
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &TransportError{Method: method, Err: err}
	}

	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.logger.Warn("Failed to close response body", "error", closeErr)
		}
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Method: method, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if len(data) > maxErrorBody {
			data = data[:maxErrorBody]
		}

		return nil, &TransportError{
			Method: method,
			Err:    &HTTPStatusError{StatusCode: resp.StatusCode, Body: string(data)},
		}
	}

	var envelope Response
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, &TransportError{Method: method, Err: fmt.Errorf("invalid JSON-RPC response: %w", err)}
	}

	if envelope.Error != nil {
		c.logger.Debug("JSON-RPC error response",
			"method", method,
			"code", envelope.Error.Code,
			"message", envelope.Error.Message)

		return nil, &APIError{Method: method, Code: envelope.Error.Code, Message: envelope.Error.Message}
	}

	reply := &Reply{Raw: envelope.Result, Header: resp.Header}

	if len(envelope.Result) > 0 {
		if err := json.Unmarshal(envelope.Result, &reply.Result); err != nil {
			return nil, &TransportError{Method: method, Err: fmt.Errorf("invalid result member: %w", err)}
		}
	}

	return reply, nil
}
