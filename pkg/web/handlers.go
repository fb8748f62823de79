// Package web exposes the request translator over HTTP.
package web

import (
	"log/slog"

	"github.com/dukex/operion-kerio/pkg/credentials"
	"github.com/dukex/operion-kerio/pkg/kerio"
	"github.com/dukex/operion-kerio/pkg/operations"
	"github.com/dukex/operion-kerio/pkg/registry"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

type APIHandlers struct {
	logger            *slog.Logger
	validator         *validator.Validate
	registry          *registry.Registry
	defaults          credentials.Credentials
	clientOptions     []kerio.Option
	translatorOptions []operations.Option
}

// Option configures APIHandlers.
type Option func(*APIHandlers)

func WithClientOptions(opts ...kerio.Option) Option {
	return func(h *APIHandlers) {
		h.clientOptions = append(h.clientOptions, opts...)
	}
}

func WithTranslatorOptions(opts ...operations.Option) Option {
	return func(h *APIHandlers) {
		h.translatorOptions = append(h.translatorOptions, opts...)
	}
}

// NewAPIHandlers creates the handlers. defaults holds the configured account;
// requests may override its server URL, username and password.
func NewAPIHandlers(
	logger *slog.Logger,
	validator *validator.Validate,
	registry *registry.Registry,
	defaults credentials.Credentials,
	opts ...Option,
) *APIHandlers {
	h := &APIHandlers{
		logger:    logger,
		validator: validator,
		registry:  registry,
		defaults:  defaults,
	}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

// Register mounts the routes on router.
func (h *APIHandlers) Register(router fiber.Router) {
	router.Get("/operations", h.GetOperations)
	router.Get("/nodes", h.GetNodeTypes)
	router.Post("/sessions", h.CreateSession)
	router.Delete("/sessions", h.DeleteSession)
	router.Post("/credentials/test", h.TestCredentials)
	router.Post("/execute", h.Execute)
}

func (h *APIHandlers) GetOperations(c fiber.Ctx) error {
	descriptors := operations.Descriptors()

	if resource := c.Query("resource"); resource != "" {
		filtered := descriptors[:0]

		for _, d := range descriptors {
			if d.Resource == resource {
				filtered = append(filtered, d)
			}
		}

		if len(filtered) == 0 {
			return handleKerioError(c, &kerio.UnsupportedOperationError{Resource: resource})
		}

		descriptors = filtered
	}

	return c.JSON(OperationsResponse{
		Resources:  operations.Resources(),
		Operations: descriptors,
	})
}

func (h *APIHandlers) GetNodeTypes(c fiber.Ctx) error {
	factories := h.registry.GetAvailableNodes()

	response := make([]NodeTypeResponse, 0, len(factories))
	for _, f := range factories {
		response = append(response, NodeTypeResponse{
			ID:          f.ID(),
			Name:        f.Name(),
			Description: f.Description(),
			Schema:      f.Schema(),
		})
	}

	return c.JSON(response)
}

func (h *APIHandlers) CreateSession(c fiber.Ctx) error {
	creds, problem := h.loginCredentials(c)
	if problem != "" {
		return badRequest(c, problem)
	}

	session, err := creds.Client(h.clientOptions...).Login(c.Context(), creds.ServerURL, creds.LoginParams(kerio.DefaultApplication))
	if err != nil {
		return handleKerioError(c, err)
	}

	h.logger.InfoContext(c.Context(), "Session established", "server", creds.ServerURL, "username", creds.Username)

	return c.Status(fiber.StatusCreated).JSON(SessionResponse{
		Token:  session.Token,
		Cookie: session.Cookie,
	})
}

func (h *APIHandlers) DeleteSession(c fiber.Ctx) error {
	var req SessionRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid request body: "+err.Error())
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, "Validation failed: "+err.Error())
	}

	creds := h.serverCredentials(req.ServerURL)
	if creds.ServerURL == "" {
		return badRequest(c, "serverUrl is required")
	}

	session := kerio.Session{BaseURL: creds.ServerURL, Token: req.Token, Cookie: req.Cookie}

	if _, err := creds.Client(h.clientOptions...).Logout(c.Context(), session); err != nil {
		return handleKerioError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// TestCredentials always answers 200; the outcome is in the body.
func (h *APIHandlers) TestCredentials(c fiber.Ctx) error {
	creds, problem := h.loginCredentials(c)
	if problem != "" {
		return badRequest(c, problem)
	}

	result := creds.Client(h.clientOptions...).TestCredentials(c.Context(), creds.ServerURL, creds.LoginParams(kerio.DefaultApplication))

	return c.JSON(result)
}

func (h *APIHandlers) Execute(c fiber.Ctx) error {
	var req ExecuteRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid request body: "+err.Error())
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, "Validation failed: "+err.Error())
	}

	creds := h.serverCredentials(req.ServerURL)
	if creds.ServerURL == "" {
		return badRequest(c, "serverUrl is required")
	}

	translatorOptions := append([]operations.Option{
		operations.WithLogger(h.logger),
		operations.WithCredentials(creds.Username, creds.Password),
	}, h.translatorOptions...)

	translator := operations.NewTranslator(creds.Client(h.clientOptions...), translatorOptions...)
	session := kerio.Session{BaseURL: creds.ServerURL, Token: req.Token, Cookie: req.Cookie}

	result, err := translator.Execute(c.Context(), session, req.Resource, req.Operation, operations.Fields(req.Fields))
	if err != nil {
		return handleKerioError(c, err)
	}

	return c.JSON(ExecuteResponse{
		Resource:  req.Resource,
		Operation: req.Operation,
		Result:    result,
	})
}

// loginCredentials binds a LoginRequest over the defaults and validates the
// merged account. A request naming another server must carry its own
// username. A non-empty string describes why the request is invalid.
func (h *APIHandlers) loginCredentials(c fiber.Ctx) (credentials.Credentials, string) {
	var req LoginRequest

	if len(c.Body()) > 0 {
		if err := c.Bind().JSON(&req); err != nil {
			return credentials.Credentials{}, "Invalid request body: " + err.Error()
		}
	}

	if err := h.validator.Struct(req); err != nil {
		return credentials.Credentials{}, "Validation failed: " + err.Error()
	}

	creds := h.serverCredentials(req.ServerURL)

	if req.Username != "" {
		creds.Username = req.Username
		creds.Password = req.Password
	}

	if err := creds.Validate(); err != nil {
		return credentials.Credentials{}, err.Error()
	}

	return creds, ""
}

// serverCredentials returns the account for serverURL. The configured
// username, password and ignoreSSL only apply to the configured server; any
// other server starts without an account.
func (h *APIHandlers) serverCredentials(serverURL string) credentials.Credentials {
	creds := h.defaults
	creds.ServerURL = kerio.NormalizeBaseURL(creds.ServerURL)

	if serverURL == "" {
		return creds
	}

	if override := kerio.NormalizeBaseURL(serverURL); override != creds.ServerURL {
		return credentials.Credentials{ServerURL: override}
	}

	return creds
}
