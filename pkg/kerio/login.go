package kerio

import (
	"context"
	"errors"
	"fmt"
	"time"
)

const (
	LoginMethod  = "Session.login"
	LogoutMethod = "Session.logout"

	loginRequestID  = 1
	logoutRequestID = 2

	// CredentialTestTimeout bounds a credential test round trip.
	CredentialTestTimeout = 5 * time.Second

	CredentialTestSuccess  = "Authentication successful!"
	CredentialTestRejected = "Invalid credentials — login rejected by server"
)

// Application identifies the calling client to Session.login.
type Application struct {
	Vendor  string `json:"vendor"`
	Name    string `json:"name"`
	Version string `json:"version"`
}

// DefaultApplication is sent when no application identity is configured.
var DefaultApplication = Application{
	Vendor:  "Operion",
	Name:    "operion-kerio",
	Version: "1.0",
}

// LoginParams are the Session.login parameters.
type LoginParams struct {
	Application Application `json:"application"`
	UserName    string      `json:"userName"`
	Password    string      `json:"password"`
}

// LoginRequest builds the Session.login envelope.
func LoginRequest(params LoginParams) Request {
	return NewRequest(loginRequestID, LoginMethod, params)
}

// LogoutRequest builds the Session.logout envelope. The token travels in params.
func LogoutRequest(token string) Request {
	return NewRequest(logoutRequestID, LogoutMethod, map[string]any{"token": token})
}

// SessionFromReply extracts the session token and cookie from a login reply.
func SessionFromReply(baseURL string, reply *Reply) (Session, error) {
	token, ok := reply.ResultMap()["token"].(string)
	if !ok {
		return Session{}, &APIError{Method: LoginMethod, Message: "login response has no token"}
	}

	return Session{
		BaseURL: NormalizeBaseURL(baseURL),
		Token:   token,
		Cookie:  FirstCookie(reply.Header),
	}, nil
}

// Login authenticates against baseURL and returns the new session.
func (c *Client) Login(ctx context.Context, baseURL string, params LoginParams) (Session, error) {
	reply, err := c.Call(ctx, Session{BaseURL: baseURL}, LoginRequest(params))
	if err != nil {
		return Session{}, err
	}

	session, err := SessionFromReply(baseURL, reply)
	if err != nil {
		return Session{}, err
	}

	c.logger.InfoContext(ctx, "Logged in to Kerio Connect", "server", session.BaseURL, "user", params.UserName)

	return session, nil
}

// Logout ends session. Only the cookie is sent as a header.
func (c *Client) Logout(ctx context.Context, session Session) (*Reply, error) {
	return c.Call(ctx, session.WithoutToken(), LogoutRequest(session.Token))
}

// CredentialTestResult is the outcome of a credential check.
type CredentialTestResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// TestCredentials performs a bounded login attempt and reports the outcome.
// It never returns an error; failures are described in the result message.
func (c *Client) TestCredentials(ctx context.Context, baseURL string, params LoginParams) CredentialTestResult {
	ctx, cancel := context.WithTimeout(ctx, CredentialTestTimeout)
	defer cancel()

	reply, err := c.Call(ctx, Session{BaseURL: baseURL}, LoginRequest(params))
	if err != nil {
		if IsInvalidCredentials(err) {
			return CredentialTestResult{Message: CredentialTestRejected}
		}

		var apiErr *APIError
		if errors.As(err, &apiErr) {
			return CredentialTestResult{Message: fmt.Sprintf("Login failed: %s", apiErr.Message)}
		}

		return CredentialTestResult{Message: fmt.Sprintf("Connection failed: %v", err)}
	}

	if _, ok := reply.ResultMap()["token"].(string); ok {
		return CredentialTestResult{Success: true, Message: CredentialTestSuccess}
	}

	return CredentialTestResult{Message: "Unexpected response from server"}
}
