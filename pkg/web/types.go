package web

import "github.com/dukex/operion-kerio/pkg/operations"

// LoginRequest overrides the configured account for one login or
// credential test. Empty values fall back to the server configuration.
type LoginRequest struct {
	ServerURL string `json:"serverUrl" validate:"omitempty,url"`
	Username  string `json:"username"`
	Password  string `json:"password"`
}

// SessionRequest identifies an established session.
type SessionRequest struct {
	ServerURL string `json:"serverUrl" validate:"omitempty,url"`
	Token     string `json:"token"     validate:"required"`
	Cookie    string `json:"cookie"`
}

type SessionResponse struct {
	Token  string `json:"token"`
	Cookie string `json:"cookie"`
}

// ExecuteRequest runs one resource/operation against a session.
type ExecuteRequest struct {
	ServerURL string         `json:"serverUrl" validate:"omitempty,url"`
	Resource  string         `json:"resource"  validate:"required"`
	Operation string         `json:"operation" validate:"required"`
	Token     string         `json:"token"`
	Cookie    string         `json:"cookie"`
	Fields    map[string]any `json:"fields"`
}

type ExecuteResponse struct {
	Resource  string `json:"resource"`
	Operation string `json:"operation"`
	Result    any    `json:"result"`
}

// OperationsResponse lists the descriptor table.
type OperationsResponse struct {
	Resources  []string                `json:"resources"`
	Operations []operations.Descriptor `json:"operations"`
}

// NodeTypeResponse describes one registered node factory.
type NodeTypeResponse struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Schema      map[string]any `json:"schema"`
}
