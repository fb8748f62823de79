// Package testutil provides test data builders and utilities for testing.
package testutil

import (
	"github.com/dukex/operion-kerio/pkg/models"
	"github.com/google/uuid"
)

// CreateNodeConfig creates a Kerio node configuration pointing at serverURL
// with default values that can be overridden.
func CreateNodeConfig(serverURL string, overrides ...func(map[string]any)) map[string]any {
	config := map[string]any{
		"credentials": map[string]any{
			"serverUrl": serverURL + "/",
			"username":  "jdoe",
			"password":  "{{ .variables.password }}",
		},
	}

	for _, override := range overrides {
		override(config)
	}

	return config
}

// WithOperation sets the resource and operation.
func WithOperation(resource, operation string) func(map[string]any) {
	return func(c map[string]any) {
		if resource != "" {
			c["resource"] = resource
		}

		c["operation"] = operation
	}
}

// WithFields sets the operation fields.
func WithFields(fields map[string]any) func(map[string]any) {
	return func(c map[string]any) {
		c["fields"] = fields
	}
}

// WithSessionFromLogin sets token and cookie templates reading the result of
// the node "login".
func WithSessionFromLogin() func(map[string]any) {
	return func(c map[string]any) {
		fields, _ := c["fields"].(map[string]any)
		if fields == nil {
			fields = map[string]any{}
		}

		fields["token"] = "{{ .node_results.login.token }}"
		fields["cookie"] = "{{ .node_results.login.cookie }}"
		c["fields"] = fields
	}
}

// WithCredentials replaces the credentials block.
func WithCredentials(credentials map[string]any) func(map[string]any) {
	return func(c map[string]any) {
		c["credentials"] = credentials
	}
}

// CreateExecutionContext creates an execution context holding a finished
// "login" node and a password variable.
func CreateExecutionContext(overrides ...func(*models.ExecutionContext)) models.ExecutionContext {
	execCtx := models.ExecutionContext{
		ID:                  uuid.New().String(),
		PublishedWorkflowID: "wf-1",
		NodeResults: map[string]models.NodeResult{
			"login": {
				NodeID: "login",
				Data:   map[string]any{"token": "tok-1", "cookie": "SID=abc"},
				Status: string(models.NodeStatusSuccess),
			},
		},
		Variables: map[string]any{"password": "s3cret"},
	}

	for _, override := range overrides {
		override(&execCtx)
	}

	return execCtx
}

// WithVariable sets one workflow variable.
func WithVariable(key string, value any) func(*models.ExecutionContext) {
	return func(c *models.ExecutionContext) {
		c.Variables[key] = value
	}
}
