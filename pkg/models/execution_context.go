package models

import "context"

// ExecutionContext carries the state visible to a node while it executes.
type ExecutionContext struct {
	ID                  string                `json:"id"`
	PublishedWorkflowID string                `json:"published_workflow_id"`
	NodeResults         map[string]NodeResult `json:"node_results,omitempty"`
	TriggerData         map[string]any        `json:"trigger_data,omitempty"`
	Variables           map[string]any        `json:"variables,omitempty"`
	Metadata            map[string]any        `json:"metadata,omitempty"`

	// Context bounds the outbound calls of the node. Nil means context.Background.
	Context context.Context `json:"-"`
}

// Ctx returns the context bound to the execution.
func (e ExecutionContext) Ctx() context.Context {
	if e.Context == nil {
		return context.Background()
	}

	return e.Context
}
