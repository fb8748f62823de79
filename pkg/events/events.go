// Package events defines the audit events emitted for groupware operations.
package events

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const Topic = "operion.kerio.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	OperationExecutedEvent EventType = "kerio.operation.executed"
	OperationFailedEvent   EventType = "kerio.operation.failed"
)

type BaseEvent struct {
	ID         string         `json:"id"`
	Type       EventType      `json:"type"`
	Timestamp  time.Time      `json:"timestamp"`
	WorkflowID string         `json:"workflow_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// Operation identifies one translated request and where it was sent.
// Credentials, tokens and field values are never part of an event.
type Operation struct {
	ExecutionID string `json:"execution_id,omitempty"`
	NodeID      string `json:"node_id,omitempty"`
	Resource    string `json:"resource"`
	Operation   string `json:"operation"`
	Method      string `json:"method,omitempty"`
	Server      string `json:"server,omitempty"`
}

type OperationExecuted struct {
	BaseEvent
	Operation

	Duration time.Duration `json:"duration"`
}

func (e OperationExecuted) GetType() EventType {
	return OperationExecutedEvent
}

type OperationFailed struct {
	BaseEvent
	Operation

	Error    string        `json:"error"`
	Kind     string        `json:"kind"`
	Code     int           `json:"code,omitempty"`
	Duration time.Duration `json:"duration"`
}

func (e OperationFailed) GetType() EventType {
	return OperationFailedEvent
}

func NewBaseEvent(eventType EventType, workflowID string) BaseEvent {
	return BaseEvent{
		ID:         uuid.New().String(),
		Type:       eventType,
		Timestamp:  time.Now().UTC(),
		WorkflowID: workflowID,
		Metadata:   make(map[string]any),
	}
}
