// Package models defines the node model shared by the host and the Kerio nodes.
package models

import (
	"time"
)

// Node is a configured node instance able to execute against an execution context.
type Node interface {
	ID() string
	Type() string
	Execute(ctx ExecutionContext, inputs map[string]NodeResult) (map[string]NodeResult, error)
	GetInputPorts() []InputPort
	GetOutputPorts() []OutputPort
	InputRequirements() InputRequirements
	Validate(config map[string]any) error
}

// NodeResult represents the result of a node execution on one port.
type NodeResult struct {
	NodeID    string         `json:"node_id"`
	Data      map[string]any `json:"data"`
	Status    string         `json:"status"`
	Timestamp time.Time      `json:"timestamp"`
	Error     string         `json:"error,omitempty"`
}

// NodeStatus defines the possible states of a node execution.
type NodeStatus string

const (
	NodeStatusPending NodeStatus = "pending"
	NodeStatusRunning NodeStatus = "running"
	NodeStatusSuccess NodeStatus = "success"
	NodeStatusError   NodeStatus = "error"
)
