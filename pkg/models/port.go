package models

import "strings"

// Port represents a connection point on a node.
type Port struct {
	ID          string         `json:"id"` // "{nodeID}:{portName}"
	NodeID      string         `json:"node_id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Schema      map[string]any `json:"schema,omitempty"`
}

type InputPort struct {
	Port
}

type OutputPort struct {
	Port
}

// ParsePortID parses a port ID in format "{node_id}:{port_name}" into components.
func ParsePortID(portID string) (string, string, bool) {
	return strings.Cut(portID, ":")
}

// MakePortID creates a port ID from node ID and port name.
func MakePortID(nodeID, portName string) string {
	return nodeID + ":" + portName
}
