package registry

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterDefaultNodes(t *testing.T) {
	registry := NewRegistry(slog.Default())
	registry.RegisterDefaultNodes()

	expectedNodes := []string{
		"kerio:auth",
		"kerio:autoresponder",
		"kerio:password",
		"kerio:user",
	}

	availableNodes := registry.GetAvailableNodes()
	require.Len(t, availableNodes, len(expectedNodes))

	for i, factory := range availableNodes {
		assert.Equal(t, expectedNodes[i], factory.ID())
	}
}

func TestCreateNode_KerioUser(t *testing.T) {
	registry := NewRegistry(slog.Default())
	registry.RegisterDefaultNodes()

	config := map[string]any{
		"resource":  "folder",
		"operation": "getFolders",
		"credentials": map[string]any{
			"serverUrl": "https://mail.example.com",
			"username":  "jdoe",
		},
	}

	node, err := registry.CreateNode(context.Background(), "kerio:user", "kerio-node-1", config)
	require.NoError(t, err)
	assert.Equal(t, "kerio-node-1", node.ID())
	assert.Equal(t, "kerio:user", node.Type())
}

func TestCreateNode_InvalidConfig(t *testing.T) {
	registry := NewRegistry(slog.Default())
	registry.RegisterDefaultNodes()

	_, err := registry.CreateNode(context.Background(), "kerio:auth", "auth-1", map[string]any{"operation": "login"})
	assert.Error(t, err)
}

func TestCreateNode_UnknownType(t *testing.T) {
	registry := NewRegistry(slog.Default())
	registry.RegisterDefaultNodes()

	_, err := registry.CreateNode(context.Background(), "unknown_type", "test-node", map[string]any{})
	if !errors.Is(err, ErrNodeNotRegistered) {
		t.Errorf("Expected ErrNodeNotRegistered, got: %v", err)
	}
}
