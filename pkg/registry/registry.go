// Package registry keeps the node factories available to the host.
package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/dukex/operion-kerio/pkg/models"
	"github.com/dukex/operion-kerio/pkg/protocol"
)

var ErrNodeNotRegistered = errors.New("node type not registered")

type Registry struct {
	logger *slog.Logger

	mu            sync.RWMutex
	nodeFactories map[string]protocol.NodeFactory
}

func NewRegistry(log *slog.Logger) *Registry {
	return &Registry{
		logger:        log,
		nodeFactories: make(map[string]protocol.NodeFactory),
	}
}

// RegisterNode adds factory, replacing any factory with the same ID.
func (r *Registry) RegisterNode(factory protocol.NodeFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nodeFactories[factory.ID()] = factory
	r.logger.Debug("Registered node factory", "node_type", factory.ID())
}

func (r *Registry) CreateNode(ctx context.Context, nodeType, id string, config map[string]any) (models.Node, error) {
	factory, ok := r.GetNodeFactory(nodeType)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotRegistered, nodeType)
	}

	return factory.Create(ctx, id, config)
}

func (r *Registry) GetNodeFactory(nodeType string) (protocol.NodeFactory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, ok := r.nodeFactories[nodeType]

	return factory, ok
}

// GetAvailableNodes returns the registered factories sorted by ID.
func (r *Registry) GetAvailableNodes() []protocol.NodeFactory {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factories := make([]protocol.NodeFactory, 0, len(r.nodeFactories))
	for _, factory := range r.nodeFactories {
		factories = append(factories, factory)
	}

	sort.Slice(factories, func(i, j int) bool {
		return factories[i].ID() < factories[j].ID()
	})

	return factories
}
