// Package cmd provides common initialization functions for command-line applications.
package cmd

import (
	"log/slog"

	"github.com/dukex/operion-kerio/pkg/eventbus"
	kerionode "github.com/dukex/operion-kerio/pkg/nodes/kerio"
	"github.com/dukex/operion-kerio/pkg/registry"
)

// NewRegistry returns a registry holding the Kerio node factories. Executions
// are published on publisher when it is not nil.
func NewRegistry(log *slog.Logger, publisher eventbus.EventPublisher, opts ...kerionode.FactoryOption) *registry.Registry {
	reg := registry.NewRegistry(log)

	if publisher != nil {
		opts = append(opts, kerionode.WithEventPublisher(publisher))
	}

	reg.RegisterDefaultNodes(opts...)

	return reg
}
