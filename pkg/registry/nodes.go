package registry

import (
	kerionode "github.com/dukex/operion-kerio/pkg/nodes/kerio"
)

// RegisterDefaultNodes registers the Kerio Connect node factories. The
// options are shared by every factory.
func (r *Registry) RegisterDefaultNodes(opts ...kerionode.FactoryOption) {
	opts = append([]kerionode.FactoryOption{kerionode.WithLogger(r.logger)}, opts...)

	r.RegisterNode(kerionode.NewUserNodeFactory(opts...))
	r.RegisterNode(kerionode.NewAuthNodeFactory(opts...))
	r.RegisterNode(kerionode.NewAutoresponderNodeFactory(opts...))
	r.RegisterNode(kerionode.NewPasswordNodeFactory(opts...))
}
