// Package operations translates Kerio Connect resource/operation selections
// into JSON-RPC calls and shapes their results.
package operations

import (
	"context"
	"slices"

	"github.com/dukex/operion-kerio/pkg/kerio"
)

type (
	paramsFunc func(t *Translator, f Fields) (any, error)
	routeFunc  func(f Fields) (method string, id int)
	postFunc   func(t *Translator, f Fields, req kerio.Request, reply *kerio.Reply) (any, error)
	runFunc    func(t *Translator, ctx context.Context, session kerio.Session, f Fields) (any, error)
)

// Descriptor maps one resource/operation pair to its JSON-RPC method.
type Descriptor struct {
	Resource    string `json:"resource"`
	Operation   string `json:"operation"`
	Method      string `json:"method"`
	ID          int    `json:"id"`
	Description string `json:"description"`

	params paramsFunc
	route  routeFunc
	post   postFunc
	run    runFunc
}

// SingleRequest reports whether the operation is one JSON-RPC round trip
// whose request can be built without a network call.
func (d Descriptor) SingleRequest() bool {
	return d.run == nil
}

func (d Descriptor) request(params any, f Fields) kerio.Request {
	method, id := d.Method, d.ID
	if d.route != nil {
		method, id = d.route(f)
	}

	return kerio.NewRequest(id, method, params)
}

type key struct {
	resource  string
	operation string
}

var (
	table     []Descriptor
	byKey     map[key]Descriptor
	resources map[string]bool
)

func register(descriptors ...Descriptor) {
	table = append(table, descriptors...)
}

func init() {
	register(authenticationDescriptors()...)
	register(autoresponderDescriptors()...)
	register(folderDescriptors()...)
	register(mailDescriptors()...)
	register(miscDescriptors()...)
	register(calendarDescriptors()...)
	register(contactDescriptors()...)
	register(taskDescriptors()...)
	register(noteDescriptors()...)
	register(delegationDescriptors()...)

	byKey = make(map[key]Descriptor, len(table))
	resources = make(map[string]bool)

	for _, d := range table {
		byKey[key{d.Resource, d.Operation}] = d
		resources[d.Resource] = true
	}
}

// Descriptors returns every known descriptor in registration order.
func Descriptors() []Descriptor {
	return slices.Clone(table)
}

// Resources returns the known resource names in registration order.
func Resources() []string {
	var names []string

	for _, d := range table {
		if !slices.Contains(names, d.Resource) {
			names = append(names, d.Resource)
		}
	}

	return names
}

// Lookup returns the descriptor for resource/operation.
func Lookup(resource, operation string) (Descriptor, error) {
	if !resources[resource] {
		return Descriptor{}, &kerio.UnsupportedOperationError{Resource: resource}
	}

	d, ok := byKey[key{resource, operation}]
	if !ok {
		return Descriptor{}, &kerio.UnsupportedOperationError{Resource: resource, Operation: operation}
	}

	return d, nil
}

// pass returns the result member unchanged.
func pass(_ *Translator, _ Fields, _ kerio.Request, reply *kerio.Reply) (any, error) {
	return reply.Result, nil
}

// empty sends an empty params object.
func empty(_ *Translator, _ Fields) (any, error) {
	return map[string]any{}, nil
}

// none omits the params member.
func none(_ *Translator, _ Fields) (any, error) {
	return nil, nil
}
