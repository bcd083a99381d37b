package node

import (
	"fmt"
	"strings"
	"sync"
)

// Kind is the closed set of node categories the execution logic cares
// about. It is resolved once per node through the registry instead of
// scattering type-name suffix checks through selection code.
type Kind string

const (
	KindTrigger Kind = "trigger"
	KindWebhook Kind = "webhook"
	KindRegular Kind = "regular"
)

// Well-known type identifiers with special meaning to the orchestrator.
const (
	TypeManualTrigger    = "nodeflow.manualTrigger"
	TypeErrorTrigger     = "nodeflow.errorTrigger"
	TypeWebhook          = "nodeflow.webhook"
	TypeRespondToWebhook = "nodeflow.respondToWebhook"
)

// Descriptor describes a registered node type.
type Descriptor struct {
	Name    string
	Version int
	Kind    Kind
	Group   []string
}

// IsActivator reports whether nodes of this type can seed an execution.
func (d *Descriptor) IsActivator() bool {
	return d.Kind == KindTrigger || d.Kind == KindWebhook
}

// Registry resolves a node's declared type name and version to its
// descriptor.
type Registry interface {
	Resolve(typeName string, version int) (*Descriptor, error)
}

// -----------------------------------------------------------------------------
// In-memory registry
// -----------------------------------------------------------------------------

type memoryRegistry struct {
	mu    sync.RWMutex
	types map[string]*Descriptor
}

// NewRegistry builds an in-memory registry from the given descriptors.
// Version is currently ignored for lookups; the newest registered
// descriptor for a type name wins.
func NewRegistry(descriptors ...*Descriptor) Registry {
	r := &memoryRegistry{types: make(map[string]*Descriptor, len(descriptors))}
	for _, d := range descriptors {
		r.types[d.Name] = d
	}
	return r
}

// NewDefaultRegistry registers the built-in activator types.
func NewDefaultRegistry(extra ...*Descriptor) Registry {
	builtin := []*Descriptor{
		{Name: TypeManualTrigger, Version: 1, Kind: KindTrigger, Group: []string{"trigger"}},
		{Name: TypeErrorTrigger, Version: 1, Kind: KindTrigger, Group: []string{"trigger"}},
		{Name: TypeWebhook, Version: 1, Kind: KindWebhook, Group: []string{"trigger", "webhook"}},
		{Name: TypeRespondToWebhook, Version: 1, Kind: KindRegular, Group: []string{"output"}},
	}
	return NewRegistry(append(builtin, extra...)...)
}

func (r *memoryRegistry) Resolve(typeName string, _ int) (*Descriptor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.types[typeName]
	if !ok {
		return nil, fmt.Errorf("unknown node type: %s", typeName)
	}
	return d, nil
}

// IsWebhookType reports whether the type name carries the webhook suffix
// used by the activator ordering rule.
func IsWebhookType(typeName string) bool {
	return strings.HasSuffix(strings.ToLower(typeName), "webhook")
}
