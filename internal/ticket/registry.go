package ticket

import (
	"fmt"
	"sort"

	"github.com/hvctl-io/hvctl/pkg/protocol"
)

// Type is the stable name of a registered ticket type.
type Type string

// The closed set of ticket types. Adding a type means adding a constant
// here, a variant implementation, and a row in the registry table below.
const (
	TypeDown       Type = "Down"
	TypeSetVoltage Type = "SetVoltage"
	TypeGetParams  Type = "GetParams"
)

// entry couples a ticket type's descriptor with its constructor.
type entry struct {
	descriptor protocol.TypeDescriptor
	build      func(params map[string]any) Ticket
}

// registry is the single source of truth for which names are valid tickets.
// It is a fixed table, not an open plugin point.
var registry = map[Type]entry{
	TypeDown: {
		descriptor: downDescriptor,
		build:      func(p map[string]any) Ticket { return NewDown(p) },
	},
	TypeSetVoltage: {
		descriptor: setVoltageDescriptor,
		build:      func(p map[string]any) Ticket { return NewSetVoltage(p) },
	},
	TypeGetParams: {
		descriptor: getParamsDescriptor,
		build:      func(p map[string]any) Ticket { return NewGetParams(p) },
	},
}

// Types returns all registered ticket type names in sorted order.
func Types() []Type {
	types := make([]Type, 0, len(registry))
	for t := range registry {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// Describe returns the type descriptor for the given type name.
// Fails with ErrUnknownType for names absent from the registry.
func Describe(t Type) (protocol.TypeDescriptor, error) {
	e, ok := registry[t]
	if !ok {
		return protocol.TypeDescriptor{}, fmt.Errorf("%w: %q", ErrUnknownType, t)
	}
	return e.descriptor, nil
}

// New constructs the variant registered under name with the given resolved
// parameters. Construction performs no validation; callers holding untrusted
// input should run Inspect first. Fails with ErrUnknownType for names absent
// from the registry and never builds a partial ticket.
func New(name string, params map[string]any) (Ticket, error) {
	e, ok := registry[Type(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, name)
	}
	if params == nil {
		params = map[string]any{}
	}
	return e.build(params), nil
}
