// Package ticket implements the command-dispatch layer for the HV crate:
// a closed set of executable ticket types, the name registry over them, and
// the Master entry point that moves tickets between JSON and live objects.
package ticket

import "github.com/hvctl-io/hvctl/pkg/protocol"

// Handler is the collaborator a ticket executes against. It owns the live
// board connections and the crate configuration (per-layer default voltages).
// A nil layer means "all layers". Implementations must return a descriptive
// error on any hardware or configuration failure; tickets convert those into
// failure envelopes. Serialization of concurrent hardware access, if needed,
// is the handler's responsibility.
type Handler interface {
	// PowerDown sets the voltage to zero and powers down every channel on
	// the given layer (all layers when nil).
	PowerDown(layer *int) error
	// SetVoltage applies multiplier times the layer's default voltage to every
	// channel on the given layer and powers the channels up.
	SetVoltage(layer *int, multiplier float64) error
	// GetParams reads back the selected parameters (all known parameters
	// when selected is nil) for every active channel, keyed by the channel
	// identifier string.
	GetParams(layer *int, selected []string) (map[string]map[string]any, error)
}

// Ticket is one executable command against the crate. Implementations hold
// their resolved parameters exclusively and share no mutable state, so
// distinct instances are safe to build and inspect concurrently. Execute
// never returns an error: every failure is reported inside the Result.
type Ticket interface {
	// Type returns the registered type of this ticket.
	Type() Type
	// Descriptor returns the instance descriptor: the type name plus the
	// resolved parameter values, exactly as supplied at construction.
	Descriptor() protocol.Envelope
	// TypeDescriptor returns the declared parameter set of this ticket's type.
	TypeDescriptor() protocol.TypeDescriptor
	// Execute runs the command against the handler and reports the outcome
	// as a result envelope. It never panics and never raises.
	Execute(h Handler) protocol.Result
}
