package ticket

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/hvctl-io/hvctl/pkg/protocol"
)

// Serialize renders a ticket's instance descriptor as its canonical JSON
// envelope. It performs no validation: the ticket already exists and is
// assumed well formed.
func Serialize(tk Ticket) string {
	return tk.Descriptor().JSON()
}

// Deserialize parses a JSON envelope and constructs the ticket variant
// registered under its name. It deliberately performs no semantic validation
// of parameter values; that is Inspect's job. Deserialize alone is safe only
// for input already known to be well formed (e.g. round-tripped from
// Serialize); run Inspect first on anything untrusted.
func Deserialize(raw string) (Ticket, error) {
	env, err := parseEnvelope(raw)
	if err != nil {
		return nil, err
	}
	return New(env.Name, env.Params)
}

// Inspect validates a JSON envelope against the declared parameter set of
// the given ticket type: the envelope must have the minimal required shape,
// every required parameter must be present, and every numeric value must lie
// within its declared bounds. A nil return means the envelope is valid; any
// violation is reported as an error naming the first failed constraint.
func Inspect(raw string, t Type) error {
	desc, err := Describe(t)
	if err != nil {
		return err
	}
	env, err := parseEnvelope(raw)
	if err != nil {
		return err
	}
	for _, name := range sortedArgs(desc) {
		spec := desc.Args[name]
		value, present := env.Params[name]
		if !present {
			if spec.Required {
				return &ValidationError{Param: name, Reason: "required parameter is missing"}
			}
			continue
		}
		if spec.Min == nil && spec.Max == nil {
			continue
		}
		num, ok := value.(float64)
		if !ok {
			return &ValidationError{Param: name, Reason: "value is not numeric"}
		}
		if spec.Min != nil && num < *spec.Min {
			return &ValidationError{
				Param:  name,
				Reason: fmt.Sprintf("value %v is below the minimum %v", num, *spec.Min),
			}
		}
		if spec.Max != nil && num > *spec.Max {
			return &ValidationError{
				Param:  name,
				Reason: fmt.Sprintf("value %v is above the maximum %v", num, *spec.Max),
			}
		}
	}
	return nil
}

// parseEnvelope decodes the minimal required envelope shape. Extra top-level
// fields are ignored; a missing "name" or "params" key, or a "params" value
// that is not an object, is malformed input.
func parseEnvelope(raw string) (protocol.Envelope, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return protocol.Envelope{}, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}
	rawName, ok := fields["name"]
	if !ok {
		return protocol.Envelope{}, fmt.Errorf("%w: missing %q field", ErrMalformedInput, "name")
	}
	rawParams, ok := fields["params"]
	if !ok {
		return protocol.Envelope{}, fmt.Errorf("%w: missing %q field", ErrMalformedInput, "params")
	}

	var env protocol.Envelope
	if err := json.Unmarshal(rawName, &env.Name); err != nil {
		return protocol.Envelope{}, fmt.Errorf("%w: %q is not a string", ErrMalformedInput, "name")
	}
	if err := json.Unmarshal(rawParams, &env.Params); err != nil {
		return protocol.Envelope{}, fmt.Errorf("%w: %q is not an object", ErrMalformedInput, "params")
	}
	return env, nil
}

// sortedArgs returns the descriptor's parameter names in a stable order so
// Inspect reports the same first violation for the same input.
func sortedArgs(desc protocol.TypeDescriptor) []string {
	names := make([]string, 0, len(desc.Args))
	for name := range desc.Args {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
