package protocol

import "encoding/json"

// ParamSpec declares the validity constraints of a single ticket parameter.
// Min and Max bound numeric parameters; nil means unbounded on that side.
// Non-numeric parameters carry only a description.
type ParamSpec struct {
	Min         *float64 `json:"min,omitempty"`
	Max         *float64 `json:"max,omitempty"`
	Description string   `json:"description"`
	Required    bool     `json:"required,omitempty"`
}

// Bound is a convenience constructor for a required numeric parameter
// bounded to [min, max].
func Bound(min, max float64, description string) ParamSpec {
	return ParamSpec{Min: &min, Max: &max, Description: description, Required: true}
}

// Optional is a convenience constructor for an optional free-form parameter.
func Optional(description string) ParamSpec {
	return ParamSpec{Description: description}
}

// TypeDescriptor declares, for one ticket type, its stable name and the
// parameters it accepts. Defined once per type and never mutated.
type TypeDescriptor struct {
	Name string               `json:"name"`
	Args map[string]ParamSpec `json:"args"`
}

// JSON returns the canonical JSON rendering of the type descriptor.
func (d TypeDescriptor) JSON() string {
	data, _ := json.Marshal(d)
	return string(data)
}
