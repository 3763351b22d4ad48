package protocol

import "encoding/json"

// Envelope is the wire form of a ticket: its type name and the resolved
// parameter values. It doubles as the instance descriptor of a constructed
// ticket. Extra top-level fields in incoming JSON are ignored.
type Envelope struct {
	Name   string         `json:"name"`
	Params map[string]any `json:"params"`
}

// JSON returns the canonical JSON rendering of the envelope. Map keys are
// emitted in sorted order, so equal envelopes render identically.
func (e Envelope) JSON() string {
	data, _ := json.Marshal(e)
	return string(data)
}

// Result is the uniform outcome of a ticket execution. On failure Body holds
// an "error" string; on success it holds variant-specific output (possibly
// empty). A Result is built once and never mutated.
type Result struct {
	Status bool           `json:"status"`
	Body   map[string]any `json:"body"`
}

// OK returns a success result. A nil body becomes an empty one so the wire
// form is always {"status":true,"body":{...}}.
func OK(body map[string]any) Result {
	if body == nil {
		body = map[string]any{}
	}
	return Result{Status: true, Body: body}
}

// Fail returns a failure result carrying the error message.
func Fail(err error) Result {
	return Result{Status: false, Body: map[string]any{"error": err.Error()}}
}

// JSON returns the canonical JSON rendering of the result.
func (r Result) JSON() string {
	data, _ := json.Marshal(r)
	return string(data)
}
