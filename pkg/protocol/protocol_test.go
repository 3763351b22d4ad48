package protocol

import (
	"errors"
	"testing"
)

func TestResultJSON(t *testing.T) {
	if got := OK(nil).JSON(); got != `{"status":true,"body":{}}` {
		t.Errorf("OK(nil): %s", got)
	}
	if got := Fail(errors.New("boom")).JSON(); got != `{"status":false,"body":{"error":"boom"}}` {
		t.Errorf("Fail: %s", got)
	}
	// map keys render sorted, so equal results render identically
	a := OK(map[string]any{"b": 1, "a": 2}).JSON()
	b := OK(map[string]any{"a": 2, "b": 1}).JSON()
	if a != b {
		t.Errorf("rendering is not canonical: %s != %s", a, b)
	}
}

func TestEnvelopeJSON(t *testing.T) {
	env := Envelope{Name: "Down", Params: map[string]any{}}
	if got := env.JSON(); got != `{"name":"Down","params":{}}` {
		t.Errorf("unexpected rendering: %s", got)
	}
}

func TestTypeDescriptorJSON(t *testing.T) {
	desc := TypeDescriptor{
		Name: "SetVoltage",
		Args: map[string]ParamSpec{"target_voltage": Bound(0, 1.2, "multiplier")},
	}
	want := `{"name":"SetVoltage","args":{"target_voltage":{"min":0,"max":1.2,"description":"multiplier","required":true}}}`
	if got := desc.JSON(); got != want {
		t.Errorf("unexpected rendering:\n got %s\nwant %s", got, want)
	}
}

func TestChannelIDString(t *testing.T) {
	id := ChannelID{Board: "40000000", Conet: 0, Link: 1, Channel: 3}
	if got := id.String(); got != "40000000:0:1:3" {
		t.Errorf("unexpected key: %s", got)
	}
}
