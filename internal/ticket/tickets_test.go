package ticket

import (
	"errors"
	"strings"
	"testing"
)

// stubHandler records calls and can be made to fail or panic on every call.
type stubHandler struct {
	downCalls   int
	setCalls    []float64
	getCalls    [][]string
	channels    map[string]map[string]any
	err         error
	panicOnCall bool
}

func (s *stubHandler) PowerDown(layer *int) error {
	if s.panicOnCall {
		panic("board on fire")
	}
	s.downCalls++
	return s.err
}

func (s *stubHandler) SetVoltage(layer *int, multiplier float64) error {
	if s.panicOnCall {
		panic("board on fire")
	}
	s.setCalls = append(s.setCalls, multiplier)
	return s.err
}

func (s *stubHandler) GetParams(layer *int, selected []string) (map[string]map[string]any, error) {
	if s.panicOnCall {
		panic("board on fire")
	}
	s.getCalls = append(s.getCalls, selected)
	if s.err != nil {
		return nil, s.err
	}
	out := make(map[string]map[string]any, len(s.channels))
	for id, params := range s.channels {
		values := map[string]any{}
		for name, v := range params {
			if selected == nil {
				values[name] = v
				continue
			}
			for _, want := range selected {
				if name == want {
					values[name] = v
				}
			}
		}
		out[id] = values
	}
	return out, nil
}

func TestDownExecute(t *testing.T) {
	h := &stubHandler{}
	res := NewDown(map[string]any{}).Execute(h)

	if got := res.JSON(); got != `{"status":true,"body":{}}` {
		t.Errorf("unexpected envelope: %s", got)
	}
	if h.downCalls != 1 {
		t.Errorf("expected 1 power-down call, got %d", h.downCalls)
	}
}

func TestSetVoltageExecute(t *testing.T) {
	h := &stubHandler{}
	res := NewSetVoltage(map[string]any{"target_voltage": 1.0}).Execute(h)

	if got := res.JSON(); got != `{"status":true,"body":{}}` {
		t.Errorf("unexpected envelope: %s", got)
	}
	if len(h.setCalls) != 1 || h.setCalls[0] != 1.0 {
		t.Errorf("expected one set-voltage call with multiplier 1.0, got %v", h.setCalls)
	}
}

func TestSetVoltageMissingParam(t *testing.T) {
	h := &stubHandler{}
	res := NewSetVoltage(map[string]any{}).Execute(h)

	if res.Status {
		t.Fatal("expected failure envelope")
	}
	msg, _ := res.Body["error"].(string)
	if !strings.Contains(msg, "target_voltage") {
		t.Errorf("error should name the missing parameter, got %q", msg)
	}
	if len(h.setCalls) != 0 {
		t.Error("handler must not be called without parameters")
	}
}

func TestGetParamsExecute(t *testing.T) {
	h := &stubHandler{channels: map[string]map[string]any{
		"40000000:0:0:0": {"VSet": 1500.0, "VMon": 1498.2},
		"40000000:0:0:1": {"VSet": 1500.0, "VMon": 1501.9},
	}}
	res := NewGetParams(map[string]any{"select_params": []any{"VSet"}}).Execute(h)

	if !res.Status {
		t.Fatalf("unexpected failure: %v", res.Body)
	}
	params, ok := res.Body["params"].(map[string]map[string]any)
	if !ok {
		t.Fatalf("body.params has wrong shape: %#v", res.Body)
	}
	if len(params) != 2 {
		t.Fatalf("expected 2 channels, got %d", len(params))
	}
	for id, values := range params {
		if len(values) != 1 {
			t.Errorf("channel %s: expected only VSet, got %v", id, values)
		}
		if _, ok := values["VSet"]; !ok {
			t.Errorf("channel %s: VSet missing", id)
		}
	}
}

func TestGetParamsNilSelection(t *testing.T) {
	h := &stubHandler{channels: map[string]map[string]any{}}
	res := NewGetParams(map[string]any{}).Execute(h)

	if !res.Status {
		t.Fatalf("unexpected failure: %v", res.Body)
	}
	if len(h.getCalls) != 1 || h.getCalls[0] != nil {
		t.Errorf("expected a nil selection passed through, got %v", h.getCalls)
	}
}

func TestExecuteNeverRaises(t *testing.T) {
	failing := &stubHandler{err: errors.New("board unreachable")}
	panicking := &stubHandler{panicOnCall: true}

	tickets := []Ticket{
		NewDown(map[string]any{}),
		NewSetVoltage(map[string]any{"target_voltage": 0.5}),
		NewGetParams(map[string]any{}),
	}
	for _, h := range []Handler{failing, panicking} {
		for _, tk := range tickets {
			res := tk.Execute(h)
			if res.Status {
				t.Errorf("%s: expected failure envelope", tk.Type())
			}
			msg, _ := res.Body["error"].(string)
			if msg == "" {
				t.Errorf("%s: failure envelope must carry a non-empty error", tk.Type())
			}
		}
	}
}

func TestInstanceDescriptorDropsUnknownParams(t *testing.T) {
	tk := NewSetVoltage(map[string]any{"target_voltage": 0.7, "extra": "ignored"})
	desc := tk.Descriptor()

	if len(desc.Params) != 1 {
		t.Errorf("descriptor params should contain only declared args, got %v", desc.Params)
	}
	if desc.Params["target_voltage"] != 0.7 {
		t.Errorf("expected target_voltage 0.7, got %v", desc.Params["target_voltage"])
	}
}
