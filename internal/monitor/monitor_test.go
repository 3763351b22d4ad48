package monitor

import (
	"errors"
	"log/slog"
	"testing"
)

type fakeReader struct {
	calls    int
	selected []string
	err      error
}

func (f *fakeReader) GetParams(layer *int, selected []string) (map[string]map[string]any, error) {
	f.calls++
	f.selected = selected
	if f.err != nil {
		return nil, f.err
	}
	return map[string]map[string]any{
		"40000000:0:0:0": {"VMon": 1499.3},
		"40000000:0:0:1": nil,
	}, nil
}

func TestNewRejectsBadSchedule(t *testing.T) {
	if _, err := New(&fakeReader{}, "not a schedule", nil, nil); err == nil {
		t.Error("expected an error for an invalid schedule")
	}
}

func TestTick(t *testing.T) {
	r := &fakeReader{}
	m, err := New(r, "@every 1h", []string{"VMon"}, slog.Default())
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	m.tick()
	if r.calls != 1 {
		t.Fatalf("expected one readback, got %d", r.calls)
	}
	if len(r.selected) != 1 || r.selected[0] != "VMon" {
		t.Errorf("expected selection [VMon], got %v", r.selected)
	}
}

func TestTickSurvivesReadbackFailure(t *testing.T) {
	r := &fakeReader{err: errors.New("crate offline")}
	m, err := New(r, "@every 1h", nil, slog.Default())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	m.tick() // must not panic
	if r.calls != 1 {
		t.Fatalf("expected one readback, got %d", r.calls)
	}
}
