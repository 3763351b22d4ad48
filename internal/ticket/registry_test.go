package ticket

import (
	"errors"
	"testing"
)

func TestTypesEnumeration(t *testing.T) {
	types := Types()
	want := []Type{TypeDown, TypeGetParams, TypeSetVoltage} // sorted
	if len(types) != len(want) {
		t.Fatalf("expected %d types, got %v", len(want), types)
	}
	for i, typ := range want {
		if types[i] != typ {
			t.Errorf("position %d: expected %s, got %s", i, typ, types[i])
		}
	}
}

func TestDescribe(t *testing.T) {
	for _, typ := range Types() {
		desc, err := Describe(typ)
		if err != nil {
			t.Fatalf("Describe(%s): %v", typ, err)
		}
		if desc.Name != string(typ) {
			t.Errorf("descriptor name %q does not match type %q", desc.Name, typ)
		}
		if desc.Args == nil {
			t.Errorf("%s: args must never be nil", typ)
		}
	}

	if _, err := Describe(Type("Reboot")); !errors.Is(err, ErrUnknownType) {
		t.Errorf("expected ErrUnknownType, got %v", err)
	}
}

func TestNewUnknownType(t *testing.T) {
	tk, err := New("Reboot", map[string]any{})
	if !errors.Is(err, ErrUnknownType) {
		t.Fatalf("expected ErrUnknownType, got %v", err)
	}
	if tk != nil {
		t.Error("no partial ticket may be constructed for an unknown name")
	}
}

func TestNewNilParams(t *testing.T) {
	tk, err := New(string(TypeDown), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if tk.Descriptor().Params == nil {
		t.Error("descriptor params must never be nil")
	}
}

func TestSetVoltageDescriptorBounds(t *testing.T) {
	desc, _ := Describe(TypeSetVoltage)
	spec, ok := desc.Args["target_voltage"]
	if !ok {
		t.Fatal("target_voltage not declared")
	}
	if !spec.Required {
		t.Error("target_voltage must be required")
	}
	if spec.Min == nil || *spec.Min != 0 {
		t.Errorf("expected min 0, got %v", spec.Min)
	}
	if spec.Max == nil || *spec.Max != 1.2 {
		t.Errorf("expected max 1.2, got %v", spec.Max)
	}
}
