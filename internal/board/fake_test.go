package board

import "testing"

func TestFakeConnectDisconnect(t *testing.T) {
	f := NewFake()
	h, err := f.Connect("40000000", 0, 0)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	n, err := f.Channels(h)
	if err != nil {
		t.Fatalf("channels: %v", err)
	}
	if n != 6 {
		t.Errorf("expected 6 channels, got %d", n)
	}
	if err := f.Disconnect(h); err != nil {
		t.Fatalf("disconnect: %v", err)
	}
	if _, err := f.Channels(h); err == nil {
		t.Error("expected an error after disconnect")
	}
}

func TestFakeRemembersVSet(t *testing.T) {
	f := NewFake()
	h, _ := f.Connect("40000000", 0, 0)

	err := f.WriteParameters(h, []int{0, 1}, []Value{{Name: "VSet", Value: 1500}})
	if err != nil {
		t.Fatalf("write: %v", err)
	}

	read, err := f.ReadParameters(h, []int{0, 1, 2}, []string{"VSet", "VMon", "IMonH"})
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if read[0]["VSet"] != 1500 || read[1]["VSet"] != 1500 {
		t.Errorf("VSet not remembered: %v", read)
	}
	if read[2]["VSet"] != 0 {
		t.Errorf("unset channel should read 0, got %v", read[2]["VSet"])
	}
	// VMon tracks VSet within the simulated noise band
	vmon := read[0]["VMon"]
	if vmon < 1500*0.9 || vmon > 1500*1.1 {
		t.Errorf("VMon %v too far from VSet 1500", vmon)
	}
}

func TestFakeUnknownHandle(t *testing.T) {
	f := NewFake()
	if _, err := f.ReadParameters(42, []int{0}, []string{"VSet"}); err == nil {
		t.Error("expected an error for unknown handle")
	}
	if err := f.WriteParameters(42, []int{0}, nil); err == nil {
		t.Error("expected an error for unknown handle")
	}
}

func TestFakeChannelOutOfRange(t *testing.T) {
	f := NewFake()
	h, _ := f.Connect("40000000", 0, 0)
	if _, err := f.ReadParameters(h, []int{6}, []string{"VSet"}); err == nil {
		t.Error("expected an error for channel 6")
	}
	if err := f.WriteParameters(h, []int{-1}, []Value{{Name: "VSet", Value: 1}}); err == nil {
		t.Error("expected an error for channel -1")
	}
}
