package board

import (
	"fmt"
	"math/rand/v2"
	"sync"
)

const fakeChannels = 6

// Fake simulates a crate of V65XX boards. It remembers the set voltage per
// channel and synthesizes monitoring values around it: VMon is the set
// voltage with gaussian noise, the current monitors decay exponentially.
// Safe for concurrent use.
type Fake struct {
	mu     sync.Mutex
	next   int
	boards map[int]*fakeBoard
}

type fakeBoard struct {
	address string
	vset    map[int]float64
	power   map[int]float64
}

// NewFake creates a fake driver with no boards connected.
func NewFake() *Fake {
	return &Fake{next: 1, boards: make(map[int]*fakeBoard)}
}

func (f *Fake) Connect(address string, conet, link int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	handle := f.next
	f.next++
	f.boards[handle] = &fakeBoard{
		address: address,
		vset:    make(map[int]float64),
		power:   make(map[int]float64),
	}
	return handle, nil
}

func (f *Fake) Disconnect(handle int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.boards[handle]; !ok {
		return fmt.Errorf("fake board: unknown handle %d", handle)
	}
	delete(f.boards, handle)
	return nil
}

func (f *Fake) Channels(handle int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.boards[handle]; !ok {
		return 0, fmt.Errorf("fake board: unknown handle %d", handle)
	}
	return fakeChannels, nil
}

func (f *Fake) ReadParameters(handle int, channels []int, names []string) (map[int]map[string]float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.boards[handle]
	if !ok {
		return nil, fmt.Errorf("fake board: unknown handle %d", handle)
	}
	res := make(map[int]map[string]float64, len(channels))
	for _, ch := range channels {
		if ch < 0 || ch >= fakeChannels {
			return nil, fmt.Errorf("fake board: channel %d out of range", ch)
		}
		values := make(map[string]float64, len(names))
		for _, name := range names {
			switch name {
			case "VSet":
				values[name] = b.vset[ch]
			case "VMon":
				values[name] = b.vset[ch] * (1 + rand.NormFloat64()*0.02)
			case "IMonH", "IMonL":
				values[name] = rand.ExpFloat64() / 10
			case "Pw":
				values[name] = b.power[ch]
			default:
				values[name] = 0
			}
		}
		res[ch] = values
	}
	return res, nil
}

func (f *Fake) WriteParameters(handle int, channels []int, values []Value) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.boards[handle]
	if !ok {
		return fmt.Errorf("fake board: unknown handle %d", handle)
	}
	for _, ch := range channels {
		if ch < 0 || ch >= fakeChannels {
			return fmt.Errorf("fake board: channel %d out of range", ch)
		}
	}
	for _, v := range values {
		switch v.Name {
		case "VSet":
			for _, ch := range channels {
				b.vset[ch] = v.Value
			}
		case "Pw":
			for _, ch := range channels {
				b.power[ch] = v.Value
			}
		}
	}
	return nil
}
