package setup

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/hvctl-io/hvctl/internal/board"
	"github.com/hvctl-io/hvctl/internal/config"
	"github.com/hvctl-io/hvctl/pkg/protocol"
)

// VDef is the virtual read-only parameter exposing a channel's configured
// default voltage alongside the hardware parameters.
const VDef = "VDef"

// Handler owns the crate: configuration, the board driver, and the state
// store. It implements the ticket.Handler contract. Hardware access is
// serialized per call through the driver; Handler itself holds no locks.
type Handler struct {
	cfg    *config.Config
	driver board.Driver
	store  Store
	logger *slog.Logger

	refresh   time.Duration
	rampUp    int
	rampDown  int
	imonRange int

	handles map[string]int // board address → driver handle
}

// Option configures a Handler.
type Option func(*Handler)

// WithRefreshInterval sets how long stored parameter values are considered
// fresh before GetParams re-reads them from the hardware. Default 10s.
func WithRefreshInterval(d time.Duration) Option {
	return func(h *Handler) { h.refresh = d }
}

// WithRampSpeeds sets the ramp-up and ramp-down speeds in V/s.
// Defaults 10 and 100.
func WithRampSpeeds(up, down int) Option {
	return func(h *Handler) { h.rampUp, h.rampDown = up, down }
}

// WithLowCurrentRange selects the low current-monitor range (IMonL) instead
// of the default high range.
func WithLowCurrentRange() Option {
	return func(h *Handler) { h.imonRange = 1 }
}

// WithLogger sets the handler's logger.
func WithLogger(l *slog.Logger) Option {
	return func(h *Handler) { h.logger = l }
}

// New builds a Handler: it resets the store, registers every configured
// board and channel, connects the driver to each board, and programs the
// initial safety parameters (current limit, trip time, ramp speeds).
func New(cfg *config.Config, driver board.Driver, store Store, opts ...Option) (*Handler, error) {
	h := &Handler{
		cfg:      cfg,
		driver:   driver,
		store:    store,
		logger:   slog.Default(),
		refresh:  10 * time.Second,
		rampUp:   10,
		rampDown: 100,
		handles:  make(map[string]int),
	}
	for _, opt := range opts {
		opt(h)
	}

	if err := store.Reset(); err != nil {
		return nil, err
	}
	for address, b := range cfg.Boards {
		if err := store.AddBoard(BoardState{Address: address, Conet: b.Conet, Link: b.Link}); err != nil {
			return nil, err
		}
		handle, err := driver.Connect(address, b.Conet, b.Link)
		if err != nil {
			return nil, fmt.Errorf("setup: connect board %s: %w", address, err)
		}
		h.handles[address] = handle
		if err := store.SetBoardHandle(address, handle); err != nil {
			return nil, err
		}
	}
	for _, layout := range cfg.Channels() {
		ch := ChannelState{
			ID: protocol.ChannelID{
				Board:   layout.Board,
				Conet:   layout.Conet,
				Link:    layout.Link,
				Channel: layout.Channel,
			},
			Alias: layout.Alias,
			Layer: layout.Layer,
		}
		if err := store.AddChannel(ch); err != nil {
			return nil, err
		}
		initial := []board.Value{
			{Name: "ImonRange", Value: float64(h.imonRange)},
			{Name: "ISet", Value: cfg.MaxCurrent(layout.Layer)},
			{Name: "Trip", Value: 0.2},
			{Name: "RUp", Value: float64(h.rampUp)},
			{Name: "RDWn", Value: float64(h.rampDown)},
			{Name: "PDwn", Value: 1},
		}
		if err := h.write(ch.ID, initial); err != nil {
			return nil, fmt.Errorf("setup: program channel %s: %w", ch.ID, err)
		}
	}

	h.logger.Info("crate initialized",
		"boards", len(cfg.Boards), "channels", len(cfg.Channels()))
	return h, nil
}

// write applies values to one channel through the driver.
func (h *Handler) write(id protocol.ChannelID, values []board.Value) error {
	handle, ok := h.handles[id.Board]
	if !ok {
		return fmt.Errorf("setup: board %s is not connected", id.Board)
	}
	return h.driver.WriteParameters(handle, []int{id.Channel}, values)
}

// refreshChannel re-reads every hardware parameter of one channel and stores
// the result.
func (h *Handler) refreshChannel(id protocol.ChannelID) error {
	handle, ok := h.handles[id.Board]
	if !ok {
		return fmt.Errorf("setup: board %s is not connected", id.Board)
	}
	read, err := h.driver.ReadParameters(handle, []int{id.Channel}, board.ParameterNames)
	if err != nil {
		return fmt.Errorf("setup: read channel %s: %w", id, err)
	}
	values, ok := read[id.Channel]
	if !ok {
		return fmt.Errorf("setup: driver returned no values for channel %s", id)
	}
	return h.store.UpdateParams(id, values, time.Now())
}

// SetVoltage applies multiplier times the layer default voltage to every channel
// on the given layer (all layers when nil) and powers the channels up. Ramp
// speeds are scaled per layer so every layer reaches its target together;
// the service layer -1 ramps unscaled.
func (h *Handler) SetVoltage(layer *int, multiplier float64) error {
	if multiplier < 0 || multiplier > 1.2 {
		return fmt.Errorf("setup: voltage multiplier %v outside [0, 1.2]", multiplier)
	}
	channels, err := h.store.Channels(layer)
	if err != nil {
		return err
	}
	maxDefault := h.cfg.MaxDefaultVoltage()
	for _, ch := range channels {
		defVolt := h.cfg.DefaultVoltage(ch.Layer)
		voltage := defVolt * multiplier
		speedMod := 1.0
		if ch.Layer != -1 && maxDefault > 0 {
			speedMod = defVolt / maxDefault
		}
		values := []board.Value{
			{Name: "VSet", Value: voltage},
			{Name: "RUp", Value: math.Round(float64(h.rampUp) * speedMod)},
			{Name: "RDWn", Value: math.Round(float64(h.rampDown) * speedMod)},
		}
		if err := h.write(ch.ID, values); err != nil {
			return err
		}
		h.logger.Debug("voltage set", "channel", ch.ID.String(), "vset", voltage)
	}
	return h.PowerUp(layer)
}

// PowerDown sets the voltage to zero and powers down every channel on the
// given layer (all layers when nil).
func (h *Handler) PowerDown(layer *int) error {
	channels, err := h.store.Channels(layer)
	if err != nil {
		return err
	}
	for _, ch := range channels {
		values := []board.Value{
			{Name: "VSet", Value: 0},
			{Name: "Pw", Value: 0},
			{Name: "RDWn", Value: 100},
		}
		if err := h.write(ch.ID, values); err != nil {
			return err
		}
		if err := h.refreshChannel(ch.ID); err != nil {
			h.logger.Warn("readback after power down failed", "channel", ch.ID.String(), "error", err)
		}
	}
	h.logger.Info("powered down", "channels", len(channels))
	return nil
}

// PowerUp powers up every channel on the given layer (all layers when nil).
func (h *Handler) PowerUp(layer *int) error {
	channels, err := h.store.Channels(layer)
	if err != nil {
		return err
	}
	for _, ch := range channels {
		if err := h.write(ch.ID, []board.Value{{Name: "Pw", Value: 1}}); err != nil {
			return err
		}
		if err := h.refreshChannel(ch.ID); err != nil {
			h.logger.Warn("readback after power up failed", "channel", ch.ID.String(), "error", err)
		}
	}
	return nil
}

// GetParams reads back the selected parameters (all known parameters plus
// VDef when selected is nil) for every channel on the given layer, keyed by
// the channel identifier. Stored values older than the refresh interval are
// re-read from the hardware first. A channel whose readback fails maps to a
// nil entry.
func (h *Handler) GetParams(layer *int, selected []string) (map[string]map[string]any, error) {
	requested := make(map[string]bool, len(board.ParameterNames)+1)
	for _, name := range board.ParameterNames {
		requested[name] = true
	}
	requested[VDef] = true
	if selected != nil {
		picked := make(map[string]bool, len(selected))
		for _, name := range selected {
			if requested[name] {
				picked[name] = true
			}
		}
		requested = picked
	}

	channels, err := h.store.Channels(layer)
	if err != nil {
		return nil, err
	}
	out := make(map[string]map[string]any, len(channels))
	for _, ch := range channels {
		if ch.LastUpdate == nil || time.Since(*ch.LastUpdate) > h.refresh {
			if err := h.refreshChannel(ch.ID); err != nil {
				h.logger.Warn("readback failed", "channel", ch.ID.String(), "error", err)
				out[ch.ID.String()] = nil
				continue
			}
			fresh, err := h.store.Channel(ch.ID)
			if err != nil {
				return nil, err
			}
			ch = *fresh
		}
		values := make(map[string]any, len(requested))
		for name := range requested {
			if name == VDef {
				values[VDef] = h.cfg.DefaultVoltage(ch.Layer)
				continue
			}
			if v := ch.Params[name]; v != nil {
				values[name] = *v
			} else {
				values[name] = nil
			}
		}
		out[ch.ID.String()] = values
	}
	return out, nil
}

// Close brings the crate to a safe state (voltage to zero, power off),
// disconnects every board, and releases the store.
func (h *Handler) Close() error {
	if err := h.SetVoltage(nil, 0); err != nil {
		h.logger.Warn("zeroing voltage on close failed", "error", err)
	}
	if err := h.PowerDown(nil); err != nil {
		h.logger.Warn("power down on close failed", "error", err)
	}
	boards, err := h.store.Boards()
	if err == nil {
		for _, b := range boards {
			if b.Handle == nil {
				continue
			}
			if err := h.driver.Disconnect(*b.Handle); err != nil {
				h.logger.Warn("disconnect failed", "board", b.Address, "error", err)
			}
		}
	}
	return h.store.Close()
}
