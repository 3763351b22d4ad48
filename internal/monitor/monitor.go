// Package monitor periodically reads back channel parameters and logs them,
// giving operators a heartbeat of the crate between tickets.
package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/robfig/cron/v3"
)

// Reader is the readback slice of the setup handler the monitor needs.
type Reader interface {
	GetParams(layer *int, selected []string) (map[string]map[string]any, error)
}

// Monitor runs a cron-scheduled parameter readback.
type Monitor struct {
	cron   *cron.Cron
	reader Reader
	params []string
	logger *slog.Logger
}

// New creates a monitor that reads the given parameters (all when nil) on
// the given cron schedule, e.g. "@every 30s".
func New(reader Reader, schedule string, params []string, logger *slog.Logger) (*Monitor, error) {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Monitor{
		cron:   cron.New(),
		reader: reader,
		params: params,
		logger: logger,
	}
	if _, err := m.cron.AddFunc(schedule, m.tick); err != nil {
		return nil, fmt.Errorf("monitor: invalid schedule %q: %w", schedule, err)
	}
	return m, nil
}

// Start begins the schedule and blocks until the context is cancelled.
func (m *Monitor) Start(ctx context.Context) error {
	m.cron.Start()
	m.logger.Info("monitor started")

	<-ctx.Done()
	m.cron.Stop()
	m.logger.Info("monitor stopped")
	return ctx.Err()
}

// tick performs one readback and logs one line per channel.
func (m *Monitor) tick() {
	channels, err := m.reader.GetParams(nil, m.params)
	if err != nil {
		m.logger.Error("readback failed", "error", err)
		return
	}
	ids := make([]string, 0, len(channels))
	for id := range channels {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		values := channels[id]
		if values == nil {
			m.logger.Warn("channel unreadable", "channel", id)
			continue
		}
		attrs := make([]any, 0, 2+2*len(values))
		attrs = append(attrs, "channel", id)
		names := make([]string, 0, len(values))
		for name := range values {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			attrs = append(attrs, name, values[name])
		}
		m.logger.Info("readback", attrs...)
	}
}
