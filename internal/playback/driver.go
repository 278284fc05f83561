package playback

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

// Ticker receives elapsed wall time from a Driver.
type Ticker interface {
	Tick(elapsed time.Duration)
}

// TickerFunc adapts a function to Ticker.
type TickerFunc func(elapsed time.Duration)

func (f TickerFunc) Tick(elapsed time.Duration) { f(elapsed) }

// Driver feeds simulated time into a Ticker at a fixed interval. A paused
// driver keeps its goroutine but stops delivering ticks.
type Driver struct {
	target   Ticker
	logger   *slog.Logger
	interval time.Duration
	newTick  func(time.Duration) (<-chan time.Time, func())
	running  atomic.Bool
	paused   atomic.Bool
}

func NewDriver(target Ticker, logger *slog.Logger) *Driver {
	return &Driver{
		target:   target,
		logger:   logger,
		interval: TickInterval,
		newTick: func(d time.Duration) (<-chan time.Time, func()) {
			t := time.NewTicker(d)
			return t.C, t.Stop
		},
	}
}

// WithTickSource replaces the wall clock, for tests.
func (d *Driver) WithTickSource(src func(time.Duration) (<-chan time.Time, func())) *Driver {
	d.newTick = src
	return d
}

// Start blocks until ctx is done. Calling Start on a running driver is a no-op.
func (d *Driver) Start(ctx context.Context) {
	if d.running.Swap(true) {
		return
	}

	d.logger.Debug("playback driver started", "interval", d.interval)

	ticks, stop := d.newTick(d.interval)
	defer stop()

	for {
		select {
		case <-ctx.Done():
			d.logger.Debug("playback driver stopping")
			d.running.Store(false)
			return
		case <-ticks:
			if !d.paused.Load() {
				d.target.Tick(d.interval)
			}
		}
	}
}

func (d *Driver) Pause()          { d.paused.Store(true) }
func (d *Driver) Resume()         { d.paused.Store(false) }
func (d *Driver) IsPaused() bool  { return d.paused.Load() }
func (d *Driver) IsRunning() bool { return d.running.Load() }
