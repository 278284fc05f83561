// Package autosave persists the editor session periodically and after
// edits, running every save on a single worker goroutine.
package autosave

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

const (
	DefaultInterval = 30 * time.Second
	flushTimeout    = 5 * time.Second
)

// Saver is the session surface the scheduler drives.
type Saver interface {
	Loaded() bool
	SaveIfChanged(ctx context.Context) (bool, error)
}

type Stats struct {
	Saves    int64 `json:"saves"`
	Skipped  int64 `json:"skipped"`
	Failures int64 `json:"failures"`
}

// Scheduler coalesces save requests: triggers that arrive while a save is
// pending collapse into one.
type Scheduler struct {
	saver    Saver
	logger   *slog.Logger
	interval time.Duration
	trigger  chan struct{}
	newTick  func(time.Duration) (<-chan time.Time, func())

	running  atomic.Bool
	paused   atomic.Bool
	saves    atomic.Int64
	skipped  atomic.Int64
	failures atomic.Int64
}

func New(saver Saver, interval time.Duration, logger *slog.Logger) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Scheduler{
		saver:    saver,
		logger:   logger,
		interval: interval,
		trigger:  make(chan struct{}, 1),
		newTick: func(d time.Duration) (<-chan time.Time, func()) {
			t := time.NewTicker(d)
			return t.C, t.Stop
		},
	}
}

// Trigger requests a save as soon as the worker is free. It never blocks.
func (s *Scheduler) Trigger() {
	select {
	case s.trigger <- struct{}{}:
	default:
	}
}

// Start runs the worker until ctx is done, then flushes pending changes.
func (s *Scheduler) Start(ctx context.Context) {
	if s.running.Swap(true) {
		return
	}
	defer s.running.Store(false)

	s.logger.Info("autosave started", "interval", s.interval)

	ticks, stop := s.newTick(s.interval)
	defer stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("autosave stopping")
			flushCtx, cancel := context.WithTimeout(context.Background(), flushTimeout)
			s.run(flushCtx, "shutdown")
			cancel()
			return
		case <-ticks:
			if !s.paused.Load() {
				s.run(ctx, "interval")
			}
		case <-s.trigger:
			s.run(ctx, "edit")
		}
	}
}

func (s *Scheduler) run(ctx context.Context, reason string) {
	if !s.saver.Loaded() {
		return
	}
	saved, err := s.saver.SaveIfChanged(ctx)
	switch {
	case err != nil:
		s.failures.Add(1)
		s.logger.Warn("autosave failed", "reason", reason, "error", err)
	case saved:
		s.saves.Add(1)
		s.logger.Debug("autosaved", "reason", reason)
	default:
		s.skipped.Add(1)
	}
}

// Pause stops interval saves. Edit triggers still save.
func (s *Scheduler) Pause() {
	s.paused.Store(true)
	s.logger.Info("autosave paused")
}

func (s *Scheduler) Resume() {
	s.paused.Store(false)
	s.logger.Info("autosave resumed")
}

func (s *Scheduler) IsPaused() bool  { return s.paused.Load() }
func (s *Scheduler) IsRunning() bool { return s.running.Load() }

func (s *Scheduler) Stats() Stats {
	return Stats{
		Saves:    s.saves.Load(),
		Skipped:  s.skipped.Load(),
		Failures: s.failures.Load(),
	}
}
