// Package watch implements the clipboard poll loop: read, fingerprint,
// compare, scan for trigger markup, emit. One monitor goroutine owns all
// clipboard access and all outbound writes; the control listener goroutine
// only flips the shared pause flag.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"clipwatch/internal/clip"
	"clipwatch/internal/protocol"
	"clipwatch/internal/wire"
)

const (
	// DefaultActiveInterval is the sleep between poll cycles while monitoring.
	DefaultActiveInterval = 500 * time.Millisecond
	// DefaultPausedInterval is the longer sleep while paused, when a cycle
	// only re-checks the flag.
	DefaultPausedInterval = 1000 * time.Millisecond
)

// Config carries the poll cadence. Zero values take the defaults.
type Config struct {
	ActiveInterval time.Duration
	PausedInterval time.Duration
}

func (c Config) withDefaults() Config {
	if c.ActiveInterval <= 0 {
		c.ActiveInterval = DefaultActiveInterval
	}
	if c.PausedInterval <= 0 {
		c.PausedInterval = DefaultPausedInterval
	}
	return c
}

// Monitor is the orchestrator: it ties the clipboard source, the change
// detector, the trigger scanner and the emitter together in a fixed-cadence
// loop.
type Monitor struct {
	source  clip.Source
	emitter *wire.Emitter
	state   *State
	scanner *Scanner
	cfg     Config

	lastFingerprint string
	now             func() time.Time
}

// NewMonitor assembles a monitor. The state handle must be the same one given
// to the control listener.
func NewMonitor(source clip.Source, emitter *wire.Emitter, state *State, scanner *Scanner, cfg Config) *Monitor {
	return &Monitor{
		source:  source,
		emitter: emitter,
		state:   state,
		scanner: scanner,
		cfg:     cfg.withDefaults(),
		now:     time.Now,
	}
}

// Run emits the ready message and then polls until a fatal emit failure (the
// host stopped reading stdout), until controlDone is closed (the host closed
// stdin), or until ctx is cancelled. Only the emit-failure path returns an
// error; the other two are a clean stop.
//
// While paused no clipboard read happens at all. Changes during the pause
// window are not queued: the first active cycle after resume compares the
// then-current clipboard against the last reported fingerprint and nothing
// else.
func (m *Monitor) Run(ctx context.Context, controlDone <-chan struct{}) error {
	if err := m.emitter.Emit(protocol.Ready()); err != nil {
		return fmt.Errorf("emit ready: %w", err)
	}
	slog.Info("clipboard monitor running",
		"active_interval", m.cfg.ActiveInterval,
		"paused_interval", m.cfg.PausedInterval,
	)

	for {
		interval := m.cfg.ActiveInterval
		if !m.state.Active() {
			interval = m.cfg.PausedInterval
		}
		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			slog.Info("shutdown signal received")
			return nil
		case <-controlDone:
			timer.Stop()
			slog.Info("host closed control stream, stopping")
			return nil
		case <-timer.C:
		}
		if !m.state.Active() {
			continue
		}
		if err := m.cycle(); err != nil {
			return err
		}
	}
}

// cycle performs one read → detect → emit pass. Transient read failures are
// absorbed; only emit failures propagate.
func (m *Monitor) cycle() error {
	content, err := m.source.ReadText()
	if err != nil {
		if !errors.Is(err, clip.ErrNotAvailable) {
			slog.Debug("clipboard read failed", "err", err)
		}
		return nil
	}

	fingerprint, changed := Detect(content, m.lastFingerprint)
	if !changed {
		return nil
	}
	m.lastFingerprint = fingerprint

	if err := m.emitter.Emit(protocol.ClipboardUpdate(content, m.now())); err != nil {
		return fmt.Errorf("emit clipboard update: %w", err)
	}
	if payloads := m.scanner.Scan(content); len(payloads) > 0 {
		slog.Debug("trigger markup detected", "count", len(payloads))
		if err := m.emitter.Emit(protocol.TriggerXML(payloads)); err != nil {
			return fmt.Errorf("emit trigger: %w", err)
		}
	}
	return nil
}
