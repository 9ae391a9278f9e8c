package watch

import "sync"

// State is the monitoring flag shared between the poll loop and the control
// listener. It is constructed once at startup and passed to both; there is no
// package-level instance. Active at start.
type State struct {
	mu     sync.Mutex
	active bool
}

// NewState returns a State in the active mode.
func NewState() *State {
	return &State{active: true}
}

// Active reports whether polling should do work this cycle.
func (s *State) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Pause suspends monitoring. Idempotent.
func (s *State) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = false
}

// Resume re-enables monitoring. Idempotent.
func (s *State) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = true
}
