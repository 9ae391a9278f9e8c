package watch

import (
	"errors"
	"io"
	"log/slog"

	"clipwatch/internal/protocol"
	"clipwatch/internal/wire"
)

// Listener reads control commands from the host and applies them to the
// shared State. It runs on its own goroutine for the life of the process and
// stops permanently when the control stream ends.
type Listener struct {
	reader *wire.CommandReader
	state  *State
	done   chan struct{}
}

// NewListener wraps the inbound control stream, stdin in the real process.
func NewListener(r io.Reader, state *State) *Listener {
	return &Listener{
		reader: wire.NewCommandReader(r),
		state:  state,
		done:   make(chan struct{}),
	}
}

// Done is closed when the control stream has ended. The monitor treats it as
// the host having exited and shuts down.
func (l *Listener) Done() <-chan struct{} { return l.done }

// Run blocks until the control stream closes or errors. Malformed lines are
// logged and skipped; they never reach the outbound stream and never change
// monitoring state. Call on a dedicated goroutine.
func (l *Listener) Run() {
	defer close(l.done)
	for {
		cmd, err := l.reader.Next()
		if err != nil {
			switch {
			case errors.Is(err, wire.ErrBadCommand):
				slog.Warn("dropping malformed control line", "err", err)
				continue
			case errors.Is(err, io.EOF):
				slog.Info("control stream closed")
			default:
				slog.Warn("control stream read failed", "err", err)
			}
			return
		}
		switch cmd.Type {
		case protocol.CommandPause:
			l.state.Pause()
			slog.Debug("monitoring paused")
		case protocol.CommandResume:
			l.state.Resume()
			slog.Debug("monitoring resumed")
		}
	}
}
