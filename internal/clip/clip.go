// Package clip wraps the OS clipboard behind a small read interface so the
// monitor loop can run against a fake in tests.
//
// The backend is golang.design/x/clipboard: one process-wide Init, then
// format-typed reads. Only text is monitored; images and file lists on the
// clipboard read as "not available" and are skipped.
package clip

import (
	"errors"
	"fmt"

	"golang.design/x/clipboard"
)

// ErrNotAvailable reports that the clipboard currently holds no text. This is
// a normal transient condition (empty clipboard, image content, momentary OS
// lock) and never terminates the monitor.
var ErrNotAvailable = errors.New("clipboard text not available")

// Source reads the current clipboard text.
type Source interface {
	// ReadText returns the clipboard's text content. ErrNotAvailable means
	// there is nothing to report this cycle; any other error is a transient
	// platform failure after a successful Init.
	ReadText() (string, error)
}

// Init initialises the clipboard backend. A failure here is fatal: without a
// working backend the process has nothing to do.
func Init() error {
	if err := clipboard.Init(); err != nil {
		return fmt.Errorf("clipboard init: %w", err)
	}
	return nil
}

// System is the real clipboard Source. Init must have succeeded first.
type System struct{}

func (System) ReadText() (string, error) {
	b := clipboard.Read(clipboard.FmtText)
	if len(b) == 0 {
		return "", ErrNotAvailable
	}
	return string(b), nil
}

// WriteText replaces the clipboard's text content. Used by the one-shot
// copy-files command, never by the monitor loop.
func WriteText(text string) {
	clipboard.Write(clipboard.FmtText, []byte(text))
}
