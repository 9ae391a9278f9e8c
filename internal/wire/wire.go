// Package wire handles the newline-delimited JSON framing between clipwatch
// and its host process.
//
// Wire format, both directions:
//
//	<json>\n
//
// The Emitter owns the outbound side (stdout), the CommandReader the inbound
// side (stdin). Framing is symmetric so every line is exactly one message.
package wire

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"sync"

	"clipwatch/internal/protocol"
)

// MaxLineSize is the largest inbound line we will read (1 MiB). Control
// commands are tiny; anything bigger is a corrupted stream.
const MaxLineSize = 1 * 1024 * 1024

// ErrBadCommand marks an inbound line that failed to decode. The stream
// itself is still healthy; the caller logs the line and keeps reading.
var ErrBadCommand = errors.New("bad command line")

// Emitter writes protocol messages one per line and flushes each before
// returning. Writes are serialised so concurrent emitters cannot interleave
// partial lines.
type Emitter struct {
	mu sync.Mutex
	w  io.Writer
}

// NewEmitter wraps w. For the canonical stdout emitter w is an *os.File and
// every line reaches the host in a single write.
func NewEmitter(w io.Writer) *Emitter {
	return &Emitter{w: w}
}

// Emit serialises msg to JSON and writes it followed by a newline. A write
// failure means the host has gone away and is fatal to the caller.
func (e *Emitter) Emit(msg *protocol.Message) error {
	raw, err := msg.Encode()
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	line := append(raw, '\n')

	e.mu.Lock()
	defer e.mu.Unlock()
	if _, err := e.w.Write(line); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	if f, ok := e.w.(interface{ Flush() error }); ok {
		if err := f.Flush(); err != nil {
			return fmt.Errorf("flush: %w", err)
		}
	}
	return nil
}

// CommandReader decodes inbound control commands one line at a time.
type CommandReader struct {
	br *bufio.Reader
}

// NewCommandReader wraps r.
func NewCommandReader(r io.Reader) *CommandReader {
	return &CommandReader{br: bufio.NewReaderSize(r, 4*1024)}
}

// Next blocks until one non-empty line is available and decodes it. A decode
// failure is reported wrapped in ErrBadCommand and the stream stays usable;
// any other error (io.EOF included) is terminal.
func (r *CommandReader) Next() (protocol.Command, error) {
	for {
		line, err := r.br.ReadBytes('\n')
		if err != nil {
			if err == io.EOF && len(bytes.TrimSpace(line)) > 0 {
				// final line without trailing newline
				return r.decode(line)
			}
			return protocol.Command{}, err
		}
		if len(line) > MaxLineSize {
			return protocol.Command{}, fmt.Errorf("command line too large (%d bytes)", len(line))
		}
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		return r.decode(line)
	}
}

func (r *CommandReader) decode(line []byte) (protocol.Command, error) {
	cmd, err := protocol.DecodeCommand(bytes.TrimSpace(line))
	if err != nil {
		return protocol.Command{}, fmt.Errorf("%w: %v", ErrBadCommand, err)
	}
	return cmd, nil
}
