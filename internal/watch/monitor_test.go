package watch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clipwatch/internal/clip"
	"clipwatch/internal/wire"
)

type fakeSource struct {
	mu   sync.Mutex
	text string
	err  error
}

func (f *fakeSource) ReadText() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

func (f *fakeSource) set(text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.text, f.err = text, nil
}

func (f *fakeSource) setErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

// captureBuffer records emitted lines for assertion from the test goroutine.
type captureBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *captureBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *captureBuffer) lines() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	s := strings.TrimRight(b.buf.String(), "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

type brokenPipe struct{}

func (brokenPipe) Write([]byte) (int, error) { return 0, errors.New("broken pipe") }

func newTestMonitor(source clip.Source, out *captureBuffer) *Monitor {
	m := NewMonitor(source, wire.NewEmitter(out), NewState(), NewScanner(), Config{
		ActiveInterval: time.Millisecond,
		PausedInterval: time.Millisecond,
	})
	m.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	return m
}

func decodeLine(t *testing.T, line string) map[string]any {
	t.Helper()
	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &got))
	return got
}

func TestCycleEmitsUpdateForNewContent(t *testing.T) {
	source := &fakeSource{text: "Test Data"}
	out := &captureBuffer{}
	m := newTestMonitor(source, out)

	require.NoError(t, m.cycle())
	lines := out.lines()
	require.Len(t, lines, 1)

	got := decodeLine(t, lines[0])
	assert.Equal(t, "clipboard_update", got["type"])
	assert.Equal(t, "Test Data", got["content"])
	assert.Equal(t, float64(9), got["length"])
	assert.Equal(t, "2026-01-02T03:04:05Z", got["timestamp"])
}

func TestCycleUnchangedContentIsSilent(t *testing.T) {
	source := &fakeSource{text: "same"}
	out := &captureBuffer{}
	m := newTestMonitor(source, out)

	require.NoError(t, m.cycle())
	require.NoError(t, m.cycle())
	assert.Len(t, out.lines(), 1, "second identical cycle must emit nothing")
}

func TestCycleEmitsOneUpdatePerDistinctValue(t *testing.T) {
	source := &fakeSource{}
	out := &captureBuffer{}
	m := newTestMonitor(source, out)

	for _, content := range []string{"one", "two", "three"} {
		source.set(content)
		require.NoError(t, m.cycle())
		require.NoError(t, m.cycle())
	}
	lines := out.lines()
	require.Len(t, lines, 3)
	for i, want := range []string{"one", "two", "three"} {
		assert.Equal(t, want, decodeLine(t, lines[i])["content"])
	}
}

func TestCycleAbsorbsTransientReadFailures(t *testing.T) {
	source := &fakeSource{err: clip.ErrNotAvailable}
	out := &captureBuffer{}
	m := newTestMonitor(source, out)

	require.NoError(t, m.cycle())
	source.setErr(errors.New("xfixes query failed"))
	require.NoError(t, m.cycle())
	assert.Empty(t, out.lines(), "transient failures must not reach the protocol stream")

	// and the loop keeps working afterwards
	source.set("recovered")
	require.NoError(t, m.cycle())
	assert.Len(t, out.lines(), 1)
}

func TestCycleTriggerFollowsUpdate(t *testing.T) {
	source := &fakeSource{text: "<qdrant-search>hello</qdrant-search>"}
	out := &captureBuffer{}
	m := newTestMonitor(source, out)

	require.NoError(t, m.cycle())
	lines := out.lines()
	require.Len(t, lines, 2)

	assert.Equal(t, "clipboard_update", decodeLine(t, lines[0])["type"])
	trigger := decodeLine(t, lines[1])
	assert.Equal(t, "trigger_xml", trigger["type"])
	assert.Equal(t, []any{"<qdrant-search>hello</qdrant-search>"}, trigger["xml_payloads"])
}

func TestCycleEmitFailureIsFatal(t *testing.T) {
	source := &fakeSource{text: "data"}
	m := NewMonitor(source, wire.NewEmitter(brokenPipe{}), NewState(), NewScanner(), Config{})
	require.Error(t, m.cycle())
}

func TestRunEmitsReadyFirst(t *testing.T) {
	source := &fakeSource{text: "initial"}
	out := &captureBuffer{}
	m := newTestMonitor(source, out)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx, nil) }()

	require.Eventually(t, func() bool { return len(out.lines()) >= 2 }, 2*time.Second, time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	lines := out.lines()
	assert.Equal(t, `{"type":"ready"}`, lines[0], "first line of the process must be the ready message")
	assert.Equal(t, "clipboard_update", decodeLine(t, lines[1])["type"])
}

func TestRunReadyEmitFailureIsFatal(t *testing.T) {
	m := NewMonitor(&fakeSource{}, wire.NewEmitter(brokenPipe{}), NewState(), NewScanner(), Config{})
	require.Error(t, m.Run(context.Background(), nil))
}

func TestRunStopsWhenControlStreamEnds(t *testing.T) {
	source := &fakeSource{text: "x"}
	out := &captureBuffer{}
	m := newTestMonitor(source, out)

	controlDone := make(chan struct{})
	done := make(chan error, 1)
	go func() { done <- m.Run(context.Background(), controlDone) }()

	require.Eventually(t, func() bool { return len(out.lines()) >= 1 }, 2*time.Second, time.Millisecond)
	close(controlDone)

	select {
	case err := <-done:
		require.NoError(t, err, "host exit is a clean stop, not an error")
	case <-time.After(2 * time.Second):
		t.Fatal("monitor did not stop after control stream closed")
	}
}

func TestRunPauseSuppressesUpdates(t *testing.T) {
	source := &fakeSource{text: "A"}
	out := &captureBuffer{}
	state := NewState()
	m := NewMonitor(source, wire.NewEmitter(out), state, NewScanner(), Config{
		ActiveInterval: time.Millisecond,
		PausedInterval: time.Millisecond,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx, nil) }()

	// ready + update for "A"
	require.Eventually(t, func() bool { return len(out.lines()) == 2 }, 2*time.Second, time.Millisecond)

	state.Pause()
	time.Sleep(20 * time.Millisecond) // let any in-flight cycle drain
	source.set("B")
	time.Sleep(50 * time.Millisecond)
	assert.Len(t, out.lines(), 2, "paused monitor must not emit updates")

	// Content reverts while paused: invisible after resume, no backlog replay.
	source.set("A")
	state.Resume()
	time.Sleep(50 * time.Millisecond)
	assert.Len(t, out.lines(), 2, "reverted change during pause must stay invisible")

	// A real change after resume is reported once.
	source.set("B")
	require.Eventually(t, func() bool { return len(out.lines()) == 3 }, 2*time.Second, time.Millisecond)
	got := decodeLine(t, out.lines()[2])
	assert.Equal(t, "B", got["content"])

	cancel()
	require.NoError(t, <-done)
}
