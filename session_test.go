package keywedge

import (
	"bytes"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// safeBuffer is an output sink readable while the drainer is still writing.
type safeBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *safeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *safeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// stubConsole feeds a fixed sequence of keystrokes.
type stubConsole struct {
	keys chan byte
}

func newStubConsole(keys ...byte) *stubConsole {
	c := &stubConsole{keys: make(chan byte, len(keys))}
	for _, k := range keys {
		c.keys <- k
	}
	return c
}

func (c *stubConsole) Poll() bool { return len(c.keys) > 0 }

func (c *stubConsole) ReadKey() (byte, error) {
	select {
	case b, ok := <-c.keys:
		if !ok {
			return 0, io.EOF
		}
		return b, nil
	default:
		return 0, io.EOF
	}
}

// gateSleeper passes short pacing delays through untouched but blocks on a
// settle-length sleep until the test releases it, so the test can observe
// the session mid-settle.
type gateSleeper struct {
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func newGateSleeper() *gateSleeper {
	return &gateSleeper{
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
}

func (g *gateSleeper) Sleep(d time.Duration) {
	if d < time.Second {
		return
	}
	g.once.Do(func() { close(g.entered) })
	<-g.release
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func TestSessionRun_ScriptThenInteractiveCancel(t *testing.T) {
	mp := newMockPort()
	cfg := testConfig()
	link := newLink(mp, cfg)

	// Forward one keystroke, then cancel with ESC.
	console := newStubConsole('x', cfg.CancelKey)
	sink := &safeBuffer{}

	s := NewSession(link, cfg, console, sink)
	require.NoError(t, s.Run("hi~I\n", false))

	assert.Equal(t, []byte("hi\rx"), mp.written())
	assert.True(t, mp.isClosed(), "link must be closed after the session")
	assert.Equal(t, int64(1), s.Metrics().KeysForwarded.Load())
}

func TestSessionRun_EchoDrainedDuringSettle(t *testing.T) {
	mp := newMockPort()
	cfg := testConfig()
	link := newLink(mp, cfg)
	sink := &safeBuffer{}

	s := NewSession(link, cfg, nil, sink)
	gate := newGateSleeper()
	s.clock = gate

	done := make(chan error, 1)
	go func() { done <- s.Run("~Z5\n", false) }()

	// Wait until the transmitter is suspended in the settle pause, then
	// deliver adapter response bytes.
	<-gate.entered
	mp.readCh <- []byte{'o'}
	mp.readCh <- []byte{'k'}

	// The drainer must forward them while the settle is still in progress.
	waitFor(t, 2*time.Second, func() bool { return sink.String() == "ok" })

	close(gate.release)
	require.NoError(t, <-done)

	assert.Equal(t, []byte{0x0d}, mp.written())
	assert.Equal(t, int64(2), s.Metrics().EchoBytes.Load())
}

func TestSessionRun_LinkCloseEndsInteractivePhase(t *testing.T) {
	mp := newMockPort()
	cfg := testConfig()
	link := newLink(mp, cfg)

	// Console never produces a key; only the link closing can end the loop.
	console := newStubConsole()
	s := NewSession(link, cfg, console, &safeBuffer{})

	done := make(chan error, 1)
	go func() { done <- s.Run("", false) }()

	time.Sleep(20 * time.Millisecond)
	require.NoError(t, link.Close())

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("session did not end after link close")
	}
}

func TestSessionRun_DirectiveFailureSkipsInteractive(t *testing.T) {
	mp := newMockPort()
	cfg := testConfig()
	link := newLink(mp, cfg)

	console := newStubConsole('x')
	s := NewSession(link, cfg, console, &safeBuffer{})

	err := s.Run("bad~Zx\n", false)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDirectiveParse)
	assert.True(t, mp.isClosed(), "link must still be closed on failure")
	assert.Equal(t, int64(0), s.Metrics().KeysForwarded.Load())
}
