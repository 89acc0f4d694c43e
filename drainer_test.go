package keywedge

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/atomic"
)

func TestEchoDrainer_ForwardsBytesInOrder(t *testing.T) {
	mp := newMockPort()
	link := newLink(mp, testConfig())
	sink := &safeBuffer{}
	running := atomic.NewBool(true)
	m := &Metrics{}

	d := newEchoDrainer(link, sink, running, m)
	d.Start()

	mp.readCh <- []byte{'h'}
	mp.readCh <- []byte{'i'}
	waitFor(t, 2*time.Second, func() bool { return sink.String() == "hi" })

	running.Store(false)
	d.Join()

	assert.Equal(t, int64(2), m.EchoBytes.Load())
}

func TestEchoDrainer_TimeoutsAreSilent(t *testing.T) {
	mp := newMockPort()
	link := newLink(mp, testConfig())
	running := atomic.NewBool(true)
	m := &Metrics{}

	d := newEchoDrainer(link, &safeBuffer{}, running, m)
	d.Start()

	// Nothing arrives; the drainer just keeps polling.
	waitFor(t, 2*time.Second, func() bool { return m.ReadTimeouts.Load() >= 3 })

	running.Store(false)
	d.Join()

	assert.Equal(t, int64(0), m.ReadErrors.Load())
	assert.Equal(t, int64(0), m.EchoBytes.Load())
}

func TestEchoDrainer_RepollsAfterReadFault(t *testing.T) {
	mp := newMockPort()
	link := newLink(mp, testConfig())
	sink := &safeBuffer{}
	running := atomic.NewBool(true)
	m := &Metrics{}

	mp.mu.Lock()
	mp.errToReturn = errors.New("spurious fault")
	mp.mu.Unlock()

	d := newEchoDrainer(link, sink, running, m)
	d.Start()

	mp.readCh <- []byte{'z'}
	waitFor(t, 2*time.Second, func() bool { return sink.String() == "z" })

	running.Store(false)
	d.Join()

	assert.Equal(t, int64(1), m.ReadErrors.Load())
}

func TestEchoDrainer_StopsOnClosedLink(t *testing.T) {
	mp := newMockPort()
	link := newLink(mp, testConfig())
	running := atomic.NewBool(true)

	d := newEchoDrainer(link, &safeBuffer{}, running, &Metrics{})
	d.Start()

	// An unexpected close ends the drain loop without the flag flipping.
	_ = link.Close()

	select {
	case <-d.done:
	case <-time.After(2 * time.Second):
		t.Fatal("drainer did not stop after link close")
	}
}
