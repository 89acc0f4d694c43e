package keywedge

import (
	"errors"
	"io"

	"github.com/rs/zerolog/log"
	"go.uber.org/atomic"
)

// byteReader is the read half of the link the drainer borrows.
type byteReader interface {
	ReadByte() (byte, bool, error)
}

// EchoDrainer continuously drains response bytes from the adapter and
// forwards them to the output sink. It runs for the entire session,
// independent of whether the transmitter is mid-line or mid-settle.
type EchoDrainer struct {
	link    byteReader
	sink    io.Writer
	running *atomic.Bool
	metrics *Metrics
	done    chan struct{}
}

func newEchoDrainer(link byteReader, sink io.Writer, running *atomic.Bool, metrics *Metrics) *EchoDrainer {
	return &EchoDrainer{
		link:    link,
		sink:    sink,
		running: running,
		metrics: metrics,
		done:    make(chan struct{}),
	}
}

// Start launches the drain loop on its own goroutine.
func (d *EchoDrainer) Start() {
	go d.loop()
}

// Join blocks until the drain loop has observed the false continuation flag
// and exited. The session controller must join before closing the link to
// avoid a read-after-close fault.
func (d *EchoDrainer) Join() {
	<-d.done
}

func (d *EchoDrainer) loop() {
	defer close(d.done)

	buf := [1]byte{}
	for d.running.Load() {
		b, ok, err := d.link.ReadByte()
		if err != nil {
			if errors.Is(err, ErrLinkClosed) {
				return
			}
			// Non-timeout faults are tolerated by re-polling, but counted
			// and logged so a dead transport is visible in the log.
			d.metrics.ReadErrors.Add(1)
			log.Debug().Err(err).Msg("echo read fault, re-polling")
			continue
		}
		if !ok {
			d.metrics.ReadTimeouts.Add(1)
			continue
		}

		buf[0] = b
		if _, err := d.sink.Write(buf[:]); err != nil {
			log.Debug().Err(err).Msg("echo sink write failed")
			continue
		}
		d.metrics.EchoBytes.Add(1)
	}
}
