package keywedge

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// sleeper is the clock surface the pacing code needs; clockwork clocks
// satisfy it, and tests substitute a recording implementation.
type sleeper interface {
	Sleep(d time.Duration)
}

// Pacer holds the two timing constants of the adapter protocol and performs
// the actual suspensions. Both delays are uncancellable: they are short
// enough that a cancel request may lag by one interval, which is accepted.
type Pacer struct {
	clock     sleeper
	charDelay time.Duration
}

// NewPacer returns a Pacer using the real clock.
func NewPacer(charDelay time.Duration) *Pacer {
	return newPacer(clockwork.NewRealClock(), charDelay)
}

func newPacer(clock sleeper, charDelay time.Duration) *Pacer {
	return &Pacer{clock: clock, charDelay: charDelay}
}

// InterChar suspends for the inter-character delay, giving the adapter time
// to drain one character towards the keyboard interface.
func (p *Pacer) InterChar() {
	p.clock.Sleep(p.charDelay)
}

// Settle suspends for (seconds+1) seconds after a ~Z directive. The extra
// second guarantees transmission never resumes before the adapter's own
// commanded pause has elapsed.
func (p *Pacer) Settle(seconds int) {
	p.clock.Sleep(time.Duration(seconds+1) * time.Second)
}
