package keywedge

import (
	"io"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"go.uber.org/atomic"
)

// pollInterval is the sleep between keystroke polls in the interactive
// phase, tuned to the same order of magnitude as the pacing delay.
const pollInterval = 50 * time.Millisecond

// Session owns the link for its lifetime and coordinates the echo drainer
// against the script run and the interactive forwarding phase. Exactly one
// of {script runner, interactive loop} writes to the link at any time while
// the drainer continuously reads.
type Session struct {
	link    *Link
	cfg     Config
	console Console
	sink    io.Writer
	metrics *Metrics

	clock sleeper

	// running is the continuation flag shared with the echo drainer. It is
	// set false exactly once, by the interactive loop on the cancel key.
	running atomic.Bool
}

// NewSession prepares a session over an open link. sink receives echoed
// response bytes; console may be nil when no interactive phase is wanted.
func NewSession(link *Link, cfg Config, console Console, sink io.Writer) *Session {
	return &Session{
		link:    link,
		cfg:     cfg,
		console: console,
		sink:    sink,
		metrics: &Metrics{},
		clock:   clockwork.NewRealClock(),
	}
}

// Metrics exposes the session counters.
func (s *Session) Metrics() *Metrics {
	return s.metrics
}

// Run executes the session: start the drainer, run the buffered script (if
// any), enter the interactive phase, then shut down in order: flag false,
// join the drainer, close the link.
func (s *Session) Run(script string, repeat bool) error {
	s.running.Store(true)
	s.metrics.SessionStart.Store(time.Now().UnixNano())

	drainer := newEchoDrainer(s.link, s.sink, &s.running, s.metrics)
	drainer.Start()

	var runErr error
	if script != "" {
		pacer := newPacer(s.clock, s.cfg.CharDelay)
		tx := NewTransmitter(s.link, pacer, s.metrics)
		runErr = NewRunner(tx, s.metrics).Run(script, repeat)
	}

	if runErr == nil && s.console != nil {
		s.interactive()
	}

	s.running.Store(false)
	drainer.Join()

	closeErr := s.link.Close()

	snap := s.metrics.Snapshot()
	log.Info().
		Int64("lines", snap.LinesSent).
		Int64("chars", snap.CharsSent).
		Int64("terminators", snap.TerminatorsSent).
		Int64("settles", snap.SettlePauses).
		Int64("cycles", snap.RepeatCycles).
		Int64("echo_bytes", snap.EchoBytes).
		Int64("keys", snap.KeysForwarded).
		Dur("uptime", snap.Uptime).
		Msg("session finished")

	if runErr != nil {
		return runErr
	}
	return closeErr
}

// interactive forwards keystrokes to the link unpaced until the cancel key
// is seen or the link stops reporting itself open. Human keypress cadence
// is assumed sufficient pacing.
func (s *Session) interactive() {
	for s.running.Load() && s.link.IsOpen() {
		if !s.console.Poll() {
			s.clock.Sleep(pollInterval)
			continue
		}

		key, err := s.console.ReadKey()
		if err != nil {
			log.Debug().Err(err).Msg("console closed, ending interactive phase")
			return
		}

		if key == s.cfg.CancelKey {
			s.running.Store(false)
			return
		}

		if err := s.link.WriteByte(key); err != nil {
			log.Error().Err(err).Msg("forwarding keystroke failed")
			return
		}
		s.metrics.KeysForwarded.Add(1)
	}
}
