package keywedge

import (
	"github.com/rs/zerolog/log"
)

// byteWriter is the write half of the link the transmitter needs.
type byteWriter interface {
	WriteByte(b byte) error
}

// Transmitter implements the per-line send algorithm: character-by-character
// paced writes plus directive-triggered terminator and settle handling.
type Transmitter struct {
	link    byteWriter
	pacer   *Pacer
	metrics *Metrics
}

// NewTransmitter returns a Transmitter writing to link at the pacer's rate.
func NewTransmitter(link byteWriter, pacer *Pacer, metrics *Metrics) *Transmitter {
	if metrics == nil {
		metrics = &Metrics{}
	}
	return &Transmitter{link: link, pacer: pacer, metrics: metrics}
}

// SendLine transmits one raw script line. Ordinary characters are written
// one at a time with an inter-character delay after every character,
// including the last, so the adapter has drained its buffer before the
// terminator logic runs. Comment and empty lines send no characters but are
// still scanned for directives. Only lines bearing a directive get a
// carriage-return terminator.
func (t *Transmitter) SendLine(raw string) error {
	clean, comment := normalizeLine(raw)

	// Directive scanning is unconditional: comment and empty lines skip
	// only the character loop, never the directive handling.
	payload, d, err := scanDirective(clean)
	if err != nil {
		return err
	}

	t.metrics.LinesSent.Add(1)
	if comment {
		t.metrics.CommentLines.Add(1)
	}

	if !comment && len(payload) > 0 {
		for i := 0; i < len(payload); i++ {
			if err := t.link.WriteByte(payload[i]); err != nil {
				t.metrics.WriteErrors.Add(1)
				return err
			}
			t.metrics.CharsSent.Add(1)
			t.pacer.InterChar()
		}
	}

	switch d.Kind {
	case DirectiveImmediate:
		if err := t.link.WriteByte(terminator); err != nil {
			t.metrics.WriteErrors.Add(1)
			return err
		}
		t.metrics.TerminatorsSent.Add(1)
	case DirectiveDelay:
		if err := t.link.WriteByte(terminator); err != nil {
			t.metrics.WriteErrors.Add(1)
			return err
		}
		t.metrics.TerminatorsSent.Add(1)
		if d.Seconds > 0 {
			log.Debug().Int("seconds", d.Seconds+1).Msg("settle pause")
			t.metrics.SettlePauses.Add(1)
			t.pacer.Settle(d.Seconds)
		}
	case DirectiveNone:
		// No terminator byte at all for an ordinary line.
	}

	return nil
}
