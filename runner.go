package keywedge

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
)

// LoadScript reads the whole script into memory as one text blob. Read
// failure is a fatal startup condition wrapping ErrScriptUnreadable.
func LoadScript(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrScriptUnreadable, path, err)
	}
	return string(data), nil
}

// Runner drives the transmitter over a whole buffered script.
type Runner struct {
	tx      *Transmitter
	metrics *Metrics
}

// NewRunner returns a Runner feeding tx.
func NewRunner(tx *Transmitter, metrics *Metrics) *Runner {
	if metrics == nil {
		metrics = &Metrics{}
	}
	return &Runner{tx: tx, metrics: metrics}
}

// Run consumes script line by line through the transmitter, keeping the
// working copy as exactly the unsent remainder. Tail content after the last
// separator is sent as a final line. With repeat, the working copy is
// reloaded from the pristine original on exhaustion and the pass counter
// reported; repetition continues until the process is terminated.
func (r *Runner) Run(script string, repeat bool) error {
	working := script

	for {
		for len(working) > 0 {
			var line string
			if i := strings.IndexByte(working, '\n'); i >= 0 {
				line, working = working[:i], working[i+1:]
			} else {
				line, working = working, ""
			}
			if err := r.tx.SendLine(line); err != nil {
				return err
			}
		}

		if !repeat {
			return nil
		}

		working = script
		cycle := r.metrics.RepeatCycles.Add(1)
		log.Info().Int64("cycle", cycle).Msg("script exhausted, repeating")
	}
}
