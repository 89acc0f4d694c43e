package keywedge

import (
	"sync/atomic"
	"time"
)

// Metrics tracks session transmission and echo statistics.
type Metrics struct {
	// Transmission
	LinesSent       atomic.Int64 // Lines fed through the transmitter
	CharsSent       atomic.Int64 // Ordinary characters written
	TerminatorsSent atomic.Int64 // Carriage-return terminators written
	SettlePauses    atomic.Int64 // ~Z settle pauses performed
	CommentLines    atomic.Int64 // Lines skipped as comments
	RepeatCycles    atomic.Int64 // Completed repeat passes over the script
	WriteErrors     atomic.Int64 // Link write failures

	// Echo path
	EchoBytes    atomic.Int64 // Bytes drained and forwarded to the sink
	ReadTimeouts atomic.Int64 // Polls that returned no data
	ReadErrors   atomic.Int64 // Non-timeout read faults tolerated by re-polling

	// Interactive phase
	KeysForwarded atomic.Int64 // Keystrokes written unpaced to the link

	SessionStart atomic.Int64 // UnixNano at session start
}

// Snapshot is a point-in-time copy of the metrics for reporting.
type Snapshot struct {
	LinesSent       int64
	CharsSent       int64
	TerminatorsSent int64
	SettlePauses    int64
	CommentLines    int64
	RepeatCycles    int64
	WriteErrors     int64
	EchoBytes       int64
	ReadTimeouts    int64
	ReadErrors      int64
	KeysForwarded   int64
	Uptime          time.Duration
}

// Snapshot returns a consistent-enough copy of the counters. Individual
// loads are atomic; the set as a whole is advisory.
func (m *Metrics) Snapshot() Snapshot {
	s := Snapshot{
		LinesSent:       m.LinesSent.Load(),
		CharsSent:       m.CharsSent.Load(),
		TerminatorsSent: m.TerminatorsSent.Load(),
		SettlePauses:    m.SettlePauses.Load(),
		CommentLines:    m.CommentLines.Load(),
		RepeatCycles:    m.RepeatCycles.Load(),
		WriteErrors:     m.WriteErrors.Load(),
		EchoBytes:       m.EchoBytes.Load(),
		ReadTimeouts:    m.ReadTimeouts.Load(),
		ReadErrors:      m.ReadErrors.Load(),
		KeysForwarded:   m.KeysForwarded.Load(),
	}
	if start := m.SessionStart.Load(); start > 0 {
		s.Uptime = time.Duration(time.Now().UnixNano() - start)
	}
	return s
}
