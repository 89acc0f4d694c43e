package keywedge

import (
	"testing"
	"time"
)

func TestMetricsSnapshot_CopiesCounters(t *testing.T) {
	m := &Metrics{}
	m.LinesSent.Add(3)
	m.CharsSent.Add(10)
	m.TerminatorsSent.Add(2)
	m.SettlePauses.Add(1)
	m.EchoBytes.Add(7)

	s := m.Snapshot()

	if s.LinesSent != 3 || s.CharsSent != 10 || s.TerminatorsSent != 2 {
		t.Fatalf("unexpected snapshot: %+v", s)
	}
	if s.SettlePauses != 1 || s.EchoBytes != 7 {
		t.Fatalf("unexpected snapshot: %+v", s)
	}
	if s.Uptime != 0 {
		t.Fatalf("uptime should be zero before session start, got %v", s.Uptime)
	}
}

func TestMetricsSnapshot_Uptime(t *testing.T) {
	m := &Metrics{}
	m.SessionStart.Store(time.Now().Add(-time.Second).UnixNano())

	s := m.Snapshot()
	if s.Uptime < time.Second {
		t.Fatalf("expected at least 1s uptime, got %v", s.Uptime)
	}
}
