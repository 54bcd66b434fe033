package journal

import "time"

// PositionRecord is one settled position (closed or discarded).
type PositionRecord struct {
	ID          string
	SessionDate time.Time
	Strategy    string
	Side        string
	RequestedAt time.Time
	EntryPrice  float64
	Size        int
	RealizedPL  float64
	Status      string
	Reason      string
	ClosedAt    time.Time
}

// SessionRecord is the per-day equity snapshot taken after a session's
// replay has been folded into the portfolio.
type SessionRecord struct {
	Date       time.Time
	RealizedPL float64
	Capital    float64
	Positions  int
}

type Journal interface {
	RecordPosition(PositionRecord) error
	RecordSession(SessionRecord) error
	Close() error
}

// Nop discards everything. Used when journaling is disabled.
type Nop struct{}

func (Nop) RecordPosition(PositionRecord) error { return nil }
func (Nop) RecordSession(SessionRecord) error   { return nil }
func (Nop) Close() error                        { return nil }
