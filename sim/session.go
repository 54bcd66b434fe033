package sim

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/rustyeddy/intraday/market"
	"github.com/rustyeddy/intraday/risk"
)

// Session is one trading day: its bar sequence and the candidate positions
// considered for it. It owns the bar-by-bar replay and the cross-position
// admission policy (one completed trade and one open position per day).
type Session struct {
	Date      time.Time
	Bars      []market.Bar
	Positions []*Position

	// RealizedPL is the sum of realized P/L over closed positions,
	// accumulated exactly once per position at its Closed transition.
	RealizedPL float64

	// ExceededMonthlyPL is carried from an earlier engine draft whose
	// monthly circuit breaker never actually wrote it. The portfolio logs
	// the cutoff instead of setting this; it stays false. Pinned by test.
	ExceededMonthlyPL bool

	cfg Config
	log *zap.Logger
}

// NewSession validates that bars arrive in nondecreasing timestamp order;
// out-of-order input is rejected, never silently reordered, because the
// replay's exit sequencing depends on it.
func NewSession(date time.Time, bars []market.Bar, cfg Config, log *zap.Logger) (*Session, error) {
	if log == nil {
		log = zap.NewNop()
	}
	for i := 1; i < len(bars); i++ {
		if bars[i].Time.Before(bars[i-1].Time) {
			return nil, fmt.Errorf("session %s: bars out of chronological order at index %d (%s after %s)",
				date.Format("2006-01-02"), i, bars[i-1].Time, bars[i].Time)
		}
	}
	return &Session{
		Date: date,
		Bars: bars,
		cfg:  cfg,
		log:  log,
	}, nil
}

// AddOrder turns an order request into a waiting candidate position.
func (s *Session) AddOrder(req OrderRequest) error {
	p, err := NewPosition(req, s.cfg)
	if err != nil {
		return err
	}
	s.Positions = append(s.Positions, p)
	return nil
}

// Replay runs the day once, bar by bar. For each bar, each candidate is
// offered a fill (subject to admission) and, if open, advanced through the
// per-bar exit pipeline. A position that fills and stops out on the same
// bar is handled within that bar.
func (s *Session) Replay(ledger *risk.Ledger) {
	for _, b := range s.Bars {
		for _, p := range s.Positions {
			if p.Status() == Waiting && s.admit(p) && s.fillWindow(p, b) {
				p.Open(s.entryPrice(p, b), b.Time, ledger)
			}

			before := p.Status()
			p.Update(b, ledger)
			if before == Opened && p.Status() == Closed {
				s.RealizedPL += *p.RealizedPL
			}
		}
	}

	for _, p := range s.Positions {
		if p.Status() == Waiting {
			// An order that never filled within the session window is a
			// reportable outcome, not an error.
			s.log.Warn("order never filled",
				zap.String("position", p.ID),
				zap.String("strategy", p.Strategy),
				zap.Time("requested", p.RequestedAt),
				zap.Time("session", s.Date),
			)
		}
	}
}

// Unfilled lists candidates still waiting after replay.
func (s *Session) Unfilled() []*Position {
	var out []*Position
	for _, p := range s.Positions {
		if p.Status() == Waiting {
			out = append(out, p)
		}
	}
	return out
}

// admit gates a fill attempt. Rechecked on every bar, so a candidate that
// was blocked while another position was open stays blocked once that
// position closes (one completed trade per day).
func (s *Session) admit(p *Position) bool {
	if !p.params.Enabled {
		return false
	}

	for _, other := range s.Positions {
		if other == p {
			continue
		}
		switch other.Status() {
		case Closed, Opened:
			return false
		}
	}

	if p.params.LastEntry != nil && market.Clock(p.RequestedAt) > *p.params.LastEntry {
		return false
	}

	if s.cfg.VWAPFilter {
		if p.Side == Long && p.VWAP < p.MonthVWAP {
			return false
		}
		if p.Side == Short && p.VWAP > p.MonthVWAP {
			return false
		}
	}

	return true
}

// fillWindow reports whether the request falls inside this bar's minute.
func (s *Session) fillWindow(p *Position, b market.Bar) bool {
	return !p.RequestedAt.Before(b.Time) && p.RequestedAt.Before(b.Time.Add(time.Minute))
}

// entryPrice is the bar open, or, with InterpolateEntry, the open nudged
// toward the close by the request's sub-minute offset, tick-rounded.
func (s *Session) entryPrice(p *Position, b market.Bar) float64 {
	if !s.cfg.InterpolateEntry {
		return b.Open
	}
	frac := p.RequestedAt.Sub(b.Time).Seconds() / 60.0
	return s.cfg.Costing.RoundToTick(b.Open + (b.Close-b.Open)*frac)
}
