package backtest

import (
	"math"

	"github.com/rustyeddy/intraday/sim"
)

// Stats is the aggregate summary of a finished run. Computed on demand
// from the sessions, not incrementally. Every ratio reports 0 when its
// denominator is empty rather than propagating a division fault.
type Stats struct {
	InitialCapital float64
	FinalCapital   float64

	Sessions  int // sessions that had candidates
	Closed    int
	Discarded int
	Unfilled  int
	Wins      int
	Losses    int

	// WinRatio is wins over closed positions; discarded positions never
	// traded and are excluded.
	WinRatio float64

	// AvgProfitRatio is |mean losing P/L| over mean winning P/L.
	AvgProfitRatio float64

	// MaxLosingStreak is the longest run of consecutive losing closed
	// positions, in chronological order. A streak count, not a capital
	// drawdown.
	MaxLosingStreak int

	// AvgRiskFraction is the mean over opened positions of the initial
	// stop expressed in currency divided by capital at open.
	AvgRiskFraction float64

	AvgMonthlyReturn    float64
	AvgSessionsPerMonth float64
}

// Stats walks the sessions in chronological order and summarizes the run.
func (p *Portfolio) Stats() Stats {
	st := Stats{
		InitialCapital: p.initial,
		FinalCapital:   p.ledger.Balance(),
	}

	var winSum, lossSum float64
	var riskSum float64
	var riskCount int
	streak := 0

	for _, s := range p.sessions {
		if len(s.Positions) == 0 {
			continue
		}
		st.Sessions++

		for _, pos := range s.Positions {
			switch pos.Status() {
			case sim.Waiting:
				st.Unfilled++
				continue
			case sim.Discarded:
				st.Discarded++
				continue
			case sim.Opened:
				// Open at end of data: risked capital but never settled.
			case sim.Closed:
				st.Closed++
				pl := *pos.RealizedPL
				switch {
				case pl > 0:
					st.Wins++
					winSum += pl
					streak = 0
				case pl < 0:
					st.Losses++
					lossSum += pl
					streak++
					if streak > st.MaxLosingStreak {
						st.MaxLosingStreak = streak
					}
				default:
					streak = 0
				}
			}

			if pos.Size > 0 && pos.CapitalAtOpen > 0 {
				riskCurrency := p.cfg.Costing.PointsToCurrency(pos.InitialStopPoints, pos.Size)
				riskSum += math.Abs(riskCurrency) / pos.CapitalAtOpen
				riskCount++
			}
		}
	}

	if st.Closed > 0 {
		st.WinRatio = float64(st.Wins) / float64(st.Closed)
	}
	if st.Wins > 0 && st.Losses > 0 {
		meanWin := winSum / float64(st.Wins)
		meanLoss := lossSum / float64(st.Losses)
		if meanWin != 0 {
			st.AvgProfitRatio = math.Abs(meanLoss) / meanWin
		}
	}
	if riskCount > 0 {
		st.AvgRiskFraction = riskSum / float64(riskCount)
	}
	if len(p.Months) > 0 {
		var sum float64
		for _, m := range p.Months {
			sum += p.MonthlyReturn[m]
		}
		st.AvgMonthlyReturn = sum / float64(len(p.Months))
		st.AvgSessionsPerMonth = float64(st.Sessions) / float64(len(p.Months))
	}

	return st
}
