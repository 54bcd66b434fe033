package sim

import (
	"github.com/rustyeddy/intraday/market"
	"github.com/rustyeddy/intraday/risk"
)

// exitRule is one step of the per-bar exit pipeline. Rules share a single
// contract and run in the fixed order built at open time; a rule that
// closes the position stops the pipeline for that bar.
type exitRule interface {
	name() string
	apply(p *Position, b market.Bar, ledger *risk.Ledger)
}

// stopLossRule closes at the stop when the bar's adverse extreme reaches
// it. The adverse extreme is assumed reachable before any favorable
// extreme in the same bar, so this runs before the take-profit check.
type stopLossRule struct{}

func (stopLossRule) name() string { return "stop-loss" }

func (stopLossRule) apply(p *Position, b market.Bar, ledger *risk.Ledger) {
	worst := *p.unrealized - p.adverseDistance(b)
	if worst <= p.StopLossPoints {
		p.close(p.StopLossPoints, Closed, ReasonStop, b.Time, ledger)
	}
}

// takeProfitRule closes at the target when the bar's favorable extreme
// reaches it, or at the bar open once a clock-form target's time arrives.
type takeProfitRule struct{}

func (takeProfitRule) name() string { return "take-profit" }

func (takeProfitRule) apply(p *Position, b market.Bar, ledger *risk.Ledger) {
	if p.takeProfitPoints != nil {
		best := *p.unrealized + p.favorableDistance(b)
		if best >= *p.takeProfitPoints {
			p.close(*p.takeProfitPoints, Closed, ReasonTake, b.Time, ledger)
		}
		return
	}
	if p.takeProfitAt != nil && market.Clock(b.Time) >= *p.takeProfitAt {
		p.close(*p.unrealized, Closed, ReasonTakeTime, b.Time, ledger)
	}
}

// breakEvenRule ratchets a still-losing stop to BreakEvenOffset once the
// favorable excursion reaches the configured ATR-scaled threshold. The
// duration variant also ratchets after BreakEvenAfter in profit. The stop
// only ever moves up, never back down.
type breakEvenRule struct{}

func (breakEvenRule) name() string { return "break-even" }

func (breakEvenRule) apply(p *Position, b market.Bar, ledger *risk.Ledger) {
	if p.StopLossPoints >= 0 {
		return
	}

	excursion := *p.unrealized + p.favorableDistance(b)
	if excursion >= p.breakEvenPoints {
		p.StopLossPoints = p.cfg.BreakEvenOffset
		return
	}

	if p.params.BreakEvenAfter > 0 &&
		b.Time.Sub(p.EntryTime) >= p.params.BreakEvenAfter &&
		*p.unrealized > 0 {
		p.StopLossPoints = p.cfg.BreakEvenOffset
	}
}

// endOfDayRule forces a close at the final exit time. A preferred earlier
// exit closes only if the position is not losing; a losing position rides
// until the final cutoff.
type endOfDayRule struct{}

func (endOfDayRule) name() string { return "end-of-day" }

func (endOfDayRule) apply(p *Position, b market.Bar, ledger *risk.Ledger) {
	tod := market.Clock(b.Time)

	if p.cfg.ExitPreferred != nil && tod >= *p.cfg.ExitPreferred && *p.unrealized >= 0 {
		p.close(*p.unrealized, Closed, ReasonPreferredEOD, b.Time, ledger)
		return
	}
	if tod >= p.cfg.ExitFinal {
		p.close(*p.unrealized, Closed, ReasonEndOfDay, b.Time, ledger)
	}
}
