package sim

import (
	"time"

	"github.com/rustyeddy/intraday/market"
	"github.com/rustyeddy/intraday/risk"
)

// StrategyParams are the per-strategy rule numbers. One engine, keyed by
// strategy identifier; rule variants are data, not forked code.
type StrategyParams struct {
	// Enabled gates admission; disabled strategies never fill.
	Enabled bool

	// BreakEvenATR scales the favorable excursion (in ATR units) that
	// ratchets the stop to break-even.
	BreakEvenATR float64

	// TakeProfitATR, when > 0, overrides the order's target with an ATR
	// multiple.
	TakeProfitATR float64

	// LastEntry rejects orders requested after this time of day.
	LastEntry *market.TimeOfDay

	// BreakEvenAfter, when > 0, also ratchets the stop once the position
	// has been open this long while in profit, regardless of excursion.
	BreakEvenAfter time.Duration
}

// Config is the engine-level rule set shared by every session in a run.
type Config struct {
	Costing risk.Costing

	// ExitFinal force-closes any open position once a bar reaches it.
	ExitFinal market.TimeOfDay

	// ExitPreferred, when set, closes earlier but only if not losing.
	ExitPreferred *market.TimeOfDay

	// BreakEvenOffset is the ratcheted stop value, zero or a small
	// positive number of points.
	BreakEvenOffset float64

	// MinStopATR discards a sized position whose stop distance is below
	// this many ATRs. Zero disables the guard.
	MinStopATR float64

	// InterpolateEntry fills within the bar proportional to the request's
	// sub-minute offset instead of at the bar open.
	InterpolateEntry bool

	// VWAPFilter enables the experimental session-vs-month VWAP admission
	// filter. Off by default.
	VWAPFilter bool

	Strategies map[string]StrategyParams
}
