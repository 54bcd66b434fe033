package sim

import (
	"fmt"
	"math"
	"time"

	"github.com/rustyeddy/intraday/market"
	"github.com/rustyeddy/intraday/pkg/id"
	"github.com/rustyeddy/intraday/risk"
)

// Side of a position: +1 long, -1 short.
type Side int8

const (
	Long  Side = +1
	Short Side = -1
)

func (s Side) String() string {
	if s == Short {
		return "SHORT"
	}
	return "LONG"
}

// Status is the position lifecycle state. The only legal transitions are
// Waiting->Opened, Opened->Closed and Waiting->Discarded (sizing failure);
// Closed and Discarded are terminal.
type Status int8

const (
	Waiting Status = iota
	Opened
	Closed
	Discarded
)

func (s Status) String() string {
	switch s {
	case Waiting:
		return "WAITING"
	case Opened:
		return "OPEN"
	case Closed:
		return "CLOSED"
	}
	return "DISCARDED"
}

// Close reasons recorded on the position and in the journal.
const (
	ReasonStop         = "STOP"
	ReasonTake         = "TAKE"
	ReasonTakeTime     = "TAKE_TIME"
	ReasonEndOfDay     = "EOD"
	ReasonPreferredEOD = "EOD_PREFERRED"
	ReasonNoMargin     = "NO_MARGIN"
	ReasonStopTooTight = "STOP_TOO_TIGHT"
)

// OrderRequest is one candidate trade handed in by the order loader.
type OrderRequest struct {
	Side     Side
	Time     time.Time // requested fill timestamp
	ATR      float64
	Stop     StopSpec
	Target   TargetSpec
	Strategy string

	// VWAP fields feed the experimental admission filter only.
	VWAP      float64
	MonthVWAP float64
}

// Position is the state machine for a single trade candidate. It owns
// sizing, entry and every exit rule; the session drives it bar by bar and
// the capital ledger is passed into each operation rather than stored.
type Position struct {
	ID          string
	Side        Side
	RequestedAt time.Time
	Strategy    string
	ATR         float64
	VWAP        float64
	MonthVWAP   float64

	stop   StopSpec
	target TargetSpec
	params StrategyParams
	cfg    Config

	status Status

	// Set at open.
	EntryPrice        float64
	EntryTime         time.Time
	Size              int
	CapitalAtOpen     float64
	StopLossPoints    float64 // signed, negative = loss; ratchets upward
	InitialStopPoints float64
	takeProfitPoints  *float64
	takeProfitAt      *market.TimeOfDay
	breakEvenPoints   float64
	unrealized        *float64

	// Set exactly once, at the Closed/Discarded transition.
	RealizedPL  *float64
	CloseReason string
	ClosedAt    time.Time

	rules []exitRule
}

// NewPosition validates the strategy id against the configured parameter
// table and builds a waiting position.
func NewPosition(req OrderRequest, cfg Config) (*Position, error) {
	params, ok := cfg.Strategies[req.Strategy]
	if !ok {
		return nil, fmt.Errorf("position: unknown strategy %q", req.Strategy)
	}

	return &Position{
		ID:          id.New(),
		Side:        req.Side,
		RequestedAt: req.Time,
		Strategy:    req.Strategy,
		ATR:         req.ATR,
		VWAP:        req.VWAP,
		MonthVWAP:   req.MonthVWAP,
		stop:        req.Stop,
		target:      req.Target,
		params:      params,
		cfg:         cfg,
		status:      Waiting,
	}, nil
}

func (p *Position) Status() Status { return p.status }

// Unrealized is non-nil exactly while the position is open.
func (p *Position) Unrealized() *float64 { return p.unrealized }

// Open fills the position at entryPrice, resolving stop and target specs
// and sizing against the ledger balance. Sizing failure discards the
// position; it is a recorded business outcome, not an error, and nothing
// is reserved.
func (p *Position) Open(entryPrice float64, at time.Time, ledger *risk.Ledger) {
	if p.status != Waiting {
		return
	}

	p.status = Opened
	p.EntryPrice = entryPrice
	p.EntryTime = at
	zero := 0.0
	p.unrealized = &zero

	p.StopLossPoints = p.stop.resolve(entryPrice, p.ATR)
	p.InitialStopPoints = p.StopLossPoints

	if p.params.TakeProfitATR > 0 {
		tp := p.params.TakeProfitATR * p.ATR
		p.takeProfitPoints = &tp
	} else {
		p.takeProfitPoints, p.takeProfitAt = p.target.resolve(entryPrice, p.ATR)
	}
	p.breakEvenPoints = p.params.BreakEvenATR * p.ATR

	p.CapitalAtOpen = ledger.Balance()

	size, ok := risk.ContractSize(p.CapitalAtOpen, entryPrice, p.StopLossPoints, p.cfg.Costing)
	if !ok {
		p.Size = 0
		p.close(0, Discarded, ReasonNoMargin, at, ledger)
		return
	}

	// Post-sizing policy guard: a stop tighter than MinStopATR ATRs is
	// treated as noise and the position is discarded.
	if p.cfg.MinStopATR > 0 && math.Abs(p.StopLossPoints) < p.cfg.MinStopATR*p.ATR {
		p.Size = 0
		p.close(0, Discarded, ReasonStopTooTight, at, ledger)
		return
	}

	p.Size = size
	ledger.Debit(entryPrice * float64(size))

	// Exit rules run in this exact order on every bar; stop before target
	// is the conservative same-bar policy and changing it changes results.
	p.rules = []exitRule{
		stopLossRule{},
		takeProfitRule{},
		breakEvenRule{},
		endOfDayRule{},
	}
}

// Update advances the position by one bar while open: refresh unrealized
// P/L from the bar open, then apply the exit rules in their fixed order.
func (p *Position) Update(b market.Bar, ledger *risk.Ledger) {
	if p.status != Opened {
		return
	}

	u := (b.Open - p.EntryPrice) * float64(p.Side)
	p.unrealized = &u

	for _, r := range p.rules {
		if p.status != Opened {
			return
		}
		r.apply(p, b, ledger)
	}
}

// Close settles the position at pl points with the Closed status.
func (p *Position) Close(pl float64, at time.Time, reason string, ledger *risk.Ledger) {
	p.close(pl, Closed, reason, at, ledger)
}

// close is idempotent: settling an already-settled position is a no-op,
// which protects the single-write invariant on RealizedPL.
func (p *Position) close(pl float64, status Status, reason string, at time.Time, ledger *risk.Ledger) {
	if p.status == Closed || p.status == Discarded {
		return
	}

	realized := p.cfg.Costing.PointsToCurrency(pl, p.Size)
	p.RealizedPL = &realized
	p.unrealized = nil
	p.status = status
	p.CloseReason = reason
	p.ClosedAt = at

	// Release the margin reservation taken at open. Discarded positions
	// have Size 0, so this is a no-op for them.
	ledger.Credit(p.EntryPrice * float64(p.Size))
}

// adverseDistance is how far the bar moved against the position from its
// open, favorableDistance how far it moved with it.
func (p *Position) adverseDistance(b market.Bar) float64 {
	if p.Side == Long {
		return b.DistanceToLow
	}
	return b.DistanceToHigh
}

func (p *Position) favorableDistance(b market.Bar) float64 {
	if p.Side == Long {
		return b.DistanceToHigh
	}
	return b.DistanceToLow
}
