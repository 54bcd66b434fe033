package backtest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/intraday/journal"
	"github.com/rustyeddy/intraday/market"
	"github.com/rustyeddy/intraday/risk"
	"github.com/rustyeddy/intraday/sim"
)

func engineConfig() sim.Config {
	return sim.Config{
		Costing: risk.Costing{
			TickSize:          0.25,
			TickValue:         1.25,
			MaintenanceMargin: 0.25,
			MaxLossPerTrade:   0.06,
		},
		ExitFinal: market.MustTimeOfDay("16:00:00"),
		Strategies: map[string]sim.StrategyParams{
			"pivot": {Enabled: true, BreakEvenATR: 5},
		},
	}
}

func day(year, month, dayOfMonth int) time.Time {
	return time.Date(year, time.Month(month), dayOfMonth, 0, 0, 0, 0, time.UTC)
}

func barAt(date time.Time, hour, min int, open, high, low, close float64) market.Bar {
	ts := time.Date(date.Year(), date.Month(), date.Day(), hour, min, 0, 0, time.UTC)
	return market.NewBar(ts, open, close, low, high, 1000)
}

// losingSession is one trade that fills at 100 and stops out -10 points on
// the entry bar.
func losingSession(t *testing.T, p *Portfolio, date time.Time) *sim.Session {
	t.Helper()

	bars := []market.Bar{barAt(date, 9, 30, 100, 100.5, 89, 90)}
	s, err := sim.NewSession(date, bars, engineConfig(), nil)
	require.NoError(t, err)
	require.NoError(t, s.AddOrder(sim.OrderRequest{
		Side:     sim.Long,
		Time:     bars[0].Time,
		ATR:      5,
		Strategy: "pivot",
	}))
	p.AddSession(s)
	return s
}

// winningSession is one trade that fills at 100 and takes profit at 110 on
// the entry bar.
func winningSession(t *testing.T, p *Portfolio, date time.Time) *sim.Session {
	t.Helper()

	bars := []market.Bar{barAt(date, 9, 30, 100, 111, 100, 110)}
	s, err := sim.NewSession(date, bars, engineConfig(), nil)
	require.NoError(t, err)
	require.NoError(t, s.AddOrder(sim.OrderRequest{
		Side:     sim.Long,
		Time:     bars[0].Time,
		ATR:      5,
		Target:   sim.TargetAtPrice(110),
		Strategy: "pivot",
	}))
	p.AddSession(s)
	return s
}

// Two losing days compound: the second day sizes against the capital the
// first day left behind, and the monthly return keeps the month's opening
// balance as its denominator.
func TestRunCompoundsAcrossSessions(t *testing.T) {
	t.Parallel()

	p := New(engineConfig(), 8000)
	losingSession(t, p, day(2024, 1, 15))
	losingSession(t, p, day(2024, 1, 16))

	require.NoError(t, p.Run())

	// 8000 sizes to 9 contracts (-450); 7550 still sizes to 9 (-450).
	assert.InDelta(t, 7100.0, p.Capital(), 1e-9)
	assert.InDelta(t, 8000.0, p.InitialCapital(), 1e-9)

	assert.Equal(t, []string{"2024-01"}, p.Months)
	assert.InDelta(t, -900.0, p.MonthlyPL["2024-01"], 1e-9)
	assert.InDelta(t, -900.0/8000, p.MonthlyReturn["2024-01"], 1e-9)

	assert.Equal(t, []string{"2024"}, p.Years)
	assert.InDelta(t, -900.0, p.YearlyPL["2024"], 1e-9)
	assert.InDelta(t, -900.0/8000, p.YearlyReturn["2024"], 1e-9)
}

func TestRunPeriodBoundaries(t *testing.T) {
	t.Parallel()

	p := New(engineConfig(), 8000)
	winningSession(t, p, day(2024, 1, 31)) // 8000 -> 8450 (size 9, +10 pts)
	losingSession(t, p, day(2024, 2, 1))   // 8450 sizes to 10 -> -500
	winningSession(t, p, day(2025, 1, 2))  // 7950 sizes to 9 -> +450

	require.NoError(t, p.Run())

	assert.Equal(t, []string{"2024-01", "2024-02", "2025-01"}, p.Months)
	assert.Equal(t, []string{"2024", "2025"}, p.Years)

	assert.InDelta(t, 450.0, p.MonthlyPL["2024-01"], 1e-9)
	assert.InDelta(t, -500.0, p.MonthlyPL["2024-02"], 1e-9)
	assert.InDelta(t, 450.0, p.MonthlyPL["2025-01"], 1e-9)

	// Each period's return denominator is its opening balance.
	assert.InDelta(t, 450.0/8000, p.MonthlyReturn["2024-01"], 1e-9)
	assert.InDelta(t, -500.0/8450, p.MonthlyReturn["2024-02"], 1e-9)
	assert.InDelta(t, 450.0/7950, p.MonthlyReturn["2025-01"], 1e-9)

	assert.InDelta(t, -50.0, p.YearlyPL["2024"], 1e-9)
	assert.InDelta(t, -50.0/8000, p.YearlyReturn["2024"], 1e-9)
	assert.InDelta(t, 450.0/7950, p.YearlyReturn["2025"], 1e-9)

	assert.InDelta(t, 8400.0, p.Capital(), 1e-9)
}

func TestRunRejectsOutOfOrderSessions(t *testing.T) {
	t.Parallel()

	p := New(engineConfig(), 8000)
	losingSession(t, p, day(2024, 1, 16))
	losingSession(t, p, day(2024, 1, 15))

	assert.Error(t, p.Run())
}

func TestRunRejectsDuplicateDates(t *testing.T) {
	t.Parallel()

	p := New(engineConfig(), 8000)
	losingSession(t, p, day(2024, 1, 15))
	losingSession(t, p, day(2024, 1, 15))

	assert.Error(t, p.Run())
}

func TestRunTwiceErrors(t *testing.T) {
	t.Parallel()

	p := New(engineConfig(), 8000)
	require.NoError(t, p.Run())
	assert.Error(t, p.Run())
}

func TestRunSkipsSessionsWithoutCandidates(t *testing.T) {
	t.Parallel()

	p := New(engineConfig(), 8000)
	s, err := sim.NewSession(day(2024, 1, 15), nil, engineConfig(), nil)
	require.NoError(t, err)
	p.AddSession(s)

	require.NoError(t, p.Run())

	assert.Empty(t, p.Months)
	assert.InDelta(t, 8000.0, p.Capital(), 1e-9)
}

func TestAttachOrdersUnknownDateSkips(t *testing.T) {
	t.Parallel()

	p := New(engineConfig(), 8000)
	losingSession(t, p, day(2024, 1, 15))

	err := p.AttachOrders(day(2024, 1, 17), []sim.OrderRequest{
		{Side: sim.Long, Time: day(2024, 1, 17), ATR: 5, Strategy: "pivot"},
	})
	assert.NoError(t, err)
}

func TestAttachOrdersUnknownStrategyErrors(t *testing.T) {
	t.Parallel()

	p := New(engineConfig(), 8000)
	date := day(2024, 1, 15)
	s, err := sim.NewSession(date, []market.Bar{barAt(date, 9, 30, 100, 100, 100, 100)}, engineConfig(), nil)
	require.NoError(t, err)
	p.AddSession(s)

	err = p.AttachOrders(date, []sim.OrderRequest{
		{Side: sim.Long, Time: day(2024, 1, 15), ATR: 5, Strategy: "hunch"},
	})
	assert.Error(t, err)
}

// The monthly loss cutoff is observed and logged but never enforced: a
// breached month keeps trading and no session is flagged.
func TestMonthlyLossCutoffIsLoose(t *testing.T) {
	t.Parallel()

	p := New(engineConfig(), 8000, WithMonthlyLossCutoff(100))
	s1 := losingSession(t, p, day(2024, 1, 15)) // -450 breaches immediately
	s2 := losingSession(t, p, day(2024, 1, 16))

	require.NoError(t, p.Run())

	assert.Equal(t, sim.Closed, s2.Positions[0].Status())
	assert.InDelta(t, -900.0, p.MonthlyPL["2024-01"], 1e-9)
	assert.False(t, s1.ExceededMonthlyPL)
	assert.False(t, s2.ExceededMonthlyPL)
}

type captureJournal struct {
	positions []journal.PositionRecord
	sessions  []journal.SessionRecord
}

func (c *captureJournal) RecordPosition(r journal.PositionRecord) error {
	c.positions = append(c.positions, r)
	return nil
}

func (c *captureJournal) RecordSession(r journal.SessionRecord) error {
	c.sessions = append(c.sessions, r)
	return nil
}

func (c *captureJournal) Close() error { return nil }

func TestRunJournalsSettledPositions(t *testing.T) {
	t.Parallel()

	jnl := &captureJournal{}
	p := New(engineConfig(), 8000, WithJournal(jnl))
	losingSession(t, p, day(2024, 1, 15))

	require.NoError(t, p.Run())

	require.Len(t, jnl.positions, 1)
	rec := jnl.positions[0]
	assert.Equal(t, "pivot", rec.Strategy)
	assert.Equal(t, "LONG", rec.Side)
	assert.Equal(t, "CLOSED", rec.Status)
	assert.Equal(t, sim.ReasonStop, rec.Reason)
	assert.Equal(t, 9, rec.Size)
	assert.InDelta(t, 100.0, rec.EntryPrice, 1e-9)
	assert.InDelta(t, -450.0, rec.RealizedPL, 1e-9)

	require.Len(t, jnl.sessions, 1)
	assert.Equal(t, day(2024, 1, 15), jnl.sessions[0].Date)
	assert.InDelta(t, -450.0, jnl.sessions[0].RealizedPL, 1e-9)
	assert.InDelta(t, 7550.0, jnl.sessions[0].Capital, 1e-9)
	assert.Equal(t, 1, jnl.sessions[0].Positions)
}
