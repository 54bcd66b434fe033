package backtest

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/rustyeddy/intraday/journal"
	"github.com/rustyeddy/intraday/risk"
	"github.com/rustyeddy/intraday/sim"
)

// Portfolio owns the compounding capital base across the whole run. It
// drives each session's replay in ascending date order and folds realized
// P/L into the ledger, the period maps and the journal.
type Portfolio struct {
	cfg      sim.Config
	ledger   *risk.Ledger
	initial  float64
	sessions []*sim.Session
	byDate   map[string]*sim.Session

	// MonthlyLossCutoff is compared and logged but deliberately never
	// acted on; see Run.
	MonthlyLossCutoff float64

	// Period maps, keyed "YYYY-MM" / "YYYY". Months and Years preserve
	// chronological insertion order, which Go maps do not.
	MonthlyPL     map[string]float64
	MonthlyReturn map[string]float64
	Months        []string
	YearlyPL      map[string]float64
	YearlyReturn  map[string]float64
	Years         []string

	// Return denominators, captured once at each period's first session
	// and held fixed even as capital moves within the period.
	monthStart map[string]float64
	yearStart  map[string]float64

	jnl journal.Journal
	log *zap.Logger
	ran bool
}

// Option configures a Portfolio.
type Option func(*Portfolio)

func WithLogger(log *zap.Logger) Option {
	return func(p *Portfolio) { p.log = log }
}

func WithJournal(j journal.Journal) Option {
	return func(p *Portfolio) { p.jnl = j }
}

// WithMonthlyLossCutoff sets the monthly loss level that gets logged when
// breached. Zero disables the check entirely.
func WithMonthlyLossCutoff(cutoff float64) Option {
	return func(p *Portfolio) { p.MonthlyLossCutoff = cutoff }
}

func New(cfg sim.Config, initialCapital float64, opts ...Option) *Portfolio {
	p := &Portfolio{
		cfg:           cfg,
		ledger:        risk.NewLedger(initialCapital),
		initial:       initialCapital,
		byDate:        map[string]*sim.Session{},
		MonthlyPL:     map[string]float64{},
		MonthlyReturn: map[string]float64{},
		YearlyPL:      map[string]float64{},
		YearlyReturn:  map[string]float64{},
		monthStart:    map[string]float64{},
		yearStart:     map[string]float64{},
		jnl:           journal.Nop{},
		log:           zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func dateKey(t time.Time) string { return t.Format("2006-01-02") }

// AddSession registers a pre-built session. Sessions are expected in
// chronological order; Run rejects violations rather than reordering.
func (p *Portfolio) AddSession(s *sim.Session) {
	p.sessions = append(p.sessions, s)
	p.byDate[dateKey(s.Date)] = s
}

// FindSession returns the session for a calendar date, or nil.
func (p *Portfolio) FindSession(date time.Time) *sim.Session {
	return p.byDate[dateKey(date)]
}

// AttachOrders adds a day's order requests to its session. A date with no
// session in the calendar is a lookup miss: logged and skipped, not fatal.
// An order with an unknown strategy id is an input error and aborts.
func (p *Portfolio) AttachOrders(date time.Time, reqs []sim.OrderRequest) error {
	s := p.FindSession(date)
	if s == nil {
		p.log.Warn("no session for order date, skipping",
			zap.String("date", dateKey(date)),
			zap.Int("orders", len(reqs)),
		)
		return nil
	}
	for _, req := range reqs {
		if err := s.AddOrder(req); err != nil {
			return err
		}
	}
	return nil
}

// Capital is the current ledger balance.
func (p *Portfolio) Capital() float64 { return p.ledger.Balance() }

// InitialCapital is the configured starting balance.
func (p *Portfolio) InitialCapital() float64 { return p.initial }

// Sessions returns the registered sessions in registration order.
func (p *Portfolio) Sessions() []*sim.Session { return p.sessions }

// Run replays every session in ascending date order and compounds realized
// P/L into the shared ledger. Date order is a correctness requirement, not
// a preference: every position's size depends on the capital left behind
// by all prior sessions, so out-of-order input is an error.
func (p *Portfolio) Run() error {
	if p.ran {
		return fmt.Errorf("portfolio: run called twice")
	}
	p.ran = true

	var prev time.Time
	for _, s := range p.sessions {
		if !prev.IsZero() && !s.Date.After(prev) {
			return fmt.Errorf("portfolio: session %s out of order (previous %s)",
				dateKey(s.Date), dateKey(prev))
		}
		prev = s.Date

		// A day with no candidates is a no-op, not an error.
		if len(s.Positions) == 0 {
			continue
		}

		month := s.Date.Format("2006-01")
		year := s.Date.Format("2006")

		if _, ok := p.monthStart[month]; !ok {
			p.monthStart[month] = p.ledger.Balance()
			p.Months = append(p.Months, month)
		}
		if _, ok := p.yearStart[year]; !ok {
			p.yearStart[year] = p.ledger.Balance()
			p.Years = append(p.Years, year)
		}

		s.Replay(p.ledger)
		p.ledger.Apply(s.RealizedPL)

		p.MonthlyPL[month] += s.RealizedPL
		p.YearlyPL[year] += s.RealizedPL
		if p.monthStart[month] != 0 {
			p.MonthlyReturn[month] = p.MonthlyPL[month] / p.monthStart[month]
		}
		if p.yearStart[year] != 0 {
			p.YearlyReturn[year] = p.YearlyPL[year] / p.yearStart[year]
		}

		if p.MonthlyLossCutoff > 0 {
			// Known loose behavior carried from an earlier draft: the
			// breach is observed here and logged, but nothing is mutated
			// and trading continues. Pinned by test; do not "fix" quietly.
			exceeded := p.MonthlyPL[month] <= -p.MonthlyLossCutoff
			if exceeded {
				p.log.Warn("monthly loss cutoff exceeded",
					zap.String("month", month),
					zap.Float64("monthly_pl", p.MonthlyPL[month]),
					zap.Float64("cutoff", p.MonthlyLossCutoff),
				)
			}
		}

		if err := p.journalSession(s); err != nil {
			return err
		}
	}

	return nil
}

func (p *Portfolio) journalSession(s *sim.Session) error {
	for _, pos := range s.Positions {
		st := pos.Status()
		if st != sim.Closed && st != sim.Discarded {
			continue
		}
		rec := journal.PositionRecord{
			ID:          pos.ID,
			SessionDate: s.Date,
			Strategy:    pos.Strategy,
			Side:        pos.Side.String(),
			RequestedAt: pos.RequestedAt,
			EntryPrice:  pos.EntryPrice,
			Size:        pos.Size,
			RealizedPL:  *pos.RealizedPL,
			Status:      st.String(),
			Reason:      pos.CloseReason,
			ClosedAt:    pos.ClosedAt,
		}
		if err := p.jnl.RecordPosition(rec); err != nil {
			return fmt.Errorf("journal position %s: %w", pos.ID, err)
		}
	}

	err := p.jnl.RecordSession(journal.SessionRecord{
		Date:       s.Date,
		RealizedPL: s.RealizedPL,
		Capital:    p.ledger.Balance(),
		Positions:  len(s.Positions),
	})
	if err != nil {
		return fmt.Errorf("journal session %s: %w", dateKey(s.Date), err)
	}
	return nil
}
