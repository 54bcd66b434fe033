package risk

// Ledger is the portfolio-wide capital balance. It is passed by reference
// into every session and position operation instead of living in ambient
// state, so the compounding dependency between sessions is visible in the
// call graph.
//
// The replay is strictly single-threaded: at most one position touches the
// ledger at a time, and the caller is responsible for processing sessions
// in ascending date order. The Ledger itself does no locking.
type Ledger struct {
	balance float64
}

func NewLedger(initial float64) *Ledger {
	return &Ledger{balance: initial}
}

// Balance is the capital currently available for sizing.
func (l *Ledger) Balance() float64 { return l.balance }

// Debit reserves margin when a position opens.
func (l *Ledger) Debit(amount float64) { l.balance -= amount }

// Credit releases a margin reservation when a position closes.
func (l *Ledger) Credit(amount float64) { l.balance += amount }

// Apply adds realized P/L to the balance. This is the only call that
// changes the net economic value of the account; Debit/Credit model
// reservation, not cash movement.
func (l *Ledger) Apply(pl float64) { l.balance += pl }
