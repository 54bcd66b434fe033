package risk

// Costing converts point-denominated P/L to account currency and carries
// the per-trade risk limits used by sizing.
type Costing struct {
	TickSize          float64 // minimum price increment, e.g. 0.25
	TickValue         float64 // currency value of one tick per contract
	MaintenanceMargin float64 // margin per contract as a fraction of price
	MaxLossPerTrade   float64 // fraction of capital a single stop may risk
}

// PointsToCurrency converts a signed point value into account currency for
// the given contract count.
func (c Costing) PointsToCurrency(points float64, size int) float64 {
	return (points / c.TickSize) * c.TickValue * float64(size)
}

// RoundToTick snaps a price to the nearest tick.
func (c Costing) RoundToTick(price float64) float64 {
	if c.TickSize <= 0 {
		return price
	}
	ticks := price / c.TickSize
	whole := float64(int64(ticks))
	frac := ticks - whole
	switch {
	case frac >= 0.5:
		whole++
	case frac <= -0.5:
		whole--
	}
	return whole * c.TickSize
}

// ContractSize picks the position size for a trade with the given stop.
//
// marginPerContract = entryPrice * MaintenanceMargin bounds the search from
// above; the search walks down to 2 contracts and returns the largest size
// whose worst-case loss stays within MaxLossPerTrade of capital. The loss
// cap, not the margin bound, is usually what binds.
//
// ok=false means even 2 contracts breach the cap. That is a business
// outcome (the position is discarded), not an error.
func ContractSize(capital, entryPrice, stopLossPoints float64, c Costing) (size int, ok bool) {
	marginPerContract := entryPrice * c.MaintenanceMargin
	if marginPerContract <= 0 || capital <= 0 {
		return 0, false
	}

	maxContracts := int(capital / marginPerContract)
	for size := maxContracts; size >= 2; size-- {
		potentialLoss := c.PointsToCurrency(stopLossPoints, size)
		if potentialLoss >= -capital*c.MaxLossPerTrade {
			return size, true
		}
	}
	return 0, false
}
