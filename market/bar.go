package market

import (
	"math"
	"time"
)

// Direction classifies a bar by the sign of close-open.
type Direction int8

const (
	Bull    Direction = +1
	Bear    Direction = -1
	Neutral Direction = 0
)

func (d Direction) String() string {
	switch d {
	case Bull:
		return "BULL"
	case Bear:
		return "BEAR"
	}
	return "NEUTRAL"
}

// Bar is one minute of OHLCV data. The derived fields are computed once in
// NewBar and never mutated afterwards; exit checks read them every bar, so
// they are cached rather than recomputed.
//
// Low <= Open,Close <= High is assumed from the source data, not enforced.
type Bar struct {
	Time   time.Time
	Open   float64
	Close  float64
	Low    float64
	High   float64
	Volume float64

	Direction      Direction
	Range          float64
	DistanceToHigh float64
	DistanceToLow  float64
}

// NewBar builds a Bar and precomputes its derived fields.
func NewBar(ts time.Time, open, close, low, high, volume float64) Bar {
	b := Bar{
		Time:   ts,
		Open:   open,
		Close:  close,
		Low:    low,
		High:   high,
		Volume: volume,

		Range:          math.Abs(low - high),
		DistanceToHigh: math.Abs(open - high),
		DistanceToLow:  math.Abs(open - low),
	}

	switch {
	case close > open:
		b.Direction = Bull
	case close < open:
		b.Direction = Bear
	default:
		b.Direction = Neutral
	}
	return b
}
