package sim

import (
	"math"

	"github.com/rustyeddy/intraday/market"
)

// StopSpec is a tagged stop-loss input. Order files historically encoded
// stops either as an absolute price level or as a signed point offset,
// disambiguated only by magnitude; the tag makes the caller say which.
type StopSpec struct {
	kind  stopKind
	value float64
}

type stopKind int8

const (
	stopUnset stopKind = iota
	stopPrice
	stopPoints
)

// StopUnset defaults the stop to -2 x ATR at open time.
func StopUnset() StopSpec { return StopSpec{kind: stopUnset} }

// StopAtPrice sets the stop from an absolute price level.
func StopAtPrice(level float64) StopSpec {
	return StopSpec{kind: stopPrice, value: level}
}

// StopAtPoints sets the stop directly as a signed point value
// (negative = loss).
func StopAtPoints(points float64) StopSpec {
	return StopSpec{kind: stopPoints, value: points}
}

// resolve converts the spec to signed stop-loss points at open time.
func (s StopSpec) resolve(entryPrice, atr float64) float64 {
	switch s.kind {
	case stopPrice:
		return -math.Abs(s.value - entryPrice)
	case stopPoints:
		return s.value
	default:
		return -2 * atr
	}
}

// TargetSpec is a tagged take-profit input: an absolute price level, an
// ATR multiple, a wall-clock cutoff, or unset (no target). Like StopSpec
// it is resolved to a concrete threshold once, at open time.
type TargetSpec struct {
	kind  targetKind
	value float64
	at    market.TimeOfDay
}

type targetKind int8

const (
	targetUnset targetKind = iota
	targetPrice
	targetATR
	targetClock
)

func TargetUnset() TargetSpec { return TargetSpec{kind: targetUnset} }

func TargetAtPrice(level float64) TargetSpec {
	return TargetSpec{kind: targetPrice, value: level}
}

func TargetATRMultiple(mult float64) TargetSpec {
	return TargetSpec{kind: targetATR, value: mult}
}

func TargetAtTime(t market.TimeOfDay) TargetSpec {
	return TargetSpec{kind: targetClock, at: t}
}

// resolve returns either a point threshold or a clock cutoff, never both.
func (t TargetSpec) resolve(entryPrice, atr float64) (points *float64, at *market.TimeOfDay) {
	switch t.kind {
	case targetPrice:
		p := math.Abs(entryPrice - t.value)
		return &p, nil
	case targetATR:
		p := t.value * atr
		return &p, nil
	case targetClock:
		at := t.at
		return nil, &at
	default:
		return nil, nil
	}
}
