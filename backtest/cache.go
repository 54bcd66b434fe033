package backtest

import (
	"encoding/gob"
	"fmt"
	"os"

	"github.com/rustyeddy/intraday/market"
)

// The per-day bar groups are expensive to rebuild from the raw minute
// history, so they can be persisted between runs. The cache holds bars
// only, never positions or results; the engine is indifferent to whether
// sessions came from cache or fresh construction.

// SaveSessionCache writes the day groups as a gob artifact.
func SaveSessionCache(path string, days []market.Day) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("session cache: %w", err)
	}
	defer f.Close()

	if err := gob.NewEncoder(f).Encode(days); err != nil {
		return fmt.Errorf("session cache: encode: %w", err)
	}
	return nil
}

// LoadSessionCache reads a previously saved cache. ok=false means no cache
// artifact exists at path; a present-but-unreadable cache is an error.
func LoadSessionCache(path string) (days []market.Day, ok bool, err error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("session cache: %w", err)
	}
	defer f.Close()

	if err := gob.NewDecoder(f).Decode(&days); err != nil {
		return nil, false, fmt.Errorf("session cache: decode: %w", err)
	}
	return days, true, nil
}
