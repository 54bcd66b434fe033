package market

import (
	"fmt"
	"time"
)

// TimeOfDay is a wall-clock time expressed as seconds since midnight.
// Session exit cutoffs and clock-based take-profit targets compare bar
// timestamps against these, independent of calendar date.
type TimeOfDay int

// ParseTimeOfDay parses "HH:MM:SS", e.g. "16:00:00".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse("15:04:05", s)
	if err != nil {
		return 0, fmt.Errorf("parse time of day %q: %w", s, err)
	}
	return TimeOfDay(t.Hour()*3600 + t.Minute()*60 + t.Second()), nil
}

// MustTimeOfDay is ParseTimeOfDay for constants known to be valid.
func MustTimeOfDay(s string) TimeOfDay {
	tod, err := ParseTimeOfDay(s)
	if err != nil {
		panic(err)
	}
	return tod
}

// Clock extracts the time of day from a timestamp.
func Clock(t time.Time) TimeOfDay {
	return TimeOfDay(t.Hour()*3600 + t.Minute()*60 + t.Second())
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", int(t)/3600, int(t)/60%60, int(t)%60)
}
