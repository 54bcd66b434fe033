package market

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

const stampLayout = "2006-01-02 15:04:05"

// Day is one trading day's worth of minute bars, in file order.
type Day struct {
	Date time.Time // midnight, date component only
	Bars []Bar
}

// LoadHistory reads a minute-history CSV with rows
//
//	date,time,open,high,low,close,volume
//
// and groups the bars by calendar day, preserving file order. A single
// header row starting with "date" is allowed. Malformed timestamps or
// numbers abort the load: silently continuing would corrupt the
// compounding state of every later session.
func LoadHistory(path string) ([]Day, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ReadHistory(f)
}

// ReadHistory is LoadHistory over an already-open reader.
func ReadHistory(rd io.Reader) ([]Day, error) {
	r := csv.NewReader(rd)
	r.FieldsPerRecord = -1

	var days []Day
	byDate := map[string]int{} // date string -> index into days

	sawFirst := false
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(row) == 0 {
			continue
		}

		if !sawFirst {
			sawFirst = true
			if strings.EqualFold(strings.TrimSpace(row[0]), "date") {
				continue
			}
		}

		if len(row) < 7 {
			return nil, fmt.Errorf("history: short row (need date,time,open,high,low,close,volume): %v", row)
		}

		dateStr := strings.TrimSpace(row[0])
		ts, err := time.Parse(stampLayout, dateStr+" "+strings.TrimSpace(row[1]))
		if err != nil {
			return nil, fmt.Errorf("history: bad timestamp %q %q: %w", row[0], row[1], err)
		}

		vals := make([]float64, 5)
		for i := 2; i < 7; i++ {
			v, err := strconv.ParseFloat(strings.TrimSpace(row[i]), 64)
			if err != nil {
				return nil, fmt.Errorf("history: bad number %q: %w", row[i], err)
			}
			vals[i-2] = v
		}

		// vals: open, high, low, close, volume
		bar := NewBar(ts, vals[0], vals[3], vals[2], vals[1], vals[4])

		idx, ok := byDate[dateStr]
		if !ok {
			date, err := time.Parse("2006-01-02", dateStr)
			if err != nil {
				return nil, fmt.Errorf("history: bad date %q: %w", dateStr, err)
			}
			idx = len(days)
			byDate[dateStr] = idx
			days = append(days, Day{Date: date})
		}
		days[idx].Bars = append(days[idx].Bars, bar)
	}

	if len(days) == 0 {
		return nil, fmt.Errorf("history: no bars found")
	}
	return days, nil
}
