package backtest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rustyeddy/intraday/market"
	"github.com/rustyeddy/intraday/sim"
)

// OrderDay is one calendar day's order requests, in file order.
type OrderDay struct {
	Date   time.Time
	Orders []sim.OrderRequest
}

// OrderFeedOptions controls how ambiguous order columns are decoded.
type OrderFeedOptions struct {
	// StopAsPoints decodes the sl column as a signed point offset instead
	// of an absolute price level. The two encodings coexist in historical
	// order files and cannot be told apart reliably, so the caller picks.
	StopAsPoints bool
}

// LoadOrders reads an order CSV with rows
//
//	date,time,type,atr,tp,sl,strategy,vwap,mvwap
//
// where type is L or S, and tp/sl may be empty or NA for unset. Orders are
// grouped by calendar day, preserving file order. Malformed rows abort the
// load.
func LoadOrders(path string, opts OrderFeedOptions) ([]OrderDay, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ReadOrders(f, opts)
}

// ReadOrders is LoadOrders over an already-open reader.
func ReadOrders(rd io.Reader, opts OrderFeedOptions) ([]OrderDay, error) {
	r := csv.NewReader(rd)
	r.FieldsPerRecord = -1

	var days []OrderDay
	byDate := map[string]int{}

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
			return nil, fmt.Errorf("orders: short row (need date,time,type,atr,tp,sl,strategy): %v", row)
		}

		req, dateStr, err := parseOrderRow(row, opts)
		if err != nil {
			return nil, err
		}

		idx, ok := byDate[dateStr]
		if !ok {
			date, err := time.Parse("2006-01-02", dateStr)
			if err != nil {
				return nil, fmt.Errorf("orders: bad date %q: %w", dateStr, err)
			}
			idx = len(days)
			byDate[dateStr] = idx
			days = append(days, OrderDay{Date: date})
		}
		days[idx].Orders = append(days[idx].Orders, req)
	}

	return days, nil
}

func parseOrderRow(row []string, opts OrderFeedOptions) (sim.OrderRequest, string, error) {
	dateStr := strings.TrimSpace(row[0])
	ts, err := time.Parse("2006-01-02 15:04:05", dateStr+" "+strings.TrimSpace(row[1]))
	if err != nil {
		return sim.OrderRequest{}, "", fmt.Errorf("orders: bad timestamp %q %q: %w", row[0], row[1], err)
	}

	var side sim.Side
	switch strings.ToUpper(strings.TrimSpace(row[2])) {
	case "L", "LONG":
		side = sim.Long
	case "S", "SHORT":
		side = sim.Short
	default:
		return sim.OrderRequest{}, "", fmt.Errorf("orders: bad type %q (want L or S)", row[2])
	}

	atr, err := strconv.ParseFloat(strings.TrimSpace(row[3]), 64)
	if err != nil {
		return sim.OrderRequest{}, "", fmt.Errorf("orders: bad atr %q: %w", row[3], err)
	}

	target := sim.TargetUnset()
	if v, set, err := optionalFloat(row[4]); err != nil {
		return sim.OrderRequest{}, "", fmt.Errorf("orders: bad tp %q: %w", row[4], err)
	} else if set {
		target = sim.TargetAtPrice(v)
	}

	stop := sim.StopUnset()
	if v, set, err := optionalFloat(row[5]); err != nil {
		return sim.OrderRequest{}, "", fmt.Errorf("orders: bad sl %q: %w", row[5], err)
	} else if set {
		if opts.StopAsPoints {
			stop = sim.StopAtPoints(v)
		} else {
			stop = sim.StopAtPrice(v)
		}
	}

	req := sim.OrderRequest{
		Side:     side,
		Time:     ts,
		ATR:      atr,
		Stop:     stop,
		Target:   target,
		Strategy: strings.TrimSpace(row[6]),
	}

	// Optional trailing VWAP columns, consumed by the experimental filter.
	if len(row) > 7 {
		if v, set, err := optionalFloat(row[7]); err == nil && set {
			req.VWAP = v
		}
	}
	if len(row) > 8 {
		if v, set, err := optionalFloat(row[8]); err == nil && set {
			req.MonthVWAP = v
		}
	}

	return req, dateStr, nil
}

// optionalFloat parses a column that may be empty or NA.
func optionalFloat(s string) (v float64, set bool, err error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "NA") || strings.EqualFold(s, "NaN") {
		return 0, false, nil
	}
	v, err = strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false, err
	}
	return v, true, nil
}

// BuildSessions turns loaded history days into sessions and registers them
// with the portfolio in file order.
func BuildSessions(p *Portfolio, days []market.Day, cfg sim.Config) error {
	for _, d := range days {
		s, err := sim.NewSession(d.Date, d.Bars, cfg, p.log)
		if err != nil {
			return err
		}
		p.AddSession(s)
	}
	return nil
}
