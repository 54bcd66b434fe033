package journal

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"
)

// CSVJournal writes positions and sessions to two CSV files, flushing
// after every record so partial runs still leave usable output.
type CSVJournal struct {
	positions *csv.Writer
	sessions  *csv.Writer
	pf, sf    *os.File
}

func NewCSV(positionsPath, sessionsPath string) (*CSVJournal, error) {
	pf, err := os.Create(positionsPath)
	if err != nil {
		return nil, err
	}
	sf, err := os.Create(sessionsPath)
	if err != nil {
		pf.Close()
		return nil, err
	}

	pw := csv.NewWriter(pf)
	sw := csv.NewWriter(sf)

	if err := pw.Write([]string{"position_id", "session_date", "strategy", "side", "requested_at", "entry_price", "size", "realized_pl", "status", "reason", "closed_at"}); err != nil {
		return nil, err
	}
	if err := sw.Write([]string{"date", "realized_pl", "capital", "positions"}); err != nil {
		return nil, err
	}

	pw.Flush()
	if err := pw.Error(); err != nil {
		return nil, err
	}
	sw.Flush()
	if err := sw.Error(); err != nil {
		return nil, err
	}

	return &CSVJournal{positions: pw, sessions: sw, pf: pf, sf: sf}, nil
}

func (j *CSVJournal) RecordPosition(r PositionRecord) error {
	err := j.positions.Write([]string{
		r.ID,
		r.SessionDate.Format("2006-01-02"),
		r.Strategy,
		r.Side,
		r.RequestedAt.Format(time.RFC3339),
		f(r.EntryPrice),
		strconv.Itoa(r.Size),
		f(r.RealizedPL),
		r.Status,
		r.Reason,
		r.ClosedAt.Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	j.positions.Flush()
	return j.positions.Error()
}

func (j *CSVJournal) RecordSession(r SessionRecord) error {
	err := j.sessions.Write([]string{
		r.Date.Format("2006-01-02"),
		f(r.RealizedPL),
		f(r.Capital),
		strconv.Itoa(r.Positions),
	})
	if err != nil {
		return err
	}
	j.sessions.Flush()
	return j.sessions.Error()
}

func (j *CSVJournal) Close() error {
	j.positions.Flush()
	if err := j.positions.Error(); err != nil {
		return err
	}
	j.sessions.Flush()
	if err := j.sessions.Error(); err != nil {
		return err
	}

	if err := j.pf.Close(); err != nil {
		return err
	}
	return j.sf.Close()
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 2, 64)
}
