package journal

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

type SQLiteJournal struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteJournal{db: db}, nil
}

func (j *SQLiteJournal) RecordPosition(r PositionRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO positions
		(position_id, session_date, strategy, side, requested_at, entry_price, size, realized_pl, status, reason, closed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.SessionDate, r.Strategy, r.Side, r.RequestedAt,
		r.EntryPrice, r.Size, r.RealizedPL, r.Status, r.Reason, r.ClosedAt,
	)
	return err
}

func (j *SQLiteJournal) RecordSession(r SessionRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO sessions (date, realized_pl, capital, positions)
		VALUES (?, ?, ?, ?)`,
		r.Date, r.RealizedPL, r.Capital, r.Positions,
	)
	return err
}

// GetPosition returns a single position record by ID.
func (j *SQLiteJournal) GetPosition(positionID string) (PositionRecord, error) {
	var r PositionRecord

	row := j.db.QueryRow(`
		SELECT position_id, session_date, strategy, side, requested_at, entry_price, size, realized_pl, status, reason, closed_at
		FROM positions
		WHERE position_id = ?`, positionID)

	err := row.Scan(
		&r.ID, &r.SessionDate, &r.Strategy, &r.Side, &r.RequestedAt,
		&r.EntryPrice, &r.Size, &r.RealizedPL, &r.Status, &r.Reason, &r.ClosedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return PositionRecord{}, fmt.Errorf("position %q not found", positionID)
		}
		return PositionRecord{}, err
	}
	return r, nil
}

// ListPositionsClosedBetween returns positions whose closed_at falls in
// [start, end), ordered by close time.
func (j *SQLiteJournal) ListPositionsClosedBetween(start, end time.Time) ([]PositionRecord, error) {
	rows, err := j.db.Query(`
		SELECT position_id, session_date, strategy, side, requested_at, entry_price, size, realized_pl, status, reason, closed_at
		FROM positions
		WHERE closed_at >= ? AND closed_at < ?
		ORDER BY closed_at ASC`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PositionRecord
	for rows.Next() {
		var r PositionRecord
		if err := rows.Scan(
			&r.ID, &r.SessionDate, &r.Strategy, &r.Side, &r.RequestedAt,
			&r.EntryPrice, &r.Size, &r.RealizedPL, &r.Status, &r.Reason, &r.ClosedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}
