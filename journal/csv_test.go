package journal

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePosition() PositionRecord {
	return PositionRecord{
		ID:          "01HN4Z0000000000000000TEST",
		SessionDate: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		Strategy:    "pivot",
		Side:        "LONG",
		RequestedAt: time.Date(2024, 1, 15, 9, 30, 0, 0, time.UTC),
		EntryPrice:  4500,
		Size:        7,
		RealizedPL:  -350,
		Status:      "CLOSED",
		Reason:      "STOP",
		ClosedAt:    time.Date(2024, 1, 15, 9, 45, 0, 0, time.UTC),
	}
}

func TestCSVJournal(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	posPath := filepath.Join(dir, "positions.csv")
	sessPath := filepath.Join(dir, "sessions.csv")

	j, err := NewCSV(posPath, sessPath)
	require.NoError(t, err)

	require.NoError(t, j.RecordPosition(samplePosition()))
	require.NoError(t, j.RecordSession(SessionRecord{
		Date:       time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		RealizedPL: -350,
		Capital:    7650,
		Positions:  1,
	}))
	require.NoError(t, j.Close())

	pf, err := os.Open(posPath)
	require.NoError(t, err)
	defer pf.Close()
	rows, err := csv.NewReader(pf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "position_id", rows[0][0])
	assert.Equal(t, "01HN4Z0000000000000000TEST", rows[1][0])
	assert.Equal(t, "2024-01-15", rows[1][1])
	assert.Equal(t, "pivot", rows[1][2])
	assert.Equal(t, "7", rows[1][6])
	assert.Equal(t, "-350.00", rows[1][7])
	assert.Equal(t, "STOP", rows[1][9])

	sf, err := os.Open(sessPath)
	require.NoError(t, err)
	defer sf.Close()
	rows, err = csv.NewReader(sf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"2024-01-15", "-350.00", "7650.00", "1"}, rows[1])
}

func TestNopJournal(t *testing.T) {
	t.Parallel()

	var j Journal = Nop{}
	assert.NoError(t, j.RecordPosition(PositionRecord{}))
	assert.NoError(t, j.RecordSession(SessionRecord{}))
	assert.NoError(t, j.Close())
}
