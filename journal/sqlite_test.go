package journal

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *SQLiteJournal {
	t.Helper()

	j, err := NewSQLite(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

func TestSQLiteRecordAndGetPosition(t *testing.T) {
	t.Parallel()

	j := newTestDB(t)
	want := samplePosition()
	require.NoError(t, j.RecordPosition(want))

	got, err := j.GetPosition(want.ID)
	require.NoError(t, err)

	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.Strategy, got.Strategy)
	assert.Equal(t, want.Side, got.Side)
	assert.Equal(t, want.Size, got.Size)
	assert.InDelta(t, want.EntryPrice, got.EntryPrice, 1e-9)
	assert.InDelta(t, want.RealizedPL, got.RealizedPL, 1e-9)
	assert.Equal(t, want.Status, got.Status)
	assert.Equal(t, want.Reason, got.Reason)
	assert.True(t, want.ClosedAt.Equal(got.ClosedAt))
}

func TestSQLiteGetPositionNotFound(t *testing.T) {
	t.Parallel()

	j := newTestDB(t)
	_, err := j.GetPosition("nope")
	assert.Error(t, err)
}

func TestSQLiteListPositionsClosedBetween(t *testing.T) {
	t.Parallel()

	j := newTestDB(t)

	base := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		r := samplePosition()
		r.ID = id
		r.ClosedAt = base.Add(time.Duration(i) * time.Hour)
		require.NoError(t, j.RecordPosition(r))
	}

	// Half-open window [09:00, 11:00) keeps a and b, drops c.
	got, err := j.ListPositionsClosedBetween(base, base.Add(2*time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "b", got[1].ID)
}

func TestSQLiteRecordSession(t *testing.T) {
	t.Parallel()

	j := newTestDB(t)
	err := j.RecordSession(SessionRecord{
		Date:       time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		RealizedPL: 450,
		Capital:    8450,
		Positions:  2,
	})
	assert.NoError(t, err)
}
