package backtest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/intraday/market"
)

func TestSessionCacheRoundTrip(t *testing.T) {
	t.Parallel()

	d1 := day(2024, 1, 15)
	d2 := day(2024, 1, 16)
	days := []market.Day{
		{Date: d1, Bars: []market.Bar{
			barAt(d1, 9, 30, 100, 101, 99.5, 100.5),
			barAt(d1, 9, 31, 100.5, 102, 100.25, 101.75),
		}},
		{Date: d2, Bars: []market.Bar{
			barAt(d2, 9, 30, 101, 101.5, 100, 100.25),
		}},
	}

	path := filepath.Join(t.TempDir(), "sessions.gob")
	require.NoError(t, SaveSessionCache(path, days))

	loaded, ok, err := LoadSessionCache(path)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, days, loaded)
}

func TestLoadSessionCacheMissingFile(t *testing.T) {
	t.Parallel()

	days, ok, err := LoadSessionCache(filepath.Join(t.TempDir(), "absent.gob"))
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, days)
}

func TestLoadSessionCacheCorruptFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "mangled.gob")
	require.NoError(t, os.WriteFile(path, []byte("not a gob stream"), 0o644))

	_, _, err := LoadSessionCache(path)
	assert.Error(t, err)
}
