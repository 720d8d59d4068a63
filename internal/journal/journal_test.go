package journal

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendAndList(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "state", "journal.db")
	j, err := Open(path)
	require.NoError(t, err, "Open creates parent directories")
	defer j.Close()

	base := time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC)
	require.NoError(t, j.Append(Record{
		Time:    base,
		File:    "/repo/.env",
		Vault:   "gh-projects",
		Item:    "acme__widget__root",
		Secrets: 2,
		Plain:   3,
	}))
	require.NoError(t, j.Append(Record{
		Time:   base.Add(time.Hour),
		File:   "/repo/services/api/.env",
		Vault:  "gh-projects",
		Item:   "acme__widget__services-api",
		DryRun: true,
	}))

	records, err := j.List()
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "acme__widget__root", records[0].Item, "records come back in chronological order")
	assert.Equal(t, 2, records[0].Secrets)
	assert.Equal(t, 3, records[0].Plain)
	assert.False(t, records[0].DryRun)

	assert.Equal(t, "acme__widget__services-api", records[1].Item)
	assert.True(t, records[1].DryRun)
}

func TestAppend_DefaultsTimestamp(t *testing.T) {
	t.Parallel()

	j, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	defer j.Close()

	require.NoError(t, j.Append(Record{File: "/repo/.env"}))

	records, err := j.List()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.False(t, records[0].Time.IsZero())
}

func TestList_EmptyJournal(t *testing.T) {
	t.Parallel()

	j, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	defer j.Close()

	records, err := j.List()
	require.NoError(t, err)
	assert.Empty(t, records)
}
