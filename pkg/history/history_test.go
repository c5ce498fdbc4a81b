package history

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAppendAndListReturnsNewestFirst(t *testing.T) {
	log, err := Open(t.TempDir())
	require.NoError(t, err)
	defer log.Close()

	require.NoError(t, log.Append(Entry{SessionID: "s1", StartedAt: "2026-01-01T00:00:00Z"}))
	require.NoError(t, log.Append(Entry{SessionID: "s2", StartedAt: "2026-01-01T00:00:01Z"}))

	entries, err := log.List(0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "s2", entries[0].SessionID)
	require.Equal(t, "s1", entries[1].SessionID)
}

func TestAppendUpdatesExistingSessionInPlace(t *testing.T) {
	log, err := Open(t.TempDir())
	require.NoError(t, err)
	defer log.Close()

	require.NoError(t, log.Append(Entry{SessionID: "s1", StartedAt: "2026-01-01T00:00:00Z"}))
	require.NoError(t, log.Append(Entry{SessionID: "s1", StartedAt: "2026-01-01T00:00:00Z", ReadyAt: "2026-01-01T00:00:01Z"}))
	require.NoError(t, log.Append(Entry{SessionID: "s1", StartedAt: "2026-01-01T00:00:00Z", ReadyAt: "2026-01-01T00:00:01Z", StoppedAt: "2026-01-01T00:00:05Z"}))

	entries, err := log.List(0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "2026-01-01T00:00:05Z", entries[0].StoppedAt)
}

func TestListRespectsLimit(t *testing.T) {
	log, err := Open(t.TempDir())
	require.NoError(t, err)
	defer log.Close()

	for i := 0; i < 5; i++ {
		require.NoError(t, log.Append(Entry{SessionID: string(rune('a' + i))}))
	}

	entries, err := log.List(2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
}
