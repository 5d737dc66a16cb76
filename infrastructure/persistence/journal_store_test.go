package persistence_test

import (
	"context"
	"testing"
	"time"

	"github.com/helixml/linedit/domain/edit"
	"github.com/helixml/linedit/domain/repository"
	"github.com/helixml/linedit/infrastructure/persistence"
	"github.com/helixml/linedit/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJournalStore_RecordAndFind(t *testing.T) {
	ctx := context.Background()
	store := persistence.NewJournalStore(testdb.New(t))
	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	first, err := store.Record(ctx, edit.NewCommit("s1", "/w/a.py", edit.NewLineRange(2, 4),
		"L2-4-aaaaaaaaaaaaaaaa", "bbbbbbbbbbbbbbbb", 3, 2, base))
	require.NoError(t, err)
	assert.NotZero(t, first.ID())

	_, err = store.Record(ctx, edit.NewCommit("", "/w/b.py", edit.SingleLine(1), "", "cccccccccccccccc", 0, 1, base.Add(time.Hour)))
	require.NoError(t, err)
	_, err = store.Record(ctx, edit.NewCommit("s1", "/w/a.py", edit.SingleLine(7), "", "dddddddddddddddd", 1, 1, base.Add(2*time.Hour)))
	require.NoError(t, err)

	got, err := store.Find(ctx, repository.WithPath("/w/a.py"), repository.WithOrderDesc("committed_at"))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, edit.SingleLine(7), got[0].Target())
	assert.Equal(t, edit.NewLineRange(2, 4), got[1].Target())
	assert.Equal(t, edit.Fingerprint("L2-4-aaaaaaaaaaaaaaaa"), got[1].Before())
	assert.Equal(t, 3, got[1].LinesRemoved())
	assert.Equal(t, 2, got[1].LinesAdded())
	assert.True(t, base.Equal(got[1].CommittedAt()))

	bySession, err := store.Find(ctx, edit.WithSessionID("s1"), repository.WithSince(base.Add(time.Hour)))
	require.NoError(t, err)
	require.Len(t, bySession, 1)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestJournalStore_Prune(t *testing.T) {
	ctx := context.Background()
	store := persistence.NewJournalStore(testdb.New(t))
	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	for i := range 4 {
		_, err := store.Record(ctx, edit.NewCommit("", "/w/a", edit.SingleLine(1), "", "", 1, 1, base.AddDate(0, 0, i)))
		require.NoError(t, err)
	}

	removed, err := store.Prune(ctx, base.AddDate(0, 0, 2))
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	left, err := store.Find(ctx)
	require.NoError(t, err)
	assert.Len(t, left, 2)
}
