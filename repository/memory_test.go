package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_MemRepo_ids_are_monotonic(t *testing.T) {
	repo := NewMemRepo()
	ctx := context.Background()

	var prev int64
	for i := 0; i < 100; i++ {
		id, err := repo.Insert(ctx, "https://example.com/a", nil)
		require.NoError(t, err)
		assert.Greater(t, id, prev)
		prev = id
	}
}

func Test_MemRepo_FindActiveByURL_only_matches_non_expiring(t *testing.T) {
	repo := NewMemRepo()
	ctx := context.Background()
	future := time.Now().Add(time.Hour)

	id, err := repo.Insert(ctx, "https://example.com/a", &future)
	require.NoError(t, err)
	require.NoError(t, repo.UpdateCode(ctx, id, "a"))

	_, err = repo.FindActiveByURL(ctx, "https://example.com/a")
	assert.ErrorIs(t, err, ErrRecordNotFound)

	id, err = repo.Insert(ctx, "https://example.com/a", nil)
	require.NoError(t, err)
	require.NoError(t, repo.UpdateCode(ctx, id, "b"))

	record, err := repo.FindActiveByURL(ctx, "https://example.com/a")
	require.NoError(t, err)
	assert.Equal(t, "b", record.ShortCode)
}

func Test_MemRepo_FindActiveByURL_ignores_records_without_code(t *testing.T) {
	repo := NewMemRepo()
	ctx := context.Background()

	// phase one of a write: inserted but code not yet filled
	_, err := repo.Insert(ctx, "https://example.com/a", nil)
	require.NoError(t, err)

	_, err = repo.FindActiveByURL(ctx, "https://example.com/a")
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func Test_MemRepo_DeleteByCode_is_idempotent(t *testing.T) {
	repo := NewMemRepo()
	ctx := context.Background()

	id, err := repo.Insert(ctx, "https://example.com/a", nil)
	require.NoError(t, err)
	require.NoError(t, repo.UpdateCode(ctx, id, "a"))

	assert.NoError(t, repo.DeleteByCode(ctx, "a"))
	assert.NoError(t, repo.DeleteByCode(ctx, "a"))
	assert.NoError(t, repo.DeleteByCode(ctx, "never-existed"))
}

func Test_MemRepo_DeleteExpired_returns_codes(t *testing.T) {
	repo := NewMemRepo()
	ctx := context.Background()
	past := time.Now().Add(-time.Hour)

	id, err := repo.Insert(ctx, "https://example.com/old", &past)
	require.NoError(t, err)
	require.NoError(t, repo.UpdateCode(ctx, id, "old"))
	id, err = repo.Insert(ctx, "https://example.com/live", nil)
	require.NoError(t, err)
	require.NoError(t, repo.UpdateCode(ctx, id, "live"))

	codes, err := repo.DeleteExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"old"}, codes)

	codes, err = repo.DeleteExpired(ctx)
	require.NoError(t, err)
	assert.Empty(t, codes)
}

func Test_MemRepo_ListActiveByPopularity_orders_by_clicks(t *testing.T) {
	repo := NewMemRepo()
	ctx := context.Background()

	seed := func(url, code string, clicks int) {
		id, err := repo.Insert(ctx, url, nil)
		require.NoError(t, err)
		require.NoError(t, repo.UpdateCode(ctx, id, code))
		for i := 0; i < clicks; i++ {
			require.NoError(t, repo.IncrementClicks(ctx, code))
		}
	}
	seed("https://example.com/a", "a", 1)
	seed("https://example.com/b", "b", 5)
	seed("https://example.com/c", "c", 3)

	urls, err := repo.ListActiveByPopularity(ctx, 2)
	require.NoError(t, err)
	require.Len(t, urls, 2)
	assert.Equal(t, "b", urls[0].ShortCode)
	assert.Equal(t, "c", urls[1].ShortCode)
}
