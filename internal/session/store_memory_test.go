package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	state := New("s1", time.Now(), time.Hour)
	state.SetResume(DocumentRef{ID: "d1", FileName: "cv.txt"}, "hello")
	require.NoError(t, store.Save(ctx, state))

	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "hello", got.ResumeText)
	assert.Equal(t, "cv.txt", got.Resume.FileName)

	got.ResumeText = "mutated"
	again, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "hello", again.ResumeText)
}

func TestMemoryStoreMissing(t *testing.T) {
	store := NewMemoryStore()
	_, err := store.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreRejectsEmptyID(t *testing.T) {
	store := NewMemoryStore()
	assert.ErrorIs(t, store.Save(context.Background(), &State{}), ErrInvalidState)
	assert.ErrorIs(t, store.Save(context.Background(), nil), ErrInvalidState)
}

func TestMemoryStoreExpiresLazily(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	store := NewMemoryStore()
	store.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, New("s1", now, time.Minute)))

	now = now.Add(2 * time.Minute)
	_, err := store.Get(ctx, "s1")
	assert.ErrorIs(t, err, ErrExpired)
	assert.ErrorIs(t, err, ErrNotFound)

	store.mu.RLock()
	_, stillThere := store.data["s1"]
	store.mu.RUnlock()
	assert.False(t, stillThere)

	_, err = store.Get(ctx, "s1")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrExpired)
}

func TestMemoryStoreKeepsSessionRefreshedDuringExpiryCheck(t *testing.T) {
	start := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	late := start.Add(2 * time.Minute)
	store := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, New("s1", start, time.Minute)))

	refreshed := false
	store.now = func() time.Time {
		if !refreshed {
			refreshed = true
			state := New("s1", late, time.Hour)
			state.ResumeText = "refreshed"
			require.NoError(t, store.Save(ctx, state))
		}
		return late
	}

	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "refreshed", got.ResumeText)

	store.mu.RLock()
	_, stillThere := store.data["s1"]
	store.mu.RUnlock()
	assert.True(t, stillThere)
}

func TestMemoryStorePurgeExpired(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, New("old", now.Add(-2*time.Hour), time.Hour)))
	require.NoError(t, store.Save(ctx, New("fresh", now, time.Hour)))

	removed, err := store.PurgeExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, []string{"old"}, removed)

	store.now = func() time.Time { return now }
	_, err = store.Get(ctx, "fresh")
	assert.NoError(t, err)
}

func TestMemoryStoreDelete(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, New("s1", time.Now(), time.Hour)))

	require.NoError(t, store.Delete(ctx, "s1"))
	require.NoError(t, store.Delete(ctx, "s1"))

	_, err := store.Get(ctx, "s1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreConcurrentSessions(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := string(rune('a' + i))
			state := New(id, time.Now(), time.Hour)
			state.ResumeText = id
			assert.NoError(t, store.Save(ctx, state))
			got, err := store.Get(ctx, id)
			if assert.NoError(t, err) {
				assert.Equal(t, id, got.ResumeText)
			}
		}(i)
	}
	wg.Wait()
}
