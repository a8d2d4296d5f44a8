package ratelimit

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/notelink/notelink/internal/clientstate"
)

type failingStore struct{}

func (failingStore) Get(string) (string, bool, error) { return "", false, errors.New("storage down") }
func (failingStore) Set(string, string) error         { return errors.New("storage down") }

func newTestLimiter(store clientstate.Store) (*Limiter, *time.Time) {
	current := time.Unix(1_700_000_000, 0)
	limiter := New(store, nil)
	limiter.now = func() time.Time { return current }
	return limiter, &current
}

func TestCheckAllowsUpToLimitThenRejects(t *testing.T) {
	limiter, _ := newTestLimiter(clientstate.NewMemStore())

	for i := 0; i < 5; i++ {
		require.True(t, limiter.Check("notes_submission", 5, 10*time.Minute), "call %d", i+1)
	}
	require.False(t, limiter.Check("notes_submission", 5, 10*time.Minute))
}

func TestRejectedCallDoesNotConsumeSlot(t *testing.T) {
	limiter, clock := newTestLimiter(clientstate.NewMemStore())

	require.True(t, limiter.Check("chat", 1, time.Minute))
	require.False(t, limiter.Check("chat", 1, time.Minute))
	require.False(t, limiter.Check("chat", 1, time.Minute))

	// The single permitted timestamp is the only one retained, so the key
	// frees up exactly one window after it.
	*clock = clock.Add(time.Minute)
	require.True(t, limiter.Check("chat", 1, time.Minute))
}

func TestWindowBoundaryPrunesExactAge(t *testing.T) {
	limiter, clock := newTestLimiter(clientstate.NewMemStore())

	require.True(t, limiter.Check("notes", 1, time.Minute))

	*clock = clock.Add(time.Minute - time.Millisecond)
	require.False(t, limiter.Check("notes", 1, time.Minute))

	// At exactly window age the old entry is pruned.
	*clock = clock.Add(time.Millisecond)
	require.True(t, limiter.Check("notes", 1, time.Minute))
}

func TestKeysAreIndependent(t *testing.T) {
	limiter, _ := newTestLimiter(clientstate.NewMemStore())

	require.True(t, limiter.Check("a", 1, time.Minute))
	require.False(t, limiter.Check("a", 1, time.Minute))
	require.True(t, limiter.Check("b", 1, time.Minute))
}

func TestFailsOpenOnStorageError(t *testing.T) {
	limiter, _ := newTestLimiter(failingStore{})

	for i := 0; i < 10; i++ {
		require.True(t, limiter.Check("notes", 1, time.Minute))
	}
}

func TestFailsOpenOnCorruptWindow(t *testing.T) {
	store := clientstate.NewMemStore()
	require.NoError(t, store.Set("rate_limit_notes", "{corrupt"))

	limiter, _ := newTestLimiter(store)
	require.True(t, limiter.Check("notes", 1, time.Minute))
	// Corrupt window was reset, so the normal count applies from here.
	require.False(t, limiter.Check("notes", 1, time.Minute))
}
