package sessionstore_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"filesend-bot/internal/domain/conversation"
	"filesend-bot/internal/infrastructure/sessionstore"
)

func TestMemoryStore_GetMissingIsIdle(t *testing.T) {
	store := sessionstore.NewMemoryStore(time.Hour, zerolog.Nop())

	sess, err := store.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, conversation.StateIdle, sess.State)
	assert.Empty(t, sess.Payload)
}

func TestMemoryStore_SaveIsolatesCallers(t *testing.T) {
	store := sessionstore.NewMemoryStore(time.Hour, zerolog.Nop())
	ctx := context.Background()

	sess := &conversation.Session{
		State:   conversation.StateAwaitingFileType,
		Payload: conversation.Payload{FileID: "abc", FileName: "essay.txt"},
	}
	require.NoError(t, store.Save(ctx, 7, sess))
	sess.Payload.FileID = "mutated"

	got, err := store.Get(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, conversation.StateAwaitingFileType, got.State)
	assert.Equal(t, "abc", got.Payload.FileID)
	assert.False(t, got.UpdatedAt.IsZero())

	require.NoError(t, store.Delete(ctx, 7))
	got, err = store.Get(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, conversation.StateIdle, got.State)
}

func TestMemoryStore_Expiry(t *testing.T) {
	store := sessionstore.NewMemoryStore(20*time.Millisecond, zerolog.Nop())
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, 1, &conversation.Session{State: conversation.StateAdminMenu}))
	time.Sleep(50 * time.Millisecond)

	got, err := store.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, conversation.StateIdle, got.State)
	assert.Equal(t, 1, store.Purge())
	assert.Equal(t, 0, store.Purge())
}

func TestMemoryStore_WithLockSerializesPerUser(t *testing.T) {
	store := sessionstore.NewMemoryStore(0, zerolog.Nop())
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		active  int
		maxSeen int
		mu      sync.Mutex
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.WithLock(ctx, 42, func(context.Context) error {
				mu.Lock()
				active++
				if active > maxSeen {
					maxSeen = active
				}
				mu.Unlock()

				time.Sleep(time.Millisecond)

				mu.Lock()
				active--
				mu.Unlock()
				return nil
			})
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxSeen)
}

func TestSessionReset(t *testing.T) {
	sess := &conversation.Session{
		State:   conversation.StateAwaitingReplaceConfirmation,
		Payload: conversation.Payload{ScratchPath: "/tmp/scratch", TargetPath: "/a/b"},
	}
	assert.Equal(t, "/tmp/scratch", sess.Reset())
	assert.Equal(t, conversation.StateIdle, sess.State)
	assert.Empty(t, sess.Payload)
}
