package graph

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolver(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("empty key means no reference", func(t *testing.T) {
		store := newFakeStore()
		resolver := NewResolver(NewExecutor(store))

		uid, ok, err := resolver.Resolve(ctx, "Script", "")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Empty(t, uid)
		assert.Zero(t, store.mutates)
	})

	t.Run("miss creates a bare node", func(t *testing.T) {
		store := newFakeStore()
		resolver := NewResolver(NewExecutor(store))

		uid, ok, err := resolver.Resolve(ctx, "Script", "latn")
		require.NoError(t, err)
		require.True(t, ok)

		assert.Equal(t, uid, store.uidFor("Script", "code", "latn"))
		assert.Equal(t, []string{`"latn"`}, store.objects(uid, "Script.code"))
	})

	t.Run("hit served from cache", func(t *testing.T) {
		store := newFakeStore()
		resolver := NewResolver(NewExecutor(store))

		first, _, err := resolver.Resolve(ctx, "Language", "en")
		require.NoError(t, err)

		second, ok, err := resolver.Resolve(ctx, "Language", "en")
		require.NoError(t, err)
		require.True(t, ok)

		assert.Equal(t, first, second)
		assert.Equal(t, 1, store.mutates)
	})

	t.Run("failure surfaces ErrResolution and caches not-found", func(t *testing.T) {
		store := newFakeStore()
		store.failWhen = func(string) error { return errors.New("transport down") }
		resolver := NewResolver(NewExecutor(store))

		_, _, err := resolver.Resolve(ctx, "Language", "xx")
		assert.True(t, errors.Is(err, ErrResolution))

		// Subsequent lookups in the same run do not re-attempt creation.
		store.failWhen = nil
		uid, ok, err := resolver.Resolve(ctx, "Language", "xx")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Empty(t, uid)
		assert.Equal(t, 1, store.mutates)
	})

	t.Run("concurrent resolution converges on one node", func(t *testing.T) {
		store := newFakeStore()
		resolver := NewResolver(NewExecutor(store))

		const callers = 16
		uids := make([]string, callers)

		var wg sync.WaitGroup
		for i := 0; i < callers; i++ {
			i := i
			wg.Add(1)
			go func() {
				defer wg.Done()
				uid, ok, err := resolver.Resolve(ctx, "Language", "ak")
				if err == nil && ok {
					uids[i] = uid
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, 1, store.mutates)
		for _, uid := range uids {
			assert.Equal(t, uids[0], uid)
		}
	})
}
