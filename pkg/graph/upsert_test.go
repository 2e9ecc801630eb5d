package graph

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecutorUpsert(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("creates then matches", func(t *testing.T) {
		store := newFakeStore()
		exec := NewExecutor(store)

		first, err := exec.Upsert(ctx, "Language", "code", "en", nil)
		require.NoError(t, err)
		require.NotEmpty(t, first)

		second, err := exec.Upsert(ctx, "Language", "code", "en", []Triple{
			{Predicate: "parent", Object: UID("0xff")},
		})
		require.NoError(t, err)

		assert.Equal(t, first, second)
		assert.Equal(t, 1, store.nodeCount("Language"))
	})

	t.Run("repeated identical relations stay single", func(t *testing.T) {
		store := newFakeStore()
		exec := NewExecutor(store)

		rels := []Triple{{Predicate: "characters", Object: String("abc")}}

		uid, err := exec.Upsert(ctx, "Alphabet", "code", "lat", rels)
		require.NoError(t, err)
		_, err = exec.Upsert(ctx, "Alphabet", "code", "lat", rels)
		require.NoError(t, err)

		assert.Equal(t, []string{`"abc"`}, store.objects(uid, "Alphabet.characters"))
	})

	t.Run("distinct keys get distinct nodes", func(t *testing.T) {
		store := newFakeStore()
		exec := NewExecutor(store)

		first, err := exec.Upsert(ctx, "Language", "code", "en", nil)
		require.NoError(t, err)
		second, err := exec.Upsert(ctx, "Language", "code", "fr", nil)
		require.NoError(t, err)

		assert.NotEqual(t, first, second)
		assert.Equal(t, 2, store.nodeCount("Language"))
	})

	t.Run("store failure wraps ErrUpsert", func(t *testing.T) {
		store := newFakeStore()
		store.failWhen = func(string) error { return errors.New("boom") }
		exec := NewExecutor(store)

		_, err := exec.Upsert(ctx, "Language", "code", "en", nil)
		assert.True(t, errors.Is(err, ErrUpsert))
	})
}

func TestUIDFromResponse(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		resp *Response
		want string
	}{
		{"nil response", nil, ""},
		{"created node in uid map", &Response{UIDs: map[string]string{"uid(u)": "0x7"}}, "0x7"},
		{"matched node in query json", &Response{JSON: []byte(`{"node":[{"uid":"0x9"}]}`)}, "0x9"},
		{"empty response", &Response{}, ""},
		{"no match in query", &Response{JSON: []byte(`{"node":[]}`)}, ""},
		{"ambiguous match", &Response{JSON: []byte(`{"node":[{"uid":"0x1"},{"uid":"0x2"}]}`)}, ""},
		{"malformed json", &Response{JSON: []byte(`{`)}, ""},
		{"multiple created uids", &Response{UIDs: map[string]string{"a": "0x1", "b": "0x2"}}, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, uidFromResponse(tc.resp))
		})
	}
}
