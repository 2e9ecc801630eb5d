package graph

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeTransliteration(t *testing.T) {
	t.Parallel()

	t.Run("known vector", func(t *testing.T) {
		canonical, hash, err := EncodeTransliteration("Alphabet", "lat", "Latin")
		require.NoError(t, err)
		assert.Equal(t, "Latin", canonical)
		assert.Equal(t, "9cf131f008d95ad5bb0a10d9b6477a062a6878f8248a8f197c2f6a35ce03ebee", hash)
	})

	t.Run("deterministic", func(t *testing.T) {
		_, first, err := EncodeTransliteration("Language", "en", "English")
		require.NoError(t, err)
		_, second, err := EncodeTransliteration("Language", "en", "English")
		require.NoError(t, err)

		assert.Equal(t, first, second)
		assert.Equal(t, "4f073759028a04770806cff8cd329e633a1ac91f65133154bce80d5c5b126d0b", first)
	})

	t.Run("owner scopes the hash", func(t *testing.T) {
		_, base, err := EncodeTransliteration("Expression", "u-1", "run")
		require.NoError(t, err)

		_, otherField, err := EncodeTransliteration("Expression.meaning", "u-1", "run")
		require.NoError(t, err)
		_, otherKey, err := EncodeTransliteration("Expression", "u-2", "run")
		require.NoError(t, err)
		_, otherText, err := EncodeTransliteration("Expression", "u-1", "walk")
		require.NoError(t, err)

		assert.NotEqual(t, base, otherField)
		assert.NotEqual(t, base, otherKey)
		assert.NotEqual(t, base, otherText)
	})

	t.Run("canonical form escapes quotes", func(t *testing.T) {
		canonical, _, err := EncodeTransliteration("Alphabet", "lat", `the "Latin" alphabet`)
		require.NoError(t, err)
		assert.Equal(t, `the \"Latin\" alphabet`, canonical)
	})

	t.Run("empty value rejected", func(t *testing.T) {
		_, _, err := EncodeTransliteration("Alphabet", "lat", "")
		assert.True(t, errors.Is(err, ErrInvalidInput))
	})
}
