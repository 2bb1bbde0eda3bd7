package id

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_Uniqueness(t *testing.T) {
	seen := make(map[string]bool)
	const count = 1000

	for range count {
		v, err := Generate("test")
		require.NoError(t, err)
		assert.False(t, seen[v], "duplicate id %s", v)
		seen[v] = true
	}

	assert.Len(t, seen, count)
}

func TestGenerate_Format(t *testing.T) {
	for _, prefix := range []string{PrefixEntry, PrefixToken, PrefixUser, "custom"} {
		t.Run(prefix, func(t *testing.T) {
			v, err := Generate(prefix)
			require.NoError(t, err)

			require.True(t, strings.HasPrefix(v, prefix+"-"), v)
			// Default nanoid length is 21.
			assert.Len(t, strings.TrimPrefix(v, prefix+"-"), 21)
		})
	}
}

func TestMustGenerate(t *testing.T) {
	assert.NotPanics(t, func() {
		v := MustGenerate(PrefixUser)
		assert.True(t, strings.HasPrefix(v, "usr-"))
	})
}

func TestNewEntryID(t *testing.T) {
	v, err := NewEntryID()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(v, "ent-"))
}

func TestNewPhotoID_IsUUID(t *testing.T) {
	a, b := NewPhotoID(), NewPhotoID()

	_, err := uuid.Parse(a)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}
