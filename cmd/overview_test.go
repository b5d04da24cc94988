package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brogergvhs/malview/internal/overview"
	"github.com/brogergvhs/malview/internal/providers"
	"github.com/brogergvhs/malview/internal/providers/mal"
)

func resetSelectionFlags(t *testing.T) {
	t.Helper()
	flagType = string(overview.Anime)
	flagIDs, flagRange, flagExcludeIDs, flagExcludeRange = "", "", "", ""
	t.Cleanup(func() {
		flagType = string(overview.Anime)
		flagIDs, flagRange, flagExcludeIDs, flagExcludeRange = "", "", "", ""
	})
}

func TestResolveRefs(t *testing.T) {
	reg := providers.NewRegistry(mal.New(nil, mal.Options{}))

	t.Run("type and ids", func(t *testing.T) {
		resetSelectionFlags(t)

		refs, err := resolveRefs(reg, []string{"manga", "2", "13"})
		require.NoError(t, err)
		assert.Equal(t, []overview.Ref{{Type: overview.Manga, ID: 2}, {Type: overview.Manga, ID: 13}}, refs)
	})

	t.Run("urls", func(t *testing.T) {
		resetSelectionFlags(t)

		refs, err := resolveRefs(reg, []string{"https://myanimelist.net/anime/1/Cowboy_Bebop", "https://myanimelist.net/manga/2"})
		require.NoError(t, err)
		assert.Equal(t, []overview.Ref{{Type: overview.Anime, ID: 1}, {Type: overview.Manga, ID: 2}}, refs)
	})

	t.Run("range with exclusions", func(t *testing.T) {
		resetSelectionFlags(t)
		flagRange = "1-5"
		flagIDs = "9"
		flagExcludeIDs = "2,4"

		refs, err := resolveRefs(reg, nil)
		require.NoError(t, err)

		ids := make([]int, len(refs))
		for i, r := range refs {
			ids[i] = r.ID
		}
		assert.Equal(t, []int{1, 3, 5, 9}, ids)
	})

	t.Run("duplicates collapse", func(t *testing.T) {
		resetSelectionFlags(t)
		flagIDs = "1"

		refs, err := resolveRefs(reg, []string{"anime", "1", "https://myanimelist.net/anime/1"})
		require.NoError(t, err)
		assert.Len(t, refs, 1)
	})

	t.Run("unsupported url", func(t *testing.T) {
		resetSelectionFlags(t)

		_, err := resolveRefs(reg, []string{"https://anilist.co/anime/1"})
		var unsupported *overview.UnsupportedURLError
		assert.ErrorAs(t, err, &unsupported)
	})
}

func TestParseValue(t *testing.T) {
	assert.Equal(t, float64(85), parseValue("85"))
	assert.Equal(t, true, parseValue("true"))
	assert.Equal(t, "dark", parseValue(`"dark"`))
	assert.Equal(t, "dark", parseValue("dark"))
	assert.Equal(t, map[string]any{"a": float64(1)}, parseValue(`{"a":1}`))
}
