package insight

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitscout/backend/internal/storage/models"
)

func TestCacheRoundTrip(t *testing.T) {
	cache := NewCache(t.TempDir())
	repo := models.Repo{Author: "golang", Name: "go"}

	_, ok := cache.Get(repo)
	assert.False(t, ok)
	assert.False(t, cache.Has(repo))

	content := "## Summary\nA programming language."
	require.NoError(t, cache.Put(repo, content))

	got, ok := cache.Get(repo)
	require.True(t, ok)
	assert.Equal(t, content, got)
	assert.True(t, cache.Has(repo))
}

func TestCacheOverwrite(t *testing.T) {
	cache := NewCache(t.TempDir())
	repo := models.Repo{Author: "golang", Name: "go"}

	require.NoError(t, cache.Put(repo, "first version of insight"))
	require.NoError(t, cache.Put(repo, "second version of insight"))

	got, ok := cache.Get(repo)
	require.True(t, ok)
	assert.Equal(t, "second version of insight", got)
}

func TestCacheRejectsShortContent(t *testing.T) {
	cache := NewCache(t.TempDir())
	repo := models.Repo{Author: "a", Name: "b"}

	assert.Error(t, cache.Put(repo, ""))
	assert.Error(t, cache.Put(repo, "short"))
	assert.Error(t, cache.Put(repo, "         padded      "))
	assert.False(t, cache.Has(repo))
}

func TestCacheKeyNormalization(t *testing.T) {
	assert.Equal(t, "myrepo", cacheKey("My.Repo!"))
	assert.Equal(t, "my-repo_v2", cacheKey("My-Repo_v2"))
	assert.Equal(t, "", cacheKey("..."))

	// Identities differing only by case or punctuation share one entry.
	dir := t.TempDir()
	cache := NewCache(dir)
	require.NoError(t, cache.Put(models.Repo{Author: "GoLang", Name: "Go.Tools"}, "case-insensitive entry"))

	got, ok := cache.Get(models.Repo{Author: "golang", Name: "gotools"})
	require.True(t, ok)
	assert.Equal(t, "case-insensitive entry", got)

	// Files land under the ai_insights subdirectory.
	_, err := os.Stat(filepath.Join(dir, "ai_insights", "golang_gotools.md"))
	assert.NoError(t, err)
}
