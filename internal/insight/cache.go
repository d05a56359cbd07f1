package insight

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/gitscout/backend/internal/storage/models"
	"github.com/gitscout/backend/pkg/logger"
)

// minInsightLen guards against caching failed or truncated generations that
// returned a non-error but empty-ish result.
const minInsightLen = 10

// Cache stores generated insights as files under <dataDir>/ai_insights.
// Entries never expire; a forced refresh overwrites in place.
type Cache struct {
	dir string
}

func NewCache(dataDir string) *Cache {
	return &Cache{dir: filepath.Join(dataDir, "ai_insights")}
}

// cacheKey normalizes a name into a filesystem-safe token: lower-cased,
// alphanumerics plus '-'/'_' only. Identities differing only by case or
// punctuation intentionally collide, which makes cache hits
// case-insensitive.
func cacheKey(name string) string {
	var b strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

func (c *Cache) path(repo models.Repo) string {
	return filepath.Join(c.dir, fmt.Sprintf("%s_%s.md", cacheKey(repo.Author), cacheKey(repo.Name)))
}

// Get returns the cached insight; a missing file is a normal miss, not an
// error.
func (c *Cache) Get(repo models.Repo) (string, bool) {
	data, err := os.ReadFile(c.path(repo))
	if err != nil {
		return "", false
	}
	return string(data), true
}

func (c *Cache) Has(repo models.Repo) bool {
	_, err := os.Stat(c.path(repo))
	return err == nil
}

// Put persists an insight, rejecting content below the minimum length.
func (c *Cache) Put(repo models.Repo, content string) error {
	if len(strings.TrimSpace(content)) < minInsightLen {
		return fmt.Errorf("insight too short to cache (%d bytes)", len(content))
	}

	path := c.path(repo)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create cache dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}

	logger.Debug("Insight cached",
		zap.String("repo", repo.Author+"/"+repo.Name),
		zap.Int("bytes", len(content)),
	)
	return nil
}
