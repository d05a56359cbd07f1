package insight

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitscout/backend/internal/llm"
	"github.com/gitscout/backend/internal/storage/models"
)

// stubFetcher serves canned repository context and records the limits it was
// asked for.
type stubFetcher struct {
	readme      string
	listing     string
	files       map[string]string
	readmeLimit int
	fileLimits  map[string]int
}

func newStubFetcher() *stubFetcher {
	return &stubFetcher{
		files:       make(map[string]string),
		fileLimits:  make(map[string]int),
		readmeLimit: -1,
	}
}

func (f *stubFetcher) FetchReadme(_ context.Context, _, _ string, limit int) (string, bool) {
	f.readmeLimit = limit
	if f.readme == "" {
		return "", false
	}
	if limit > 0 && len(f.readme) > limit {
		return f.readme[:limit], true
	}
	return f.readme, true
}

func (f *stubFetcher) FetchDirectoryListing(_ context.Context, _, _ string) (string, bool) {
	return f.listing, f.listing != ""
}

func (f *stubFetcher) FetchFile(_ context.Context, _, _, path string, limit int) (string, bool) {
	f.fileLimits[path] = limit
	content, ok := f.files[path]
	return content, ok
}

var testRepo = models.Repo{
	Author:      "golang",
	Name:        "go",
	Description: "The Go programming language",
	Language:    "Go",
}

func userPrompt(t *testing.T, messages []llm.ChatMessage) string {
	t.Helper()
	require.Len(t, messages, 2)
	assert.Equal(t, llm.RoleSystem, messages[0].Role)
	assert.Equal(t, llm.RoleUser, messages[1].Role)
	return messages[1].Content
}

func TestComposeQuickMode(t *testing.T) {
	fetcher := newStubFetcher()
	fetcher.readme = strings.Repeat("r", 5000)
	fetcher.listing = "[DIR] src"
	fetcher.files["package.json"] = "{}"

	prompt := userPrompt(t, composeMessages(context.Background(), fetcher, testRepo, false))

	// Quick mode caps the README and never touches listing or manifests.
	assert.Equal(t, 2000, fetcher.readmeLimit)
	assert.Contains(t, prompt, "Project README (excerpt)")
	assert.NotContains(t, prompt, "directory structure")
	assert.NotContains(t, prompt, "Manifest")
	assert.Empty(t, fetcher.fileLimits)
	assert.Contains(t, prompt, "golang/go")
	assert.Contains(t, prompt, "The Go programming language")
}

func TestComposeDeepMode(t *testing.T) {
	fetcher := newStubFetcher()
	fetcher.readme = "full readme text"
	fetcher.listing = "[DIR] src\n[FILE] go.mod\n"
	fetcher.files["go.mod"] = "module golang.org/x/tools"

	prompt := userPrompt(t, composeMessages(context.Background(), fetcher, testRepo, true))

	assert.Equal(t, 0, fetcher.readmeLimit)
	assert.Contains(t, prompt, "Project README (full)")
	assert.Contains(t, prompt, "directory structure")
	assert.Contains(t, prompt, "Manifest go.mod")
	assert.Contains(t, prompt, "module golang.org/x/tools")
	assert.Equal(t, 1500, fetcher.fileLimits["go.mod"])
}

func TestComposeDeepModeManifestFirstHitWins(t *testing.T) {
	fetcher := newStubFetcher()
	fetcher.files["package.json"] = `{"name": "tool"}`
	fetcher.files["Cargo.toml"] = `[package]`

	prompt := userPrompt(t, composeMessages(context.Background(), fetcher, testRepo, true))

	assert.Contains(t, prompt, "Manifest package.json")
	assert.NotContains(t, prompt, "Cargo.toml")
}

func TestComposeDegradesWithoutContext(t *testing.T) {
	fetcher := newStubFetcher()

	prompt := userPrompt(t, composeMessages(context.Background(), fetcher, testRepo, true))

	// Missing context shrinks the prompt, it never fails composition.
	assert.NotContains(t, prompt, "README")
	assert.NotContains(t, prompt, "Manifest")
	assert.Contains(t, prompt, "golang/go")
}
