package github

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitscout/backend/internal/storage/models"
)

const sampleArticle = `
<article class="Box-row">
  <h2 class="h3 lh-condensed">
    <a href="/golang/go">golang / go</a>
  </h2>
  <p class="col-9 color-fg-muted my-1 pr-4">The Go programming language</p>
  <div class="f6 color-fg-muted mt-2">
    <span itemprop="programmingLanguage">Go</span>
    <a class="Link--muted d-inline-block mr-3" href="/golang/go/stargazers">120,000</a>
    <a class="Link--muted d-inline-block mr-3" href="/golang/go/forks">17,500</a>
    <span class="d-inline-block float-sm-right">350 stars today</span>
  </div>
</article>`

func TestParseTrendingArticle(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(sampleArticle))
	require.NoError(t, err)

	repo := parseTrendingArticle(doc.Find("article.Box-row"))

	assert.Equal(t, "golang", repo.Author)
	assert.Equal(t, "go", repo.Name)
	assert.Equal(t, "https://github.com/golang/go", repo.URL)
	assert.Equal(t, "The Go programming language", repo.Description)
	assert.Equal(t, "Go", repo.Language)
	assert.Equal(t, "120,000", repo.Stars)
	assert.Equal(t, "17,500", repo.Forks)
	assert.Equal(t, "350", repo.StarsToday)
}

func TestParseGitHubNumber(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"1,234", 1234},
		{"12.3k", 12300},
		{"120,000", 120000},
		{"5", 5},
		{"", 0},
		{"n/a", 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, parseGitHubNumber(tt.in), tt.in)
	}
}

func TestSortByActivity(t *testing.T) {
	repos := []models.Repo{
		{Name: "quiet", StarsToday: "10", Stars: "50,000"},
		{Name: "hot", StarsToday: "1.2k", Stars: "300"},
		{Name: "tied-small", StarsToday: "10", Stars: "100"},
	}

	sortByActivity(repos)

	assert.Equal(t, "hot", repos[0].Name)
	// Ties on stars-today break on total stars.
	assert.Equal(t, "quiet", repos[1].Name)
	assert.Equal(t, "tied-small", repos[2].Name)
}

func TestClassifyTopic(t *testing.T) {
	assert.Equal(t, "AI/ML", classifyTopic("llama-server", "run an LLM locally", "C++"))
	assert.Equal(t, "DevOps", classifyTopic("k9s", "Kubernetes CLI dashboard", "Go"))
	assert.Equal(t, "Web", classifyTopic("next", "The React framework", "TypeScript"))
	assert.Equal(t, "General", classifyTopic("misc", "assorted snippets", ""))
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "999", formatNumber(999))
	assert.Equal(t, "1.0k", formatNumber(1000))
	assert.Equal(t, "1.5k", formatNumber(1520))
	assert.Equal(t, "120.0k", formatNumber(120000))
	assert.Equal(t, "0", formatNumber(0))
}
