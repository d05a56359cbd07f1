package github

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	rediscache "github.com/gitscout/backend/internal/cache/redis"
	"github.com/gitscout/backend/internal/metrics"
	"github.com/gitscout/backend/internal/storage/models"
	"github.com/gitscout/backend/pkg/circuitbreaker"
	"github.com/gitscout/backend/pkg/logger"
	"github.com/gitscout/backend/pkg/utils"
)

// TrendingScraper scrapes github.com/trending. Results are cached in redis
// for a short TTL and the scrape itself runs behind a circuit breaker so a
// markup change or rate limit does not hammer GitHub.
type TrendingScraper struct {
	client  *Client
	cache   *rediscache.Client
	breaker *circuitbreaker.CircuitBreaker
	ttl     time.Duration
}

func NewTrendingScraper(client *Client, cache *rediscache.Client, ttl time.Duration) *TrendingScraper {
	breaker := circuitbreaker.NewCircuitBreaker("github-trending", circuitbreaker.Config{
		FailureThreshold: 3,
		SuccessThreshold: 1,
		Timeout:          2 * time.Minute,
		Logger:           logger.GetLogger(),
	})

	return &TrendingScraper{
		client:  client,
		cache:   cache,
		breaker: breaker,
		ttl:     ttl,
	}
}

// Trending returns the trending repositories for a language and date range
// ("daily", "weekly" or "monthly"). language may be empty for all languages.
func (s *TrendingScraper) Trending(ctx context.Context, language, since string) ([]models.Repo, error) {
	if since == "" {
		since = "daily"
	}

	cacheKey := "trending:" + utils.HashString(language+"|"+since)
	if s.cache != nil {
		var cached []models.Repo
		if ok, err := s.cache.GetJSON(ctx, cacheKey, &cached); err == nil && ok {
			return cached, nil
		}
	}

	var repos []models.Repo
	err := s.breaker.Execute(ctx, func() error {
		var scrapeErr error
		repos, scrapeErr = s.scrape(ctx, language, since)
		return scrapeErr
	})
	if err != nil {
		metrics.TrendingScrapes.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.TrendingScrapes.WithLabelValues("ok").Inc()

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, cacheKey, repos, s.ttl); err != nil {
			logger.Warn("Failed to cache trending results", zap.Error(err))
		}
	}

	return repos, nil
}

func (s *TrendingScraper) scrape(ctx context.Context, language, since string) ([]models.Repo, error) {
	url := "https://github.com/trending"
	if language != "" {
		url += "/" + strings.ToLower(language)
	}
	url += "?since=" + since

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", s.client.userAgent)

	resp, err := s.client.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch trending page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("trending page returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse trending page: %w", err)
	}

	var repos []models.Repo
	doc.Find("article.Box-row").Each(func(_ int, sel *goquery.Selection) {
		repo := parseTrendingArticle(sel)
		if repo.Author == "" || repo.Name == "" {
			return
		}
		repos = append(repos, repo)
	})

	if len(repos) == 0 {
		return nil, fmt.Errorf("no repositories parsed from trending page, markup may have changed")
	}

	sortByActivity(repos)

	logger.Info("Scraped trending repositories",
		zap.String("language", language),
		zap.String("since", since),
		zap.Int("count", len(repos)),
	)

	return repos, nil
}

func parseTrendingArticle(sel *goquery.Selection) models.Repo {
	var repo models.Repo

	// The h2 link holds "author / name" and the href holds the path.
	link := sel.Find("h2 a")
	if href, ok := link.Attr("href"); ok {
		parts := strings.Split(strings.Trim(href, "/"), "/")
		if len(parts) >= 2 {
			repo.Author = parts[0]
			repo.Name = parts[1]
			repo.URL = "https://github.com/" + parts[0] + "/" + parts[1]
		}
	}

	repo.Description = strings.TrimSpace(sel.Find("p.col-9").Text())
	repo.Language = strings.TrimSpace(sel.Find("span[itemprop='programmingLanguage']").Text())

	meta := sel.Find("div.f6.color-fg-muted")
	repo.Stars = cleanNumber(meta.Find("a.Link--muted").Eq(0).Text())
	repo.Forks = cleanNumber(meta.Find("a.Link--muted").Eq(1).Text())

	starsToday := strings.TrimSpace(meta.Find("span.d-inline-block.float-sm-right").Text())
	if starsToday == "" {
		starsToday = strings.TrimSpace(meta.Find("span.float-sm-right").Text())
	}
	if idx := strings.Index(starsToday, " star"); idx > 0 {
		starsToday = starsToday[:idx]
	}
	repo.StarsToday = strings.TrimSpace(starsToday)

	repo.Topic = classifyTopic(repo.Name, repo.Description, repo.Language)

	return repo
}

func cleanNumber(raw string) string {
	return strings.TrimSpace(strings.ReplaceAll(raw, "\n", ""))
}

// parseGitHubNumber reads GitHub's display formats: "1,234", "12.3k".
func parseGitHubNumber(raw string) int {
	raw = strings.ToLower(strings.TrimSpace(strings.ReplaceAll(raw, ",", "")))
	if raw == "" {
		return 0
	}
	if strings.HasSuffix(raw, "k") {
		f, err := strconv.ParseFloat(strings.TrimSuffix(raw, "k"), 64)
		if err != nil {
			return 0
		}
		return int(f * 1000)
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return n
}

// sortByActivity orders by stars gained today, breaking ties on total stars.
func sortByActivity(repos []models.Repo) {
	sort.SliceStable(repos, func(i, j int) bool {
		ti, tj := parseGitHubNumber(repos[i].StarsToday), parseGitHubNumber(repos[j].StarsToday)
		if ti != tj {
			return ti > tj
		}
		return parseGitHubNumber(repos[i].Stars) > parseGitHubNumber(repos[j].Stars)
	})
}

var topicKeywords = []struct {
	topic    string
	keywords []string
}{
	{"AI/ML", []string{"llm", "gpt", "agent", "machine learning", "deep learning", "neural", "transformer", " ai ", "ai-", "model"}},
	{"Web", []string{"react", "vue", "frontend", "web framework", "css", "http server", "website"}},
	{"DevOps", []string{"kubernetes", "docker", "terraform", "deploy", "ci/cd", "infrastructure", "monitoring"}},
	{"Data", []string{"database", "sql", "analytics", "etl", "data pipeline", "storage engine"}},
	{"Security", []string{"security", "vulnerability", "pentest", "encryption", "auth"}},
	{"Tools", []string{"cli", "terminal", "editor", "productivity", "utility"}},
}

func classifyTopic(name, description, language string) string {
	haystack := strings.ToLower(name + " " + description + " " + language)
	for _, entry := range topicKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(haystack, kw) {
				return entry.topic
			}
		}
	}
	return "General"
}
