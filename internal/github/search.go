package github

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/gitscout/backend/internal/llm"
	"github.com/gitscout/backend/internal/metrics"
	"github.com/gitscout/backend/internal/storage/models"
	"github.com/gitscout/backend/pkg/logger"
)

const searchPageSize = 20

type searchResponse struct {
	TotalCount int `json:"total_count"`
	Items      []struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Language    string `json:"language"`
		Stargazers  int    `json:"stargazers_count"`
		Forks       int    `json:"forks_count"`
		HTMLURL     string `json:"html_url"`
		Owner       struct {
			Login string `json:"login"`
		} `json:"owner"`
	} `json:"items"`
}

// Search queries the GitHub search API, ordered by stars.
func (c *Client) Search(ctx context.Context, query string) ([]models.Repo, error) {
	endpoint := fmt.Sprintf(
		"https://api.github.com/search/repositories?q=%s&sort=stars&order=desc&per_page=%d",
		url.QueryEscape(query), searchPageSize,
	)

	body, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}

	var result searchResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	metrics.SearchQueries.Inc()

	repos := make([]models.Repo, 0, len(result.Items))
	for _, item := range result.Items {
		repos = append(repos, models.Repo{
			Author:      item.Owner.Login,
			Name:        item.Name,
			Description: item.Description,
			Language:    item.Language,
			Stars:       formatNumber(item.Stargazers),
			Forks:       formatNumber(item.Forks),
			StarsToday:  "",
			URL:         item.HTMLURL,
			Topic:       classifyTopic(item.Name, item.Description, item.Language),
		})
	}

	logger.Debug("Search completed",
		zap.String("query", query),
		zap.Int("total", result.TotalCount),
		zap.Int("returned", len(repos)),
	)

	return repos, nil
}

// formatNumber renders counts the way GitHub displays them: 1520 -> "1.5k".
func formatNumber(n int) string {
	if n >= 1000 {
		return fmt.Sprintf("%.1fk", float64(n)/1000.0)
	}
	return fmt.Sprintf("%d", n)
}

// RewriteQuery asks an LLM to turn a natural-language request into GitHub
// search qualifiers. On any failure the original query is returned unchanged.
func RewriteQuery(ctx context.Context, provider llm.Provider, model, query string) string {
	messages := []llm.ChatMessage{
		llm.SystemMessage("You convert natural-language requests into GitHub repository search queries. " +
			"Reply with ONLY the search query string, using GitHub qualifiers like language:, stars:>, topic: where helpful. " +
			"No explanation, no quotes."),
		llm.UserMessage(query),
	}

	resp, err := provider.ChatCompletion(ctx, messages, model, false)
	if err != nil {
		logger.Warn("Query rewrite failed, using original query",
			zap.String("query", query),
			zap.Error(err),
		)
		return query
	}

	rewritten := strings.TrimSpace(strings.Trim(strings.TrimSpace(resp.Content), `"`))
	if rewritten == "" {
		return query
	}

	logger.Debug("Rewrote search query",
		zap.String("original", query),
		zap.String("rewritten", rewritten),
	)
	return rewritten
}
