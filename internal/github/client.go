package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/gitscout/backend/pkg/logger"
	"github.com/gitscout/backend/pkg/retry"
)

// treeMaxEntries caps the shallow directory listing included in deep-mode
// prompts.
const treeMaxEntries = 50

// Client fetches repository context from GitHub: raw file contents, the
// shallow directory listing, the trending page and the search API.
type Client struct {
	httpClient *http.Client
	userAgent  string
	retryCfg   retry.Config
}

func NewClient(userAgent string, timeout time.Duration) *Client {
	retryCfg := retry.DefaultConfig()
	retryCfg.MaxAttempts = 2
	retryCfg.Logger = logger.GetLogger()

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		userAgent:  userAgent,
		retryCfg:   retryCfg,
	}
}

// get fetches a URL with one retry for transient failures. Non-2xx counts
// as failure.
func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	return retry.DoWithResult(ctx, c.retryCfg, func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("User-Agent", c.userAgent)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("request failed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("unexpected status %d for %s", resp.StatusCode, url)
		}

		return io.ReadAll(resp.Body)
	})
}

// FetchFile returns a raw file from the repo's default branch, trying main
// then master. limit > 0 truncates to that many characters.
func (c *Client) FetchFile(ctx context.Context, author, name, path string, limit int) (string, bool) {
	urls := []string{
		fmt.Sprintf("https://raw.githubusercontent.com/%s/%s/refs/heads/main/%s", author, name, path),
		fmt.Sprintf("https://raw.githubusercontent.com/%s/%s/refs/heads/master/%s", author, name, path),
	}

	for _, url := range urls {
		body, err := c.get(ctx, url)
		if err != nil {
			continue
		}
		text := string(body)
		if limit > 0 {
			runes := []rune(text)
			if len(runes) > limit {
				text = string(runes[:limit])
			}
		}
		return text, true
	}

	logger.Debug("File not found on either branch",
		zap.String("repo", author+"/"+name),
		zap.String("path", path),
	)
	return "", false
}

func (c *Client) FetchReadme(ctx context.Context, author, name string, limit int) (string, bool) {
	return c.FetchFile(ctx, author, name, "README.md", limit)
}

// FetchDirectoryListing returns a one-level listing of the repo root as
// "[DIR]/[FILE] name" lines, capped with an explicit truncation marker.
func (c *Client) FetchDirectoryListing(ctx context.Context, author, name string) (string, bool) {
	url := fmt.Sprintf("https://api.github.com/repos/%s/%s/contents/", author, name)
	body, err := c.get(ctx, url)
	if err != nil {
		return "", false
	}

	var items []contentEntry
	if err := json.Unmarshal(body, &items); err != nil {
		return "", false
	}

	return formatListing(items), true
}

type contentEntry struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

func formatListing(items []contentEntry) string {
	var tree strings.Builder
	for i, item := range items {
		if i >= treeMaxEntries {
			tree.WriteString("... (more entries omitted)")
			break
		}
		kind := "[FILE]"
		if item.Type == "dir" {
			kind = "[DIR]"
		}
		fmt.Fprintf(&tree, "%s %s\n", kind, item.Name)
	}
	return tree.String()
}
