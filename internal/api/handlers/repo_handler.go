package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/gitscout/backend/internal/github"
	"github.com/gitscout/backend/internal/llm"
	"github.com/gitscout/backend/internal/settings"
	"github.com/gitscout/backend/internal/storage/models"
	"github.com/gitscout/backend/internal/storage/sqlite"
	"github.com/gitscout/backend/pkg/logger"
)

// RepoHandler serves repository discovery: trending, search and favorites.
type RepoHandler struct {
	github   *github.Client
	trending *github.TrendingScraper
	db       *sqlite.Client
	settings *settings.Service
}

func NewRepoHandler(ghClient *github.Client, trending *github.TrendingScraper, db *sqlite.Client, settingsSvc *settings.Service) *RepoHandler {
	return &RepoHandler{
		github:   ghClient,
		trending: trending,
		db:       db,
		settings: settingsSvc,
	}
}

func (h *RepoHandler) Trending(c *fiber.Ctx) error {
	language := c.Query("language")
	since := c.Query("since", "daily")

	repos, err := h.trending.Trending(c.Context(), language, since)
	if err != nil {
		logger.Error("Failed to fetch trending repositories", zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "Failed to fetch trending repositories",
		})
	}

	return c.JSON(fiber.Map{"repos": repos})
}

// Search queries the GitHub search API. With smart=true and an active model
// configuration, the query is first rewritten into GitHub qualifiers by the
// configured LLM; rewrite failures fall back to the raw query.
func (h *RepoHandler) Search(c *fiber.Ctx) error {
	query := c.Query("q")
	if query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "q is required",
		})
	}

	effective := query
	if c.QueryBool("smart") {
		effective = h.rewriteQuery(c, query)
	}

	repos, err := h.github.Search(c.Context(), effective)
	if err != nil {
		logger.Error("Search failed", zap.String("query", effective), zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "Search failed",
		})
	}

	if err := h.db.RecordSearch(query); err != nil {
		logger.Warn("Failed to record search", zap.Error(err))
	}

	return c.JSON(fiber.Map{
		"query":           query,
		"effective_query": effective,
		"repos":           repos,
	})
}

func (h *RepoHandler) rewriteQuery(c *fiber.Ctx, query string) string {
	cfg, ok, err := h.settings.GetActiveConfig()
	if err != nil || !ok {
		return query
	}

	provider, err := llm.CreateProvider(cfg.ProviderConfig())
	if err != nil {
		logger.Warn("Failed to create provider for query rewrite", zap.Error(err))
		return query
	}

	return github.RewriteQuery(c.Context(), provider, cfg.DefaultModel, query)
}

func (h *RepoHandler) ToggleFavorite(c *fiber.Ctx) error {
	var repo models.Repo
	if err := c.BodyParser(&repo); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if repo.URL == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "url is required",
		})
	}

	favorited, err := h.db.ToggleFavorite(repo)
	if err != nil {
		logger.Error("Failed to toggle favorite", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to toggle favorite",
		})
	}

	return c.JSON(fiber.Map{"favorited": favorited})
}

func (h *RepoHandler) ListFavorites(c *fiber.Ctx) error {
	repos, err := h.db.GetFavorites()
	if err != nil {
		logger.Error("Failed to list favorites", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list favorites",
		})
	}
	return c.JSON(fiber.Map{"repos": repos})
}

func (h *RepoHandler) IsFavorite(c *fiber.Ctx) error {
	url := c.Query("url")
	if url == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "url is required",
		})
	}

	favorited, err := h.db.IsFavorite(url)
	if err != nil {
		logger.Error("Failed to check favorite", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to check favorite",
		})
	}
	return c.JSON(fiber.Map{"favorited": favorited})
}
