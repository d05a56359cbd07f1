package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/gitscout/backend/internal/insight"
	"github.com/gitscout/backend/internal/storage/models"
	"github.com/gitscout/backend/pkg/logger"
)

// InsightHandler serves the insight cache over plain HTTP: single lookups and
// batch existence checks. Generation happens on the websocket route.
type InsightHandler struct {
	insights *insight.Service
}

func NewInsightHandler(insights *insight.Service) *InsightHandler {
	return &InsightHandler{insights: insights}
}

func (h *InsightHandler) GetCached(c *fiber.Ctx) error {
	author := c.Params("author")
	name := c.Params("name")
	if author == "" || name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "author and name are required",
		})
	}

	content, ok := h.insights.GetCached(models.Repo{Author: author, Name: name})
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "no cached insight",
		})
	}

	return c.JSON(fiber.Map{
		"author":  author,
		"name":    name,
		"insight": content,
	})
}

// CheckBatch reports which of the submitted repos already have an insight on
// disk, identified by URL.
func (h *InsightHandler) CheckBatch(c *fiber.Ctx) error {
	var req struct {
		Repos []models.Repo `json:"repos"`
	}

	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	return c.JSON(fiber.Map{
		"cached_urls": h.insights.CheckBatch(req.Repos),
	})
}
