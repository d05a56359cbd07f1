package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/gitscout/backend/internal/insight"
	"github.com/gitscout/backend/internal/llm"
	"github.com/gitscout/backend/internal/settings"
	"github.com/gitscout/backend/pkg/logger"
)

// ConfigHandler exposes the model configuration store: CRUD, active
// selection, model listing and connectivity checks.
type ConfigHandler struct {
	settings *settings.Service
	insights *insight.Service
}

func NewConfigHandler(settingsSvc *settings.Service, insights *insight.Service) *ConfigHandler {
	return &ConfigHandler{settings: settingsSvc, insights: insights}
}

func (h *ConfigHandler) List(c *fiber.Ctx) error {
	configs, err := h.settings.GetAllConfigs()
	if err != nil {
		logger.Error("Failed to list configs", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load configurations",
		})
	}

	active, hasActive, err := h.settings.GetActiveConfig()
	if err != nil {
		logger.Error("Failed to read active config", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load configurations",
		})
	}

	resp := fiber.Map{"configs": redactAll(configs)}
	if hasActive {
		resp["active_config_id"] = active.ID
	}
	return c.JSON(resp)
}

// Create registers a new provider configuration. Omitted base URL and model
// fall back to the vendor defaults.
func (h *ConfigHandler) Create(c *fiber.Ctx) error {
	var req struct {
		Name         string `json:"name"`
		Vendor       string `json:"vendor"`
		BaseURL      string `json:"base_url"`
		APIKey       string `json:"api_key"`
		DefaultModel string `json:"default_model"`
	}

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.Vendor == "" || req.APIKey == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "vendor and api_key are required",
		})
	}

	if req.BaseURL == "" {
		req.BaseURL = llm.DefaultBaseURL(req.Vendor)
	}
	if req.DefaultModel == "" {
		req.DefaultModel = llm.DefaultModel(req.Vendor)
	}
	if req.Name == "" {
		req.Name = llm.DisplayName(req.Vendor)
	}

	cfg := settings.NewModelConfig(req.Name, req.Vendor, req.BaseURL, req.APIKey, req.DefaultModel)
	if err := h.settings.AddConfig(cfg); err != nil {
		logger.Error("Failed to add config", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to save configuration",
		})
	}

	logger.Info("Model configuration created",
		zap.String("config_id", cfg.ID),
		zap.String("vendor", cfg.Vendor),
	)

	return c.Status(fiber.StatusCreated).JSON(redact(cfg))
}

func (h *ConfigHandler) Update(c *fiber.Ctx) error {
	id := c.Params("id")

	var update settings.ModelConfigUpdate
	if err := c.BodyParser(&update); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	found, err := h.settings.UpdateConfig(id, update)
	if err != nil {
		logger.Error("Failed to update config", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update configuration",
		})
	}
	if !found {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Configuration not found",
		})
	}

	return c.JSON(fiber.Map{"updated": true})
}

func (h *ConfigHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")

	found, err := h.settings.DeleteConfig(id)
	if err != nil {
		logger.Error("Failed to delete config", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete configuration",
		})
	}
	if !found {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Configuration not found",
		})
	}

	return c.JSON(fiber.Map{"deleted": true})
}

func (h *ConfigHandler) SetActive(c *fiber.Ctx) error {
	id := c.Params("id")

	found, err := h.settings.SetActiveConfig(id)
	if err != nil {
		logger.Error("Failed to set active config", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update configuration",
		})
	}
	if !found {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Configuration not found",
		})
	}

	return c.JSON(fiber.Map{"active_config_id": id})
}

// ListModels lists the models reachable with a stored configuration, served
// from the model-list cache when fresh.
func (h *ConfigHandler) ListModels(c *fiber.Ctx) error {
	id := c.Params("id")

	modelList, err := h.insights.ListModels(c.Context(), id)
	if err != nil {
		return providerError(c, err)
	}

	return c.JSON(fiber.Map{"models": modelList})
}

func (h *ConfigHandler) TestConnection(c *fiber.Ctx) error {
	id := c.Params("id")

	if err := h.insights.TestConnection(c.Context(), id); err != nil {
		return providerError(c, err)
	}

	return c.JSON(fiber.Map{"ok": true})
}

func (h *ConfigHandler) ClearModelCache(c *fiber.Ctx) error {
	if err := h.settings.ClearModelCache(); err != nil {
		logger.Error("Failed to clear model cache", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to clear model cache",
		})
	}
	return c.JSON(fiber.Map{"cleared": true})
}

// Vendors lists the supported provider families with their defaults, for
// configuration forms.
func (h *ConfigHandler) Vendors(c *fiber.Ctx) error {
	vendors := llm.SupportedVendors()
	out := make([]fiber.Map, 0, len(vendors))
	for _, v := range vendors {
		out = append(out, fiber.Map{
			"vendor":        v,
			"display_name":  llm.DisplayName(v),
			"base_url":      llm.DefaultBaseURL(v),
			"default_model": llm.DefaultModel(v),
		})
	}
	return c.JSON(fiber.Map{"vendors": out})
}

// providerError maps the gateway error taxonomy onto HTTP statuses.
func providerError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch llm.KindOf(err) {
	case llm.ErrKindAuth:
		status = fiber.StatusUnauthorized
	case llm.ErrKindModel:
		status = fiber.StatusNotFound
	case llm.ErrKindQuota:
		status = fiber.StatusTooManyRequests
	case llm.ErrKindBadRequest, llm.ErrKindConfig:
		status = fiber.StatusBadRequest
	case llm.ErrKindNetwork:
		status = fiber.StatusBadGateway
	}

	return c.Status(status).JSON(fiber.Map{
		"error": err.Error(),
		"kind":  string(llm.KindOf(err)),
	})
}

// redact masks the stored API key for responses, keeping the tail so a user
// can tell keys apart.
func redact(cfg settings.ModelConfig) settings.ModelConfig {
	if len(cfg.APIKey) > 4 {
		cfg.APIKey = "****" + cfg.APIKey[len(cfg.APIKey)-4:]
	} else if cfg.APIKey != "" {
		cfg.APIKey = "****"
	}
	return cfg
}

func redactAll(configs []settings.ModelConfig) []settings.ModelConfig {
	out := make([]settings.ModelConfig, len(configs))
	for i, cfg := range configs {
		out[i] = redact(cfg)
	}
	return out
}
