package settings

import (
	"time"

	"github.com/google/uuid"

	"github.com/gitscout/backend/internal/llm"
)

// ModelConfig is one named provider configuration. The ID is generated once
// and never changes.
type ModelConfig struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Vendor       string    `json:"vendor"`
	BaseURL      string    `json:"base_url"`
	APIKey       string    `json:"api_key"`
	DefaultModel string    `json:"default_model"`
	Enabled      bool      `json:"enabled"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func NewModelConfig(name, vendor, baseURL, apiKey, defaultModel string) ModelConfig {
	now := time.Now().UTC()
	return ModelConfig{
		ID:           uuid.New().String(),
		Name:         name,
		Vendor:       vendor,
		BaseURL:      baseURL,
		APIKey:       apiKey,
		DefaultModel: defaultModel,
		Enabled:      true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// DefaultOpenAIConfig builds the configuration the legacy migration and the
// direct-credential path both synthesize.
func DefaultOpenAIConfig(apiKey string) ModelConfig {
	return NewModelConfig(
		"OpenAI (default)",
		llm.VendorOpenAI,
		llm.DefaultBaseURL(llm.VendorOpenAI),
		apiKey,
		llm.DefaultModel(llm.VendorOpenAI),
	)
}

// ProviderConfig converts to the gateway's credential shape.
func (c ModelConfig) ProviderConfig() llm.ProviderConfig {
	return llm.ProviderConfig{
		Vendor:       c.Vendor,
		BaseURL:      c.BaseURL,
		APIKey:       c.APIKey,
		DefaultModel: c.DefaultModel,
	}
}

// ModelConfigUpdate carries a partial update: nil fields keep their prior
// value, UpdatedAt is always refreshed.
type ModelConfigUpdate struct {
	Name         *string `json:"name"`
	Vendor       *string `json:"vendor"`
	BaseURL      *string `json:"base_url"`
	APIKey       *string `json:"api_key"`
	DefaultModel *string `json:"default_model"`
	Enabled      *bool   `json:"enabled"`
}

func (c *ModelConfig) apply(u ModelConfigUpdate) {
	if u.Name != nil {
		c.Name = *u.Name
	}
	if u.Vendor != nil {
		c.Vendor = *u.Vendor
	}
	if u.BaseURL != nil {
		c.BaseURL = *u.BaseURL
	}
	if u.APIKey != nil {
		c.APIKey = *u.APIKey
	}
	if u.DefaultModel != nil {
		c.DefaultModel = *u.DefaultModel
	}
	if u.Enabled != nil {
		c.Enabled = *u.Enabled
	}
	c.UpdatedAt = time.Now().UTC()
}

// AppSettings is the persisted configuration set: every named provider
// configuration, the active selection, and the per-vendor model-list cache
// with one whole-set expiry instant.
type AppSettings struct {
	ActiveConfigID string                     `json:"active_config_id,omitempty"`
	Configs        []ModelConfig              `json:"configs"`
	ModelCache     map[string][]llm.ModelInfo `json:"model_cache,omitempty"`
	CacheExpiresAt *time.Time                 `json:"cache_expires_at,omitempty"`
}

func (s *AppSettings) byID(id string) *ModelConfig {
	for i := range s.Configs {
		if s.Configs[i].ID == id {
			return &s.Configs[i]
		}
	}
	return nil
}

func (s *AppSettings) activeConfig() *ModelConfig {
	if s.ActiveConfigID == "" {
		return nil
	}
	return s.byID(s.ActiveConfigID)
}

func (s *AppSettings) add(cfg ModelConfig) {
	s.Configs = append(s.Configs, cfg)
}

func (s *AppSettings) update(id string, u ModelConfigUpdate) bool {
	cfg := s.byID(id)
	if cfg == nil {
		return false
	}
	cfg.apply(u)
	return true
}

// remove deletes by id; deleting the active configuration clears the
// active selection.
func (s *AppSettings) remove(id string) bool {
	for i := range s.Configs {
		if s.Configs[i].ID == id {
			s.Configs = append(s.Configs[:i], s.Configs[i+1:]...)
			if s.ActiveConfigID == id {
				s.ActiveConfigID = ""
			}
			return true
		}
	}
	return false
}

func (s *AppSettings) setActive(id string) bool {
	if s.byID(id) == nil {
		return false
	}
	s.ActiveConfigID = id
	return true
}

func (s *AppSettings) enabledConfigs() []ModelConfig {
	var out []ModelConfig
	for _, c := range s.Configs {
		if c.Enabled {
			out = append(out, c)
		}
	}
	return out
}

// cacheExpired reports whether the model-list cache is stale. Expiry is
// whole-set: once the instant passes, every vendor's cached list is treated
// as absent.
func (s *AppSettings) cacheExpired(now time.Time) bool {
	if s.CacheExpiresAt == nil {
		return true
	}
	return !now.Before(*s.CacheExpiresAt)
}
