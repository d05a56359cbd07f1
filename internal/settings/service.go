package settings

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/gitscout/backend/internal/llm"
	"github.com/gitscout/backend/pkg/logger"
)

// Storage keys. legacyAPIKeyKey is the pre-multi-config format: a bare
// OpenAI key under its own key. Presence of settingsKey means the one-time
// migration already ran.
const (
	settingsKey     = "app_settings"
	legacyAPIKeyKey = "openai_api_key"
)

// KVStore is the opaque persistence backend. The sqlite client satisfies it.
type KVStore interface {
	GetKV(key string) (string, bool, error)
	SetKV(key, value string) error
	HasKV(key string) (bool, error)
}

// Service is the configuration store facade. Every mutation is a
// load-modify-save of the whole settings document; the mutex serializes
// those sequences across callers sharing this instance.
type Service struct {
	mu    sync.Mutex
	store KVStore
}

func NewService(store KVStore) (*Service, error) {
	s := &Service{store: store}
	if err := s.migrateLegacyKey(); err != nil {
		return nil, err
	}
	return s, nil
}

// migrateLegacyKey upgrades a single stored API key into a default OpenAI
// configuration. It runs at most once: the new-format key's existence is the
// marker, so re-running is a no-op.
func (s *Service) migrateLegacyKey() error {
	hasNew, err := s.store.HasKV(settingsKey)
	if err != nil {
		return fmt.Errorf("failed to probe settings: %w", err)
	}
	if hasNew {
		return nil
	}

	legacy, hasLegacy, err := s.store.GetKV(legacyAPIKeyKey)
	if err != nil {
		return fmt.Errorf("failed to probe legacy key: %w", err)
	}
	if !hasLegacy || legacy == "" {
		return nil
	}

	cfg := DefaultOpenAIConfig(legacy)
	migrated := AppSettings{
		ActiveConfigID: cfg.ID,
		Configs:        []ModelConfig{cfg},
	}
	if err := s.save(&migrated); err != nil {
		return fmt.Errorf("failed to persist migrated settings: %w", err)
	}

	logger.Info("Migrated legacy API key to model configuration",
		zap.String("config_id", cfg.ID),
	)
	return nil
}

func (s *Service) load() (*AppSettings, error) {
	raw, ok, err := s.store.GetKV(settingsKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	if !ok {
		return &AppSettings{}, nil
	}

	var settings AppSettings
	if err := json.Unmarshal([]byte(raw), &settings); err != nil {
		return nil, fmt.Errorf("failed to decode settings: %w", err)
	}
	return &settings, nil
}

func (s *Service) save(settings *AppSettings) error {
	raw, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	if err := s.store.SetKV(settingsKey, string(raw)); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

func (s *Service) GetAllConfigs() ([]ModelConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings, err := s.load()
	if err != nil {
		return nil, err
	}
	return settings.Configs, nil
}

func (s *Service) GetEnabledConfigs() ([]ModelConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings, err := s.load()
	if err != nil {
		return nil, err
	}
	return settings.enabledConfigs(), nil
}

// GetConfig looks a configuration up by id; found=false is not an error.
func (s *Service) GetConfig(id string) (ModelConfig, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings, err := s.load()
	if err != nil {
		return ModelConfig{}, false, err
	}
	cfg := settings.byID(id)
	if cfg == nil {
		return ModelConfig{}, false, nil
	}
	return *cfg, true, nil
}

func (s *Service) GetActiveConfig() (ModelConfig, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings, err := s.load()
	if err != nil {
		return ModelConfig{}, false, err
	}
	cfg := settings.activeConfig()
	if cfg == nil {
		return ModelConfig{}, false, nil
	}
	return *cfg, true, nil
}

func (s *Service) AddConfig(cfg ModelConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings, err := s.load()
	if err != nil {
		return err
	}
	settings.add(cfg)
	return s.save(settings)
}

func (s *Service) UpdateConfig(id string, update ModelConfigUpdate) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings, err := s.load()
	if err != nil {
		return false, err
	}
	if !settings.update(id, update) {
		return false, nil
	}
	return true, s.save(settings)
}

func (s *Service) DeleteConfig(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings, err := s.load()
	if err != nil {
		return false, err
	}
	if !settings.remove(id) {
		return false, nil
	}
	return true, s.save(settings)
}

func (s *Service) SetActiveConfig(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings, err := s.load()
	if err != nil {
		return false, err
	}
	if !settings.setActive(id) {
		return false, nil
	}
	return true, s.save(settings)
}

// GetCachedModels returns the cached model list for a vendor, or ok=false
// when the whole-set cache has expired or the vendor was never cached.
func (s *Service) GetCachedModels(vendor string) ([]llm.ModelInfo, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings, err := s.load()
	if err != nil {
		return nil, false, err
	}
	if settings.cacheExpired(time.Now().UTC()) {
		return nil, false, nil
	}
	models, ok := settings.ModelCache[vendor]
	return models, ok, nil
}

// SetCachedModels stores a vendor's model list and pushes the whole-set
// expiry cacheHours into the future.
func (s *Service) SetCachedModels(vendor string, models []llm.ModelInfo, cacheHours int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings, err := s.load()
	if err != nil {
		return err
	}
	if settings.ModelCache == nil {
		settings.ModelCache = make(map[string][]llm.ModelInfo)
	}
	settings.ModelCache[vendor] = models
	expires := time.Now().UTC().Add(time.Duration(cacheHours) * time.Hour)
	settings.CacheExpiresAt = &expires
	return s.save(settings)
}

func (s *Service) ClearModelCache() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings, err := s.load()
	if err != nil {
		return err
	}
	settings.ModelCache = nil
	settings.CacheExpiresAt = nil
	return s.save(settings)
}
