package insight

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/gitscout/backend/internal/llm"
	"github.com/gitscout/backend/internal/metrics"
	"github.com/gitscout/backend/internal/settings"
	"github.com/gitscout/backend/internal/storage/models"
	"github.com/gitscout/backend/pkg/logger"
)

// SummarizeRequest carries one insight request. Exactly one of ConfigID
// (managed mode) or APIKey (direct mode) must be set.
type SummarizeRequest struct {
	Repo         models.Repo `json:"repo"`
	ConfigID     string      `json:"config_id,omitempty"`
	APIKey       string      `json:"api_key,omitempty"`
	DeepContext  bool        `json:"deep_context,omitempty"`
	ForceRefresh bool        `json:"force_refresh,omitempty"`
}

// Service orchestrates insight generation: cache lookup, context
// composition, provider resolution, stream relay and cache write-back.
type Service struct {
	cache           *Cache
	fetcher         Fetcher
	settings        *settings.Service
	modelCacheHours int

	// newProvider is swappable so tests can stub the gateway.
	newProvider func(llm.ProviderConfig) (llm.Provider, error)
}

func NewService(cache *Cache, fetcher Fetcher, settingsSvc *settings.Service, modelCacheHours int) *Service {
	return &Service{
		cache:           cache,
		fetcher:         fetcher,
		settings:        settingsSvc,
		modelCacheHours: modelCacheHours,
		newProvider:     llm.CreateProvider,
	}
}

// Summarize runs the full pipeline and delivers chunks to events. The
// channel is closed before returning; the final chunk on any path that got
// past validation is Done.
func (s *Service) Summarize(ctx context.Context, req SummarizeRequest, events chan<- llm.StreamChunk) error {
	defer close(events)

	repoName := req.Repo.Author + "/" + req.Repo.Name

	if !req.ForceRefresh {
		if cached, ok := s.cache.Get(req.Repo); ok {
			metrics.InsightCacheHits.Inc()
			s.emit(ctx, events, llm.TokenChunk(cached))
			s.emit(ctx, events, llm.DoneChunk())
			return nil
		}
	}
	metrics.InsightCacheMisses.Inc()

	// Resolve the credential before composing context so a bad request
	// fails before any network call.
	cfg, managed, err := s.resolveConfig(req)
	if err != nil {
		s.emit(ctx, events, llm.ErrorChunk(err.Error()))
		return err
	}

	messages := composeMessages(ctx, s.fetcher, req.Repo, req.DeepContext)

	provider, err := s.newProvider(cfg)
	if err != nil {
		s.emit(ctx, events, llm.ErrorChunk(err.Error()))
		return err
	}

	resp, err := provider.ChatCompletion(ctx, messages, cfg.DefaultModel, true)
	if err != nil {
		metrics.ProviderErrors.WithLabelValues(cfg.Vendor, string(llm.KindOf(err))).Inc()
		s.emit(ctx, events, llm.ErrorChunk(err.Error()))
		return err
	}

	// Some providers may answer a streaming request with a buffered
	// completion; treat it as a single token.
	if resp.Stream == nil {
		if managed {
			s.writeCache(req.Repo, resp.Content)
		}
		if resp.Usage != nil {
			metrics.TokensUsed.WithLabelValues(cfg.Vendor).Add(float64(resp.Usage.TotalTokens))
		}
		metrics.InsightsGenerated.WithLabelValues(cfg.Vendor).Inc()
		s.emit(ctx, events, llm.TokenChunk(resp.Content))
		s.emit(ctx, events, llm.DoneChunk())
		return nil
	}

	var insight strings.Builder
	for chunk := range resp.Stream {
		switch chunk.Type {
		case llm.ChunkToken:
			insight.WriteString(chunk.Content)
			s.emit(ctx, events, chunk)
		case llm.ChunkError:
			metrics.ProviderErrors.WithLabelValues(cfg.Vendor, "stream").Inc()
			s.emit(ctx, events, chunk)
			logger.Warn("Stream failed mid-generation",
				zap.String("repo", repoName),
				zap.String("error", chunk.Content),
			)
			return llm.NewError(llm.ErrKindUnknown, chunk.Content)
		case llm.ChunkDone:
			// Commit before signaling completion so a consumer that
			// reacts to Done always observes the cached entry.
			if managed && insight.Len() > 0 {
				s.writeCache(req.Repo, insight.String())
			}
			metrics.InsightsGenerated.WithLabelValues(cfg.Vendor).Inc()
			s.emit(ctx, events, chunk)
			return nil
		}
	}

	// Producer closed without Done; only context cancellation does this.
	return ctx.Err()
}

// resolveConfig picks managed or direct mode. Direct mode synthesizes a
// single-use OpenAI configuration and never writes the insight cache.
func (s *Service) resolveConfig(req SummarizeRequest) (llm.ProviderConfig, bool, error) {
	if req.ConfigID != "" {
		cfg, found, err := s.settings.GetConfig(req.ConfigID)
		if err != nil {
			return llm.ProviderConfig{}, false, err
		}
		if !found {
			return llm.ProviderConfig{}, false, llm.NewError(llm.ErrKindConfig, "model configuration not found: "+req.ConfigID)
		}
		return cfg.ProviderConfig(), true, nil
	}

	if req.APIKey != "" {
		return settings.DefaultOpenAIConfig(req.APIKey).ProviderConfig(), false, nil
	}

	return llm.ProviderConfig{}, false, llm.NewError(llm.ErrKindConfig, "either a model configuration id or an API key is required")
}

// writeCache logs failures and moves on; a failed cache write must not fail
// an already successful generation.
func (s *Service) writeCache(repo models.Repo, content string) {
	if err := s.cache.Put(repo, content); err != nil {
		logger.Warn("Failed to cache insight",
			zap.String("repo", repo.Author+"/"+repo.Name),
			zap.Error(err),
		)
	}
}

func (s *Service) emit(ctx context.Context, events chan<- llm.StreamChunk, chunk llm.StreamChunk) {
	select {
	case events <- chunk:
	case <-ctx.Done():
	}
}

// GetCached returns the cached insight for a repo, if any.
func (s *Service) GetCached(repo models.Repo) (string, bool) {
	return s.cache.Get(repo)
}

// CheckBatch returns the URLs of the repos that already have a cached
// insight on disk.
func (s *Service) CheckBatch(repos []models.Repo) []string {
	urls := make([]string, 0, len(repos))
	for _, repo := range repos {
		if s.cache.Has(repo) {
			urls = append(urls, repo.URL)
		}
	}
	return urls
}

// ListModels lists the models reachable with a configuration, served from
// the settings-backed model-list cache when it is still fresh.
func (s *Service) ListModels(ctx context.Context, configID string) ([]llm.ModelInfo, error) {
	cfg, found, err := s.settings.GetConfig(configID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, llm.NewError(llm.ErrKindConfig, "model configuration not found: "+configID)
	}

	if cached, ok, err := s.settings.GetCachedModels(cfg.Vendor); err == nil && ok {
		return cached, nil
	} else if err != nil {
		logger.Warn("Failed to read model cache", zap.Error(err))
	}

	provider, err := s.newProvider(cfg.ProviderConfig())
	if err != nil {
		return nil, err
	}

	modelList, err := provider.ListModels(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.settings.SetCachedModels(cfg.Vendor, modelList, s.modelCacheHours); err != nil {
		logger.Warn("Failed to write model cache", zap.Error(err))
	}

	return modelList, nil
}

// TestConnection verifies a stored configuration's endpoint and credential.
func (s *Service) TestConnection(ctx context.Context, configID string) error {
	cfg, found, err := s.settings.GetConfig(configID)
	if err != nil {
		return err
	}
	if !found {
		return llm.NewError(llm.ErrKindConfig, "model configuration not found: "+configID)
	}

	provider, err := s.newProvider(cfg.ProviderConfig())
	if err != nil {
		return err
	}
	return provider.TestConnection(ctx)
}
