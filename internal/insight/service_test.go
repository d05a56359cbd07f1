package insight

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitscout/backend/internal/llm"
	"github.com/gitscout/backend/internal/settings"
	"github.com/gitscout/backend/internal/storage/models"
)

type memStore struct {
	data map[string]string
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string]string)}
}

func (m *memStore) GetKV(key string) (string, bool, error) {
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memStore) SetKV(key, value string) error {
	m.data[key] = value
	return nil
}

func (m *memStore) HasKV(key string) (bool, error) {
	_, ok := m.data[key]
	return ok, nil
}

// stubProvider replays a scripted chunk sequence.
type stubProvider struct {
	chunks    []llm.StreamChunk
	models    []llm.ModelInfo
	callCount int
}

func (p *stubProvider) ChatCompletion(ctx context.Context, _ []llm.ChatMessage, _ string, stream bool) (*llm.Response, error) {
	p.callCount++
	ch := make(chan llm.StreamChunk, len(p.chunks))
	for _, c := range p.chunks {
		ch <- c
	}
	close(ch)
	return &llm.Response{Stream: ch}, nil
}

func (p *stubProvider) ListModels(ctx context.Context) ([]llm.ModelInfo, error) {
	p.callCount++
	return p.models, nil
}

func (p *stubProvider) TestConnection(ctx context.Context) error {
	return nil
}

type fixture struct {
	svc      *Service
	settings *settings.Service
	provider *stubProvider
	cache    *Cache
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	settingsSvc, err := settings.NewService(newMemStore())
	require.NoError(t, err)

	provider := &stubProvider{}
	cache := NewCache(t.TempDir())
	svc := NewService(cache, newStubFetcher(), settingsSvc, 24)
	svc.newProvider = func(llm.ProviderConfig) (llm.Provider, error) {
		return provider, nil
	}

	return &fixture{svc: svc, settings: settingsSvc, provider: provider, cache: cache}
}

func (f *fixture) addConfig(t *testing.T) settings.ModelConfig {
	t.Helper()
	cfg := settings.NewModelConfig("test", llm.VendorOpenAI, "", "sk-test", "gpt-4o-mini")
	require.NoError(t, f.settings.AddConfig(cfg))
	return cfg
}

func runSummarize(t *testing.T, svc *Service, req SummarizeRequest) ([]llm.StreamChunk, error) {
	t.Helper()
	events := make(chan llm.StreamChunk, 16)
	errs := make(chan error, 1)
	go func() {
		errs <- svc.Summarize(context.Background(), req, events)
	}()

	var chunks []llm.StreamChunk
	for chunk := range events {
		chunks = append(chunks, chunk)
	}
	return chunks, <-errs
}

func TestSummarizeCacheHit(t *testing.T) {
	f := newFixture(t)
	cfg := f.addConfig(t)
	repo := models.Repo{Author: "golang", Name: "go"}
	require.NoError(t, f.cache.Put(repo, "previously generated insight"))

	chunks, err := runSummarize(t, f.svc, SummarizeRequest{Repo: repo, ConfigID: cfg.ID})
	require.NoError(t, err)

	require.Len(t, chunks, 2)
	assert.Equal(t, llm.TokenChunk("previously generated insight"), chunks[0])
	assert.Equal(t, llm.ChunkDone, chunks[1].Type)
	// The provider is never touched on a hit.
	assert.Zero(t, f.provider.callCount)
}

func TestSummarizeManagedStreamCachesResult(t *testing.T) {
	f := newFixture(t)
	cfg := f.addConfig(t)
	f.provider.chunks = []llm.StreamChunk{
		llm.TokenChunk("A language "),
		llm.TokenChunk("for servers."),
		llm.DoneChunk(),
	}
	repo := models.Repo{Author: "golang", Name: "go"}

	chunks, err := runSummarize(t, f.svc, SummarizeRequest{Repo: repo, ConfigID: cfg.ID})
	require.NoError(t, err)

	require.Len(t, chunks, 3)
	assert.Equal(t, llm.ChunkDone, chunks[2].Type)

	cached, ok := f.cache.Get(repo)
	require.True(t, ok)
	assert.Equal(t, "A language for servers.", cached)
}

func TestSummarizeDirectModeNeverCaches(t *testing.T) {
	f := newFixture(t)
	f.provider.chunks = []llm.StreamChunk{
		llm.TokenChunk("ephemeral insight text"),
		llm.DoneChunk(),
	}
	repo := models.Repo{Author: "golang", Name: "go"}

	chunks, err := runSummarize(t, f.svc, SummarizeRequest{Repo: repo, APIKey: "sk-direct"})
	require.NoError(t, err)
	assert.Equal(t, llm.ChunkDone, chunks[len(chunks)-1].Type)

	_, ok := f.cache.Get(repo)
	assert.False(t, ok)
}

func TestSummarizeRequiresCredential(t *testing.T) {
	f := newFixture(t)
	repo := models.Repo{Author: "golang", Name: "go"}

	chunks, err := runSummarize(t, f.svc, SummarizeRequest{Repo: repo})
	require.Error(t, err)
	assert.Equal(t, llm.ErrKindConfig, llm.KindOf(err))
	require.Len(t, chunks, 1)
	assert.Equal(t, llm.ChunkError, chunks[0].Type)
	// Validation fails before any provider traffic.
	assert.Zero(t, f.provider.callCount)
}

func TestSummarizeUnknownConfigID(t *testing.T) {
	f := newFixture(t)
	repo := models.Repo{Author: "golang", Name: "go"}

	_, err := runSummarize(t, f.svc, SummarizeRequest{Repo: repo, ConfigID: "missing"})
	require.Error(t, err)
	assert.Equal(t, llm.ErrKindConfig, llm.KindOf(err))
	assert.Zero(t, f.provider.callCount)
}

func TestSummarizeForceRefreshBypassesCache(t *testing.T) {
	f := newFixture(t)
	cfg := f.addConfig(t)
	repo := models.Repo{Author: "golang", Name: "go"}
	require.NoError(t, f.cache.Put(repo, "stale cached insight"))

	f.provider.chunks = []llm.StreamChunk{
		llm.TokenChunk("fresh insight content"),
		llm.DoneChunk(),
	}

	chunks, err := runSummarize(t, f.svc, SummarizeRequest{Repo: repo, ConfigID: cfg.ID, ForceRefresh: true})
	require.NoError(t, err)
	assert.Equal(t, 1, f.provider.callCount)
	assert.Equal(t, llm.TokenChunk("fresh insight content"), chunks[0])

	cached, ok := f.cache.Get(repo)
	require.True(t, ok)
	assert.Equal(t, "fresh insight content", cached)
}

func TestSummarizeStreamErrorLeavesCacheUntouched(t *testing.T) {
	f := newFixture(t)
	cfg := f.addConfig(t)
	f.provider.chunks = []llm.StreamChunk{
		llm.TokenChunk("partial text before the failure"),
		llm.ErrorChunk("network_error: connection reset"),
		llm.DoneChunk(),
	}
	repo := models.Repo{Author: "golang", Name: "go"}

	chunks, err := runSummarize(t, f.svc, SummarizeRequest{Repo: repo, ConfigID: cfg.ID})
	require.Error(t, err)

	require.GreaterOrEqual(t, len(chunks), 2)
	assert.Equal(t, llm.ChunkError, chunks[1].Type)

	_, ok := f.cache.Get(repo)
	assert.False(t, ok)
}

func TestCheckBatch(t *testing.T) {
	f := newFixture(t)
	cached := models.Repo{Author: "golang", Name: "go", URL: "https://github.com/golang/go"}
	missing := models.Repo{Author: "rust-lang", Name: "rust", URL: "https://github.com/rust-lang/rust"}
	require.NoError(t, f.cache.Put(cached, "an insight that exists"))

	urls := f.svc.CheckBatch([]models.Repo{cached, missing})
	assert.Equal(t, []string{"https://github.com/golang/go"}, urls)
}

func TestListModelsUsesSettingsCache(t *testing.T) {
	f := newFixture(t)
	cfg := f.addConfig(t)
	f.provider.models = []llm.ModelInfo{{ID: "gpt-4o-mini", Vendor: llm.VendorOpenAI}}

	first, err := f.svc.ListModels(context.Background(), cfg.ID)
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, 1, f.provider.callCount)

	// Second call is served from the cache.
	second, err := f.svc.ListModels(context.Background(), cfg.ID)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, f.provider.callCount)
}
