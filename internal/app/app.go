package app

import (
	"context"
	"fmt"

	"github.com/kart-io/logger"

	"github.com/netrag/netrag/internal/rag/analyzer"
	"github.com/netrag/netrag/internal/rag/datasource"
	"github.com/netrag/netrag/internal/rag/docstore"
	"github.com/netrag/netrag/internal/rag/orchestrator"
	"github.com/netrag/netrag/internal/rag/rules"
	"github.com/netrag/netrag/internal/rag/schema"
	"github.com/netrag/netrag/internal/rag/schemacontext"
	"github.com/netrag/netrag/internal/rag/store"
	milvuscomp "github.com/netrag/netrag/pkg/component/milvus"
	rediscomp "github.com/netrag/netrag/pkg/component/redis"
	"github.com/netrag/netrag/pkg/infra/pool"
	"github.com/netrag/netrag/pkg/llm"
	"github.com/netrag/netrag/pkg/llm/fallback"
	"github.com/netrag/netrag/pkg/llm/resilience"

	// Blank-imported so their init() functions register with the llm
	// provider registry; which one is actually used is picked at runtime
	// by the configured provider name.
	_ "github.com/netrag/netrag/pkg/llm/deepseek"
	_ "github.com/netrag/netrag/pkg/llm/gemini"
	_ "github.com/netrag/netrag/pkg/llm/huggingface"
	_ "github.com/netrag/netrag/pkg/llm/ollama"
	_ "github.com/netrag/netrag/pkg/llm/openai"
	_ "github.com/netrag/netrag/pkg/llm/siliconflow"
)

// App wires every query-orchestration component together from Options and
// exposes the single Query entry point, mirroring the way the teacher's
// biz.RAGService composed indexer/retriever/generator behind one façade.
type App struct {
	orchestrator *orchestrator.Orchestrator
	pool         *pool.Pool
	redis        *rediscomp.Client
	milvus       *milvuscomp.Client
}

// New builds an App from fully-completed Options. Any component that
// cannot reach a live backend degrades to an in-process equivalent rather
// than failing construction, so the application always starts.
func New(ctx context.Context, opts *Options) (*App, error) {
	app := &App{}

	vectorStore, err := app.buildVectorStore(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("build vector store: %w", err)
	}

	embedder := app.buildEmbedder(opts)

	docs, err := docstore.New(vectorStore, embedder)
	if err != nil {
		return nil, fmt.Errorf("build document store: %w", err)
	}

	chat := app.buildChatProvider(opts)

	ruleEngine := rules.NewEngine(rules.NewCatalog(), vectorStore, embedder)
	if err := ruleEngine.Index(ctx); err != nil {
		logger.Warnw("rule engine indexing failed, falling back to direct kind matching", "error", err.Error())
	}

	source := datasource.NewMock()
	schemaCatalog := schema.NewCatalog()

	llmPool, err := pool.NewPool("llm-calls", pool.DefaultPool, &pool.Config{
		Capacity:       opts.Query.LLMPoolSize,
		ExpiryDuration: pool.DefaultPoolConfig().ExpiryDuration,
		Nonblocking:    false,
	})
	if err != nil {
		return nil, fmt.Errorf("build llm call pool: %w", err)
	}
	app.pool = llmPool

	cache, err := app.buildQueryCache(ctx, opts)
	if err != nil {
		logger.Warnw("query cache unavailable, running uncached", "error", err.Error())
	}

	orch := orchestrator.New(orchestrator.Config{
		Analyzer:       analyzer.New(docs),
		ContextBuilder: schemacontext.New(schemaCatalog, source),
		RuleEngine:     ruleEngine,
		Source:         source,
		Chat:           chat,
		Cache:          cache,
		LLMPool:        llmPool,
	})
	app.orchestrator = orch

	return app, nil
}

func (a *App) buildVectorStore(ctx context.Context, opts *Options) (store.VectorStore, error) {
	if !opts.Query.UseMilvus {
		return store.NewMemoryStore(), nil
	}

	client, err := milvuscomp.New(opts.Milvus)
	if err != nil {
		logger.Warnw("milvus unavailable, falling back to in-memory vector store", "error", err.Error())
		return store.NewMemoryStore(), nil
	}
	a.milvus = client

	milvusStore, err := store.NewMilvusStore(ctx, client, opts.Query.Collection, opts.Query.EmbeddingDimension)
	if err != nil {
		logger.Warnw("milvus collection setup failed, falling back to in-memory vector store", "error", err.Error())
		return store.NewMemoryStore(), nil
	}
	return milvusStore, nil
}

func (a *App) buildEmbedder(opts *Options) llm.EmbeddingProvider {
	if opts.Query.ForceFallbackEmbedder {
		return fallback.New(opts.Query.EmbeddingDimension, nil)
	}

	provider, err := llm.NewEmbeddingProvider(opts.Embedding.Provider, opts.Embedding.ToConfigMap())
	if err != nil {
		logger.Warnw("embedding provider unavailable, falling back to hash-derived embedder", "provider", opts.Embedding.Provider, "error", err.Error())
		return fallback.New(opts.Query.EmbeddingDimension, nil)
	}

	// Wrap the real provider so a transient failure after startup degrades
	// through retry/circuit-breaking instead of propagating to every caller.
	return resilience.NewResilientEmbeddingProvider(provider, nil, nil)
}

func (a *App) buildChatProvider(opts *Options) llm.ChatProvider {
	provider, err := llm.NewChatProvider(opts.Chat.Provider, opts.Chat.ToConfigMap())
	if err != nil {
		logger.Warnw("chat provider unavailable, orchestrator will answer from structured data only", "provider", opts.Chat.Provider, "error", err.Error())
		return nil
	}
	return provider
}

func (a *App) buildQueryCache(ctx context.Context, opts *Options) (*orchestrator.QueryCache, error) {
	if !opts.Cache.Enabled {
		return nil, nil
	}

	client, err := rediscomp.NewWithContext(ctx, opts.Cache.Redis)
	if err != nil {
		return nil, err
	}
	a.redis = client

	return orchestrator.NewQueryCache(client.Client(), &orchestrator.QueryCacheConfig{
		Enabled:   true,
		TTL:       opts.Cache.TTL,
		KeyPrefix: opts.Cache.KeyPrefix,
	}), nil
}

// Query runs a single query through the orchestrator.
func (a *App) Query(ctx context.Context, query string, flags orchestrator.Flags) (*orchestrator.Response, error) {
	return a.orchestrator.Execute(ctx, query, flags)
}

// Close releases every backend connection the App opened.
func (a *App) Close() {
	if a.pool != nil {
		a.pool.Release()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.milvus != nil {
		_ = a.milvus.Close(context.Background())
	}
}
