package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/shoplens/shoplens-cli/internal/cache"
	"github.com/shoplens/shoplens-cli/internal/enrich"
	"github.com/shoplens/shoplens-cli/internal/insight"
	"github.com/shoplens/shoplens-cli/internal/match"
	"github.com/shoplens/shoplens-cli/internal/pricing"
	"github.com/shoplens/shoplens-cli/internal/scrape"
	"github.com/shoplens/shoplens-cli/internal/workflow"
	anthropicpkg "github.com/shoplens/shoplens-cli/pkg/anthropic"
	"github.com/shoplens/shoplens-cli/pkg/jina"
	"github.com/shoplens/shoplens-cli/pkg/serper"
)

// env bundles the wired application components for a command invocation.
type env struct {
	Cache        cache.Cache
	Orchestrator *workflow.Orchestrator
}

func (e *env) Close() {
	if err := e.Cache.Close(); err != nil {
		zap.L().Warn("cache close failed", zap.Error(err))
	}
}

// initCache opens the configured cache backend and runs migrations.
func initCache(ctx context.Context) (cache.Cache, error) {
	var (
		c   cache.Cache
		err error
	)
	switch cfg.Cache.Driver {
	case "postgres":
		c, err = cache.NewPostgres(ctx, cfg.Cache.DatabaseURL, &cfg.Cache.Pool)
	case "sqlite":
		c, err = cache.NewSQLite(cfg.Cache.Path)
	default:
		return nil, eris.Errorf("unknown cache driver %q", cfg.Cache.Driver)
	}
	if err != nil {
		return nil, eris.Wrap(err, "init cache")
	}

	if err := c.Migrate(ctx); err != nil {
		c.Close()
		return nil, eris.Wrap(err, "migrate cache")
	}
	return c, nil
}

// initEnv wires the full enrichment stack from configuration.
func initEnv(ctx context.Context) (*env, error) {
	store, err := initCache(ctx)
	if err != nil {
		return nil, err
	}

	llmClient := anthropicpkg.NewClient(cfg.Anthropic.Key)
	enrichLLM := anthropicpkg.NewCompleter(llmClient,
		anthropicpkg.WithModel(cfg.Anthropic.Model),
		anthropicpkg.WithMaxTokens(cfg.Anthropic.MaxTokens),
		anthropicpkg.WithTemperature(cfg.Anthropic.Temperature),
	)
	analysisLLM := anthropicpkg.NewCompleter(llmClient,
		anthropicpkg.WithModel(cfg.Anthropic.AnalysisModel),
		anthropicpkg.WithMaxTokens(cfg.Anthropic.MaxTokens),
		anthropicpkg.WithTemperature(cfg.Anthropic.Temperature),
	)

	jinaClient := jina.NewClient(cfg.Jina.Key, jina.WithBaseURL(cfg.Jina.BaseURL))
	serperClient := serper.NewClient(cfg.Serper.Key,
		serper.WithBaseURL(cfg.Serper.BaseURL),
		serper.WithDefaultLocation(cfg.Serper.Country),
		serper.WithRateLimit(cfg.Serper.RequestsPerSec, 1),
	)

	matcher, err := initMatcher()
	if err != nil {
		store.Close()
		return nil, err
	}

	extractor := scrape.NewExtractor(jinaClient, enrichLLM)
	factory := scrape.NewFactory(
		scrape.NewAmazon(extractor),
		scrape.NewFlipkart(extractor),
	)

	aggregator := pricing.NewAggregator(matcher, cfg.Match.Threshold)
	synthesizer := insight.NewSynthesizer(enrichLLM)
	coordinator := enrich.NewCoordinator(serperClient, aggregator, synthesizer)

	orch := workflow.New(factory, store, coordinator, analysisLLM, workflow.Options{
		CacheTTL:         time.Duration(cfg.Cache.TTLHours) * time.Hour,
		DisablePrices:    cfg.Enrich.DisablePrices,
		DisableWebSearch: cfg.Enrich.DisableWebSearch,
	})

	return &env{Cache: store, Orchestrator: orch}, nil
}

func initMatcher() (*match.Matcher, error) {
	if cfg.Match.VocabPath == "" {
		return match.NewDefault(), nil
	}
	vocab, err := match.LoadVocab(cfg.Match.VocabPath)
	if err != nil {
		return nil, eris.Wrap(err, "load match vocab")
	}
	return match.New(vocab), nil
}
