package pipeline

import (
	"context"
	"fmt"

	"github.com/wikiprov/wikiprov/internal/cache"
	"github.com/wikiprov/wikiprov/internal/index"
	"github.com/wikiprov/wikiprov/internal/judge"
	"github.com/wikiprov/wikiprov/internal/llm"
	"github.com/wikiprov/wikiprov/internal/model"
	"github.com/wikiprov/wikiprov/internal/retrieve"
	"github.com/wikiprov/wikiprov/internal/util"
	"github.com/wikiprov/wikiprov/internal/verify"
	"github.com/wikiprov/wikiprov/internal/wiki"
)

// Pipeline assembles the full provenance check: Wikipedia source, cache,
// embedding index, retriever and judge, orchestrated by the verifier.
// One pipeline can validate many texts; per-topic indexes are built once
// and shared.
type Pipeline struct {
	cfg      *model.Config
	verifier *verify.Verifier
}

// New builds a pipeline from configuration
func New(cfg *model.Config) (*Pipeline, error) {
	judgeProvider, embedProvider, err := llm.NewProviders(cfg.LLM, cfg.Judge.Model)
	if err != nil {
		return nil, err
	}

	retriever, err := retrieve.New(cfg.Retrieval)
	if err != nil {
		return nil, err
	}

	store := cache.ForConfig(cfg.Cache.Enabled, cfg.Cache.Dir, cfg.Cache.MemoryTTL, cfg.Cache.DiskTTL)
	robots := util.NewRobotsChecker(cfg.HTTP.UserAgent, cfg.HTTP.Timeout)
	source := wiki.NewClient(cfg.HTTP, wiki.WithCache(store), wiki.WithRobots(robots))

	builder := index.NewBuilder(source, embedProvider, cfg.Chunking, store)
	j := judge.New(judgeProvider, cfg.Judge, cfg.LLM.MaxTokens)

	return &Pipeline{
		cfg:      cfg,
		verifier: verify.New(builder, retriever, j, cfg.Concurrency.JudgeWorkers, cfg.Judge.StrictParse),
	}, nil
}

// Validate checks one candidate text against the topic's article. An
// empty topic or granularity falls back to the configured one.
func (p *Pipeline) Validate(ctx context.Context, topic, text string, granularity model.Granularity) (*model.Outcome, error) {
	if topic == "" {
		topic = p.cfg.Topic
	}
	if topic == "" {
		return nil, fmt.Errorf("%w: topic is required", model.ErrInvalidConfiguration)
	}
	if granularity == "" {
		granularity = p.cfg.Granularity
	}
	return p.verifier.Validate(ctx, topic, text, granularity)
}
