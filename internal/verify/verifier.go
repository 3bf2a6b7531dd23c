package verify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/wikiprov/wikiprov/internal/index"
	"github.com/wikiprov/wikiprov/internal/model"
	"github.com/wikiprov/wikiprov/internal/util"
)

// IndexProvider supplies the per-topic corpus index (see index.Builder)
type IndexProvider interface {
	Get(ctx context.Context, topic string) (*index.Index, error)
}

// Retriever selects evidence for a claim unit (see retrieve.Retriever)
type Retriever interface {
	Retrieve(ctx context.Context, idx *index.Index, claim string) ([]model.Evidence, error)
}

// Judge decides whether evidence supports a claim unit (see judge.Judge)
type Judge interface {
	Judge(ctx context.Context, claim string, evidence []model.Evidence) (model.Verdict, error)
}

// Verifier runs the full provenance check for a candidate text: split it
// into claim units, retrieve evidence for each unit from the topic's
// article, judge support, and aggregate into a single outcome.
type Verifier struct {
	indexes   IndexProvider
	retriever Retriever
	judge     Judge

	workers     int
	strictParse bool
}

// New creates a verifier. workers bounds how many claim units are judged
// in parallel; values below 1 mean sequential.
func New(indexes IndexProvider, retriever Retriever, judge Judge, workers int, strictParse bool) *Verifier {
	if workers < 1 {
		workers = 1
	}
	return &Verifier{
		indexes:     indexes,
		retriever:   retriever,
		judge:       judge,
		workers:     workers,
		strictParse: strictParse,
	}
}

// unitOutcome carries one unit's verdict back from its worker goroutine
type unitOutcome struct {
	verdict model.Verdict
	err     error
}

// Validate checks whether text is supported by the topic's reference
// article. The outcome lists every claim unit in input order; it passes
// only if all units are supported. An empty or whitespace-only text
// passes vacuously. Infrastructure failures return an error and no
// outcome; a validation never silently passes.
func (v *Verifier) Validate(ctx context.Context, topic, text string, granularity model.Granularity) (*model.Outcome, error) {
	if topic == "" {
		return nil, fmt.Errorf("%w: topic is required", model.ErrInvalidConfiguration)
	}
	if granularity != model.GranularitySentence && granularity != model.GranularityFull {
		return nil, fmt.Errorf("%w: granularity %q", model.ErrInvalidConfiguration, granularity)
	}

	units := splitUnits(text, granularity)

	outcome := &model.Outcome{
		Topic:       topic,
		Granularity: granularity,
		Passed:      true,
	}
	if len(units) == 0 {
		return outcome, nil
	}

	idx, err := v.indexes.Get(ctx, topic)
	if err != nil {
		return nil, err
	}

	results := make([]unitOutcome, len(units))
	sem := make(chan struct{}, v.workers)
	var wg sync.WaitGroup

	for i, unit := range units {
		wg.Add(1)
		go func(i int, unit string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			verdict, err := v.checkUnit(ctx, idx, unit)
			results[i] = unitOutcome{verdict: verdict, err: err}
		}(i, unit)
	}
	wg.Wait()

	for i, unit := range units {
		if err := results[i].err; err != nil {
			return nil, fmt.Errorf("verify unit %d: %w", i, err)
		}
		result := model.UnitResult{Index: i, Text: unit, Verdict: results[i].verdict}
		outcome.Units = append(outcome.Units, result)
		if !result.Verdict.Supported {
			outcome.Passed = false
			outcome.FailingUnits = append(outcome.FailingUnits, result)
		}
	}
	return outcome, nil
}

// checkUnit retrieves evidence and judges one claim unit. An unparseable
// judge response counts the unit as unsupported unless strict parsing is
// on, in which case it aborts the whole validation.
func (v *Verifier) checkUnit(ctx context.Context, idx *index.Index, unit string) (model.Verdict, error) {
	evidence, err := v.retriever.Retrieve(ctx, idx, unit)
	if err != nil {
		return model.Verdict{}, err
	}

	verdict, err := v.judge.Judge(ctx, unit, evidence)
	if err != nil {
		if errors.Is(err, model.ErrJudgeParse) && !v.strictParse {
			return verdict, nil
		}
		return model.Verdict{}, err
	}
	return verdict, nil
}

// splitUnits turns the candidate text into claim units
func splitUnits(text string, granularity model.Granularity) []string {
	if granularity == model.GranularityFull {
		if strings.TrimSpace(text) == "" {
			return nil
		}
		return []string{text}
	}
	return util.SplitSentences(text)
}
