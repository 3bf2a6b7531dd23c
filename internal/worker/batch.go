package worker

import (
	"context"
	"sort"

	"github.com/wikiprov/wikiprov/internal/model"
)

// Checker defines the interface for validating one candidate text
type Checker interface {
	Validate(ctx context.Context, topic, text string, granularity model.Granularity) (*model.Outcome, error)
}

// CheckJob validates one candidate text against the topic's article
type CheckJob struct {
	Index       int // Position in the input batch
	Topic       string
	Text        string
	Granularity model.Granularity
	Checker     Checker
}

// Execute executes the check job
func (j *CheckJob) Execute(ctx context.Context) Result {
	outcome, err := j.Checker.Validate(ctx, j.Topic, j.Text, j.Granularity)
	return &CheckResult{
		Index:   j.Index,
		Text:    j.Text,
		Outcome: outcome,
		Error:   err,
	}
}

// CheckResult represents the result of a check job
type CheckResult struct {
	Index   int
	Text    string
	Outcome *model.Outcome
	Error   error
}

// GetError returns the error from the check result
func (r *CheckResult) GetError() error {
	return r.Error
}

// BatchProcessor validates multiple candidate texts concurrently against
// one topic. The shared checker memoizes the topic index, so the article
// is fetched and embedded once for the whole batch.
type BatchProcessor struct {
	checker     Checker
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(checker Checker, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		checker:     checker,
		concurrency: concurrency,
	}
}

// ProcessTexts validates all texts and returns results in input order
// regardless of completion order.
func (b *BatchProcessor) ProcessTexts(ctx context.Context, topic string, texts []string, granularity model.Granularity) []*CheckResult {
	if len(texts) == 0 {
		return []*CheckResult{}
	}

	pool := NewPool(b.concurrency)
	pool.Start()

	for i, text := range texts {
		pool.Submit(&CheckJob{
			Index:       i,
			Topic:       topic,
			Text:        text,
			Granularity: granularity,
			Checker:     b.checker,
		})
	}

	raw := pool.Wait()

	results := make([]*CheckResult, 0, len(raw))
	for _, r := range raw {
		if cr, ok := r.(*CheckResult); ok {
			results = append(results, cr)
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Index < results[j].Index })

	return results
}
