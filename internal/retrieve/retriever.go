package retrieve

import (
	"context"
	"fmt"

	"github.com/wikiprov/wikiprov/internal/index"
	"github.com/wikiprov/wikiprov/internal/model"
)

// DefaultK is the number of passages retrieved per claim unit
const DefaultK = 3

// Retriever selects the evidence set for a claim unit. It is a thin seam
// over index queries so evidence-selection policy (k, score threshold,
// re-ranking) can evolve without touching index storage.
type Retriever struct {
	k        int
	minScore float64 // 0 disables the threshold
}

// New creates a retriever from retrieval configuration
func New(cfg model.RetrievalConfig) (*Retriever, error) {
	k := cfg.K
	if k == 0 {
		k = DefaultK
	}
	if k < 1 {
		return nil, fmt.Errorf("%w: retrieval k %d must be >= 1", model.ErrInvalidConfiguration, cfg.K)
	}
	if cfg.MinScore < 0 || cfg.MinScore > 1 {
		return nil, fmt.Errorf("%w: min score %f must be in [0, 1]", model.ErrInvalidConfiguration, cfg.MinScore)
	}
	return &Retriever{k: k, minScore: cfg.MinScore}, nil
}

// Retrieve returns the evidence passages for one claim unit, best first.
// Passages scoring below the configured threshold are excluded even when
// they made the top k.
func (r *Retriever) Retrieve(ctx context.Context, idx *index.Index, claim string) ([]model.Evidence, error) {
	evidence, err := idx.Query(ctx, claim, r.k)
	if err != nil {
		return nil, err
	}

	if r.minScore == 0 {
		return evidence, nil
	}

	kept := evidence[:0]
	for _, e := range evidence {
		if e.Score >= r.minScore {
			kept = append(kept, e)
		}
	}
	return kept, nil
}
