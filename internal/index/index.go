package index

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/wikiprov/wikiprov/internal/model"
)

// Embedder is the slice of the LLM provider the index needs. Satisfied by
// llm.Provider.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Index is a per-topic searchable embedding index over article passages.
// Read-only after build; safe for concurrent queries.
type Index struct {
	topic    string
	passages []model.Passage
	embedder Embedder
}

// Topic returns the topic this index was built for
func (ix *Index) Topic() string {
	return ix.topic
}

// Len returns the number of indexed passages
func (ix *Index) Len() int {
	return len(ix.passages)
}

// Query embeds the text and returns the k most similar passages with
// their cosine similarity, best first. Ties are broken by passage offset
// (earlier span wins) so results are deterministic. If the index holds
// fewer than k passages, all of them are returned.
func (ix *Index) Query(ctx context.Context, text string, k int) ([]model.Evidence, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: k %d must be >= 1", model.ErrInvalidConfiguration, k)
	}

	vectors, err := ix.embedder.Embed(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	query := vectors[0]

	scored := make([]model.Evidence, 0, len(ix.passages))
	for _, p := range ix.passages {
		scored = append(scored, model.Evidence{
			Passage: model.Passage{ID: p.ID, Text: p.Text, Offset: p.Offset},
			Score:   cosine(query, p.Vector),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Passage.Offset < scored[j].Passage.Offset
	})

	if k > len(scored) {
		k = len(scored)
	}
	return scored[:k], nil
}

// cosine computes cosine similarity between two vectors
func cosine(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
