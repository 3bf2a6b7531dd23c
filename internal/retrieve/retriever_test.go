package retrieve

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/wikiprov/wikiprov/internal/index"
	"github.com/wikiprov/wikiprov/internal/model"
)

type sourceFunc func(ctx context.Context, topic string) (string, error)

func (f sourceFunc) Fetch(ctx context.Context, topic string) (string, error) { return f(ctx, topic) }

// passageEmbedder maps the two test passages onto fixed axes and every
// query onto (4,3), so similarity scores are exact: 0.8 against the
// founding passage and 0.6 against the products passage.
type passageEmbedder struct{}

func (passageEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		switch {
		case strings.Contains(text, "founding"):
			vectors[i] = []float32{1, 0}
		case strings.Contains(text, "products"):
			vectors[i] = []float32{0, 1}
		default:
			vectors[i] = []float32{4, 3}
		}
	}
	return vectors, nil
}

func buildIndex(t *testing.T) *index.Index {
	t.Helper()
	builder := index.NewBuilder(sourceFunc(func(ctx context.Context, topic string) (string, error) {
		return "about the founding. second sentence. third sentence.\n\nabout the products. second sentence. third sentence.", nil
	}), passageEmbedder{}, model.ChunkingConfig{MaxLength: 200, Overlap: 0}, nil)
	idx, err := builder.Get(context.Background(), "T")
	if err != nil {
		t.Fatalf("build index: %v", err)
	}
	if idx.Len() != 2 {
		t.Fatalf("expected 2 passages, got %d", idx.Len())
	}
	return idx
}

func TestNew_Defaults(t *testing.T) {
	r, err := New(model.RetrievalConfig{})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if r.k != DefaultK {
		t.Errorf("Expected default k %d, got %d", DefaultK, r.k)
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	if _, err := New(model.RetrievalConfig{K: -1}); !errors.Is(err, model.ErrInvalidConfiguration) {
		t.Errorf("Expected ErrInvalidConfiguration for negative k, got %v", err)
	}
	if _, err := New(model.RetrievalConfig{MinScore: 1.5}); !errors.Is(err, model.ErrInvalidConfiguration) {
		t.Errorf("Expected ErrInvalidConfiguration for min score > 1, got %v", err)
	}
}

func TestRetrieve_OrderedDelegation(t *testing.T) {
	idx := buildIndex(t)
	r, err := New(model.RetrievalConfig{K: 2})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	evidence, err := r.Retrieve(context.Background(), idx, "when was it founded")
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}
	if len(evidence) != 2 {
		t.Fatalf("Expected 2 evidence passages, got %d", len(evidence))
	}
	if !strings.Contains(evidence[0].Passage.Text, "founding") {
		t.Errorf("Expected the founding passage first, got %q", evidence[0].Passage.Text)
	}
}

func TestRetrieve_ThresholdFiltersWeakEvidence(t *testing.T) {
	idx := buildIndex(t)

	r, err := New(model.RetrievalConfig{K: 2, MinScore: 0.7})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	evidence, err := r.Retrieve(context.Background(), idx, "when was it founded")
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}
	if len(evidence) != 1 {
		t.Fatalf("Expected 1 passage above the 0.7 threshold, got %d", len(evidence))
	}
	if !strings.Contains(evidence[0].Passage.Text, "founding") {
		t.Errorf("Wrong passage kept: %q", evidence[0].Passage.Text)
	}
}
