package judge

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/wikiprov/wikiprov/internal/llm"
	"github.com/wikiprov/wikiprov/internal/model"
)

// scriptedProvider returns a canned answer and records the last request
type scriptedProvider struct {
	answer  string
	err     error
	lastReq llm.CompletionRequest
	calls   int
}

func (p *scriptedProvider) Name() string { return "scripted" }

func (p *scriptedProvider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	p.calls++
	p.lastReq = req
	if p.err != nil {
		return nil, p.err
	}
	return &llm.CompletionResponse{Text: p.answer, Model: req.Model}, nil
}

func (p *scriptedProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	return nil, errors.New("not used")
}

func (p *scriptedProvider) IsAvailable(ctx context.Context) bool { return true }

func someEvidence() []model.Evidence {
	return []model.Evidence{
		{Passage: model.Passage{ID: "0", Text: "Apple was founded in April 1976."}, Score: 0.9},
		{Passage: model.Passage{ID: "1", Text: "The company is headquartered in Cupertino."}, Score: 0.7},
	}
}

func TestJudge_ParsesAnswers(t *testing.T) {
	tests := []struct {
		name      string
		answer    string
		supported bool
	}{
		{"plain yes", "Yes", true},
		{"plain no", "No", false},
		{"lowercase", "yes", true},
		{"whitespace", "  No \n", false},
		{"trailing period", "Yes.", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &scriptedProvider{answer: tt.answer}
			j := New(provider, model.JudgeConfig{Model: "gpt-4o-mini"}, 0)

			verdict, err := j.Judge(context.Background(), "Apple was founded in 1976.", someEvidence())
			if err != nil {
				t.Fatalf("Judge failed: %v", err)
			}
			if verdict.Supported != tt.supported {
				t.Errorf("Expected supported=%v for answer %q", tt.supported, tt.answer)
			}
			if verdict.Indeterminate {
				t.Error("Parsed answers must not be indeterminate")
			}
		})
	}
}

func TestJudge_UnparseableAnswer(t *testing.T) {
	provider := &scriptedProvider{answer: "The claim appears to be broadly accurate."}
	j := New(provider, model.JudgeConfig{Model: "gpt-4o-mini"}, 0)

	verdict, err := j.Judge(context.Background(), "Apple was founded in 1976.", someEvidence())
	if !errors.Is(err, model.ErrJudgeParse) {
		t.Fatalf("Expected ErrJudgeParse, got %v", err)
	}
	if !verdict.Indeterminate {
		t.Error("Unparseable answers must be marked indeterminate")
	}
	if verdict.Supported {
		t.Error("Unparseable answers must not count as supported")
	}
}

func TestJudge_PromptContainsClaimAndEvidence(t *testing.T) {
	provider := &scriptedProvider{answer: "Yes"}
	j := New(provider, model.JudgeConfig{Model: "gpt-4o-mini"}, 0)

	claim := "Apple was founded in 1976."
	if _, err := j.Judge(context.Background(), claim, someEvidence()); err != nil {
		t.Fatalf("Judge failed: %v", err)
	}

	prompt := provider.lastReq.Prompt
	if !strings.Contains(prompt, claim) {
		t.Error("Prompt must contain the claim")
	}
	if !strings.Contains(prompt, "Apple was founded in April 1976.") {
		t.Error("Prompt must contain the evidence passages")
	}
	if provider.lastReq.Model != "gpt-4o-mini" {
		t.Errorf("Expected the configured judge model, got %q", provider.lastReq.Model)
	}
	if provider.lastReq.System == "" {
		t.Error("Expected a system instruction")
	}
}

func TestJudge_NoEvidenceSkipsProvider(t *testing.T) {
	provider := &scriptedProvider{answer: "Yes"}
	j := New(provider, model.JudgeConfig{Model: "gpt-4o-mini"}, 0)

	verdict, err := j.Judge(context.Background(), "Unrelated claim.", nil)
	if err != nil {
		t.Fatalf("Judge failed: %v", err)
	}
	if verdict.Supported {
		t.Error("A claim with no evidence cannot be supported")
	}
	if provider.calls != 0 {
		t.Errorf("Expected no provider call without evidence, got %d", provider.calls)
	}
}

func TestJudge_ProviderFailure(t *testing.T) {
	provider := &scriptedProvider{err: model.ErrServiceUnavailable}
	j := New(provider, model.JudgeConfig{Model: "gpt-4o-mini"}, 0)

	_, err := j.Judge(context.Background(), "Apple was founded in 1976.", someEvidence())
	if !errors.Is(err, model.ErrServiceUnavailable) {
		t.Fatalf("Expected ErrServiceUnavailable, got %v", err)
	}
}
