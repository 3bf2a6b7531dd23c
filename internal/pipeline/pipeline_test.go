package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/wikiprov/wikiprov/internal/model"
)

// ollamaConfig needs no API key, so New succeeds without environment setup
func ollamaConfig() *model.Config {
	cfg := model.DefaultConfig()
	cfg.Topic = "Apple Inc."
	cfg.LLM.Provider = "ollama"
	cfg.Cache.Enabled = false
	return cfg
}

func TestNew_UnknownProvider(t *testing.T) {
	cfg := ollamaConfig()
	cfg.LLM.Provider = "palantir"

	if _, err := New(cfg); !errors.Is(err, model.ErrInvalidConfiguration) {
		t.Fatalf("Expected ErrInvalidConfiguration, got %v", err)
	}
}

func TestNew_MissingAPIKey(t *testing.T) {
	cfg := ollamaConfig()
	cfg.LLM.Provider = "openai"
	cfg.LLM.APIKey = ""

	if _, err := New(cfg); err == nil {
		t.Fatal("Expected an error for openai without an API key")
	}
}

func TestNew_InvalidRetrieval(t *testing.T) {
	cfg := ollamaConfig()
	cfg.Retrieval.K = -2

	if _, err := New(cfg); !errors.Is(err, model.ErrInvalidConfiguration) {
		t.Fatalf("Expected ErrInvalidConfiguration, got %v", err)
	}
}

func TestValidate_EmptyTextNeedsNoNetwork(t *testing.T) {
	p, err := New(ollamaConfig())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	outcome, err := p.Validate(context.Background(), "", "", model.GranularitySentence)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if !outcome.Passed {
		t.Error("Empty text must pass vacuously")
	}
	if outcome.Topic != "Apple Inc." {
		t.Errorf("Expected the configured topic, got %q", outcome.Topic)
	}
}

func TestValidate_TopicRequired(t *testing.T) {
	cfg := ollamaConfig()
	cfg.Topic = ""
	p, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if _, err := p.Validate(context.Background(), "", "some text", model.GranularitySentence); !errors.Is(err, model.ErrInvalidConfiguration) {
		t.Fatalf("Expected ErrInvalidConfiguration, got %v", err)
	}
}

func TestRenderText(t *testing.T) {
	outcome := &model.Outcome{
		Topic:  "Apple Inc.",
		Passed: false,
		Units: []model.UnitResult{
			{Index: 0, Text: "Apple was founded in 1976.", Verdict: model.Verdict{Supported: true}},
			{Index: 1, Text: "Ratan Tata chaired the company.", Verdict: model.Verdict{}},
		},
		FailingUnits: []model.UnitResult{
			{Index: 1, Text: "Ratan Tata chaired the company.", Verdict: model.Verdict{}},
		},
	}

	var b strings.Builder
	Renderer{}.RenderText(&b, outcome)
	out := b.String()

	if !strings.Contains(out, "FAIL: 1 of 2") {
		t.Errorf("Expected a failure header, got %q", out)
	}
	if !strings.Contains(out, "Ratan Tata") {
		t.Errorf("Expected the failing claim listed, got %q", out)
	}
	if !strings.Contains(out, "founded in 1976") {
		t.Errorf("Expected the supported text section, got %q", out)
	}
}
