package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/wikiprov/wikiprov/internal/model"
)

// Renderer writes validation outcomes for human and machine consumption
type Renderer struct{}

// RenderJSON writes the outcome as indented JSON to the given path
func (Renderer) RenderJSON(outcome *model.Outcome, path string) error {
	data, err := json.MarshalIndent(outcome, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal outcome: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// RenderText writes a short human-readable verdict
func (Renderer) RenderText(w io.Writer, outcome *model.Outcome) {
	if outcome.Passed {
		fmt.Fprintf(w, "PASS: all %d claim(s) supported by the article for %q\n",
			len(outcome.Units), outcome.Topic)
		return
	}

	fmt.Fprintf(w, "FAIL: %d of %d claim(s) not supported by the article for %q\n",
		len(outcome.FailingUnits), len(outcome.Units), outcome.Topic)
	for _, u := range outcome.FailingUnits {
		marker := "unsupported"
		if u.Verdict.Indeterminate {
			marker = "indeterminate"
		}
		fmt.Fprintf(w, "  [%d] %s: %s\n", u.Index, marker, u.Text)
	}

	if supported := outcome.SupportedText(); supported != "" {
		fmt.Fprintf(w, "\nSupported text:\n%s\n", supported)
	}
}
