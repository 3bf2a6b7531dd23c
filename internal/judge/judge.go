package judge

import (
	"context"
	"fmt"
	"strings"

	"github.com/wikiprov/wikiprov/internal/llm"
	"github.com/wikiprov/wikiprov/internal/model"
)

const systemInstruction = "You are an oracle of logic and intelligence that judges whether contexts support claims. " +
	"Answer with just a 'Yes' or a 'No'. Any other text is strictly forbidden."

const promptTemplate = `Instructions:
Determine whether the following 'Contexts' support the 'Claim'.
Please answer the question with just a 'Yes' or a 'No'. Any other text is strictly forbidden.
You'll be evaluated based on how well you understand the relationship between the contexts and the claim
and how well you follow the instructions to answer with a 'Yes' or a 'No'.

Claim:
%s

Contexts:
%s

Your Answer:
`

// Judge asks the LLM whether retrieved evidence supports a claim unit.
// It never retries; retry policy belongs to the caller.
type Judge struct {
	provider  llm.Provider
	model     string
	maxTokens int
}

// New creates a judge backed by the given provider
func New(provider llm.Provider, cfg model.JudgeConfig, maxTokens int) *Judge {
	if maxTokens == 0 {
		maxTokens = 16 // "Yes"/"No" needs almost nothing
	}
	return &Judge{
		provider:  provider,
		model:     cfg.Model,
		maxTokens: maxTokens,
	}
}

// Judge returns the support verdict for one claim unit. A claim with no
// evidence is unsupported without consulting the LLM. An unparseable
// completion returns the verdict marked indeterminate together with
// model.ErrJudgeParse; the orchestrator decides whether that aborts.
func (j *Judge) Judge(ctx context.Context, claim string, evidence []model.Evidence) (model.Verdict, error) {
	verdict := model.Verdict{Evidence: evidence}

	if len(evidence) == 0 {
		return verdict, nil
	}

	resp, err := j.provider.Complete(ctx, llm.CompletionRequest{
		System:    systemInstruction,
		Prompt:    buildPrompt(claim, evidence),
		Model:     j.model,
		MaxTokens: j.maxTokens,
	})
	if err != nil {
		return verdict, fmt.Errorf("judge claim: %w", err)
	}

	supported, ok := parseAnswer(resp.Text)
	if !ok {
		verdict.Indeterminate = true
		return verdict, fmt.Errorf("%w: %q", model.ErrJudgeParse, resp.Text)
	}

	verdict.Supported = supported
	return verdict, nil
}

// buildPrompt renders the fixed instruction with claim and evidence
func buildPrompt(claim string, evidence []model.Evidence) string {
	contexts := make([]string, len(evidence))
	for i, e := range evidence {
		contexts[i] = e.Passage.Text
	}
	return fmt.Sprintf(promptTemplate, claim, strings.Join(contexts, "\n"))
}

// parseAnswer maps the raw completion to a verdict. Only yes/no count;
// anything else is unparseable.
func parseAnswer(text string) (supported, ok bool) {
	answer := strings.ToLower(strings.TrimSpace(text))
	answer = strings.TrimRight(answer, ".!")

	switch answer {
	case "yes":
		return true, true
	case "no":
		return false, true
	default:
		return false, false
	}
}
