package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/wikiprov/wikiprov/internal/model"
	"github.com/wikiprov/wikiprov/internal/pipeline"
)

var (
	topic         string
	granularity   string
	inputFile     string
	outJSON       string
	timeout       time.Duration
	userAgent     string
	maxBytes      int64
	noCache       bool
	cacheDir      string
	llmProvider   string
	judgeModel    string
	embedProvider string
	embedModel    string
	retrieveK     int
	minScore      float64
	strictParse   bool
	judgeWorkers  int
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check [text]",
	Short: "Check whether a text is supported by a topic's Wikipedia article",
	Long: `Check validates a single candidate text:
- Resolve the topic to a Wikipedia article and build a passage index
- Split the text into claims (per sentence, or the whole text at once)
- Retrieve the most similar passages for each claim
- Ask the judge model whether the passages support the claim

The text is read from the argument, from --file, or from stdin.
The command exits non-zero when any claim is unsupported.

Example:
  wikiprov check --topic "Steve Jobs" "Steve Jobs co-founded Apple in 1976."
  cat summary.txt | wikiprov check --topic "Steve Jobs" --granularity full
  wikiprov check --topic "Steve Jobs" --file summary.txt --json report.json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	// Input flags
	checkCmd.Flags().StringVar(&topic, "topic", "", "reference topic (required)")
	checkCmd.Flags().StringVar(&granularity, "granularity", "sentence", "claim granularity: sentence or full")
	checkCmd.Flags().StringVar(&inputFile, "file", "", "read candidate text from file")
	checkCmd.Flags().StringVar(&outJSON, "json", "", "output JSON report path (optional)")
	_ = checkCmd.MarkFlagRequired("topic")

	// HTTP flags
	checkCmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "overall check timeout")
	checkCmd.Flags().StringVar(&userAgent, "ua", "wikiprov/0.1 (+https://github.com/wikiprov/wikiprov)", "HTTP User-Agent")
	checkCmd.Flags().Int64Var(&maxBytes, "max-bytes", 4_000_000, "max response bytes to read")
	checkCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable cache (force fresh fetch)")
	checkCmd.Flags().StringVar(&cacheDir, "cache-dir", "", "persist articles and indexes to this directory")

	// Retrieval flags
	checkCmd.Flags().IntVar(&retrieveK, "k", 3, "passages retrieved per claim")
	checkCmd.Flags().Float64Var(&minScore, "min-score", 0, "drop evidence below this similarity (0 keeps all)")

	// LLM flags
	checkCmd.Flags().StringVar(&llmProvider, "llm-provider", "openai", "LLM provider (openai, anthropic, ollama)")
	checkCmd.Flags().StringVar(&judgeModel, "llm-model", "gpt-4o-mini", "judge model name")
	checkCmd.Flags().StringVar(&embedProvider, "embed-provider", "", "embedding provider (defaults to --llm-provider)")
	checkCmd.Flags().StringVar(&embedModel, "embedding-model", "text-embedding-3-small", "embedding model name")
	checkCmd.Flags().BoolVar(&strictParse, "strict-parse", false, "abort on an unparseable judge response")
	checkCmd.Flags().IntVar(&judgeWorkers, "workers", 4, "claims judged in parallel")
}

func runCheck(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	text, err := readCandidateText(args)
	if err != nil {
		return err
	}

	cfg, err := buildConfig()
	if err != nil {
		return err
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Topic: %s\n", cfg.Topic)
		fmt.Fprintf(os.Stderr, "Granularity: %s\n", cfg.Granularity)
		fmt.Fprintf(os.Stderr, "Judge: %s/%s\n", cfg.LLM.Provider, cfg.Judge.Model)
		fmt.Fprintln(os.Stderr)
	}

	p, err := pipeline.New(cfg)
	if err != nil {
		return err
	}

	outcome, err := p.Validate(ctx, cfg.Topic, text, cfg.Granularity)
	if err != nil {
		return fmt.Errorf("check failed: %w", err)
	}

	renderer := pipeline.Renderer{}
	renderer.RenderText(os.Stdout, outcome)
	if outJSON != "" {
		if err := renderer.RenderJSON(outcome, outJSON); err != nil {
			return err
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "Report written to %s\n", outJSON)
		}
	}

	if !outcome.Passed {
		return fmt.Errorf("%d unsupported claim(s)", len(outcome.FailingUnits))
	}
	return nil
}

// readCandidateText resolves the candidate text from argument, file or stdin
func readCandidateText(args []string) (string, error) {
	if len(args) == 1 && inputFile != "" {
		return "", fmt.Errorf("pass the text as an argument or via --file, not both")
	}
	if len(args) == 1 {
		return args[0], nil
	}
	if inputFile != "" {
		data, err := os.ReadFile(inputFile)
		if err != nil {
			return "", fmt.Errorf("read input file: %w", err)
		}
		return string(data), nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return string(data), nil
}

// buildConfig assembles the configuration from flags and environment
func buildConfig() (*model.Config, error) {
	g, err := model.ParseGranularity(granularity)
	if err != nil {
		return nil, err
	}

	cfg := model.DefaultConfig()
	cfg.Topic = strings.TrimSpace(topic)
	cfg.Granularity = g
	cfg.HTTP.Timeout = 30 * time.Second
	cfg.HTTP.UserAgent = userAgent
	cfg.HTTP.MaxBodyBytes = maxBytes
	cfg.Cache.Enabled = !noCache
	cfg.Cache.Dir = cacheDir
	cfg.Retrieval.K = retrieveK
	cfg.Retrieval.MinScore = minScore
	cfg.Judge.Model = judgeModel
	cfg.Judge.StrictParse = strictParse
	cfg.LLM.Provider = llmProvider
	cfg.LLM.EmbedProvider = embedProvider
	cfg.LLM.EmbeddingModel = embedModel
	cfg.Concurrency.JudgeWorkers = judgeWorkers

	if err := resolveCredentials(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// resolveCredentials pulls API keys and endpoints from the environment
func resolveCredentials(cfg *model.Config) error {
	switch cfg.LLM.Provider {
	case "openai":
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		if cfg.LLM.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	case "anthropic", "claude":
		cfg.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		if cfg.LLM.APIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
		}
	case "ollama":
		// Ollama doesn't need an API key
		if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
			cfg.LLM.BaseURL = baseURL
		}
	}

	// A separate embedding provider needs its own key.
	if cfg.LLM.EmbedProvider != "" && cfg.LLM.EmbedProvider != cfg.LLM.Provider {
		switch cfg.LLM.EmbedProvider {
		case "openai":
			cfg.LLM.EmbedAPIKey = os.Getenv("OPENAI_API_KEY")
			if cfg.LLM.EmbedAPIKey == "" {
				return fmt.Errorf("OPENAI_API_KEY environment variable not set (required by --embed-provider openai)")
			}
		case "ollama":
			if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" && cfg.LLM.BaseURL == "" {
				cfg.LLM.BaseURL = baseURL
			}
		}
	}
	return nil
}
