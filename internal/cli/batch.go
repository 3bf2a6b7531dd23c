package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/wikiprov/wikiprov/internal/pipeline"
	"github.com/wikiprov/wikiprov/internal/worker"
)

var (
	batchWorkers int
	outputDir    string
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Check multiple candidate texts against one topic in parallel",
	Long: `Batch validates many candidate texts against the same topic:
- Read texts from the input file (one per line, blank lines skipped)
- Check texts in parallel with a configurable worker count
- The topic's article is fetched and indexed once for the whole batch
- Write one JSON report per text

Example:
  wikiprov batch claims.txt --topic "Steve Jobs"
  wikiprov batch claims.txt --topic "Steve Jobs" --batch-workers 8 --output-dir ./reports`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&batchWorkers, "batch-workers", 4, "number of texts checked in parallel")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./wikiprov-reports", "output directory for reports")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")

	// Shared with check
	batchCmd.Flags().StringVar(&topic, "topic", "", "reference topic (required)")
	batchCmd.Flags().StringVar(&granularity, "granularity", "sentence", "claim granularity: sentence or full")
	batchCmd.Flags().StringVar(&userAgent, "ua", "wikiprov/0.1 (+https://github.com/wikiprov/wikiprov)", "HTTP User-Agent")
	batchCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable cache (force fresh fetch)")
	batchCmd.Flags().StringVar(&cacheDir, "cache-dir", "", "persist articles and indexes to this directory")
	batchCmd.Flags().IntVar(&retrieveK, "k", 3, "passages retrieved per claim")
	batchCmd.Flags().Float64Var(&minScore, "min-score", 0, "drop evidence below this similarity (0 keeps all)")
	batchCmd.Flags().StringVar(&llmProvider, "llm-provider", "openai", "LLM provider (openai, anthropic, ollama)")
	batchCmd.Flags().StringVar(&judgeModel, "llm-model", "gpt-4o-mini", "judge model name")
	batchCmd.Flags().StringVar(&embedProvider, "embed-provider", "", "embedding provider (defaults to --llm-provider)")
	batchCmd.Flags().StringVar(&embedModel, "embedding-model", "text-embedding-3-small", "embedding model name")
	batchCmd.Flags().BoolVar(&strictParse, "strict-parse", false, "abort on an unparseable judge response")
	batchCmd.Flags().IntVar(&judgeWorkers, "workers", 4, "claims judged in parallel per text")
	_ = batchCmd.MarkFlagRequired("topic")
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	texts, err := readTexts(file)
	if err != nil {
		return err
	}
	if len(texts) == 0 {
		return fmt.Errorf("no candidate texts in %s", file)
	}

	cfg, err := buildConfig()
	if err != nil {
		return err
	}
	cfg.Concurrency.BatchWorkers = batchWorkers

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	p, err := pipeline.New(cfg)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Checking %d text(s) against %q with %d workers\n\n", len(texts), cfg.Topic, batchWorkers)

	processor := worker.NewBatchProcessor(p, batchWorkers)
	results := processor.ProcessTexts(ctx, cfg.Topic, texts, cfg.Granularity)

	renderer := pipeline.Renderer{}
	passCount := 0
	failCount := 0
	errCount := 0

	for _, result := range results {
		if result.Error != nil {
			errCount++
			fmt.Fprintf(os.Stderr, "✗ text %d: %v\n", result.Index, result.Error)
			continue
		}

		path := filepath.Join(outputDir, fmt.Sprintf("text-%03d.json", result.Index))
		if err := renderer.RenderJSON(result.Outcome, path); err != nil {
			errCount++
			fmt.Fprintf(os.Stderr, "✗ text %d: write report: %v\n", result.Index, err)
			continue
		}

		if result.Outcome.Passed {
			passCount++
			fmt.Fprintf(os.Stderr, "✓ text %d: supported\n", result.Index)
		} else {
			failCount++
			fmt.Fprintf(os.Stderr, "✗ text %d: %d unsupported claim(s)\n", result.Index, len(result.Outcome.FailingUnits))
		}
	}

	fmt.Fprintf(os.Stderr, "\nTotal: %d  Supported: %d  Unsupported: %d  Errors: %d\nReports: %s\n",
		len(results), passCount, failCount, errCount, outputDir)

	if failCount > 0 || errCount > 0 {
		return fmt.Errorf("%d of %d text(s) did not pass", failCount+errCount, len(results))
	}
	return nil
}

// readTexts loads candidate texts from a file, one per line
func readTexts(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input file: %w", err)
	}
	defer func() { _ = f.Close() }()

	var texts []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			texts = append(texts, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read input file: %w", err)
	}
	return texts, nil
}
