package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/greenlens/internal/model"
	"github.com/ppiankov/greenlens/internal/pipeline"
)

var (
	analyzeFile    string
	analyzeURL     string
	analyzeJSON    string
	analyzeMD      string
	analyzeTimeout time.Duration
)

// analyzeCmd runs the text pipeline
var analyzeCmd = &cobra.Command{
	Use:   "analyze [text]",
	Short: "Analyze marketing text for misleading sustainability claims",
	Long: `Analyze extracts sustainability claims from text, judges each one and
scores the text from 0 (trustworthy) to 100 (severe deception).

Text comes from the arguments, a file, or a product page URL.

Example:
  greenlens analyze "Our product is 100% eco-friendly and carbon neutral!"
  greenlens analyze --file label.txt --json result.json
  greenlens analyze --url https://shop.example.com/p/bamboo-brush --md result.md`,
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVar(&analyzeFile, "file", "", "read text from a file")
	analyzeCmd.Flags().StringVar(&analyzeURL, "url", "", "fetch a product page and analyze its text")
	analyzeCmd.Flags().StringVar(&analyzeJSON, "json", "", "write JSON result to path (- for stdout)")
	analyzeCmd.Flags().StringVar(&analyzeMD, "md", "", "write Markdown result to path")
	analyzeCmd.Flags().DurationVar(&analyzeTimeout, "timeout", 2*time.Minute, "timeout for page fetching")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	sources := 0
	for _, set := range []bool{len(args) > 0, analyzeFile != "", analyzeURL != ""} {
		if set {
			sources++
		}
	}
	if sources != 1 {
		return errors.New("provide exactly one of: text arguments, --file or --url")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	p, err := pipeline.NewPipeline(cfg)
	if err != nil {
		return fmt.Errorf("init pipeline: %w", err)
	}
	defer func() { _ = p.Close() }()

	var ta model.TextAnalysis
	switch {
	case analyzeURL != "":
		ctx, cancel := context.WithTimeout(cmd.Context(), analyzeTimeout)
		defer cancel()

		logf("⚙️  Fetching %s...\n", analyzeURL)
		var page *pipeline.FetchResult
		ta, page, err = p.AnalyzeURL(ctx, analyzeURL)
		if err != nil {
			return fmt.Errorf("analyze url: %w", err)
		}
		logf("✓ Fetched %s (%d bytes)\n", page.FinalURL, len(page.HTML))
	case analyzeFile != "":
		data, err := os.ReadFile(analyzeFile)
		if err != nil {
			return fmt.Errorf("read text: %w", err)
		}
		ta = p.AnalyzeText(string(data))
	default:
		ta = p.AnalyzeText(strings.Join(args, " "))
	}

	logf("✓ Extracted %d claims\n", ta.NumClaims)
	return writeTextOutputs(cmd, p.Renderer(), ta)
}

func writeTextOutputs(cmd *cobra.Command, r *pipeline.Renderer, ta model.TextAnalysis) error {
	out := cmd.OutOrStdout()

	if analyzeJSON != "" && analyzeJSON != "-" {
		if err := pipeline.SaveJSON(ta, analyzeJSON); err != nil {
			return err
		}
		logf("✓ Wrote %s\n", analyzeJSON)
	}

	if analyzeMD != "" {
		if err := os.WriteFile(analyzeMD, []byte(r.TextMarkdown(ta)), 0644); err != nil {
			return fmt.Errorf("write %s: %w", analyzeMD, err)
		}
		logf("✓ Wrote %s\n", analyzeMD)
	}

	// stdout carries only the JSON document when it is the JSON target
	if analyzeJSON == "-" {
		return pipeline.WriteJSON(out, ta)
	}
	r.TextSummary(out, ta)
	return nil
}
