package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/greenlens/internal/llm"
	"github.com/ppiankov/greenlens/internal/model"
	"github.com/ppiankov/greenlens/internal/pipeline"
	"github.com/ppiankov/greenlens/internal/store"
)

var (
	scanJSON     string
	scanMD       string
	scanTimeout  time.Duration
	scanNoFooter bool
	scanSave     bool
	llmEnabled   bool
	llmProvider  string
	llmModel     string
)

// scanCmd runs the full image pipeline
var scanCmd = &cobra.Command{
	Use:   "scan <image>",
	Short: "Scan a product label image and generate a deception report",
	Long: `Scan analyzes one product image:
- Read label text (sidecar <image>.txt or a remote OCR service)
- Detect certification marks and check them against the registry
- Measure green, earth and sky palette shares for visual greenwashing
- Extract and verify sustainability claims
- Fuse everything into a transparent 0-100 deception score

Example:
  greenlens scan label.png
  greenlens scan label.png --json report.json --md report.md
  greenlens scan label.png --llm --llm-model gpt-4o-mini`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().StringVar(&scanJSON, "json", "", "write JSON report to path (- for stdout)")
	scanCmd.Flags().StringVar(&scanMD, "md", "", "write Markdown report to path")
	scanCmd.Flags().DurationVar(&scanTimeout, "timeout", 2*time.Minute, "overall scan timeout")
	scanCmd.Flags().BoolVar(&scanNoFooter, "no-footer", false, "disable footer in Markdown reports")
	scanCmd.Flags().BoolVar(&scanSave, "save", false, "keep the report in the configured storage backend")

	scanCmd.Flags().BoolVar(&llmEnabled, "llm", false, "attach an LLM narrative summary")
	scanCmd.Flags().StringVar(&llmProvider, "llm-provider", "openai", "LLM provider (openai, ollama)")
	scanCmd.Flags().StringVar(&llmModel, "llm-model", "", "LLM model name")
}

// applyLLMFlags enables the narrative summary requested on the command line
func applyLLMFlags(cfg *model.Config) error {
	if !llmEnabled {
		return nil
	}
	cfg.LLM.Provider = llmProvider
	if llmModel != "" {
		cfg.LLM.Model = llmModel
	}
	if cfg.LLM.Provider == "openai" && cfg.LLM.APIKey == "" && cfg.LLM.BaseURL == "" {
		return fmt.Errorf("OPENAI_API_KEY environment variable not set")
	}
	if cfg.LLM.Provider == "ollama" && cfg.LLM.BaseURL == "" {
		cfg.LLM.BaseURL = llm.DefaultOllamaURL
	}
	return nil
}

func runScan(cmd *cobra.Command, args []string) error {
	imagePath := args[0]
	ctx, cancel := context.WithTimeout(cmd.Context(), scanTimeout)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if scanNoFooter {
		cfg.Output.IncludeFooter = false
	}
	if err := applyLLMFlags(cfg); err != nil {
		return err
	}

	logf("Scanning: %s\n", imagePath)
	logf("Timeout: %v\n", scanTimeout)

	p, err := pipeline.NewPipeline(cfg)
	if err != nil {
		return fmt.Errorf("init pipeline: %w", err)
	}
	defer func() { _ = p.Close() }()

	report, scanErr := p.AnalyzeImage(ctx, imagePath)
	if report == nil {
		return fmt.Errorf("scan failed: %w", scanErr)
	}

	if report.Success {
		logf("✓ Extracted %d claims\n", report.NumClaims)
		logf("✓ Found %d certification marks\n", len(report.Certifications.Claimed))
		if report.LLM != nil && report.LLM.Enabled {
			logf("✓ Generated LLM summary using %s/%s\n", report.LLM.Provider, report.LLM.Model)
		}
	}

	if err := writeReportOutputs(cmd, p.Renderer(), report, scanJSON, scanMD); err != nil {
		return err
	}

	if scanSave && report.Success {
		if err := saveReport(ctx, cfg.Storage, report); err != nil {
			return err
		}
	}

	if scanErr != nil {
		return fmt.Errorf("scan failed: %w", scanErr)
	}
	return nil
}

func writeReportOutputs(cmd *cobra.Command, r *pipeline.Renderer, report *model.Report, jsonPath, mdPath string) error {
	out := cmd.OutOrStdout()

	if jsonPath != "" && jsonPath != "-" {
		if err := pipeline.SaveJSON(report, jsonPath); err != nil {
			return err
		}
		logf("✓ Wrote %s\n", jsonPath)
	}

	if mdPath != "" {
		md := r.Markdown(report)
		if report.LLM != nil && report.LLM.Enabled {
			md += "\n" + llm.RenderSeparateMarkdown(report.LLM)
		}
		if err := os.WriteFile(mdPath, []byte(md), 0644); err != nil {
			return fmt.Errorf("write %s: %w", mdPath, err)
		}
		logf("✓ Wrote %s\n", mdPath)
	}

	if jsonPath == "-" {
		return pipeline.WriteJSON(out, report)
	}
	r.Summary(out, report)
	return nil
}

func saveReport(ctx context.Context, cfg model.StorageConfig, report *model.Report) error {
	if cfg.Backend == "" {
		cfg.Backend = "file"
	}
	st, err := store.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer func() { _ = st.Close() }()

	if err := st.Save(ctx, report); err != nil {
		return err
	}
	logf("✓ Stored report %s\n", report.ID)
	return nil
}
