// Package llm attaches an optional narrative summary to finished reports.
// Summaries are generated after scoring and never change a score.
package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/ppiankov/greenlens/internal/model"
)

// Summarizer wraps a provider; a nil provider means summaries are disabled
type Summarizer struct {
	provider Provider
	config   Config
}

// NewSummarizer creates a summarizer for the configured provider
func NewSummarizer(config Config) (*Summarizer, error) {
	provider, err := NewProvider(config)
	if err != nil {
		return nil, err
	}
	return &Summarizer{provider: provider, config: config}, nil
}

// NewSummarizerWithProvider wraps an existing provider
func NewSummarizerWithProvider(provider Provider, config Config) *Summarizer {
	return &Summarizer{provider: provider, config: config}
}

// IsEnabled reports whether a provider is configured
func (s *Summarizer) IsEnabled() bool {
	return s != nil && s.provider != nil
}

// ProviderName returns the configured provider name, or "" when disabled
func (s *Summarizer) ProviderName() string {
	if !s.IsEnabled() {
		return ""
	}
	return s.provider.Name()
}

// GenerateSummary produces the narrative for a finished report. It returns
// (nil, nil) when disabled and a disabled summary with a warning when the
// provider cannot be reached.
func (s *Summarizer) GenerateSummary(ctx context.Context, report model.Report) (*model.LLMSummary, error) {
	if !s.IsEnabled() {
		return nil, nil
	}

	if !s.provider.IsAvailable(ctx) {
		return &model.LLMSummary{
			Enabled:  false,
			Provider: s.provider.Name(),
			Warnings: []string{fmt.Sprintf("LLM provider %s is not available", s.provider.Name())},
		}, nil
	}

	resp, err := s.provider.Summarize(ctx, SummarizeRequest{
		Report:    report,
		Model:     s.config.Model,
		MaxTokens: s.config.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("summarize: %w", err)
	}

	return &model.LLMSummary{
		Enabled:   true,
		Provider:  s.provider.Name(),
		Model:     resp.Model,
		SummaryMD: resp.Summary,
		Warnings: []string{
			"Narrative only: scores were computed before this summary and are unaffected by it",
			fmt.Sprintf("Tokens used: %d", resp.TokensUsed),
		},
	}, nil
}

// RenderSeparateMarkdown renders a summary as a standalone Markdown document
func RenderSeparateMarkdown(summary *model.LLMSummary) string {
	if summary == nil || !summary.Enabled {
		return ""
	}

	var b strings.Builder
	b.WriteString("# LLM Summary\n\n")
	b.WriteString("> **GENERATED CONTENT** - written by a language model from the report below. ")
	b.WriteString("It does not change any score.\n\n")
	fmt.Fprintf(&b, "- **Provider**: %s\n", summary.Provider)
	fmt.Fprintf(&b, "- **Model**: %s\n\n", summary.Model)

	b.WriteString("## Summary\n\n")
	if strings.TrimSpace(summary.SummaryMD) == "" {
		b.WriteString("_No summary generated._\n")
	} else {
		b.WriteString(summary.SummaryMD)
		b.WriteString("\n")
	}

	if len(summary.Warnings) > 0 {
		b.WriteString("\n## Notes\n\n")
		for _, w := range summary.Warnings {
			fmt.Fprintf(&b, "- %s\n", w)
		}
	}

	return b.String()
}
