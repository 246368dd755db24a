package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/ppiankov/greenlens/internal/model"
)

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Summarize generates a narrative summary of a finished report
	Summarize(ctx context.Context, req SummarizeRequest) (*SummarizeResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// SummarizeRequest contains the input for LLM summarization
type SummarizeRequest struct {
	// Report is the finished deception report; its scores are final
	Report model.Report

	// Prompt is an optional custom prompt (if empty, use default)
	Prompt string

	// Model is the specific model to use (provider-specific)
	Model string

	// MaxTokens limits the response length
	MaxTokens int
}

// SummarizeResponse contains the LLM's summary output
type SummarizeResponse struct {
	Summary    string
	CitedURLs  []string
	Model      string
	TokensUsed int
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai" or "" (disabled). Ollama and other
	// OpenAI-compatible servers are reached through BaseURL.
	Provider string

	Model   string
	APIKey  string
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	// NoCitations rejects summaries that point readers at outside sources
	NoCitations bool

	MaxTokens int
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Timeout:     30,
		NoCitations: true,
		MaxTokens:   600,
	}
}

// BuildPrompt constructs the default summarization prompt from a finished report
func BuildPrompt(report model.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, `You are explaining a greenlens report to a shopper. greenlens scores how likely a product label is to mislead about sustainability. The scores below are final and computed deterministically.

CRITICAL RULES:
1. Do not change, recompute or dispute any score.
2. Do not cite URLs or outside sources. Use only the findings listed here.
3. If a finding is missing, say the label gives no evidence for it.
4. Describe what the label claims and what is unsupported. Never say a claim is true or false.

Report Summary:
- Overall Score: %.2f/100 (%s)
- Primary Deception Type: %s
- Claims Identified: %d
- Certifications Claimed: %d (%d questionable)
`, report.OverallScore, report.Severity, primaryType(report), report.NumClaims,
		len(report.Certifications.Claimed), report.Certifications.FakeDetected)

	if len(report.RedFlags) > 0 {
		b.WriteString("\nRed Flags:\n")
		for i, f := range report.RedFlags {
			if i >= 10 {
				fmt.Fprintf(&b, "... and %d more\n", len(report.RedFlags)-10)
				break
			}
			fmt.Fprintf(&b, "- [%s] %s\n", f.Severity, f.Flag)
		}
	}

	if len(report.Signals) > 0 {
		b.WriteString("\nScore Breakdown:\n")
		for _, s := range report.Signals {
			fmt.Fprintf(&b, "- %s: %.2f (weight %.2f) %s\n", s.Type, s.Score, s.Weight, s.Description)
		}
	}

	b.WriteString("\nProvide a 3-4 sentence summary for a shopper, focusing on which claims lack evidence.")

	return b.String()
}

func primaryType(report model.Report) model.DeceptionType {
	if report.PrimaryDeceptionType == "" {
		return model.DeceptionNone
	}
	return report.PrimaryDeceptionType
}
