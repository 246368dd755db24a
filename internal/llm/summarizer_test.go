package llm

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ppiankov/greenlens/internal/model"
)

// MockProvider implements the Provider interface for testing
type MockProvider struct {
	name      string
	available bool
	response  *SummarizeResponse
	err       error
	lastReq   SummarizeRequest
}

func (m *MockProvider) Name() string {
	return m.name
}

func (m *MockProvider) Summarize(ctx context.Context, req SummarizeRequest) (*SummarizeResponse, error) {
	m.lastReq = req
	if m.err != nil {
		return nil, m.err
	}
	return m.response, nil
}

func (m *MockProvider) IsAvailable(ctx context.Context) bool {
	return m.available
}

func sampleReport() model.Report {
	return model.Report{
		Success:              true,
		OverallScore:         63.4,
		Severity:             model.SeverityHigh,
		PrimaryDeceptionType: model.DeceptionGreenwashing,
		NumClaims:            3,
		Certifications: model.CertificationSummary{
			Claimed:      []string{"USDA Organic", "Eco-Certified"},
			FakeDetected: 1,
		},
		RedFlags: []model.RedFlag{
			{Source: model.SourceCertification, Flag: "Questionable certification: Eco-Certified", Severity: model.FlagCritical},
			{Source: model.SourceVisual, Flag: "Excessive green coloring (72.0%)", Severity: model.FlagMedium},
		},
		Signals: []model.Signal{
			{Type: model.SignalNLP, Score: 70, Weight: 0.4, Description: "Claim credibility and vagueness"},
		},
	}
}

func TestNewSummarizer_DisabledProvider(t *testing.T) {
	summarizer, err := NewSummarizer(Config{Provider: ""})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if summarizer.provider != nil {
		t.Error("Expected provider to be nil when disabled")
	}
	if summarizer.IsEnabled() {
		t.Error("Expected summarizer to be disabled")
	}
	if summarizer.ProviderName() != "" {
		t.Error("Expected empty provider name when disabled")
	}
}

func TestNewSummarizer_UnknownProvider(t *testing.T) {
	if _, err := NewSummarizer(Config{Provider: "carrier-pigeon"}); err == nil {
		t.Fatal("Expected error for unknown provider")
	}
}

func TestNewProvider_Ollama(t *testing.T) {
	p, err := NewProvider(Config{Provider: "ollama", Model: "llama3"})
	if err != nil {
		t.Fatalf("Expected ollama to work without an API key, got %v", err)
	}
	if p.Name() != "ollama" {
		t.Errorf("Expected ollama provider name, got %s", p.Name())
	}
}

func TestSummarizer_GenerateSummary_Disabled(t *testing.T) {
	var summarizer *Summarizer

	summary, err := summarizer.GenerateSummary(context.Background(), sampleReport())
	if err != nil {
		t.Errorf("Expected no error when disabled, got %v", err)
	}
	if summary != nil {
		t.Error("Expected nil summary when provider disabled")
	}
}

func TestSummarizer_GenerateSummary_ProviderUnavailable(t *testing.T) {
	summarizer := NewSummarizerWithProvider(&MockProvider{name: "test-provider"}, Config{})

	summary, err := summarizer.GenerateSummary(context.Background(), sampleReport())
	if err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
	if summary == nil {
		t.Fatal("Expected summary object with warnings")
	}
	if summary.Enabled {
		t.Error("Expected summary to be marked as disabled")
	}
	if len(summary.Warnings) != 1 || !strings.Contains(summary.Warnings[0], "not available") {
		t.Errorf("Expected warning about provider unavailability, got %v", summary.Warnings)
	}
}

func TestSummarizer_GenerateSummary_Success(t *testing.T) {
	mock := &MockProvider{
		name:      "test-provider",
		available: true,
		response: &SummarizeResponse{
			Summary:    "The label leans on an unrecognised seal.",
			Model:      "test-model",
			TokensUsed: 150,
		},
	}
	summarizer := NewSummarizerWithProvider(mock, Config{Model: "test-model", MaxTokens: 200})

	summary, err := summarizer.GenerateSummary(context.Background(), sampleReport())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if !summary.Enabled {
		t.Error("Expected summary to be enabled")
	}
	if summary.Provider != "test-provider" {
		t.Errorf("Expected provider 'test-provider', got '%s'", summary.Provider)
	}
	if summary.Model != "test-model" {
		t.Errorf("Expected model 'test-model', got '%s'", summary.Model)
	}
	if summary.SummaryMD != "The label leans on an unrecognised seal." {
		t.Errorf("Unexpected summary text: '%s'", summary.SummaryMD)
	}
	if mock.lastReq.MaxTokens != 200 || mock.lastReq.Report.OverallScore != 63.4 {
		t.Errorf("Unexpected request passed to provider: %+v", mock.lastReq)
	}

	foundTokens := false
	for _, warning := range summary.Warnings {
		if strings.Contains(warning, "Tokens used: 150") {
			foundTokens = true
		}
	}
	if !foundTokens {
		t.Errorf("Expected warning about tokens used, got %v", summary.Warnings)
	}
}

func TestSummarizer_GenerateSummary_ProviderError(t *testing.T) {
	summarizer := NewSummarizerWithProvider(&MockProvider{
		name:      "test-provider",
		available: true,
		err:       errors.New("quota exceeded"),
	}, Config{})

	summary, err := summarizer.GenerateSummary(context.Background(), sampleReport())
	if err == nil {
		t.Fatal("Expected error from provider")
	}
	if summary != nil {
		t.Error("Expected nil summary on provider error")
	}
	if !strings.Contains(err.Error(), "quota exceeded") {
		t.Errorf("Expected wrapped provider error, got %v", err)
	}
}

func TestRenderSeparateMarkdown(t *testing.T) {
	if md := RenderSeparateMarkdown(nil); md != "" {
		t.Error("Expected empty markdown when nil")
	}
	if md := RenderSeparateMarkdown(&model.LLMSummary{Enabled: false}); md != "" {
		t.Error("Expected empty markdown when disabled")
	}

	md := RenderSeparateMarkdown(&model.LLMSummary{
		Enabled:   true,
		Provider:  "openai",
		Model:     "gpt-4o-mini",
		SummaryMD: "Generated summary content.",
		Warnings:  []string{"Tokens used: 150"},
	})

	for _, section := range []string{"# LLM Summary", "GENERATED CONTENT", "openai", "gpt-4o-mini", "Generated summary content.", "## Notes", "Tokens used: 150"} {
		if !strings.Contains(md, section) {
			t.Errorf("Expected markdown to contain %q", section)
		}
	}

	empty := RenderSeparateMarkdown(&model.LLMSummary{Enabled: true, Provider: "openai"})
	if !strings.Contains(empty, "No summary generated") {
		t.Error("Expected message about no summary")
	}
}

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt(sampleReport())

	required := []string{
		"CRITICAL RULES",
		"Do not change, recompute or dispute any score",
		"Do not cite URLs",
		"Overall Score: 63.40/100 (High Deception)",
		"Primary Deception Type: greenwashing",
		"Claims Identified: 3",
		"Certifications Claimed: 2 (1 questionable)",
		"[critical] Questionable certification: Eco-Certified",
		"nlp_analysis: 70.00 (weight 0.40)",
	}
	for _, r := range required {
		if !strings.Contains(prompt, r) {
			t.Errorf("Expected prompt to contain %q", r)
		}
	}
}

func TestBuildPrompt_EmptyReport(t *testing.T) {
	prompt := BuildPrompt(model.Report{})

	if !strings.Contains(prompt, "Primary Deception Type: none") {
		t.Error("Expected missing primary type to read as none")
	}
	if strings.Contains(prompt, "Red Flags:") {
		t.Error("Expected no red flag section without red flags")
	}
}

func TestBuildPrompt_ManyRedFlags(t *testing.T) {
	report := model.Report{}
	for i := 0; i < 14; i++ {
		report.RedFlags = append(report.RedFlags, model.RedFlag{Flag: "vague language", Severity: model.FlagMedium})
	}

	prompt := BuildPrompt(report)

	if !strings.Contains(prompt, "... and 4 more") {
		t.Error("Expected red flags to be truncated after 10")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Provider != "" {
		t.Error("Expected summaries to be disabled by default")
	}
	if !cfg.NoCitations {
		t.Error("Expected citations to be rejected by default")
	}
	if cfg.Timeout != 30 {
		t.Errorf("Expected 30s timeout, got %d", cfg.Timeout)
	}
}

func TestConfigFromModel(t *testing.T) {
	cfg := ConfigFromModel(model.LLMConfig{Provider: "openai", Model: "gpt-4o-mini", APIKey: "k", Timeout: 10, MaxTokens: 300})

	if cfg.Provider != "openai" || cfg.Model != "gpt-4o-mini" || cfg.APIKey != "k" || cfg.Timeout != 10 || cfg.MaxTokens != 300 {
		t.Errorf("Unexpected config: %+v", cfg)
	}
	if !cfg.NoCitations {
		t.Error("Expected citations to be rejected")
	}
}

func TestExtractURLs(t *testing.T) {
	urls := extractURLs("See https://example.com/a. Also (https://example.com/b) and https://example.com/a")

	if len(urls) != 2 || urls[0] != "https://example.com/a" || urls[1] != "https://example.com/b" {
		t.Errorf("Unexpected URLs: %v", urls)
	}
	if extractURLs("no links here") != nil {
		t.Error("Expected nil for text without URLs")
	}
}
