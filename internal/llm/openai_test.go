package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/ppiankov/greenlens/internal/model"
)

func chatServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("Expected path /chat/completions, got %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("Expected Authorization header Bearer test-key, got %s", r.Header.Get("Authorization"))
		}

		resp := openai.ChatCompletionResponse{
			ID:      "chatcmpl-123",
			Object:  "chat.completion",
			Created: 1677652288,
			Model:   "gpt-4o-mini",
			Choices: []openai.ChatCompletionChoice{
				{
					Index: 0,
					Message: openai.ChatCompletionMessage{
						Role:    "assistant",
						Content: content,
					},
					FinishReason: "stop",
				},
			},
			Usage: openai.Usage{TotalTokens: 100},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func TestOpenAIProvider_Summarize_Success(t *testing.T) {
	server := chatServer(t, "  Two of three claims lack evidence.  ")
	defer server.Close()

	provider, err := NewOpenAIProvider(Config{
		APIKey:      "test-key",
		BaseURL:     server.URL,
		Model:       "gpt-4o-mini",
		Timeout:     5,
		NoCitations: true,
	})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	resp, err := provider.Summarize(context.Background(), SummarizeRequest{Report: model.Report{OverallScore: 42}})
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}

	if resp.Summary != "Two of three claims lack evidence." {
		t.Errorf("Unexpected summary: %s", resp.Summary)
	}
	if resp.Model != "gpt-4o-mini" {
		t.Errorf("Unexpected model: %s", resp.Model)
	}
	if resp.TokensUsed != 100 {
		t.Errorf("Expected 100 tokens, got %d", resp.TokensUsed)
	}
}

func TestOpenAIProvider_Summarize_CitationLeak(t *testing.T) {
	server := chatServer(t, "See https://greenfacts.example.org for details.")
	defer server.Close()

	provider, err := NewOpenAIProvider(Config{APIKey: "test-key", BaseURL: server.URL, Timeout: 5, NoCitations: true})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	if _, err := provider.Summarize(context.Background(), SummarizeRequest{}); err == nil {
		t.Fatal("Expected citation leak error, got nil")
	}

	lenient, err := NewOpenAIProvider(Config{APIKey: "test-key", BaseURL: server.URL, Timeout: 5})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}
	resp, err := lenient.Summarize(context.Background(), SummarizeRequest{})
	if err != nil {
		t.Fatalf("Expected lenient provider to accept citations, got %v", err)
	}
	if len(resp.CitedURLs) != 1 || resp.CitedURLs[0] != "https://greenfacts.example.org" {
		t.Errorf("Unexpected cited URLs: %v", resp.CitedURLs)
	}
}

func TestOpenAIProvider_RequiresKeyOrBaseURL(t *testing.T) {
	if _, err := NewOpenAIProvider(Config{}); err == nil {
		t.Error("Expected error without API key or base URL")
	}
	if _, err := NewOpenAIProvider(Config{BaseURL: "http://localhost:11434/v1"}); err != nil {
		t.Errorf("Expected self-hosted endpoint to work without key, got %v", err)
	}
}

func TestOpenAIProvider_Summarize_Errors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error": {"message": "Internal Server Error", "type": "server_error"}}`))
		}},
		{"rate limit", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error": {"message": "Rate limit exceeded", "type": "rate_limit_error"}}`))
		}},
		{"malformed json", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{malformed json`))
		}},
		{"no choices", func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{ID: "chatcmpl-1"})
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			provider, err := NewOpenAIProvider(Config{APIKey: "test-key", BaseURL: server.URL, Timeout: 5})
			if err != nil {
				t.Fatalf("Failed to create provider: %v", err)
			}

			if _, err := provider.Summarize(context.Background(), SummarizeRequest{}); err == nil {
				t.Fatal("Expected error, got nil")
			}
		})
	}
}

func TestOpenAIProvider_Summarize_ContextDeadline(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(50 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	provider, err := NewOpenAIProvider(Config{APIKey: "test-key", BaseURL: server.URL, Timeout: 1})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if _, err := provider.Summarize(ctx, SummarizeRequest{}); err == nil {
		t.Fatal("Expected timeout error, got nil")
	}
}

func TestOpenAIProvider_IsAvailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/models" {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"data": [{"id": "gpt-4o-mini"}]}`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	provider, err := NewOpenAIProvider(Config{APIKey: "test-key", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	if !provider.IsAvailable(context.Background()) {
		t.Error("Expected available to be true")
	}

	server.Config.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	if provider.IsAvailable(context.Background()) {
		t.Error("Expected available to be false on error")
	}
}

func TestOpenAIProvider_Summarize_ScoreDrift(t *testing.T) {
	server := chatServer(t, "Overall this label scores 35/100, which is fine.")
	defer server.Close()

	provider, err := NewOpenAIProvider(Config{APIKey: "test-key", BaseURL: server.URL, Timeout: 5})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	if _, err := provider.Summarize(context.Background(), SummarizeRequest{Report: model.Report{OverallScore: 77.5}}); err == nil {
		t.Fatal("Expected score drift error, got nil")
	}
	if _, err := provider.Summarize(context.Background(), SummarizeRequest{Report: model.Report{OverallScore: 35}}); err != nil {
		t.Errorf("Expected matching score to pass, got %v", err)
	}
}

func TestCheckScoreDrift(t *testing.T) {
	tests := []struct {
		summary string
		score   float64
		wantErr bool
	}{
		{"No numbers here.", 50, false},
		{"It scored 77.50/100.", 77.5, false},
		{"It scored 77.5 out of 100.", 77.5, false},
		{"It scored 77.5 / 100 and 12/100 on visuals.", 77.5, true},
		{"A score of 20 out of 100 would be better.", 77.5, true},
		{"Uses 100% recycled paper.", 10, false},
	}
	for _, tt := range tests {
		if err := checkScoreDrift(tt.summary, tt.score); (err != nil) != tt.wantErr {
			t.Errorf("checkScoreDrift(%q, %v) error = %v, wantErr %v", tt.summary, tt.score, err, tt.wantErr)
		}
	}
}

func TestOpenAIProvider_Name(t *testing.T) {
	openaiProvider, _ := NewOpenAIProvider(Config{APIKey: "k"})
	ollamaProvider, _ := NewOpenAIProvider(Config{Provider: "ollama", BaseURL: DefaultOllamaURL})

	if openaiProvider.Name() != "openai" || ollamaProvider.Name() != "ollama" {
		t.Errorf("Unexpected names: %s, %s", openaiProvider.Name(), ollamaProvider.Name())
	}
}
