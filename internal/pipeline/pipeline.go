// Package pipeline runs deception analysis end to end: the detection engine,
// product page fetching and report rendering.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ppiankov/greenlens/internal/cache"
	"github.com/ppiankov/greenlens/internal/extract"
	"github.com/ppiankov/greenlens/internal/knowledge"
	"github.com/ppiankov/greenlens/internal/llm"
	"github.com/ppiankov/greenlens/internal/model"
	"github.com/ppiankov/greenlens/internal/score"
	"github.com/ppiankov/greenlens/internal/util"
	"github.com/ppiankov/greenlens/internal/vision"
	"github.com/ppiankov/greenlens/internal/worker"
)

const robotsTTL = 24 * time.Hour

// Pipeline wires the reference collaborators into a Detector and adds page
// fetching and rendering around it
type Pipeline struct {
	detector *Detector
	renderer *Renderer
	fetcher  *Fetcher
	cache    cache.Cache
}

// NewPipeline builds every collaborator from configuration
func NewPipeline(cfg *model.Config) (*Pipeline, error) {
	c, err := cache.New(cfg.Cache)
	if err != nil {
		return nil, fmt.Errorf("cache: %w", err)
	}

	graph, err := knowledge.NewFromConfig(cfg.Knowledge, c)
	if err != nil {
		return nil, err
	}

	limiter := worker.NewLimiterFromConfig(cfg.RateLimiting)

	analyzer, err := vision.NewFromConfig(cfg.Vision, limiter)
	if err != nil {
		return nil, fmt.Errorf("vision: %w", err)
	}

	scorer := score.NewScorer(cfg.Scoring)

	var opts []Option
	if cfg.LLM.Provider != "" {
		summarizer, err := llm.NewSummarizer(llm.ConfigFromModel(cfg.LLM))
		if err != nil {
			return nil, fmt.Errorf("llm: %w", err)
		}
		opts = append(opts, WithSummarizer(summarizer))
	}

	var robots *util.RobotsChecker
	if cfg.HTTP.RespectRobots {
		client := &http.Client{Timeout: cfg.HTTP.Timeout, Transport: newTransport(cfg.HTTP)}
		robots = util.NewRobotsChecker(client, cfg.HTTP.UserAgent, c, robotsTTL)
	}

	fetcher := NewFetcher(cfg.HTTP, robots)
	fetcher.SetLimiter(limiter)

	return &Pipeline{
		detector: NewDetector(extract.NewClaimExtractor(cfg.Extraction), analyzer, graph, scorer, opts...),
		renderer: NewRenderer(cfg.Output, scorer),
		fetcher:  fetcher,
		cache:    c,
	}, nil
}

// Detector returns the detection engine
func (p *Pipeline) Detector() *Detector {
	return p.detector
}

// Renderer returns the report renderer
func (p *Pipeline) Renderer() *Renderer {
	return p.renderer
}

// AnalyzeText runs the text pipeline
func (p *Pipeline) AnalyzeText(text string) model.TextAnalysis {
	return p.detector.AnalyzeText(text)
}

// AnalyzeImage runs the image pipeline
func (p *Pipeline) AnalyzeImage(ctx context.Context, imagePath string) (*model.Report, error) {
	return p.detector.AnalyzeImage(ctx, imagePath)
}

// AnalyzeHTML runs the text pipeline over the visible text of a page
func (p *Pipeline) AnalyzeHTML(htmlContent string) (model.TextAnalysis, error) {
	text, err := extract.PageText(htmlContent)
	if err != nil {
		return model.TextAnalysis{}, fmt.Errorf("extract page text: %w", err)
	}
	return p.detector.AnalyzeText(text), nil
}

// AnalyzeURL fetches a product page and analyses its text
func (p *Pipeline) AnalyzeURL(ctx context.Context, rawURL string) (model.TextAnalysis, *FetchResult, error) {
	page, err := p.fetcher.FetchWithRetry(ctx, rawURL)
	if err != nil {
		return model.TextAnalysis{}, nil, fmt.Errorf("fetch: %w", err)
	}

	ta, err := p.AnalyzeHTML(page.HTML)
	if err != nil {
		return model.TextAnalysis{}, page, err
	}
	return ta, page, nil
}

// Close releases the verdict cache
func (p *Pipeline) Close() error {
	if closer, ok := p.cache.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
