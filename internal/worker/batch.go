package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/greenlens/internal/model"
)

// ImageAnalyzer defines the interface for analyzing one product image
type ImageAnalyzer interface {
	AnalyzeImage(ctx context.Context, imagePath string) (*model.Report, error)
}

// ImageJob analyzes one image
type ImageJob struct {
	Path     string
	Analyzer ImageAnalyzer
}

// Execute executes the image job
func (j *ImageJob) Execute(ctx context.Context) Result {
	report, err := j.Analyzer.AnalyzeImage(ctx, j.Path)
	return &ImageResult{
		Path:   j.Path,
		Report: report,
		Error:  err,
	}
}

// ImageResult represents the result of an image job. A failed analysis may
// still carry a failure report.
type ImageResult struct {
	Path   string
	Report *model.Report
	Error  error
}

// GetError returns the error from the image result
func (r *ImageResult) GetError() error {
	return r.Error
}

// BatchProcessor analyzes many images concurrently
type BatchProcessor struct {
	analyzer    ImageAnalyzer
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(analyzer ImageAnalyzer, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		analyzer:    analyzer,
		concurrency: concurrency,
	}
}

// ProcessPaths analyzes every image and returns results in input order.
// A failure on one image never aborts the others.
func (b *BatchProcessor) ProcessPaths(ctx context.Context, paths []string) []*ImageResult {
	if len(paths) == 0 {
		return []*ImageResult{}
	}

	jobs := make([]Job, len(paths))
	for i, path := range paths {
		jobs[i] = &ImageJob{Path: path, Analyzer: b.analyzer}
	}

	results := Run(ctx, b.concurrency, jobs)

	imageResults := make([]*ImageResult, len(paths))
	for i, result := range results {
		if result == nil {
			err := ctx.Err()
			if err == nil {
				err = fmt.Errorf("not processed")
			}
			imageResults[i] = &ImageResult{Path: paths[i], Error: err}
			continue
		}
		imageResults[i] = result.(*ImageResult)
	}

	return imageResults
}

// ProcessFile reads image paths from a list file and analyzes them concurrently
func (b *BatchProcessor) ProcessFile(ctx context.Context, listPath string) ([]*ImageResult, error) {
	paths, err := ReadPathsFromFile(listPath)
	if err != nil {
		return nil, fmt.Errorf("read image list: %w", err)
	}

	return b.ProcessPaths(ctx, paths), nil
}

// ReadPathsFromFile reads image paths from a file (one per line). Relative
// paths are resolved against the list file's directory.
func ReadPathsFromFile(listPath string) ([]string, error) {
	file, err := os.Open(listPath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	baseDir := filepath.Dir(listPath)

	var paths []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !filepath.IsAbs(line) {
			line = filepath.Join(baseDir, line)
		}

		if !seen[line] {
			seen[line] = true
			paths = append(paths, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return paths, nil
}
