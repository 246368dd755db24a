package vision

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ppiankov/greenlens/internal/model"
	"github.com/ppiankov/greenlens/internal/worker"
)

// OCR recognises label text in an image
type OCR interface {
	Recognize(ctx context.Context, imagePath string) (model.OCRResult, error)
}

// SidecarOCR reads label text transcribed next to the image, either
// "label.png.txt" or "label.txt". No sidecar means no text.
type SidecarOCR struct{}

func (SidecarOCR) Recognize(ctx context.Context, imagePath string) (model.OCRResult, error) {
	if err := ctx.Err(); err != nil {
		return model.OCRResult{}, err
	}

	candidates := []string{
		imagePath + ".txt",
		strings.TrimSuffix(imagePath, filepath.Ext(imagePath)) + ".txt",
	}
	for _, c := range candidates {
		data, err := os.ReadFile(c)
		if err == nil {
			return model.OCRResult{
				Text:       strings.TrimSpace(string(data)),
				Source:     "sidecar",
				Confidence: 1,
			}, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return model.OCRResult{}, fmt.Errorf("failed to read OCR sidecar: %w", err)
		}
	}

	return model.OCRResult{Source: "none"}, nil
}

// HTTPOCR posts images to a remote OCR service that answers
// {"text": "...", "confidence": 0.93}
type HTTPOCR struct {
	endpoint string
	client   *http.Client
	limiter  *worker.Limiter
}

// NewHTTPOCR creates a remote OCR client. limiter may be nil.
func NewHTTPOCR(endpoint string, timeout time.Duration, limiter *worker.Limiter) *HTTPOCR {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPOCR{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
		limiter:  limiter,
	}
}

type ocrResponse struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

func (o *HTTPOCR) Recognize(ctx context.Context, imagePath string) (model.OCRResult, error) {
	if o.limiter != nil {
		if err := o.limiter.Wait(ctx, o.endpoint); err != nil {
			return model.OCRResult{}, fmt.Errorf("rate limit wait failed: %w", err)
		}
	}

	body, contentType, err := multipartImage(imagePath)
	if err != nil {
		return model.OCRResult{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.endpoint, body)
	if err != nil {
		return model.OCRResult{}, fmt.Errorf("failed to create OCR request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return model.OCRResult{}, fmt.Errorf("OCR request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return model.OCRResult{}, fmt.Errorf("OCR service returned %s: %s", resp.Status, strings.TrimSpace(string(msg)))
	}

	var out ocrResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return model.OCRResult{}, fmt.Errorf("failed to decode OCR response: %w", err)
	}

	return model.OCRResult{
		Text:       strings.TrimSpace(out.Text),
		Source:     "remote",
		Confidence: out.Confidence,
	}, nil
}

func multipartImage(path string) (*bytes.Buffer, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open image: %w", err)
	}
	defer func() { _ = f.Close() }()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("image", filepath.Base(path))
	if err != nil {
		return nil, "", fmt.Errorf("failed to build OCR request: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, "", fmt.Errorf("failed to read image: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to build OCR request: %w", err)
	}
	return &buf, mw.FormDataContentType(), nil
}
