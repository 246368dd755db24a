// Package vision is the reference image analyzer: it recognises label text,
// judges the certification marks printed on the label and measures how hard
// the packaging leans on a green, natural palette.
package vision

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"math"
	"os"

	"github.com/ppiankov/greenlens/internal/model"
	"github.com/ppiankov/greenlens/internal/worker"
)

const (
	excessiveGreenBoost = 0.2
	natureImageryBoost  = 0.2
	visualShare         = 0.6
	certRiskShare       = 0.4
)

// Analyzer produces a CVResult bundle per image. It holds no per-call state.
type Analyzer struct {
	cfg      model.VisionConfig
	ocr      OCR
	registry *Registry
}

// NewAnalyzer wires an analyzer from its parts
func NewAnalyzer(cfg model.VisionConfig, ocr OCR, registry *Registry) *Analyzer {
	if ocr == nil {
		ocr = SidecarOCR{}
	}
	return &Analyzer{cfg: cfg, ocr: ocr, registry: registry}
}

// NewFromConfig loads the registry and chooses the OCR source. limiter paces
// the remote OCR endpoint and may be nil.
func NewFromConfig(cfg model.VisionConfig, limiter *worker.Limiter) (*Analyzer, error) {
	registry, err := LoadRegistry(cfg.RegistryFile)
	if err != nil {
		return nil, err
	}

	var ocr OCR = SidecarOCR{}
	if cfg.OCREndpoint != "" {
		ocr = NewHTTPOCR(cfg.OCREndpoint, cfg.OCRTimeout, limiter)
	}

	return NewAnalyzer(cfg, ocr, registry), nil
}

// AnalyzeImage analyses one image. Unreadable or undecodable images yield a
// bundle with Error set; a Go error means the OCR source itself failed.
func (a *Analyzer) AnalyzeImage(ctx context.Context, imagePath string) (*model.CVResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	img, err := a.loadImage(imagePath)
	if err != nil {
		return &model.CVResult{Error: fmt.Sprintf("Could not load image: %v", err)}, nil
	}

	ocr, err := a.ocr.Recognize(ctx, imagePath)
	if err != nil {
		return nil, fmt.Errorf("ocr: %w", err)
	}

	colors := analyzeColors(img, a.cfg.MaxSamples)
	claimed, certs := a.registry.Detect(ocr.Text)

	indicators := model.VisualIndicators{
		ExcessiveGreen:  colors.GreenPercentage > a.cfg.ExcessiveGreenThreshold,
		GreenPercentage: colors.GreenPercentage,
		NatureImagery:   colors.NaturePalette > a.cfg.NaturePaletteThreshold,
	}
	indicators.VisualDeceptionScore = visualDeceptionScore(indicators)

	overall := indicators.VisualDeceptionScore
	if len(certs) > 0 {
		overall = round2(visualShare*overall + certRiskShare*certificationRisk(certs))
	}

	return &model.CVResult{
		OCRResults:             ocr,
		CertificationsClaimed:  claimed,
		CertificationsVerified: certs,
		VisualGreenwashing:     indicators,
		ColorAnalysis:          colors,
		LabelRegions:           detectLabelRegions(img),
		OverallScore:           &overall,
	}, nil
}

func (a *Analyzer) loadImage(path string) (image.Image, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	if a.cfg.MaxImageBytes > 0 && info.Size() > a.cfg.MaxImageBytes {
		return nil, fmt.Errorf("image is %d bytes, limit is %d", info.Size(), a.cfg.MaxImageBytes)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	// The header alone decides whether the pixel buffer is affordable
	header, _, err := image.DecodeConfig(f)
	if err != nil {
		return nil, fmt.Errorf("unsupported or corrupt image: %w", err)
	}
	if pixels := int64(header.Width) * int64(header.Height); a.cfg.MaxPixels > 0 && pixels > a.cfg.MaxPixels {
		return nil, fmt.Errorf("image is %dx%d (%d pixels), limit is %d", header.Width, header.Height, pixels, a.cfg.MaxPixels)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("unsupported or corrupt image: %w", err)
	}
	return img, nil
}

func visualDeceptionScore(vi model.VisualIndicators) float64 {
	score := vi.GreenPercentage / 100
	if vi.ExcessiveGreen {
		score += excessiveGreenBoost
	}
	if vi.NatureImagery {
		score += natureImageryBoost
	}
	return round2(math.Min(1, math.Max(0, score)))
}

// certificationRisk is the mean risk of the detected marks: 1 for
// untrustworthy, 0.5 unverified, 0.25 partial, 0 verified
func certificationRisk(certs []model.Certification) float64 {
	var total float64
	for _, c := range certs {
		switch {
		case !c.Trustworthy:
			total += 1
		case c.Verified == model.Verified:
		case c.Verified == model.PartiallyVerified:
			total += 0.25
		default:
			total += 0.5
		}
	}
	return total / float64(len(certs))
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
