package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ppiankov/greenlens/internal/model"
	"github.com/ppiankov/greenlens/internal/score"
)

// ClaimExtractor finds claims in label text and judges each one
type ClaimExtractor interface {
	ExtractClaims(text string) []model.Claim
	AnalyzeCredibility(claim model.Claim) model.Credibility
}

// VisionAnalyzer turns one product image into a CVResult bundle
type VisionAnalyzer interface {
	AnalyzeImage(ctx context.Context, imagePath string) (*model.CVResult, error)
}

// KnowledgeGraph verifies a single claim
type KnowledgeGraph interface {
	VerifyClaim(text string, claimType model.ClaimType) model.KGVerification
}

// Summarizer writes the optional narrative for a finished report
type Summarizer interface {
	GenerateSummary(ctx context.Context, report model.Report) (*model.LLMSummary, error)
}

// Detector is the deception detection engine. It is stateless per call and
// safe for concurrent use when its collaborators are.
type Detector struct {
	extractor  ClaimExtractor
	vision     VisionAnalyzer
	graph      KnowledgeGraph
	scorer     *score.Scorer
	summarizer Summarizer
	now        func() time.Time
	newID      func() string
}

// Option customises a Detector
type Option func(*Detector)

// WithSummarizer attaches a narrative summarizer
func WithSummarizer(s Summarizer) Option {
	return func(d *Detector) { d.summarizer = s }
}

// WithClock replaces the report timestamp source
func WithClock(now func() time.Time) Option {
	return func(d *Detector) { d.now = now }
}

// WithIDGenerator replaces the report ID source
func WithIDGenerator(newID func() string) Option {
	return func(d *Detector) { d.newID = newID }
}

// NewDetector wires the engine. A nil scorer uses the default scoring tables.
func NewDetector(extractor ClaimExtractor, vision VisionAnalyzer, graph KnowledgeGraph, scorer *score.Scorer, opts ...Option) *Detector {
	if scorer == nil {
		scorer = score.NewDefaultScorer()
	}
	d := &Detector{
		extractor: extractor,
		vision:    vision,
		graph:     graph,
		scorer:    scorer,
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Scorer returns the scorer the engine fuses with
func (d *Detector) Scorer() *score.Scorer {
	return d.scorer
}

// AnalyzeText runs the text-only pipeline. Blank text or text without claims
// yields a zero score rather than an error.
func (d *Detector) AnalyzeText(text string) model.TextAnalysis {
	if strings.TrimSpace(text) == "" {
		return d.noClaims(text)
	}

	claims := d.extractor.ExtractClaims(text)
	if len(claims) == 0 {
		return d.noClaims(text)
	}

	for i := range claims {
		cred := d.extractor.AnalyzeCredibility(claims[i])
		claims[i].Credibility = &cred

		kg := d.graph.VerifyClaim(claims[i].Text, claims[i].Type)
		claims[i].KGVerification = &kg
	}

	overall := d.scorer.TextScore(claims)

	return model.TextAnalysis{
		Text:          text,
		Claims:        claims,
		NumClaims:     len(claims),
		OverallScore:  overall,
		DeceptionType: d.scorer.MajorityType(claims),
		Severity:      d.scorer.Severity(overall),
	}
}

func (d *Detector) noClaims(text string) model.TextAnalysis {
	return model.TextAnalysis{
		Text:          text,
		Claims:        []model.Claim{},
		OverallScore:  0,
		DeceptionType: model.DeceptionNone,
		Severity:      d.scorer.Severity(0),
	}
}

// AnalyzeImage runs the full image pipeline. When the vision analyzer fails,
// the returned report is the failure marker and err is its *model.UpstreamError;
// no other collaborator is consulted.
func (d *Detector) AnalyzeImage(ctx context.Context, imagePath string) (*model.Report, error) {
	cv, err := d.vision.AnalyzeImage(ctx, imagePath)
	switch {
	case err != nil:
		return d.fail(imagePath, err.Error())
	case cv == nil:
		return d.fail(imagePath, "vision analyzer returned no result")
	case cv.Failed():
		return d.fail(imagePath, cv.Error)
	}

	text := d.noClaims("")
	if strings.TrimSpace(cv.OCRResults.Text) != "" {
		text = d.AnalyzeText(cv.OCRResults.Text)
	}

	fusion := d.scorer.Fuse(text.Claims, text.OverallScore, cv)
	types := d.scorer.IdentifyTypes(text.Claims, cv)

	report := &model.Report{
		ID:                   d.newID(),
		Success:              true,
		ImagePath:            imagePath,
		Timestamp:            d.now(),
		OverallScore:         fusion.Final,
		Severity:             d.scorer.Severity(fusion.Final),
		PrimaryDeceptionType: types.Primary,
		AllDeceptionTypes:    types.All,
		ComponentScores:      fusion.Components,
		Claims:               text.Claims,
		NumClaims:            text.NumClaims,
		Certifications: model.CertificationSummary{
			Claimed:      cv.CertificationsClaimed,
			Verified:     cv.CertificationsVerified,
			FakeDetected: len(cv.FakeCertifications()),
		},
		VisualIndicators: cv.VisualGreenwashing,
		RedFlags:         d.scorer.RedFlags(text.Claims, cv),
		MissingEvidence:  d.scorer.MissingEvidence(text.Claims),
		Recommendations:  d.scorer.Recommendations(fusion.Final, types.All),
		Signals:          fusion.Signals,
		RawData: model.RawData{
			OCRResults:    cv.OCRResults,
			ColorAnalysis: cv.ColorAnalysis,
			LabelRegions:  cv.LabelRegions,
		},
	}

	if d.summarizer != nil {
		summary, err := d.summarizer.GenerateSummary(ctx, *report)
		if err != nil {
			report.LLM = &model.LLMSummary{
				Warnings: []string{fmt.Sprintf("LLM summary generation failed: %v", err)},
			}
		} else {
			report.LLM = summary
		}
	}

	return report, nil
}

func (d *Detector) fail(imagePath, message string) (*model.Report, error) {
	report := model.FailedReport(imagePath, message)
	return report, report.Err()
}
