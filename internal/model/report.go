package model

import "time"

// Report represents the complete deception analysis of one product image.
// A failed analysis carries Success=false and Error and nothing else.
type Report struct {
	ID        string    `json:"id,omitempty"`
	Success   bool      `json:"success"`
	Error     string    `json:"error,omitempty"`
	ImagePath string    `json:"image_path,omitempty"`
	Timestamp time.Time `json:"timestamp,omitzero"`

	// Overall assessment
	OverallScore         float64         `json:"overall_score"` // 0 = trustworthy, 100 = severe deception
	Severity             Severity        `json:"severity,omitempty"`
	PrimaryDeceptionType DeceptionType   `json:"primary_deception_type,omitempty"`
	AllDeceptionTypes    []DeceptionType `json:"all_deception_types"`
	ComponentScores      ComponentScores `json:"component_scores"`

	// Detailed findings
	Claims           []Claim              `json:"claims_analysis"`
	NumClaims        int                  `json:"num_claims"`
	Certifications   CertificationSummary `json:"certifications"`
	VisualIndicators VisualIndicators     `json:"visual_indicators"`
	RedFlags         []RedFlag            `json:"red_flags"`
	MissingEvidence  []string             `json:"missing_evidence"`
	Recommendations  []string             `json:"recommendations"`
	Signals          []Signal             `json:"signals"` // Transparent scoring breakdown

	RawData RawData `json:"raw_data"`

	LLM *LLMSummary `json:"llm,omitempty"` // Optional narrative (separate, never affects score)
}

// Err returns the upstream failure carried by the report, if any
func (r *Report) Err() error {
	if r == nil || r.Success {
		return nil
	}
	return &UpstreamError{Message: r.Error}
}

// UpstreamError is returned when a collaborator failed and no report was produced
type UpstreamError struct {
	Message string
}

func (e *UpstreamError) Error() string {
	return "upstream failure: " + e.Message
}

// FailedReport builds the explicit failure marker for an upstream error
func FailedReport(imagePath, message string) *Report {
	return &Report{
		Success:   false,
		Error:     message,
		ImagePath: imagePath,
	}
}

// TextAnalysis is the result of the text-only pipeline
type TextAnalysis struct {
	Text          string        `json:"text"`
	Claims        []Claim       `json:"claims"`
	NumClaims     int           `json:"num_claims"`
	OverallScore  float64       `json:"overall_score"`
	DeceptionType DeceptionType `json:"deception_type"`
	Severity      Severity      `json:"severity"`
}

// ComponentScores holds the four fused inputs (each 0-100)
type ComponentScores struct {
	NLPAnalysis               float64 `json:"nlp_analysis"`
	CertificationVerification float64 `json:"certification_verification"`
	VisualAnalysis            float64 `json:"visual_analysis"`
	KnowledgeGraph            float64 `json:"knowledge_graph"`
}

// CertificationSummary aggregates certification findings
type CertificationSummary struct {
	Claimed      []string        `json:"claimed"`
	Verified     []Certification `json:"verified"`
	FakeDetected int             `json:"fake_detected"`
}

// RawData keeps upstream bundles for traceability
type RawData struct {
	OCRResults    OCRResult     `json:"ocr_results"`
	ColorAnalysis ColorAnalysis `json:"color_analysis"`
	LabelRegions  []LabelRegion `json:"label_regions"`
}

// RedFlag is one specific issue found during analysis
type RedFlag struct {
	Source   RedFlagSource   `json:"source"`
	Claim    string          `json:"claim,omitempty"`
	Flag     string          `json:"flag"`
	Severity RedFlagSeverity `json:"severity"`
}

// RedFlagSource identifies which analysis produced a red flag
type RedFlagSource string

const (
	SourceClaimAnalysis RedFlagSource = "claim_analysis"
	SourceCertification RedFlagSource = "certification"
	SourceVisual        RedFlagSource = "visual"
)

// RedFlagSeverity indicates the importance of a red flag
type RedFlagSeverity string

const (
	FlagMedium   RedFlagSeverity = "medium"
	FlagHigh     RedFlagSeverity = "high"
	FlagCritical RedFlagSeverity = "critical"
)

// Severity is the human-readable band of an overall score
type Severity string

const (
	SeverityTrustworthy Severity = "Trustworthy"
	SeverityMinor       Severity = "Minor Concerns"
	SeverityModerate    Severity = "Moderate Deception"
	SeverityHigh        Severity = "High Deception"
	SeveritySevere      Severity = "Severe Deception"
)

// DeceptionType classifies the kind of sustainability deception
type DeceptionType string

const (
	DeceptionNone               DeceptionType = "none"
	DeceptionGreenwashing       DeceptionType = "greenwashing"
	DeceptionBrownwashing       DeceptionType = "brownwashing"
	DeceptionBluewashing        DeceptionType = "bluewashing"
	DeceptionCertificationFraud DeceptionType = "certification_fraud"
	DeceptionTemporalEvasion    DeceptionType = "temporal_evasion"
	DeceptionVagueCommitment    DeceptionType = "vague_commitment"
	DeceptionMixed              DeceptionType = "mixed"
	DeceptionVagueClaims        DeceptionType = "vague_claims"
	DeceptionVisual             DeceptionType = "visual_greenwashing"
	DeceptionFakeCertifications DeceptionType = "fake_certifications"
)

// Signal represents a diagnostic signal with transparent scoring data
type Signal struct {
	Type        SignalType         `json:"type"`
	Score       float64            `json:"score"`  // Component score (0-100)
	Weight      float64            `json:"weight"` // Share of the final score
	Description string             `json:"description"`
	Formula     string             `json:"formula"`
	Inputs      map[string]float64 `json:"inputs"` // Values the formula was evaluated with
}

// SignalType names the component a signal explains
type SignalType string

const (
	SignalNLP            SignalType = "nlp_analysis"
	SignalCertification  SignalType = "certification_verification"
	SignalVisual         SignalType = "visual_analysis"
	SignalKnowledgeGraph SignalType = "knowledge_graph"
)

// LLMSummary contains the optional LLM-generated narrative
// CRITICAL: This never affects scoring and is clearly separated
type LLMSummary struct {
	Enabled   bool     `json:"enabled"`
	Provider  string   `json:"provider,omitempty"`
	Model     string   `json:"model,omitempty"`
	SummaryMD string   `json:"summary_md,omitempty"`
	Warnings  []string `json:"warnings"`
}
