package model

// CVResult is the bundle produced by the vision analyzer for one image
type CVResult struct {
	OCRResults             OCRResult        `json:"ocr_results"`
	CertificationsClaimed  []string         `json:"certifications_claimed"`
	CertificationsVerified []Certification  `json:"certifications_verified"`
	VisualGreenwashing     VisualIndicators `json:"visual_greenwashing"`
	ColorAnalysis          ColorAnalysis    `json:"color_analysis"`
	LabelRegions           []LabelRegion    `json:"label_regions"`
	OverallScore           *float64         `json:"overall_score,omitempty"` // 0-1, nil when the analyzer has no opinion
	Error                  string           `json:"error,omitempty"`         // Non-empty short-circuits downstream processing
}

// NeutralVisualScore is assumed when the analyzer reports no overall score
const NeutralVisualScore = 0.5

// VisualScore returns the overall visual score or the neutral default
func (r *CVResult) VisualScore() float64 {
	if r == nil || r.OverallScore == nil {
		return NeutralVisualScore
	}
	return *r.OverallScore
}

// Failed reports whether the analyzer signalled an upstream error
func (r *CVResult) Failed() bool {
	return r != nil && r.Error != ""
}

// FakeCertifications returns the certifications marked untrustworthy
func (r *CVResult) FakeCertifications() []Certification {
	if r == nil {
		return nil
	}
	var fake []Certification
	for _, c := range r.CertificationsVerified {
		if !c.Trustworthy {
			fake = append(fake, c)
		}
	}
	return fake
}

// OCRResult holds recognized label text
type OCRResult struct {
	Text       string  `json:"text"`
	Source     string  `json:"source,omitempty"`     // sidecar, remote, none
	Confidence float64 `json:"confidence,omitempty"` // 0-1 when the OCR engine reports it
}

// VisualIndicators are colour/imagery greenwashing indicators
type VisualIndicators struct {
	ExcessiveGreen       bool    `json:"excessive_green"`
	GreenPercentage      float64 `json:"green_percentage"`
	NatureImagery        bool    `json:"nature_imagery"`
	VisualDeceptionScore float64 `json:"visual_deception_score"`
}

// ColorAnalysis summarizes the pixel palette of an image
type ColorAnalysis struct {
	Width              int          `json:"width,omitempty"`
	Height             int          `json:"height,omitempty"`
	GreenPercentage    float64      `json:"green_percentage"`
	EarthPercentage    float64      `json:"earth_percentage"`
	BluePercentage     float64      `json:"blue_percentage"`
	NaturePalette      float64      `json:"nature_palette"`
	DominantColors     []ColorShare `json:"dominant_colors"`
	SampledPixelsCount int          `json:"sampled_pixels"`
}

// ColorShare is one dominant colour bucket
type ColorShare struct {
	Hex        string  `json:"hex"`
	Percentage float64 `json:"percentage"`
}

// LabelRegion is a rectangular area likely to contain printed label text
type LabelRegion struct {
	X          int     `json:"x"`
	Y          int     `json:"y"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	Confidence float64 `json:"confidence"`
}
