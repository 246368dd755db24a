package model

// Claim represents one marketing assertion extracted from product text
type Claim struct {
	Text             string          `json:"text"`                      // The claim text itself
	Type             ClaimType       `json:"type"`                      // Primary claim classification
	Category         string          `json:"category,omitempty"`        // Secondary label (e.g., "carbon", "material")
	Heuristic        string          `json:"heuristic,omitempty"`       // Which extraction rule matched (e.g., "carbon:net zero")
	Sentence         int             `json:"sentence,omitempty"`        // Sentence index in source (0-based)
	VaguenessScore   float64         `json:"vagueness_score"`           // 0 = precise, 1 = entirely vague
	SpecificityScore float64         `json:"specificity_score"`         // 0 = no specifics, 1 = fully measurable
	RedFlags         []string        `json:"red_flags"`                 // Short issue codes (e.g., "absolute claim")
	Credibility      *Credibility    `json:"credibility,omitempty"`     // Attached after extraction
	KGVerification   *KGVerification `json:"kg_verification,omitempty"` // Attached after extraction
}

// ClaimType categorizes the nature of the claim
type ClaimType string

const (
	ClaimTypeEnvironmental ClaimType = "environmental"
	ClaimTypeCarbon        ClaimType = "carbon_claim"
	ClaimTypeMaterial      ClaimType = "material_claim"
	ClaimTypeReduction     ClaimType = "reduction_claim"
	ClaimTypeSocial        ClaimType = "social"
	ClaimTypeLabor         ClaimType = "labor_claim"
	ClaimTypeCommunity     ClaimType = "community_claim"
	ClaimTypeCertification ClaimType = "certification"
	ClaimTypeTemporal      ClaimType = "temporal"
	ClaimTypeCommitment    ClaimType = "commitment"
	ClaimTypeUnknown       ClaimType = "unknown"
)

// ClaimTypes lists every known claim type in declaration order
var ClaimTypes = []ClaimType{
	ClaimTypeEnvironmental,
	ClaimTypeCarbon,
	ClaimTypeMaterial,
	ClaimTypeReduction,
	ClaimTypeSocial,
	ClaimTypeLabor,
	ClaimTypeCommunity,
	ClaimTypeCertification,
	ClaimTypeTemporal,
	ClaimTypeCommitment,
	ClaimTypeUnknown,
}

// ParseClaimType maps a raw string to a ClaimType, falling back to unknown
func ParseClaimType(s string) ClaimType {
	for _, t := range ClaimTypes {
		if string(t) == s {
			return t
		}
	}
	return ClaimTypeUnknown
}

// Credibility is the extractor's judgment of a single claim
type Credibility struct {
	Score  float64  `json:"score"`  // 0 = not credible, 1 = fully credible
	Issues []string `json:"issues"` // Human-readable reasons for deductions
}

// NeutralCredibility is assumed when no judgment is attached
const NeutralCredibility = 0.5

// KGVerification is the knowledge graph verdict for a single claim
type KGVerification struct {
	Verified              bool     `json:"verified"`
	Confidence            float64  `json:"confidence"`
	RequiresCertification bool     `json:"requires_certification"`
	CertificationFound    bool     `json:"certification_found"`
	Contradictions        []string `json:"contradictions"`
	Evidence              []string `json:"evidence"`
}

// CredibilityScore returns the attached credibility score or the neutral default
func (c Claim) CredibilityScore() float64 {
	if c.Credibility == nil {
		return NeutralCredibility
	}
	return c.Credibility.Score
}

// IsVerified reports whether the knowledge graph verified the claim
func (c Claim) IsVerified() bool {
	return c.KGVerification != nil && c.KGVerification.Verified
}

// Contradictions returns the contradictions recorded by the knowledge graph
func (c Claim) Contradictions() []string {
	if c.KGVerification == nil {
		return nil
	}
	return c.KGVerification.Contradictions
}

// MissingCertification reports whether the claim needs a certification that was not found
func (c Claim) MissingCertification() bool {
	return c.KGVerification != nil && c.KGVerification.RequiresCertification && !c.KGVerification.CertificationFound
}
