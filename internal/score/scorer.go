package score

import (
	"fmt"
	"math"
	"sort"

	"github.com/ppiankov/greenlens/internal/model"
)

// Scorer fuses claim, certification, visual and knowledge graph signals into
// a deception score. It owns a private copy of its configuration and holds no
// other state, so one Scorer may be shared between goroutines.
type Scorer struct {
	cfg model.ScoringConfig
}

// NewScorer creates a scorer with the given scoring tables
func NewScorer(cfg model.ScoringConfig) *Scorer {
	cfg = cloneConfig(cfg)
	if len(cfg.Bands) == 0 {
		cfg.Bands = model.DefaultScoringConfig().Bands
	}
	sort.SliceStable(cfg.Bands, func(i, j int) bool {
		return cfg.Bands[i].Min < cfg.Bands[j].Min
	})
	return &Scorer{cfg: cfg}
}

// NewDefaultScorer creates a scorer with the standard scoring tables
func NewDefaultScorer() *Scorer {
	return NewScorer(model.DefaultScoringConfig())
}

// Config returns a copy of the scoring tables in use
func (s *Scorer) Config() model.ScoringConfig {
	return cloneConfig(s.cfg)
}

// Fusion is the result of combining the four component scores
type Fusion struct {
	Final      float64               // Weighted, clamped and rounded (0-100)
	Components model.ComponentScores // Each clamped and rounded (0-100)
	Signals    []model.Signal
}

// TextScore calculates the text-only deception score (0-100).
// No claims scores 0: nothing was asserted, so nothing can be deceptive.
func (s *Scorer) TextScore(claims []model.Claim) float64 {
	score, _ := s.textScore(claims)
	return score
}

// CertificationScore calculates the certification component (0-100, lower is better)
func (s *Scorer) CertificationScore(certs []model.Certification) float64 {
	score, _ := s.certificationScore(certs)
	return score
}

// KnowledgeScore calculates the knowledge graph component (0-100, lower is better)
func (s *Scorer) KnowledgeScore(claims []model.Claim) float64 {
	score, _ := s.knowledgeScore(claims)
	return score
}

// VisualScore converts the analyzer's 0-1 overall score to the 0-100 scale
func (s *Scorer) VisualScore(cv *model.CVResult) float64 {
	score, _ := s.visualScore(cv)
	return score
}

// Fuse combines the text score with certification, visual and knowledge graph
// components. A nil cv contributes neutral certification and visual scores.
func (s *Scorer) Fuse(claims []model.Claim, nlpScore float64, cv *model.CVResult) Fusion {
	var certs []model.Certification
	if cv != nil {
		certs = cv.CertificationsVerified
	}

	nlp := clamp(nlpScore, 0, 100)
	_, nlpSignal := s.textScore(claims)
	nlpSignal.Score = round2(nlp)

	cert, certSignal := s.certificationScore(certs)
	visual, visualSignal := s.visualScore(cv)
	kg, kgSignal := s.knowledgeScore(claims)

	w := s.cfg.Weights
	final := nlp*w.NLP + cert*w.Certification + visual*w.Visual + kg*w.KnowledgeGraph
	final = clamp(final, 0, 100)

	return Fusion{
		Final: round2(final),
		Components: model.ComponentScores{
			NLPAnalysis:               round2(nlp),
			CertificationVerification: round2(cert),
			VisualAnalysis:            round2(visual),
			KnowledgeGraph:            round2(kg),
		},
		Signals: []model.Signal{nlpSignal, certSignal, visualSignal, kgSignal},
	}
}

// textScore calculates the text deception score from claim credibility,
// vagueness, red flags and verification. Penalties are additive and only
// clamped at the end, so many mild issues can saturate the score.
func (s *Scorer) textScore(claims []model.Claim) (float64, model.Signal) {
	t := s.cfg.Text
	signal := model.Signal{
		Type:    model.SignalNLP,
		Weight:  s.cfg.Weights.NLP,
		Formula: "clamp((1 - avg_credibility) * 100 + avg_vagueness * 20 + red_flags * 5 + unverified_ratio * 15, 0, 100)",
	}

	if len(claims) == 0 {
		signal.Description = "No claims extracted"
		signal.Inputs = map[string]float64{"claims": 0}
		return 0, signal
	}

	n := float64(len(claims))
	var credSum, vagueSum float64
	redFlags := 0
	unverified := 0
	for _, c := range claims {
		credSum += clamp(c.CredibilityScore(), 0, 1)
		vagueSum += clamp(c.VaguenessScore, 0, 1)
		redFlags += len(c.RedFlags)
		if !c.IsVerified() {
			unverified++
		}
	}

	avgCred := credSum / n
	avgVague := vagueSum / n
	unverifiedRatio := float64(unverified) / n

	base := (1 - avgCred) * t.CredibilityRange
	base += avgVague * t.VaguenessWeight
	base += float64(redFlags) * t.RedFlagPenalty
	base += unverifiedRatio * t.UnverifiedWeight
	score := clamp(base, 0, 100)

	signal.Score = round2(score)
	signal.Description = fmt.Sprintf("%d claims, average credibility %.2f, %d red flags, %d unverified", len(claims), avgCred, redFlags, unverified)
	signal.Inputs = map[string]float64{
		"claims":           n,
		"avg_credibility":  avgCred,
		"avg_vagueness":    avgVague,
		"red_flags":        float64(redFlags),
		"unverified_ratio": unverifiedRatio,
		"raw":              base,
	}
	return score, signal
}

// certificationScore starts neutral and moves per certification
func (s *Scorer) certificationScore(certs []model.Certification) (float64, model.Signal) {
	c := s.cfg.Certification
	signal := model.Signal{
		Type:    model.SignalCertification,
		Weight:  s.cfg.Weights.Certification,
		Formula: "clamp(50 - 15*verified - 5*partial + 30*untrustworthy + 10*unverified, 0, 100)",
	}

	if len(certs) == 0 {
		signal.Score = round2(c.Neutral)
		signal.Description = "No certifications found (neutral)"
		signal.Inputs = map[string]float64{"certifications": 0}
		return clamp(c.Neutral, 0, 100), signal
	}

	var verified, partial, untrustworthy, unverified int
	score := c.Neutral
	for _, cert := range certs {
		switch {
		case cert.Verified == model.Verified:
			score += c.VerifiedDelta
			verified++
		case cert.Verified == model.PartiallyVerified:
			score += c.PartialDelta
			partial++
		case !cert.Trustworthy:
			score += c.UntrustworthyDelta
			untrustworthy++
		default:
			score += c.UnverifiedDelta
			unverified++
		}
	}
	raw := score
	score = clamp(score, 0, 100)

	signal.Score = round2(score)
	signal.Description = fmt.Sprintf("Certifications: %d verified, %d partial, %d untrustworthy, %d unverified", verified, partial, untrustworthy, unverified)
	signal.Inputs = map[string]float64{
		"certifications": float64(len(certs)),
		"verified":       float64(verified),
		"partial":        float64(partial),
		"untrustworthy":  float64(untrustworthy),
		"unverified":     float64(unverified),
		"raw":            raw,
	}
	return score, signal
}

// knowledgeScore starts neutral and moves with the verified/unverified ratios.
// Contradictions are uncapped before the clamp.
func (s *Scorer) knowledgeScore(claims []model.Claim) (float64, model.Signal) {
	k := s.cfg.Knowledge
	signal := model.Signal{
		Type:    model.SignalKnowledgeGraph,
		Weight:  s.cfg.Weights.KnowledgeGraph,
		Formula: "clamp(50 - verified_ratio*30 + unverified_ratio*20 + contradictions*15, 0, 100)",
	}

	if len(claims) == 0 {
		signal.Score = round2(k.Neutral)
		signal.Description = "No claims to verify (neutral)"
		signal.Inputs = map[string]float64{"claims": 0}
		return clamp(k.Neutral, 0, 100), signal
	}

	verified := 0
	contradictions := 0
	for _, c := range claims {
		if c.IsVerified() {
			verified++
		}
		contradictions += len(c.Contradictions())
	}

	n := float64(len(claims))
	verifiedRatio := float64(verified) / n
	unverifiedRatio := float64(len(claims)-verified) / n

	score := k.Neutral
	score -= verifiedRatio * k.VerifiedWeight
	score += unverifiedRatio * k.UnverifiedWeight
	score += float64(contradictions) * k.ContradictionPenalty
	raw := score
	score = clamp(score, 0, 100)

	signal.Score = round2(score)
	signal.Description = fmt.Sprintf("Knowledge graph: %d/%d claims verified, %d contradictions", verified, len(claims), contradictions)
	signal.Inputs = map[string]float64{
		"claims":           n,
		"verified_ratio":   verifiedRatio,
		"unverified_ratio": unverifiedRatio,
		"contradictions":   float64(contradictions),
		"raw":              raw,
	}
	return score, signal
}

// visualScore scales the analyzer's overall score, neutral when absent
func (s *Scorer) visualScore(cv *model.CVResult) (float64, model.Signal) {
	raw := cv.VisualScore()
	score := clamp(raw*100, 0, 100)

	description := fmt.Sprintf("Visual analysis score: %.2f", raw)
	if cv == nil || cv.OverallScore == nil {
		description = "No visual analysis available (neutral)"
	}

	return score, model.Signal{
		Type:        model.SignalVisual,
		Score:       round2(score),
		Weight:      s.cfg.Weights.Visual,
		Description: description,
		Formula:     "clamp(overall_score * 100, 0, 100)",
		Inputs:      map[string]float64{"overall_score": raw},
	}
}

// clamp bounds v to [lo, hi]; NaN collapses to lo
func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// round2 rounds to two decimal places for reporting
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Round2 rounds a score to the two decimals used in reports
func Round2(v float64) float64 {
	return round2(v)
}

// cloneConfig deep-copies the slices and maps of a scoring config
func cloneConfig(cfg model.ScoringConfig) model.ScoringConfig {
	out := cfg

	out.Bands = make([]model.SeverityBand, len(cfg.Bands))
	for i, b := range cfg.Bands {
		b.Recommendations = append([]string(nil), b.Recommendations...)
		out.Bands[i] = b
	}

	out.TypeMap = make(map[model.ClaimType]model.DeceptionType, len(cfg.TypeMap))
	for k, v := range cfg.TypeMap {
		out.TypeMap[k] = v
	}

	out.TypeAdvice = make(map[model.DeceptionType]string, len(cfg.TypeAdvice))
	for k, v := range cfg.TypeAdvice {
		out.TypeAdvice[k] = v
	}

	return out
}
