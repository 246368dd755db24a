// Package knowledge verifies individual claims against a keyword-indexed fact base
// and a list of recognised certification schemes.
package knowledge

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ppiankov/greenlens/internal/cache"
	"github.com/ppiankov/greenlens/internal/model"
)

const (
	baseConfidence        = 0.5
	supportWeight         = 0.3
	contradictionWeight   = 0.4
	certificationBonus    = 0.25
	missingCertPenalty    = 0.2
	verdictCacheNamespace = "kg"
)

// Graph answers VerifyClaim queries. It is safe for concurrent use as long as
// the cache is.
type Graph struct {
	base      *FactBase
	namespace string
	cache     cache.Cache
	ttl       time.Duration
}

// New creates a graph over base. A nil cache disables memoisation.
func New(base *FactBase, c cache.Cache, ttl time.Duration) *Graph {
	if c == nil {
		c = cache.NopCache{}
	}
	return &Graph{
		base:      base,
		namespace: verdictCacheNamespace + ":" + base.Fingerprint(),
		cache:     c,
		ttl:       ttl,
	}
}

// NewFromConfig loads the configured fact base
func NewFromConfig(cfg model.KnowledgeConfig, c cache.Cache) (*Graph, error) {
	base, err := LoadFactBase(cfg.FactsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load knowledge base: %w", err)
	}
	return New(base, c, cfg.CacheTTL), nil
}

// VerifyClaim returns the verdict for (text, claimType), memoised by that pair
// within the loaded fact base
func (g *Graph) VerifyClaim(text string, claimType model.ClaimType) model.KGVerification {
	key := cache.Key(g.namespace, text, string(claimType))

	if data, found := g.cache.Get(key); found {
		var v model.KGVerification
		if err := json.Unmarshal(data, &v); err == nil {
			return v
		}
	}

	v := g.verify(text, claimType)

	if data, err := json.Marshal(v); err == nil {
		_ = g.cache.Set(key, data, g.ttl)
	}
	return v
}

func (g *Graph) verify(text string, claimType model.ClaimType) model.KGVerification {
	lower := strings.ToLower(text)

	v := model.KGVerification{
		Contradictions:        []string{},
		Evidence:              []string{},
		RequiresCertification: claimType == model.ClaimTypeCertification || claimType == model.ClaimTypeCarbon,
	}

	supports := 0
	confidence := baseConfidence

	for _, f := range g.base.Facts {
		if !f.appliesTo(claimType) || !f.matches(lower) {
			continue
		}
		if f.RequiresCertification {
			v.RequiresCertification = true
		}
		switch f.Stance {
		case StanceSupports:
			supports++
			confidence += supportWeight * f.Confidence
			v.Evidence = append(v.Evidence, f.Evidence)
		case StanceContradicts:
			confidence -= contradictionWeight * f.Confidence
			v.Contradictions = append(v.Contradictions, f.Evidence)
		default:
			v.Evidence = append(v.Evidence, f.Evidence)
		}
	}

	for _, c := range g.base.Certifications {
		if !c.mentionedIn(lower) {
			continue
		}
		if !v.CertificationFound {
			confidence += certificationBonus
		}
		v.CertificationFound = true
		supports++
		v.Evidence = append(v.Evidence, fmt.Sprintf("Recognised certification: %s (%s)", c.Name, c.Issuer))
	}

	if v.RequiresCertification && !v.CertificationFound {
		confidence -= missingCertPenalty
	}

	v.Verified = supports > 0 &&
		len(v.Contradictions) == 0 &&
		(!v.RequiresCertification || v.CertificationFound)
	v.Confidence = clamp01(confidence)

	return v
}

// Statistics summarises the loaded fact base
type Statistics struct {
	Facts          int `json:"facts"`
	Supporting     int `json:"supporting"`
	Contradicting  int `json:"contradicting"`
	Context        int `json:"context"`
	Keywords       int `json:"keywords"`
	Certifications int `json:"certifications"`
}

// Statistics counts facts by stance plus keywords and certifications
func (g *Graph) Statistics() Statistics {
	s := Statistics{
		Facts:          len(g.base.Facts),
		Certifications: len(g.base.Certifications),
	}
	for _, f := range g.base.Facts {
		s.Keywords += len(f.Keywords)
		switch f.Stance {
		case StanceSupports:
			s.Supporting++
		case StanceContradicts:
			s.Contradicting++
		default:
			s.Context++
		}
	}
	return s
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
