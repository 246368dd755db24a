package knowledge

import (
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ppiankov/greenlens/internal/model"
)

//go:embed facts.yaml
var defaultFacts []byte

// Stance is how a fact bears on the claims it matches
type Stance string

const (
	StanceSupports    Stance = "supports"
	StanceContradicts Stance = "contradicts"
	StanceContext     Stance = "context"
)

// Fact is one piece of domain knowledge matched against claim text by keyword
type Fact struct {
	ID                    string            `yaml:"id"`
	Keywords              []string          `yaml:"keywords"`
	ClaimTypes            []model.ClaimType `yaml:"claim_types,omitempty"` // Empty matches every type
	Stance                Stance            `yaml:"stance"`
	Confidence            float64           `yaml:"confidence"`
	Evidence              string            `yaml:"evidence"`
	RequiresCertification bool              `yaml:"requires_certification,omitempty"`
}

// KnownCertification is a legitimate certification scheme the graph recognises in claim text
type KnownCertification struct {
	Name    string   `yaml:"name"`
	Issuer  string   `yaml:"issuer"`
	Aliases []string `yaml:"aliases"`
}

// FactBase is the complete knowledge the graph reasons over
type FactBase struct {
	Facts          []Fact               `yaml:"facts"`
	Certifications []KnownCertification `yaml:"certifications"`
}

// Fingerprint identifies the content of the fact base. Verdicts cached under
// one fingerprint are never served for another.
func (b *FactBase) Fingerprint() string {
	data, err := yaml.Marshal(b)
	if err != nil {
		return "unhashed"
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:8])
}

// DefaultFactBase returns the built-in fact base
func DefaultFactBase() (*FactBase, error) {
	return ParseFactBase(defaultFacts)
}

// LoadFactBase reads a fact base from a YAML file; an empty path yields the built-in one
func LoadFactBase(path string) (*FactBase, error) {
	if path == "" {
		return DefaultFactBase()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fact base: %w", err)
	}

	base, err := ParseFactBase(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return base, nil
}

// ParseFactBase decodes and validates a YAML fact base. Keywords and aliases are lowercased.
func ParseFactBase(data []byte) (*FactBase, error) {
	var base FactBase
	if err := yaml.Unmarshal(data, &base); err != nil {
		return nil, fmt.Errorf("failed to parse fact base: %w", err)
	}

	seen := make(map[string]bool)
	for i := range base.Facts {
		f := &base.Facts[i]
		if f.ID == "" {
			return nil, fmt.Errorf("fact %d: missing id", i)
		}
		if seen[f.ID] {
			return nil, fmt.Errorf("fact %s: duplicate id", f.ID)
		}
		seen[f.ID] = true

		if len(f.Keywords) == 0 {
			return nil, fmt.Errorf("fact %s: no keywords", f.ID)
		}
		switch f.Stance {
		case StanceSupports, StanceContradicts, StanceContext:
		default:
			return nil, fmt.Errorf("fact %s: invalid stance %q", f.ID, f.Stance)
		}
		if f.Confidence < 0 || f.Confidence > 1 {
			return nil, fmt.Errorf("fact %s: confidence %.2f out of range [0,1]", f.ID, f.Confidence)
		}
		for j, k := range f.Keywords {
			f.Keywords[j] = strings.ToLower(strings.TrimSpace(k))
		}
	}

	for i := range base.Certifications {
		c := &base.Certifications[i]
		if c.Name == "" {
			return nil, fmt.Errorf("certification %d: missing name", i)
		}
		if len(c.Aliases) == 0 {
			c.Aliases = []string{c.Name}
		}
		for j, a := range c.Aliases {
			c.Aliases[j] = strings.ToLower(strings.TrimSpace(a))
		}
	}

	return &base, nil
}

func (f Fact) appliesTo(t model.ClaimType) bool {
	if len(f.ClaimTypes) == 0 {
		return true
	}
	for _, ct := range f.ClaimTypes {
		if ct == t {
			return true
		}
	}
	return false
}

func (f Fact) matches(lower string) bool {
	for _, k := range f.Keywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

func (c KnownCertification) mentionedIn(lower string) bool {
	for _, a := range c.Aliases {
		if containsPhrase(lower, a) {
			return true
		}
	}
	return false
}

// containsPhrase reports whether phrase occurs in s delimited by non-alphanumerics
func containsPhrase(s, phrase string) bool {
	for start := 0; ; {
		i := strings.Index(s[start:], phrase)
		if i < 0 {
			return false
		}
		i += start
		end := i + len(phrase)
		if (i == 0 || !isAlnum(s[i-1])) && (end == len(s) || !isAlnum(s[end])) {
			return true
		}
		start = i + 1
	}
}

func isAlnum(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
}
