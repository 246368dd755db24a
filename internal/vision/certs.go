package vision

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ppiankov/greenlens/internal/model"
)

//go:embed registry.yaml
var defaultRegistry []byte

const unknownCertWarning = "Not found in the certification registry"

// registryEntry is one certification mark and the aliases it is printed under
type registryEntry struct {
	Name        string                  `yaml:"name"`
	Issuer      string                  `yaml:"issuer,omitempty"`
	Aliases     []string                `yaml:"aliases"`
	Verified    model.VerificationState `yaml:"verified"`
	Trustworthy *bool                   `yaml:"trustworthy,omitempty"`
	Warning     string                  `yaml:"warning,omitempty"`
}

func (e registryEntry) certification() model.Certification {
	c := model.NewCertification(e.Name)
	c.Issuer = e.Issuer
	c.Verified = e.Verified
	c.Warning = e.Warning
	if e.Trustworthy != nil {
		c.Trustworthy = *e.Trustworthy
	}
	return c
}

// Registry judges certification marks found in label text
type Registry struct {
	entries []registryEntry
}

// DefaultRegistry returns the built-in certification registry
func DefaultRegistry() (*Registry, error) {
	return ParseRegistry(defaultRegistry)
}

// LoadRegistry reads a registry file; an empty path yields the built-in one
func LoadRegistry(path string) (*Registry, error) {
	if path == "" {
		return DefaultRegistry()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read certification registry: %w", err)
	}

	r, err := ParseRegistry(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return r, nil
}

// ParseRegistry decodes and validates a YAML registry
func ParseRegistry(data []byte) (*Registry, error) {
	var doc struct {
		Certifications []registryEntry `yaml:"certifications"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse certification registry: %w", err)
	}

	for i := range doc.Certifications {
		e := &doc.Certifications[i]
		if e.Name == "" {
			return nil, fmt.Errorf("certification %d: missing name", i)
		}
		if len(e.Aliases) == 0 {
			e.Aliases = []string{e.Name}
		}
		for j, a := range e.Aliases {
			e.Aliases[j] = strings.ToLower(strings.TrimSpace(a))
		}
	}

	return &Registry{entries: doc.Certifications}, nil
}

// Len returns the number of registered certifications
func (r *Registry) Len() int {
	return len(r.entries)
}

// "<word> certified" or "<word>-certified" on a label
var certifiedPhrase = regexp.MustCompile(`\b([a-z][a-z-]*[a-z])[- ]certified\b`)

// Words that precede "certified" without naming a scheme
var certifiedStopWords = map[string]bool{
	"is": true, "are": true, "be": true, "been": true, "being": true, "not": true,
	"and": true, "or": true, "we": true, "our": true, "all": true, "also": true,
	"product": true, "products": true, "independently": true, "officially": true,
}

type detection struct {
	start, end int
	cert       model.Certification
}

// Detect finds certification marks in text, in order of appearance. Registered
// marks are judged by the registry; other "X certified" phrases are reported as
// claimed but unverified.
func (r *Registry) Detect(text string) ([]string, []model.Certification) {
	lower := strings.ToLower(text)

	var found []detection
	for _, e := range r.entries {
		start, end := -1, -1
		for _, alias := range e.Aliases {
			if s := indexPhrase(lower, alias); s >= 0 && (start < 0 || s < start) {
				start, end = s, s+len(alias)
			}
		}
		if start >= 0 {
			found = append(found, detection{start: start, end: end, cert: e.certification()})
		}
	}

	known := append([]detection(nil), found...)
	for _, m := range certifiedPhrase.FindAllStringSubmatchIndex(lower, -1) {
		word := lower[m[2]:m[3]]
		if certifiedStopWords[word] || strings.HasSuffix(word, "ly") || overlaps(known, m[0], m[1]) {
			continue
		}
		cert := model.NewCertification(titleWord(word) + " Certified")
		cert.Warning = unknownCertWarning
		found = append(found, detection{start: m[0], end: m[1], cert: cert})
	}

	sort.SliceStable(found, func(i, j int) bool { return found[i].start < found[j].start })

	claimed := []string{}
	certs := []model.Certification{}
	seen := make(map[string]bool)
	for _, d := range found {
		if seen[d.cert.Name] {
			continue
		}
		seen[d.cert.Name] = true
		claimed = append(claimed, d.cert.Name)
		certs = append(certs, d.cert)
	}

	return claimed, certs
}

func overlaps(ds []detection, start, end int) bool {
	for _, d := range ds {
		if start < d.end && d.start < end {
			return true
		}
	}
	return false
}

// indexPhrase returns the first index of phrase in s delimited by non-letters, or -1
func indexPhrase(s, phrase string) int {
	for from := 0; from <= len(s); {
		i := strings.Index(s[from:], phrase)
		if i < 0 {
			return -1
		}
		i += from
		end := i + len(phrase)
		if (i == 0 || !isWordByte(s[i-1])) && (end == len(s) || !isWordByte(s[end])) {
			return i
		}
		from = i + 1
	}
	return -1
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= '0' && b <= '9'
}

func titleWord(w string) string {
	if w == "" {
		return w
	}
	return strings.ToUpper(w[:1]) + w[1:]
}
