package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ppiankov/greenlens/internal/model"
)

// rule classifies a sentence as one claim type when any of its patterns match
type rule struct {
	claimType model.ClaimType
	category  string
	pattern   *regexp.Regexp
}

func newRule(claimType model.ClaimType, category string, terms ...string) rule {
	return rule{
		claimType: claimType,
		category:  category,
		pattern:   regexp.MustCompile(`\b(?:` + strings.Join(terms, "|") + `)`),
	}
}

// Order matters: the first matching rule wins
var defaultRules = []rule{
	newRule(model.ClaimTypeTemporal, "temporal",
		`by (?:the year )?20\d{2}`, `within (?:the next )?\d+ years`, `in the (?:near )?future`,
		`will (?:be|become|reach|achieve)\b`, `coming soon`),
	newRule(model.ClaimTypeCommitment, "commitment",
		`committed to`, `commitment`, `pledge`, `promise`, `strive`, `aim(?:s|ing)? to`,
		`goal`, `working towards?`, `dedicated to`),
	newRule(model.ClaimTypeCertification, "certification",
		`certified`, `certification`, `certificate`, `accredited`, `approved by`, `eco-?label`,
		`seal of`),
	newRule(model.ClaimTypeCarbon, "carbon",
		`carbon`, `net[- ]zero`, `co2`, `emissions?`, `climate[- ](?:neutral|positive)`,
		`greenhouse`),
	newRule(model.ClaimTypeMaterial, "material",
		`recycled`, `recyclable`, `biodegradable`, `compostable`, `organic`, `natural`,
		`plant[- ]based`, `renewable`, `bamboo`, `plastic[- ]free`, `non[- ]toxic`,
		`chemical[- ]free`, `sustainably sourced`, `ingredients?`, `materials?`),
	newRule(model.ClaimTypeReduction, "reduction",
		`reduced?`, `reduction`, `less`, `fewer`, `lower`, `cuts?\b`, `saves?`, `minimi[sz]`),
	newRule(model.ClaimTypeLabor, "labor",
		`fair[- ]trade`, `fair wages?`, `living wages?`, `ethically made`, `child labou?r`,
		`working conditions`, `workers`),
	newRule(model.ClaimTypeCommunity, "community",
		`communit(?:y|ies)`, `donat`, `charit`, `give back`, `giving back`, `local`),
	newRule(model.ClaimTypeSocial, "social",
		`ethical`, `responsib`, `social`, `diversity`, `inclusive`, `cruelty[- ]free`),
	newRule(model.ClaimTypeEnvironmental, "environmental",
		`eco`, `green`, `sustainab`, `environment`, `planet`, `earth`, `nature`, `clean`,
		`conscious`),
}

var (
	vagueTerms = regexp.MustCompile(`\b(?:eco[- ]?friendly|green|natural|sustainabl[ey]|environmentally friendly|` +
		`earth[- ]friendly|planet[- ]friendly|better for|clean|conscious|responsibl[ey]|non[- ]toxic|` +
		`chemical[- ]free|pure|ethical(?:ly)?|kind to|friendly)\b`)

	specificEvidence = []*regexp.Regexp{
		regexp.MustCompile(`\b\d{1,2}(?:\.\d+)?\s?%`),
		regexp.MustCompile(`\b\d+(?:\.\d+)?\s?(?:kg|g|tons?|tonnes?|lbs?|kwh|mwh|litres?|liters?|ml|co2e?)\b`),
		regexp.MustCompile(`#\s?\d{3,}|\b(?:no\.|number)\s*\d+`),
		regexp.MustCompile(`\b(?:iso\s?\d{4,5}|astm\s?[a-z]?\d+|gots|fsc|pefc|usda|energy star|epa|b corp|` +
			`cradle to cradle|bluesign|oeko-tex|rainforest alliance|fairtrade international)\b`),
	}

	absoluteTerms   = regexp.MustCompile(`\b100\s?%|\b(?:completely|totally|entirely|zero impact|all[- ]natural|chemical[- ]free|toxin[- ]free)\b`)
	irrelevantTerms = regexp.MustCompile(`\b(?:cfc[- ]free|free of cfcs|no cfcs|ozone[- ]friendly)\b`)
)

// Red flag codes attached to claims
const (
	FlagAbsolute      = "absolute claim"
	FlagVague         = "vague language"
	FlagNoProof       = "no proof"
	FlagFuturePromise = "future promise"
	FlagIrrelevant    = "irrelevant claim"
)

// ClaimExtractor finds sustainability claims in product text with an ordered rule table
type ClaimExtractor struct {
	rules     []rule
	minLength int
	maxLength int
}

// NewClaimExtractor creates a claim extractor with the built-in rules
func NewClaimExtractor(cfg model.ExtractionConfig) *ClaimExtractor {
	if cfg.MinSentenceLength <= 0 {
		cfg.MinSentenceLength = 8
	}
	if cfg.MaxSentenceLength <= 0 {
		cfg.MaxSentenceLength = 500
	}
	return &ClaimExtractor{
		rules:     defaultRules,
		minLength: cfg.MinSentenceLength,
		maxLength: cfg.MaxSentenceLength,
	}
}

// ExtractClaims returns one claim per sentence that matches a rule, deduplicated
func (e *ClaimExtractor) ExtractClaims(text string) []model.Claim {
	var claims []model.Claim

	for i, sentence := range e.splitSentences(text) {
		lower := strings.ToLower(sentence)
		for _, r := range e.rules {
			match := r.pattern.FindString(lower)
			if match == "" {
				continue
			}
			claims = append(claims, e.buildClaim(sentence, lower, i, r, match))
			break
		}
	}

	return dedupeClaims(claims)
}

func (e *ClaimExtractor) buildClaim(sentence, lower string, index int, r rule, match string) model.Claim {
	vague := len(vagueTerms.FindAllString(lower, -1))
	specific := 0
	for _, re := range specificEvidence {
		specific += len(re.FindAllString(lower, -1))
	}

	claim := model.Claim{
		Text:      sentence,
		Type:      r.claimType,
		Category:  r.category,
		Heuristic: r.category + ":" + match,
		Sentence:  index,
		RedFlags:  []string{},
	}

	if vague+specific == 0 {
		claim.VaguenessScore = 0.5
	} else {
		claim.VaguenessScore = float64(vague) / float64(vague+specific)
		claim.SpecificityScore = float64(specific) / float64(vague+specific)
	}

	if absoluteTerms.MatchString(lower) {
		claim.RedFlags = append(claim.RedFlags, FlagAbsolute)
	}
	if vague > 0 && specific == 0 {
		claim.RedFlags = append(claim.RedFlags, FlagVague)
	}
	if specific == 0 && needsProof(r.claimType) {
		claim.RedFlags = append(claim.RedFlags, FlagNoProof)
	}
	if r.claimType == model.ClaimTypeTemporal || r.claimType == model.ClaimTypeCommitment {
		claim.RedFlags = append(claim.RedFlags, FlagFuturePromise)
	}
	if irrelevantTerms.MatchString(lower) {
		claim.RedFlags = append(claim.RedFlags, FlagIrrelevant)
	}

	return claim
}

func needsProof(t model.ClaimType) bool {
	switch t {
	case model.ClaimTypeCarbon, model.ClaimTypeMaterial, model.ClaimTypeReduction, model.ClaimTypeCertification:
		return true
	}
	return false
}

// AnalyzeCredibility scores how believable a claim is from its own wording
func (e *ClaimExtractor) AnalyzeCredibility(claim model.Claim) model.Credibility {
	score := 0.5 + 0.3*claim.SpecificityScore - 0.3*claim.VaguenessScore - 0.1*float64(len(claim.RedFlags))
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}

	issues := []string{}
	if claim.VaguenessScore > 0.5 {
		issues = append(issues, "Uses vague, unmeasurable language")
	}
	if claim.SpecificityScore == 0 {
		issues = append(issues, "Provides no specific, measurable evidence")
	}
	for _, flag := range claim.RedFlags {
		issues = append(issues, fmt.Sprintf("Red flag: %s", flag))
	}

	return model.Credibility{Score: score, Issues: issues}
}

// splitSentences breaks text on sentence terminators, line breaks and label separators
func (e *ClaimExtractor) splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	flush := func() {
		sentence := strings.TrimSpace(current.String())
		current.Reset()
		if len(sentence) >= e.minLength && len(sentence) <= e.maxLength {
			sentences = append(sentences, sentence)
		}
	}

	runes := []rune(text)
	for i, r := range runes {
		switch r {
		case '\n', '\r', '•', '|', ';':
			flush()
			continue
		}

		current.WriteRune(r)

		if r == '.' || r == '!' || r == '?' {
			// Avoid splitting decimals and abbreviations
			if i+1 == len(runes) || runes[i+1] == ' ' || runes[i+1] == '\t' || runes[i+1] == '\n' {
				flush()
			}
		}
	}
	flush()

	return sentences
}

// dedupeClaims removes duplicate claims
func dedupeClaims(claims []model.Claim) []model.Claim {
	seen := make(map[string]bool)
	var unique []model.Claim

	for _, claim := range claims {
		key := strings.ToLower(strings.TrimSpace(claim.Text))
		if !seen[key] {
			seen[key] = true
			unique = append(unique, claim)
		}
	}

	return unique
}
