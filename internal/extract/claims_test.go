package extract

import (
	"math"
	"strings"
	"testing"

	"github.com/ppiankov/greenlens/internal/model"
)

func newTestExtractor() *ClaimExtractor {
	return NewClaimExtractor(model.DefaultConfig().Extraction)
}

func hasFlag(claim model.Claim, flag string) bool {
	for _, f := range claim.RedFlags {
		if f == flag {
			return true
		}
	}
	return false
}

func TestClaimExtractor_AbsoluteVagueClaim(t *testing.T) {
	extractor := newTestExtractor()

	claims := extractor.ExtractClaims("Our product is 100% eco-friendly and made with natural ingredients!")
	if len(claims) != 1 {
		t.Fatalf("Expected 1 claim, got %d", len(claims))
	}

	claim := claims[0]
	if claim.Type != model.ClaimTypeMaterial {
		t.Errorf("Expected type %s, got %s", model.ClaimTypeMaterial, claim.Type)
	}
	if claim.Heuristic != "material:natural" {
		t.Errorf("Expected heuristic 'material:natural', got '%s'", claim.Heuristic)
	}
	if claim.VaguenessScore != 1 || claim.SpecificityScore != 0 {
		t.Errorf("Expected vagueness 1 and specificity 0, got %.2f/%.2f", claim.VaguenessScore, claim.SpecificityScore)
	}
	for _, flag := range []string{FlagAbsolute, FlagVague, FlagNoProof} {
		if !hasFlag(claim, flag) {
			t.Errorf("Expected red flag %q, got %v", flag, claim.RedFlags)
		}
	}

	cred := extractor.AnalyzeCredibility(claim)
	if cred.Score != 0 {
		t.Errorf("Expected credibility clamped to 0, got %.2f", cred.Score)
	}
	if len(cred.Issues) != 5 {
		t.Errorf("Expected 5 issues, got %v", cred.Issues)
	}
}

func TestClaimExtractor_SpecificClaims(t *testing.T) {
	extractor := newTestExtractor()

	claims := extractor.ExtractClaims("Contains 47% post-consumer recycled plastic (PCR). Certified by EPA Safer Choice #12345.")
	if len(claims) != 2 {
		t.Fatalf("Expected 2 claims, got %d", len(claims))
	}

	if claims[0].Type != model.ClaimTypeMaterial {
		t.Errorf("Expected first claim to be material, got %s", claims[0].Type)
	}
	if claims[1].Type != model.ClaimTypeCertification {
		t.Errorf("Expected second claim to be certification, got %s", claims[1].Type)
	}
	if claims[1].Sentence != 1 {
		t.Errorf("Expected second claim at sentence 1, got %d", claims[1].Sentence)
	}

	for _, claim := range claims {
		if claim.VaguenessScore != 0 || claim.SpecificityScore != 1 {
			t.Errorf("Expected precise claim, got vagueness %.2f specificity %.2f: %s",
				claim.VaguenessScore, claim.SpecificityScore, claim.Text)
		}
		if len(claim.RedFlags) != 0 {
			t.Errorf("Expected no red flags, got %v", claim.RedFlags)
		}
		cred := extractor.AnalyzeCredibility(claim)
		if math.Abs(cred.Score-0.8) > 1e-9 {
			t.Errorf("Expected credibility 0.8, got %.2f", cred.Score)
		}
		if len(cred.Issues) != 0 {
			t.Errorf("Expected no issues, got %v", cred.Issues)
		}
	}
}

func TestClaimExtractor_FuturePromise(t *testing.T) {
	extractor := newTestExtractor()

	claims := extractor.ExtractClaims("We are committed to achieving carbon neutrality by 2050.")
	if len(claims) != 1 {
		t.Fatalf("Expected 1 claim, got %d", len(claims))
	}

	claim := claims[0]
	if claim.Type != model.ClaimTypeTemporal {
		t.Errorf("Expected temporal claim (rule order), got %s", claim.Type)
	}
	if !strings.HasSuffix(claim.Heuristic, "by 2050") {
		t.Errorf("Expected heuristic to mention 'by 2050', got '%s'", claim.Heuristic)
	}
	if len(claim.RedFlags) != 1 || claim.RedFlags[0] != FlagFuturePromise {
		t.Errorf("Expected only the future promise flag, got %v", claim.RedFlags)
	}
	if claim.VaguenessScore != 0.5 {
		t.Errorf("Expected neutral vagueness without evidence, got %.2f", claim.VaguenessScore)
	}

	cred := extractor.AnalyzeCredibility(claim)
	if math.Abs(cred.Score-0.25) > 1e-9 {
		t.Errorf("Expected credibility 0.25, got %.4f", cred.Score)
	}
}

func TestClaimExtractor_VagueSocialCopy(t *testing.T) {
	extractor := newTestExtractor()

	claims := extractor.ExtractClaims("Sustainably sourced, ethically made, and better for the planet.")
	if len(claims) != 1 {
		t.Fatalf("Expected 1 claim, got %d", len(claims))
	}

	claim := claims[0]
	if claim.Type != model.ClaimTypeMaterial {
		t.Errorf("Expected material claim, got %s", claim.Type)
	}
	if !hasFlag(claim, FlagVague) || !hasFlag(claim, FlagNoProof) {
		t.Errorf("Expected vague language and no proof flags, got %v", claim.RedFlags)
	}
	if hasFlag(claim, FlagAbsolute) {
		t.Errorf("Did not expect absolute claim flag")
	}
}

func TestClaimExtractor_IrrelevantClaim(t *testing.T) {
	extractor := newTestExtractor()

	claims := extractor.ExtractClaims("Eco-friendly and CFC-free formula.")
	if len(claims) != 1 {
		t.Fatalf("Expected 1 claim, got %d", len(claims))
	}
	if claims[0].Type != model.ClaimTypeEnvironmental {
		t.Errorf("Expected environmental claim, got %s", claims[0].Type)
	}
	if !hasFlag(claims[0], FlagIrrelevant) {
		t.Errorf("Expected irrelevant claim flag, got %v", claims[0].RedFlags)
	}
}

func TestClaimExtractor_LabelSeparators(t *testing.T) {
	extractor := newTestExtractor()

	claims := extractor.ExtractClaims("100% Natural • Carbon Neutral • Certified Organic")

	want := []model.ClaimType{model.ClaimTypeMaterial, model.ClaimTypeCarbon, model.ClaimTypeCertification}
	if len(claims) != len(want) {
		t.Fatalf("Expected %d claims, got %d", len(want), len(claims))
	}
	for i, claim := range claims {
		if claim.Type != want[i] {
			t.Errorf("Claim %d: expected %s, got %s", i, want[i], claim.Type)
		}
	}
}

func TestClaimExtractor_DecimalsDoNotSplit(t *testing.T) {
	extractor := newTestExtractor()

	claims := extractor.ExtractClaims("Made with 12.5% recycled ocean plastic.")
	if len(claims) != 1 {
		t.Fatalf("Expected 1 claim, got %d", len(claims))
	}
	if claims[0].Text != "Made with 12.5% recycled ocean plastic." {
		t.Errorf("Unexpected claim text: %s", claims[0].Text)
	}
}

func TestClaimExtractor_Deduplication(t *testing.T) {
	extractor := newTestExtractor()

	text := "Made from recycled paper.\nMade from recycled paper.\nMADE FROM RECYCLED PAPER."

	claims := extractor.ExtractClaims(text)
	if len(claims) != 1 {
		t.Errorf("Expected 1 unique claim after deduplication, got %d", len(claims))
	}
}

func TestClaimExtractor_NoClaims(t *testing.T) {
	extractor := newTestExtractor()

	for _, text := range []string{"", "   ", "The box contains twelve pieces.", "Ok."} {
		if claims := extractor.ExtractClaims(text); len(claims) != 0 {
			t.Errorf("Expected 0 claims for %q, got %d", text, len(claims))
		}
	}
}

func TestClaimExtractor_SentenceLengthFiltering(t *testing.T) {
	extractor := NewClaimExtractor(model.ExtractionConfig{MinSentenceLength: 20, MaxSentenceLength: 60})

	text := "Eco pick. " +
		"This bottle is made from recycled glass. " +
		strings.Repeat("Green ", 20) + "."

	claims := extractor.ExtractClaims(text)
	if len(claims) != 1 {
		t.Fatalf("Expected 1 claim within length bounds, got %d", len(claims))
	}
	if !strings.Contains(claims[0].Text, "recycled glass") {
		t.Errorf("Unexpected claim: %s", claims[0].Text)
	}
}

func TestAnalyzeCredibility_Clamped(t *testing.T) {
	extractor := newTestExtractor()

	flagged := model.Claim{RedFlags: make([]string, 10)}
	if cred := extractor.AnalyzeCredibility(flagged); cred.Score != 0 {
		t.Errorf("Expected credibility 0, got %.2f", cred.Score)
	}

	precise := model.Claim{SpecificityScore: 1, RedFlags: []string{}}
	if cred := extractor.AnalyzeCredibility(precise); math.Abs(cred.Score-0.8) > 1e-9 {
		t.Errorf("Expected credibility 0.8, got %.2f", cred.Score)
	}
}
