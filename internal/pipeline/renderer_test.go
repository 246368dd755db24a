package pipeline

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ppiankov/greenlens/internal/model"
)

func scenarioReport(t *testing.T) *model.Report {
	t.Helper()
	d := fixedDetector(scenarioExtractor(), &mockVision{result: scenarioCV()}, scenarioGraph())
	report, err := d.AnalyzeImage(context.Background(), "label.png")
	if err != nil {
		t.Fatalf("AnalyzeImage failed: %v", err)
	}
	return report
}

func TestRenderer_JSONRoundTrip(t *testing.T) {
	report := scenarioReport(t)

	var buf bytes.Buffer
	if err := WriteJSON(&buf, report); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}
	if !strings.HasSuffix(buf.String(), "}\n") {
		t.Error("Expected trailing newline after JSON document")
	}
	if !strings.Contains(buf.String(), `"verified": "unverified"`) {
		t.Error("Expected verification state encoded by name")
	}

	loaded, err := LoadJSON(&buf)
	if err != nil {
		t.Fatalf("LoadJSON failed: %v", err)
	}
	if loaded.OverallScore != report.OverallScore || loaded.ID != report.ID {
		t.Errorf("Round trip changed report: %v/%s", loaded.OverallScore, loaded.ID)
	}
	if len(loaded.Certifications.Verified) != 1 || loaded.Certifications.Verified[0].Trustworthy {
		t.Errorf("Expected untrustworthy certification preserved, got %+v", loaded.Certifications.Verified)
	}
}

func TestRenderer_SaveAndLoadFile(t *testing.T) {
	report := scenarioReport(t)
	path := filepath.Join(t.TempDir(), "report.json")

	if err := SaveJSON(report, path); err != nil {
		t.Fatalf("SaveJSON failed: %v", err)
	}
	loaded, err := LoadJSONFile(path)
	if err != nil {
		t.Fatalf("LoadJSONFile failed: %v", err)
	}
	if loaded.Severity != model.SeverityHigh {
		t.Errorf("Expected severity preserved, got %s", loaded.Severity)
	}

	if _, err := LoadJSONFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("Expected error for missing file")
	}
	if _, err := LoadJSON(strings.NewReader("not json")); err == nil {
		t.Error("Expected error for invalid JSON")
	}
}

func TestRenderer_Markdown(t *testing.T) {
	r := NewRenderer(model.OutputConfig{IncludeFooter: true}, nil)
	md := r.Markdown(scenarioReport(t))

	for _, want := range []string{
		"# Greenlens Report",
		"**Score:** 75.50/100 (High Deception)",
		"**Primary deception type:** greenwashing",
		"## Score Breakdown",
		"| nlp_analysis | 77.50 | 0.40 |",
		"## Claims (2)",
		"Certified organic.",
		"## Certifications",
		"**Eco Certified** (questionable)",
		"## Visual Indicators",
		"- Excessive green: yes",
		"## Red Flags",
		"## Recommendations",
		reportFooter,
	} {
		if !strings.Contains(md, want) {
			t.Errorf("Expected markdown to contain %q", want)
		}
	}
}

func TestRenderer_MarkdownFailure(t *testing.T) {
	r := NewRenderer(model.OutputConfig{}, nil)
	md := r.Markdown(model.FailedReport("broken.png", "Could not load image: unexpected EOF"))

	if !strings.Contains(md, "**Analysis failed:** Could not load image: unexpected EOF") {
		t.Errorf("Expected failure line, got:\n%s", md)
	}
	if strings.Contains(md, "## Score Breakdown") {
		t.Error("Expected no score sections for a failed report")
	}
	if strings.Contains(md, reportFooter) {
		t.Error("Expected footer omitted when disabled")
	}
}

func TestRenderer_TextMarkdownAndSummary(t *testing.T) {
	r := NewRenderer(model.OutputConfig{Color: true}, nil)
	ta := fixedDetector(scenarioExtractor(), &mockVision{}, scenarioGraph()).AnalyzeText(scenarioText)

	md := r.TextMarkdown(ta)
	if !strings.Contains(md, "**Score:** 77.50/100 (High Deception)") {
		t.Errorf("Unexpected text markdown:\n%s", md)
	}

	var buf bytes.Buffer
	r.TextSummary(&buf, ta)
	if strings.Contains(buf.String(), "\x1b[") {
		t.Error("Expected no ANSI colour when not writing to a terminal")
	}
	if !strings.Contains(buf.String(), "Claims:         2") {
		t.Errorf("Unexpected summary:\n%s", buf.String())
	}

	buf.Reset()
	r.Summary(&buf, model.FailedReport("x.png", "boom"))
	if !strings.Contains(buf.String(), "Analysis failed for x.png: boom") {
		t.Errorf("Unexpected failure summary: %s", buf.String())
	}
}

func TestRenderer_SaveMarkdown(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.md")
	r := NewRenderer(model.OutputConfig{}, nil)

	if err := r.SaveMarkdown(scenarioReport(t), path); err != nil {
		t.Fatalf("SaveMarkdown failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read markdown: %v", err)
	}
	if !strings.HasPrefix(string(data), "# Greenlens Report") {
		t.Errorf("Unexpected file content: %.40s", data)
	}
}

func TestColorize(t *testing.T) {
	if got := colorize("x", "#FF8000"); got != "\x1b[1;38;2;255;128;0mx\x1b[0m" {
		t.Errorf("Unexpected colour sequence: %q", got)
	}
	for _, bad := range []string{"", "#FFF", "#GGGGGG"} {
		if got := colorize("x", bad); got != "x" {
			t.Errorf("colorize(%q) = %q, want plain text", bad, got)
		}
	}
}

func TestCell(t *testing.T) {
	if got := cell("a|b\nc"); got != `a\|b c` {
		t.Errorf("Unexpected cell escaping: %q", got)
	}
}
