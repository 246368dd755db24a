package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/ppiankov/greenlens/internal/model"
	"github.com/ppiankov/greenlens/internal/score"
)

const reportFooter = "_Generated by greenlens. Scores are heuristic indicators of misleading sustainability claims, not legal findings._"

// Renderer turns reports into JSON, Markdown and terminal summaries
type Renderer struct {
	scorer        *score.Scorer
	includeFooter bool
	color         bool
}

// NewRenderer creates a renderer. Severity colours come from the scorer's bands.
func NewRenderer(cfg model.OutputConfig, scorer *score.Scorer) *Renderer {
	if scorer == nil {
		scorer = score.NewDefaultScorer()
	}
	return &Renderer{
		scorer:        scorer,
		includeFooter: cfg.IncludeFooter,
		color:         cfg.Color,
	}
}

// RenderJSON encodes any report document as indented JSON
func RenderJSON(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal JSON: %w", err)
	}
	return append(data, '\n'), nil
}

// WriteJSON writes one JSON document to w
func WriteJSON(w io.Writer, v any) error {
	data, err := RenderJSON(v)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write JSON: %w", err)
	}
	return nil
}

// SaveJSON writes a report document to path
func SaveJSON(v any, path string) error {
	data, err := RenderJSON(v)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// LoadJSON reads a report previously written by WriteJSON
func LoadJSON(r io.Reader) (*model.Report, error) {
	var report model.Report
	if err := json.NewDecoder(r).Decode(&report); err != nil {
		return nil, fmt.Errorf("decode report: %w", err)
	}
	return &report, nil
}

// LoadJSONFile reads a report from path
func LoadJSONFile(path string) (*model.Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open report: %w", err)
	}
	defer func() { _ = f.Close() }()
	return LoadJSON(f)
}

// SaveMarkdown writes the Markdown rendering of a report to path
func (r *Renderer) SaveMarkdown(report *model.Report, path string) error {
	if err := os.WriteFile(path, []byte(r.Markdown(report)), 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Markdown renders an image report
func (r *Renderer) Markdown(report *model.Report) string {
	var b strings.Builder
	b.WriteString("# Greenlens Report\n\n")

	if report.ImagePath != "" {
		fmt.Fprintf(&b, "**Image:** `%s`  \n", report.ImagePath)
	}

	if !report.Success {
		fmt.Fprintf(&b, "**Analysis failed:** %s\n", report.Error)
		r.footer(&b)
		return b.String()
	}

	fmt.Fprintf(&b, "**Score:** %.2f/100 (%s)  \n", report.OverallScore, report.Severity)
	fmt.Fprintf(&b, "**Primary deception type:** %s  \n", report.PrimaryDeceptionType)
	if len(report.AllDeceptionTypes) > 0 {
		fmt.Fprintf(&b, "**All deception types:** %s  \n", joinTypes(report.AllDeceptionTypes))
	}
	if report.ID != "" {
		fmt.Fprintf(&b, "**Report ID:** %s  \n", report.ID)
	}
	if !report.Timestamp.IsZero() {
		fmt.Fprintf(&b, "**Generated:** %s\n", report.Timestamp.Format("2006-01-02 15:04:05 MST"))
	}

	b.WriteString("\n## Score Breakdown\n\n")
	b.WriteString("| Component | Score | Weight | Formula |\n")
	b.WriteString("|---|---|---|---|\n")
	for _, s := range report.Signals {
		fmt.Fprintf(&b, "| %s | %.2f | %.2f | `%s` |\n", s.Type, s.Score, s.Weight, s.Formula)
	}

	fmt.Fprintf(&b, "\n## Claims (%d)\n\n", report.NumClaims)
	r.claimsTable(&b, report.Claims)

	b.WriteString("\n## Certifications\n\n")
	if len(report.Certifications.Verified) == 0 {
		b.WriteString("_No certification marks detected._\n")
	}
	for _, c := range report.Certifications.Verified {
		status := c.Verified.String()
		if !c.Trustworthy {
			status = "questionable"
		}
		fmt.Fprintf(&b, "- **%s** (%s)", c.Name, status)
		if c.Issuer != "" {
			fmt.Fprintf(&b, ", issued by %s", c.Issuer)
		}
		if c.Warning != "" {
			fmt.Fprintf(&b, " ⚠ %s", c.Warning)
		}
		b.WriteString("\n")
	}

	vi := report.VisualIndicators
	b.WriteString("\n## Visual Indicators\n\n")
	fmt.Fprintf(&b, "- Green coverage: %.1f%%\n", vi.GreenPercentage)
	fmt.Fprintf(&b, "- Excessive green: %s\n", yesNo(vi.ExcessiveGreen))
	fmt.Fprintf(&b, "- Nature imagery: %s\n", yesNo(vi.NatureImagery))

	if len(report.RedFlags) > 0 {
		b.WriteString("\n## Red Flags\n\n")
		for _, f := range report.RedFlags {
			fmt.Fprintf(&b, "- **[%s]** %s: %s", f.Severity, f.Source, f.Flag)
			if f.Claim != "" {
				fmt.Fprintf(&b, " (\"%s\")", f.Claim)
			}
			b.WriteString("\n")
		}
	}

	if len(report.MissingEvidence) > 0 {
		b.WriteString("\n## Missing Evidence\n\n")
		for _, m := range report.MissingEvidence {
			fmt.Fprintf(&b, "- %s\n", m)
		}
	}

	b.WriteString("\n## Recommendations\n\n")
	for _, rec := range report.Recommendations {
		fmt.Fprintf(&b, "- %s\n", rec)
	}

	r.footer(&b)
	return b.String()
}

// TextMarkdown renders a text-only analysis
func (r *Renderer) TextMarkdown(ta model.TextAnalysis) string {
	var b strings.Builder
	b.WriteString("# Greenlens Text Analysis\n\n")
	fmt.Fprintf(&b, "**Score:** %.2f/100 (%s)  \n", ta.OverallScore, ta.Severity)
	fmt.Fprintf(&b, "**Deception type:** %s\n", ta.DeceptionType)

	fmt.Fprintf(&b, "\n## Claims (%d)\n\n", ta.NumClaims)
	r.claimsTable(&b, ta.Claims)

	b.WriteString("\n## Recommendations\n\n")
	for _, rec := range r.scorer.Recommendations(ta.OverallScore, nil) {
		fmt.Fprintf(&b, "- %s\n", rec)
	}

	r.footer(&b)
	return b.String()
}

func (r *Renderer) claimsTable(b *strings.Builder, claims []model.Claim) {
	if len(claims) == 0 {
		b.WriteString("_No sustainability claims found._\n")
		return
	}
	b.WriteString("| # | Claim | Type | Credibility | Vagueness | Verified | Flags |\n")
	b.WriteString("|---|---|---|---|---|---|---|\n")
	for i, c := range claims {
		fmt.Fprintf(b, "| %d | %s | %s | %.2f | %.2f | %s | %s |\n",
			i+1, cell(c.Text), c.Type, c.CredibilityScore(), c.VaguenessScore,
			yesNo(c.IsVerified()), cell(strings.Join(c.RedFlags, ", ")))
	}
}

func (r *Renderer) footer(b *strings.Builder) {
	if r.includeFooter {
		b.WriteString("\n---\n\n")
		b.WriteString(reportFooter)
		b.WriteString("\n")
	}
}

// Summary prints a short terminal summary of an image report
func (r *Renderer) Summary(w io.Writer, report *model.Report) {
	if !report.Success {
		fmt.Fprintf(w, "✗ Analysis failed for %s: %s\n", report.ImagePath, report.Error)
		return
	}

	fmt.Fprintf(w, "Greenlens: %s\n", report.ImagePath)
	fmt.Fprintf(w, "  Score:          %s\n", r.severityLine(w, report.OverallScore, report.Severity))
	fmt.Fprintf(w, "  Primary type:   %s\n", report.PrimaryDeceptionType)
	fmt.Fprintf(w, "  Claims:         %d\n", report.NumClaims)
	fmt.Fprintf(w, "  Certifications: %d claimed, %d questionable\n",
		len(report.Certifications.Claimed), report.Certifications.FakeDetected)
	fmt.Fprintf(w, "  Red flags:      %d\n", len(report.RedFlags))

	if len(report.Recommendations) > 0 {
		fmt.Fprintln(w)
		for _, rec := range report.Recommendations {
			fmt.Fprintf(w, "  %s\n", rec)
		}
	}
}

// TextSummary prints a short terminal summary of a text analysis
func (r *Renderer) TextSummary(w io.Writer, ta model.TextAnalysis) {
	fmt.Fprintf(w, "Score:          %s\n", r.severityLine(w, ta.OverallScore, ta.Severity))
	fmt.Fprintf(w, "Deception type: %s\n", ta.DeceptionType)
	fmt.Fprintf(w, "Claims:         %d\n", ta.NumClaims)
	for i, c := range ta.Claims {
		fmt.Fprintf(w, "  %d. [%s] %s (credibility %.2f)\n", i+1, c.Type, c.Text, c.CredibilityScore())
	}
}

func (r *Renderer) severityLine(w io.Writer, s float64, severity model.Severity) string {
	line := fmt.Sprintf("%.2f/100 (%s)", s, severity)
	if r.color && isTerminal(w) {
		return colorize(line, r.scorer.Color(severity))
	}
	return line
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// colorize wraps text in a 24-bit ANSI foreground colour given as #RRGGBB
func colorize(text, hex string) string {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 {
		return text
	}
	rgb, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return text
	}
	return fmt.Sprintf("\x1b[1;38;2;%d;%d;%dm%s\x1b[0m", rgb>>16&0xff, rgb>>8&0xff, rgb&0xff, text)
}

func joinTypes(types []model.DeceptionType) string {
	parts := make([]string, len(types))
	for i, t := range types {
		parts[i] = string(t)
	}
	return strings.Join(parts, ", ")
}

func cell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	return strings.ReplaceAll(s, "\n", " ")
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
