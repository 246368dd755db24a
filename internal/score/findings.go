package score

import (
	"fmt"
	"strings"

	"github.com/ppiankov/greenlens/internal/model"
)

// RedFlags compiles claim, certification and visual red flags in that order
func (s *Scorer) RedFlags(claims []model.Claim, cv *model.CVResult) []model.RedFlag {
	var flags []model.RedFlag

	for _, c := range claims {
		for _, flag := range c.RedFlags {
			severity := model.FlagMedium
			if strings.Contains(strings.ToLower(flag), "absolute claim") {
				severity = model.FlagHigh
			}
			flags = append(flags, model.RedFlag{
				Source:   model.SourceClaimAnalysis,
				Claim:    c.Text,
				Flag:     flag,
				Severity: severity,
			})
		}
	}

	if cv == nil {
		return flags
	}

	for _, cert := range cv.CertificationsVerified {
		switch {
		case !cert.Trustworthy:
			flags = append(flags, model.RedFlag{
				Source:   model.SourceCertification,
				Flag:     "Questionable certification: " + cert.Name,
				Severity: model.FlagCritical,
			})
		case cert.Verified == model.Unverified:
			flags = append(flags, model.RedFlag{
				Source:   model.SourceCertification,
				Flag:     "Unverified certification: " + cert.Name,
				Severity: model.FlagHigh,
			})
		}
	}

	if cv.VisualGreenwashing.ExcessiveGreen {
		flags = append(flags, model.RedFlag{
			Source:   model.SourceVisual,
			Flag:     fmt.Sprintf("Excessive green coloring (%.1f%%)", cv.VisualGreenwashing.GreenPercentage),
			Severity: model.FlagMedium,
		})
	}

	return flags
}

// MissingEvidence lists claims that need a certification that was not found
// or that lack specific, measurable details
func (s *Scorer) MissingEvidence(claims []model.Claim) []string {
	var missing []string

	for _, c := range claims {
		if c.MissingCertification() {
			missing = append(missing, fmt.Sprintf("Claim '%s' requires certification but none provided", c.Text))
		}
		if c.VaguenessScore > s.cfg.VaguenessThreshold {
			missing = append(missing, fmt.Sprintf("Claim '%s' lacks specific, measurable details", c.Text))
		}
	}

	return missing
}
