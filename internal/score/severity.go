package score

import (
	"sort"

	"github.com/ppiankov/greenlens/internal/model"
)

// Band returns the severity band containing score. Bands are half-open
// [Min, next.Min); scores below the first band fall into it.
func (s *Scorer) Band(score float64) model.SeverityBand {
	band := s.cfg.Bands[0]
	for _, b := range s.cfg.Bands[1:] {
		if score < b.Min {
			break
		}
		band = b
	}
	return band
}

// Severity converts a score to its severity label
func (s *Scorer) Severity(score float64) model.Severity {
	return s.Band(score).Label
}

// Color returns the hex colour of the band a severity label belongs to
func (s *Scorer) Color(severity model.Severity) string {
	for _, b := range s.cfg.Bands {
		if b.Label == severity {
			return b.Color
		}
	}
	return ""
}

// Recommendations generates consumer advice from the severity band plus one
// line per detected deception type that has advice configured
func (s *Scorer) Recommendations(score float64, types []model.DeceptionType) []string {
	recommendations := append([]string(nil), s.Band(score).Recommendations...)

	present := make(map[model.DeceptionType]bool, len(types))
	for _, t := range types {
		present[t] = true
	}

	keys := make([]string, 0, len(s.cfg.TypeAdvice))
	for t := range s.cfg.TypeAdvice {
		keys = append(keys, string(t))
	}
	sort.Strings(keys)

	for _, k := range keys {
		t := model.DeceptionType(k)
		if present[t] {
			recommendations = append(recommendations, s.cfg.TypeAdvice[t])
		}
	}

	return recommendations
}
