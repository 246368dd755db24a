package llm

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
)

// scoreMention matches "63/100", "63.5 / 100" and "score of 63.50 out of 100"
var scoreMention = regexp.MustCompile(`(\d{1,3}(?:\.\d+)?)\s*(?:/|out of)\s*100\b`)

// checkScoreDrift rejects narratives that quote an overall score other than
// the one the report carries
func checkScoreDrift(summary string, score float64) error {
	for _, m := range scoreMention.FindAllStringSubmatch(summary, -1) {
		quoted, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		if math.Abs(quoted-score) > 0.5 {
			return fmt.Errorf("SCORE DRIFT: summary quotes %s/100 but the report scored %.2f/100", m[1], score)
		}
	}
	return nil
}
