package interview

import (
	"strings"
	"unicode"

	"github.com/ashureev/interview-coach/internal/domain"
)

// Signals are quantitative features derived from one answer.
type Signals struct {
	WordCount          int
	KeywordHits        int
	HasNumericEvidence bool
	IsShallow          bool
}

// ExtractSignals derives answer signals against the question's keywords.
// A nil question contributes no keywords.
func ExtractSignals(answer string, q *domain.Question, shallowThreshold int) Signals {
	words := len(strings.Fields(answer))

	hits := 0
	if q != nil {
		lower := strings.ToLower(answer)
		for _, k := range q.Keywords {
			if strings.Contains(lower, strings.ToLower(k)) {
				hits++
			}
		}
	}

	return Signals{
		WordCount:          words,
		KeywordHits:        hits,
		HasNumericEvidence: strings.IndexFunc(answer, unicode.IsDigit) >= 0,
		IsShallow:          words < shallowThreshold,
	}
}
