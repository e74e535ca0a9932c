// Package interview implements the adaptive question-selection policy and
// the per-session answer-processing state machine.
package interview

import "github.com/ashureev/interview-coach/internal/domain"

// Settings holds the thresholds and caps used by the policy and the state machine.
type Settings struct {
	// MaxQuestions caps History length for new sessions.
	MaxQuestions int

	// ShallowWordThreshold marks answers with fewer words as shallow.
	ShallowWordThreshold int

	// MaxFollowupsPerQuestion limits how many declared follow-ups may be
	// chosen for a single question.
	MaxFollowupsPerQuestion int

	// ShortlistSize bounds the candidate list handed to weighted selection.
	ShortlistSize int

	// EscalationKeywordHits is the keyword-hit count at which harder
	// questions are considered and favoured.
	EscalationKeywordHits int

	// LongAnswerWords is the word count above which an answer earns the
	// length bonus in auto-scoring.
	LongAnswerWords int
}

// DefaultSettings returns the standard interview thresholds.
func DefaultSettings() Settings {
	return Settings{
		MaxQuestions:            domain.DefaultMaxQuestions,
		ShallowWordThreshold:    25,
		MaxFollowupsPerQuestion: 2,
		ShortlistSize:           6,
		EscalationKeywordHits:   2,
		LongAnswerWords:         40,
	}
}

// withDefaults fills zero-valued fields from DefaultSettings.
func (s Settings) withDefaults() Settings {
	d := DefaultSettings()
	if s.MaxQuestions <= 0 {
		s.MaxQuestions = d.MaxQuestions
	}
	if s.ShallowWordThreshold <= 0 {
		s.ShallowWordThreshold = d.ShallowWordThreshold
	}
	if s.MaxFollowupsPerQuestion <= 0 {
		s.MaxFollowupsPerQuestion = d.MaxFollowupsPerQuestion
	}
	if s.ShortlistSize <= 0 {
		s.ShortlistSize = d.ShortlistSize
	}
	if s.EscalationKeywordHits <= 0 {
		s.EscalationKeywordHits = d.EscalationKeywordHits
	}
	if s.LongAnswerWords <= 0 {
		s.LongAnswerWords = d.LongAnswerWords
	}
	return s
}
