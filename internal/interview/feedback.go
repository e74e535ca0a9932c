package interview

import (
	"context"
	"fmt"

	"github.com/ashureev/interview-coach/internal/domain"
)

const (
	feedbackListLimit   = 3
	strengthScore       = 4
	exampleExcerptRunes = 240
	improvementAdvice   = "Be more specific; include metrics and structure."
	summaryUnavailable  = "(LLM unavailable)"
)

// Strength is a well-answered question with an excerpt of the answer.
type Strength struct {
	Question string `json:"q"`
	Example  string `json:"example"`
}

// Improvement is a weakly answered question with advice.
type Improvement struct {
	Question string `json:"q"`
	Advice   string `json:"advice"`
}

// Feedback aggregates a session's scores and history.
type Feedback struct {
	AvgScore     float64       `json:"avg_score"`
	Strengths    []Strength    `json:"strengths"`
	Improvements []Improvement `json:"improvements"`
	Summary      string        `json:"llm_report"`
}

// Feedback builds the end-of-interview report for a session.
func (s *Service) Feedback(ctx context.Context, sessionID string) (*Feedback, error) {
	session, err := s.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	fb := Aggregate(session)
	fb.Summary = summaryUnavailable
	if s.generator != nil {
		res := s.generator.Generate(ctx, summaryPrompt(session, fb.AvgScore))
		if res.FallbackUsed {
			s.logger.Warn("feedback summary degraded", "session_id", sessionID, "error", res.Err)
		} else {
			fb.Summary = res.Text
		}
	}
	return fb, nil
}

// Aggregate computes the score average and the strength/improvement lists.
// Unscored entries count as 0.
func Aggregate(session *domain.Session) *Feedback {
	fb := &Feedback{
		Strengths:    []Strength{},
		Improvements: []Improvement{},
	}

	if len(session.Scores) > 0 {
		total := 0
		for _, e := range session.Scores {
			total += e.Score
		}
		fb.AvgScore = float64(total) / float64(len(session.Scores))
	}

	for _, h := range session.History {
		if h.ScoreValue() >= strengthScore {
			if len(fb.Strengths) < feedbackListLimit {
				fb.Strengths = append(fb.Strengths, Strength{Question: h.Question, Example: excerpt(h.Answer, exampleExcerptRunes)})
			}
			continue
		}
		if len(fb.Improvements) < feedbackListLimit {
			fb.Improvements = append(fb.Improvements, Improvement{Question: h.Question, Advice: improvementAdvice})
		}
	}
	return fb
}

func summaryPrompt(session *domain.Session, avg float64) string {
	return fmt.Sprintf(
		"Provide a concise feedback report for a candidate who did an interview for role %s "+
			"at level %s. Average score %.2f. Provide 3 strengths and 3 improvements.",
		session.Role, session.Level, avg,
	)
}

func excerpt(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
