package interview

import (
	"fmt"
	"strings"

	"github.com/ashureev/interview-coach/internal/domain"
)

// Follow-up templates, chosen in this priority order.
const (
	FollowupMoreDetail      = "Can you provide more details and any concrete metrics or results?"
	FollowupMeasurable      = "Could you share the measurable outcome or result (numbers, improvement, time)?"
	FollowupTradeoffs       = "What tradeoffs or complexity considerations did you evaluate for this approach?"
	FollowupClarifyAssumpts = "Can you clarify any assumptions you made?"
)

const defaultHint = "Try to structure with Situation, Action, Result and include numbers if possible."

var tradeoffMarkers = []string{"tradeoff", "trade-offs", "complexity", "latency", "space", "time", "scalab"}

// HeuristicFollowup picks the clarifying prompt for an answer.
func HeuristicFollowup(answer string, q *domain.Question, sig Signals, shallowThreshold int) string {
	if sig.WordCount < shallowThreshold {
		return FollowupMoreDetail
	}

	competency := ""
	if q != nil {
		competency = strings.ToLower(q.Competency)
	}
	switch {
	case competency == "behavioral" && !sig.HasNumericEvidence:
		return FollowupMeasurable
	case competency == "technical" && !containsAny(answer, tradeoffMarkers):
		return FollowupTradeoffs
	}
	return FollowupClarifyAssumpts
}

// AutoScore rates an answer in [1,5] from keyword hits and length.
func AutoScore(sig Signals, longAnswerWords int) int {
	score := 1 + min(3, sig.KeywordHits)
	if sig.WordCount > longAnswerWords {
		score++
	}
	return max(1, min(5, score))
}

// HintText returns the hint shown for q.
func HintText(q *domain.Question) string {
	example := defaultHint
	if q != nil && strings.TrimSpace(q.ExampleAnswer) != "" {
		example = q.ExampleAnswer
	}
	return "(Hint) Example: " + example
}

func followupPrompt(s *domain.Session, q *domain.Question, answer string) string {
	return fmt.Sprintf(
		"You are an interviewer. Role: %s Level: %s\nQuestion: %s\nCandidate answer: %s\n"+
			"Produce one concise probing follow-up question to dig deeper.",
		s.Role, s.Level, q.Prompt, answer,
	)
}

func containsAny(text string, words []string) bool {
	t := strings.ToLower(text)
	for _, w := range words {
		if strings.Contains(t, strings.ToLower(w)) {
			return true
		}
	}
	return false
}
