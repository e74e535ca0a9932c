package api

import (
	"github.com/ashureev/interview-coach/internal/domain"
	"github.com/ashureev/interview-coach/internal/interview"
)

// StartRequest is the body of POST /start_interview.
type StartRequest struct {
	Role  string `json:"role"`
	Level string `json:"level"`
}

// StartResponse is returned when a session begins.
type StartResponse struct {
	SessionID string           `json:"session_id"`
	Question  string           `json:"question"`
	Meta      *domain.Question `json:"meta"`
}

// AnswerRequest is the body of POST /answer.
type AnswerRequest struct {
	SessionID string `json:"session_id"`
	interview.Action
}

// AnswerResponse is the outcome of one action.
type AnswerResponse struct {
	FollowUp     string           `json:"follow_up"`
	AutoScore    *int             `json:"auto_score"`
	NextQuestion *string          `json:"next_question"`
	NextMeta     *domain.Question `json:"next_meta"`
	Done         bool             `json:"done"`
	Message      string           `json:"message,omitempty"`
}

// NewAnswerResponse converts a state machine response to its wire form.
func NewAnswerResponse(resp interview.Response) AnswerResponse {
	out := AnswerResponse{
		FollowUp:  resp.FollowUp,
		AutoScore: resp.AutoScore,
		Done:      resp.Done,
		Message:   resp.Message,
	}
	if resp.NextQuestion != nil {
		prompt := resp.NextQuestion.Prompt
		out.NextQuestion = &prompt
		out.NextMeta = resp.NextQuestion
	}
	return out
}
