package domain

import (
	"fmt"
	"time"
)

// DefaultMaxQuestions caps the number of presentations per session.
const DefaultMaxQuestions = 10

// SkipSentinel is recorded as the answer text of a skipped question.
const SkipSentinel = "(skipped)"

// HistoryEntry records one processed answer or skip.
type HistoryEntry struct {
	QuestionID string   `json:"id"`
	Question   string   `json:"question"`
	Answer     string   `json:"answer"`
	Tags       []string `json:"tags"`
	ParentID   string   `json:"parent_id,omitempty"`
	Score      *int     `json:"score"`
}

// Scored reports whether the entry has a score.
func (h *HistoryEntry) Scored() bool {
	return h.Score != nil
}

// ScoreValue returns the score or 0 when unscored.
func (h *HistoryEntry) ScoreValue() int {
	if h.Score == nil {
		return 0
	}
	return *h.Score
}

// ScoreEvent pairs a pool position with the score recorded there.
type ScoreEvent struct {
	Index int `json:"index"`
	Score int `json:"score"`
}

// Session is the persisted state of one candidate's interview.
type Session struct {
	ID           string         `json:"id"`
	Role         string         `json:"role"`
	Level        string         `json:"level"`
	Questions    []Question     `json:"questions"`
	Index        int            `json:"index"`
	History      []HistoryEntry `json:"history"`
	Scores       []ScoreEvent   `json:"scores"`
	MaxQuestions int            `json:"max_questions"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// NewSession creates a session positioned on the first pool question.
func NewSession(id, role, level string, pool []Question, maxQuestions int) *Session {
	if maxQuestions <= 0 {
		maxQuestions = DefaultMaxQuestions
	}
	now := time.Now().UTC()
	return &Session{
		ID:           id,
		Role:         role,
		Level:        level,
		Questions:    pool,
		Index:        0,
		History:      []HistoryEntry{},
		Scores:       []ScoreEvent{},
		MaxQuestions: maxQuestions,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// CapReached reports whether the history has hit MaxQuestions.
func (s *Session) CapReached() bool {
	return len(s.History) >= s.MaxQuestions
}

// Exhausted reports whether the index has moved past the pool.
func (s *Session) Exhausted() bool {
	return s.Index >= len(s.Questions)
}

// IsTerminal reports whether the session will yield no further questions.
func (s *Session) IsTerminal() bool {
	return s.CapReached() || s.Exhausted()
}

// Current returns the question at Index, or nil when out of bounds.
func (s *Session) Current() *Question {
	if s.Index < 0 || s.Index >= len(s.Questions) {
		return nil
	}
	return &s.Questions[s.Index]
}

// AskedIDs returns the set of question ids present in History.
func (s *Session) AskedIDs() map[string]struct{} {
	asked := make(map[string]struct{}, len(s.History))
	for _, h := range s.History {
		if h.QuestionID != "" {
			asked[h.QuestionID] = struct{}{}
		}
	}
	return asked
}

// CoveredTags returns the set of tags touched by History.
func (s *Session) CoveredTags() map[string]struct{} {
	covered := make(map[string]struct{})
	for _, h := range s.History {
		for _, t := range h.Tags {
			covered[t] = struct{}{}
		}
	}
	return covered
}

// FollowupCount counts History entries whose parent is parentID.
func (s *Session) FollowupCount(parentID string) int {
	n := 0
	for _, h := range s.History {
		if h.ParentID != "" && h.ParentID == parentID {
			n++
		}
	}
	return n
}

// PositionOf returns the pool position of the question with id, or -1.
func (s *Session) PositionOf(id string) int {
	for i := range s.Questions {
		if s.Questions[i].ID == id {
			return i
		}
	}
	return -1
}

// NextUnseenIndex scans forward from Index+1 for a pool position whose
// question is not in History. It returns len(Questions) when none remains.
// Positions before Index are never revisited, so a skip after a forward jump
// may end the session with earlier questions unasked.
func (s *Session) NextUnseenIndex() int {
	asked := s.AskedIDs()
	next := s.Index + 1
	for next < len(s.Questions) {
		if _, seen := asked[s.Questions[next].ID]; !seen {
			break
		}
		next++
	}
	if next > len(s.Questions) {
		next = len(s.Questions)
	}
	return next
}

// Validate checks the structural invariants of a loaded record.
func (s *Session) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidSession)
	}
	if s.MaxQuestions <= 0 {
		return fmt.Errorf("%w: max_questions must be > 0, got %d", ErrInvalidSession, s.MaxQuestions)
	}
	if s.Index < 0 || s.Index > len(s.Questions) {
		return fmt.Errorf("%w: index %d outside pool of %d", ErrInvalidSession, s.Index, len(s.Questions))
	}
	for i, q := range s.Questions {
		if q.ID == "" {
			return fmt.Errorf("%w: pool question %d has no id", ErrInvalidSession, i)
		}
	}
	for i, h := range s.History {
		if h.QuestionID == "" {
			return fmt.Errorf("%w: history entry %d has no question id", ErrInvalidSession, i)
		}
		if h.Score != nil && (*h.Score < 0 || *h.Score > 5) {
			return fmt.Errorf("%w: history entry %d score %d out of range", ErrInvalidSession, i, *h.Score)
		}
	}
	if s.History == nil {
		s.History = []HistoryEntry{}
	}
	if s.Scores == nil {
		s.Scores = []ScoreEvent{}
	}
	return nil
}
