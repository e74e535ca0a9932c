package interview

import (
	"context"
	"log/slog"

	"github.com/ashureev/interview-coach/internal/domain"
	"github.com/ashureev/interview-coach/internal/llm"
)

// Messages carried by terminal responses.
const (
	MessageCapReached   = "Max questions reached. Please request feedback."
	MessageNoMore       = "No more questions"
	skippedMovingOn     = "Skipped. Moving to next question."
	skippedInterviewEnd = "Skipped. Interview complete."
)

// TextGenerator is the best-effort text-generation collaborator.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) llm.Result
}

// Action is one candidate action against a session. Hint takes precedence
// over Skip, and Skip over Answer.
type Action struct {
	Answer string `json:"answer"`
	Hint   bool   `json:"hint"`
	Skip   bool   `json:"skip"`
}

// Response is the outcome of applying an Action.
type Response struct {
	FollowUp     string
	AutoScore    *int
	NextQuestion *domain.Question
	Done         bool
	Message      string
}

// Machine applies actions to session records.
type Machine struct {
	settings  Settings
	policy    *Policy
	generator TextGenerator
	logger    *slog.Logger
}

// NewMachine creates a state machine. generator may be nil, in which case
// follow-ups are heuristic only.
func NewMachine(settings Settings, policy *Policy, generator TextGenerator, logger *slog.Logger) *Machine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Machine{
		settings:  settings.withDefaults(),
		policy:    policy,
		generator: generator,
		logger:    logger,
	}
}

// Apply runs act against s, mutating it in place. The returned bool reports
// whether s changed and must be persisted.
func (m *Machine) Apply(ctx context.Context, s *domain.Session, act Action) (Response, bool) {
	if act.Hint {
		return m.hint(s), false
	}
	if s.IsTerminal() {
		return doneResponse(s), false
	}
	if act.Skip {
		return m.skip(s), true
	}
	return m.answer(ctx, s, act.Answer), true
}

func (m *Machine) hint(s *domain.Session) Response {
	q := s.Current()
	if q == nil {
		return doneResponse(s)
	}
	return Response{
		FollowUp:     HintText(q),
		NextQuestion: q,
		Done:         s.IsTerminal(),
	}
}

func (m *Machine) skip(s *domain.Session) Response {
	idx := s.Index
	q := s.Current()

	zero := 0
	s.History = append(s.History, domain.HistoryEntry{
		QuestionID: q.ID,
		Question:   q.Prompt,
		Answer:     domain.SkipSentinel,
		Tags:       cloneTags(q.Tags),
		Score:      &zero,
	})
	s.Scores = append(s.Scores, domain.ScoreEvent{Index: idx, Score: 0})
	s.Index = s.NextUnseenIndex()

	resp := Response{AutoScore: &zero}
	if s.IsTerminal() {
		resp.FollowUp = skippedInterviewEnd
		resp.Done = true
		return resp
	}
	resp.FollowUp = skippedMovingOn
	resp.NextQuestion = s.Current()
	return resp
}

func (m *Machine) answer(ctx context.Context, s *domain.Session, answer string) Response {
	idx := s.Index
	q := s.Current()

	s.History = append(s.History, domain.HistoryEntry{
		QuestionID: q.ID,
		Question:   q.Prompt,
		Answer:     answer,
		Tags:       cloneTags(q.Tags),
	})

	sig := ExtractSignals(answer, q, m.settings.ShallowWordThreshold)
	followUp := HeuristicFollowup(answer, q, sig, m.settings.ShallowWordThreshold)
	if m.generator != nil {
		res := m.generator.Generate(ctx, followupPrompt(s, q, answer))
		if res.FallbackUsed {
			m.logger.Warn("follow-up generation degraded, using heuristic text",
				"session_id", s.ID,
				"question_id", q.ID,
				"error", res.Err)
		} else if res.Text != "" {
			followUp += " | LM: " + res.Text
		}
	}

	score := AutoScore(sig, m.settings.LongAnswerWords)
	last := &s.History[len(s.History)-1]
	last.Score = &score
	last.ParentID = q.ID
	s.Scores = append(s.Scores, domain.ScoreEvent{Index: idx, Score: score})

	next := m.chooseNext(s, answer, q)
	pos := -1
	if next != nil {
		pos = s.PositionOf(next.ID)
	}
	if pos >= 0 {
		s.Index = pos
	} else {
		s.Index = s.NextUnseenIndex()
	}

	resp := Response{FollowUp: followUp, AutoScore: &score}
	if s.IsTerminal() {
		resp.Done = true
		return resp
	}
	resp.NextQuestion = s.Current()
	return resp
}

// chooseNext runs the selection policy, absorbing any failure as "no choice".
func (m *Machine) chooseNext(s *domain.Session, answer string, q *domain.Question) (next *domain.Question) {
	if m.policy == nil {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			m.logger.Warn("selection policy failed, advancing sequentially",
				"session_id", s.ID,
				"question_id", q.ID,
				"panic", r)
			next = nil
		}
	}()
	return m.policy.ChooseNext(s, answer, q)
}

func doneResponse(s *domain.Session) Response {
	msg := MessageNoMore
	if s.CapReached() {
		msg = MessageCapReached
	}
	return Response{Done: true, Message: msg}
}

func cloneTags(tags []string) []string {
	out := make([]string, len(tags))
	copy(out, tags)
	return out
}
