package interview

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashureev/interview-coach/internal/domain"
	"github.com/ashureev/interview-coach/internal/llm"
)

func newTestMachine(gen TextGenerator) *Machine {
	settings := DefaultSettings()
	return NewMachine(settings, NewPolicy(settings, fixedSource{r: 0}), gen, nil)
}

func backendPool() []domain.Question {
	return []domain.Question{
		{ID: "b1", Prompt: "Design a URL shortener", Tags: []string{"design"}, Keywords: []string{"hash", "cache", "database"}},
		{ID: "b2", Prompt: "Explain indexes", Tags: []string{"db"}, Keywords: []string{"btree"}},
		{ID: "b3", Prompt: "Describe a conflict", Tags: []string{"people"}, Competency: "behavioral"},
	}
}

func TestMachine_ShortAnswer(t *testing.T) {
	m := newTestMachine(nil)
	s := domain.NewSession("s1", "backend", "entry", backendPool(), 10)

	resp, changed := m.Apply(context.Background(), s, Action{Answer: "I would use a map"})
	require.True(t, changed)

	assert.Equal(t, FollowupMoreDetail, resp.FollowUp)
	require.NotNil(t, resp.AutoScore)
	assert.Equal(t, 1, *resp.AutoScore)
	assert.False(t, resp.Done)
	require.NotNil(t, resp.NextQuestion)

	require.Len(t, s.History, 1)
	entry := s.History[0]
	assert.Equal(t, "b1", entry.QuestionID)
	assert.Equal(t, "b1", entry.ParentID)
	require.NotNil(t, entry.Score)
	assert.Equal(t, 1, *entry.Score)
	assert.Equal(t, []domain.ScoreEvent{{Index: 0, Score: 1}}, s.Scores)
	assert.NotEqual(t, 0, s.Index)
}

func TestMachine_RichAnswerScoresFive(t *testing.T) {
	m := newTestMachine(nil)
	s := domain.NewSession("s1", "backend", "entry", backendPool(), 10)

	answer := "hash cache database " + words(47)
	resp, _ := m.Apply(context.Background(), s, Action{Answer: answer})

	require.NotNil(t, resp.AutoScore)
	assert.Equal(t, 5, *resp.AutoScore)
}

func TestMachine_HintLeavesSessionUntouched(t *testing.T) {
	m := newTestMachine(nil)
	pool := backendPool()
	pool[0].ExampleAnswer = "Base62 ids backed by a KV store."
	s := domain.NewSession("s1", "backend", "entry", pool, 10)

	resp, changed := m.Apply(context.Background(), s, Action{Hint: true, Answer: "ignored", Skip: true})
	assert.False(t, changed)
	assert.False(t, resp.Done)
	assert.Equal(t, "(Hint) Example: Base62 ids backed by a KV store.", resp.FollowUp)
	require.NotNil(t, resp.NextQuestion)
	assert.Equal(t, "b1", resp.NextQuestion.ID)
	assert.Equal(t, 0, s.Index)
	assert.Empty(t, s.History)
	assert.Empty(t, s.Scores)
}

func TestMachine_SkipEveryQuestion(t *testing.T) {
	m := newTestMachine(nil)
	s := domain.NewSession("s1", "backend", "entry", backendPool()[:2], 10)

	first, changed := m.Apply(context.Background(), s, Action{Skip: true})
	require.True(t, changed)
	assert.False(t, first.Done)
	assert.Equal(t, "Skipped. Moving to next question.", first.FollowUp)
	require.NotNil(t, first.NextQuestion)
	assert.Equal(t, "b2", first.NextQuestion.ID)

	second, _ := m.Apply(context.Background(), s, Action{Skip: true})
	assert.True(t, second.Done)
	assert.Equal(t, "Skipped. Interview complete.", second.FollowUp)
	assert.Nil(t, second.NextQuestion)

	require.Len(t, s.History, 2)
	for _, h := range s.History {
		assert.Equal(t, domain.SkipSentinel, h.Answer)
		assert.Equal(t, 0, h.ScoreValue())
		assert.Empty(t, h.ParentID)
	}
	assert.Equal(t, []domain.ScoreEvent{{Index: 0, Score: 0}, {Index: 1, Score: 0}}, s.Scores)
	assert.True(t, s.IsTerminal())
}

func TestMachine_CapReached(t *testing.T) {
	settings := DefaultSettings()
	m := NewMachine(settings, NewPolicy(settings, fixedSource{}), nil, nil)
	s := domain.NewSession("s1", "backend", "entry", backendPool(), 2)

	_, _ = m.Apply(context.Background(), s, Action{Answer: "one"})
	resp, _ := m.Apply(context.Background(), s, Action{Answer: "two"})
	assert.True(t, resp.Done)
	assert.Nil(t, resp.NextQuestion)

	resp, changed := m.Apply(context.Background(), s, Action{Answer: "three"})
	assert.False(t, changed)
	assert.True(t, resp.Done)
	assert.Equal(t, MessageCapReached, resp.Message)
	assert.Len(t, s.History, 2)
}

func TestMachine_ExhaustedPoolMessage(t *testing.T) {
	m := newTestMachine(nil)
	s := domain.NewSession("s1", "backend", "entry", backendPool()[:1], 10)

	resp, _ := m.Apply(context.Background(), s, Action{Answer: "only answer"})
	assert.True(t, resp.Done)

	resp, changed := m.Apply(context.Background(), s, Action{Skip: true})
	assert.False(t, changed)
	assert.Equal(t, MessageNoMore, resp.Message)
}

func TestMachine_HintOnTerminalSession(t *testing.T) {
	m := newTestMachine(nil)
	s := domain.NewSession("s1", "backend", "entry", backendPool()[:1], 10)
	_, _ = m.Apply(context.Background(), s, Action{Skip: true})

	resp, changed := m.Apply(context.Background(), s, Action{Hint: true})
	assert.False(t, changed)
	assert.True(t, resp.Done)
	assert.Equal(t, MessageNoMore, resp.Message)
}

func TestMachine_GeneratorSupplement(t *testing.T) {
	gen := &stubGenerator{result: llm.Result{Text: "What was the hit rate?"}}
	m := newTestMachine(gen)
	s := domain.NewSession("s1", "backend", "entry", backendPool(), 10)

	resp, _ := m.Apply(context.Background(), s, Action{Answer: "cache"})
	assert.Equal(t, FollowupMoreDetail+" | LM: What was the hit rate?", resp.FollowUp)
	assert.Equal(t, 1, gen.calls)
}

func TestMachine_GeneratorFallbackIsNotShown(t *testing.T) {
	gen := &stubGenerator{result: llm.Result{
		Text:         "(LLM fallback) You are an interviewer.",
		FallbackUsed: true,
		Err:          errors.New("down"),
	}}
	m := newTestMachine(gen)
	s := domain.NewSession("s1", "backend", "entry", backendPool(), 10)

	resp, changed := m.Apply(context.Background(), s, Action{Answer: "cache"})
	assert.True(t, changed)
	assert.Equal(t, FollowupMoreDetail, resp.FollowUp)
}

func TestMachine_PolicyPanicFallsBackToSequential(t *testing.T) {
	settings := DefaultSettings()
	broken := &Policy{settings: settings, sampler: NewWeightedSampler(nil)}
	m := NewMachine(settings, broken, nil, nil)
	s := domain.NewSession("s1", "backend", "entry", backendPool(), 10)

	resp, changed := m.Apply(context.Background(), s, Action{Answer: "short"})
	require.True(t, changed)
	assert.Equal(t, 1, s.Index)
	require.NotNil(t, resp.NextQuestion)
	assert.Equal(t, "b2", resp.NextQuestion.ID)
}

func TestMachine_SequentialSkipsAskedQuestions(t *testing.T) {
	m := NewMachine(DefaultSettings(), nil, nil, nil)
	s := domain.NewSession("s1", "backend", "entry", backendPool(), 10)
	s.History = append(s.History, domain.HistoryEntry{QuestionID: "b2"})

	_, _ = m.Apply(context.Background(), s, Action{Answer: "x"})
	assert.Equal(t, 2, s.Index)
}

func TestMachine_NeverRepeatsAQuestion(t *testing.T) {
	pool := make([]domain.Question, 0, 8)
	for _, id := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		q := question(id, "shared")
		q.FollowupIDs = []string{"a", "b", "c"}
		pool = append(pool, q)
	}
	settings := DefaultSettings()
	m := NewMachine(settings, NewPolicy(settings, NewSource(3)), nil, nil)
	s := domain.NewSession("s1", "backend", "entry", pool, 8)

	for !s.IsTerminal() {
		_, _ = m.Apply(context.Background(), s, Action{Answer: "brief"})
	}

	seen := map[string]bool{}
	for _, h := range s.History {
		assert.False(t, seen[h.QuestionID], "question %s asked twice", h.QuestionID)
		seen[h.QuestionID] = true
		assert.LessOrEqual(t, s.FollowupCount(h.QuestionID), settings.MaxFollowupsPerQuestion)
	}
	assert.Len(t, s.History, 8)
}
