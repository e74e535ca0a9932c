package interview

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/ashureev/interview-coach/internal/domain"
	"github.com/ashureev/interview-coach/internal/llm"
)

// fixedSource always draws r and never reorders.
type fixedSource struct{ r float64 }

func (f fixedSource) Float64() float64          { return f.r }
func (fixedSource) Shuffle(int, func(i, j int)) {}

func question(id string, tags ...string) domain.Question {
	return domain.Question{ID: id, Prompt: "Question " + id, Tags: tags}
}

func weight(w float64) *float64 { return &w }

func words(n int) string {
	b := make([]byte, 0, n*5)
	for i := 0; i < n; i++ {
		if i > 0 {
			b = append(b, ' ')
		}
		b = append(b, "word"...)
	}
	return string(b)
}

type stubGenerator struct {
	result llm.Result
	calls  int
}

func (g *stubGenerator) Generate(_ context.Context, _ string) llm.Result {
	g.calls++
	return g.result
}

type fakePools struct {
	pools map[string][]domain.Question
	calls []string
}

func (f *fakePools) LoadPool(role, level string) ([]domain.Question, error) {
	f.calls = append(f.calls, role+"/"+level)
	pool, ok := f.pools[role+"/"+level]
	if !ok {
		return nil, fmt.Errorf("role %q: %w", role, domain.ErrRoleNotFound)
	}
	out := make([]domain.Question, len(pool))
	for i, q := range pool {
		out[i] = q.Clone()
	}
	return out, nil
}

// memStore round-trips records through JSON like a real store would.
type memStore struct {
	mu      sync.Mutex
	records map[string][]byte
	saves   int
}

func newMemStore() *memStore {
	return &memStore{records: make(map[string][]byte)}
}

func (m *memStore) GetSession(_ context.Context, id string) (*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.records[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	var s domain.Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	return &s, s.Validate()
}

func (m *memStore) SaveSession(_ context.Context, s *domain.Session) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[s.ID] = raw
	m.saves++
	return nil
}

func (m *memStore) saveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}
