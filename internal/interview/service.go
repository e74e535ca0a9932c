package interview

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/ashureev/interview-coach/internal/domain"
	"github.com/google/uuid"
)

// PoolProvider supplies the question pool for a role and level.
type PoolProvider interface {
	LoadPool(role, level string) ([]domain.Question, error)
}

// SessionStore loads and saves whole session records.
type SessionStore interface {
	GetSession(ctx context.Context, sessionID string) (*domain.Session, error)
	SaveSession(ctx context.Context, session *domain.Session) error
}

// Options configures a Service.
type Options struct {
	Settings  Settings
	Source    Source
	Generator TextGenerator
	Logger    *slog.Logger

	// NewID generates session ids. Defaults to uuid.NewString.
	NewID func() string
}

// StartResult is returned when a session begins.
type StartResult struct {
	SessionID     string
	FirstQuestion domain.Question
}

// Progress summarises where a session stands.
type Progress struct {
	SessionID    string           `json:"session_id"`
	Role         string           `json:"role"`
	Level        string           `json:"level"`
	Index        int              `json:"index"`
	PoolSize     int              `json:"pool_size"`
	Answered     int              `json:"answered"`
	MaxQuestions int              `json:"max_questions"`
	Done         bool             `json:"done"`
	Current      *domain.Question `json:"current,omitempty"`
}

// Service drives interview sessions against a pool provider and session store.
type Service struct {
	pools     PoolProvider
	sessions  SessionStore
	machine   *Machine
	generator TextGenerator
	source    Source
	settings  Settings
	locks     *keyedMutex
	newID     func() string
	logger    *slog.Logger
}

// NewService wires a Service. A nil Source is replaced by a crypto-seeded one.
func NewService(pools PoolProvider, sessions SessionStore, opts Options) (*Service, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	src := opts.Source
	if src == nil {
		seed, err := NewSeed()
		if err != nil {
			return nil, err
		}
		src = NewSource(seed)
	}
	newID := opts.NewID
	if newID == nil {
		newID = uuid.NewString
	}
	settings := opts.Settings.withDefaults()
	policy := NewPolicy(settings, src)

	return &Service{
		pools:     pools,
		sessions:  sessions,
		machine:   NewMachine(settings, policy, opts.Generator, logger),
		generator: opts.Generator,
		source:    src,
		settings:  settings,
		locks:     newKeyedMutex(),
		newID:     newID,
		logger:    logger,
	}, nil
}

// Start creates a session with a shuffled pool for role and level.
func (s *Service) Start(ctx context.Context, role, level string) (*StartResult, error) {
	if strings.TrimSpace(level) == "" {
		level = domain.DefaultLevel
	}

	pool, err := s.pools.LoadPool(role, level)
	if err != nil {
		return nil, fmt.Errorf("load pool for %s/%s: %w", role, level, err)
	}
	if len(pool) == 0 {
		return nil, fmt.Errorf("load pool for %s/%s: %w", role, level, domain.ErrPoolEmpty)
	}

	s.source.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })

	session := domain.NewSession(s.newID(), role, level, pool, s.settings.MaxQuestions)
	if err := s.sessions.SaveSession(ctx, session); err != nil {
		return nil, fmt.Errorf("save new session: %w", err)
	}

	s.logger.Info("Interview started",
		"session_id", session.ID,
		"role", role,
		"level", level,
		"pool_size", len(pool))

	return &StartResult{SessionID: session.ID, FirstQuestion: pool[0]}, nil
}

// Submit applies one action to the session. Actions on the same session
// are serialized; the session is persisted only when it changed.
func (s *Service) Submit(ctx context.Context, sessionID string, act Action) (Response, error) {
	unlock := s.locks.Lock(sessionID)
	defer unlock()

	session, err := s.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return Response{}, err
	}

	resp, changed := s.machine.Apply(ctx, session, act)
	if !changed {
		return resp, nil
	}

	session.UpdatedAt = time.Now().UTC()
	if err := s.sessions.SaveSession(ctx, session); err != nil {
		return Response{}, fmt.Errorf("save session %s: %w", sessionID, err)
	}

	s.logger.Debug("Interview action applied",
		"session_id", sessionID,
		"skip", act.Skip,
		"index", session.Index,
		"answered", len(session.History),
		"done", resp.Done)

	return resp, nil
}

// Progress reports the current state of a session.
func (s *Service) Progress(ctx context.Context, sessionID string) (*Progress, error) {
	session, err := s.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	p := &Progress{
		SessionID:    session.ID,
		Role:         session.Role,
		Level:        session.Level,
		Index:        session.Index,
		PoolSize:     len(session.Questions),
		Answered:     len(session.History),
		MaxQuestions: session.MaxQuestions,
		Done:         session.IsTerminal(),
	}
	if !p.Done {
		p.Current = session.Current()
	}
	return p, nil
}

// keyedMutex hands out one mutex per key, released when unused.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*refMutex)}
}

// Lock acquires the mutex for key and returns its release func.
func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &refMutex{}
		k.locks[key] = m
	}
	m.refs++
	k.mu.Unlock()

	m.Lock()
	return func() {
		m.Unlock()
		k.mu.Lock()
		m.refs--
		if m.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
