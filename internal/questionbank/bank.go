// Package questionbank loads role question pools from a directory of JSON or
// YAML files and serves per-level pools with default-level fallback.
package questionbank

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/ashureev/interview-coach/internal/domain"
)

// LevelSummary reports the size of one level.
type LevelSummary struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// RoleSummary describes one role in the catalogue.
type RoleSummary struct {
	Role   string         `json:"role"`
	Domain string         `json:"domain,omitempty"`
	Levels []LevelSummary `json:"levels"`
}

// Bank is a concurrency-safe, reloadable set of role question banks.
type Bank struct {
	dir          string
	defaultLevel string
	debounce     time.Duration
	logger       *slog.Logger

	mu    sync.RWMutex
	roles map[string]*RoleBank
}

// Option configures a Bank.
type Option func(*Bank)

// WithDefaultLevel sets the level used when a requested level is missing.
func WithDefaultLevel(level string) Option {
	return func(b *Bank) {
		if level != "" {
			b.defaultLevel = level
		}
	}
}

// WithLogger sets the logger used for reload events.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bank) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithDebounce sets how long the watcher waits for file events to settle.
func WithDebounce(d time.Duration) Option {
	return func(b *Bank) {
		if d > 0 {
			b.debounce = d
		}
	}
}

// Open loads every bank file in dir. Any invalid file fails the open.
func Open(dir string, opts ...Option) (*Bank, error) {
	b := &Bank{
		dir:          dir,
		defaultLevel: domain.DefaultLevel,
		debounce:     300 * time.Millisecond,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}

	roles, err := LoadDir(dir)
	if err != nil {
		return nil, err
	}
	b.roles = roles
	return b, nil
}

// Reload re-reads the directory. On failure the current banks stay in place.
func (b *Bank) Reload() error {
	roles, err := LoadDir(b.dir)
	if err != nil {
		return err
	}
	b.mu.Lock()
	b.roles = roles
	b.mu.Unlock()
	return nil
}

// LoadPool returns a fresh copy of the pool for role and level. A missing
// level falls back to the default level, then to every level flattened in
// file order with duplicate ids dropped.
func (b *Bank) LoadPool(role, level string) ([]domain.Question, error) {
	b.mu.RLock()
	rb, ok := b.roles[role]
	b.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrRoleNotFound, role)
	}

	if lvl, ok := rb.level(level); ok {
		return cloneQuestions(lvl.Questions), nil
	}
	if lvl, ok := rb.level(b.defaultLevel); ok {
		return cloneQuestions(lvl.Questions), nil
	}

	seen := make(map[string]struct{})
	var out []domain.Question
	for _, lvl := range rb.Levels {
		for _, q := range lvl.Questions {
			if _, dup := seen[q.ID]; dup {
				continue
			}
			seen[q.ID] = struct{}{}
			out = append(out, q.Clone())
		}
	}
	return out, nil
}

// Roles lists the catalogue sorted by role name.
func (b *Bank) Roles() []RoleSummary {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return summarize(b.roles)
}

func summarize(roles map[string]*RoleBank) []RoleSummary {
	out := make([]RoleSummary, 0, len(roles))
	for _, rb := range roles {
		s := RoleSummary{Role: rb.Role, Domain: rb.Domain, Levels: make([]LevelSummary, 0, len(rb.Levels))}
		for _, lvl := range rb.Levels {
			s.Levels = append(s.Levels, LevelSummary{Name: lvl.Name, Count: len(lvl.Questions)})
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Role < out[j].Role })
	return out
}

// Lint validates every file in dir and summarizes the result.
func Lint(dir string) ([]RoleSummary, error) {
	roles, err := LoadDir(dir)
	if err != nil {
		return nil, err
	}
	return summarize(roles), nil
}

func cloneQuestions(qs []domain.Question) []domain.Question {
	out := make([]domain.Question, len(qs))
	for i, q := range qs {
		out[i] = q.Clone()
	}
	return out
}
