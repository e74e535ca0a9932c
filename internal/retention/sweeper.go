// Package retention removes interview sessions that have not been updated
// within the configured retention window.
package retention

import (
	"context"
	"log/slog"
	"time"
)

// Deleter removes sessions last updated before now-ttl.
type Deleter interface {
	DeleteSessionsOlderThan(ctx context.Context, ttl time.Duration) (int64, error)
}

// Sweeper periodically deletes expired sessions.
type Sweeper struct {
	repo     Deleter
	ttl      time.Duration
	interval time.Duration
	logger   *slog.Logger
}

// NewSweeper creates a sweeper. A ttl of zero disables it.
func NewSweeper(repo Deleter, ttl, interval time.Duration, logger *slog.Logger) *Sweeper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sweeper{repo: repo, ttl: ttl, interval: interval, logger: logger}
}

// Enabled reports whether the sweeper does any work.
func (s *Sweeper) Enabled() bool {
	return s.ttl > 0 && s.interval > 0
}

// Run sweeps once immediately and then on every tick until ctx is done.
func (s *Sweeper) Run(ctx context.Context) error {
	if !s.Enabled() {
		s.logger.Info("Retention sweeper disabled")
		return nil
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	s.logger.Info("Retention sweeper started", "interval", s.interval, "ttl", s.ttl)

	s.SweepOnce(ctx)
	for {
		select {
		case <-ticker.C:
			s.SweepOnce(ctx)
		case <-ctx.Done():
			s.logger.Info("Retention sweeper shutting down", "reason", ctx.Err())
			return nil
		}
	}
}

// SweepOnce deletes expired sessions and returns how many were removed.
func (s *Sweeper) SweepOnce(ctx context.Context) int64 {
	deleted, err := s.repo.DeleteSessionsOlderThan(ctx, s.ttl)
	if err != nil {
		if ctx.Err() != nil {
			s.logger.Debug("Retention sweep interrupted", "error", err)
			return 0
		}
		s.logger.Error("Retention sweep failed", "error", err)
		return 0
	}
	if deleted > 0 {
		s.logger.Info("Expired sessions removed", "count", deleted, "ttl", s.ttl)
	}
	return deleted
}
