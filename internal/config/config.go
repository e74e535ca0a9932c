// Package config provides application configuration.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/ashureev/interview-coach/internal/interview"
	"github.com/ashureev/interview-coach/internal/llm"
)

// Config holds all application configuration.
type Config struct {
	Port          string        `env:"PORT" envDefault:"8080"`
	GRPCPort      string        `env:"GRPC_PORT"` // empty disables the gRPC health server
	DBPath        string        `env:"DB_PATH" envDefault:"./data/interview.db"`
	QuestionsDir  string        `env:"QUESTIONS_DIR" envDefault:"./data/questions"`
	DefaultLevel  string        `env:"DEFAULT_LEVEL" envDefault:"entry"`
	WatchQuestion bool          `env:"WATCH_QUESTIONS" envDefault:"true"`
	CORSOrigins   []string      `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost,http://localhost:3000,http://127.0.0.1,http://127.0.0.1:3000"`
	Retention     time.Duration `env:"SESSION_RETENTION" envDefault:"168h"` // 0 disables the sweeper
	SweepInterval time.Duration `env:"SWEEP_INTERVAL" envDefault:"5m"`
	RateLimit     int           `env:"RATE_LIMIT_REQUESTS" envDefault:"60"`
	RateWindow    time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"1m"`
	LogLevel      string        `env:"LOG_LEVEL" envDefault:"info"`
	MaxBodyBytes  int64         `env:"MAX_REQUEST_BODY" envDefault:"1048576"`

	Interview InterviewConfig
	LLM       llm.Config
}

// InterviewConfig holds the selection and scoring knobs.
type InterviewConfig struct {
	MaxQuestions    int   `env:"INTERVIEW_MAX_QUESTIONS" envDefault:"10"`
	ShallowWords    int   `env:"INTERVIEW_SHALLOW_WORDS" envDefault:"25"`
	MaxFollowups    int   `env:"INTERVIEW_MAX_FOLLOWUPS" envDefault:"2"`
	ShortlistSize   int   `env:"INTERVIEW_SHORTLIST_SIZE" envDefault:"6"`
	EscalationHits  int   `env:"INTERVIEW_ESCALATION_HITS" envDefault:"2"`
	LongAnswerWords int   `env:"INTERVIEW_LONG_ANSWER_WORDS" envDefault:"40"`
	Seed            int64 `env:"INTERVIEW_SEED"` // 0 = crypto-random
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.CORSOrigins = trimCSV(cfg.CORSOrigins)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.GRPCPort != "" && c.GRPCPort == c.Port {
		return fmt.Errorf("GRPC_PORT must differ from PORT")
	}
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH cannot be empty")
	}
	if c.QuestionsDir == "" {
		return fmt.Errorf("QUESTIONS_DIR cannot be empty")
	}
	if c.DefaultLevel == "" {
		return fmt.Errorf("DEFAULT_LEVEL cannot be empty")
	}
	if c.Retention < 0 {
		return fmt.Errorf("SESSION_RETENTION must not be negative")
	}
	if c.Retention > 0 && c.SweepInterval <= 0 {
		return fmt.Errorf("SWEEP_INTERVAL must be > 0 when retention is enabled")
	}
	if c.RateLimit <= 0 || c.RateWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS and RATE_LIMIT_WINDOW must be > 0")
	}
	if c.MaxBodyBytes <= 0 {
		return fmt.Errorf("MAX_REQUEST_BODY must be > 0")
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}

	iv := c.Interview
	for name, v := range map[string]int{
		"INTERVIEW_MAX_QUESTIONS":     iv.MaxQuestions,
		"INTERVIEW_SHALLOW_WORDS":     iv.ShallowWords,
		"INTERVIEW_MAX_FOLLOWUPS":     iv.MaxFollowups,
		"INTERVIEW_SHORTLIST_SIZE":    iv.ShortlistSize,
		"INTERVIEW_ESCALATION_HITS":   iv.EscalationHits,
		"INTERVIEW_LONG_ANSWER_WORDS": iv.LongAnswerWords,
	} {
		if v <= 0 {
			return fmt.Errorf("%s must be > 0", name)
		}
	}

	if err := c.LLM.Validate(); err != nil {
		return err
	}
	return nil
}

// InterviewSettings converts the interview knobs for the interview package.
func (c *Config) InterviewSettings() interview.Settings {
	return interview.Settings{
		MaxQuestions:            c.Interview.MaxQuestions,
		ShallowWordThreshold:    c.Interview.ShallowWords,
		MaxFollowupsPerQuestion: c.Interview.MaxFollowups,
		ShortlistSize:           c.Interview.ShortlistSize,
		EscalationKeywordHits:   c.Interview.EscalationHits,
		LongAnswerWords:         c.Interview.LongAnswerWords,
	}
}

// SlogLevel returns the configured log level.
func (c *Config) SlogLevel() slog.Level {
	lvl, _ := parseLevel(c.LogLevel)
	return lvl
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("LOG_LEVEL %q is not one of debug, info, warn, error", s)
}

func trimCSV(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
