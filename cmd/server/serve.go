package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/ashureev/interview-coach/internal/api"
	"github.com/ashureev/interview-coach/internal/config"
	"github.com/ashureev/interview-coach/internal/interview"
	"github.com/ashureev/interview-coach/internal/llm"
	"github.com/ashureev/interview-coach/internal/middleware"
	"github.com/ashureev/interview-coach/internal/questionbank"
	"github.com/ashureev/interview-coach/internal/realtime"
	"github.com/ashureev/interview-coach/internal/retention"
	"github.com/ashureev/interview-coach/internal/store"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API (and optional gRPC health server)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

// routes groups what the HTTP router needs.
type routes struct {
	service      *interview.Service
	catalog      api.RoleCatalog
	db           api.Pinger
	hub          *realtime.Hub
	limiter      *middleware.RateLimiter
	origins      []string
	maxBodyBytes int64
}

func newRouter(rt routes) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/ping"))
	r.Use(middleware.CORS(rt.origins))

	api.NewHealthHandler(rt.db).RegisterHealth(r)

	opts := []api.InterviewOption{api.WithMaxBodyBytes(rt.maxBodyBytes)}
	if rt.limiter != nil {
		opts = append(opts, api.WithActionLimiter(rt.limiter.Middleware))
	}
	api.NewInterviewHandler(rt.service, rt.catalog, opts...).RegisterRoutes(r)

	r.Get("/ws/interview", realtime.NewHandler(rt.service, rt.hub, rt.origins, rt.maxBodyBytes).ServeHTTP)

	return r
}

func runServe(cmd *cobra.Command) error {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("Starting server", "port", cfg.Port, "grpc_port", cfg.GRPCPort, "llm_provider", cfg.LLM.Provider)

	repo, err := store.NewSQLite(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		return err
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			slog.Error("Failed to close repository", "error", closeErr)
		}
	}()
	if err := repo.Ping(ctx); err != nil {
		slog.Error("Database health check failed", "error", err)
		return err
	}
	slog.Info("Database connected", "path", cfg.DBPath)

	bank, err := questionbank.Open(cfg.QuestionsDir,
		questionbank.WithDefaultLevel(cfg.DefaultLevel),
		questionbank.WithLogger(logger))
	if err != nil {
		slog.Error("Failed to load question bank", "error", err, "dir", cfg.QuestionsDir)
		return err
	}
	slog.Info("Question bank loaded", "dir", cfg.QuestionsDir, "roles", len(bank.Roles()))

	// A nil generator keeps follow-ups heuristic without logging a fallback per answer.
	var generator interview.TextGenerator
	if cfg.LLM.Enabled() {
		g, err := llm.NewGeneratorFromConfig(ctx, cfg.LLM, logger)
		if err != nil {
			slog.Error("Failed to initialize LLM provider", "error", err, "provider", cfg.LLM.Provider)
			return err
		}
		generator = g
		slog.Info("LLM follow-ups enabled", "provider", cfg.LLM.Provider)
	} else {
		slog.Info("LLM follow-ups disabled")
	}

	var source interview.Source
	if cfg.Interview.Seed != 0 {
		source = interview.NewSource(cfg.Interview.Seed)
		slog.Warn("Using fixed selection seed", "seed", cfg.Interview.Seed)
	}

	svc, err := interview.NewService(bank, repo, interview.Options{
		Settings:  cfg.InterviewSettings(),
		Source:    source,
		Generator: generator,
		Logger:    logger,
	})
	if err != nil {
		return fmt.Errorf("create interview service: %w", err)
	}

	hub := realtime.NewHub()
	handler := newRouter(routes{
		service:      svc,
		catalog:      bank,
		db:           repo,
		hub:          hub,
		limiter:      middleware.NewRateLimiter(ctx, cfg.RateLimit, cfg.RateWindow),
		origins:      cfg.CORSOrigins,
		maxBodyBytes: cfg.MaxBodyBytes,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("Shutting down gracefully...")
		hub.CloseAll("server shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	})

	if cfg.GRPCPort != "" {
		startHealthServer(gctx, g, cfg.GRPCPort)
	}

	if cfg.WatchQuestion {
		g.Go(func() error {
			if err := bank.Watch(gctx); err != nil {
				slog.Warn("Question bank watcher stopped", "error", err)
			}
			return nil
		})
	}

	sweeper := retention.NewSweeper(repo, cfg.Retention, cfg.SweepInterval, logger)
	g.Go(func() error { return sweeper.Run(gctx) })

	if err := g.Wait(); err != nil {
		slog.Error("Server stopped with error", "error", err)
		return err
	}

	slog.Info("Server stopped successfully")
	return nil
}

// startHealthServer serves grpc.health.v1 on port until ctx is done.
func startHealthServer(ctx context.Context, g *errgroup.Group, port string) {
	grpcServer := grpc.NewServer()
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	g.Go(func() error {
		lis, err := net.Listen("tcp", ":"+port)
		if err != nil {
			return fmt.Errorf("grpc listen: %w", err)
		}
		slog.Info("gRPC health server listening", "addr", lis.Addr().String())
		if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return fmt.Errorf("grpc server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		healthServer.Shutdown()
		grpcServer.GracefulStop()
		return nil
	})
}
