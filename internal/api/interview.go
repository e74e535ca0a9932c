package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ashureev/interview-coach/internal/interview"
	"github.com/ashureev/interview-coach/internal/questionbank"
)

// InterviewService is the session-level API the handlers drive.
type InterviewService interface {
	Start(ctx context.Context, role, level string) (*interview.StartResult, error)
	Submit(ctx context.Context, sessionID string, act interview.Action) (interview.Response, error)
	Progress(ctx context.Context, sessionID string) (*interview.Progress, error)
	Feedback(ctx context.Context, sessionID string) (*interview.Feedback, error)
}

// RoleCatalog lists the loaded question banks.
type RoleCatalog interface {
	Roles() []questionbank.RoleSummary
}

// InterviewHandler handles interview endpoints.
type InterviewHandler struct {
	svc          InterviewService
	catalog      RoleCatalog
	maxBodyBytes int64
	actionLimit  func(http.Handler) http.Handler
}

// InterviewOption configures an InterviewHandler.
type InterviewOption func(*InterviewHandler)

// WithMaxBodyBytes caps request bodies.
func WithMaxBodyBytes(n int64) InterviewOption {
	return func(h *InterviewHandler) { h.maxBodyBytes = n }
}

// WithActionLimiter wraps the session-creating and action endpoints.
func WithActionLimiter(mw func(http.Handler) http.Handler) InterviewOption {
	return func(h *InterviewHandler) { h.actionLimit = mw }
}

// NewInterviewHandler creates a new interview handler.
func NewInterviewHandler(svc InterviewService, catalog RoleCatalog, opts ...InterviewOption) *InterviewHandler {
	h := &InterviewHandler{svc: svc, catalog: catalog, maxBodyBytes: defaultMaxBodyBytes}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// RegisterRoutes registers interview routes.
func (h *InterviewHandler) RegisterRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		if h.actionLimit != nil {
			r.Use(h.actionLimit)
		}
		r.Post("/start_interview", h.StartInterview)
		r.Post("/answer", h.Answer)
	})
	r.Get("/feedback/{sessionID}", h.Feedback)
	r.Get("/sessions/{sessionID}", h.Session)
	r.Get("/roles", h.Roles)
}

// StartInterview creates a session and returns its first question.
func (h *InterviewHandler) StartInterview(w http.ResponseWriter, r *http.Request) {
	var req StartRequest
	if !decodeJSON(w, r, h.maxBodyBytes, &req) {
		return
	}
	req.Role = strings.TrimSpace(req.Role)
	if req.Role == "" {
		Error(w, http.StatusBadRequest, "role is required")
		return
	}

	res, err := h.svc.Start(r.Context(), req.Role, strings.TrimSpace(req.Level))
	if err != nil {
		ServiceError(w, err, "role", req.Role, "level", req.Level)
		return
	}

	first := res.FirstQuestion
	JSON(w, http.StatusOK, StartResponse{
		SessionID: res.SessionID,
		Question:  first.Prompt,
		Meta:      &first,
	})
}

// Answer applies an answer, hint or skip to a session.
func (h *InterviewHandler) Answer(w http.ResponseWriter, r *http.Request) {
	var req AnswerRequest
	if !decodeJSON(w, r, h.maxBodyBytes, &req) {
		return
	}
	if req.SessionID == "" {
		Error(w, http.StatusBadRequest, "session_id is required")
		return
	}

	resp, err := h.svc.Submit(r.Context(), req.SessionID, req.Action)
	if err != nil {
		ServiceError(w, err, "session_id", req.SessionID)
		return
	}
	JSON(w, http.StatusOK, NewAnswerResponse(resp))
}

// Feedback returns the aggregate report for a session.
func (h *InterviewHandler) Feedback(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	fb, err := h.svc.Feedback(r.Context(), id)
	if err != nil {
		ServiceError(w, err, "session_id", id)
		return
	}
	JSON(w, http.StatusOK, fb)
}

// Session returns the progress view of a session.
func (h *InterviewHandler) Session(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	p, err := h.svc.Progress(r.Context(), id)
	if err != nil {
		ServiceError(w, err, "session_id", id)
		return
	}
	JSON(w, http.StatusOK, p)
}

// Roles returns the question bank catalogue.
func (h *InterviewHandler) Roles(w http.ResponseWriter, _ *http.Request) {
	JSON(w, http.StatusOK, map[string]interface{}{
		"roles": h.catalog.Roles(),
	})
}
