// Package server exposes the scenario pipeline over HTTP: run management,
// history, script generation, response plans, paced log playback, health,
// and Prometheus metrics.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ppiankov/threatstage/internal/gateway"
	"github.com/ppiankov/threatstage/internal/orchestrator"
	"github.com/ppiankov/threatstage/internal/playback"
	"github.com/ppiankov/threatstage/internal/scenario"
	"github.com/ppiankov/threatstage/internal/session"
)

// Server is the HTTP front of the orchestrator.
type Server struct {
	orc    *orchestrator.Orchestrator
	player *playback.Player
	logger *slog.Logger
	router *mux.Router

	httpServer *http.Server
}

// New creates a server over the given orchestrator and playback player.
func New(addr string, orc *orchestrator.Orchestrator, player *playback.Player, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		orc:    orc,
		player: player,
		logger: logger,
		router: mux.NewRouter(),
	}
	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute, // pipeline runs block on model calls
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) setupRoutes() {
	s.router.HandleFunc("/healthz", s.handleHealth).Methods("GET")
	s.router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	s.router.HandleFunc("/api/v1/runs", s.handleStartRun).Methods("POST")
	s.router.HandleFunc("/api/v1/runs/current", s.handleCurrentRun).Methods("GET")
	s.router.HandleFunc("/api/v1/runs/current", s.handleClearRun).Methods("DELETE")
	s.router.HandleFunc("/api/v1/runs/current/test", s.handleTestCountermeasure).Methods("POST")
	s.router.HandleFunc("/api/v1/runs/current/log", s.handlePlaybackLog).Methods("GET")
	s.router.HandleFunc("/api/v1/runs/current/events/{id}/status", s.handleEventStatus).Methods("POST")

	s.router.HandleFunc("/api/v1/scripts", s.handleGenerateScript).Methods("POST")
	s.router.HandleFunc("/api/v1/events/response-plan", s.handleResponsePlan).Methods("POST")

	s.router.HandleFunc("/api/v1/history", s.handleHistoryList).Methods("GET")
	s.router.HandleFunc("/api/v1/history", s.handleHistoryClear).Methods("DELETE")
	s.router.HandleFunc("/api/v1/history/{id}", s.handleHistoryGet).Methods("GET")
	s.router.HandleFunc("/api/v1/history/{id}", s.handleHistoryDelete).Methods("DELETE")
	s.router.HandleFunc("/api/v1/history/{id}/load", s.handleHistoryLoad).Methods("POST")
}

// ServeHTTP implements http.Handler. For tests and embedding.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe starts the HTTP server. Blocks until the server is closed.
func (s *Server) ListenAndServe() error {
	s.logger.Info("api server listening", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status": "healthy",
		"state":  s.orc.State(),
	})
}

func (s *Server) handleStartRun(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Script      string `json:"script"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON request body")
		return
	}

	runsStarted.Inc()
	start := time.Now()
	sess, err := s.orc.StartSimulation(r.Context(), req.Script, req.Description)
	if err != nil {
		switch {
		case errors.Is(err, orchestrator.ErrSuperseded):
			runsSuperseded.Inc()
		case errors.Is(err, gateway.ErrInvalidInput):
		default:
			runsFailed.Inc()
		}
		s.writeAPIError(w, err)
		return
	}
	runsCompleted.Inc()
	runDuration.Observe(time.Since(start).Seconds())

	if sess.Interaction != nil {
		s.player.Play(sess.Interaction.InteractionLog)
	} else {
		s.player.Reset()
	}
	s.writeJSON(w, http.StatusOK, sess)
}

func (s *Server) handleCurrentRun(w http.ResponseWriter, r *http.Request) {
	sess := s.orc.Current()
	if sess == nil {
		s.writeError(w, http.StatusNotFound, "no current session")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"state":   s.orc.State(),
		"session": sess,
	})
}

func (s *Server) handleClearRun(w http.ResponseWriter, r *http.Request) {
	s.orc.ClearSimulation()
	s.player.Reset()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleTestCountermeasure(w http.ResponseWriter, r *http.Request) {
	countermeasureTests.Inc()
	ia, err := s.orc.TestCountermeasure(r.Context())
	if err != nil {
		s.writeAPIError(w, err)
		return
	}
	s.player.Play(ia.InteractionLog)
	s.writeJSON(w, http.StatusOK, ia)
}

func (s *Server) handlePlaybackLog(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"state": s.player.State(),
		"steps": s.player.Revealed(),
	})
}

func (s *Server) handleEventStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status scenario.EventStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON request body")
		return
	}
	id := mux.Vars(r)["id"]
	if err := s.orc.UpdateEventStatus(id, req.Status); err != nil {
		if errors.Is(err, orchestrator.ErrNoSession) {
			s.writeError(w, http.StatusConflict, err.Error())
			return
		}
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGenerateScript(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON request body")
		return
	}
	script, err := s.orc.GenerateScript(r.Context(), req.Description)
	if err != nil {
		s.writeAPIError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"script": script})
}

func (s *Server) handleResponsePlan(w http.ResponseWriter, r *http.Request) {
	var event scenario.SecurityEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON request body")
		return
	}
	plan, err := s.orc.GenerateResponsePlan(r.Context(), event)
	if err != nil {
		s.writeAPIError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, plan)
}

func (s *Server) handleHistoryList(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.orc.History())
}

func (s *Server) handleHistoryClear(w http.ResponseWriter, r *http.Request) {
	s.orc.ClearHistory()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHistoryGet(w http.ResponseWriter, r *http.Request) {
	for _, sess := range s.orc.History() {
		if sess.ID == mux.Vars(r)["id"] {
			s.writeJSON(w, http.StatusOK, sess)
			return
		}
	}
	s.writeError(w, http.StatusNotFound, "session not found")
}

func (s *Server) handleHistoryDelete(w http.ResponseWriter, r *http.Request) {
	s.orc.RemoveFromHistory(mux.Vars(r)["id"])
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHistoryLoad(w http.ResponseWriter, r *http.Request) {
	sess, err := s.orc.LoadFromHistory(mux.Vars(r)["id"])
	if err != nil {
		s.writeAPIError(w, err)
		return
	}
	if sess.Interaction != nil {
		s.player.Play(sess.Interaction.InteractionLog)
	} else {
		s.player.Reset()
	}
	s.writeJSON(w, http.StatusOK, sess)
}

// writeAPIError maps pipeline errors to HTTP status codes.
func (s *Server) writeAPIError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, gateway.ErrInvalidInput):
		s.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, session.ErrNotFound):
		s.writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, orchestrator.ErrSuperseded):
		s.writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, orchestrator.ErrNoSession), errors.Is(err, orchestrator.ErrNoCountermeasure):
		s.writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, gateway.ErrRateLimited):
		s.writeError(w, http.StatusTooManyRequests, err.Error())
	case errors.Is(err, gateway.ErrUpstream):
		s.writeError(w, http.StatusBadGateway, err.Error())
	default:
		s.logger.Error("request failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}
