// Package http provides the HTTP boundary: it accepts a single message,
// drives the augment/resolve pipeline and returns a single composed string.
package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/0xcro3dile/catalogchat-go/internal/domain/entities"
	"github.com/0xcro3dile/catalogchat-go/internal/domain/ports"
	"github.com/0xcro3dile/catalogchat-go/internal/domain/usecases"
	"github.com/0xcro3dile/catalogchat-go/internal/infrastructure/metrics"
)

// Augmenter rewrites a message with computed facts.
type Augmenter interface {
	Augment(sctx *usecases.SessionContext, message string) string
}

// Resolver runs the answer resolution chain.
type Resolver interface {
	Resolve(ctx context.Context, sctx *usecases.SessionContext, original, augmented string) usecases.Resolution
}

// Server is the HTTP server for the chat API.
type Server struct {
	augmenter Augmenter
	resolver  Resolver
	completer ports.CompletionService
	metrics   *metrics.Metrics
	registry  *prometheus.Registry
	log       zerolog.Logger
	addr      string

	// One chat session per process, plus a separate session feeding the demo
	// commentary line. Requests are handled strictly one at a time by the
	// single caller, so neither needs internal locking.
	chat *usecases.SessionContext
	demo *usecases.SessionContext
}

// NewServer creates the HTTP server.
func NewServer(
	augmenter Augmenter,
	resolver Resolver,
	completer ports.CompletionService,
	m *metrics.Metrics,
	registry *prometheus.Registry,
	log zerolog.Logger,
	addr string,
) *Server {
	return &Server{
		augmenter: augmenter,
		resolver:  resolver,
		completer: completer,
		metrics:   m,
		registry:  registry,
		log:       log.With().Str("component", "http").Logger(),
		addr:      addr,
		chat:      usecases.NewSessionContext(),
		demo:      usecases.NewSessionContext(),
	}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/", s.handleChat)
	mux.HandleFunc("/api/health", s.handleHealth)
	if s.registry != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	}
	return corsMiddleware(s.loggingMiddleware(mux))
}

// Start runs the HTTP server until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:         s.addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 300 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- server.ListenAndServe() }()

	s.log.Info().Str("addr", s.addr).Msg("server listening")

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	BotResponse string `json:"botResponse"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// handleChat processes a single conversational turn.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "Method not allowed"})
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Message == "" {
		s.metrics.RequestsTotal.WithLabelValues(strconv.Itoa(http.StatusBadRequest)).Inc()
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Message is required!"})
		return
	}

	start := time.Now()
	augmented := s.augmenter.Augment(s.chat, req.Message)
	resolution := s.resolver.Resolve(r.Context(), s.chat, req.Message, augmented)

	s.metrics.ResolutionsTotal.WithLabelValues(resolution.Outcome.String()).Inc()
	s.metrics.RequestDuration.Observe(time.Since(start).Seconds())
	s.metrics.RequestsTotal.WithLabelValues(strconv.Itoa(http.StatusOK)).Inc()

	s.log.Debug().
		Str("outcome", resolution.Outcome.String()).
		Int("session_turns", s.chat.Len()).
		Msg("resolved message")

	body := "\n\nDataset:" + resolution.Answer
	if commentary := s.commentary(r.Context(), req.Message); commentary != "" {
		body += "\n\nSystem:" + commentary
	}

	writeJSON(w, http.StatusOK, chatResponse{BotResponse: body})
}

// commentary produces the demo/system line from a separate conversation over
// its own session. A failure drops the line rather than failing the request.
func (s *Server) commentary(ctx context.Context, message string) string {
	if s.completer == nil {
		return ""
	}
	prompt := usecases.ConversationPrompt(s.demo.Snapshot(), message)
	text, err := s.completer.Complete(ctx, prompt, ports.CompleteOptions{Temperature: 0.7})
	if err != nil {
		s.log.Warn().Err(err).Msg("demo commentary unavailable")
		return ""
	}
	s.demo.Append(entities.RoleUser, message)
	s.demo.Append(entities.RoleAssistant, text)
	return text
}

// handleHealth returns server health status.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
