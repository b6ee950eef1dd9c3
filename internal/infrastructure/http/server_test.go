package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xcro3dile/catalogchat-go/internal/domain/ports"
	"github.com/0xcro3dile/catalogchat-go/internal/domain/usecases"
	"github.com/0xcro3dile/catalogchat-go/internal/infrastructure/metrics"
)

type stubAugmenter struct{ suffix string }

func (s *stubAugmenter) Augment(sctx *usecases.SessionContext, message string) string {
	return message + s.suffix
}

type stubResolver struct {
	gotAugmented string
	resolution   usecases.Resolution
}

func (s *stubResolver) Resolve(ctx context.Context, sctx *usecases.SessionContext, original, augmented string) usecases.Resolution {
	s.gotAugmented = augmented
	return s.resolution
}

type stubCompleter struct {
	text string
	err  error
}

func (s *stubCompleter) Complete(ctx context.Context, prompt string, opts ports.CompleteOptions) (string, error) {
	return s.text, s.err
}

func newTestServer(resolver Resolver, completer ports.CompletionService) *Server {
	registry := prometheus.NewRegistry()
	return NewServer(
		&stubAugmenter{suffix: " [augmented]"},
		resolver,
		completer,
		metrics.New(registry),
		registry,
		zerolog.Nop(),
		":0",
	)
}

func postMessage(t *testing.T, handler http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHandleChat_ComposedResponse(t *testing.T) {
	resolver := &stubResolver{resolution: usecases.Resolution{
		Outcome: usecases.ResolvedByRetrieval,
		Answer:  "the grand total is 218",
	}}
	server := newTestServer(resolver, &stubCompleter{text: "happy to help"})

	rec := postMessage(t, server.Handler(), `{"message":"Bay of Plenty"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		BotResponse string `json:"botResponse"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "\n\nDataset:the grand total is 218\n\nSystem:happy to help", resp.BotResponse)
	assert.Equal(t, "Bay of Plenty [augmented]", resolver.gotAugmented)
}

func TestHandleChat_CommentaryFailureIsDropped(t *testing.T) {
	resolver := &stubResolver{resolution: usecases.Resolution{
		Outcome: usecases.ResolvedByConversation,
		Answer:  "an answer",
	}}
	server := newTestServer(resolver, &stubCompleter{err: errors.New("llm down")})

	rec := postMessage(t, server.Handler(), `{"message":"hello"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Dataset:an answer")
	assert.NotContains(t, rec.Body.String(), "System:")
}

func TestHandleChat_MissingMessage(t *testing.T) {
	server := newTestServer(&stubResolver{}, &stubCompleter{})

	for _, body := range []string{`{}`, `{"message":""}`, `not json`} {
		rec := postMessage(t, server.Handler(), body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body %q", body)
		assert.Contains(t, rec.Body.String(), "Message is required!")
	}
}

func TestHandleChat_MethodNotAllowed(t *testing.T) {
	server := newTestServer(&stubResolver{}, &stubCompleter{})

	req := httptest.NewRequest(http.MethodGet, "/api/", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHandleHealth(t *testing.T) {
	server := newTestServer(&stubResolver{}, &stubCompleter{})

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}

func TestMetricsEndpoint(t *testing.T) {
	resolver := &stubResolver{resolution: usecases.Resolution{
		Outcome: usecases.Unresolved,
		Answer:  usecases.NoAnswerSentinel,
	}}
	server := newTestServer(resolver, &stubCompleter{text: "note"})

	postMessage(t, server.Handler(), `{"message":"anything"}`)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `catalogchat_resolutions_total{outcome="unresolved"} 1`)
}

func TestCORSPreflight(t *testing.T) {
	server := newTestServer(&stubResolver{}, &stubCompleter{})

	req := httptest.NewRequest(http.MethodOptions, "/api/", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
