package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nakirhussain8918-star/Cool-boy-chat/internal/events"
	"github.com/nakirhussain8918-star/Cool-boy-chat/internal/handler"
	"github.com/nakirhussain8918-star/Cool-boy-chat/internal/llm"
	"github.com/nakirhussain8918-star/Cool-boy-chat/internal/model"
	"github.com/nakirhussain8918-star/Cool-boy-chat/internal/service"
	"github.com/nakirhussain8918-star/Cool-boy-chat/internal/store"
	"github.com/nakirhussain8918-star/Cool-boy-chat/pkg/logger"
)

type stubLLM struct{}

func (stubLLM) StreamText(ctx context.Context, mode model.Mode, prompt string, attachments []model.Attachment, settings model.Settings, onChunk llm.StreamFunc) (string, error) {
	if onChunk != nil {
		onChunk("hello")
		onChunk("hello there")
	}
	return "hello there", nil
}

func (stubLLM) GenerateImage(ctx context.Context, prompt string, attachments []model.Attachment, aspectRatio, resolution string) (string, error) {
	return "data:image/jpeg;base64,aW1n", nil
}

func (stubLLM) EnhancePrompt(ctx context.Context, input string) string {
	return "enhanced: " + input
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	kv, err := store.NewFileKV(t.TempDir(), 0)
	require.NoError(t, err)
	log := logger.NewNop()
	chatSvc := service.NewChatService(stubLLM{}, store.NewHistoryStore(kv, log), events.NewNoop(), 10*time.Millisecond, log)

	healthHandler := handler.NewHealthHandler(kv.Dir(), nil)
	chatHandler := handler.NewChatHandler(chatSvc, log)
	historyHandler := handler.NewHistoryHandler(chatSvc, log)
	settingsHandler := handler.NewSettingsHandler(chatSvc, log)
	promptsHandler := handler.NewPromptsHandler(chatSvc, log)

	r := chi.NewRouter()
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/chat", func(r chi.Router) {
			r.Post("/", chatHandler.Send)
			r.Get("/events", chatHandler.Events)
			r.Post("/stop", chatHandler.Stop)
		})
		r.Route("/history", func(r chi.Router) {
			r.Get("/", historyHandler.List)
			r.Delete("/{mode}", historyHandler.Clear)
			r.Delete("/{mode}/messages/{id}", historyHandler.DeleteMessage)
		})
		r.Route("/settings", func(r chi.Router) {
			r.Get("/", settingsHandler.Get)
			r.Put("/", settingsHandler.Update)
		})
		r.Route("/prompts", func(r chi.Router) {
			r.Get("/", promptsHandler.List)
			r.Post("/enhance", promptsHandler.Enhance)
		})
	})
	return r
}

func doRequest(t *testing.T, srv http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	srv := newTestRouter(t)
	w := doRequest(t, srv, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestReady(t *testing.T) {
	srv := newTestRouter(t)
	w := doRequest(t, srv, http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ready")
}

func TestHistoryListReturnsSeededGreetings(t *testing.T) {
	srv := newTestRouter(t)
	w := doRequest(t, srv, http.MethodGet, "/api/v1/history", "")
	require.Equal(t, http.StatusOK, w.Code)
	for _, mode := range model.AllModes {
		assert.Contains(t, w.Body.String(), `"`+string(mode)+`"`)
	}
}

func TestSendMessageStreamsSSE(t *testing.T) {
	srv := newTestRouter(t)
	w := doRequest(t, srv, http.MethodPost, "/api/v1/chat", `{"text":"hi","mode":"standard"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))

	body := w.Body.String()
	assert.Contains(t, body, "event: done")
	assert.Contains(t, body, "hello there")

	// user_message precedes the chunks, which precede completion.
	idxUser := strings.Index(body, "event: user_message")
	idxChunk := strings.Index(body, "event: chunk")
	idxComplete := strings.Index(body, "event: message_complete")
	require.GreaterOrEqual(t, idxUser, 0)
	require.GreaterOrEqual(t, idxChunk, 0)
	require.GreaterOrEqual(t, idxComplete, 0)
	assert.Less(t, idxUser, idxChunk)
	assert.Less(t, idxChunk, idxComplete)
}

func TestEventsReplaysTimeline(t *testing.T) {
	srv := newTestRouter(t)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/chat/events?mode=fast", nil).WithContext(ctx)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	body := w.Body.String()
	assert.Contains(t, body, "event: connected")
	assert.Contains(t, body, "event: message")
	assert.Contains(t, body, "Zoom zoom!")
	assert.Contains(t, body, "event: replay_complete")
	assert.Contains(t, body, `"message_count":1`)
	assert.Less(t, strings.Index(body, "event: message"), strings.Index(body, "event: replay_complete"))
}

func TestEventsRejectsBadMode(t *testing.T) {
	srv := newTestRouter(t)
	w := doRequest(t, srv, http.MethodGet, "/api/v1/chat/events?mode=warp", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSendMessageRejectsBadMode(t *testing.T) {
	srv := newTestRouter(t)
	w := doRequest(t, srv, http.MethodPost, "/api/v1/chat", `{"text":"hi","mode":"turbo"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSendMessageRejectsEmptyTextWithoutAttachments(t *testing.T) {
	srv := newTestRouter(t)
	w := doRequest(t, srv, http.MethodPost, "/api/v1/chat", `{"text":"","mode":"standard"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSendMessageRejectsBadAspectRatio(t *testing.T) {
	srv := newTestRouter(t)
	w := doRequest(t, srv, http.MethodPost, "/api/v1/chat", `{"text":"a fox","mode":"image","aspect_ratio":"2:1"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStopWithNothingInFlight(t *testing.T) {
	srv := newTestRouter(t)
	w := doRequest(t, srv, http.MethodPost, "/api/v1/chat/stop", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"stopped":false`)
}

func TestClearHistory(t *testing.T) {
	srv := newTestRouter(t)
	w := doRequest(t, srv, http.MethodDelete, "/api/v1/history/standard", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "History cleared!")

	w = doRequest(t, srv, http.MethodDelete, "/api/v1/history/turbo", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteMessageValidatesID(t *testing.T) {
	srv := newTestRouter(t)
	w := doRequest(t, srv, http.MethodDelete, "/api/v1/history/standard/messages/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Unknown but well-formed ids succeed; delete is idempotent.
	w = doRequest(t, srv, http.MethodDelete, "/api/v1/history/standard/messages/6f1e2d3c-4b5a-6978-8a9b-0c1d2e3f4a5b", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestSettingsValidation(t *testing.T) {
	srv := newTestRouter(t)

	w := doRequest(t, srv, http.MethodGet, "/api/v1/settings", "")
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(t, srv, http.MethodPut, "/api/v1/settings", `{"temperature":3,"top_k":64,"top_p":0.9}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(t, srv, http.MethodPut, "/api/v1/settings", `{"temperature":0.7,"top_k":40,"top_p":0.9,"theme":"blue","persona_instruction":"be nice"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(t, srv, http.MethodGet, "/api/v1/settings", "")
	assert.Contains(t, w.Body.String(), `"blue"`)
}

func TestPromptsEmptyThenRecorded(t *testing.T) {
	srv := newTestRouter(t)

	w := doRequest(t, srv, http.MethodGet, "/api/v1/prompts", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"prompts":[]`)

	doRequest(t, srv, http.MethodPost, "/api/v1/chat", `{"text":"remember me","mode":"fast"}`)
	w = doRequest(t, srv, http.MethodGet, "/api/v1/prompts", "")
	assert.Contains(t, w.Body.String(), "remember me")
}

func TestEnhancePrompt(t *testing.T) {
	srv := newTestRouter(t)
	w := doRequest(t, srv, http.MethodPost, "/api/v1/prompts/enhance", `{"input":"a cat"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "enhanced: a cat")
}
