package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/nakirhussain8918-star/Cool-boy-chat/internal/middleware"
	"github.com/nakirhussain8918-star/Cool-boy-chat/internal/model"
	"github.com/nakirhussain8918-star/Cool-boy-chat/internal/service"
	"github.com/nakirhussain8918-star/Cool-boy-chat/pkg/logger"
	"github.com/nakirhussain8918-star/Cool-boy-chat/pkg/metrics"
)

// heartbeatInterval keeps idle SSE connections from being reaped by
// intermediaries.
const heartbeatInterval = 30 * time.Second

// ChatHandler handles message dispatch and the SSE streams.
type ChatHandler struct {
	chat   *service.ChatService
	logger *logger.Logger
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(chat *service.ChatService, log *logger.Logger) *ChatHandler {
	return &ChatHandler{chat: chat, logger: log}
}

// Send handles POST /api/v1/chat.
// The response is an SSE stream: chunk events carry the cumulative text,
// followed by user_message, message_complete and done.
func (h *ChatHandler) Send(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req model.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := middleware.ValidateMode(req.Mode); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := middleware.ValidateMessageContent(req.Text, len(req.Attachments) > 0); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := middleware.ValidateAspectRatio(req.AspectRatio); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	metrics.IncrementSSEConnections()
	defer metrics.DecrementSSEConnections()

	_, assistantMsg, err := h.chat.SendMessage(ctx, &req, &service.StreamListener{
		OnUserMessage: func(msg model.Message) {
			sendSSEEvent(w, flusher, "user_message", msg)
		},
		OnChunk: func(ev model.ChunkEvent) {
			sendSSEEvent(w, flusher, "chunk", ev)
		},
	})
	if err != nil {
		sendSSEEvent(w, flusher, "error", &model.ErrorEvent{
			Code:    "dispatch_error",
			Message: err.Error(),
		})
		return
	}

	if assistantMsg != nil {
		sendSSEEvent(w, flusher, "message_complete", &model.MessageCompleteEvent{
			Message: *assistantMsg,
		})
	}
	sendSSEEvent(w, flusher, "done", map[string]bool{
		"success": assistantMsg != nil && !assistantMsg.Error,
	})
}

// Events handles GET /api/v1/chat/events.
// Supports ?mode=<mode> to pick the timeline to replay (default standard).
// The requested timeline is replayed as message events, then the stream
// stays open with heartbeats until the client disconnects.
func (h *ChatHandler) Events(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	mode := model.Mode(r.URL.Query().Get("mode"))
	if mode == "" {
		mode = model.ModeStandard
	}
	if err := middleware.ValidateMode(mode); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	metrics.IncrementSSEConnections()
	defer metrics.DecrementSSEConnections()

	sendSSEEvent(w, flusher, "connected", map[string]string{
		"mode":           string(mode),
		"correlation_id": middleware.GetCorrelationID(ctx),
	})

	// Replay the timeline so a reconnecting client can rebuild its view.
	messages := h.chat.History(mode)
	for _, msg := range messages {
		select {
		case <-ctx.Done():
			return
		default:
		}
		sendSSEEvent(w, flusher, "message", msg)
	}
	sendSSEEvent(w, flusher, "replay_complete", &model.ReplayCompleteEvent{
		MessageCount: len(messages),
	})

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			h.logger.Info("SSE client disconnected")
			return
		case <-heartbeat.C:
			sendSSEEvent(w, flusher, "heartbeat", &model.HeartbeatEvent{
				Timestamp: time.Now(),
			})
		}
	}
}

// Stop handles POST /api/v1/chat/stop.
// Stopping with nothing in flight is not an error.
func (h *ChatHandler) Stop(w http.ResponseWriter, r *http.Request) {
	stopped := h.chat.StopGeneration()
	if stopped {
		h.logger.Info("generation stopped by client",
			zap.String("correlation_id", middleware.GetCorrelationID(r.Context())))
	}
	writeJSON(w, http.StatusOK, map[string]bool{"stopped": stopped})
}

func sendSSEEvent(w http.ResponseWriter, flusher http.Flusher, event string, data interface{}) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "event: %s\n", event)
	fmt.Fprintf(w, "data: %s\n\n", jsonData)
	flusher.Flush()

	return nil
}
