package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nakirhussain8918-star/Cool-boy-chat/internal/middleware"
	"github.com/nakirhussain8918-star/Cool-boy-chat/internal/model"
	"github.com/nakirhussain8918-star/Cool-boy-chat/internal/service"
	"github.com/nakirhussain8918-star/Cool-boy-chat/pkg/logger"
)

// HistoryHandler serves the per-mode timelines.
type HistoryHandler struct {
	chat   *service.ChatService
	logger *logger.Logger
}

// NewHistoryHandler creates a new history handler.
func NewHistoryHandler(chat *service.ChatService, log *logger.Logger) *HistoryHandler {
	return &HistoryHandler{chat: chat, logger: log}
}

// List handles GET /api/v1/history.
func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.chat.Histories())
}

// Clear handles DELETE /api/v1/history/{mode}.
// The timeline resets to a single fresh greeting, which is returned.
func (h *HistoryHandler) Clear(w http.ResponseWriter, r *http.Request) {
	mode := model.Mode(chi.URLParam(r, "mode"))
	if err := middleware.ValidateMode(mode); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	greeting := h.chat.ClearHistory(mode)
	writeJSON(w, http.StatusOK, greeting)
}

// DeleteMessage handles DELETE /api/v1/history/{mode}/messages/{id}.
// Deleting an unknown id succeeds; the operation is idempotent.
func (h *HistoryHandler) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	mode := model.Mode(chi.URLParam(r, "mode"))
	if err := middleware.ValidateMode(mode); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	id := chi.URLParam(r, "id")
	if err := middleware.ValidateMessageID(id); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.chat.DeleteMessage(mode, id)
	w.WriteHeader(http.StatusNoContent)
}
