package handler

import (
	"encoding/json"
	"net/http"

	"github.com/nakirhussain8918-star/Cool-boy-chat/internal/model"
	"github.com/nakirhussain8918-star/Cool-boy-chat/internal/service"
	"github.com/nakirhussain8918-star/Cool-boy-chat/pkg/logger"
)

// SettingsHandler serves the generation settings.
type SettingsHandler struct {
	chat   *service.ChatService
	logger *logger.Logger
}

// NewSettingsHandler creates a new settings handler.
func NewSettingsHandler(chat *service.ChatService, log *logger.Logger) *SettingsHandler {
	return &SettingsHandler{chat: chat, logger: log}
}

// Get handles GET /api/v1/settings.
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.chat.Settings())
}

// Update handles PUT /api/v1/settings.
// The settings object is replaced wholesale; it applies to the next
// generation, never retroactively.
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var settings model.Settings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if settings.Temperature < 0 || settings.Temperature > 2 {
		writeError(w, http.StatusBadRequest, "temperature must be between 0 and 2")
		return
	}
	if settings.TopK < 1 || settings.TopK > 100 {
		writeError(w, http.StatusBadRequest, "top_k must be between 1 and 100")
		return
	}
	if settings.TopP < 0 || settings.TopP > 1 {
		writeError(w, http.StatusBadRequest, "top_p must be between 0 and 1")
		return
	}

	h.chat.UpdateSettings(settings)
	writeJSON(w, http.StatusOK, settings)
}
