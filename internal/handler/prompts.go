package handler

import (
	"encoding/json"
	"net/http"

	"github.com/nakirhussain8918-star/Cool-boy-chat/internal/model"
	"github.com/nakirhussain8918-star/Cool-boy-chat/internal/service"
	"github.com/nakirhussain8918-star/Cool-boy-chat/pkg/logger"
)

// PromptsHandler serves the prompt recall list and prompt enhancement.
type PromptsHandler struct {
	chat   *service.ChatService
	logger *logger.Logger
}

// NewPromptsHandler creates a new prompts handler.
func NewPromptsHandler(chat *service.ChatService, log *logger.Logger) *PromptsHandler {
	return &PromptsHandler{chat: chat, logger: log}
}

// List handles GET /api/v1/prompts. Most recent first.
func (h *PromptsHandler) List(w http.ResponseWriter, r *http.Request) {
	prompts := h.chat.Prompts()
	if prompts == nil {
		prompts = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"prompts": prompts})
}

// Enhance handles POST /api/v1/prompts/enhance.
// Enhancement never fails; on any upstream problem the input comes back
// unchanged.
func (h *PromptsHandler) Enhance(w http.ResponseWriter, r *http.Request) {
	var req model.EnhancePromptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	prompt := h.chat.EnhancePrompt(r.Context(), req.Input)
	writeJSON(w, http.StatusOK, model.EnhancePromptResponse{Prompt: prompt})
}
