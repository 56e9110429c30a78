package api

import (
	"encoding/json"
	"net/http"

	"github.com/aifriend/aifriend/internal/api/respond"
	"github.com/aifriend/aifriend/internal/model"
	"github.com/aifriend/aifriend/internal/services"
)

// MemoryHandler serves the long-term memory summarization endpoint.
type MemoryHandler struct {
	svc       *services.MemoryService
	hasAPIKey bool
}

func NewMemoryHandler(svc *services.MemoryService, hasAPIKey bool) *MemoryHandler {
	return &MemoryHandler{svc: svc, hasAPIKey: hasAPIKey}
}

func (h *MemoryHandler) Summarize(w http.ResponseWriter, r *http.Request) {
	if !h.hasAPIKey {
		respond.WriteInternalError(w, msgMissingAPIKey)
		return
	}
	var in struct {
		Messages []model.ChatMessage `json:"messages"`
		Memory   model.MemoryProfile `json:"memory"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.WriteBadRequest(w, "invalid json")
		return
	}

	merged, updated := h.svc.Summarize(r.Context(), in.Memory, in.Messages)
	respond.WriteJSON(w, http.StatusOK, struct {
		Memory  model.MemoryProfile `json:"memory"`
		Updated bool                `json:"updated"`
	}{Memory: merged, Updated: updated})
}
