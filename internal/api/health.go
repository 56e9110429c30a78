package api

import (
	"context"
	"net/http"
	"time"

	"github.com/aifriend/aifriend/internal/api/respond"
)

// Pinger is anything that can report storage liveness.
type Pinger interface {
	HealthCheck(ctx context.Context) error
}

// HealthHandler reports service liveness plus configuration presence.
type HealthHandler struct {
	store     Pinger
	hasAPIKey bool
}

func NewHealthHandler(store Pinger, hasAPIKey bool) *HealthHandler {
	return &HealthHandler{store: store, hasAPIKey: hasAPIKey}
}

func (h *HealthHandler) CheckHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := "healthy"
	code := http.StatusOK
	storageOK := true
	if h.store != nil {
		if err := h.store.HealthCheck(ctx); err != nil {
			status = "degraded"
			code = http.StatusServiceUnavailable
			storageOK = false
		}
	}

	respond.WriteJSON(w, code, map[string]any{
		"status":         status,
		"storage":        storageOK,
		"gemini_key_set": h.hasAPIKey,
		"time":           time.Now().UTC().Format(time.RFC3339),
	})
}
