package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/aifriend/aifriend/internal/api/respond"
	"github.com/aifriend/aifriend/internal/model"
	"github.com/aifriend/aifriend/internal/notify"
	"github.com/aifriend/aifriend/internal/storage/sqlite"
	"github.com/rs/zerolog"
)

// Nudger runs one gated push fan-out.
type Nudger interface {
	Nudge(ctx context.Context) (notify.Result, error)
}

// PushHandler manages push subscriptions and the cron-triggered fan-out.
type PushHandler struct {
	store  *sqlite.SubscriptionStore
	sender Nudger
	log    zerolog.Logger
}

func NewPushHandler(store *sqlite.SubscriptionStore, sender Nudger, log zerolog.Logger) *PushHandler {
	return &PushHandler{store: store, sender: sender, log: log}
}

// Subscribe stores (or refreshes) a browser push subscription.
func (h *PushHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	var sub model.PushSubscription
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		respond.WriteBadRequest(w, "invalid json")
		return
	}
	if strings.TrimSpace(sub.Endpoint) == "" {
		respond.WriteBadRequest(w, "endpoint required")
		return
	}

	if err := h.store.Save(r.Context(), sub); err != nil {
		h.log.Error().Err(err).Msg("store push subscription")
		respond.WriteInternalError(w, "could not store subscription")
		return
	}
	respond.WriteJSON(w, http.StatusCreated, map[string]bool{"stored": true})
}

// Unsubscribe removes the subscription for the endpoint in the body.
func (h *PushHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Endpoint string `json:"endpoint"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.WriteBadRequest(w, "invalid json")
		return
	}
	if strings.TrimSpace(in.Endpoint) == "" {
		respond.WriteBadRequest(w, "endpoint required")
		return
	}

	if err := h.store.Delete(r.Context(), in.Endpoint); err != nil {
		h.log.Error().Err(err).Msg("delete push subscription")
		respond.WriteInternalError(w, "could not delete subscription")
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

// Cron runs one gated nudge fan-out. External schedulers hit this hourly;
// the gate decides whether anything is actually sent.
func (h *PushHandler) Cron(w http.ResponseWriter, r *http.Request) {
	res, err := h.sender.Nudge(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("nudge fan-out failed")
		respond.WriteInternalError(w, "push fan-out failed")
		return
	}
	respond.WriteJSON(w, http.StatusOK, res)
}
