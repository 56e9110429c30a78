package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/aifriend/aifriend/internal/api/respond"
	"github.com/aifriend/aifriend/internal/gemini"
	"github.com/aifriend/aifriend/internal/services"
	"github.com/rs/zerolog"
)

// TTSHandler serves speech synthesis. Unlike the text endpoints, upstream
// failures propagate: there is no meaningful audio fallback.
type TTSHandler struct {
	svc *services.TTSService
	log zerolog.Logger
}

func NewTTSHandler(svc *services.TTSService, log zerolog.Logger) *TTSHandler {
	return &TTSHandler{svc: svc, log: log}
}

func (h *TTSHandler) Speak(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Text  string `json:"text"`
		Voice string `json:"voice"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.WriteBadRequest(w, "invalid json")
		return
	}
	if strings.TrimSpace(in.Text) == "" {
		respond.WriteBadRequest(w, "text required")
		return
	}

	wav, err := h.svc.Speak(r.Context(), in.Text, in.Voice)
	if err != nil {
		h.log.Warn().Err(err).Msg("speech synthesis failed")
		switch {
		case errors.Is(err, gemini.ErrMissingAPIKey):
			respond.WriteInternalError(w, msgMissingAPIKey)
		case gemini.IsInvalidKey(err):
			respond.WriteInternalError(w, "server API key was rejected upstream")
		case gemini.IsQuotaExhausted(err):
			respond.WriteError(w, http.StatusTooManyRequests, "speech quota exhausted, try again later")
		default:
			respond.WriteError(w, http.StatusBadGateway, "speech synthesis unavailable")
		}
		return
	}

	w.Header().Set("Content-Type", "audio/wav")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(wav)
}
