package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aifriend/aifriend/internal/api/respond"
	"github.com/aifriend/aifriend/internal/model"
	"github.com/aifriend/aifriend/internal/services"
)

const msgMissingAPIKey = "server API key is not configured"

// LanguageHandler serves the chat and language-learning endpoints. Model
// failures never surface as HTTP errors here: the services degrade to local
// defaults, and only a missing server-side API key produces a 500.
type LanguageHandler struct {
	chat      *services.ChatService
	grammar   *services.GrammarService
	native    *services.NativeService
	translate *services.TranslateService
	hasAPIKey bool
}

func NewLanguageHandler(chat *services.ChatService, grammar *services.GrammarService, native *services.NativeService, translate *services.TranslateService, hasAPIKey bool) *LanguageHandler {
	return &LanguageHandler{chat: chat, grammar: grammar, native: native, translate: translate, hasAPIKey: hasAPIKey}
}

func (h *LanguageHandler) requireAPIKey(w http.ResponseWriter) bool {
	if !h.hasAPIKey {
		respond.WriteInternalError(w, msgMissingAPIKey)
		return false
	}
	return true
}

func (h *LanguageHandler) Chat(w http.ResponseWriter, r *http.Request) {
	if !h.requireAPIKey(w) {
		return
	}
	var in struct {
		Message string               `json:"message"`
		History []model.ChatMessage  `json:"history"`
		Persona model.PersonaProfile `json:"persona"`
		Memory  model.MemoryProfile  `json:"memory"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.WriteBadRequest(w, "invalid json")
		return
	}
	if strings.TrimSpace(in.Message) == "" {
		respond.WriteBadRequest(w, "message required")
		return
	}

	reply := h.chat.Reply(r.Context(), in.Message, in.History, in.Persona, in.Memory)
	msg := model.ChatMessage{
		ID:   uuid.NewString(),
		Role: model.RoleAI,
		Text: reply,
		Time: time.Now().UTC(),
	}
	respond.WriteJSON(w, http.StatusOK, map[string]any{"reply": reply, "message": msg})
}

func (h *LanguageHandler) GrammarFeedback(w http.ResponseWriter, r *http.Request) {
	if !h.requireAPIKey(w) {
		return
	}
	var in struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.WriteBadRequest(w, "invalid json")
		return
	}
	if strings.TrimSpace(in.Text) == "" {
		respond.WriteBadRequest(w, "text required")
		return
	}

	review := h.grammar.Review(r.Context(), in.Text)
	respond.WriteJSON(w, http.StatusOK, review)
}

func (h *LanguageHandler) NativeAlternatives(w http.ResponseWriter, r *http.Request) {
	if !h.requireAPIKey(w) {
		return
	}
	var in struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.WriteBadRequest(w, "invalid json")
		return
	}
	if strings.TrimSpace(in.Text) == "" {
		respond.WriteBadRequest(w, "text required")
		return
	}

	alts := h.native.Alternatives(r.Context(), in.Text)
	respond.WriteJSON(w, http.StatusOK, map[string][]string{"alternatives": alts})
}

func (h *LanguageHandler) Translate(w http.ResponseWriter, r *http.Request) {
	if !h.requireAPIKey(w) {
		return
	}
	var in struct {
		Text       string `json:"text"`
		TargetLang string `json:"targetLang"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.WriteBadRequest(w, "invalid json")
		return
	}
	if strings.TrimSpace(in.Text) == "" {
		respond.WriteBadRequest(w, "text required")
		return
	}

	translation := h.translate.Translate(r.Context(), in.Text, in.TargetLang)
	respond.WriteJSON(w, http.StatusOK, map[string]string{"translation": translation})
}
