// Package model defines the shared data types exchanged between the API
// layer, the feature services, and the browser client.
package model

import "time"

// Role identifies the author of a chat message.
type Role string

const (
	RoleUser Role = "user"
	RoleAI   Role = "ai"
)

// ChatMessage is one turn of the conversation log. The client persists the
// whole log as a snapshot on every mutation; the server treats it as
// read-only context.
type ChatMessage struct {
	ID            string         `json:"id"`
	Role          Role           `json:"role"`
	Text          string         `json:"text"`
	Time          time.Time      `json:"time"`
	Translation   *string        `json:"translation,omitempty"`
	GrammarReview *GrammarReview `json:"grammarReview,omitempty"`
	SentAt        *time.Time     `json:"sentAt,omitempty"`
}

// Edit is a single {wrong, right} grammar correction.
type Edit struct {
	Wrong string `json:"wrong"`
	Right string `json:"right"`
}

// FeedbackPoint describes one flagged span of user text.
type FeedbackPoint struct {
	Part  string `json:"part"`
	Issue string `json:"issue"`
	Fix   string `json:"fix"`
}

// GrammarReview is the per-message grammar analysis, derived once per user
// message and cached on it by the client.
type GrammarReview struct {
	HasErrors          bool            `json:"hasErrors"`
	CorrectedText      string          `json:"correctedText"`
	Edits              []Edit          `json:"edits"`
	Feedback           string          `json:"feedback"`
	FeedbackPoints     []FeedbackPoint `json:"feedbackPoints"`
	NaturalAlternative string          `json:"naturalAlternative,omitempty"`
	NaturalRewrite     string          `json:"naturalRewrite,omitempty"`
}

// MemoryProfile holds categorized long-term facts about the user. Every
// field is a deduplicated, capped list of short statements.
type MemoryProfile struct {
	Hobbies     []string `json:"hobbies"`
	Goals       []string `json:"goals"`
	Projects    []string `json:"projects"`
	Traits      []string `json:"traits"`
	Routine     []string `json:"routine"`
	Preferences []string `json:"preferences"`
	Background  []string `json:"background"`
	Notes       []string `json:"notes"`
}

// DictionaryKind tags the provenance of a saved dictionary entry.
type DictionaryKind string

const (
	DictionaryNative  DictionaryKind = "native"
	DictionaryGrammar DictionaryKind = "grammar"
)

// DictionaryEntry is a phrase or corrected sentence the user chose to keep.
type DictionaryEntry struct {
	ID         string         `json:"id"`
	Kind       DictionaryKind `json:"kind"`
	Text       string         `json:"text"`
	SourceText string         `json:"sourceText"`
	SavedAt    time.Time      `json:"savedAt"`
}

// PersonaProfile is the set of five 1-5 sliders the user tunes for the AI
// friend's conversational style. Values outside 1-5 are clamped at prompt
// build time.
type PersonaProfile struct {
	Warmth      int `json:"warmth"`
	Humor       int `json:"humor"`
	Curiosity   int `json:"curiosity"`
	Formality   int `json:"formality"`
	Talkativity int `json:"talkativity"`
}

// PushSubscription mirrors the browser PushSubscription JSON shape.
type PushSubscription struct {
	Endpoint string               `json:"endpoint"`
	Keys     PushSubscriptionKeys `json:"keys"`
}

// PushSubscriptionKeys carries the client encryption keys for web push.
type PushSubscriptionKeys struct {
	P256dh string `json:"p256dh"`
	Auth   string `json:"auth"`
}
