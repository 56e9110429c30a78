// Package services implements the language-learning features: chat,
// grammar review, native phrasing, translation, memory summarization, and
// speech. Each service is a stateless orchestration of prompt construction,
// upstream model calls, tolerant parsing, and tiered fallback; all working
// state is re-derived from the request.
package services

import (
	"context"

	"github.com/aifriend/aifriend/internal/gemini"
)

// TextGenerator is the upstream text-generation dependency.
type TextGenerator interface {
	GenerateText(ctx context.Context, req gemini.GenerateRequest) (string, error)
}

// SpeechGenerator is the upstream speech-synthesis dependency.
type SpeechGenerator interface {
	GenerateSpeech(ctx context.Context, model, voice, text string) ([]byte, error)
}

func floatPtr(f float64) *float64 { return &f }
