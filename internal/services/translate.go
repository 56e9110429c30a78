package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/aifriend/aifriend/internal/fallback"
	"github.com/aifriend/aifriend/internal/gemini"
	"github.com/aifriend/aifriend/internal/llmtext"
	"github.com/aifriend/aifriend/internal/prompts"
	"github.com/rs/zerolog"
)

const (
	translateTemperature = 0.2
	translateMaxTokens   = 1024

	// DefaultTargetLanguage is assumed when a request omits targetLang.
	DefaultTargetLanguage = "Korean"
)

// TranslateService translates message text for the learner.
type TranslateService struct {
	llm       TextGenerator
	modelName string
	log       zerolog.Logger
}

func NewTranslateService(llm TextGenerator, modelName string, log zerolog.Logger) *TranslateService {
	return &TranslateService{llm: llm, modelName: modelName, log: log}
}

// Translate renders text into targetLang. On total model failure the
// source text is returned unchanged so the UI never blocks.
func (s *TranslateService) Translate(ctx context.Context, text, targetLang string) string {
	if strings.TrimSpace(targetLang) == "" {
		targetLang = DefaultTargetLanguage
	}

	jsonAttempt := func(ctx context.Context) (string, error) {
		raw, err := s.llm.GenerateText(ctx, gemini.GenerateRequest{
			Model:            s.modelName,
			Turns:            []gemini.Turn{{Role: "user", Text: prompts.Translate(text, targetLang)}},
			Temperature:      floatPtr(translateTemperature),
			MaxOutputTokens:  translateMaxTokens,
			ResponseMIMEType: "application/json",
		})
		if err != nil {
			return "", err
		}
		var p struct {
			Translation string `json:"translation"`
		}
		if err := llmtext.ParseLooseJSON(raw, &p); err != nil {
			return "", err
		}
		return strings.TrimSpace(p.Translation), nil
	}

	plaintextAttempt := func(ctx context.Context) (string, error) {
		raw, err := s.llm.GenerateText(ctx, gemini.GenerateRequest{
			Model:           s.modelName,
			System:          "You are a translator. Respond with the translation only, no commentary.",
			Turns:           []gemini.Turn{{Role: "user", Text: fmt.Sprintf("Translate into %s: %s", targetLang, text)}},
			Temperature:     floatPtr(translateTemperature),
			MaxOutputTokens: translateMaxTokens,
		})
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(raw), nil
	}

	attempts := []fallback.Attempt[string]{
		{Stage: fallback.StagePrimary, Run: jsonAttempt},
		{Stage: fallback.StageRetryStrict, Run: jsonAttempt},
		{Stage: fallback.StageRetryPlaintext, Run: plaintextAttempt},
	}
	accept := func(translation string) error {
		if translation == "" {
			return fmt.Errorf("empty translation")
		}
		if llmtext.IsMinorSentenceDifference(text, translation) {
			return fmt.Errorf("translation echoes the source")
		}
		return nil
	}

	translation, stage := fallback.Run(ctx, s.log, attempts, accept, func() string { return text })
	if stage != fallback.StagePrimary {
		s.log.Info().Str("stage", stage).Msg("translation produced by fallback stage")
	}
	return translation
}
