package services

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/aifriend/aifriend/internal/fallback"
	"github.com/aifriend/aifriend/internal/gemini"
	"github.com/aifriend/aifriend/internal/llmtext"
	"github.com/aifriend/aifriend/internal/prompts"
	"github.com/rs/zerolog"
)

const (
	nativeTemperature = 0.7
	nativeMaxTokens   = 512
)

// NativeService suggests up to three natural native phrasings of a learner
// sentence.
type NativeService struct {
	llm       TextGenerator
	modelName string
	log       zerolog.Logger
}

func NewNativeService(llm TextGenerator, modelName string, log zerolog.Logger) *NativeService {
	return &NativeService{llm: llm, modelName: modelName, log: log}
}

// Alternatives returns 0-3 distinct suggestions. An empty slice means no
// usable suggestion could be produced; the caller treats that as "no
// suggestions" rather than an error.
func (s *NativeService) Alternatives(ctx context.Context, source string) []string {
	var bestSoFar []string

	normalize := func(alts []string) []string {
		english := alts[:0]
		for _, a := range alts {
			if looksEnglish(a) {
				english = append(english, a)
			}
		}
		out := llmtext.NormalizeAlternatives(source, english)
		if len(out) > len(bestSoFar) {
			bestSoFar = out
		}
		return out
	}

	jsonAttempt := func(ctx context.Context, prompt string) ([]string, error) {
		raw, err := s.llm.GenerateText(ctx, gemini.GenerateRequest{
			Model:            s.modelName,
			Turns:            []gemini.Turn{{Role: "user", Text: prompt}},
			Temperature:      floatPtr(nativeTemperature),
			MaxOutputTokens:  nativeMaxTokens,
			ResponseMIMEType: "application/json",
		})
		if err != nil {
			return nil, err
		}
		var p struct {
			Alternatives []string `json:"alternatives"`
		}
		if err := llmtext.ParseLooseJSON(raw, &p); err != nil {
			return nil, err
		}
		return normalize(p.Alternatives), nil
	}

	attempts := []fallback.Attempt[[]string]{
		{Stage: fallback.StagePrimary, Run: func(ctx context.Context) ([]string, error) {
			return jsonAttempt(ctx, prompts.NativePrimary(source))
		}},
		{Stage: fallback.StageRetryStrict, Run: func(ctx context.Context) ([]string, error) {
			return jsonAttempt(ctx, prompts.NativeRetry(source))
		}},
		{Stage: fallback.StageRetryPlaintext, Run: func(ctx context.Context) ([]string, error) {
			raw, err := s.llm.GenerateText(ctx, gemini.GenerateRequest{
				Model:           s.modelName,
				Turns:           []gemini.Turn{{Role: "user", Text: prompts.NativePlaintext(source)}},
				Temperature:     floatPtr(nativeTemperature),
				MaxOutputTokens: nativeMaxTokens,
			})
			if err != nil {
				return nil, err
			}
			return normalize(parseNumberedList(raw)), nil
		}},
	}

	accept := func(alts []string) error {
		if len(alts) < llmtext.MaxAlternatives {
			return fmt.Errorf("only %d distinct alternatives", len(alts))
		}
		return nil
	}

	// the terminal stage salvages the best under-filled set from any
	// earlier attempt; an empty slice means genuinely no suggestions
	alts, stage := fallback.Run(ctx, s.log, attempts, accept, func() []string {
		return bestSoFar
	})
	if stage == fallback.StageLocal {
		s.log.Info().Int("count", len(alts)).Msg("native alternatives degraded to salvaged set")
	}
	if alts == nil {
		alts = []string{}
	}
	return alts
}

// parseNumberedList extracts items from "1. ..." / "- ..." style lines.
func parseNumberedList(raw string) []string {
	var out []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "0123456789")
		line = strings.TrimLeft(line, ".)-* ")
		line = strings.Trim(line, `"`)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

// looksEnglish is a wrong-language leak check: the bulk of the letters
// must be ASCII.
func looksEnglish(s string) bool {
	letters, ascii := 0, 0
	for _, r := range s {
		if unicode.IsLetter(r) {
			letters++
			if r < 128 {
				ascii++
			}
		}
	}
	if letters == 0 {
		return false
	}
	return float64(ascii)/float64(letters) >= 0.8
}
