package services

import (
	"context"
	"encoding/json"

	"github.com/aifriend/aifriend/internal/fallback"
	"github.com/aifriend/aifriend/internal/gemini"
	"github.com/aifriend/aifriend/internal/llmtext"
	"github.com/aifriend/aifriend/internal/memory"
	"github.com/aifriend/aifriend/internal/model"
	"github.com/aifriend/aifriend/internal/prompts"
	"github.com/rs/zerolog"
)

const (
	memoryTemperature = 0.3
	memoryMaxTokens   = 1024
)

// MemoryService folds recent conversation into the long-term memory
// profile.
type MemoryService struct {
	llm       TextGenerator
	modelName string
	log       zerolog.Logger
}

func NewMemoryService(llm TextGenerator, modelName string, log zerolog.Logger) *MemoryService {
	return &MemoryService{llm: llm, modelName: modelName, log: log}
}

// Summarize merges durable facts from messages into prior and reports
// whether the profile changed. On model failure the prior profile is
// returned unchanged.
func (s *MemoryService) Summarize(ctx context.Context, prior model.MemoryProfile, messages []model.ChatMessage) (model.MemoryProfile, bool) {
	userTexts := make([]string, 0, len(messages))
	for _, m := range messages {
		if m.Role == model.RoleUser && m.Text != "" {
			userTexts = append(userTexts, m.Text)
		}
	}
	if len(userTexts) == 0 {
		return prior, false
	}

	priorJSON, err := json.Marshal(prior)
	if err != nil {
		s.log.Error().Err(err).Msg("marshal prior memory profile")
		return prior, false
	}
	prompt := prompts.MemorySummary(string(priorJSON), userTexts)

	attempt := func(ctx context.Context) (model.MemoryProfile, error) {
		raw, err := s.llm.GenerateText(ctx, gemini.GenerateRequest{
			Model:            s.modelName,
			Turns:            []gemini.Turn{{Role: "user", Text: prompt}},
			Temperature:      floatPtr(memoryTemperature),
			MaxOutputTokens:  memoryMaxTokens,
			ResponseMIMEType: "application/json",
		})
		if err != nil {
			return model.MemoryProfile{}, err
		}
		var p model.MemoryProfile
		if err := llmtext.ParseLooseJSON(raw, &p); err != nil {
			return model.MemoryProfile{}, err
		}
		return p, nil
	}

	attempts := []fallback.Attempt[model.MemoryProfile]{
		{Stage: fallback.StagePrimary, Run: attempt},
		{Stage: fallback.StageRetryStrict, Run: attempt},
	}

	summarized, stage := fallback.Run(ctx, s.log, attempts, nil, func() model.MemoryProfile {
		return prior
	})
	if stage == fallback.StageLocal {
		return prior, false
	}

	merged := memory.Merge(prior, memory.Reclassify(summarized))
	return merged, !memory.Equal(prior, merged)
}
