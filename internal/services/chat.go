package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/aifriend/aifriend/internal/fallback"
	"github.com/aifriend/aifriend/internal/gemini"
	"github.com/aifriend/aifriend/internal/model"
	"github.com/aifriend/aifriend/internal/prompts"
	"github.com/rs/zerolog"
)

const (
	chatTemperature = 0.9
	chatMaxTokens   = 512
	// chat context window: older turns are dropped, the model has the
	// memory profile for long-range continuity
	chatHistoryLimit = 20
)

// localChatReplies are returned when every model attempt fails, so the
// conversation never dies on an upstream outage.
var localChatReplies = []string{
	"Sorry, I spaced out for a second! What were you saying?",
	"Hmm, my head is a bit fuzzy right now. Tell me that again?",
	"Oops, I missed that. Could you say it one more time?",
}

// ChatService produces the AI friend's conversational replies.
type ChatService struct {
	llm       TextGenerator
	modelName string
	log       zerolog.Logger
}

func NewChatService(llm TextGenerator, modelName string, log zerolog.Logger) *ChatService {
	return &ChatService{llm: llm, modelName: modelName, log: log}
}

// Reply generates the friend's next message given the user's message, the
// recent history, the persona sliders, and the memory profile.
func (s *ChatService) Reply(ctx context.Context, message string, history []model.ChatMessage, persona model.PersonaProfile, mem model.MemoryProfile) string {
	system := prompts.ChatSystem(persona, mem)
	turns := historyTurns(history, chatHistoryLimit)
	turns = append(turns, gemini.Turn{Role: "user", Text: message})

	attempt := func(ctx context.Context) (string, error) {
		reply, err := s.llm.GenerateText(ctx, gemini.GenerateRequest{
			Model:           s.modelName,
			System:          system,
			Turns:           turns,
			Temperature:     floatPtr(chatTemperature),
			MaxOutputTokens: chatMaxTokens,
		})
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(reply), nil
	}

	attempts := []fallback.Attempt[string]{
		{Stage: fallback.StagePrimary, Run: attempt},
		{Stage: fallback.StageRetryStrict, Run: attempt},
	}
	accept := func(reply string) error {
		if reply == "" {
			return fmt.Errorf("empty reply")
		}
		return nil
	}

	reply, stage := fallback.Run(ctx, s.log, attempts, accept, func() string {
		return localChatReplies[len(message)%len(localChatReplies)]
	})
	if stage != fallback.StagePrimary {
		s.log.Info().Str("stage", stage).Msg("chat reply produced by fallback stage")
	}
	return reply
}

// historyTurns converts the tail of the chat log into upstream turns.
func historyTurns(history []model.ChatMessage, limit int) []gemini.Turn {
	if len(history) > limit {
		history = history[len(history)-limit:]
	}
	turns := make([]gemini.Turn, 0, len(history)+1)
	for _, m := range history {
		role := "user"
		if m.Role == model.RoleAI {
			role = "model"
		}
		if strings.TrimSpace(m.Text) == "" {
			continue
		}
		turns = append(turns, gemini.Turn{Role: role, Text: m.Text})
	}
	return turns
}
