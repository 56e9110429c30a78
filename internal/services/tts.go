package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/aifriend/aifriend/internal/audio"
	"github.com/rs/zerolog"
)

// TTSService synthesizes spoken audio for a message. Unlike the text
// features it has no local fallback: there is nothing sensible to play on
// failure, so upstream errors propagate to the handler.
type TTSService struct {
	speech       SpeechGenerator
	modelName    string
	defaultVoice string
	log          zerolog.Logger
}

func NewTTSService(speech SpeechGenerator, modelName, defaultVoice string, log zerolog.Logger) *TTSService {
	return &TTSService{speech: speech, modelName: modelName, defaultVoice: defaultVoice, log: log}
}

// Speak returns a complete WAV file for text. voice may be empty to use
// the configured default.
func (s *TTSService) Speak(ctx context.Context, text, voice string) ([]byte, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("tts: empty text")
	}
	if voice == "" {
		voice = s.defaultVoice
	}

	pcm, err := s.speech.GenerateSpeech(ctx, s.modelName, voice, text)
	if err != nil {
		return nil, err
	}
	return audio.WAVFromPCM(pcm), nil
}
