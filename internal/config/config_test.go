package config

import (
	"os"
	"testing"
)

func TestConfigLoad_Defaults(t *testing.T) {
	// clear env vars
	_ = os.Unsetenv("AIFRIEND_CHAT_MODEL")
	_ = os.Unsetenv("AIFRIEND_HTTP_PORT")
	_ = os.Unsetenv("AIFRIEND_CRON_SPEC")

	cfg, err := New()
	if err != nil {
		t.Fatalf("config load: %v", err)
	}
	if cfg.ChatModel != "gemini-2.5-flash" || cfg.HTTPPort != 8080 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.CronSpec != "0 * * * *" || !cfg.CronEnabled {
		t.Fatalf("unexpected cron defaults: %+v", cfg)
	}
}

func TestConfigLoad_EnvOverride(t *testing.T) {
	_ = os.Setenv("AIFRIEND_CHAT_MODEL", "test-model")
	defer func() { _ = os.Unsetenv("AIFRIEND_CHAT_MODEL") }()

	cfg, err := New()
	if err != nil {
		t.Fatalf("config load: %v", err)
	}
	if cfg.ChatModel != "test-model" {
		t.Fatalf("chat model env override failed, got %s", cfg.ChatModel)
	}
}

func TestConfigLoad_TTSDefaults(t *testing.T) {
	_ = os.Unsetenv("AIFRIEND_TTS_MODEL")
	_ = os.Unsetenv("AIFRIEND_TTS_VOICE")

	cfg, err := New()
	if err != nil {
		t.Fatalf("config load: %v", err)
	}
	if cfg.TTSModel != "gemini-2.5-flash-preview-tts" || cfg.TTSVoice != "Leda" {
		t.Fatalf("unexpected tts defaults: %+v", cfg)
	}
}

func TestGetHTTPAddr(t *testing.T) {
	cfg := NewForTesting()
	if cfg.GetHTTPAddr() != ":8080" {
		t.Fatalf("unexpected addr: %s", cfg.GetHTTPAddr())
	}
}
