package prompts

import (
	"strings"
	"testing"

	"github.com/aifriend/aifriend/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestChatSystem_RendersPersonaAndMemory(t *testing.T) {
	persona := model.PersonaProfile{Warmth: 5, Humor: 1, Curiosity: 3, Formality: 2, Talkativity: 4}
	memory := model.MemoryProfile{Hobbies: []string{"climbing", "guitar"}}

	got := ChatSystem(persona, memory)
	assert.Contains(t, got, "openly affectionate")
	assert.Contains(t, got, "avoid jokes")
	assert.Contains(t, got, "Hobbies: climbing; guitar")
}

func TestChatSystem_EmptyMemory(t *testing.T) {
	got := ChatSystem(model.PersonaProfile{}, model.MemoryProfile{})
	assert.Contains(t, got, "new friendship")
}

func TestChatSystem_ClampsSliders(t *testing.T) {
	// out-of-range sliders must not panic and must still render a directive
	got := ChatSystem(model.PersonaProfile{Warmth: 99, Humor: -3}, model.MemoryProfile{})
	assert.Contains(t, got, "close friend")       // 99 clamps to 5
	assert.Contains(t, got, "Style directives:")
}

func TestGrammarPrompts_QuoteSentence(t *testing.T) {
	for _, p := range []string{GrammarPrimary("I has apple"), GrammarRetry("I has apple")} {
		assert.Contains(t, p, `"I has apple"`)
		assert.Contains(t, p, "correctedText")
	}
}

func TestNativePlaintext_AsksForNumberedList(t *testing.T) {
	p := NativePlaintext("I has apple")
	assert.Contains(t, p, "1.")
	assert.False(t, strings.Contains(p, "JSON"), "plaintext tier must not mention JSON")
}

func TestTranslate(t *testing.T) {
	p := Translate("hello", "Korean")
	assert.Contains(t, p, "Korean")
	assert.Contains(t, p, `"hello"`)
}

func TestMemorySummary_ListsMessages(t *testing.T) {
	p := MemorySummary(`{"hobbies":[]}`, []string{"I started climbing", "my cat is sick"})
	assert.Contains(t, p, "- I started climbing")
	assert.Contains(t, p, "- my cat is sick")
	assert.Contains(t, p, `{"hobbies":[]}`)
}
