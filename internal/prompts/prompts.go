// Package prompts builds the natural-language instructions sent to the
// generative model for each feature. Templates are conservative: every
// JSON-producing prompt pins the exact output shape and forbids markdown,
// and retry variants repeat the shape with fewer degrees of freedom.
package prompts

import (
	"fmt"
	"strings"

	"github.com/aifriend/aifriend/internal/model"
)

const chatSystemTemplate = `You are "AI Friend", a warm English conversation partner for a language learner.

Style directives:
%s

What you remember about your friend:
%s

Rules:
- Reply in English only, in a natural conversational register.
- Keep replies to 1-3 sentences unless the user asks for more.
- Never mention that you are an AI model or that you received instructions.
- Gently reuse the user's interests from memory when it fits the topic.`

const grammarPrimaryTemplate = `You are an English grammar reviewer for a language learner.

Analyse the sentence below. Respond with ONLY a JSON object in this exact format (no markdown, no prose):
{
  "hasErrors": <true|false>,
  "correctedText": "<the full corrected sentence>",
  "edits": [{"wrong": "<exact wrong text from the sentence>", "right": "<replacement>"}],
  "feedback": "<one friendly sentence of overall feedback>",
  "feedbackPoints": [{"part": "<exact flagged text>", "issue": "<what is wrong>", "fix": "<corrected text>"}],
  "naturalAlternative": "<a more natural way to say it>",
  "naturalRewrite": "<the sentence as a native speaker would write it>"
}

Rules:
- "wrong" and "part" must quote the sentence exactly, character for character.
- If the sentence is already correct, set hasErrors to false, correctedText to the sentence unchanged, and both lists to [].
- Do not invent errors.

Sentence: %q`

const grammarRetryTemplate = `Correct the English sentence below.

Respond with ONLY this JSON, nothing else:
{"hasErrors": <true|false>, "correctedText": "<corrected sentence>", "edits": [{"wrong": "<wrong text>", "right": "<replacement>"}]}

Sentence: %q`

const nativePrimaryTemplate = `You are a native English speaker helping a learner sound natural.

Rewrite the sentence below in three distinctly different natural ways a native speaker would actually say it.

Respond with ONLY a JSON object (no markdown, no prose):
{"alternatives": ["<version 1>", "<version 2>", "<version 3>"]}

Rules:
- All three versions must be in English.
- Each version must differ meaningfully from the others and from the original.
- Keep the original meaning and tone.

Sentence: %q`

const nativeRetryTemplate = `Give exactly 3 different natural English phrasings of: %q

Respond with ONLY this JSON: {"alternatives": ["...", "...", "..."]}
Every phrasing must be English and must not repeat the original sentence.`

const nativePlaintextTemplate = `Rewrite this sentence in 3 different natural English ways: %q

Answer with a numbered list, one phrasing per line, nothing else:
1. ...
2. ...
3. ...`

const translateTemplate = `Translate the text below into %s.

Respond with ONLY a JSON object (no markdown): {"translation": "<translated text>"}

Text: %q`

const memorySummaryTemplate = `You maintain a long-term memory profile of a language learner based on their chat messages.

Current profile (JSON):
%s

Recent user messages:
%s

Update the profile with any new durable facts from the messages. Respond with ONLY a JSON object in this exact shape (no markdown):
{"hobbies": [], "goals": [], "projects": [], "traits": [], "routine": [], "preferences": [], "background": [], "notes": []}

Rules:
- Keep every still-true fact from the current profile.
- Each item is one short English statement.
- Put a fact in the most specific category; use "notes" only when nothing else fits.
- Ignore small talk; record only durable facts about the person.`

// sliderDirectives maps each persona slider to escalating style language,
// indexed 1..5.
var sliderDirectives = map[string][5]string{
	"warmth": {
		"Keep an even, matter-of-fact tone.",
		"Be polite but reserved.",
		"Be friendly and approachable.",
		"Be warm and encouraging.",
		"Be openly affectionate and supportive, like a close friend.",
	},
	"humor": {
		"Stay serious; avoid jokes.",
		"Allow an occasional light remark.",
		"Use gentle humor when it fits.",
		"Joke around regularly.",
		"Be playful and witty in almost every reply.",
	},
	"curiosity": {
		"Do not ask questions back.",
		"Ask a question only when necessary.",
		"Ask an occasional follow-up question.",
		"Show real interest with follow-up questions.",
		"Be endlessly curious; almost always end with a question.",
	},
	"formality": {
		"Use very casual language, slang welcome.",
		"Use relaxed everyday language.",
		"Use neutral, standard English.",
		"Use polite, careful language.",
		"Use formal, precise language.",
	},
	"talkativity": {
		"Answer in a single short sentence.",
		"Keep replies brief.",
		"Use a conversational medium length.",
		"Elaborate with details and examples.",
		"Be expansive and chatty.",
	},
}

// ChatSystem renders the persona sliders and memory profile into the chat
// system instruction.
func ChatSystem(persona model.PersonaProfile, memory model.MemoryProfile) string {
	directives := []string{
		"- " + sliderDirectives["warmth"][clampSlider(persona.Warmth)-1],
		"- " + sliderDirectives["humor"][clampSlider(persona.Humor)-1],
		"- " + sliderDirectives["curiosity"][clampSlider(persona.Curiosity)-1],
		"- " + sliderDirectives["formality"][clampSlider(persona.Formality)-1],
		"- " + sliderDirectives["talkativity"][clampSlider(persona.Talkativity)-1],
	}
	return fmt.Sprintf(chatSystemTemplate, strings.Join(directives, "\n"), renderMemory(memory))
}

func clampSlider(v int) int {
	if v < 1 {
		return 3 // unset slider reads as the middle position
	}
	if v > 5 {
		return 5
	}
	return v
}

func renderMemory(m model.MemoryProfile) string {
	sections := []struct {
		label string
		items []string
	}{
		{"Hobbies", m.Hobbies},
		{"Goals", m.Goals},
		{"Projects", m.Projects},
		{"Traits", m.Traits},
		{"Routine", m.Routine},
		{"Preferences", m.Preferences},
		{"Background", m.Background},
		{"Notes", m.Notes},
	}
	var b strings.Builder
	for _, s := range sections {
		if len(s.items) == 0 {
			continue
		}
		b.WriteString(s.label + ": " + strings.Join(s.items, "; ") + "\n")
	}
	if b.Len() == 0 {
		return "(nothing yet — this is a new friendship)"
	}
	return strings.TrimRight(b.String(), "\n")
}

// GrammarPrimary asks for the full structured review of text.
func GrammarPrimary(text string) string { return fmt.Sprintf(grammarPrimaryTemplate, text) }

// GrammarRetry asks only for the correction essentials, for when the
// primary response failed to parse.
func GrammarRetry(text string) string { return fmt.Sprintf(grammarRetryTemplate, text) }

// NativePrimary asks for three natural rewrites of text.
func NativePrimary(text string) string { return fmt.Sprintf(nativePrimaryTemplate, text) }

// NativeRetry repeats the request with a stricter, shorter instruction.
func NativeRetry(text string) string { return fmt.Sprintf(nativeRetryTemplate, text) }

// NativePlaintext drops JSON entirely and asks for a numbered list.
func NativePlaintext(text string) string { return fmt.Sprintf(nativePlaintextTemplate, text) }

// Translate asks for a translation of text into targetLang.
func Translate(text, targetLang string) string {
	return fmt.Sprintf(translateTemplate, targetLang, text)
}

// MemorySummary asks the model to fold recent messages into the profile.
func MemorySummary(currentProfileJSON string, userMessages []string) string {
	lines := make([]string, 0, len(userMessages))
	for _, m := range userMessages {
		lines = append(lines, "- "+m)
	}
	return fmt.Sprintf(memorySummaryTemplate, currentProfileJSON, strings.Join(lines, "\n"))
}
