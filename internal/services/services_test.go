package services

import (
	"context"
	"errors"
	"testing"

	"github.com/aifriend/aifriend/internal/gemini"
	"github.com/aifriend/aifriend/internal/model"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedLLM returns one scripted outcome per call, in order. Calls past
// the end of the script fail, which surfaces accidental extra attempts.
type scriptedLLM struct {
	script  []scriptStep
	calls   int
	prompts []string
}

type scriptStep struct {
	text string
	err  error
}

func (f *scriptedLLM) GenerateText(_ context.Context, req gemini.GenerateRequest) (string, error) {
	if len(req.Turns) > 0 {
		f.prompts = append(f.prompts, req.Turns[len(req.Turns)-1].Text)
	}
	if f.calls >= len(f.script) {
		return "", errors.New("scripted llm: unexpected extra call")
	}
	step := f.script[f.calls]
	f.calls++
	return step.text, step.err
}

type scriptedSpeech struct {
	pcm []byte
	err error
}

func (f *scriptedSpeech) GenerateSpeech(context.Context, string, string, string) ([]byte, error) {
	return f.pcm, f.err
}

func testLogger() zerolog.Logger { return zerolog.Nop() }

// --- chat ---

func TestChatReply_Primary(t *testing.T) {
	llm := &scriptedLLM{script: []scriptStep{{text: "Hey! How was your day?"}}}
	svc := NewChatService(llm, "m", testLogger())

	got := svc.Reply(context.Background(), "hi", nil, model.PersonaProfile{}, model.MemoryProfile{})
	assert.Equal(t, "Hey! How was your day?", got)
	assert.Equal(t, 1, llm.calls)
}

func TestChatReply_LocalFallbackNeverEmpty(t *testing.T) {
	llm := &scriptedLLM{script: []scriptStep{
		{err: errors.New("network down")},
		{err: errors.New("network down")},
	}}
	svc := NewChatService(llm, "m", testLogger())

	got := svc.Reply(context.Background(), "hello?", nil, model.PersonaProfile{}, model.MemoryProfile{})
	assert.NotEmpty(t, got)
}

func TestChatReply_IncludesHistoryTurns(t *testing.T) {
	llm := &scriptedLLM{script: []scriptStep{{text: "nice!"}}}
	svc := NewChatService(llm, "m", testLogger())

	history := []model.ChatMessage{
		{Role: model.RoleUser, Text: "I got a new job"},
		{Role: model.RoleAI, Text: "Congratulations!"},
	}
	_ = svc.Reply(context.Background(), "thanks", history, model.PersonaProfile{}, model.MemoryProfile{})
	require.Len(t, llm.prompts, 1)
	assert.Equal(t, "thanks", llm.prompts[0])
}

// --- grammar ---

func TestGrammarReview_EndToEnd(t *testing.T) {
	llm := &scriptedLLM{script: []scriptStep{{text: `{
		"hasErrors": true,
		"correctedText": "I have two apples",
		"edits": [{"wrong":"has","right":"have"},{"wrong":"apple","right":"apples"}],
		"feedback": "Almost there!",
		"feedbackPoints": [{"part":"has","issue":"subject-verb agreement","fix":"have"}]
	}`}}}
	svc := NewGrammarService(llm, "m", testLogger())

	got := svc.Review(context.Background(), "I has two apple")
	assert.True(t, got.HasErrors)
	assert.Contains(t, got.CorrectedText, "have")
	assert.Contains(t, got.CorrectedText, "apples")
	assert.NotContains(t, got.CorrectedText, "has ")
	assert.Len(t, got.Edits, 2)
}

func TestGrammarReview_ReconciliationPrefersCoveringCandidate(t *testing.T) {
	// the model's rewrite ignores its own edit list; the locally applied
	// edits must win reconciliation
	llm := &scriptedLLM{script: []scriptStep{{text: `{
		"hasErrors": true,
		"correctedText": "I has two apple",
		"edits": [{"wrong":"has","right":"have"},{"wrong":"apple","right":"apples"}]
	}`}}}
	svc := NewGrammarService(llm, "m", testLogger())

	got := svc.Review(context.Background(), "I has two apple")
	assert.Equal(t, "I have two apples", got.CorrectedText)
}

func TestGrammarReview_RetryAfterUnparseablePrimary(t *testing.T) {
	llm := &scriptedLLM{script: []scriptStep{
		{text: "I cannot help with that."},
		{text: `{"hasErrors":true,"correctedText":"She goes home","edits":[{"wrong":"go","right":"goes"}]}`},
	}}
	svc := NewGrammarService(llm, "m", testLogger())

	got := svc.Review(context.Background(), "She go home")
	assert.True(t, got.HasErrors)
	assert.Equal(t, "She goes home", got.CorrectedText)
	assert.Equal(t, 2, llm.calls)
}

func TestGrammarReview_LocalFallbackOnTotalFailure(t *testing.T) {
	llm := &scriptedLLM{script: []scriptStep{
		{err: errors.New("boom")},
		{err: errors.New("boom")},
	}}
	svc := NewGrammarService(llm, "m", testLogger())

	got := svc.Review(context.Background(), "I has two apple")
	assert.False(t, got.HasErrors)
	assert.Equal(t, "I has two apple", got.CorrectedText)
	assert.Empty(t, got.Edits)
	assert.NotNil(t, got.Edits)
}

func TestGrammarReview_CleanSentence(t *testing.T) {
	llm := &scriptedLLM{script: []scriptStep{{text: `{
		"hasErrors": false,
		"correctedText": "I have two apples",
		"edits": [],
		"feedback": "Perfect!"
	}`}}}
	svc := NewGrammarService(llm, "m", testLogger())

	got := svc.Review(context.Background(), "I have two apples")
	assert.False(t, got.HasErrors)
	assert.Equal(t, "I have two apples", got.CorrectedText)
}

// --- native alternatives ---

func TestNativeAlternatives_Primary(t *testing.T) {
	llm := &scriptedLLM{script: []scriptStep{
		{text: `{"alternatives":["I've got two apples","I'm holding two apples","Two apples, right here"]}`},
	}}
	svc := NewNativeService(llm, "m", testLogger())

	got := svc.Alternatives(context.Background(), "I has two apple")
	assert.Len(t, got, 3)
	assert.Equal(t, 1, llm.calls)
}

func TestNativeAlternatives_WeakResultTriggersRetry(t *testing.T) {
	llm := &scriptedLLM{script: []scriptStep{
		// echo + duplicate leaves only one distinct alternative
		{text: `{"alternatives":["I has two apple","I've got two apples","i've got two apples"]}`},
		{text: `{"alternatives":["I've got two apples","I'm carrying two apples","Two apples for me"]}`},
	}}
	svc := NewNativeService(llm, "m", testLogger())

	got := svc.Alternatives(context.Background(), "I has two apple")
	assert.Len(t, got, 3)
	assert.Equal(t, 2, llm.calls)
}

func TestNativeAlternatives_PlaintextTier(t *testing.T) {
	llm := &scriptedLLM{script: []scriptStep{
		{text: "no json here"},
		{text: "still no json"},
		{text: "1. I've got two apples\n2. I'm carrying two apples\n3. Two apples for me"},
	}}
	svc := NewNativeService(llm, "m", testLogger())

	got := svc.Alternatives(context.Background(), "I has two apple")
	assert.Equal(t, []string{"I've got two apples", "I'm carrying two apples", "Two apples for me"}, got)
}

func TestNativeAlternatives_SalvagesPartialSet(t *testing.T) {
	llm := &scriptedLLM{script: []scriptStep{
		{text: `{"alternatives":["I've got two apples","I'm carrying two apples"]}`},
		{err: errors.New("down")},
		{err: errors.New("down")},
	}}
	svc := NewNativeService(llm, "m", testLogger())

	got := svc.Alternatives(context.Background(), "I has two apple")
	assert.Equal(t, []string{"I've got two apples", "I'm carrying two apples"}, got)
}

func TestNativeAlternatives_WrongLanguageFiltered(t *testing.T) {
	llm := &scriptedLLM{script: []scriptStep{
		{text: `{"alternatives":["사과 두 개 있어요","I've got two apples","나는 사과가 있어"]}`},
		{err: errors.New("down")},
		{err: errors.New("down")},
	}}
	svc := NewNativeService(llm, "m", testLogger())

	got := svc.Alternatives(context.Background(), "I has two apple")
	assert.Equal(t, []string{"I've got two apples"}, got)
}

func TestNativeAlternatives_EmptyOnTotalFailure(t *testing.T) {
	llm := &scriptedLLM{script: []scriptStep{
		{err: errors.New("down")},
		{err: errors.New("down")},
		{err: errors.New("down")},
	}}
	svc := NewNativeService(llm, "m", testLogger())

	got := svc.Alternatives(context.Background(), "I has two apple")
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

// --- translate ---

func TestTranslate_Primary(t *testing.T) {
	llm := &scriptedLLM{script: []scriptStep{{text: `{"translation":"사과가 두 개 있어요"}`}}}
	svc := NewTranslateService(llm, "m", testLogger())

	got := svc.Translate(context.Background(), "I have two apples", "Korean")
	assert.Equal(t, "사과가 두 개 있어요", got)
}

func TestTranslate_RejectsEcho(t *testing.T) {
	llm := &scriptedLLM{script: []scriptStep{
		{text: `{"translation":"I have two apples."}`},
		{text: `{"translation":"사과가 두 개 있어요"}`},
	}}
	svc := NewTranslateService(llm, "m", testLogger())

	got := svc.Translate(context.Background(), "I have two apples", "Korean")
	assert.Equal(t, "사과가 두 개 있어요", got)
	assert.Equal(t, 2, llm.calls)
}

func TestTranslate_FallsBackToSource(t *testing.T) {
	llm := &scriptedLLM{script: []scriptStep{
		{err: errors.New("down")},
		{err: errors.New("down")},
		{err: errors.New("down")},
	}}
	svc := NewTranslateService(llm, "m", testLogger())

	got := svc.Translate(context.Background(), "I have two apples", "")
	assert.Equal(t, "I have two apples", got)
}

// --- memory summary ---

func TestSummarize_MergesAndReportsChange(t *testing.T) {
	llm := &scriptedLLM{script: []scriptStep{
		{text: `{"hobbies":["bouldering"],"goals":[],"projects":[],"traits":[],"routine":[],"preferences":[],"background":[],"notes":["wants to pass the TOEIC exam"]}`},
	}}
	svc := NewMemoryService(llm, "m", testLogger())

	prior := model.MemoryProfile{Hobbies: []string{"guitar"}}
	msgs := []model.ChatMessage{
		{Role: model.RoleUser, Text: "I went bouldering today"},
		{Role: model.RoleAI, Text: "Sounds fun!"},
	}
	got, updated := svc.Summarize(context.Background(), prior, msgs)
	assert.True(t, updated)
	assert.Equal(t, []string{"guitar", "bouldering"}, got.Hobbies)
	// untyped note is reclassified into goals
	assert.Equal(t, []string{"wants to pass the TOEIC exam"}, got.Goals)
}

func TestSummarize_NoUserMessages(t *testing.T) {
	llm := &scriptedLLM{}
	svc := NewMemoryService(llm, "m", testLogger())

	prior := model.MemoryProfile{Hobbies: []string{"guitar"}}
	got, updated := svc.Summarize(context.Background(), prior, []model.ChatMessage{{Role: model.RoleAI, Text: "hi"}})
	assert.False(t, updated)
	assert.Equal(t, prior, got)
	assert.Zero(t, llm.calls)
}

func TestSummarize_FailureKeepsPrior(t *testing.T) {
	llm := &scriptedLLM{script: []scriptStep{
		{err: errors.New("down")},
		{err: errors.New("down")},
	}}
	svc := NewMemoryService(llm, "m", testLogger())

	prior := model.MemoryProfile{Hobbies: []string{"guitar"}}
	got, updated := svc.Summarize(context.Background(), prior, []model.ChatMessage{{Role: model.RoleUser, Text: "hello"}})
	assert.False(t, updated)
	assert.Equal(t, prior, got)
}

func TestSummarize_UnchangedProfileNotReportedAsUpdate(t *testing.T) {
	llm := &scriptedLLM{script: []scriptStep{
		{text: `{"hobbies":["guitar"],"goals":[],"projects":[],"traits":[],"routine":[],"preferences":[],"background":[],"notes":[]}`},
	}}
	svc := NewMemoryService(llm, "m", testLogger())

	prior := model.MemoryProfile{Hobbies: []string{"guitar"}}
	_, updated := svc.Summarize(context.Background(), prior, []model.ChatMessage{{Role: model.RoleUser, Text: "hi"}})
	assert.False(t, updated)
}

// --- tts ---

func TestSpeak_WrapsWAV(t *testing.T) {
	svc := NewTTSService(&scriptedSpeech{pcm: []byte{1, 2, 3, 4}}, "tts-m", "Leda", testLogger())

	wav, err := svc.Speak(context.Background(), "hello", "")
	require.NoError(t, err)
	assert.Equal(t, "RIFF", string(wav[:4]))
	assert.Len(t, wav, 44+4)
}

func TestSpeak_PropagatesError(t *testing.T) {
	svc := NewTTSService(&scriptedSpeech{err: errors.New("upstream")}, "tts-m", "Leda", testLogger())
	_, err := svc.Speak(context.Background(), "hello", "")
	assert.Error(t, err)
}

func TestSpeak_EmptyText(t *testing.T) {
	svc := NewTTSService(&scriptedSpeech{}, "tts-m", "Leda", testLogger())
	_, err := svc.Speak(context.Background(), "   ", "")
	assert.Error(t, err)
}
