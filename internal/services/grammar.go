package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/aifriend/aifriend/internal/fallback"
	"github.com/aifriend/aifriend/internal/gemini"
	"github.com/aifriend/aifriend/internal/llmtext"
	"github.com/aifriend/aifriend/internal/model"
	"github.com/aifriend/aifriend/internal/prompts"
	"github.com/rs/zerolog"
)

const (
	grammarTemperature = 0.2
	grammarMaxTokens   = 1024
)

// GrammarService reviews a user sentence and reconciles the model's
// candidate corrections into a single best corrected text.
type GrammarService struct {
	llm       TextGenerator
	modelName string
	log       zerolog.Logger
}

func NewGrammarService(llm TextGenerator, modelName string, log zerolog.Logger) *GrammarService {
	return &GrammarService{llm: llm, modelName: modelName, log: log}
}

// grammarPayload mirrors the JSON shape the prompts request. Field types
// are re-checked after parsing; a structurally valid but semantically empty
// payload is treated as a weak result.
type grammarPayload struct {
	HasErrors          bool                  `json:"hasErrors"`
	CorrectedText      string                `json:"correctedText"`
	Edits              []model.Edit          `json:"edits"`
	Feedback           string                `json:"feedback"`
	FeedbackPoints     []model.FeedbackPoint `json:"feedbackPoints"`
	NaturalAlternative string                `json:"naturalAlternative"`
	NaturalRewrite     string                `json:"naturalRewrite"`
}

// Review analyses text and returns a GrammarReview. Model failures degrade
// to an error-free review with the text unchanged; Review never fails.
func (s *GrammarService) Review(ctx context.Context, text string) model.GrammarReview {
	var (
		candidates []string
		lastParsed *grammarPayload
	)

	call := func(ctx context.Context, prompt string) (model.GrammarReview, error) {
		raw, err := s.llm.GenerateText(ctx, gemini.GenerateRequest{
			Model:            s.modelName,
			Turns:            []gemini.Turn{{Role: "user", Text: prompt}},
			Temperature:      floatPtr(grammarTemperature),
			MaxOutputTokens:  grammarMaxTokens,
			ResponseMIMEType: "application/json",
		})
		if err != nil {
			return model.GrammarReview{}, err
		}
		var p grammarPayload
		if err := llmtext.ParseLooseJSON(raw, &p); err != nil {
			return model.GrammarReview{}, err
		}
		sanitizeGrammarPayload(&p)
		lastParsed = &p
		if p.CorrectedText != "" {
			candidates = append(candidates, p.CorrectedText)
		}
		return reviewFromPayload(p), nil
	}

	attempts := []fallback.Attempt[model.GrammarReview]{
		{Stage: fallback.StagePrimary, Run: func(ctx context.Context) (model.GrammarReview, error) {
			return call(ctx, prompts.GrammarPrimary(text))
		}},
		{Stage: fallback.StageRetryStrict, Run: func(ctx context.Context) (model.GrammarReview, error) {
			return call(ctx, prompts.GrammarRetry(text))
		}},
		{Stage: fallback.StageSalvage, Run: func(ctx context.Context) (model.GrammarReview, error) {
			// reuse the edit list of the last parseable attempt and apply
			// it locally instead of trusting the model's rewrite
			if lastParsed == nil || len(lastParsed.Edits) == 0 {
				return model.GrammarReview{}, fmt.Errorf("nothing to salvage")
			}
			corrected := llmtext.ApplyEdits(text, lastParsed.Edits)
			r := reviewFromPayload(*lastParsed)
			r.CorrectedText = corrected
			r.HasErrors = !llmtext.IsMinorSentenceDifference(text, corrected)
			return r, nil
		}},
	}

	accept := func(r model.GrammarReview) error {
		if r.HasErrors && len(r.Edits) == 0 && llmtext.IsMinorSentenceDifference(text, r.CorrectedText) {
			return fmt.Errorf("claims errors but carries no usable correction")
		}
		return nil
	}

	review, stage := fallback.Run(ctx, s.log, attempts, accept, func() model.GrammarReview {
		return model.GrammarReview{
			HasErrors:      false,
			CorrectedText:  text,
			Edits:          []model.Edit{},
			FeedbackPoints: []model.FeedbackPoint{},
		}
	})

	if stage != fallback.StageLocal {
		// reconcile every candidate rewrite seen across attempts, plus a
		// local application of the edit list, against the required edits
		candidates = append(candidates, llmtext.ApplyEdits(text, review.Edits))
		review.CorrectedText = llmtext.PickBestCorrectedText(text, candidates, review.Edits, review.FeedbackPoints)
		if llmtext.IsMinorSentenceDifference(text, review.CorrectedText) {
			review.HasErrors = false
		}
	}
	if stage != fallback.StagePrimary {
		s.log.Info().Str("stage", stage).Msg("grammar review produced by fallback stage")
	}
	return review
}

func sanitizeGrammarPayload(p *grammarPayload) {
	p.CorrectedText = strings.TrimSpace(p.CorrectedText)
	edits := p.Edits[:0]
	for _, e := range p.Edits {
		e.Wrong = strings.TrimSpace(e.Wrong)
		e.Right = strings.TrimSpace(e.Right)
		if e.Wrong == "" || e.Right == "" || strings.EqualFold(e.Wrong, e.Right) {
			continue
		}
		edits = append(edits, e)
	}
	p.Edits = edits

	points := p.FeedbackPoints[:0]
	for _, fp := range p.FeedbackPoints {
		fp.Part = strings.TrimSpace(fp.Part)
		fp.Fix = strings.TrimSpace(fp.Fix)
		if fp.Part == "" {
			continue
		}
		points = append(points, fp)
	}
	p.FeedbackPoints = points
}

func reviewFromPayload(p grammarPayload) model.GrammarReview {
	r := model.GrammarReview{
		HasErrors:          p.HasErrors,
		CorrectedText:      p.CorrectedText,
		Edits:              p.Edits,
		Feedback:           p.Feedback,
		FeedbackPoints:     p.FeedbackPoints,
		NaturalAlternative: strings.TrimSpace(p.NaturalAlternative),
		NaturalRewrite:     strings.TrimSpace(p.NaturalRewrite),
	}
	if r.Edits == nil {
		r.Edits = []model.Edit{}
	}
	if r.FeedbackPoints == nil {
		r.FeedbackPoints = []model.FeedbackPoint{}
	}
	return r
}
