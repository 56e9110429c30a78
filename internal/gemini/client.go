// Package gemini is a thin client for the Google generative-language REST
// API, covering text generation and speech synthesis.
package gemini

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

const (
	defaultTimeout = 60 * time.Second
	maxRetries     = 2
)

// defaultSafetySettings relax the blocking thresholds so casual learner
// conversation is not refused.
var defaultSafetySettings = []apiSafetySetting{
	{Category: "HARM_CATEGORY_HARASSMENT", Threshold: "BLOCK_ONLY_HIGH"},
	{Category: "HARM_CATEGORY_HATE_SPEECH", Threshold: "BLOCK_ONLY_HIGH"},
	{Category: "HARM_CATEGORY_SEXUALLY_EXPLICIT", Threshold: "BLOCK_ONLY_HIGH"},
	{Category: "HARM_CATEGORY_DANGEROUS_CONTENT", Threshold: "BLOCK_ONLY_HIGH"},
}

// Client calls the generative-language API. It is safe for concurrent use.
type Client struct {
	http   *resty.Client
	apiKey string
	log    zerolog.Logger
}

// New creates a Client against baseURL. The key may be empty; calls then
// fail with ErrMissingAPIKey so handlers can return a configuration error.
func New(baseURL, apiKey string, log zerolog.Logger) *Client {
	c := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json").
		SetTimeout(defaultTimeout)

	return &Client{http: c, apiKey: apiKey, log: log}
}

// GenerateText sends one generateContent call and returns the text of the
// first candidate. Transient upstream failures (429, 5xx) are retried with
// exponential backoff before the error is returned.
func (c *Client) GenerateText(ctx context.Context, req GenerateRequest) (string, error) {
	if c.apiKey == "" {
		return "", ErrMissingAPIKey
	}

	body := apiRequest{
		Contents:         make([]apiContent, 0, len(req.Turns)),
		SafetySettings:   defaultSafetySettings,
		GenerationConfig: &generationConfig{},
	}
	for _, t := range req.Turns {
		body.Contents = append(body.Contents, apiContent{Role: t.Role, Parts: []apiPart{{Text: t.Text}}})
	}
	if req.System != "" {
		body.SystemInstruction = &apiContent{Parts: []apiPart{{Text: req.System}}}
	}
	body.GenerationConfig.Temperature = req.Temperature
	body.GenerationConfig.MaxOutputTokens = req.MaxOutputTokens
	body.GenerationConfig.ResponseMimeType = req.ResponseMIMEType

	resp, err := c.generate(ctx, req.Model, &body)
	if err != nil {
		return "", err
	}

	for _, cand := range resp.Candidates {
		for _, part := range cand.Content.Parts {
			if part.Text != "" {
				return part.Text, nil
			}
		}
	}
	return "", fmt.Errorf("gemini: response carried no text candidate")
}

// GenerateSpeech synthesizes text with the given speech model and voice and
// returns raw 16-bit PCM at 24 kHz.
func (c *Client) GenerateSpeech(ctx context.Context, model, voice, text string) ([]byte, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	body := apiRequest{
		Contents: []apiContent{{Role: "user", Parts: []apiPart{{Text: text}}}},
		GenerationConfig: &generationConfig{
			ResponseModalities: []string{"AUDIO"},
			SpeechConfig: &speechConfig{
				VoiceConfig: voiceConfig{PrebuiltVoiceConfig: prebuiltVoiceConfig{VoiceName: voice}},
			},
		},
	}

	resp, err := c.generate(ctx, model, &body)
	if err != nil {
		return nil, err
	}

	for _, cand := range resp.Candidates {
		for _, part := range cand.Content.Parts {
			if part.InlineData != nil && part.InlineData.Data != "" {
				pcm, err := base64.StdEncoding.DecodeString(part.InlineData.Data)
				if err != nil {
					return nil, fmt.Errorf("gemini: decode audio payload: %w", err)
				}
				return pcm, nil
			}
		}
	}
	return nil, fmt.Errorf("gemini: response carried no audio candidate")
}

func (c *Client) generate(ctx context.Context, model string, body *apiRequest) (*apiResponse, error) {
	var out apiResponse

	op := func() error {
		resp, err := c.http.R().
			SetContext(ctx).
			SetQueryParam("key", c.apiKey).
			SetBody(body).
			Post(fmt.Sprintf("/v1beta/models/%s:generateContent", model))
		if err != nil {
			return fmt.Errorf("gemini request: %w", err)
		}

		if resp.StatusCode() != http.StatusOK {
			ue := &UpstreamError{StatusCode: resp.StatusCode()}
			var envelope struct {
				Error *apiError `json:"error"`
			}
			if jsonErr := json.Unmarshal(resp.Body(), &envelope); jsonErr == nil && envelope.Error != nil {
				ue.Status = envelope.Error.Status
				ue.Message = envelope.Error.Message
			} else {
				ue.Message = resp.String()
			}
			if ue.Temporary() {
				return ue
			}
			return backoff.Permanent(ue)
		}

		out = apiResponse{}
		if err := json.Unmarshal(resp.Body(), &out); err != nil {
			return backoff.Permanent(fmt.Errorf("gemini: decode response: %w", err))
		}
		return nil
	}

	bo := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxRetries), ctx)
	if err := backoff.Retry(op, bo); err != nil {
		c.log.Warn().Err(err).Str("model", model).Msg("gemini call failed")
		return nil, err
	}
	return &out, nil
}
