// Package fallback runs a tiered sequence of model attempts with a
// guaranteed local terminal stage.
//
// Every language feature issues a primary prompt and, when the response
// fails to parse or is judged weak, descends through progressively
// stricter or simpler retry prompts. The terminal stage synthesizes a
// deterministic non-model response, so a feature never errors outright for
// a malformed upstream reply. Attempts are issued strictly one after
// another, never concurrently.
package fallback

import (
	"context"

	"github.com/rs/zerolog"
)

// Stage names, in the only order stages may run. Features may omit stages
// but never reorder them.
const (
	StagePrimary        = "primary"
	StageRetryStrict    = "retry_strict"
	StageRetryPlaintext = "retry_plaintext"
	StageSalvage        = "salvage"
	StageLocal          = "local"
)

// Attempt is one stage of a feature's fallback ladder. Run returns the
// parsed result or an error (upstream failure, unparseable output).
type Attempt[T any] struct {
	Stage string
	Run   func(ctx context.Context) (T, error)
}

// Run executes attempts in order until one produces a result that passes
// accept, then returns that result and the stage that produced it. A nil
// accept treats every parsed result as acceptable. When all attempts fail,
// or the context is cancelled, the local synthesis is returned under
// StageLocal.
func Run[T any](ctx context.Context, log zerolog.Logger, attempts []Attempt[T], accept func(T) error, local func() T) (T, string) {
	for _, a := range attempts {
		if ctx.Err() != nil {
			break
		}
		v, err := a.Run(ctx)
		if err != nil {
			log.Debug().Err(err).Str("stage", a.Stage).Msg("fallback stage failed")
			continue
		}
		if accept != nil {
			if err := accept(v); err != nil {
				log.Debug().Err(err).Str("stage", a.Stage).Msg("fallback stage produced weak result")
				continue
			}
		}
		return v, a.Stage
	}
	return local(), StageLocal
}
