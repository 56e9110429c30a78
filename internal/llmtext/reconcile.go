package llmtext

import (
	"strings"

	"github.com/aifriend/aifriend/internal/model"
)

// MaxAlternatives caps how many native-phrasing suggestions survive
// normalization.
const MaxAlternatives = 3

const (
	missedEditPenalty    = 10
	missedPointPenalty   = 10
	noopCandidatePenalty = 5
)

// PickBestCorrectedText selects, from candidates, the rewrite that best
// incorporates the required edits and feedback points. Candidates are
// deduplicated by normalized form; each is penalised for every edit whose
// wrong text survives (or whose right text is missing) and for being a
// no-op rewrite of the source. The lowest-scoring candidate wins, with ties
// broken by submission order. With no usable candidates the source text is
// returned unchanged.
func PickBestCorrectedText(source string, candidates []string, edits []model.Edit, points []model.FeedbackPoint) string {
	best := source
	bestScore := -1
	seen := make(map[string]bool, len(candidates))

	for _, cand := range candidates {
		cand = strings.TrimSpace(cand)
		if cand == "" {
			continue
		}
		norm := NormalizeSentence(cand)
		if seen[norm] {
			continue
		}
		seen[norm] = true

		score := scoreCandidate(source, cand, edits, points)
		if bestScore < 0 || score < bestScore {
			best = cand
			bestScore = score
		}
	}
	return best
}

// scoreCandidate totals penalties for a candidate rewrite. Lower is better;
// zero means every applicable correction was incorporated.
func scoreCandidate(source, candidate string, edits []model.Edit, points []model.FeedbackPoint) int {
	score := 0
	for _, e := range edits {
		if !ContainsPhrase(source, e.Wrong) {
			// the model flagged text that is not actually present; the
			// candidate cannot be blamed for it
			continue
		}
		if ContainsPhrase(candidate, e.Wrong) {
			score += missedEditPenalty
		} else if strings.TrimSpace(e.Right) != "" && !ContainsPhrase(candidate, e.Right) {
			score += missedEditPenalty
		}
	}
	for _, p := range points {
		if !ContainsPhrase(source, p.Part) {
			continue
		}
		if ContainsPhrase(candidate, p.Part) {
			score += missedPointPenalty
		} else if strings.TrimSpace(p.Fix) != "" && !ContainsPhrase(candidate, p.Fix) {
			score += missedPointPenalty
		}
	}
	if IsMinorSentenceDifference(source, candidate) {
		score += noopCandidatePenalty
	}
	return score
}

// ApplyEdits rewrites source by substituting each edit's right text for its
// wrong text, left to right. Edits whose wrong text is absent are skipped,
// as are edits that would overwrite text introduced by an earlier
// substitution. The result is a deterministic local correction used when no
// model candidate is usable.
func ApplyEdits(source string, edits []model.Edit) string {
	text := source
	var applied [][2]int // byte ranges of substituted right texts

	for _, e := range edits {
		wrong := strings.TrimSpace(e.Wrong)
		right := strings.TrimSpace(e.Right)
		if wrong == "" || strings.EqualFold(wrong, right) {
			continue
		}
		idx := findPhrase(text, wrong, applied)
		if idx < 0 {
			continue
		}
		text = text[:idx] + right + text[idx+len(wrong):]
		delta := len(right) - len(wrong)
		for i := range applied {
			if applied[i][0] >= idx {
				applied[i][0] += delta
				applied[i][1] += delta
			}
		}
		applied = append(applied, [2]int{idx, idx + len(right)})
	}
	return text
}

// findPhrase locates the first standalone, case-insensitive occurrence of
// needle in text that does not overlap any protected range. Returns -1 when
// no such occurrence exists.
func findPhrase(text, needle string, protected [][2]int) int {
	h := strings.ToLower(text)
	n := strings.ToLower(needle)
	for from := 0; ; {
		i := strings.Index(h[from:], n)
		if i < 0 {
			return -1
		}
		i += from
		if phraseBoundary(h, i, i+len(n)) && !overlaps(i, i+len(n), protected) {
			return i
		}
		from = i + 1
	}
}

func overlaps(start, end int, ranges [][2]int) bool {
	for _, r := range ranges {
		if start < r[1] && end > r[0] {
			return true
		}
	}
	return false
}

// NormalizeAlternatives cleans a model-produced list of native phrasings:
// blanks and echoes of the source (modulo case and punctuation) are
// dropped, duplicates are collapsed case-insensitively, and the result is
// capped at MaxAlternatives, preserving order.
func NormalizeAlternatives(source string, alternatives []string) []string {
	out := make([]string, 0, MaxAlternatives)
	seen := make(map[string]bool, len(alternatives))
	for _, alt := range alternatives {
		alt = strings.TrimSpace(alt)
		if alt == "" || IsMinorSentenceDifference(source, alt) {
			continue
		}
		norm := NormalizeSentence(alt)
		if seen[norm] {
			continue
		}
		seen[norm] = true
		out = append(out, alt)
		if len(out) == MaxAlternatives {
			break
		}
	}
	return out
}
