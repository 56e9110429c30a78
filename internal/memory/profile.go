// Package memory maintains the long-term memory profile: categorized facts
// about the user accumulated across chat sessions.
package memory

import (
	"strings"

	"github.com/aifriend/aifriend/internal/llmtext"
	"github.com/aifriend/aifriend/internal/model"
)

// MaxItemsPerField caps each profile category. Older facts win over newer
// ones when the cap is hit, since they have survived more summarization
// rounds.
const MaxItemsPerField = 10

// categoryKeywords drive reclassification of untyped "notes" bullets. A
// note whose lowercase form contains any keyword moves to that category;
// categories are checked in this order and the first hit wins.
var categoryKeywords = []struct {
	category string
	words    []string
}{
	{"goals", []string{"wants to", "goal", "hopes to", "plans to", "dream", "aiming"}},
	{"projects", []string{"working on", "project", "building", "studying for", "preparing for"}},
	{"hobbies", []string{"hobby", "enjoys", "plays ", "likes to", "collects", "for fun"}},
	{"routine", []string{"every day", "every morning", "every week", "usually", "daily", "on weekends", "routine"}},
	{"preferences", []string{"prefers", "favorite", "favourite", "loves", "hates", "dislikes", "can't stand"}},
	{"background", []string{"grew up", "was born", "lives in", "works as", "works at", "studied", "from "}},
	{"traits", []string{"tends to be", "personality", "shy", "outgoing", "introvert", "extrovert"}},
}

// fields returns pointers to each categorized list, notes last.
func fields(p *model.MemoryProfile) map[string]*[]string {
	return map[string]*[]string{
		"hobbies":     &p.Hobbies,
		"goals":       &p.Goals,
		"projects":    &p.Projects,
		"traits":      &p.Traits,
		"routine":     &p.Routine,
		"preferences": &p.Preferences,
		"background":  &p.Background,
		"notes":       &p.Notes,
	}
}

// Reclassify moves free-text notes into typed categories when a keyword
// heuristic identifies one, compensating for model output that dumps every
// fact into notes.
func Reclassify(p model.MemoryProfile) model.MemoryProfile {
	out := p
	out.Notes = nil
	fs := fields(&out)

	for _, note := range p.Notes {
		trimmed := strings.TrimSpace(note)
		if trimmed == "" {
			continue
		}
		category := classifyNote(trimmed)
		target := fs[category]
		*target = append(*target, trimmed)
	}
	return out
}

func classifyNote(note string) string {
	lower := strings.ToLower(note)
	for _, c := range categoryKeywords {
		for _, w := range c.words {
			if strings.Contains(lower, w) {
				return c.category
			}
		}
	}
	return "notes"
}

// Merge combines the prior profile with a freshly summarized one. Each
// field is deduplicated case-insensitively (prior facts keep their original
// wording) and capped at MaxItemsPerField.
func Merge(prior, incoming model.MemoryProfile) model.MemoryProfile {
	var out model.MemoryProfile
	outF := fields(&out)
	priorF := fields(&prior)
	incomingF := fields(&incoming)

	for name, target := range outF {
		*target = mergeField(*priorF[name], *incomingF[name])
	}
	return out
}

func mergeField(prior, incoming []string) []string {
	out := make([]string, 0, len(prior)+len(incoming))
	seen := make(map[string]bool, len(prior)+len(incoming))
	for _, list := range [][]string{prior, incoming} {
		for _, item := range list {
			item = strings.TrimSpace(item)
			if item == "" {
				continue
			}
			key := llmtext.NormalizeSentence(item)
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, item)
			if len(out) == MaxItemsPerField {
				return out
			}
		}
	}
	return out
}

// Equal reports deep value equality of two profiles. Nil and empty lists
// compare equal.
func Equal(a, b model.MemoryProfile) bool {
	af := fields(&a)
	bf := fields(&b)
	for name, av := range af {
		bv := *bf[name]
		if len(*av) != len(bv) {
			return false
		}
		for i, item := range *av {
			if item != bv[i] {
				return false
			}
		}
	}
	return true
}
