// Package reactions implements the emoji canonicalization function
// spec.md §9 requires ("Emoji normalization") and the react/unreact
// command named in spec.md §6 but left without an owning component.
//
// Canonicalization folds Unicode emoji with or without the U+FE0F
// variation selector, Slack-style shortcodes ("+1", "thumbsup"), and
// colon-wrapped forms (":thumbsup:") to one canonical id, so the reaction
// store never creates two buckets for the same emoji.
package reactions

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/mraspaud/kb-solaria/internal/model"
)

// variationSelector16 is U+FE0F, the emoji presentation selector some
// clients append and others omit.
const variationSelector16 = "️"

// shortcodeAliases maps known Slack shortcodes to a canonical id. Real
// deployments load a much larger emoji asset table (explicitly out of
// scope per spec.md §1); this is the minimal alias set needed so the
// reaction store doesn't fragment the common cases.
var shortcodeAliases = map[string]string{
	"+1":       "thumbsup",
	"thumbsup": "thumbsup",
	"-1":       "thumbsdown",
	"thumbsdown": "thumbsdown",
	"heart":    "heart",
	"smile":    "smile",
	"tada":     "tada",
	"eyes":     "eyes",
	"rocket":   "rocket",
}

// Canonicalize maps an arbitrary emoji key (raw Unicode, with or without
// variation selector, a shortcode, or a colon-wrapped shortcode) to its
// canonical id.
func Canonicalize(key string) string {
	key = strings.TrimSpace(key)
	key = strings.TrimPrefix(key, ":")
	key = strings.TrimSuffix(key, ":")

	if alias, ok := shortcodeAliases[key]; ok {
		return alias
	}

	// Unicode path: normalize to NFC and strip the variation selector so
	// "👍️" (with VS16) and "👍" (without) land on the same key.
	normalized := norm.NFC.String(key)
	normalized = strings.ReplaceAll(normalized, variationSelector16, "")
	return normalized
}

// Toggle applies an add/remove reaction command to a message's reaction
// map, canonicalizing the key first. It mutates m.Reactions in place and
// is idempotent: adding twice or removing an absent reaction is a no-op.
func Toggle(m *model.Message, rawKey, userID string, add bool) {
	key := Canonicalize(rawKey)
	if m.Reactions == nil {
		if !add {
			return
		}
		m.Reactions = make(model.Reactions)
	}

	users := m.Reactions[key]
	if add {
		for _, u := range users {
			if u == userID {
				return // already reacted
			}
		}
		m.Reactions[key] = append(users, userID)
		return
	}

	for i, u := range users {
		if u == userID {
			m.Reactions[key] = append(users[:i], users[i+1:]...)
			if len(m.Reactions[key]) == 0 {
				delete(m.Reactions, key)
			}
			return
		}
	}
}
