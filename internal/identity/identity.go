// Package identity tracks "who am I" per backend service: the local
// user's identity on each service, and the per-service capability flags
// the rest of the core needs (spec.md §9 Open Question 1). Centralizing
// this here avoids duplicating the per-service self/identities map that
// spec.md §3 describes informally as workspace-state fields.
package identity

import (
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"

	"github.com/mraspaud/kb-solaria/internal/model"
)

// foldCase is the shared case folder used for the @mention comparison.
// golang.org/x/text/cases handles Unicode case folding correctly for
// non-ASCII display names, unlike strings.ToLower/EqualFold for some
// scripts.
var foldCase = cases.Fold()

// Capabilities describes what a backend supports, resolved from config at
// startup (see package config). Services not present in the config get
// the zero value: no per-message read.
type Capabilities struct {
	// PerMessageRead is true for services (e.g. Slack) whose read state is
	// tracked continuously as the cursor advances, rather than cleared in
	// one shot on channel entry. See spec.md §4.G.
	PerMessageRead bool
}

// Identities owns the per-service local-user identity and capability
// table. The core itself is single-threaded cooperative (spec.md §5); the
// lock exists only so a transport goroutine can populate identity ahead
// of the next event loop tick without the caller needing to serialize.
type Identities struct {
	mu     sync.RWMutex
	selves map[string]model.User
	caps   map[string]Capabilities
}

// New creates an empty identity table.
func New() *Identities {
	return &Identities{
		selves: make(map[string]model.User),
		caps:   make(map[string]Capabilities),
	}
}

// SetSelf records the local user's identity on a service, from a
// `self_info` event (spec.md §6).
func (t *Identities) SetSelf(serviceID string, u model.User) {
	u.ServiceID = serviceID
	t.mu.Lock()
	defer t.mu.Unlock()
	t.selves[serviceID] = u
}

// Self returns the local user's identity on a service. ok is false if no
// self_info has been received for that service yet; callers must treat
// this as "identity absent" (spec.md §7): classification proceeds with
// self = nil, so the self guard and the @mention ego check cannot fire
// (a direct-message channel still yields EGO).
func (t *Identities) Self(serviceID string) (u model.User, ok bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	u, ok = t.selves[serviceID]
	return u, ok
}

// IsSelf reports whether userID is the local user on serviceID.
func (t *Identities) IsSelf(serviceID, userID string) bool {
	self, ok := t.Self(serviceID)
	return ok && self.ID == userID
}

// SetCapabilities installs the capability flags for a service, normally
// called once at startup from the loaded config.
func (t *Identities) SetCapabilities(serviceID string, c Capabilities) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.caps[serviceID] = c
}

// Capabilities returns the capability flags for a service, defaulting to
// the zero value (no per-message read) for unconfigured services.
func (t *Identities) Capabilities(serviceID string) Capabilities {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.caps[serviceID]
}

// All returns a copy of every known service's local-user identity, keyed
// by service id. Used to build a full snapshot view without exposing the
// live map (and its lock) to callers.
func (t *Identities) All() map[string]model.User {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make(map[string]model.User, len(t.selves))
	for k, v := range t.selves {
		out[k] = v
	}
	return out
}

// MentionsSelf reports whether content mentions self by "@<name>"
// (case-insensitive) or contains self.ID verbatim, per spec.md §4.E step 3.
// The "@<name>" match requires a word boundary right after the name, so
// "@ada" doesn't false-match inside "@adam".
func MentionsSelf(content string, self model.User) bool {
	if self.ID == "" && self.Name == "" {
		return false
	}
	if self.ID != "" && strings.Contains(content, self.ID) {
		return true
	}
	if self.Name == "" {
		return false
	}
	folded := foldCase.String(content)
	mention := foldCase.String("@" + self.Name)

	for start := 0; start <= len(folded); {
		rel := strings.Index(folded[start:], mention)
		if rel < 0 {
			return false
		}
		idx := start + rel
		end := idx + len(mention)
		if end >= len(folded) {
			return true
		}
		r, _ := utf8.DecodeRuneInString(folded[end:])
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return true
		}
		start = idx + 1
	}
	return false
}
