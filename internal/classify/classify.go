// Package classify implements the bucket classifier (spec.md §4.E): a
// pure function from (message, channel, self, participated threads,
// thread-read-at) to one of four attention buckets. It performs no I/O
// and reads no clock other than the timestamp fields already on its
// inputs, so it is referentially transparent (spec.md §8 invariant 4).
package classify

import (
	"github.com/mraspaud/kb-solaria/internal/identity"
	"github.com/mraspaud/kb-solaria/internal/model"
)

// Input bundles the classifier's inputs for one decision.
type Input struct {
	Message      *model.Message
	Channel      *model.Channel
	Self         *model.User // nil if identity absent (spec.md §7)
	Participated map[string]bool // participatedThreads, by thread id
	ThreadReadAt int64            // seconds; 0 if thread was never opened
}

// Classify runs the eight-step decision ladder from spec.md §4.E and
// returns the resulting bucket. First match wins.
func Classify(in Input) model.Bucket {
	msg, ch := in.Message, in.Channel

	// 1. Self guard.
	if in.Self != nil && msg.Author.ID == in.Self.ID {
		return model.BucketNoise
	}

	// 2. History guard (2000ms skew tolerance baked into model.AfterRead).
	if msg.ThreadID != "" {
		if !model.AfterRead(msg.Timestamp, in.ThreadReadAt) {
			return model.BucketNoise
		}
	} else {
		if !model.AfterRead(msg.Timestamp, ch.LastReadAt) {
			return model.BucketNoise
		}
	}

	// 3. Ego check.
	if in.Self != nil && identity.MentionsSelf(msg.Content, *in.Self) {
		return model.BucketEgo
	}

	// 4. Context check.
	if msg.ThreadID != "" && in.Participated != nil && in.Participated[msg.ThreadID] {
		return model.BucketContext
	}

	// 5. Direct DM.
	if ch.Category == model.CategoryDirect {
		return model.BucketEgo
	}

	// 6. Group DM.
	if ch.Category == model.CategoryGroup {
		return model.BucketSignal
	}

	// 7. Starred channel.
	if ch.Starred {
		if msg.ThreadID != "" {
			// Step 4 didn't fire (we'd have returned already), so a
			// starred channel's thread reply that isn't in a
			// participated thread is noise.
			return model.BucketNoise
		}
		return model.BucketSignal
	}

	// 8. Default.
	return model.BucketNoise
}
