package store

import (
	"github.com/nakirhussain8918-star/Cool-boy-chat/internal/model"
)

// Tier is one rung of the degradation ladder applied on storage overflow.
// Recency is preserved before fidelity, fidelity before existence.
type Tier int

const (
	// TierFull persists the histories untouched.
	TierFull Tier = iota
	// TierTruncate keeps only the most recent messages per mode.
	TierTruncate
	// TierStrip additionally removes binary payloads from the truncated set.
	TierStrip
)

// Tiers lists the ladder in the order it is tried.
var Tiers = []Tier{TierFull, TierTruncate, TierStrip}

// keepRecent is how many trailing messages each mode keeps under truncation.
const keepRecent = 5

func (t Tier) String() string {
	switch t {
	case TierFull:
		return "full"
	case TierTruncate:
		return "truncate"
	case TierStrip:
		return "strip"
	default:
		return "unknown"
	}
}

// Degrade returns a copy of histories reduced according to tier. The input
// is never mutated.
func Degrade(tier Tier, histories model.Histories) model.Histories {
	out := make(model.Histories, len(histories))
	for mode, msgs := range histories {
		switch tier {
		case TierTruncate:
			out[mode] = copyTail(msgs)
		case TierStrip:
			tail := copyTail(msgs)
			for i := range tail {
				stripBinaries(&tail[i])
			}
			out[mode] = tail
		default:
			out[mode] = append([]model.Message(nil), msgs...)
		}
	}
	return out
}

func copyTail(msgs []model.Message) []model.Message {
	if len(msgs) > keepRecent {
		msgs = msgs[len(msgs)-keepRecent:]
	}
	return append([]model.Message(nil), msgs...)
}

// stripBinaries blanks attachment payloads (keeping name and mime type) and
// drops generated image data entirely.
func stripBinaries(msg *model.Message) {
	msg.ImageResult = ""
	if len(msg.Attachments) == 0 {
		return
	}
	stripped := make([]model.Attachment, len(msg.Attachments))
	for i, att := range msg.Attachments {
		stripped[i] = model.Attachment{Name: att.Name, MimeType: att.MimeType}
	}
	msg.Attachments = stripped
}
