package middleware

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/nakirhussain8918-star/Cool-boy-chat/internal/model"
)

// aspectRatios are the ratios the image models accept.
var aspectRatios = map[string]bool{
	"1:1":  true,
	"16:9": true,
	"9:16": true,
	"4:3":  true,
	"3:4":  true,
}

// ValidateMode validates a conversation mode.
func ValidateMode(mode model.Mode) error {
	if !mode.Valid() {
		return fmt.Errorf("unknown mode %q", mode)
	}
	return nil
}

// ValidateMessageContent validates message text. Empty text is allowed only
// when the request carries attachments.
func ValidateMessageContent(content string, hasAttachments bool) error {
	if len(content) == 0 && !hasAttachments {
		return errors.New("content cannot be empty")
	}
	if len(content) > 100000 { // ~100KB limit
		return errors.New("content exceeds maximum length")
	}
	if !utf8.ValidString(content) {
		return errors.New("content must be valid UTF-8")
	}
	return nil
}

// ValidateMessageID validates a message ID.
func ValidateMessageID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return errors.New("invalid message ID format")
	}
	return nil
}

// ValidateAspectRatio validates an image aspect ratio. Empty means default.
func ValidateAspectRatio(ratio string) error {
	if ratio == "" {
		return nil
	}
	if !aspectRatios[ratio] {
		return fmt.Errorf("unsupported aspect ratio %q", ratio)
	}
	return nil
}
