// Package llm provides the remote generation client for the Gemini API.
package llm

import (
	"context"

	"github.com/nakirhussain8918-star/Cool-boy-chat/internal/model"
)

// StreamFunc is called for each streamed chunk with the cumulative text so
// far, not the delta, so consumers replace rather than append.
type StreamFunc func(cumulative string)

// Client is the interface for the remote generation capability. All
// operations are stateless; no connection is retained between calls.
type Client interface {
	// StreamText runs a streaming text completion for the given mode and
	// returns the final accumulated text. Cancellation of ctx is checked
	// before each chunk is applied and surfaces as ErrAborted.
	StreamText(ctx context.Context, mode model.Mode, prompt string, attachments []model.Attachment, settings model.Settings, onChunk StreamFunc) (string, error)

	// GenerateImage creates an image (no attachments) or edits the attached
	// images (attachments present) and returns the result as a data URI.
	GenerateImage(ctx context.Context, prompt string, attachments []model.Attachment, aspectRatio, resolution string) (string, error)

	// EnhancePrompt rewrites a short description into a richer image prompt,
	// or fabricates a novel one when input is empty. It never fails: on any
	// error the original input is returned verbatim.
	EnhancePrompt(ctx context.Context, input string) string
}
