package llm

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	genai "google.golang.org/genai"

	"github.com/nakirhussain8918-star/Cool-boy-chat/internal/model"
)

// Backend model identifiers per mode.
const (
	modelStandard  = "gemini-2.5-flash"
	modelFast      = "gemini-flash-lite-latest"
	modelThinking  = "gemini-3-pro-preview"
	modelImageGen  = "imagen-4.0-generate-001"
	modelImageEdit = "gemini-2.5-flash-image"

	// thinkingBudget is the internal reasoning budget requested for the
	// deep-reasoning mode.
	thinkingBudget = 2048
)

// fallbackEditInstruction replaces empty or trivial edit prompts.
const fallbackEditInstruction = "Apply a creative, high-quality artistic enhancement to this image. " +
	"Maintain the subject but improve style and lighting."

// forceImageSuffix steers the edit backend away from answering with text.
const forceImageSuffix = ". \n\nIMPORTANT: You MUST generate an image as the response. " +
	"Do not provide a text description or refusal. Output the result as an image file."

// GeminiClient implements Client against the Gemini API.
type GeminiClient struct {
	client *genai.Client
}

// NewGeminiClient creates a new Gemini client.
func NewGeminiClient(ctx context.Context, apiKey string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, errors.New("Gemini API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{client: client}, nil
}

func textModelFor(mode model.Mode) string {
	switch mode {
	case model.ModeFast:
		return modelFast
	case model.ModeThinking:
		return modelThinking
	default:
		return modelStandard
	}
}

// StreamText runs a streaming completion and returns the final text.
func (c *GeminiClient) StreamText(
	ctx context.Context,
	mode model.Mode,
	prompt string,
	attachments []model.Attachment,
	settings model.Settings,
	onChunk StreamFunc,
) (string, error) {
	persona := strings.TrimSpace(settings.PersonaInstruction)
	if persona == "" {
		persona = model.DefaultPersona
	}

	cfg := &genai.GenerateContentConfig{
		Temperature:       genai.Ptr(float32(settings.Temperature)),
		TopK:              genai.Ptr(float32(settings.TopK)),
		TopP:              genai.Ptr(float32(settings.TopP)),
		SystemInstruction: genai.NewContentFromText(persona, genai.RoleUser),
	}
	if mode == model.ModeThinking {
		cfg.ThinkingConfig = &genai.ThinkingConfig{
			ThinkingBudget: genai.Ptr(int32(thinkingBudget)),
		}
	}

	parts, err := buildParts(prompt, attachments)
	if err != nil {
		return "", err
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	var full strings.Builder
	for resp, err := range c.client.Models.GenerateContentStream(ctx, textModelFor(mode), contents, cfg) {
		// Cancellation takes priority over applying any further chunk.
		if ctx.Err() != nil {
			return full.String(), ErrAborted
		}
		if err != nil {
			return "", Classify(err)
		}
		if text := resp.Text(); text != "" {
			full.WriteString(text)
			if onChunk != nil {
				onChunk(full.String())
			}
		}
	}

	if ctx.Err() != nil {
		return full.String(), ErrAborted
	}
	return full.String(), nil
}

// GenerateImage creates or edits an image and returns a data URI.
func (c *GeminiClient) GenerateImage(
	ctx context.Context,
	prompt string,
	attachments []model.Attachment,
	aspectRatio, resolution string,
) (string, error) {
	if aspectRatio == "" {
		aspectRatio = "1:1"
	}
	if len(attachments) > 0 {
		return c.editImage(ctx, prompt, attachments)
	}
	return c.createImage(ctx, prompt, aspectRatio)
}

func (c *GeminiClient) editImage(ctx context.Context, prompt string, attachments []model.Attachment) (string, error) {
	instruction := strings.TrimSpace(prompt)
	if isTrivialEditPrompt(instruction) {
		instruction = fallbackEditInstruction
	}

	parts, err := buildParts(instruction+forceImageSuffix, attachments)
	if err != nil {
		return "", err
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	resp, err := c.client.Models.GenerateContent(ctx, modelImageEdit, contents, &genai.GenerateContentConfig{
		ResponseModalities: []string{"IMAGE"},
	})
	if err != nil {
		return "", Classify(err)
	}

	var refusal string
	if len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		for _, part := range resp.Candidates[0].Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				return "data:image/png;base64," + base64.StdEncoding.EncodeToString(part.InlineData.Data), nil
			}
			if part.Text != "" && refusal == "" {
				refusal = part.Text
			}
		}
	}

	// Text instead of image is a model refusal, not a transport failure.
	if refusal != "" {
		return "", &GenerationError{Code: CodeUnknown, Message: "model response: " + refusal}
	}
	return "", &GenerationError{
		Code:    CodeUnknown,
		Message: "no image generated from edit request. Try a specific instruction like 'Make it cartoon style'",
	}
}

func (c *GeminiClient) createImage(ctx context.Context, prompt, aspectRatio string) (string, error) {
	resp, err := c.client.Models.GenerateImages(ctx, modelImageGen, prompt, &genai.GenerateImagesConfig{
		NumberOfImages: 1,
		OutputMIMEType: "image/jpeg",
		AspectRatio:    aspectRatio,
	})
	if err != nil {
		return "", Classify(err)
	}

	if len(resp.GeneratedImages) == 0 || resp.GeneratedImages[0].Image == nil ||
		len(resp.GeneratedImages[0].Image.ImageBytes) == 0 {
		return "", &GenerationError{Code: CodeUnknown, Message: "no image generated"}
	}

	return "data:image/jpeg;base64," +
		base64.StdEncoding.EncodeToString(resp.GeneratedImages[0].Image.ImageBytes), nil
}

// EnhancePrompt rewrites a short description into a detailed image prompt.
func (c *GeminiClient) EnhancePrompt(ctx context.Context, input string) string {
	task := "Generate a creative, highly detailed, and visually striking prompt for an AI image generator. " +
		"Describe a specific scene, object, or character with attention to artistic style and lighting. " +
		"Keep it under 3 sentences."
	if trimmed := strings.TrimSpace(input); trimmed != "" {
		task = fmt.Sprintf("You are an expert prompt engineer. Rewrite this concise description into a "+
			"detailed, high-quality prompt for an AI image generator. Input: %q. "+
			"Keep it under 3 sentences. Direct description only.", trimmed)
	}

	resp, err := c.client.Models.GenerateContent(ctx, modelStandard, genai.Text(task), nil)
	if err != nil || resp == nil {
		return input
	}
	if out := strings.TrimSpace(resp.Text()); out != "" {
		return out
	}
	return input
}

// isTrivialEditPrompt reports whether an edit prompt carries no usable
// instruction ("edit", "fix", etc. or shorter than 4 characters).
func isTrivialEditPrompt(prompt string) bool {
	if len(prompt) < 4 {
		return true
	}
	switch strings.ToLower(prompt) {
	case "edit", "fix", "improve", "change":
		return true
	}
	return false
}

// buildParts assembles the ordered request parts: attachment blobs first,
// then the single text part.
func buildParts(text string, attachments []model.Attachment) ([]*genai.Part, error) {
	parts := make([]*genai.Part, 0, len(attachments)+1)
	for _, att := range attachments {
		data, err := base64.StdEncoding.DecodeString(att.Data)
		if err != nil {
			return nil, fmt.Errorf("failed to decode attachment %q: %w", att.Name, err)
		}
		parts = append(parts, genai.NewPartFromBytes(data, att.MimeType))
	}
	parts = append(parts, genai.NewPartFromText(text))
	return parts, nil
}
