package model

import (
	"time"

	"github.com/google/uuid"
)

// Role represents the role of a message sender.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Mode identifies one of the independent conversation timelines. Each mode
// maps to a different backend model.
type Mode string

const (
	ModeStandard Mode = "standard"
	ModeFast     Mode = "fast"
	ModeThinking Mode = "thinking"
	ModeImage    Mode = "image"
)

// AllModes lists every mode in display order.
var AllModes = []Mode{ModeStandard, ModeFast, ModeThinking, ModeImage}

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	switch m {
	case ModeStandard, ModeFast, ModeThinking, ModeImage:
		return true
	}
	return false
}

// Attachment is a binary input carried as base64 text. It is owned by the
// message that references it and never shared.
type Attachment struct {
	Name     string `json:"name"`
	MimeType string `json:"mime_type"`
	Data     string `json:"data"` // base64
}

// Message is one entry in a mode's timeline.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`

	// Lifecycle
	Pending        bool   `json:"pending,omitempty"`
	IsImageRequest bool   `json:"is_image_request,omitempty"`
	Error          bool   `json:"error,omitempty"`
	ErrorDetail    string `json:"error_detail,omitempty"`

	// Inputs
	Attachments []Attachment `json:"attachments,omitempty"`

	// Output, present only on completed image-mode messages (data URI).
	ImageResult string `json:"image_result,omitempty"`
}

// Histories maps each mode to its ordered timeline.
type Histories map[Mode][]Message

// SendMessageRequest is the request to send a new message.
type SendMessageRequest struct {
	Text        string       `json:"text"`
	Mode        Mode         `json:"mode"`
	Attachments []Attachment `json:"attachments,omitempty"`
	AspectRatio string       `json:"aspect_ratio,omitempty"`
	Resolution  string       `json:"resolution,omitempty"`
}

// EnhancePromptRequest is the request to enhance a short prompt.
type EnhancePromptRequest struct {
	Input string `json:"input"`
}

// EnhancePromptResponse carries the rewritten prompt.
type EnhancePromptResponse struct {
	Prompt string `json:"prompt"`
}

// Welcome returns the seeded greeting message for a mode.
func Welcome(mode Mode) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      RoleAssistant,
		Content:   greetings[mode],
		Timestamp: time.Now(),
	}
}

// SeedHistories returns the default state: one welcome message per mode.
func SeedHistories() Histories {
	h := make(Histories, len(AllModes))
	for _, m := range AllModes {
		h[m] = []Message{Welcome(m)}
	}
	return h
}

var greetings = map[Mode]string{
	ModeStandard: "Yo! I'm Cool boy ☺️. I'm chill, intelligent, and I love a good joke. What's popping?",
	ModeFast:     "Zoom zoom! 🏎️ I'm Cool boy Lite. Fast answers only. Hit me!",
	ModeThinking: "Time to use the big brain. 🧠 I'm Cool boy Pro. Give me the complex stuff.",
	ModeImage:    "I'm the artist of the group 🎨. Describe a pic or upload one to edit!",
}

// ClearedGreeting is the single message a timeline resets to.
const ClearedGreeting = "History cleared! Fresh start. 🧹✨"
