package model

import (
	"time"
)

// EventType labels a generation lifecycle event on the feed.
type EventType string

const (
	EventTypeComplete  EventType = "complete"
	EventTypeCancelled EventType = "cancelled"
	EventTypeError     EventType = "error"
)

// GenerationEvent is published to the event feed when a generation reaches a
// terminal state.
type GenerationEvent struct {
	ID        string    `json:"id"`
	Mode      Mode      `json:"mode"`
	MessageID string    `json:"message_id"`
	Type      EventType `json:"type"`
	Reason    string    `json:"reason,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ChunkEvent is a streaming update carrying the cumulative text so far,
// never a delta, so consumers replace rather than append.
type ChunkEvent struct {
	MessageID string `json:"message_id"`
	Content   string `json:"content"`
}

// MessageCompleteEvent signals that the placeholder message reached a
// terminal state.
type MessageCompleteEvent struct {
	Message Message `json:"message"`
}

// ReplayCompleteEvent signals the end of timeline replay on the passive
// event stream.
type ReplayCompleteEvent struct {
	MessageCount int `json:"message_count"`
}

// ErrorEvent represents an error event on an SSE stream.
type ErrorEvent struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// HeartbeatEvent keeps passive SSE connections alive.
type HeartbeatEvent struct {
	Timestamp time.Time `json:"timestamp"`
}
