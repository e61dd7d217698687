// Package service provides the conversation state machine.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nakirhussain8918-star/Cool-boy-chat/internal/events"
	"github.com/nakirhussain8918-star/Cool-boy-chat/internal/llm"
	"github.com/nakirhussain8918-star/Cool-boy-chat/internal/model"
	"github.com/nakirhussain8918-star/Cool-boy-chat/internal/store"
	"github.com/nakirhussain8918-star/Cool-boy-chat/pkg/logger"
	"github.com/nakirhussain8918-star/Cool-boy-chat/pkg/metrics"
)

// Terminal copy for cancelled generations.
const (
	stoppedSuffix  = " (Stopped)"
	stoppedMessage = "Generation stopped."
)

// maxPromptHistory caps the prompt recall list.
const maxPromptHistory = 50

// errorCopy maps taxonomy codes to the user-facing message shown in place
// of the pending placeholder.
var errorCopy = map[llm.Code]string{
	llm.CodeInvalidCredential: "🔑 Invalid API Key. Please check your key in the settings or environment.",
	llm.CodeRateLimited:       "⏳ Whoa, slow down! You hit the rate limit. Give me a minute to cool down.",
	llm.CodeOverloaded:        "😵 I'm a bit overwhelmed right now! Too many fans. Try again in a few seconds.",
	llm.CodeNotFound:          "🚫 That specific model is taking a nap (Not Found). Try switching to a different mode.",
	llm.CodeSafety:            "🛡️ Safety filters blocked this request. Try rephrasing your prompt to be more PG.",
}

const genericErrorCopy = "My bad, something went wrong. Try again?"

// ChunkFunc receives streaming updates with the cumulative text so far.
type ChunkFunc func(event model.ChunkEvent)

// StreamListener observes a dispatch as it progresses. Callbacks fire on
// the dispatching goroutine; nil fields are skipped.
type StreamListener struct {
	// OnUserMessage fires once the user message has been appended, before
	// any generation output is produced.
	OnUserMessage func(msg model.Message)
	// OnChunk fires for each streamed update applied to the placeholder.
	OnChunk ChunkFunc
}

// ChatService owns the per-mode timelines, the process-wide settings, the
// prompt recall list and the single global in-flight generation slot. All
// timeline mutation happens here; the generation client only returns values
// and invokes callbacks.
type ChatService struct {
	mu        sync.Mutex
	histories model.Histories
	settings  model.Settings
	prompts   []string

	inflight inflight

	llmClient llm.Client
	store     *store.HistoryStore
	saver     *store.Debouncer
	publisher events.Publisher
	logger    *logger.Logger
}

// NewChatService creates the state machine, loading persisted state.
func NewChatService(
	llmClient llm.Client,
	historyStore *store.HistoryStore,
	publisher events.Publisher,
	saveDebounce time.Duration,
	log *logger.Logger,
) *ChatService {
	s := &ChatService{
		histories: historyStore.LoadHistories(),
		settings:  historyStore.LoadSettings(),
		prompts:   historyStore.LoadPrompts(),
		llmClient: llmClient,
		store:     historyStore,
		publisher: publisher,
		logger:    log,
	}
	s.saver = store.NewDebouncer(saveDebounce, func(h model.Histories) {
		if err := historyStore.SaveHistories(h); err != nil {
			log.Error("history snapshot failed", zap.Error(err))
		}
	})
	metrics.PromptHistorySize.Set(float64(len(s.prompts)))
	return s
}

// SendMessage dispatches a generation for mode. Any generation already in
// flight, in any mode, is cancelled first; the in-flight slot is global.
// It blocks until the generation reaches a terminal state and returns the
// appended user message and the final assistant message.
func (s *ChatService) SendMessage(ctx context.Context, req *model.SendMessageRequest, listener *StreamListener) (*model.Message, *model.Message, error) {
	if !req.Mode.Valid() {
		return nil, nil, fmt.Errorf("unknown mode %q", req.Mode)
	}

	// Cancel-before-supersede: the prior token is cancelled before this
	// dispatch touches any timeline.
	token := s.inflight.begin(ctx)
	defer s.inflight.release(token)

	s.recordPrompt(req.Text)

	now := time.Now()
	userMsg := model.Message{
		ID:          uuid.NewString(),
		Role:        model.RoleUser,
		Content:     req.Text,
		Timestamp:   now,
		Attachments: req.Attachments,
	}
	placeholder := model.Message{
		ID:             uuid.NewString(),
		Role:           model.RoleAssistant,
		Timestamp:      now,
		Pending:        true,
		IsImageRequest: req.Mode == model.ModeImage,
	}

	s.mu.Lock()
	s.resolveStalePending(req.Mode)
	s.histories[req.Mode] = append(s.histories[req.Mode], userMsg, placeholder)
	s.scheduleSaveLocked()
	s.mu.Unlock()

	// The user message is surfaced before any generation output so stream
	// consumers see it first.
	var onChunk ChunkFunc
	if listener != nil {
		if listener.OnUserMessage != nil {
			listener.OnUserMessage(userMsg)
		}
		onChunk = listener.OnChunk
	}

	start := time.Now()
	var genErr error
	if req.Mode == model.ModeImage {
		genErr = s.runImage(token.ctx, req, placeholder.ID)
	} else {
		genErr = s.runText(token.ctx, req, placeholder.ID, onChunk)
	}

	status := s.finalize(req.Mode, placeholder.ID, genErr)
	metrics.RecordGeneration(string(req.Mode), status, time.Since(start).Seconds())
	s.publishTerminal(req.Mode, placeholder.ID, status, genErr)

	s.mu.Lock()
	final, _ := s.findLocked(req.Mode, placeholder.ID)
	s.scheduleSaveLocked()
	s.mu.Unlock()

	user := userMsg
	return &user, final, nil
}

func (s *ChatService) runText(ctx context.Context, req *model.SendMessageRequest, placeholderID string, onChunk ChunkFunc) error {
	s.mu.Lock()
	settings := s.settings
	s.mu.Unlock()

	_, err := s.llmClient.StreamText(ctx, req.Mode, req.Text, req.Attachments, settings, func(cumulative string) {
		// A chunk that raced a supersede arrives after the placeholder was
		// resolved; it must not clobber the terminal content.
		applied := false
		s.updateMessage(req.Mode, placeholderID, func(msg *model.Message) {
			if !msg.Pending {
				return
			}
			msg.Content = cumulative
			applied = true
		})
		if !applied {
			return
		}
		metrics.StreamChunksTotal.WithLabelValues(string(req.Mode)).Inc()
		if onChunk != nil {
			onChunk(model.ChunkEvent{MessageID: placeholderID, Content: cumulative})
		}
	})
	return err
}

func (s *ChatService) runImage(ctx context.Context, req *model.SendMessageRequest, placeholderID string) error {
	result, err := s.llmClient.GenerateImage(ctx, req.Text, req.Attachments, req.AspectRatio, req.Resolution)
	if err != nil {
		return err
	}
	// The result is discarded if cancellation raced the response.
	if ctx.Err() != nil {
		return llm.ErrAborted
	}

	s.updateMessage(req.Mode, placeholderID, func(msg *model.Message) {
		msg.Content = imageCaption(req.Text, len(req.Attachments) > 0)
		msg.ImageResult = result
	})
	return nil
}

// finalize applies the terminal transition to the placeholder and returns
// the terminal status label.
func (s *ChatService) finalize(mode model.Mode, placeholderID string, genErr error) string {
	switch {
	case genErr == nil:
		s.updateMessage(mode, placeholderID, func(msg *model.Message) {
			msg.Pending = false
		})
		return "success"

	case errors.Is(genErr, llm.ErrAborted) || errors.Is(genErr, context.Canceled):
		s.updateMessage(mode, placeholderID, func(msg *model.Message) {
			if !msg.Pending {
				return
			}
			msg.Pending = false
			if msg.Content != "" {
				msg.Content += stoppedSuffix
			} else {
				msg.Content = stoppedMessage
			}
		})
		return "cancelled"

	default:
		detail := userFacingError(genErr)
		s.logger.Error("generation failed", zap.String("mode", string(mode)), zap.Error(genErr))
		s.updateMessage(mode, placeholderID, func(msg *model.Message) {
			if !msg.Pending {
				return
			}
			msg.Pending = false
			msg.Error = true
			msg.ErrorDetail = detail
			msg.ImageResult = ""
		})
		return "error"
	}
}

func (s *ChatService) publishTerminal(mode model.Mode, messageID, status string, genErr error) {
	eventType := model.EventTypeComplete
	reason := ""
	switch status {
	case "cancelled":
		eventType = model.EventTypeCancelled
	case "error":
		eventType = model.EventTypeError
		reason = genErr.Error()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	err := s.publisher.Publish(ctx, &model.GenerationEvent{
		ID:        uuid.NewString(),
		Mode:      mode,
		MessageID: messageID,
		Type:      eventType,
		Reason:    reason,
		CreatedAt: time.Now(),
	})
	if err != nil {
		s.logger.Warn("failed to publish generation event", zap.Error(err))
	}
}

// StopGeneration cancels whatever generation is in flight. It is idempotent
// and reports whether anything was actually stopped.
func (s *ChatService) StopGeneration() bool {
	return s.inflight.stop()
}

// DeleteMessage removes exactly one message from a mode's timeline. Unknown
// ids are a no-op.
func (s *ChatService) DeleteMessage(mode model.Mode, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	msgs := s.histories[mode]
	for i, msg := range msgs {
		if msg.ID == id {
			s.histories[mode] = append(msgs[:i:i], msgs[i+1:]...)
			s.scheduleSaveLocked()
			return
		}
	}
}

// ClearHistory replaces a mode's timeline with a single fresh greeting.
// Other modes are untouched.
func (s *ChatService) ClearHistory(mode model.Mode) model.Message {
	greeting := model.Message{
		ID:        uuid.NewString(),
		Role:      model.RoleAssistant,
		Content:   model.ClearedGreeting,
		Timestamp: time.Now(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.histories[mode] = []model.Message{greeting}
	s.scheduleSaveLocked()
	return greeting
}

// Histories returns a snapshot of all mode timelines.
func (s *ChatService) Histories() model.Histories {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// History returns a snapshot of one mode's timeline.
func (s *ChatService) History(mode model.Mode) []model.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Message(nil), s.histories[mode]...)
}

// Settings returns the current settings value.
func (s *ChatService) Settings() model.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// UpdateSettings replaces the settings object and persists it.
func (s *ChatService) UpdateSettings(settings model.Settings) {
	s.mu.Lock()
	s.settings = settings
	s.mu.Unlock()

	if err := s.store.SaveSettings(settings); err != nil {
		s.logger.Error("failed to persist settings", zap.Error(err))
	}
}

// Prompts returns the recall list, most recent first.
func (s *ChatService) Prompts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.prompts...)
}

// EnhancePrompt delegates to the generation client. Never fails.
func (s *ChatService) EnhancePrompt(ctx context.Context, input string) string {
	return s.llmClient.EnhancePrompt(ctx, input)
}

// Flush writes any pending history snapshot immediately. Called on shutdown.
func (s *ChatService) Flush() {
	s.saver.Flush()
}

// recordPrompt prepends a distinct prompt to the recall list, capped at 50.
func (s *ChatService) recordPrompt(text string) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return
	}

	s.mu.Lock()
	next := make([]string, 0, len(s.prompts)+1)
	next = append(next, trimmed)
	for _, p := range s.prompts {
		if p != trimmed {
			next = append(next, p)
		}
	}
	if len(next) > maxPromptHistory {
		next = next[:maxPromptHistory]
	}
	s.prompts = next
	snapshot := append([]string(nil), next...)
	s.mu.Unlock()

	metrics.PromptHistorySize.Set(float64(len(snapshot)))
	if err := s.store.SavePrompts(snapshot); err != nil {
		s.logger.Warn("failed to persist prompt history", zap.Error(err))
	}
}

// resolveStalePending marks any still-pending placeholder in mode as
// stopped. The superseded goroutine observes a resolved message and leaves
// it alone, so a mode never shows two pending messages.
func (s *ChatService) resolveStalePending(mode model.Mode) {
	msgs := s.histories[mode]
	for i := range msgs {
		if msgs[i].Role == model.RoleAssistant && msgs[i].Pending {
			msgs[i].Pending = false
			if msgs[i].Content != "" {
				msgs[i].Content += stoppedSuffix
			} else {
				msgs[i].Content = stoppedMessage
			}
		}
	}
}

func (s *ChatService) updateMessage(mode model.Mode, id string, fn func(*model.Message)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if msg, i := s.findLocked(mode, id); msg != nil {
		m := *msg
		fn(&m)
		s.histories[mode][i] = m
	}
}

func (s *ChatService) findLocked(mode model.Mode, id string) (*model.Message, int) {
	msgs := s.histories[mode]
	for i := range msgs {
		if msgs[i].ID == id {
			found := msgs[i]
			return &found, i
		}
	}
	return nil, -1
}

func (s *ChatService) snapshotLocked() model.Histories {
	snapshot := make(model.Histories, len(s.histories))
	for mode, msgs := range s.histories {
		snapshot[mode] = append([]model.Message(nil), msgs...)
	}
	return snapshot
}

func (s *ChatService) scheduleSaveLocked() {
	s.saver.Schedule(s.snapshotLocked())
}

func userFacingError(err error) string {
	var genErr *llm.GenerationError
	if errors.As(err, &genErr) {
		if msg, ok := errorCopy[genErr.Code]; ok {
			return msg
		}
		if genErr.Message != "" {
			return "Error: " + genErr.Message
		}
	}
	return genericErrorCopy
}

func imageCaption(text string, edited bool) string {
	if edited {
		subject := text
		if subject == "" {
			subject = "your image"
		}
		return fmt.Sprintf("Here is your edited masterpiece based on: %q ✨", subject)
	}
	return fmt.Sprintf("Fresh from the studio: %q 🎨", text)
}
