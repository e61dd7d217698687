package store

import (
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/nakirhussain8918-star/Cool-boy-chat/internal/model"
	"github.com/nakirhussain8918-star/Cool-boy-chat/pkg/logger"
	"github.com/nakirhussain8918-star/Cool-boy-chat/pkg/metrics"
)

// Storage keys. Prompts and settings live outside the degradation ladder
// since they carry no binary payloads.
const (
	keyHistories = "histories"
	keySettings  = "settings"
	keyPrompts   = "prompts"
)

// HistoryStore persists conversation state into a size-constrained KV,
// degrading gracefully when the quota is hit.
type HistoryStore struct {
	kv  KV
	log *logger.Logger
}

// NewHistoryStore creates a history store on top of kv.
func NewHistoryStore(kv KV, log *logger.Logger) *HistoryStore {
	return &HistoryStore{kv: kv, log: log}
}

// SaveHistories writes a snapshot of all mode timelines. On quota overflow
// it walks the degradation ladder; if even the stripped form does not fit,
// the write is abandoned with a log line; in-memory state is the source of
// truth and only durability is lost.
func (s *HistoryStore) SaveHistories(histories model.Histories) error {
	for _, tier := range Tiers {
		data, err := json.Marshal(Degrade(tier, histories))
		if err != nil {
			return fmt.Errorf("failed to marshal histories: %w", err)
		}

		err = s.kv.Set(keyHistories, data)
		if err == nil {
			metrics.RecordStorageSave(tier.String(), "ok")
			if tier != TierFull {
				s.log.Warn("history snapshot degraded to fit quota",
					zap.String("tier", tier.String()),
					zap.Int("bytes", len(data)))
			}
			return nil
		}
		if !errors.Is(err, ErrQuotaExceeded) {
			metrics.RecordStorageSave(tier.String(), "error")
			return err
		}
		metrics.RecordStorageSave(tier.String(), "quota_exceeded")
	}

	s.log.Warn("history snapshot abandoned, stripped form still exceeds quota")
	return nil
}

// LoadHistories reads the persisted timelines. Absent or malformed data
// yields the default seeded state, never an error.
func (s *HistoryStore) LoadHistories() model.Histories {
	data, err := s.kv.Get(keyHistories)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.log.Warn("failed to read histories, seeding defaults", zap.Error(err))
		}
		return model.SeedHistories()
	}

	var histories model.Histories
	if err := json.Unmarshal(data, &histories); err != nil {
		s.log.Warn("corrupt history record, seeding defaults", zap.Error(err))
		return model.SeedHistories()
	}

	// Modes added after the snapshot was written still get a greeting.
	for _, mode := range model.AllModes {
		if _, ok := histories[mode]; !ok {
			histories[mode] = []model.Message{model.Welcome(mode)}
		}
	}
	return histories
}

// SaveSettings persists the settings object (whole-object replacement).
func (s *HistoryStore) SaveSettings(settings model.Settings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	return s.kv.Set(keySettings, data)
}

// LoadSettings reads persisted settings, falling back to defaults.
func (s *HistoryStore) LoadSettings() model.Settings {
	data, err := s.kv.Get(keySettings)
	if err != nil {
		return model.DefaultSettings()
	}
	var settings model.Settings
	if err := json.Unmarshal(data, &settings); err != nil {
		s.log.Warn("corrupt settings record, using defaults", zap.Error(err))
		return model.DefaultSettings()
	}
	return settings
}

// SavePrompts persists the prompt recall list.
func (s *HistoryStore) SavePrompts(prompts []string) error {
	data, err := json.Marshal(prompts)
	if err != nil {
		return fmt.Errorf("failed to marshal prompts: %w", err)
	}
	return s.kv.Set(keyPrompts, data)
}

// LoadPrompts reads the persisted prompt recall list.
func (s *HistoryStore) LoadPrompts() []string {
	data, err := s.kv.Get(keyPrompts)
	if err != nil {
		return nil
	}
	var prompts []string
	if err := json.Unmarshal(data, &prompts); err != nil {
		s.log.Warn("corrupt prompt record, dropping", zap.Error(err))
		return nil
	}
	return prompts
}
