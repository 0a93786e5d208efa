package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/abhicism/dailyplanner/internal/core/domain"
	"github.com/abhicism/dailyplanner/internal/core/ports"
)

// MaxDateKeyLength bounds the application-defined date key.
const MaxDateKeyLength = 64

// PlannerService stores day payloads as opaque compact JSON text.
type PlannerService struct {
	repo    ports.DayEntryRepository
	metrics ports.Metrics
	log     zerolog.Logger
}

func NewPlannerService(repo ports.DayEntryRepository, log zerolog.Logger) *PlannerService {
	return &PlannerService{repo: repo, metrics: nopMetrics{}, log: log}
}

func (s *PlannerService) WithMetrics(m ports.Metrics) *PlannerService {
	s.metrics = m
	return s
}

// SaveDay creates or overwrites the user's entry for dateKey.
func (s *PlannerService) SaveDay(ctx context.Context, user *domain.User, dateKey string, payload json.RawMessage) error {
	if err := validateDateKey(dateKey); err != nil {
		return err
	}
	text, err := compactObject(payload)
	if err != nil {
		return err
	}

	if err := s.repo.Upsert(ctx, user.ID, dateKey, text); err != nil {
		s.log.Error().Err(err).Int64("user_id", user.ID).Str("date_key", dateKey).Msg("failed to save day")
		return fmt.Errorf("save day: %w", err)
	}

	s.metrics.DayEntrySaved(len(text))
	s.log.Debug().Int64("user_id", user.ID).Str("date_key", dateKey).Msg("day saved")
	return nil
}

func (s *PlannerService) GetDay(ctx context.Context, user *domain.User, dateKey string) (*string, error) {
	entry, err := s.repo.Get(ctx, user.ID, dateKey)
	if errors.Is(err, domain.ErrDayEntryNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get day: %w", err)
	}
	return &entry.Payload, nil
}

func (s *PlannerService) History(ctx context.Context, user *domain.User) ([]domain.DayEntry, error) {
	entries, err := s.repo.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}
	if entries == nil {
		entries = []domain.DayEntry{}
	}
	return entries, nil
}

func validateDateKey(key string) error {
	if key == "" || strings.TrimSpace(key) != key || strings.Contains(key, "/") {
		return domain.ErrInvalidDateKey
	}
	if utf8.RuneCountInString(key) > MaxDateKeyLength {
		return domain.ErrInvalidDateKey
	}
	return nil
}

// compactObject returns the compact text of payload, which must be a single
// JSON object. The content itself is not interpreted.
func compactObject(payload json.RawMessage) (string, error) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return "", domain.ErrInvalidPayload
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, trimmed); err != nil {
		return "", domain.ErrInvalidPayload
	}
	return buf.String(), nil
}
