package app

import (
	"context"
	"errors"

	"quiz-grading-service/internal/domain"
)

// SettingsService manages the notification configuration.
//
// Only one record is expected, but nothing below the service enforces it: two
// concurrent first calls can both miss and create a record. Reads always pick
// the lowest id, so the duplicate is harmless but not removed.
type SettingsService struct {
	store SettingsStore
}

func NewSettingsService(store SettingsStore) *SettingsService {
	return &SettingsService{store: store}
}

// Get returns the first setting record, creating an empty one when none exists.
func (s *SettingsService) Get(ctx context.Context) (domain.NotificationSetting, error) {
	setting, err := s.store.FirstSetting(ctx)
	if err == nil {
		return setting, nil
	}
	if !errors.Is(err, domain.ErrSettingNotFound) {
		return domain.NotificationSetting{}, err
	}
	return s.store.CreateSetting(ctx, domain.NotificationSetting{})
}

// Update applies a partial update to the (lazily created) setting record.
func (s *SettingsService) Update(ctx context.Context, patch domain.SettingPatch) (domain.NotificationSetting, error) {
	setting, err := s.Get(ctx)
	if err != nil {
		return domain.NotificationSetting{}, err
	}
	patch.Apply(&setting)
	return s.store.UpdateSetting(ctx, setting)
}
