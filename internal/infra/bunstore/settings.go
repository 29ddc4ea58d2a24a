package bunstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"quiz-grading-service/internal/domain"
)

// FirstSetting returns the setting with the lowest id.
func (s *Store) FirstSetting(ctx context.Context) (domain.NotificationSetting, error) {
	m := new(settingModel)
	err := s.db.NewSelect().Model(m).Order("ns.id ASC").Limit(1).Scan(ctx)
	return settingResult(m, err)
}

// ActiveSetting returns the first setting flagged active.
func (s *Store) ActiveSetting(ctx context.Context) (domain.NotificationSetting, error) {
	m := new(settingModel)
	err := s.db.NewSelect().Model(m).Where("ns.is_active = ?", true).Order("ns.id ASC").Limit(1).Scan(ctx)
	return settingResult(m, err)
}

func settingResult(m *settingModel, err error) (domain.NotificationSetting, error) {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NotificationSetting{}, domain.ErrSettingNotFound
	}
	if err != nil {
		return domain.NotificationSetting{}, fmt.Errorf("select setting: %w", err)
	}
	return m.toDomain(), nil
}

func (s *Store) CreateSetting(ctx context.Context, setting domain.NotificationSetting) (domain.NotificationSetting, error) {
	m := settingFromDomain(setting)
	m.ID = 0
	m.CreatedAt = s.now()
	m.UpdatedAt = m.CreatedAt
	if _, err := s.db.NewInsert().Model(m).Exec(ctx); err != nil {
		return domain.NotificationSetting{}, fmt.Errorf("insert setting: %w", err)
	}
	return m.toDomain(), nil
}

func (s *Store) UpdateSetting(ctx context.Context, setting domain.NotificationSetting) (domain.NotificationSetting, error) {
	m := settingFromDomain(setting)
	m.UpdatedAt = s.now()
	res, err := s.db.NewUpdate().
		Model(m).
		Column("bot_token", "admin_chat_id", "is_active", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return domain.NotificationSetting{}, fmt.Errorf("update setting: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.NotificationSetting{}, domain.ErrSettingNotFound
	}
	return m.toDomain(), nil
}
