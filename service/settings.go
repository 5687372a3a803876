package service

import (
	"context"
	"fmt"
	"strconv"

	"smartexpense/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SettingsStore loads and saves client preferences as key/value rows.
type SettingsStore struct {
	db       *gorm.DB
	defaults models.Preferences
}

// NewSettingsStore creates a settings store; defaults fill unset keys.
func NewSettingsStore(db *gorm.DB, defaults models.Preferences) *SettingsStore {
	return &SettingsStore{db: db, defaults: defaults}
}

// Load returns the stored preferences merged over the defaults.
func (s *SettingsStore) Load(ctx context.Context) (models.Preferences, error) {
	prefs := s.defaults

	var rows []models.Setting
	err := s.db.WithContext(ctx).
		Where("`key` IN ?", []string{models.SettingMonthlyBudget, models.SettingTheme}).
		Find(&rows).Error
	if err != nil {
		return prefs, fmt.Errorf("load settings: %w", err)
	}

	for _, row := range rows {
		switch row.Key {
		case models.SettingMonthlyBudget:
			v, err := strconv.ParseFloat(row.Value, 64)
			if err != nil {
				return prefs, fmt.Errorf("stored %s %q: %w", row.Key, row.Value, err)
			}
			prefs.MonthlyBudget = v
		case models.SettingTheme:
			prefs.Theme = row.Value
		}
	}
	return prefs, nil
}

// Save validates and upserts the supplied preferences, then reloads them.
func (s *SettingsStore) Save(ctx context.Context, patch models.PreferencesPatch) (models.Preferences, error) {
	if err := patch.Validate(); err != nil {
		return models.Preferences{}, err
	}

	var rows []models.Setting
	if patch.MonthlyBudget.Set {
		rows = append(rows, models.Setting{
			Key:   models.SettingMonthlyBudget,
			Value: strconv.FormatFloat(patch.MonthlyBudget.Value, 'f', -1, 64),
		})
	}
	if patch.Theme.Set {
		rows = append(rows, models.Setting{Key: models.SettingTheme, Value: patch.Theme.Value})
	}

	if len(rows) > 0 {
		err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).Create(&rows).Error
		if err != nil {
			return models.Preferences{}, fmt.Errorf("save settings: %w", err)
		}
	}
	return s.Load(ctx)
}
