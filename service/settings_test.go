package service

import (
	"context"
	"encoding/json"
	"testing"

	"smartexpense/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testDefaults = models.Preferences{MonthlyBudget: 2000, Theme: models.ThemeLight}

func TestSettingsStore_LoadDefaults(t *testing.T) {
	_, db := setupStore(t)
	s := NewSettingsStore(db, testDefaults)

	prefs, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, testDefaults, prefs)
}

func TestSettingsStore_SaveAndOverwrite(t *testing.T) {
	_, db := setupStore(t)
	s := NewSettingsStore(db, testDefaults)
	ctx := context.Background()

	prefs, err := s.Save(ctx, models.PreferencesPatch{MonthlyBudget: models.Some(1500.5)})
	require.NoError(t, err)
	assert.Equal(t, 1500.5, prefs.MonthlyBudget)
	assert.Equal(t, models.ThemeLight, prefs.Theme)

	prefs, err = s.Save(ctx, models.PreferencesPatch{
		MonthlyBudget: models.Some(800.0),
		Theme:         models.Some(models.ThemeDark),
	})
	require.NoError(t, err)
	assert.Equal(t, models.Preferences{MonthlyBudget: 800, Theme: models.ThemeDark}, prefs)

	var n int64
	require.NoError(t, db.Model(&models.Setting{}).Count(&n).Error)
	assert.EqualValues(t, 2, n)
}

func TestSettingsStore_SaveRejectsInvalid(t *testing.T) {
	_, db := setupStore(t)
	s := NewSettingsStore(db, testDefaults)

	var patch models.PreferencesPatch
	require.NoError(t, json.Unmarshal([]byte(`{"monthlyBudget": -1, "theme": "blue"}`), &patch))

	_, err := s.Save(context.Background(), patch)
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"Monthly budget must be a non-negative number", "Theme must be light or dark"}, verr.Messages)

	prefs, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, testDefaults, prefs)
}

func TestSettingsStore_EmptyPatch(t *testing.T) {
	_, db := setupStore(t)
	s := NewSettingsStore(db, testDefaults)

	prefs, err := s.Save(context.Background(), models.PreferencesPatch{})
	require.NoError(t, err)
	assert.Equal(t, testDefaults, prefs)
}
