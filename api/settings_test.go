package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"smartexpense/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryHandler_List(t *testing.T) {
	r := newTestRouter()

	w := doJSON(r, "GET", "/api/categories", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `["Food","Travel","Shopping","Bills","Other"]`, w.Body.String())
}

func TestSettingsHandler(t *testing.T) {
	setupSQLite(t)
	r := newTestRouter()

	w := doJSON(r, "GET", "/api/settings", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"monthlyBudget":2000,"theme":"light"}`, w.Body.String())

	w = doJSON(r, "PUT", "/api/settings", `{"monthlyBudget":150}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"monthlyBudget":150,"theme":"light"}`, w.Body.String())

	w = doJSON(r, "PUT", "/api/settings", `{"theme":"purple"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Theme must be light or dark", decodeError(t, w).Details)

	w = doJSON(r, "PUT", "/api/settings", `{"monthlyBudget":-10}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSettingsHandler_BudgetStatus(t *testing.T) {
	setupSQLite(t)
	r := newTestRouter()
	createScenario(t, r)

	w := doJSON(r, "PUT", "/api/settings", `{"monthlyBudget":150}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, "GET", "/api/budget/status", "")
	require.Equal(t, http.StatusOK, w.Code)
	var st models.BudgetStatus
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &st))
	assert.Equal(t, models.BudgetExceeded, st.Status)
	assert.Equal(t, 3, st.Month)
	assert.InDelta(t, 165.99, st.MonthlyTotal, 0.001)
	assert.InDelta(t, -15.99, st.Remaining, 0.001)

	w = doJSON(r, "GET", "/api/budget/status?month=2&year=2024", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &st))
	assert.Equal(t, models.BudgetWithin, st.Status)

	w = doJSON(r, "GET", "/api/budget/status?year=2024", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
