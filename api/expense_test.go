package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"smartexpense/database"
	"smartexpense/models"
	"smartexpense/service"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

var testNow = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

// setupMockDB swaps database.DB for a sqlmock-backed connection
func setupMockDB(t *testing.T) (sqlmock.Sqlmock, func()) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	require.NoError(t, err)

	oldDB := database.DB
	database.DB = gormDB
	return mock, func() {
		database.DB = oldDB
		sqlDB.Close()
	}
}

// setupSQLite points database.DB at a fresh in-memory database
func setupSQLite(t *testing.T) {
	db, err := database.OpenInMemory()
	require.NoError(t, err)

	oldDB := database.DB
	database.DB = db
	t.Cleanup(func() {
		database.DB = oldDB
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
}

// newTestRouter wires every handler onto database.DB with a fixed clock
func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)

	store := service.NewExpenseStore(database.DB)
	stats := service.NewStatsService(store, time.UTC).WithClock(func() time.Time { return testNow })
	settings := service.NewSettingsStore(database.DB, models.Preferences{MonthlyBudget: 2000, Theme: models.ThemeLight})
	budget := service.NewBudgetService(store, stats, settings)

	expenseHandler := NewExpenseHandler(store, stats, nil)
	exportHandler := NewExportHandler(store, stats)
	settingsHandler := NewSettingsHandler(settings, budget)

	r := gin.New()
	r.GET("/api/categories", NewCategoryHandler().List)
	r.GET("/api/expenses", expenseHandler.List)
	r.GET("/api/expenses/stats", expenseHandler.Stats)
	r.GET("/api/expenses/export", exportHandler.Export)
	r.GET("/api/expenses/:id", expenseHandler.Get)
	r.POST("/api/expenses", expenseHandler.Create)
	r.PUT("/api/expenses/:id", expenseHandler.Update)
	r.DELETE("/api/expenses/:id", expenseHandler.Delete)
	r.GET("/api/settings", settingsHandler.Get)
	r.PUT("/api/settings", settingsHandler.Update)
	r.GET("/api/budget/status", settingsHandler.BudgetStatus)
	return r
}

func doJSON(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeExpense(t *testing.T, w *httptest.ResponseRecorder) models.Expense {
	t.Helper()
	var e models.Expense
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &e))
	return e
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func createScenario(t *testing.T, r *gin.Engine) {
	t.Helper()
	for _, body := range []string{
		`{"amount":45.99,"category":"Food","description":"Grocery shopping","date":"2024-03-01"}`,
		`{"amount":120,"category":"Travel","description":"Train tickets","date":"2024-03-02"}`,
		`{"amount":"15","category":"Food","description":"Coffee","date":"2024-02-01"}`,
	} {
		w := doJSON(r, "POST", "/api/expenses", body)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}
}

func TestExpenseHandler_Create(t *testing.T) {
	setupSQLite(t)
	r := newTestRouter()

	w := doJSON(r, "POST", "/api/expenses", `{"amount":"45.99","category":"Food","description":"Grocery shopping","date":"2024-03-01"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	created := decodeExpense(t, w)
	assert.True(t, models.ValidID(created.ID))
	assert.Equal(t, 45.99, created.Amount)
	assert.Equal(t, models.CategoryFood, created.Category)
	assert.Equal(t, "Grocery shopping", created.Description)
	assert.True(t, created.Date.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))

	// round trip
	w = doJSON(r, "GET", "/api/expenses/"+created.ID, "")
	require.Equal(t, http.StatusOK, w.Code)
	got := decodeExpense(t, w)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, created.Amount, got.Amount)
	assert.Equal(t, created.Category, got.Category)
	assert.Equal(t, created.Description, got.Description)
	assert.True(t, created.Date.Equal(got.Date))

	// wire names
	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))
	for _, key := range []string{"_id", "amount", "category", "description", "date", "createdAt", "updatedAt"} {
		assert.Contains(t, raw, key)
	}
}

func TestExpenseHandler_Create_DefaultsDateToNow(t *testing.T) {
	setupSQLite(t)
	r := newTestRouter()

	w := doJSON(r, "POST", "/api/expenses", `{"amount":12,"category":"Other"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, decodeExpense(t, w).Date.Equal(testNow))
}

func TestExpenseHandler_Create_Validation(t *testing.T) {
	setupSQLite(t)
	r := newTestRouter()

	tests := []struct {
		name    string
		body    string
		details string
	}{
		{"missing category", `{"amount":10}`, "Amount and category are required"},
		{"missing amount", `{"category":"Food"}`, "Amount and category are required"},
		{"zero amount", `{"amount":0,"category":"Food"}`, "Amount and category are required"},
		{"empty amount string", `{"amount":"","category":"Food"}`, "Amount and category are required"},
		{"unknown category", `{"amount":10,"category":"Invalid"}`, "Invalid is not a valid category"},
		{"negative amount", `{"amount":-5,"category":"Food"}`, "Amount cannot be negative"},
		{"bad date", `{"amount":5,"category":"Food","date":"March 1st"}`, "Invalid date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(r, "POST", "/api/expenses", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			resp := decodeError(t, w)
			assert.Equal(t, "Validation failed", resp.Error)
			assert.Equal(t, tt.details, resp.Details)
		})
	}

	w := doJSON(r, "POST", "/api/expenses", `{"amount":"lots","category":"Food"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// nothing was persisted
	w = doJSON(r, "GET", "/api/expenses", "")
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestExpenseHandler_Create_RejectsUnstorableAmounts(t *testing.T) {
	setupSQLite(t)
	r := newTestRouter()

	for _, body := range []string{
		`{"amount":"Infinity","category":"Food"}`,
		`{"amount":"NaN","category":"Food"}`,
	} {
		w := doJSON(r, "POST", "/api/expenses", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}

	w := doJSON(r, "POST", "/api/expenses", `{"amount":1e300,"category":"Food"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Amount must not exceed 9999999999.99", decodeError(t, w).Details)

	w = doJSON(r, "POST", "/api/expenses", `{"amount":10,"category":"Food"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	created := decodeExpense(t, w)

	w = doJSON(r, "PUT", "/api/expenses/"+created.ID, `{"amount":"Infinity"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// list and stats still encode
	w = doJSON(r, "GET", "/api/expenses", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list []models.Expense
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, 10.0, list[0].Amount)

	w = doJSON(r, "GET", "/api/expenses/stats", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"totalExpenses":10`)
}

func TestExpenseHandler_Get_Errors(t *testing.T) {
	setupSQLite(t)
	r := newTestRouter()

	w := doJSON(r, "GET", "/api/expenses/not-an-id", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid expense ID", decodeError(t, w).Error)

	w = doJSON(r, "GET", "/api/expenses/0b6b3c1e-6d4c-4a8a-9f3e-2f1d1e0c9b7a", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Expense not found", decodeError(t, w).Error)
}

func TestExpenseHandler_List(t *testing.T) {
	setupSQLite(t)
	r := newTestRouter()
	createScenario(t, r)

	w := doJSON(r, "GET", "/api/expenses?category=Food&startDate=2024-03-01&endDate=2024-03-01", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list []models.Expense
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "Grocery shopping", list[0].Description)

	w = doJSON(r, "GET", "/api/expenses?category=all", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 3)
	assert.Equal(t, "Train tickets", list[0].Description)
	assert.Equal(t, "Coffee", list[2].Description)

	w = doJSON(r, "GET", "/api/expenses?category=Pets", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, "GET", "/api/expenses?startDate=yesterday", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid startDate", decodeError(t, w).Details)
}

func TestExpenseHandler_Stats(t *testing.T) {
	setupSQLite(t)
	r := newTestRouter()

	w := doJSON(r, "GET", "/api/expenses/stats", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"totalExpenses":0,"monthlyTotal":0,"monthlyData":[],"categoryData":[]}`, w.Body.String())

	createScenario(t, r)

	w = doJSON(r, "GET", "/api/expenses/stats?month=3&year=2024", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{
		"totalExpenses": 180.99,
		"monthlyTotal": 165.99,
		"monthlyData": [
			{"_id": {"year": 2024, "month": 2}, "total": 15},
			{"_id": {"year": 2024, "month": 3}, "total": 165.99}
		],
		"categoryData": [
			{"_id": "Travel", "total": 120},
			{"_id": "Food", "total": 60.99}
		]
	}`, w.Body.String())

	w = doJSON(r, "GET", "/api/expenses/stats?month=3", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Month and year must be provided together", decodeError(t, w).Details)

	w = doJSON(r, "GET", "/api/expenses/stats?month=march&year=2024", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExpenseHandler_Update(t *testing.T) {
	setupSQLite(t)
	r := newTestRouter()

	w := doJSON(r, "POST", "/api/expenses", `{"amount":50,"category":"Food","description":"Dinner","date":"2024-03-05"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	created := decodeExpense(t, w)

	// amount 0 is a supplied value
	w = doJSON(r, "PUT", "/api/expenses/"+created.ID, `{"amount":0}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decodeExpense(t, w)
	assert.Equal(t, 0.0, updated.Amount)
	assert.Equal(t, models.CategoryFood, updated.Category)
	assert.Equal(t, "Dinner", updated.Description)

	w = doJSON(r, "PUT", "/api/expenses/"+created.ID, `{"description":null,"date":"2024-03-06"}`)
	require.Equal(t, http.StatusOK, w.Code)
	updated = decodeExpense(t, w)
	assert.Equal(t, "", updated.Description)
	assert.True(t, updated.Date.Equal(time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC)))

	w = doJSON(r, "PUT", "/api/expenses/"+created.ID, `{"category":null}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Category is required", decodeError(t, w).Details)

	w = doJSON(r, "PUT", "/api/expenses/"+created.ID, `{"category":"Invalid"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid is not a valid category", decodeError(t, w).Details)

	w = doJSON(r, "PUT", "/api/expenses/0b6b3c1e-6d4c-4a8a-9f3e-2f1d1e0c9b7a", `{}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(r, "PUT", "/api/expenses/bad-id", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExpenseHandler_Delete(t *testing.T) {
	setupSQLite(t)
	r := newTestRouter()

	w := doJSON(r, "POST", "/api/expenses", `{"amount":30,"category":"Shopping"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	created := decodeExpense(t, w)

	w = doJSON(r, "DELETE", "/api/expenses/"+created.ID, "")
	require.Equal(t, http.StatusOK, w.Code)
	var resp DeleteResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Expense deleted successfully", resp.Message)
	require.NotNil(t, resp.Expense)
	assert.Equal(t, created.ID, resp.Expense.ID)

	w = doJSON(r, "DELETE", "/api/expenses/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestExpenseHandler_List_DatabaseError(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `expenses`").
		WillReturnError(errors.New("connection refused"))

	w := doJSON(newTestRouter(), "GET", "/api/expenses", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, "Server error", resp.Error)
	assert.Contains(t, resp.Details, "connection refused")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExpenseHandler_Get_Mock(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	id := "0b6b3c1e-6d4c-4a8a-9f3e-2f1d1e0c9b7a"
	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT .* FROM `expenses`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "amount", "category", "description", "date", "created_at", "updated_at"}).
			AddRow(id, 45.99, "Food", "Grocery shopping", date, date, date))

	w := doJSON(newTestRouter(), "GET", "/api/expenses/"+id, "")
	require.Equal(t, http.StatusOK, w.Code)
	got := decodeExpense(t, w)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, models.CategoryFood, got.Category)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExpenseHandler_Delete_Mock(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	id := "0b6b3c1e-6d4c-4a8a-9f3e-2f1d1e0c9b7a"
	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT .* FROM `expenses`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "amount", "category", "description", "date", "created_at", "updated_at"}).
			AddRow(id, 10, "Bills", "", date, date, date))
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM `expenses`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	w := doJSON(newTestRouter(), "DELETE", "/api/expenses/"+id, "")
	assert.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}
