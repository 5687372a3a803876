package api

import (
	"net/http"

	"smartexpense/models"
	"smartexpense/service"

	"github.com/gin-gonic/gin"
)

// SettingsHandler 设置与预算处理器
type SettingsHandler struct {
	settings *service.SettingsStore
	budget   *service.BudgetService
}

// NewSettingsHandler 创建设置处理器
func NewSettingsHandler(settings *service.SettingsStore, budget *service.BudgetService) *SettingsHandler {
	return &SettingsHandler{settings: settings, budget: budget}
}

// Get 获取设置
// @Summary Get settings
// @Tags settings
// @Produce json
// @Success 200 {object} models.Preferences
// @Router /api/settings [get]
func (h *SettingsHandler) Get(c *gin.Context) {
	prefs, err := h.settings.Load(c.Request.Context())
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, prefs)
}

// Update 保存设置
// @Summary Update settings
// @Description Partial update; monthlyBudget >= 0, theme light or dark
// @Tags settings
// @Accept json
// @Produce json
// @Param request body models.PreferencesPatch true "Preferences"
// @Success 200 {object} models.Preferences
// @Failure 400 {object} ErrorResponse
// @Router /api/settings [put]
func (h *SettingsHandler) Update(c *gin.Context) {
	var patch models.PreferencesPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		BadRequest(c, SafeErrorMessage(err, "Malformed request body"))
		return
	}

	prefs, err := h.settings.Save(c.Request.Context(), patch)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, prefs)
}

// BudgetStatus 获取当月预算使用情况
// @Summary Budget status
// @Description exceeded at 100% of the budget, approaching at 90%
// @Tags settings
// @Produce json
// @Param month query int false "Month (1-12), requires year"
// @Param year query int false "Year, requires month"
// @Success 200 {object} models.BudgetStatus
// @Failure 400 {object} ErrorResponse
// @Router /api/budget/status [get]
func (h *SettingsHandler) BudgetStatus(c *gin.Context) {
	q, err := parseStatsQuery(c.Query("month"), c.Query("year"))
	if err != nil {
		RespondError(c, err)
		return
	}

	status, err := h.budget.Status(c.Request.Context(), q)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}
