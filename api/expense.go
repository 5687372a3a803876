package api

import (
	"net/http"
	"strings"

	"smartexpense/models"
	"smartexpense/service"

	"github.com/gin-gonic/gin"
)

// ExpenseHandler 消费记录处理器
type ExpenseHandler struct {
	store   *service.ExpenseStore
	stats   *service.StatsService
	alerter *service.BudgetAlerter
}

// NewExpenseHandler 创建消费记录处理器，alerter 可为 nil
func NewExpenseHandler(store *service.ExpenseStore, stats *service.StatsService, alerter *service.BudgetAlerter) *ExpenseHandler {
	return &ExpenseHandler{store: store, stats: stats, alerter: alerter}
}

// CreateExpenseRequest 创建消费记录请求
type CreateExpenseRequest struct {
	Amount      FlexFloat `json:"amount" swaggertype:"number" example:"45.99"`
	Category    string    `json:"category" example:"Food"`
	Description string    `json:"description" example:"Grocery shopping"`
	Date        string    `json:"date" example:"2024-03-01"`
}

// List 获取消费记录列表
// @Summary List expenses
// @Description Expenses newest first, optionally filtered by category and an inclusive date range
// @Tags expenses
// @Produce json
// @Param category query string false "Category, or all"
// @Param startDate query string false "Start date (YYYY-MM-DD)"
// @Param endDate query string false "End date (YYYY-MM-DD), inclusive of the whole day"
// @Success 200 {array} models.Expense
// @Failure 400 {object} ErrorResponse
// @Router /api/expenses [get]
func (h *ExpenseHandler) List(c *gin.Context) {
	filter, err := parseExpenseFilter(c.Query("category"), c.Query("startDate"), c.Query("endDate"), h.stats.Location())
	if err != nil {
		RespondError(c, err)
		return
	}

	expenses, err := h.store.Find(c.Request.Context(), filter)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, expenses)
}

// Stats 获取统计数据
// @Summary Expense statistics
// @Description All-time total, reference month total, six month trend and category breakdown
// @Tags expenses
// @Produce json
// @Param month query int false "Reference month (1-12), requires year"
// @Param year query int false "Reference year, requires month"
// @Success 200 {object} models.StatsSnapshot
// @Failure 400 {object} ErrorResponse
// @Router /api/expenses/stats [get]
func (h *ExpenseHandler) Stats(c *gin.Context) {
	q, err := parseStatsQuery(c.Query("month"), c.Query("year"))
	if err != nil {
		RespondError(c, err)
		return
	}

	snap, err := h.stats.Compute(c.Request.Context(), q)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// Get 获取单条消费记录
// @Summary Get expense
// @Tags expenses
// @Produce json
// @Param id path string true "Expense ID"
// @Success 200 {object} models.Expense
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/expenses/{id} [get]
func (h *ExpenseHandler) Get(c *gin.Context) {
	expense, err := h.store.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, expense)
}

// Create 创建消费记录
// @Summary Create expense
// @Description amount and category are required; date defaults to now
// @Tags expenses
// @Accept json
// @Produce json
// @Param request body CreateExpenseRequest true "Expense"
// @Success 201 {object} models.Expense
// @Failure 400 {object} ErrorResponse
// @Router /api/expenses [post]
func (h *ExpenseHandler) Create(c *gin.Context) {
	var req CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "Malformed request body"))
		return
	}

	req.Category = strings.TrimSpace(req.Category)
	if !req.Amount.Truthy || req.Category == "" {
		BadRequest(c, "Amount and category are required")
		return
	}

	date := h.stats.Now()
	if strings.TrimSpace(req.Date) != "" {
		t, err := parseDate(req.Date, h.stats.Location())
		if err != nil {
			BadRequest(c, "Invalid date")
			return
		}
		date = t
	}

	expense := &models.Expense{
		Amount:      req.Amount.Value,
		Category:    models.Category(req.Category),
		Description: req.Description,
		Date:        date,
	}
	if err := h.store.Insert(c.Request.Context(), expense); err != nil {
		RespondError(c, err)
		return
	}

	h.alerter.ObserveAsync(nil, expense)
	c.JSON(http.StatusCreated, expense)
}

// Update 更新消费记录（部分字段）
// @Summary Update expense
// @Description Only keys present in the body are changed
// @Tags expenses
// @Accept json
// @Produce json
// @Param id path string true "Expense ID"
// @Param request body UpdateExpenseRequest true "Fields to change"
// @Success 200 {object} models.Expense
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/expenses/{id} [put]
func (h *ExpenseHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	var req UpdateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "Malformed request body"))
		return
	}
	patch, err := req.Patch(h.stats.Location())
	if err != nil {
		RespondError(c, err)
		return
	}

	prev, err := h.store.FindByID(ctx, id)
	if err != nil {
		RespondError(c, err)
		return
	}
	updated, err := h.store.Update(ctx, id, patch)
	if err != nil {
		RespondError(c, err)
		return
	}

	h.alerter.ObserveAsync(prev, updated)
	c.JSON(http.StatusOK, updated)
}

// Delete 删除消费记录
// @Summary Delete expense
// @Tags expenses
// @Produce json
// @Param id path string true "Expense ID"
// @Success 200 {object} DeleteResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/expenses/{id} [delete]
func (h *ExpenseHandler) Delete(c *gin.Context) {
	expense, err := h.store.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, DeleteResponse{
		Message: "Expense deleted successfully",
		Expense: expense,
	})
}
