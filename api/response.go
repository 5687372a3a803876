package api

import (
	"errors"
	"net/http"

	"smartexpense/logger"
	"smartexpense/models"

	"github.com/gin-gonic/gin"
)

// ErrorResponse 错误响应
type ErrorResponse struct {
	Error   string `json:"error" example:"Validation failed"`
	Details string `json:"details,omitempty" example:"Amount and category are required"`
}

// DeleteResponse 删除响应
type DeleteResponse struct {
	Message string          `json:"message" example:"Expense deleted successfully"`
	Expense *models.Expense `json:"expense"`
}

// Error 返回错误响应
func Error(c *gin.Context, code int, message, details string) {
	c.JSON(code, ErrorResponse{
		Error:   message,
		Details: details,
	})
}

// BadRequest 400 validation failure
func BadRequest(c *gin.Context, details string) {
	Error(c, http.StatusBadRequest, "Validation failed", details)
}

// NotFound 404
func NotFound(c *gin.Context) {
	Error(c, http.StatusNotFound, "Expense not found", "")
}

// InternalError 500，非 debug 模式隐藏错误详情
func InternalError(c *gin.Context, err error) {
	l := logger.FromContext(c.Request.Context())
	l.Error().
		Err(err).
		Str("method", c.Request.Method).
		Str("path", c.FullPath()).
		Msg("request failed")
	Error(c, http.StatusInternalServerError, "Server error", SafeErrorMessage(err, "Something went wrong"))
}

// RespondError 将领域错误映射为状态码
func RespondError(c *gin.Context, err error) {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		BadRequest(c, verr.Error())
	case errors.Is(err, models.ErrInvalidID):
		Error(c, http.StatusBadRequest, "Invalid expense ID", "")
	case errors.Is(err, models.ErrNotFound):
		NotFound(c)
	default:
		InternalError(c, err)
	}
}
