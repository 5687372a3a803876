package api

import (
	"net/http"

	"smartexpense/models"

	"github.com/gin-gonic/gin"
)

// CategoryHandler 消费分类处理器
type CategoryHandler struct{}

func NewCategoryHandler() *CategoryHandler {
	return &CategoryHandler{}
}

// List 按展示顺序返回分类列表
// @Summary List categories
// @Tags categories
// @Produce json
// @Success 200 {array} string
// @Router /api/categories [get]
func (h *CategoryHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, models.CategoryNames())
}
