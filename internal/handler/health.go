package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/user/moviehub/internal/utils"
)

// Health 健康检查
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "OK"})
}

// NotFound 未匹配的路由
func (h *Handler) NotFound(c *gin.Context) {
	utils.NotFound(c, "Route not found")
}
