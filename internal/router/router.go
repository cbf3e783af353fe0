package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/user/movierec/internal/handler"
)

// RegisterRoutes 注册所有路由
func RegisterRoutes(r *gin.Engine, h *handler.Handler) {
	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// ==================== 状态 ====================
	r.GET("/", h.Root)
	r.GET("/model/status", h.ModelStatus)

	// ==================== 检索与推荐 ====================
	r.GET("/search", h.Search)
	r.GET("/recommendations", h.Recommendations)
	r.GET("/trending", h.Trending)
	r.GET("/top-rated", h.TopRated)
	r.POST("/recommendations/user", h.UserRecommendations)
}
