package handler

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/user/movierec/internal/model"
	"github.com/user/movierec/internal/service"
	"github.com/user/movierec/internal/utils"
)

// Root 根路径探活
func (h *Handler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Movie Recommendation API is running!"})
}

// ModelStatus 本地模型与目录状态
func (h *Handler) ModelStatus(c *gin.Context) {
	utils.Success(c, model.ModelStatus{
		ModelLoaded:    h.Catalog.Len() > 0,
		ModelName:      "local",
		MovieCount:     h.Catalog.Len(),
		EmbeddingCount: h.Catalog.Len(),
		EmbeddingDim:   h.Catalog.Dim(),
	})
}

// Search 标题搜索
// 缺少 query 参数返回 400；标准化后为空的查询返回空列表而非错误
func (h *Handler) Search(c *gin.Context) {
	query, ok := c.GetQuery("query")
	if !ok {
		utils.BadRequest(c, "缺少 query 参数")
		return
	}
	utils.Success(c, h.Recommend.SearchMovies(query))
}

// Recommendations 相似电影推荐
func (h *Handler) Recommendations(c *gin.Context) {
	var q model.RecommendQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		utils.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}
	languages := splitLanguages(q.Languages)

	cacheKey := fmt.Sprintf("recommendations:%d:%d:%v:%s", q.MovieID, q.Limit, q.SafeMode, q.Languages)
	if cached, ok := utils.CacheGet(cacheKey); ok {
		utils.Success(c, cached)
		return
	}

	movies, err := h.Recommend.RecommendByMovie(q.MovieID, q.Limit, q.SafeMode, languages)
	if err != nil {
		if errors.Is(err, service.ErrMovieNotFound) {
			utils.NotFound(c, "电影不存在")
			return
		}
		log.Printf("[API] 推荐计算失败 (movie_id=%d): %v", q.MovieID, err)
		utils.InternalServerError(c, "")
		return
	}

	utils.CacheSet(cacheKey, movies, h.Config.CacheTTL)
	utils.Success(c, movies)
}

// Trending 热门电影
func (h *Handler) Trending(c *gin.Context) {
	h.rankedList(c, "trending", h.Recommend.Trending)
}

// TopRated 高分电影
func (h *Handler) TopRated(c *gin.Context) {
	h.rankedList(c, "top-rated", h.Recommend.TopRated)
}

// rankedList 热门/高分两个榜单的公共流程，结果按参数元组缓存
func (h *Handler) rankedList(c *gin.Context, name string, list func(int, bool, []string) []model.EnrichedMovie) {
	var q model.ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		utils.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	cacheKey := fmt.Sprintf("%s:%d:%v:%s", name, q.Limit, q.SafeMode, q.Languages)
	if cached, ok := utils.CacheGet(cacheKey); ok {
		utils.Success(c, cached)
		return
	}

	movies := list(q.Limit, q.SafeMode, splitLanguages(q.Languages))
	utils.CacheSet(cacheKey, movies, h.Config.CacheTTL)
	utils.Success(c, movies)
}

// UserRecommendations 用户画像推荐
func (h *Handler) UserRecommendations(c *gin.Context) {
	var req model.UserRecommendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "请求体解析失败: "+err.Error())
		return
	}
	utils.Success(c, h.Recommend.RecommendForUser(&req))
}

// splitLanguages 解析逗号分隔的语言列表，空串表示不过滤
func splitLanguages(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if lang := strings.TrimSpace(part); lang != "" {
			out = append(out, lang)
		}
	}
	return out
}
