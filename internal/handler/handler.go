package handler

import (
	"github.com/user/movierec/internal/config"
	"github.com/user/movierec/internal/repository"
	"github.com/user/movierec/internal/service"
)

// Handler HTTP 处理器
type Handler struct {
	Config    *config.Config
	Catalog   *repository.Catalog
	TMDB      *service.TMDBService
	Recommend *service.RecommendService
}

// NewHandler 创建处理器，组装全部核心服务
func NewHandler(cfg *config.Config, catalog *repository.Catalog) *Handler {
	// 创建 TMDB 详情缓存与获取服务
	tmdbCache := service.NewTMDBCache(cfg.TMDBCacheSize)
	tmdb := service.NewTMDBService(cfg, tmdbCache)

	// 创建候选产出服务
	similarity := service.NewSimilarityService(catalog)
	search := service.NewSearchService(catalog)

	// 创建推荐编排服务
	recommend := service.NewRecommendService(cfg, catalog, similarity, search, tmdb)

	return &Handler{
		Config:    cfg,
		Catalog:   catalog,
		TMDB:      tmdb,
		Recommend: recommend,
	}
}
