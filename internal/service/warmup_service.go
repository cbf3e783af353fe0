package service

import (
	"log"
	"sort"
	"time"

	"github.com/user/movierec/internal/repository"
)

const (
	// warmupCount 预热的热门电影数量
	warmupCount = 50
	// warmupInterval 周期性补热间隔
	warmupInterval = 12 * time.Hour
)

// WarmupService 缓存预热服务
// 启动时把最热门的电影详情提前拉进缓存，之后周期性补热
// 获取为空的条目不会被缓存，补热时自然会重试
type WarmupService struct {
	catalog *repository.Catalog
	tmdb    *TMDBService
	quit    chan struct{}
}

// NewWarmupService 创建预热服务
func NewWarmupService(catalog *repository.Catalog, tmdb *TMDBService) *WarmupService {
	return &WarmupService{
		catalog: catalog,
		tmdb:    tmdb,
		quit:    make(chan struct{}),
	}
}

// Start 启动预热任务，不阻塞启动流程
func (s *WarmupService) Start() {
	// 启动时先跑一次
	go s.runWarmup()

	go func() {
		ticker := time.NewTicker(warmupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.runWarmup()
			case <-s.quit:
				return
			}
		}
	}()
}

// Stop 停止周期性补热
func (s *WarmupService) Stop() {
	close(s.quit)
}

func (s *WarmupService) runWarmup() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Warmup] 预热任务发生恐慌: %v", r)
		}
	}()

	ids := s.popularIDs(warmupCount)
	if len(ids) == 0 {
		return
	}

	start := time.Now()
	results := s.tmdb.FetchBatch(ids)

	valid := 0
	for _, d := range results {
		if !d.IsEmpty() {
			valid++
		}
	}
	log.Printf("[Warmup] 缓存预热完成: %d/%d 条有效, 耗时 %s", valid, len(ids), time.Since(start))
}

// popularIDs 取热度最高的 n 部电影 ID
func (s *WarmupService) popularIDs(n int) []int64 {
	movies := s.catalog.Movies()
	order := make([]int, len(movies))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return movies[order[i]].Popularity > movies[order[j]].Popularity
	})
	if len(order) > n {
		order = order[:n]
	}

	ids := make([]int64, 0, len(order))
	for _, idx := range order {
		ids = append(ids, movies[idx].ID)
	}
	return ids
}
