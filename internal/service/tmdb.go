package service

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/user/movierec/internal/config"
	"github.com/user/movierec/internal/model"
)

// TMDBService TMDB 详情获取服务
// 主通道使用连接池客户端并发请求；重试耗尽的条目转入受槽位限制的
// 备用通道做最后一次阻塞尝试，保证调用方总能拿到一个（可能为空的）结果
type TMDBService struct {
	config      *config.Config
	cache       *TMDBCache
	client      *http.Client
	fallback    *http.Client
	fallbackSem chan struct{}

	// 重试起始等待时长，测试中可调小
	initialBackoff time.Duration
}

// NewTMDBService 创建 TMDB 服务
func NewTMDBService(cfg *config.Config, cache *TMDBCache) *TMDBService {
	transport := &http.Transport{
		MaxConnsPerHost:     cfg.TMDBMaxPerHost,
		MaxIdleConnsPerHost: cfg.TMDBMaxPerHost,
	}
	// 备用通道不与主通道共享连接池，避免挤占并发额度
	fallbackTransport := &http.Transport{
		DisableKeepAlives: true,
	}

	return &TMDBService{
		config:         cfg,
		cache:          cache,
		client:         &http.Client{Transport: transport, Timeout: cfg.APITimeout},
		fallback:       &http.Client{Transport: fallbackTransport, Timeout: cfg.APITimeout},
		fallbackSem:    make(chan struct{}, cfg.FallbackWorkers),
		initialBackoff: 500 * time.Millisecond,
	}
}

// Cache 返回底层详情缓存
func (s *TMDBService) Cache() *TMDBCache {
	return s.cache
}

// FetchBatch 分批并发获取 TMDB 详情
// 返回的 map 覆盖全部入参 ID，获取失败的条目为空记录
func (s *TMDBService) FetchBatch(ids []int64) map[int64]model.TMDBDetail {
	results := make(map[int64]model.TMDBDetail, len(ids))
	if len(ids) == 0 {
		return results
	}

	var mu sync.Mutex
	batchSize := s.config.TMDBBatchSize
	for start := 0; start < len(ids); start += batchSize {
		end := start + batchSize
		if end > len(ids) {
			end = len(ids)
		}

		var wg sync.WaitGroup
		for _, id := range ids[start:end] {
			// 1. 命中缓存的条目直接回填，不占用批次并发
			if d, ok := s.cache.Get(id); ok {
				mu.Lock()
				results[id] = d
				mu.Unlock()
				continue
			}

			// 2. 未命中的条目并发获取，singleflight 合并重复 ID
			wg.Add(1)
			go func(id int64) {
				defer wg.Done()
				d := s.cache.GetOrFetch(id, func() model.TMDBDetail {
					return s.fetchDetail(id)
				})
				mu.Lock()
				results[id] = d
				mu.Unlock()
			}(id)
		}
		wg.Wait()
	}

	return results
}

// fetchDetail 获取单部电影详情，带重试与退避
func (s *TMDBService) fetchDetail(id int64) model.TMDBDetail {
	url := s.detailURL(id)
	backoff := s.initialBackoff

	for attempt := 0; attempt < s.config.APIMaxRetries; attempt++ {
		resp, err := s.client.Get(url)
		if err != nil {
			// 网络错误按当前退避等待后重试
			log.Printf("[TMDB] 请求失败 (ID: %d, 第%d次): %v", id, attempt+1, err)
			time.Sleep(backoff)
			backoff *= 2
			continue
		}

		switch {
		case resp.StatusCode == http.StatusOK:
			detail, err := decodeDetail(resp.Body)
			resp.Body.Close()
			if err != nil {
				log.Printf("[TMDB] 响应解析失败 (ID: %d): %v", id, err)
				return model.TMDBDetail{}
			}
			return detail

		case resp.StatusCode == http.StatusTooManyRequests:
			retryAfter := resp.Header.Get("Retry-After")
			resp.Body.Close()
			if secs, err := strconv.ParseFloat(retryAfter, 64); err == nil && secs >= 0 {
				// 服务端明确给出等待时长时照做，不升级退避
				time.Sleep(time.Duration(secs * float64(time.Second)))
			} else {
				time.Sleep(backoff)
				backoff *= 2
			}

		case resp.StatusCode >= 500:
			resp.Body.Close()
			time.Sleep(backoff)
			backoff *= 2

		default:
			// 其余状态码视为不可重试，记录截断的响应体后返回空记录
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
			resp.Body.Close()
			log.Printf("[TMDB] 上游返回 %d (ID: %d): %s", resp.StatusCode, id, string(body))
			return model.TMDBDetail{}
		}
	}

	// 重试耗尽，转入备用通道
	return s.fetchFallback(id, url)
}

// fetchFallback 备用通道：受槽位限制的单次阻塞请求
func (s *TMDBService) fetchFallback(id int64, url string) model.TMDBDetail {
	s.fallbackSem <- struct{}{}
	defer func() { <-s.fallbackSem }()

	resp, err := s.fallback.Get(url)
	if err != nil {
		log.Printf("[TMDB] 备用通道请求失败 (ID: %d): %v", id, err)
		return model.TMDBDetail{}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("[TMDB] 备用通道返回 %d (ID: %d)", resp.StatusCode, id)
		return model.TMDBDetail{}
	}

	detail, err := decodeDetail(resp.Body)
	if err != nil {
		log.Printf("[TMDB] 备用通道解析失败 (ID: %d): %v", id, err)
		return model.TMDBDetail{}
	}
	return detail
}

func (s *TMDBService) detailURL(id int64) string {
	return fmt.Sprintf("%s/movie/%d?api_key=%s&language=en-US", s.config.TMDBBaseURL, id, s.config.TMDBAPIKey)
}

type tmdbDetailResponse struct {
	PosterPath  string  `json:"poster_path"`
	VoteAverage float64 `json:"vote_average"`
	Genres      []struct {
		Name string `json:"name"`
	} `json:"genres"`
	Adult bool `json:"adult"`
}

// decodeDetail 解析 TMDB 详情响应，只保留需要合并的字段
func decodeDetail(r io.Reader) (model.TMDBDetail, error) {
	var raw tmdbDetailResponse
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return model.TMDBDetail{}, err
	}

	detail := model.TMDBDetail{
		PosterPath:  raw.PosterPath,
		VoteAverage: raw.VoteAverage,
		Adult:       raw.Adult,
	}
	for _, g := range raw.Genres {
		detail.Genres = append(detail.Genres, model.Genre{Name: g.Name})
	}
	return detail, nil
}
