package service

import (
	"strconv"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/user/movierec/internal/model"
	"golang.org/x/sync/singleflight"
)

// TMDBCache TMDB 详情缓存
// 固定容量 LRU，配合 singleflight 保证同一影片并发未命中时只发起一次上游请求
type TMDBCache struct {
	store *lru.Cache[int64, model.TMDBDetail]
	group singleflight.Group
}

// NewTMDBCache 创建缓存，size 为最大条目数
func NewTMDBCache(size int) *TMDBCache {
	// lru.New 仅在 size <= 0 时报错，容量经过配置校验
	store, _ := lru.New[int64, model.TMDBDetail](size)
	return &TMDBCache{store: store}
}

// GetOrFetch 命中时直接返回，未命中时通过 fetch 获取
// 只有非空结果会写入缓存，空结果留待下次重新获取
func (c *TMDBCache) GetOrFetch(id int64, fetch func() model.TMDBDetail) model.TMDBDetail {
	if d, ok := c.store.Get(id); ok {
		return d
	}

	key := strconv.FormatInt(id, 10)
	val, _, _ := c.group.Do(key, func() (interface{}, error) {
		// 排队期间可能已有结果落入缓存，进入后再确认一次
		if d, ok := c.store.Get(id); ok {
			return d, nil
		}
		d := fetch()
		if !d.IsEmpty() {
			c.store.Add(id, d)
		}
		return d, nil
	})
	return val.(model.TMDBDetail)
}

// Get 只查缓存，不触发获取
func (c *TMDBCache) Get(id int64) (model.TMDBDetail, bool) {
	return c.store.Get(id)
}

// Len 当前缓存条目数
func (c *TMDBCache) Len() int {
	return c.store.Len()
}
