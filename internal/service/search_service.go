package service

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/user/movierec/internal/model"
	"github.com/user/movierec/internal/repository"
	"github.com/user/movierec/internal/utils"
)

const (
	// substringLimit 子串匹配阶段最多返回的条数
	substringLimit = 12
	// fuzzyLimit 模糊匹配阶段最多返回的条数
	fuzzyLimit = 10
	// fuzzyThreshold 模糊匹配的最低相似度得分
	fuzzyThreshold = 70.0
)

// SearchService 标题搜索服务
// 先做子串精确匹配，无结果时退回 token 集合模糊匹配
type SearchService struct {
	catalog *repository.Catalog
}

// NewSearchService 创建搜索服务
func NewSearchService(catalog *repository.Catalog) *SearchService {
	return &SearchService{catalog: catalog}
}

// Search 返回标题匹配的电影
// 查询串标准化后为空时直接返回空结果，不算错误
func (s *SearchService) Search(query string) []model.Movie {
	queryNorm := utils.NormalizeText(query)
	if queryNorm == "" {
		return nil
	}

	movies := s.catalog.Movies()

	// 1. 子串匹配，按目录顺序取前 12 条
	var exact []model.Movie
	for i := range movies {
		if strings.Contains(movies[i].TitleClean, queryNorm) {
			exact = append(exact, movies[i])
			if len(exact) == substringLimit {
				break
			}
		}
	}
	if len(exact) > 0 {
		return exact
	}

	// 2. 模糊匹配：先按标题长度粗筛，再按 token 集合相似度打分
	minLen := utf8.RuneCountInString(queryNorm) - 1
	type scoredTitle struct {
		index int
		score float64
	}
	var candidates []scoredTitle
	for i := range movies {
		if movies[i].TitleLen < minLen {
			continue
		}
		score := utils.TokenSetRatio(queryNorm, movies[i].TitleClean)
		if score >= fuzzyThreshold {
			candidates = append(candidates, scoredTitle{index: i, score: score})
		}
	}

	// 稳定排序，同分保持目录顺序
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})
	if len(candidates) > fuzzyLimit {
		candidates = candidates[:fuzzyLimit]
	}

	out := make([]model.Movie, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, movies[c.index])
	}
	return out
}
