package service

import (
	"sort"
	"strings"

	"github.com/user/movierec/internal/config"
	"github.com/user/movierec/internal/model"
	"github.com/user/movierec/internal/repository"
)

// moodGenreMap 心情到偏好类型的映射
var moodGenreMap = map[string][]string{
	"happy":       {"Comedy", "Animation", "Family", "Music"},
	"excited":     {"Action", "Adventure", "Thriller", "Science Fiction"},
	"relaxed":     {"Drama", "Documentary", "History"},
	"adventurous": {"Adventure", "Fantasy", "Action"},
	"romantic":    {"Romance", "Drama"},
	"mysterious":  {"Mystery", "Thriller", "Crime"},
}

const (
	// likedBoost 喜欢列表中的电影加分
	likedBoost = 2.0
	// watchlistBoost 想看列表中的电影加分
	watchlistBoost = 1.5
	// userRecLimit 用户画像推荐最终返回条数
	userRecLimit = 10
	// userRecOverSelect 合并前多选的倍数
	userRecOverSelect = 2
	// adultAge 按成年处理的最低年龄
	adultAge = 18
)

// Enricher TMDB 批量获取接口
type Enricher interface {
	FetchBatch(ids []int64) map[int64]model.TMDBDetail
}

// RecommendService 推荐编排服务
// 串起候选产出、业务过滤、TMDB 合并的完整流程
type RecommendService struct {
	config     *config.Config
	catalog    *repository.Catalog
	similarity *SimilarityService
	search     *SearchService
	enricher   Enricher
}

// NewRecommendService 创建推荐服务
func NewRecommendService(
	cfg *config.Config,
	catalog *repository.Catalog,
	similarity *SimilarityService,
	search *SearchService,
	enricher Enricher,
) *RecommendService {
	return &RecommendService{
		config:     cfg,
		catalog:    catalog,
		similarity: similarity,
		search:     search,
		enricher:   enricher,
	}
}

// SearchMovies 标题搜索并合并 TMDB 数据
func (s *RecommendService) SearchMovies(query string) []model.EnrichedMovie {
	return s.enrich(s.search.Search(query))
}

// RecommendByMovie 基于向量相似度推荐相似电影
func (s *RecommendService) RecommendByMovie(movieID int64, limit int, safeMode bool, languages []string) ([]model.EnrichedMovie, error) {
	scored, err := s.similarity.RankBySimilarity(movieID, true)
	if err != nil {
		return nil, err
	}

	candidates := make([]model.Movie, 0, len(scored))
	for _, sc := range scored {
		candidates = append(candidates, *s.catalog.At(sc.Index))
	}

	candidates = filterByLanguages(candidates, languages)
	if safeMode {
		candidates = filterSafe(candidates)
	}
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	return s.enrich(candidates), nil
}

// Trending 按热度降序返回电影
func (s *RecommendService) Trending(limit int, safeMode bool, languages []string) []model.EnrichedMovie {
	return s.rankedList(func(m *model.Movie) float64 { return m.Popularity }, limit, safeMode, languages)
}

// TopRated 按评分降序返回电影
func (s *RecommendService) TopRated(limit int, safeMode bool, languages []string) []model.EnrichedMovie {
	return s.rankedList(func(m *model.Movie) float64 { return m.VoteAverage }, limit, safeMode, languages)
}

// rankedList 按字段降序排序目录，多选后过滤，再裁到 limit 并合并
func (s *RecommendService) rankedList(key func(m *model.Movie) float64, limit int, safeMode bool, languages []string) []model.EnrichedMovie {
	movies := s.catalog.Movies()
	order := make([]int, len(movies))
	for i := range order {
		order[i] = i
	}
	// 稳定排序，同值保持目录顺序
	sort.SliceStable(order, func(i, j int) bool {
		return key(&movies[order[i]]) > key(&movies[order[j]])
	})

	// 先多选一批，保证过滤后仍能凑满 limit
	overSelect := limit * 5
	if overSelect < 50 {
		overSelect = 50
	}
	if len(order) > overSelect {
		order = order[:overSelect]
	}

	candidates := make([]model.Movie, 0, len(order))
	for _, idx := range order {
		candidates = append(candidates, movies[idx])
	}

	candidates = filterByLanguages(candidates, languages)
	if safeMode {
		candidates = filterSafe(candidates)
	}
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	return s.enrich(candidates)
}

// RecommendForUser 按用户画像推荐，最多返回 10 条
func (s *RecommendService) RecommendForUser(req *model.UserRecommendRequest) []model.EnrichedMovie {
	// 未识别的心情不做类型过滤
	preferred := moodGenreMap[strings.ToLower(req.Mood)]

	age := 25
	if req.Age != nil {
		age = *req.Age
	}

	// 请求未携带语言字段时默认只推英语内容
	languages := req.Languages
	if languages == nil {
		languages = []string{"en"}
	}

	liked := toIDSet(req.LikedMovies)
	disliked := toIDSet(req.DislikedMovies)
	watchlist := toIDSet(req.Watchlist)

	movies := s.catalog.Movies()
	type scoredCandidate struct {
		index int
		score float64
	}
	var candidates []scoredCandidate

	for i := range movies {
		m := &movies[i]

		// 1. 语言过滤，列表为空时不过滤
		if len(languages) > 0 && !intersects(m.Languages, languages) {
			continue
		}
		// 2. 心情对应的类型过滤
		if len(preferred) > 0 && !intersects(m.Genres, preferred) {
			continue
		}
		// 3. 排除不喜欢的电影
		if _, ok := disliked[m.ID]; ok {
			continue
		}

		// 4. 基础分为统一的 0~10 分制评分，喜欢/想看的加分
		score := m.VoteAverage * 2
		if _, ok := liked[m.ID]; ok {
			score += likedBoost
		}
		if _, ok := watchlist[m.ID]; ok {
			score += watchlistBoost
		}

		// 5. 成年用户不推荐动画
		if age >= adultAge && containsString(m.Genres, "Animation") {
			continue
		}
		// 6. 安全模式排除成人内容
		if req.SafeMode && m.Adult {
			continue
		}

		candidates = append(candidates, scoredCandidate{index: i, score: score})
	}

	// 7. 按分数降序，多选一倍进合并，最后裁到 10 条
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})
	if len(candidates) > userRecLimit*userRecOverSelect {
		candidates = candidates[:userRecLimit*userRecOverSelect]
	}

	selected := make([]model.Movie, 0, len(candidates))
	for _, c := range candidates {
		selected = append(selected, movies[c.index])
	}

	enriched := s.enrich(selected)
	if len(enriched) > userRecLimit {
		enriched = enriched[:userRecLimit]
	}
	return enriched
}

// enrich 批量获取 TMDB 数据并逐条合并，输出顺序与输入一致
func (s *RecommendService) enrich(movies []model.Movie) []model.EnrichedMovie {
	out := make([]model.EnrichedMovie, 0, len(movies))
	if len(movies) == 0 {
		return out
	}

	ids := make([]int64, 0, len(movies))
	for i := range movies {
		ids = append(ids, movies[i].ID)
	}
	details := s.enricher.FetchBatch(ids)

	for i := range movies {
		out = append(out, s.mergeMovie(&movies[i], details[movies[i].ID]))
	}
	return out
}

// mergeMovie 合并本地行与 TMDB 详情，纯函数
func (s *RecommendService) mergeMovie(m *model.Movie, detail model.TMDBDetail) model.EnrichedMovie {
	enriched := model.EnrichedMovie{
		ID:          m.ID,
		Title:       m.Title,
		ReleaseDate: m.ReleaseDate,
		Runtime:     m.Runtime,
		Overview:    m.Overview,
		Popularity:  m.Popularity,
		Languages:   m.Languages,
	}

	// 1. 海报：优先 TMDB；本地路径已是完整 URL 则直接用，否则补图片前缀；都没有则为 null
	switch {
	case detail.PosterPath != "":
		p := s.config.ImageBaseURL + detail.PosterPath
		enriched.PosterPath = &p
	case m.PosterPath != "":
		p := m.PosterPath
		if !strings.HasPrefix(p, "http") {
			p = s.config.ImageBaseURL + p
		}
		enriched.PosterPath = &p
	}

	// 2. 评分：优先 TMDB 的 0~10 分制，获取失败时本地 0~5 分制翻倍
	if !detail.IsEmpty() {
		enriched.VoteAverage = detail.VoteAverage
	} else {
		enriched.VoteAverage = m.VoteAverage * 2
	}

	// 3. 类型：优先 TMDB 的对象列表，否则包装本地类型字符串
	if len(detail.Genres) > 0 {
		enriched.Genres = detail.Genres
	} else {
		enriched.Genres = make([]model.Genre, 0, len(m.Genres))
		for _, g := range m.Genres {
			enriched.Genres = append(enriched.Genres, model.Genre{Name: g})
		}
	}

	// 4. 成人标记：优先 TMDB，获取失败时退回本地标记
	if !detail.IsEmpty() {
		enriched.Adult = detail.Adult
	} else {
		enriched.Adult = m.Adult
	}

	return enriched
}

// filterByLanguages 保留语言集合有交集的电影，语言列表为空时不过滤
func filterByLanguages(movies []model.Movie, languages []string) []model.Movie {
	if len(languages) == 0 {
		return movies
	}
	out := make([]model.Movie, 0, len(movies))
	for i := range movies {
		if intersects(movies[i].Languages, languages) {
			out = append(out, movies[i])
		}
	}
	return out
}

// filterSafe 排除成人内容
func filterSafe(movies []model.Movie) []model.Movie {
	out := make([]model.Movie, 0, len(movies))
	for i := range movies {
		if !movies[i].Adult {
			out = append(out, movies[i])
		}
	}
	return out
}

// toIDSet 把 ID 列表转成集合，便于 O(1) 判断成员
func toIDSet(ids []int64) map[int64]struct{} {
	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func intersects(have, want []string) bool {
	for _, w := range want {
		for _, h := range have {
			if h == w {
				return true
			}
		}
	}
	return false
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
