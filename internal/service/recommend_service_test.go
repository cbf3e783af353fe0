package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/movierec/internal/config"
	"github.com/user/movierec/internal/model"
)

// stubEnricher 返回预置详情的 Enricher，记录每次调用的 ID
type stubEnricher struct {
	details map[int64]model.TMDBDetail
	calls   [][]int64
}

func (s *stubEnricher) FetchBatch(ids []int64) map[int64]model.TMDBDetail {
	s.calls = append(s.calls, ids)
	out := make(map[int64]model.TMDBDetail, len(ids))
	for _, id := range ids {
		out[id] = s.details[id]
	}
	return out
}

func recommendFixture(t *testing.T, enricher Enricher) *RecommendService {
	movies := []model.Movie{
		{ID: 1, Title: "Toy Story", Genres: []string{"Animation", "Comedy", "Family"}, Languages: []string{"en"}, VoteAverage: 4.5, Popularity: 90},
		{ID: 2, Title: "Mad Max", Genres: []string{"Action", "Adventure"}, Languages: []string{"en"}, VoteAverage: 4.0, Popularity: 80},
		{ID: 3, Title: "Amour", Genres: []string{"Romance", "Drama"}, Languages: []string{"fr"}, VoteAverage: 4.2, Popularity: 40},
		{ID: 4, Title: "Raw", Genres: []string{"Horror"}, Languages: []string{"fr"}, Adult: true, VoteAverage: 3.5, Popularity: 30},
		{ID: 5, Title: "The Hangover", Genres: []string{"Comedy"}, Languages: []string{"en"}, VoteAverage: 3.8, Popularity: 70},
		{ID: 6, Title: "Coco", Genres: []string{"Animation", "Family", "Music"}, Languages: []string{"en", "es"}, VoteAverage: 4.6, Popularity: 85},
	}
	embeddings := [][]float32{
		{1, 0},
		{0.95, 0.05},
		{0.5, 0.5},
		{0, 1},
		{0.9, 0.1},
		{0.8, 0.2},
	}

	catalog := buildCatalog(t, movies, embeddings)
	cfg := &config.Config{ImageBaseURL: "https://img.example/t/p/w500"}
	if enricher == nil {
		enricher = &stubEnricher{}
	}
	return NewRecommendService(cfg, catalog, NewSimilarityService(catalog), NewSearchService(catalog), enricher)
}

func genreNames(m model.EnrichedMovie) []string {
	out := make([]string, 0, len(m.Genres))
	for _, g := range m.Genres {
		out = append(out, g.Name)
	}
	return out
}

func TestRecommendForUser_AgeGateBeatsMood(t *testing.T) {
	svc := recommendFixture(t, nil)

	age := 30
	got := svc.RecommendForUser(&model.UserRecommendRequest{Mood: "happy", Age: &age})

	require.NotEmpty(t, got)
	for _, m := range got {
		assert.NotContains(t, genreNames(m), "Animation", "成年用户不应收到动画推荐")
	}
}

func TestRecommendForUser_MoodFilter(t *testing.T) {
	svc := recommendFixture(t, nil)

	age := 10
	got := svc.RecommendForUser(&model.UserRecommendRequest{Mood: "happy", Age: &age})

	ids := make([]int64, 0, len(got))
	for _, m := range got {
		ids = append(ids, m.ID)
	}
	// happy 对应 Comedy/Animation/Family/Music，默认语言 en
	assert.ElementsMatch(t, []int64{1, 5, 6}, ids)
}

func TestRecommendForUser_DislikedExcluded(t *testing.T) {
	svc := recommendFixture(t, nil)

	age := 10
	got := svc.RecommendForUser(&model.UserRecommendRequest{
		Mood: "happy", Age: &age, DislikedMovies: []int64{5},
	})

	for _, m := range got {
		assert.NotEqual(t, int64(5), m.ID)
	}
}

func TestRecommendForUser_LikedBoostReorders(t *testing.T) {
	svc := recommendFixture(t, nil)

	age := 10
	got := svc.RecommendForUser(&model.UserRecommendRequest{
		Mood: "happy", Age: &age, LikedMovies: []int64{5},
	})

	// 无加分时 5 号垫底（3.8×2），+2.0 后应排到首位
	require.NotEmpty(t, got)
	assert.Equal(t, int64(5), got[0].ID)
}

func TestRecommendForUser_WatchlistBoostReorders(t *testing.T) {
	svc := recommendFixture(t, nil)

	age := 10
	got := svc.RecommendForUser(&model.UserRecommendRequest{
		Mood: "happy", Age: &age, Watchlist: []int64{5},
	})

	// 无加分时排序为 6(9.2) > 1(9.0) > 5(7.6)，+1.5 后 5 号升到第二位
	require.Len(t, got, 3)
	assert.Equal(t, int64(6), got[0].ID)
	assert.Equal(t, int64(5), got[1].ID)
	assert.Equal(t, int64(1), got[2].ID)
}

func TestRecommendForUser_SafeModeExcludesAdult(t *testing.T) {
	svc := recommendFixture(t, nil)

	req := &model.UserRecommendRequest{Languages: []string{"fr"}}
	open := svc.RecommendForUser(req)

	hasAdult := false
	for _, m := range open {
		if m.ID == 4 {
			hasAdult = true
		}
	}
	assert.True(t, hasAdult, "非安全模式应包含成人条目")

	req.SafeMode = true
	for _, m := range svc.RecommendForUser(req) {
		assert.NotEqual(t, int64(4), m.ID)
	}
}

func TestRecommendForUser_UnknownMoodSkipsGenreFilter(t *testing.T) {
	svc := recommendFixture(t, nil)

	age := 10
	got := svc.RecommendForUser(&model.UserRecommendRequest{Mood: "grumpy", Age: &age})

	// 未识别的心情不过滤类型，全部 en 条目都是候选
	ids := make([]int64, 0, len(got))
	for _, m := range got {
		ids = append(ids, m.ID)
	}
	assert.ElementsMatch(t, []int64{1, 2, 5, 6}, ids)
}

func TestRecommendByMovie_UnknownID(t *testing.T) {
	svc := recommendFixture(t, nil)

	_, err := svc.RecommendByMovie(999, 10, false, nil)
	assert.ErrorIs(t, err, ErrMovieNotFound)
}

func TestRecommendByMovie_FiltersAndLimit(t *testing.T) {
	svc := recommendFixture(t, nil)

	got, err := svc.RecommendByMovie(1, 2, false, []string{"en"})
	require.NoError(t, err)
	assert.Len(t, got, 2)
	for _, m := range got {
		assert.NotEqual(t, int64(1), m.ID, "相似推荐不应包含源电影")
		assert.NotEqual(t, int64(3), m.ID, "法语条目应被语言过滤")
	}
}

func TestTrending_PopularityOrder(t *testing.T) {
	svc := recommendFixture(t, nil)

	got := svc.Trending(3, false, nil)
	require.Len(t, got, 3)
	assert.Equal(t, int64(1), got[0].ID)
	assert.Equal(t, int64(6), got[1].ID)
	assert.Equal(t, int64(2), got[2].ID)
}

func TestTopRated_RatingOrder(t *testing.T) {
	svc := recommendFixture(t, nil)

	got := svc.TopRated(2, false, nil)
	require.Len(t, got, 2)
	assert.Equal(t, int64(6), got[0].ID)
	assert.Equal(t, int64(1), got[1].ID)
}

func TestEnrich_OrderFollowsInput(t *testing.T) {
	enricher := &stubEnricher{details: map[int64]model.TMDBDetail{
		2: {VoteAverage: 8.1, Genres: []model.Genre{{Name: "Action"}}},
	}}
	svc := recommendFixture(t, enricher)

	got := svc.enrich([]model.Movie{
		{ID: 5, Title: "The Hangover"},
		{ID: 2, Title: "Mad Max"},
	})

	require.Len(t, got, 2)
	assert.Equal(t, int64(5), got[0].ID)
	assert.Equal(t, int64(2), got[1].ID)
	assert.Equal(t, 8.1, got[1].VoteAverage)
}

func TestMergeMovie_PosterPolicy(t *testing.T) {
	svc := recommendFixture(t, nil)

	// 优先 TMDB 海报，拼上图片前缀
	m := model.Movie{ID: 1, PosterPath: "/local.jpg"}
	got := svc.mergeMovie(&m, model.TMDBDetail{PosterPath: "/tmdb.jpg", VoteAverage: 7})
	require.NotNil(t, got.PosterPath)
	assert.Equal(t, "https://img.example/t/p/w500/tmdb.jpg", *got.PosterPath)

	// TMDB 缺失时用本地相对路径，同样拼前缀
	got = svc.mergeMovie(&m, model.TMDBDetail{})
	require.NotNil(t, got.PosterPath)
	assert.Equal(t, "https://img.example/t/p/w500/local.jpg", *got.PosterPath)

	// 本地已是完整 URL 则原样保留
	m.PosterPath = "https://cdn.example/p.jpg"
	got = svc.mergeMovie(&m, model.TMDBDetail{})
	require.NotNil(t, got.PosterPath)
	assert.Equal(t, "https://cdn.example/p.jpg", *got.PosterPath)

	// 两边都没有则为 null
	m.PosterPath = ""
	got = svc.mergeMovie(&m, model.TMDBDetail{})
	assert.Nil(t, got.PosterPath)
}

func TestMergeMovie_RatingAndGenreFallback(t *testing.T) {
	svc := recommendFixture(t, nil)
	m := model.Movie{ID: 1, VoteAverage: 4.2, Genres: []string{"Drama"}, Adult: true}

	// TMDB 详情为空时：本地 0~5 分制翻倍，本地类型包装成对象，本地成人标记兜底
	got := svc.mergeMovie(&m, model.TMDBDetail{})
	assert.InDelta(t, 8.4, got.VoteAverage, 1e-9)
	require.Len(t, got.Genres, 1)
	assert.Equal(t, "Drama", got.Genres[0].Name)
	assert.True(t, got.Adult)

	// TMDB 详情非空时全部以 TMDB 为准
	detail := model.TMDBDetail{VoteAverage: 9.1, Genres: []model.Genre{{Name: "Crime"}}}
	got = svc.mergeMovie(&m, detail)
	assert.Equal(t, 9.1, got.VoteAverage)
	assert.Equal(t, "Crime", got.Genres[0].Name)
	assert.False(t, got.Adult)
}

func TestMergeMovie_Idempotent(t *testing.T) {
	svc := recommendFixture(t, nil)
	m := model.Movie{ID: 2, Title: "Mad Max", PosterPath: "/p.jpg", VoteAverage: 4.0, Genres: []string{"Action"}}
	detail := model.TMDBDetail{PosterPath: "/t.jpg", VoteAverage: 8.1}

	first := svc.mergeMovie(&m, detail)
	second := svc.mergeMovie(&m, detail)
	assert.Equal(t, first, second)
}
