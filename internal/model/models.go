package model

// Genre TMDB 风格的类型对象
type Genre struct {
	Name string `json:"name"`
}

// TMDBDetail TMDB 补充信息
// 零值表示"已完成获取但没有可用数据"，调用方可直接使用，但不会进入缓存
type TMDBDetail struct {
	PosterPath  string  `json:"poster_path"`
	VoteAverage float64 `json:"vote_average"` // 0~10 分制
	Genres      []Genre `json:"genres"`
	Adult       bool    `json:"adult"`
}

// IsEmpty 判断记录是否完全为空
func (d TMDBDetail) IsEmpty() bool {
	return d.PosterPath == "" && d.VoteAverage == 0 && len(d.Genres) == 0 && !d.Adult
}

// EnrichedMovie 本地目录与 TMDB 数据合并后的对外电影结构
type EnrichedMovie struct {
	ID          int64    `json:"id"`
	Title       string   `json:"title"`
	ReleaseDate string   `json:"release_date"`
	Runtime     int      `json:"runtime"`
	Adult       bool     `json:"adult"`
	Overview    string   `json:"overview"`
	Popularity  float64  `json:"popularity"`
	Languages   []string `json:"spoken_languages"`
	VoteAverage float64  `json:"vote_average"` // 统一 0~10 分制
	PosterPath  *string  `json:"poster_path"`  // null 表示没有任何可用海报
	Genres      []Genre  `json:"genres"`
}

// UserRecommendRequest 用户画像推荐请求体
type UserRecommendRequest struct {
	Mood           string   `json:"mood"`
	Languages      []string `json:"language"`
	SafeMode       bool     `json:"safe_mode"`
	LikedMovies    []int64  `json:"liked_movies"`
	DislikedMovies []int64  `json:"disliked_movies"`
	Watchlist      []int64  `json:"watchlist"`
	Age            *int     `json:"age"`
}

// RecommendQuery /recommendations 查询参数
type RecommendQuery struct {
	MovieID   int64  `form:"movie_id" binding:"required"`
	Limit     int    `form:"limit,default=10" binding:"omitempty,gte=1,lte=50"`
	SafeMode  bool   `form:"safe_mode"`
	Languages string `form:"languages"` // 逗号分隔，如 "en,fr"
}

// ListQuery /trending 与 /top-rated 查询参数
type ListQuery struct {
	Limit     int    `form:"limit,default=10" binding:"omitempty,gte=1,lte=50"`
	SafeMode  bool   `form:"safe_mode"`
	Languages string `form:"languages"`
}

// ModelStatus 本地模型与目录状态
type ModelStatus struct {
	ModelLoaded    bool   `json:"model_loaded"`
	ModelName      string `json:"model_name"`
	MovieCount     int    `json:"movie_count"`
	EmbeddingCount int    `json:"embedding_count"`
	EmbeddingDim   int    `json:"embedding_dim"`
}
