package model

import (
	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
)

// Movie 本地电影目录行（启动时整表加载，加载后只读）
type Movie struct {
	ID          int64            `json:"id" db:"id" gorm:"primaryKey"`
	Title       string           `json:"title" db:"title"`
	ReleaseDate string           `json:"release_date" db:"release_date"`
	Runtime     int              `json:"runtime" db:"runtime"`
	Adult       bool             `json:"adult" db:"adult"`
	Overview    string           `json:"overview" db:"overview"`
	Popularity  float64          `json:"popularity" db:"popularity" gorm:"index"`
	VoteAverage float64          `json:"vote_average" db:"vote_average" gorm:"index"` // 0~5 分制
	Genres      pq.StringArray   `json:"genres" db:"genres" gorm:"type:text[]"`
	Languages   pq.StringArray   `json:"spoken_languages" db:"spoken_languages" gorm:"column:spoken_languages;type:text[]"`
	PosterPath  string           `json:"poster_path" db:"poster_path"`
	Embedding   *pgvector.Vector `json:"-" db:"embedding" gorm:"type:vector(384)"`

	// 以下为目录构建时派生的字段，不落库
	TitleClean string `json:"-" db:"-" gorm:"-"`
	TitleLen   int    `json:"-" db:"-" gorm:"-"` // 按 Unicode 字符计数
}

// TableName 指定表名
func (Movie) TableName() string {
	return "movies"
}
