package repository

import (
	"fmt"

	"github.com/pgvector/pgvector-go"
	"github.com/user/movierec/internal/model"
	"gorm.io/gorm"
)

type MovieRepository struct {
	db *gorm.DB
}

func NewMovieRepository(db *gorm.DB) *MovieRepository {
	return &MovieRepository{db: db}
}

// LoadAll 按 ID 升序加载全部电影及其向量
// 单条查询一次性返回，行与向量天然一一对应
func (r *MovieRepository) LoadAll() ([]model.Movie, [][]float32, error) {
	rows, err := r.db.Model(&model.Movie{}).
		Select("id", "title",
			"COALESCE(release_date, '') AS release_date",
			"COALESCE(runtime, 0) AS runtime",
			"adult",
			"COALESCE(overview, '') AS overview",
			"popularity", "vote_average", "genres", "spoken_languages",
			"COALESCE(poster_path, '') AS poster_path",
			"embedding").
		Order("id ASC").
		Rows()
	if err != nil {
		return nil, nil, fmt.Errorf("查询电影目录失败: %w", err)
	}
	defer rows.Close()

	var movies []model.Movie
	var embeddings [][]float32
	for rows.Next() {
		var m model.Movie
		var emb pgvector.Vector
		if err := rows.Scan(
			&m.ID, &m.Title, &m.ReleaseDate, &m.Runtime, &m.Adult, &m.Overview,
			&m.Popularity, &m.VoteAverage, &m.Genres, &m.Languages, &m.PosterPath, &emb,
		); err != nil {
			return nil, nil, fmt.Errorf("解析电影行失败: %w", err)
		}
		movies = append(movies, m)
		embeddings = append(embeddings, emb.Slice())
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("遍历电影目录失败: %w", err)
	}

	return movies, embeddings, nil
}
