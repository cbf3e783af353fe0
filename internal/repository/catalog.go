package repository

import (
	"fmt"
	"unicode/utf8"

	"github.com/user/movierec/internal/model"
	"github.com/user/movierec/internal/utils"
)

// Catalog 常驻内存的电影目录
// 启动时一次性构建，之后只读，所有请求共享同一份数据
type Catalog struct {
	movies     []model.Movie
	embeddings [][]float32
	index      map[int64]int // movie id -> 行号
	dim        int
}

// NewCatalog 构建目录并派生检索字段，行数与向量数不一致时拒绝构建
func NewCatalog(movies []model.Movie, embeddings [][]float32) (*Catalog, error) {
	if len(movies) != len(embeddings) {
		return nil, fmt.Errorf("目录行数与向量数不一致: %d != %d", len(movies), len(embeddings))
	}

	index := make(map[int64]int, len(movies))
	dim := 0
	for i := range movies {
		m := &movies[i]
		m.TitleClean = utils.NormalizeText(m.Title)
		m.TitleLen = utf8.RuneCountInString(m.TitleClean)
		index[m.ID] = i
		if dim == 0 && len(embeddings[i]) > 0 {
			dim = len(embeddings[i])
		}
	}

	return &Catalog{
		movies:     movies,
		embeddings: embeddings,
		index:      index,
		dim:        dim,
	}, nil
}

// Len 目录行数
func (c *Catalog) Len() int {
	return len(c.movies)
}

// Dim 向量维度
func (c *Catalog) Dim() int {
	return c.dim
}

// Movies 全部目录行，调用方不得修改
func (c *Catalog) Movies() []model.Movie {
	return c.movies
}

// Embeddings 向量矩阵，与 Movies 按行对齐
func (c *Catalog) Embeddings() [][]float32 {
	return c.embeddings
}

// IndexOf 返回电影在目录中的行号
func (c *Catalog) IndexOf(id int64) (int, bool) {
	i, ok := c.index[id]
	return i, ok
}

// ByID 按 ID 取电影
func (c *Catalog) ByID(id int64) (*model.Movie, bool) {
	i, ok := c.index[id]
	if !ok {
		return nil, false
	}
	return &c.movies[i], true
}

// At 按行号取电影
func (c *Catalog) At(i int) *model.Movie {
	return &c.movies[i]
}
