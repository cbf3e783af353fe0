package service

import (
	"errors"
	"math"
	"sort"

	"github.com/user/movierec/internal/repository"
)

// ErrMovieNotFound 目录中不存在该电影
var ErrMovieNotFound = errors.New("目录中不存在该电影")

const (
	// similarityWindow 相似度排序后保留的最大候选数，下游过滤后再截取
	similarityWindow = 200
	// zeroNormEpsilon 范数小于该值的向量视为零向量
	zeroNormEpsilon = 1e-10
)

// ScoredMovie 带相似度得分的候选
type ScoredMovie struct {
	Index int // 目录行号
	ID    int64
	Score float64
}

// SimilarityService 基于向量余弦相似度的相似电影检索
type SimilarityService struct {
	catalog *repository.Catalog
}

// NewSimilarityService 创建相似度服务
func NewSimilarityService(catalog *repository.Catalog) *SimilarityService {
	return &SimilarityService{catalog: catalog}
}

// RankBySimilarity 计算源电影与目录中全部电影的相似度并降序排列
// excludeSelf 为 true 时去掉排在首位的源电影自身
func (s *SimilarityService) RankBySimilarity(sourceID int64, excludeSelf bool) ([]ScoredMovie, error) {
	srcIdx, ok := s.catalog.IndexOf(sourceID)
	if !ok {
		return nil, ErrMovieNotFound
	}

	embeddings := s.catalog.Embeddings()
	source := embeddings[srcIdx]

	scored := make([]ScoredMovie, len(embeddings))
	for i := range embeddings {
		scored[i] = ScoredMovie{
			Index: i,
			ID:    s.catalog.At(i).ID,
			Score: CosineSimilarity(source, embeddings[i]),
		}
	}

	// 稳定排序，同分保持目录顺序
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if excludeSelf && len(scored) > 0 && scored[0].ID == sourceID {
		scored = scored[1:]
	}

	if len(scored) > similarityWindow {
		scored = scored[:similarityWindow]
	}
	return scored, nil
}

// CosineSimilarity 计算余弦相似度，累加使用 float64 精度
// 任一向量为零向量时相似度定义为 0
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		x := float64(a[i])
		y := float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}

	if normA < zeroNormEpsilon || normB < zeroNormEpsilon {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
