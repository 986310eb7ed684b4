package screening

import (
	"testing"

	"resume-screener-go/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(filename string, grade int) types.ScoreRecord {
	return types.ScoreRecord{Filename: filename, Grade: grade}
}

// TestRankOrderAndTruncate 降序排序并截断到TopN
func TestRankOrderAndTruncate(t *testing.T) {
	ranker := NewRanker(3, 0)

	records := []types.ScoreRecord{
		record("low.txt", 45),
		record("top.txt", 92),
		record("mid.txt", 70),
		record("bottom.txt", 31),
	}

	ranked := ranker.Rank(records)
	require.Len(t, ranked, 3, "应截断到TopN")
	assert.Equal(t, "top.txt", ranked[0].Record.Filename)
	assert.Equal(t, "mid.txt", ranked[1].Record.Filename)
	assert.Equal(t, "low.txt", ranked[2].Record.Filename)
	assert.Equal(t, 1, ranked[0].Rank)
	assert.Equal(t, 3, ranked[2].Rank)

	// 输入切片不应被修改
	assert.Equal(t, "low.txt", records[0].Filename, "Rank不应有副作用")
}

// TestRankStableTies 同分记录保持输入顺序
func TestRankStableTies(t *testing.T) {
	ranker := NewRanker(0, 0)

	records := []types.ScoreRecord{
		record("first.txt", 80),
		record("second.txt", 80),
		record("third.txt", 80),
	}

	ranked := ranker.Rank(records)
	require.Len(t, ranked, 3)
	assert.Equal(t, "first.txt", ranked[0].Record.Filename, "同分时应保持遇到顺序")
	assert.Equal(t, "second.txt", ranked[1].Record.Filename)
	assert.Equal(t, "third.txt", ranked[2].Record.Filename)
}

// TestRankMinGradeFilter 低于阈值的记录被过滤
func TestRankMinGradeFilter(t *testing.T) {
	ranker := NewRanker(10, 70)

	records := []types.ScoreRecord{
		record("strong.txt", 88),
		record("weak.txt", 55),
		record("borderline.txt", 70),
	}

	ranked := ranker.Rank(records)
	require.Len(t, ranked, 2, "阈值过滤后只剩两条")
	assert.Equal(t, "strong.txt", ranked[0].Record.Filename)
	assert.Equal(t, "borderline.txt", ranked[1].Record.Filename, "等于阈值的记录应保留")
}

// TestRecommendationReason 推荐理由的规则生成
func TestRecommendationReason(t *testing.T) {
	high := types.ScoreRecord{Grade: 90, PositionMatch: 85, YearsExperience: 8}
	assert.Equal(t,
		"high overall score; excellent skill match for position; significant experience",
		recommendationReason(high))

	low := types.ScoreRecord{Grade: 40, PositionMatch: 10, YearsExperience: 0}
	assert.Equal(t, "meets basic requirements", recommendationReason(low))
}

// TestStatistics 统计量计算
func TestStatistics(t *testing.T) {
	stats := Statistics([]types.ScoreRecord{
		record("a.txt", 90),
		record("b.txt", 60),
		record("c.txt", 75),
	})
	assert.Equal(t, 3, stats.TotalCandidates)
	assert.Equal(t, 90, stats.HighestGrade)
	assert.Equal(t, 60, stats.LowestGrade)
	assert.InDelta(t, 75.0, stats.AverageGrade, 0.001)

	empty := Statistics(nil)
	assert.Zero(t, empty.TotalCandidates)
	assert.Zero(t, empty.AverageGrade)
}
