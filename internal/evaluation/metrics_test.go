package evaluation

import (
	"testing"
	"time"

	"resume-screener-go/internal/types"

	"github.com/stretchr/testify/assert"
)

func records() []types.ScoreRecord {
	return []types.ScoreRecord{
		{Filename: "a.pdf", Grade: 90},
		{Filename: "b.pdf", Grade: 70},
		{Filename: "c.pdf", Grade: 55},
		{Filename: "d.pdf", Grade: 40},
	}
}

// TestCompareGrades 容差内的一致率与误差统计
func TestCompareGrades(t *testing.T) {
	manual := map[string]int{
		"a.pdf": 85, // 偏差5，容差内
		"b.pdf": 72, // 偏差2，容差内
		"c.pdf": 75, // 偏差20，超出容差
		"x.pdf": 60, // 自动侧没有，忽略
	}

	acc := CompareGrades(records(), manual, 10)
	assert.Equal(t, 3, acc.Compared)
	assert.InDelta(t, 2.0/3.0, acc.WithinTolerance, 0.001)
	assert.InDelta(t, 9.0, acc.MeanAbsoluteError, 0.001, "(5+2+20)/3")
	assert.Greater(t, acc.StdDeviation, 0.0)
}

// TestCompareGradesEmpty 没有可比较的简历
func TestCompareGradesEmpty(t *testing.T) {
	acc := CompareGrades(records(), map[string]int{"zzz.pdf": 50}, 10)
	assert.Equal(t, 0, acc.Compared)
	assert.Zero(t, acc.WithinTolerance)
	assert.Zero(t, acc.MeanAbsoluteError)
}

// TestTopNOverlap 前N重合比例
func TestTopNOverlap(t *testing.T) {
	// 自动前2: a, b
	assert.InDelta(t, 1.0, TopNOverlap(records(), []string{"b.pdf", "a.pdf"}, 2), 0.001, "顺序无关，只看集合")
	assert.InDelta(t, 0.5, TopNOverlap(records(), []string{"a.pdf", "c.pdf"}, 2), 0.001)
	assert.Zero(t, TopNOverlap(records(), []string{"x.pdf", "y.pdf"}, 2))
	assert.Zero(t, TopNOverlap(records(), []string{"a.pdf"}, 0))

	// n超过数据长度时截断
	assert.InDelta(t, 1.0, TopNOverlap(records()[:1], []string{"a.pdf"}, 5), 0.001)
}

// TestEstimateTimeSavings 时间节省估算
func TestEstimateTimeSavings(t *testing.T) {
	ts := EstimateTimeSavings(100, 5*time.Minute, 30*time.Second)
	assert.Equal(t, 500*time.Minute, ts.ManualReview)
	assert.Equal(t, 500*time.Minute-30*time.Second, ts.Saved)
	assert.InDelta(t, 0.999, ts.SavedRatio, 0.001)

	// 自动耗时超过人工时不出现负节省
	ts = EstimateTimeSavings(1, time.Second, time.Minute)
	assert.Equal(t, time.Duration(0), ts.Saved)
	assert.Zero(t, ts.SavedRatio)
}
