// Package evaluation 比较自动筛选结果与人工基准，衡量评分规则的质量
package evaluation

import (
	"math"
	"sort"
	"time"

	"resume-screener-go/internal/types"
)

// GradeAccuracy 自动评分与人工评分的一致性指标
type GradeAccuracy struct {
	// Compared 参与比较的简历数（两侧都有评分）
	Compared int `json:"compared"`
	// WithinTolerance 偏差不超过容差的比例 [0,1]
	WithinTolerance float64 `json:"within_tolerance"`
	// MeanAbsoluteError 平均绝对偏差
	MeanAbsoluteError float64 `json:"mean_absolute_error"`
	// StdDeviation 偏差的标准差
	StdDeviation float64 `json:"std_deviation"`
}

// CompareGrades 按文件名对齐自动评分与人工评分，容差内视为一致
// 只有两侧都出现的简历参与比较
func CompareGrades(automated []types.ScoreRecord, manual map[string]int, tolerance int) GradeAccuracy {
	if tolerance < 0 {
		tolerance = 0
	}

	var diffs []float64
	within := 0
	for _, rec := range automated {
		manualGrade, ok := manual[rec.Filename]
		if !ok {
			continue
		}
		diff := math.Abs(float64(rec.Grade - manualGrade))
		diffs = append(diffs, diff)
		if diff <= float64(tolerance) {
			within++
		}
	}

	acc := GradeAccuracy{Compared: len(diffs)}
	if len(diffs) == 0 {
		return acc
	}

	sum := 0.0
	for _, d := range diffs {
		sum += d
	}
	mean := sum / float64(len(diffs))

	variance := 0.0
	for _, d := range diffs {
		variance += (d - mean) * (d - mean)
	}
	variance /= float64(len(diffs))

	acc.WithinTolerance = float64(within) / float64(len(diffs))
	acc.MeanAbsoluteError = mean
	acc.StdDeviation = math.Sqrt(variance)
	return acc
}

// TopNOverlap 自动排名前N与人工排名前N的重合比例 [0,1]
// n 超过任一侧长度时按较短侧截断
func TopNOverlap(automated []types.ScoreRecord, manualRanking []string, n int) float64 {
	if n <= 0 {
		return 0
	}

	autoSorted := make([]types.ScoreRecord, len(automated))
	copy(autoSorted, automated)
	sort.SliceStable(autoSorted, func(i, j int) bool {
		return autoSorted[i].Grade > autoSorted[j].Grade
	})

	if n > len(autoSorted) {
		n = len(autoSorted)
	}
	if n > len(manualRanking) {
		n = len(manualRanking)
	}
	if n == 0 {
		return 0
	}

	autoTop := make(map[string]bool, n)
	for _, rec := range autoSorted[:n] {
		autoTop[rec.Filename] = true
	}

	overlap := 0
	for _, name := range manualRanking[:n] {
		if autoTop[name] {
			overlap++
		}
	}
	return float64(overlap) / float64(n)
}

// TimeSavings 自动筛选相对人工审阅的时间节省估算
type TimeSavings struct {
	ManualReview    time.Duration `json:"manual_review"`
	AutomatedReview time.Duration `json:"automated_review"`
	Saved           time.Duration `json:"saved"`
	// SavedRatio 节省比例 [0,1]
	SavedRatio float64 `json:"saved_ratio"`
}

// EstimateTimeSavings 按每份简历的人工审阅耗时估算节省
func EstimateTimeSavings(resumeCount int, perResumeManual, automatedTotal time.Duration) TimeSavings {
	manual := time.Duration(resumeCount) * perResumeManual
	saved := manual - automatedTotal
	if saved < 0 {
		saved = 0
	}

	ts := TimeSavings{
		ManualReview:    manual,
		AutomatedReview: automatedTotal,
		Saved:           saved,
	}
	if manual > 0 {
		ts.SavedRatio = float64(saved) / float64(manual)
	}
	return ts
}
