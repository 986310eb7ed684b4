package evaluation

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"resume-screener-go/internal/types"
)

const (
	// defaultTolerance 人工与自动评分视为一致的默认分差
	defaultTolerance = 5
	// defaultManualReviewPerResume 人工审阅单份简历的估算耗时
	defaultManualReviewPerResume = 5 * time.Minute
)

// Baseline 人工评审基准，由JSON文件提供
type Baseline struct {
	// Grades 文件名到人工评分的映射
	Grades map[string]int `json:"grades"`
	// Ranking 人工排序的文件名列表，从优到劣
	Ranking []string `json:"ranking"`
	// Tolerance 一致性容差，0取默认值
	Tolerance int `json:"tolerance"`
	// TopN 排名重合比较的N，0取Ranking长度
	TopN int `json:"top_n"`
}

// LoadBaseline 从JSON文件加载人工基准
func LoadBaseline(path string) (*Baseline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取基准文件 %s 失败: %w", path, err)
	}
	var b Baseline
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("解析基准文件 %s 失败: %w", path, err)
	}
	if len(b.Grades) == 0 && len(b.Ranking) == 0 {
		return nil, fmt.Errorf("基准文件 %s 不含评分或排名", path)
	}
	return &b, nil
}

// Summary 一次筛选运行相对人工基准的评估汇总
type Summary struct {
	Accuracy    GradeAccuracy `json:"accuracy"`
	TopN        int           `json:"top_n"`
	TopNOverlap float64       `json:"top_n_overlap"`
	TimeSavings TimeSavings   `json:"time_savings"`
}

// Evaluate 用人工基准评估一次筛选运行的结果
func Evaluate(results []types.ScoreRecord, baseline *Baseline, elapsed time.Duration) Summary {
	tolerance := baseline.Tolerance
	if tolerance <= 0 {
		tolerance = defaultTolerance
	}
	topN := baseline.TopN
	if topN <= 0 {
		topN = len(baseline.Ranking)
	}

	return Summary{
		Accuracy:    CompareGrades(results, baseline.Grades, tolerance),
		TopN:        topN,
		TopNOverlap: TopNOverlap(results, baseline.Ranking, topN),
		TimeSavings: EstimateTimeSavings(len(results), defaultManualReviewPerResume, elapsed),
	}
}
