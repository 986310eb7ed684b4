package screening

import (
	"fmt"
	"sort"
	"strings"

	"resume-screener-go/internal/types"
)

// Ranker 对评分结果做排序、过滤与截断，不修改输入切片
type Ranker struct {
	// TopN 默认返回的候选人数
	TopN int
	// MinGrade 过滤阈值，0表示不过滤
	MinGrade int
}

// NewRanker 构造排序器
func NewRanker(topN, minGrade int) *Ranker {
	return &Ranker{TopN: topN, MinGrade: minGrade}
}

// Rank 按得分降序稳定排序（同分保持输入顺序），过滤低于阈值的记录并截断到TopN
func (r *Ranker) Rank(records []types.ScoreRecord) []types.RankedCandidate {
	filtered := make([]types.ScoreRecord, 0, len(records))
	for _, rec := range records {
		if r.MinGrade > 0 && rec.Grade < r.MinGrade {
			continue
		}
		filtered = append(filtered, rec)
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Grade > filtered[j].Grade
	})

	n := len(filtered)
	if r.TopN > 0 && n > r.TopN {
		n = r.TopN
	}

	ranked := make([]types.RankedCandidate, 0, n)
	for i := 0; i < n; i++ {
		ranked = append(ranked, types.RankedCandidate{
			Rank:   i + 1,
			Record: filtered[i],
			Reason: recommendationReason(filtered[i]),
		})
	}
	return ranked
}

// SortAll 返回全部记录按得分降序稳定排序后的副本，不做过滤与截断
func (r *Ranker) SortAll(records []types.ScoreRecord) []types.ScoreRecord {
	sorted := make([]types.ScoreRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Grade > sorted[j].Grade
	})
	return sorted
}

// recommendationReason 基于得分、匹配度与年限生成规则化推荐理由
func recommendationReason(rec types.ScoreRecord) string {
	var reasons []string

	switch {
	case rec.Grade >= 85:
		reasons = append(reasons, "high overall score")
	case rec.Grade >= 70:
		reasons = append(reasons, "good overall score")
	}

	switch {
	case rec.PositionMatch >= 80:
		reasons = append(reasons, "excellent skill match for position")
	case rec.PositionMatch >= 60:
		reasons = append(reasons, "good skill match")
	}

	switch {
	case rec.YearsExperience >= 5:
		reasons = append(reasons, "significant experience")
	case rec.YearsExperience >= 3:
		reasons = append(reasons, "adequate experience")
	}

	if len(reasons) == 0 {
		return "meets basic requirements"
	}
	return strings.Join(reasons, "; ")
}

// Statistics 计算一组评分结果的汇总统计
func Statistics(records []types.ScoreRecord) types.ScreeningStatistics {
	stats := types.ScreeningStatistics{TotalCandidates: len(records)}
	if len(records) == 0 {
		return stats
	}

	sum := 0
	stats.HighestGrade = records[0].Grade
	stats.LowestGrade = records[0].Grade
	for _, rec := range records {
		sum += rec.Grade
		if rec.Grade > stats.HighestGrade {
			stats.HighestGrade = rec.Grade
		}
		if rec.Grade < stats.LowestGrade {
			stats.LowestGrade = rec.Grade
		}
	}
	stats.AverageGrade = float64(sum) / float64(len(records))
	return stats
}

// FormatRankLine 生成日志与CLI输出使用的单行排名摘要
func FormatRankLine(c types.RankedCandidate) string {
	return fmt.Sprintf("%d. %s - %d/100 (match %d%%)",
		c.Rank, c.Record.Filename, c.Record.Grade, c.Record.PositionMatch)
}
