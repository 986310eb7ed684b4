package constants

import "time"

const (
	// ScorerVersion 当前评分规则版本，随结果一同持久化，便于规则演进后区分历史数据
	ScorerVersion = "1.0"

	// ReportCacheDuration 筛选报告缓存默认时长
	ReportCacheDuration = time.Hour

	// DedupeExpireDuration 去重记录默认过期时长
	DedupeExpireDuration = 30 * 24 * time.Hour

	// MaxResumeFileSize 单份简历文件大小上限（字节）
	MaxResumeFileSize = 20 << 20
)
