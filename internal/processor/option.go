package processor

import (
	"resume-screener-go/internal/screening"
	"resume-screener-go/internal/storage"

	"github.com/rs/zerolog"
)

// ComponentOpt 组件选项，仅改变 Components 结构体内的字段
type ComponentOpt func(*Components)

// SettingOpt 设置选项，仅改变 Settings 结构体内的字段
type SettingOpt func(*Settings)

// ----- 组件选项 -----

// WithExtractor 设置文本提取组件
func WithExtractor(e TextExtractor) ComponentOpt {
	return func(c *Components) {
		c.Extractor = e
	}
}

// WithGrader 设置评分组件
func WithGrader(g Grader) ComponentOpt {
	return func(c *Components) {
		c.Grader = g
	}
}

// WithClassifier 设置句子分类组件
func WithClassifier(f SentenceFilter) ComponentOpt {
	return func(c *Components) {
		c.Classifier = f
	}
}

// WithMatcher 设置岗位匹配组件
func WithMatcher(m *screening.PositionMatcher) ComponentOpt {
	return func(c *Components) {
		c.Matcher = m
	}
}

// WithRanker 设置排名组件
func WithRanker(r *screening.Ranker) ComponentOpt {
	return func(c *Components) {
		c.Ranker = r
	}
}

// WithStorage 设置存储组件
func WithStorage(s *storage.Storage) ComponentOpt {
	return func(c *Components) {
		c.Storage = s
	}
}

// ----- 设置选项 -----

// WithTargetPosition 设置默认目标岗位
func WithTargetPosition(position string) SettingOpt {
	return func(s *Settings) {
		s.TargetPosition = position
	}
}

// WithSummaryMaxWords 设置摘要词数预算
func WithSummaryMaxWords(n int) SettingOpt {
	return func(s *Settings) {
		s.SummaryMaxWords = n
	}
}

// WithRemovePersonalInfo 设置是否启用隐私过滤
func WithRemovePersonalInfo(enabled bool) SettingOpt {
	return func(s *Settings) {
		s.RemovePersonalInfo = enabled
	}
}

// WithLogger 设置日志记录器
func WithLogger(logger zerolog.Logger) SettingOpt {
	return func(s *Settings) {
		s.Logger = logger
	}
}
