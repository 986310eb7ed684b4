package processor

import (
	"context"

	"resume-screener-go/internal/types"
)

// TextExtractor 简历文本提取接口
type TextExtractor interface {
	// Extract 从内存中的文件内容构建文档记录
	Extract(ctx context.Context, data []byte, filename string) (*types.ResumeDocument, error)
	// ExtractFile 从本地文件构建文档记录
	ExtractFile(ctx context.Context, path string) (*types.ResumeDocument, error)
	// Supported 按文件名判断格式是否受支持
	Supported(filename string) bool
}

// Grader 简历评分接口，规则评分器与模拟评分器均实现此接口
type Grader interface {
	// Grade 返回总分、命中技能与分项明细
	Grade(text string, positionID string) (int, []string, types.ScoreBreakdown)
}

// SentenceFilter 句子分类与隐私过滤接口
type SentenceFilter interface {
	Process(sentences []string) types.ClassificationResult
}
