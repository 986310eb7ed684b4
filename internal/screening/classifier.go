package screening

import (
	"strings"

	"resume-screener-go/internal/types"
)

// SentenceClassifier 规则句子分类器
// 按关键词将句子归入七个类别之一，并依据敏感类别做隐私过滤
type SentenceClassifier struct {
	sensitive map[types.SentenceCategory]bool
}

// NewSentenceClassifier 构造分类器，sensitive 列出需要在过滤文本中移除的类别
func NewSentenceClassifier(sensitive []types.SentenceCategory) *SentenceClassifier {
	set := make(map[types.SentenceCategory]bool, len(sensitive))
	for _, c := range sensitive {
		set[c] = true
	}
	return &SentenceClassifier{sensitive: set}
}

// Classify 对单个句子分类。规则按优先级从上到下匹配
func (c *SentenceClassifier) Classify(sentence string) types.SentenceCategory {
	lower := strings.ToLower(sentence)

	switch {
	case strings.Contains(lower, "@") ||
		strings.Contains(lower, "email") ||
		strings.Contains(lower, "phone"):
		return types.CategoryPersonalInfo
	case strings.Contains(lower, "certification") ||
		strings.Contains(lower, "certified"):
		return types.CategoryCertification
	case strings.Contains(lower, "skill") ||
		strings.Contains(lower, "expert") ||
		strings.Contains(lower, "proficient"):
		return types.CategorySkill
	case strings.Contains(lower, "experience") ||
		strings.Contains(lower, "year") ||
		strings.Contains(lower, "worked"):
		return types.CategoryExperience
	case strings.Contains(lower, "university") ||
		strings.Contains(lower, "degree") ||
		strings.Contains(lower, "bachelor") ||
		strings.Contains(lower, "master") ||
		strings.Contains(lower, "phd"):
		return types.CategoryEducation
	case strings.Contains(lower, "objective") ||
		strings.Contains(lower, "seeking") ||
		strings.Contains(lower, "eager to"):
		return types.CategoryObjectives
	default:
		return types.CategorySummary
	}
}

// Process 对整份简历的句子做分类与隐私过滤
func (c *SentenceClassifier) Process(sentences []string) types.ClassificationResult {
	result := types.ClassificationResult{
		Sentences:      make([]types.ClassifiedSentence, 0, len(sentences)),
		CategoryCounts: make(map[types.SentenceCategory]int),
	}

	var kept []string
	for _, sentence := range sentences {
		category := c.Classify(sentence)
		result.Sentences = append(result.Sentences, types.ClassifiedSentence{
			Sentence: sentence,
			Category: category,
		})
		result.CategoryCounts[category]++

		if c.sensitive[category] {
			result.RemovedCount++
			continue
		}
		kept = append(kept, sentence)
	}

	result.FilteredText = strings.Join(kept, " ")
	return result
}
