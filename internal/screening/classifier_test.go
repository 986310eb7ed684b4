package screening

import (
	"testing"

	"resume-screener-go/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestClassifyCategories 各类别的关键词规则
func TestClassifyCategories(t *testing.T) {
	classifier := NewSentenceClassifier(DefaultSensitiveCategories())

	cases := []struct {
		sentence string
		want     types.SentenceCategory
	}{
		{"Contact me at john@example.com", types.CategoryPersonalInfo},
		{"Phone: 555-0100", types.CategoryPersonalInfo},
		{"AWS Certified Solutions Architect", types.CategoryCertification},
		{"Expert in cloud infrastructure", types.CategorySkill},
		{"Skills: Python, Go, SQL", types.CategorySkill},
		{"5 years of backend development", types.CategoryExperience},
		{"Worked at a fintech startup", types.CategoryExperience},
		{"Master degree from State University", types.CategoryEducation},
		{"Objective: grow into a lead role", types.CategoryObjectives},
		{"A dedicated and curious person", types.CategorySummary},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, classifier.Classify(tc.sentence), "句子: %s", tc.sentence)
	}
}

// TestProcessPrivacyFilter 敏感类别句子应从过滤文本中移除
func TestProcessPrivacyFilter(t *testing.T) {
	classifier := NewSentenceClassifier(DefaultSensitiveCategories())

	sentences := []string{
		"Email: jane@example.com.",
		"Senior engineer with 8 years of experience.",
		"Skills: Python and AWS.",
	}

	result := classifier.Process(sentences)
	require.Len(t, result.Sentences, 3)
	assert.Equal(t, 1, result.RemovedCount, "含邮箱的句子应被移除")
	assert.NotContains(t, result.FilteredText, "jane@example.com", "过滤文本不应包含个人信息")
	assert.Contains(t, result.FilteredText, "Senior engineer")
	assert.Equal(t, 1, result.CategoryCounts[types.CategoryPersonalInfo])
	assert.Equal(t, 1, result.CategoryCounts[types.CategorySkill])
}

// TestProcessWithoutFilter 未配置敏感类别时保留全部句子
func TestProcessWithoutFilter(t *testing.T) {
	classifier := NewSentenceClassifier(nil)

	result := classifier.Process([]string{"Email: a@b.com.", "Worked for 3 years."})
	assert.Zero(t, result.RemovedCount)
	assert.Contains(t, result.FilteredText, "a@b.com")
}
