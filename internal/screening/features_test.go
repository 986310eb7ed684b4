package screening

import (
	"testing"

	"resume-screener-go/internal/types"

	"github.com/stretchr/testify/assert"
)

// TestMatchSkillsWordBoundary 技能匹配必须是词边界安全的
func TestMatchSkillsWordBoundary(t *testing.T) {
	extractor := NewFeatureExtractor(DefaultSkillTable())

	// "javascript" 不应同时命中 "java"
	skills := extractor.MatchSkills("proficient in javascript")
	assert.Contains(t, skills, "javascript")
	assert.NotContains(t, skills, "java", "javascript中不应匹配出java")

	// "said" 不应命中 "ai"
	skills = extractor.MatchSkills("he said nothing")
	assert.NotContains(t, skills, "ai")

	// 含标点的技能词
	skills = extractor.MatchSkills("built services with node.js and react")
	assert.Contains(t, skills, "node.js")
	assert.Contains(t, skills, "react")
}

// TestMatchSkillsDeterministicOrder 技能结果应排序以保证确定性
func TestMatchSkillsDeterministicOrder(t *testing.T) {
	extractor := NewFeatureExtractor(DefaultSkillTable())

	first := extractor.MatchSkills("python aws docker kubernetes sql redis")
	for i := 0; i < 10; i++ {
		again := extractor.MatchSkills("python aws docker kubernetes sql redis")
		assert.Equal(t, first, again, "多次抽取的技能顺序应一致")
	}
	assert.IsIncreasing(t, first, "技能应按字典序返回")
}

// TestEstimateYearsExplicit 显式年限声明优先
func TestEstimateYearsExplicit(t *testing.T) {
	cases := []struct {
		text string
		want float64
	}{
		{"10 years experience in backend", 10},
		{"5 years of experience", 5},
		{"1 year experience", 1},
		{"no mention at all", 0},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, EstimateYears(tc.text), "文本: %s", tc.text)
	}
}

// TestEstimateYearsFromDates 无显式声明时按年份跨度估算并裁剪
func TestEstimateYearsFromDates(t *testing.T) {
	// (2024-2016)/10 = 0.8
	assert.InDelta(t, 0.8, EstimateYears("worked at acme 2016 until 2024"), 0.001)

	// 超过上限裁剪到20：(2024-1900)/10 = 12.4，未超限
	assert.InDelta(t, 12.4, EstimateYears("born 1900, retired 2024"), 0.001)

	// 超出[1900,2024]的年份被忽略
	assert.Equal(t, 0.0, EstimateYears("order #2097 ref 2150"))

	// 单一年份无法估算
	assert.Equal(t, 0.0, EstimateYears("graduated 2020"))
}

// TestDetectEducationPriority 学历识别按博士>硕士>学士优先
func TestDetectEducationPriority(t *testing.T) {
	cases := []struct {
		text string
		want types.EducationLevel
	}{
		{"phd in computer science and ms in math", types.EducationDoctorate},
		{"master of science, bachelor of engineering", types.EducationMaster},
		{"bs in computer science", types.EducationBachelor},
		{"b.tech graduate", types.EducationBachelor},
		{"self taught engineer", types.EducationNone},
		// 词边界：systems 不应被当作 ms
		{"designed distributed systems", types.EducationNone},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, DetectEducation(tc.text), "文本: %s", tc.text)
	}
}

// TestExtractFullFeatureSet 组合抽取
func TestExtractFullFeatureSet(t *testing.T) {
	extractor := NewFeatureExtractor(DefaultSkillTable())

	features := extractor.Extract(seniorEngineerResume)
	assert.Equal(t, 10.0, features.YearsExperience)
	assert.Equal(t, types.EducationMaster, features.Education)
	assert.Subset(t, features.Skills, []string{"python", "aws", "docker", "kubernetes", "sql"})
}

// TestSummarize 摘要词数预算
func TestSummarize(t *testing.T) {
	assert.Equal(t, "a b c", Summarize("a b c", 5), "词数未超限时不应截断")
	assert.Equal(t, "a b c...", Summarize("a b c d e", 3), "超限时截断并追加省略号")
	assert.Equal(t, "", Summarize("", 10))
}
