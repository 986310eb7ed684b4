package screening

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const seniorEngineerResume = "Senior Software Engineer with 10 years experience at Google. " +
	"Skills: Python, AWS, Docker, Kubernetes, SQL. Master's degree."

func newTestScorer() *Scorer {
	return NewScorer(DefaultSkillTable(), DefaultPositionTable(), DefaultScorerConfig())
}

// TestGradeEmptyText 空文本必须返回0分与空技能表，且不报错
func TestGradeEmptyText(t *testing.T) {
	scorer := newTestScorer()

	for _, text := range []string{"", "   ", "\n\t"} {
		grade, skills, breakdown := scorer.Grade(text, "software_engineer")
		assert.Equal(t, 0, grade, "空文本的得分应为0")
		assert.Empty(t, skills, "空文本不应命中任何技能")
		assert.Zero(t, breakdown.Base, "空文本不应有基础分")
	}
}

// TestGradeSeniorEngineerScenario 验证规格中的典型场景
func TestGradeSeniorEngineerScenario(t *testing.T) {
	scorer := newTestScorer()

	grade, skills, breakdown := scorer.Grade(seniorEngineerResume, "software_engineer")

	// 技能命中应至少包含这5项
	for _, want := range []string{"python", "aws", "docker", "kubernetes", "sql"} {
		assert.Contains(t, skills, want, "技能 %s 应被识别", want)
	}

	// 得分应高于基础分且落在配置区间内
	assert.Greater(t, grade, baseScore, "加分后的得分应高于基础分")
	assert.LessOrEqual(t, grade, 95, "得分不应超过上限")

	// 各分量符合预期：经验桶被封顶，硕士学历10分，Google雇主+3
	assert.Equal(t, experienceCap, breakdown.Experience, "10年经验+资深头衔应触发经验桶封顶")
	assert.Equal(t, 10, breakdown.Education, "硕士学历应得10分")
	assert.Equal(t, 3, breakdown.Employer, "单个知名雇主应加3分")
	assert.InDelta(t, 15.625, breakdown.Skills, 0.001, "技能分应按top-10权重和归一化")
}

// TestGradeBounds 任意输入的非零得分都必须落在 [MinGrade, MaxGrade]
func TestGradeBounds(t *testing.T) {
	scorer := newTestScorer()

	inputs := []string{
		"nothing relevant here",
		strings.Repeat(seniorEngineerResume+" ", 20),
		"phd at stanford mit harvard. certified. achievement award published patent improved increased reduced optimized. " +
			"python java javascript aws docker kubernetes sql machine learning ai devops cloud. " +
			"senior lead principal with 30 years experience at google microsoft amazon facebook apple netflix.",
	}
	for _, text := range inputs {
		grade, _, _ := scorer.Grade(text, "software_engineer")
		require.GreaterOrEqual(t, grade, 30, "非空文本得分不应低于下限: %q", text[:20])
		require.LessOrEqual(t, grade, 95, "得分不应高于上限: %q", text[:20])
	}
}

// TestGradeCaseInsensitive 输入大小写不应影响得分
func TestGradeCaseInsensitive(t *testing.T) {
	scorer := newTestScorer()

	gradeLower, skillsLower, _ := scorer.Grade(strings.ToLower(seniorEngineerResume), "software_engineer")
	gradeUpper, skillsUpper, _ := scorer.Grade(strings.ToUpper(seniorEngineerResume), "software_engineer")

	assert.Equal(t, gradeLower, gradeUpper, "大小写不同的相同文本得分应一致")
	assert.Equal(t, skillsLower, skillsUpper, "大小写不同的相同文本技能应一致")
}

// TestGradeDeterministic 相同输入两次评分结果必须一致
func TestGradeDeterministic(t *testing.T) {
	scorer := newTestScorer()

	grade1, skills1, breakdown1 := scorer.Grade(seniorEngineerResume, "software_engineer")
	grade2, skills2, breakdown2 := scorer.Grade(seniorEngineerResume, "software_engineer")

	assert.Equal(t, grade1, grade2, "评分应是确定性的")
	assert.Equal(t, skills1, skills2, "技能识别应是确定性的")
	assert.Equal(t, breakdown1, breakdown2, "分量拆解应是确定性的")
}

// TestGradeMonotonicSkills 在其他条件不变时，增加被识别技能不应降低得分
func TestGradeMonotonicSkills(t *testing.T) {
	scorer := newTestScorer()

	base := "Software developer with 3 years experience."
	additions := []string{"python", "aws", "docker", "kubernetes", "machine learning"}

	prev, _, _ := scorer.Grade(base, "software_engineer")
	text := base
	for _, skill := range additions {
		text += " " + skill
		grade, _, _ := scorer.Grade(text, "software_engineer")
		require.GreaterOrEqual(t, grade, prev, "加入技能 %s 后得分不应下降", skill)
		prev = grade
	}
}

// TestGradeUnknownPosition 未知岗位不应触发岗位加分，但其余评分正常
func TestGradeUnknownPosition(t *testing.T) {
	scorer := newTestScorer()

	gradeKnown, _, _ := scorer.Grade(seniorEngineerResume, "software_engineer")
	gradeUnknown, skills, breakdown := scorer.Grade(seniorEngineerResume, "quant_trader")

	assert.NotEmpty(t, skills, "未知岗位仍应识别技能")
	assert.Zero(t, breakdown.PositionBonus, "未知岗位不应有岗位加分")
	// 已知岗位有必备技能+2加成，得分应不低于未知岗位
	assert.GreaterOrEqual(t, gradeKnown, gradeUnknown)
}

// TestGradePositionBonus 领域技能达到阈值时触发岗位加分
func TestGradePositionBonus(t *testing.T) {
	scorer := newTestScorer()

	text := "DevOps engineer, experience with aws, docker and kubernetes clusters."
	_, _, breakdown := scorer.Grade(text, "devops")
	assert.Equal(t, 5, breakdown.PositionBonus, "aws+docker+kubernetes三项命中应触发devops岗位加分")

	_, _, breakdownSE := scorer.Grade(text, "software_engineer")
	assert.Zero(t, breakdownSE.PositionBonus, "software_engineer岗位未配置加分规则")
}

// TestExperienceScoreTiers 年限档位与日期跨度回退
func TestExperienceScoreTiers(t *testing.T) {
	scorer := newTestScorer()

	cases := []struct {
		name string
		text string
		want int
	}{
		{"无经验章节", "just a plain document", 0},
		{"仅经验章节", "experience section only", experiencePresent},
		{"1年", "experience: 1 year experience", experiencePresent + 5},
		{"3年", "experience: 3 years experience", experiencePresent + 8},
		{"5年", "experience: 5 years experience", experiencePresent + 12},
		{"10年封顶", "experience: 10 years experience", experienceCap},
		{"日期跨度回退", "experience at acme 2016-2020", experiencePresent + dateRangeFallback},
		{"仅资深头衔", "senior developer", seniorityBonus},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := scorer.experienceScore(tc.text)
			assert.Equal(t, tc.want, got)
		})
	}
}

// TestEducationScoreCap 名校加分不应使学历桶超过上限
func TestEducationScoreCap(t *testing.T) {
	scorer := newTestScorer()

	got := scorer.educationScore("phd from stanford, mit and harvard")
	assert.Equal(t, educationCap, got, "博士+多所名校应触发学历桶封顶")

	got = scorer.educationScore("bachelor degree from berkeley")
	assert.Equal(t, 10, got, "学士7分+1所名校3分")
}
