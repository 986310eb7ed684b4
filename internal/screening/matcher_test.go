package screening

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMatchRange 所有已配置岗位的匹配度都应落在 [0,100]
func TestMatchRange(t *testing.T) {
	positions := DefaultPositionTable()
	matcher := NewPositionMatcher(positions)

	skillSets := [][]string{
		nil,
		{},
		{"python"},
		{"python", "java", "javascript", "aws", "docker", "sql"},
		{"cobol", "fortran"}, // 非必备技能
	}

	for positionID := range positions {
		for _, skills := range skillSets {
			match := matcher.Match(skills, positionID)
			require.GreaterOrEqual(t, match, 0, "岗位 %s 匹配度不应为负", positionID)
			require.LessOrEqual(t, match, 100, "岗位 %s 匹配度不应超过100", positionID)
		}
	}
}

// TestMatchUnknownPosition 未知岗位返回0
func TestMatchUnknownPosition(t *testing.T) {
	matcher := NewPositionMatcher(DefaultPositionTable())

	assert.Equal(t, 0, matcher.Match([]string{"python", "aws"}, "astronaut"))
	assert.False(t, matcher.KnownPosition("astronaut"))
	assert.True(t, matcher.KnownPosition("devops"))
}

// TestMatchAllRequired 全部必备技能命中时匹配度为100
func TestMatchAllRequired(t *testing.T) {
	matcher := NewPositionMatcher(DefaultPositionTable())

	full := []string{"python", "java", "javascript", "aws", "docker", "sql"}
	assert.Equal(t, 100, matcher.Match(full, "software_engineer"))

	// 额外技能不应使匹配度超过100
	extra := append(full, "kubernetes", "redis")
	assert.Equal(t, 100, matcher.Match(extra, "software_engineer"))
}

// TestMatchPartial 部分命中按比例取整
func TestMatchPartial(t *testing.T) {
	matcher := NewPositionMatcher(DefaultPositionTable())

	// software_engineer 必备6项，命中 python/aws/docker/sql 共4项: 4/6*100 ≈ 67
	skills := []string{"python", "aws", "docker", "kubernetes", "sql"}
	assert.Equal(t, 67, matcher.Match(skills, "software_engineer"))

	// 命中1项: 1/6*100 ≈ 17
	assert.Equal(t, 17, matcher.Match([]string{"python"}, "software_engineer"))

	assert.Equal(t, 0, matcher.Match(nil, "software_engineer"))
}
