package screening

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSimulatedGraderSeeded 相同种子应产生相同的得分序列
func TestSimulatedGraderSeeded(t *testing.T) {
	g1 := NewSimulatedGrader(42, 70, 95)
	g2 := NewSimulatedGrader(42, 70, 95)

	for i := 0; i < 20; i++ {
		grade1, _, _ := g1.Grade("some resume text", "software_engineer")
		grade2, _, _ := g2.Grade("some resume text", "software_engineer")
		require.Equal(t, grade1, grade2, "相同种子第%d次评分应一致", i)
	}
}

// TestSimulatedGraderBounds 模拟得分必须落在配置区间内
func TestSimulatedGraderBounds(t *testing.T) {
	g := NewSimulatedGrader(7, 30, 95)

	for i := 0; i < 100; i++ {
		grade, _, _ := g.Grade("text", "devops")
		require.GreaterOrEqual(t, grade, 30)
		require.LessOrEqual(t, grade, 95)
	}
}

// TestSimulatedGraderEmptyText 空文本与规则评分器保持相同约定
func TestSimulatedGraderEmptyText(t *testing.T) {
	g := NewSimulatedGrader(1, 30, 95)

	grade, skills, _ := g.Grade("", "devops")
	assert.Zero(t, grade)
	assert.Empty(t, skills)
}
