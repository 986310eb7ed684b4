package screening

import (
	"math/rand"
	"sync"

	"resume-screener-go/internal/types"
)

// SimulatedGrader 模拟评分器
// 在没有规则评分依据、仅需要演示数据时使用。随机性被隔离在本类型中，
// 种子由调用方注入，相同种子下输出序列完全可复现
type SimulatedGrader struct {
	mu  sync.Mutex
	rng *rand.Rand
	min int
	max int
}

// NewSimulatedGrader 构造模拟评分器，得分均匀落在 [min, max]
func NewSimulatedGrader(seed int64, min, max int) *SimulatedGrader {
	if max < min {
		max = min
	}
	return &SimulatedGrader{
		rng: rand.New(rand.NewSource(seed)),
		min: min,
		max: max,
	}
}

// Grade 返回一个模拟得分，忽略文本内容与岗位
func (g *SimulatedGrader) Grade(text string, positionID string) (int, []string, types.ScoreBreakdown) {
	if text == "" {
		return 0, []string{}, types.ScoreBreakdown{}
	}
	g.mu.Lock()
	grade := g.min + g.rng.Intn(g.max-g.min+1)
	g.mu.Unlock()
	return grade, []string{}, types.ScoreBreakdown{Base: grade}
}
