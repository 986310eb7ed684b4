package screening

import (
	"math"
	"sort"
)

// PositionMatcher 计算技能集合与岗位必备技能的重合度
type PositionMatcher struct {
	positions PositionTable
}

// NewPositionMatcher 构造岗位匹配器
func NewPositionMatcher(positions PositionTable) *PositionMatcher {
	return &PositionMatcher{positions: positions}
}

// Match 返回 matched/required*100 四舍五入后的百分比，裁剪到 [0,100]
// 未知岗位或必备技能为空时返回 0
func (m *PositionMatcher) Match(skills []string, positionID string) int {
	profile, ok := m.positions[positionID]
	if !ok || len(profile.Required) == 0 {
		return 0
	}

	matched := 0
	for _, skill := range skills {
		if containsString(profile.Required, skill) {
			matched++
		}
	}

	percent := int(math.Round(float64(matched) / float64(len(profile.Required)) * 100))
	if percent > 100 {
		percent = 100
	}
	if percent < 0 {
		percent = 0
	}
	return percent
}

// KnownPosition 判断岗位标识是否已配置
func (m *PositionMatcher) KnownPosition(positionID string) bool {
	_, ok := m.positions[positionID]
	return ok
}

// PositionIDs 返回已配置的岗位标识，升序排列
func (m *PositionMatcher) PositionIDs() []string {
	ids := make([]string, 0, len(m.positions))
	for id := range m.positions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
