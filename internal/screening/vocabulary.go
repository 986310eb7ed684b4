package screening

import (
	"sort"

	"resume-screener-go/internal/types"
)

// SkillTable 技能词表，技能词 -> 权重。构造后只读
type SkillTable map[string]int

// PositionProfile 岗位画像：必备技能与加分技能
type PositionProfile struct {
	// ID 岗位标识，例如 "software_engineer"
	ID string `yaml:"id" json:"id"`
	// Required 必备技能列表
	Required []string `yaml:"required" json:"required"`
	// BonusSkills 领域相关技能，命中数量达到 BonusMinCount 时额外加 BonusPoints 分
	BonusSkills []string `yaml:"bonus_skills" json:"bonus_skills,omitempty"`
	// BonusMinCount 触发岗位加分所需的最少命中数
	BonusMinCount int `yaml:"bonus_min_count" json:"bonus_min_count,omitempty"`
	// BonusPoints 岗位加分分值
	BonusPoints int `yaml:"bonus_points" json:"bonus_points,omitempty"`
}

// PositionTable 岗位标识 -> 岗位画像
type PositionTable map[string]PositionProfile

// DefaultSkillTable 返回内置技能词表（总权重上限按 top-10 归一化）
func DefaultSkillTable() SkillTable {
	return SkillTable{
		"python": 8, "java": 8, "javascript": 6, "aws": 10, "docker": 8,
		"kubernetes": 10, "sql": 6, "react": 5, "node.js": 5, "tensorflow": 8,
		"pytorch": 8, "machine learning": 12, "ai": 12, "cloud": 8,
		"devops": 10, "azure": 6, "gcp": 6, "linux": 5, "git": 4,
		"spring": 6, "django": 5, "flask": 4, "fastapi": 4, "mongodb": 4,
		"postgresql": 4, "mysql": 4, "redis": 3, "kafka": 4, "spark": 5,
	}
}

// DefaultPositionTable 返回内置岗位画像
func DefaultPositionTable() PositionTable {
	return PositionTable{
		"software_engineer": {
			ID:       "software_engineer",
			Required: []string{"python", "java", "javascript", "aws", "docker", "sql"},
		},
		"data_scientist": {
			ID:            "data_scientist",
			Required:      []string{"python", "machine learning", "tensorflow", "pytorch", "sql"},
			BonusSkills:   []string{"machine learning", "ai", "tensorflow", "pytorch"},
			BonusMinCount: 2,
			BonusPoints:   5,
		},
		"devops": {
			ID:            "devops",
			Required:      []string{"aws", "docker", "kubernetes", "linux", "git", "cloud"},
			BonusSkills:   []string{"aws", "docker", "kubernetes", "cloud"},
			BonusMinCount: 3,
			BonusPoints:   5,
		},
		"full_stack": {
			ID:       "full_stack",
			Required: []string{"python", "javascript", "react", "node.js", "aws", "docker"},
		},
	}
}

// TopWeightSum 返回词表中权重最高的n项之和，作为技能分归一化分母
func (t SkillTable) TopWeightSum(n int) int {
	weights := make([]int, 0, len(t))
	for _, w := range t {
		weights = append(weights, w)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(weights)))
	if n > len(weights) {
		n = len(weights)
	}
	sum := 0
	for _, w := range weights[:n] {
		sum += w
	}
	return sum
}

// Contains 判断技能词是否属于词表
func (t SkillTable) Contains(skill string) bool {
	_, ok := t[skill]
	return ok
}

// DefaultSensitiveCategories 隐私过滤默认移除的句子类别
func DefaultSensitiveCategories() []types.SentenceCategory {
	return []types.SentenceCategory{types.CategoryPersonalInfo}
}
