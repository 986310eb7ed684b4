package types

import "time"

// EducationLevel 教育水平枚举
type EducationLevel string

const (
	// EducationNone 未识别出学历
	EducationNone EducationLevel = "none"
	// EducationBachelor 学士
	EducationBachelor EducationLevel = "bachelor"
	// EducationMaster 硕士
	EducationMaster EducationLevel = "master"
	// EducationDoctorate 博士
	EducationDoctorate EducationLevel = "doctorate"
)

// Rank 返回学历的优先级序号，用于按 doctorate > master > bachelor > none 比较
func (e EducationLevel) Rank() int {
	switch e {
	case EducationDoctorate:
		return 3
	case EducationMaster:
		return 2
	case EducationBachelor:
		return 1
	default:
		return 0
	}
}

// SentenceCategory 句子分类类别（沿用论文中的七分类）
type SentenceCategory string

const (
	CategoryPersonalInfo  SentenceCategory = "personal_information"
	CategoryExperience    SentenceCategory = "experience"
	CategorySummary       SentenceCategory = "summary"
	CategoryEducation     SentenceCategory = "education"
	CategoryCertification SentenceCategory = "qualification_certification"
	CategorySkill         SentenceCategory = "skill"
	CategoryObjectives    SentenceCategory = "objectives"
)

// ResumeDocument 解析后的简历文档，提取完成后不再修改
type ResumeDocument struct {
	// SubmissionID 本次提交的唯一标识
	SubmissionID string `json:"submission_id"`
	// Filename 原始文件名，同时作为候选人标识
	Filename string `json:"filename"`
	// FileType 文件扩展名，例如 ".pdf"
	FileType string `json:"file_type"`
	// RawText 提取出的原始文本
	RawText string `json:"raw_text"`
	// Sentences 切分后的句子
	Sentences []string `json:"sentences"`
	// WordCount 词数统计
	WordCount int `json:"word_count"`
}

// ClassifiedSentence 带类别标注的句子
type ClassifiedSentence struct {
	Sentence string           `json:"sentence"`
	Category SentenceCategory `json:"category"`
}

// ClassificationResult 句子分类与隐私过滤的结果
type ClassificationResult struct {
	Sentences []ClassifiedSentence `json:"sentences"`
	// FilteredText 移除敏感类别句子后拼接的文本，供评分使用
	FilteredText string `json:"filtered_text"`
	// CategoryCounts 各类别句子数统计
	CategoryCounts map[SentenceCategory]int `json:"category_counts"`
	// RemovedCount 被隐私过滤移除的句子数
	RemovedCount int `json:"removed_count"`
}

// FeatureSet 从简历文本中抽取的特征集合
type FeatureSet struct {
	// Skills 命中的技能词（去重，均为技能词表成员）
	Skills []string `json:"skills"`
	// YearsExperience 估算的工作年限，非负，可能为小数
	YearsExperience float64 `json:"years_experience"`
	// Education 识别出的最高学历
	Education EducationLevel `json:"education"`
}

// ScoreBreakdown 各评分分量，便于解释最终得分
type ScoreBreakdown struct {
	Base          int     `json:"base"`
	Experience    int     `json:"experience"`
	Education     int     `json:"education"`
	Skills        float64 `json:"skills"`
	Employer      int     `json:"employer"`
	Certification int     `json:"certification"`
	Achievement   int     `json:"achievement"`
	PositionBonus int     `json:"position_bonus"`
}

// ScoreRecord 单份简历的完整评分结果
type ScoreRecord struct {
	Filename        string         `json:"filename"`
	Grade           int            `json:"grade"`
	Skills          []string       `json:"skills"`
	Summary         string         `json:"summary"`
	WordCount       int            `json:"word_count"`
	YearsExperience float64        `json:"years_experience"`
	Education       EducationLevel `json:"education"`
	PositionMatch   int            `json:"position_match"`
	Breakdown       ScoreBreakdown `json:"breakdown"`
}

// RankedCandidate 排序后的候选人条目
type RankedCandidate struct {
	Rank   int         `json:"rank"`
	Record ScoreRecord `json:"record"`
	// Reason 推荐理由（规则生成）
	Reason string `json:"reason,omitempty"`
}

// ScreeningStatistics 一次批量筛选的统计信息
type ScreeningStatistics struct {
	TotalCandidates int     `json:"total_candidates"`
	AverageGrade    float64 `json:"average_grade"`
	HighestGrade    int     `json:"highest_grade"`
	LowestGrade     int     `json:"lowest_grade"`
}

// ScreeningReport 一次批量筛选的完整产出
type ScreeningReport struct {
	RunID          string              `json:"run_id"`
	TargetPosition string              `json:"target_position"`
	ScreenedAt     time.Time           `json:"screened_at"`
	Results        []ScoreRecord       `json:"results"`
	TopCandidates  []RankedCandidate   `json:"top_candidates"`
	Statistics     ScreeningStatistics `json:"statistics"`
	// SkippedFiles 解析失败被跳过的文件名
	SkippedFiles []string `json:"skipped_files,omitempty"`
}
