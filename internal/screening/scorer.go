package screening

import (
	"math"
	"regexp"
	"strings"

	"resume-screener-go/internal/types"
)

// 评分算法固定常量。各分量先在桶内封顶，总分再整体裁剪
const (
	baseScore = 40

	experienceCap      = 25
	experiencePresent  = 10
	seniorityBonus     = 8
	dateRangeFallback  = 7
	educationCap       = 15
	universityBonus    = 3
	skillsCeiling      = 30
	requiredSkillBonus = 2
	employerBonus      = 3
	employerCap        = 10
	certificationBonus = 3
	achievementStep    = 2
	achievementCap     = 10

	// normalizeTopN 技能分归一化取权重最高的前N项
	normalizeTopN = 10
)

var (
	seniorityRe = regexp.MustCompile(`\b(senior|lead|principal|manager|director)\b`)
	// dateRangeRe 形如 "2016-2020" 或 "2016 2020" 的任职时间段
	dateRangeRe = regexp.MustCompile(`(?:19|20)\d{2}[-\s]\s*(?:19|20)\d{2}`)
)

// 声誉类关键词，与技能词表一样属于固定配置
var (
	topUniversities = []string{
		"stanford", "mit", "harvard", "caltech", "princeton",
		"cambridge", "oxford", "carnegie", "berkeley",
	}
	reputedEmployers = []string{
		"google", "microsoft", "amazon", "facebook", "apple",
		"netflix", "meta", "tesla", "spacex", "uber", "airbnb",
	}
	achievementKeywords = []string{
		"achievement", "award", "published", "patent",
		"improved", "increased", "reduced", "optimized",
	}
)

// ScorerConfig 评分器可调参数
type ScorerConfig struct {
	// MinGrade / MaxGrade 非空文本最终得分的闭区间，默认 [30, 95]
	// 上限刻意低于理论满分，避免给出"完美候选人"
	MinGrade int `yaml:"min_grade"`
	MaxGrade int `yaml:"max_grade"`
}

// DefaultScorerConfig 返回默认评分区间
func DefaultScorerConfig() ScorerConfig {
	return ScorerConfig{MinGrade: 30, MaxGrade: 95}
}

// Scorer 规则评分器：加权技能 + 经验/学历/雇主等启发式加分
// 所有表在构造时传入，评分过程无共享可变状态，结果完全确定
type Scorer struct {
	skills    SkillTable
	positions PositionTable
	extractor *FeatureExtractor
	cfg       ScorerConfig
	// skillDenominator 预计算的技能分归一化分母
	skillDenominator int
}

// NewScorer 构造评分器
func NewScorer(skills SkillTable, positions PositionTable, cfg ScorerConfig) *Scorer {
	return &Scorer{
		skills:           skills,
		positions:        positions,
		extractor:        NewFeatureExtractor(skills),
		cfg:              cfg,
		skillDenominator: skills.TopWeightSum(normalizeTopN),
	}
}

// Grade 对简历文本按目标岗位评分
// 空文本固定返回 0 分与空技能表；其余情况得分落在 [MinGrade, MaxGrade]
// 对输入大小写不敏感
func (s *Scorer) Grade(text string, positionID string) (int, []string, types.ScoreBreakdown) {
	if strings.TrimSpace(text) == "" {
		return 0, []string{}, types.ScoreBreakdown{}
	}

	lower := strings.ToLower(text)
	profile, hasProfile := s.positions[positionID]

	breakdown := types.ScoreBreakdown{Base: baseScore}
	score := float64(baseScore)

	// 1. 经验桶（封顶25）
	breakdown.Experience = s.experienceScore(lower)
	score += float64(breakdown.Experience)

	// 2. 学历桶（封顶15）
	breakdown.Education = s.educationScore(lower)
	score += float64(breakdown.Education)

	// 3. 加权技能，按 top-10 权重和归一化到30分
	skillsFound := s.extractor.MatchSkills(lower)
	breakdown.Skills = s.skillScore(skillsFound, profile)
	score += breakdown.Skills

	// 4. 雇主声誉（封顶10）
	breakdown.Employer = capScore(countHits(lower, reputedEmployers)*employerBonus, employerCap)
	score += float64(breakdown.Employer)

	// 5. 认证
	if strings.Contains(lower, "certification") || strings.Contains(lower, "certified") {
		breakdown.Certification = certificationBonus
		score += certificationBonus
	}

	// 6. 成就关键词（封顶10）
	breakdown.Achievement = capScore(countHits(lower, achievementKeywords)*achievementStep, achievementCap)
	score += float64(breakdown.Achievement)

	// 7. 岗位相关技能达到阈值时的岗位加分
	if hasProfile && profile.BonusMinCount > 0 {
		if countMembership(skillsFound, profile.BonusSkills) >= profile.BonusMinCount {
			breakdown.PositionBonus = profile.BonusPoints
			score += float64(profile.BonusPoints)
		}
	}

	grade := int(math.Round(score))
	if grade > s.cfg.MaxGrade {
		grade = s.cfg.MaxGrade
	}
	if grade < s.cfg.MinGrade {
		grade = s.cfg.MinGrade
	}
	return grade, skillsFound, breakdown
}

// experienceScore 经验分量：经验章节、显式年限档位或日期跨度回退、资深头衔
func (s *Scorer) experienceScore(lower string) int {
	score := 0
	if strings.Contains(lower, "experience") {
		score += experiencePresent

		// 取前3处显式年限声明求和后分档
		matches := explicitYearsRe.FindAllStringSubmatch(lower, 3)
		if len(matches) > 0 {
			years := 0
			for _, m := range matches {
				years += atoiSafe(m[1])
			}
			switch {
			case years >= 10:
				score += 15
			case years >= 5:
				score += 12
			case years >= 3:
				score += 8
			case years >= 1:
				score += 5
			}
		} else if dateRangeRe.MatchString(lower) {
			score += dateRangeFallback
		}
	}
	if seniorityRe.MatchString(lower) {
		score += seniorityBonus
	}
	return capScore(score, experienceCap)
}

// educationScore 学历分量：最高学历档位 + 名校加分
func (s *Scorer) educationScore(lower string) int {
	score := 0
	switch DetectEducation(lower) {
	case types.EducationDoctorate:
		score = 15
	case types.EducationMaster:
		score = 10
	case types.EducationBachelor:
		score = 7
	default:
		if strings.Contains(lower, "education") {
			score = 5
		}
	}
	score += countHits(lower, topUniversities) * universityBonus
	return capScore(score, educationCap)
}

// skillScore 命中技能权重求和（必备技能额外+2），再归一化到30分上限
func (s *Scorer) skillScore(skillsFound []string, profile PositionProfile) float64 {
	if s.skillDenominator == 0 {
		return 0
	}
	raw := 0
	for _, skill := range skillsFound {
		raw += s.skills[skill]
		if containsString(profile.Required, skill) {
			raw += requiredSkillBonus
		}
	}
	return float64(raw) / float64(s.skillDenominator) * skillsCeiling
}

// Positions 返回评分器持有的岗位表（只读）
func (s *Scorer) Positions() PositionTable {
	return s.positions
}

func capScore(score, limit int) int {
	if score > limit {
		return limit
	}
	return score
}

func countHits(lower string, keywords []string) int {
	count := 0
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			count++
		}
	}
	return count
}

func countMembership(skills []string, wanted []string) int {
	count := 0
	for _, s := range skills {
		if containsString(wanted, s) {
			count++
		}
	}
	return count
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

func atoiSafe(s string) int {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0
		}
		n = n*10 + int(r-'0')
	}
	return n
}
