package screening

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"resume-screener-go/internal/types"
)

// 年限抽取与学历识别使用的公共正则
var (
	// explicitYearsRe 显式的 "N years experience" 写法
	explicitYearsRe = regexp.MustCompile(`(\d+)\s*years?\s*(?:of\s*)?experience`)
	// fourDigitYearRe 1900-2099 范围内的四位年份
	fourDigitYearRe = regexp.MustCompile(`(?:19|20)\d{2}`)

	doctorateRe = regexp.MustCompile(`\b(phd|ph\.d|doctorate)\b`)
	masterRe    = regexp.MustCompile(`\b(master|masters|ms|m\.sc|msc)\b`)
	bachelorRe  = regexp.MustCompile(`\b(bachelor|bachelors|bs|b\.tech|btech)\b`)
)

const (
	// minResumeYear / maxResumeYear 年份提取的有效范围
	minResumeYear = 1900
	maxResumeYear = 2024
	// maxEstimatedYears 按日期跨度估算年限的上限
	maxEstimatedYears = 20
)

// FeatureExtractor 从归一化文本中抽取技能、年限与学历。纯函数，无副作用
type FeatureExtractor struct {
	skills SkillTable
	// skillPatterns 每个技能词的词边界正则，构造时编译一次
	skillPatterns map[string]*regexp.Regexp
}

// NewFeatureExtractor 基于技能词表构造特征抽取器
func NewFeatureExtractor(skills SkillTable) *FeatureExtractor {
	patterns := make(map[string]*regexp.Regexp, len(skills))
	for skill := range skills {
		patterns[skill] = compileSkillPattern(skill)
	}
	return &FeatureExtractor{
		skills:        skills,
		skillPatterns: patterns,
	}
}

// compileSkillPattern 为技能词构造词边界安全的匹配模式
// 注意 "node.js" 这类含标点的词，\b 对结尾的 "s" 仍然成立
func compileSkillPattern(skill string) *regexp.Regexp {
	return regexp.MustCompile(`\b` + regexp.QuoteMeta(skill) + `\b`)
}

// Extract 对小写化后的文本执行全部特征抽取
func (f *FeatureExtractor) Extract(text string) types.FeatureSet {
	lower := strings.ToLower(text)
	return types.FeatureSet{
		Skills:          f.MatchSkills(lower),
		YearsExperience: EstimateYears(lower),
		Education:       DetectEducation(lower),
	}
}

// MatchSkills 返回文本中命中的技能词，结果按字典序排序保证确定性
func (f *FeatureExtractor) MatchSkills(lowerText string) []string {
	var found []string
	for skill, pattern := range f.skillPatterns {
		if pattern.MatchString(lowerText) {
			found = append(found, skill)
		}
	}
	sort.Strings(found)
	return found
}

// EstimateYears 估算工作年限
// 优先匹配显式的 "N years experience"；否则回退到四位年份跨度 (max-min)/10，
// 裁剪到 [0, 20]
func EstimateYears(lowerText string) float64 {
	if m := explicitYearsRe.FindStringSubmatch(lowerText); m != nil {
		years, err := strconv.Atoi(m[1])
		if err == nil && years >= 0 {
			return float64(years)
		}
	}

	matches := fourDigitYearRe.FindAllString(lowerText, -1)
	if len(matches) < 2 {
		return 0
	}
	minYear, maxYear := 0, 0
	for _, m := range matches {
		y, err := strconv.Atoi(m)
		if err != nil || y < minResumeYear || y > maxResumeYear {
			continue
		}
		if minYear == 0 || y < minYear {
			minYear = y
		}
		if y > maxYear {
			maxYear = y
		}
	}
	if minYear == 0 || maxYear <= minYear {
		return 0
	}
	years := float64(maxYear-minYear) / 10
	if years > maxEstimatedYears {
		years = maxEstimatedYears
	}
	return years
}

// DetectEducation 按 doctorate > master > bachelor 优先级识别学历
func DetectEducation(lowerText string) types.EducationLevel {
	switch {
	case doctorateRe.MatchString(lowerText):
		return types.EducationDoctorate
	case masterRe.MatchString(lowerText):
		return types.EducationMaster
	case bachelorRe.MatchString(lowerText):
		return types.EducationBachelor
	default:
		return types.EducationNone
	}
}

// Summarize 生成词数受限的摘要，超出预算时追加省略号
func Summarize(text string, maxWords int) string {
	words := strings.Fields(text)
	if len(words) <= maxWords {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:maxWords], " ") + "..."
}
