package processor

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"resume-screener-go/internal/config"
	"resume-screener-go/internal/constants"
	"resume-screener-go/internal/screening"
	"resume-screener-go/internal/storage"
	"resume-screener-go/internal/storage/models"
	"resume-screener-go/internal/tracing"
	"resume-screener-go/internal/types"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/datatypes"
)

// ErrDuplicateResume 文件内容与已处理的简历重复
var ErrDuplicateResume = errors.New("duplicate resume content")

// DuplicateResumeError 重复提交错误，携带首次提交的SubmissionID供调用方回传
type DuplicateResumeError struct {
	SubmissionID string
}

func (e *DuplicateResumeError) Error() string {
	return fmt.Sprintf("duplicate resume content (submission %s)", e.SubmissionID)
}

// Unwrap 保证 errors.Is(err, ErrDuplicateResume) 对调用方成立
func (e *DuplicateResumeError) Unwrap() error { return ErrDuplicateResume }

// 处理器专用tracer
var tracer = otel.Tracer("resume-screener-go/processor")

// Components 聚合筛选流水线的功能组件，便于集中管理和测试替换
type Components struct {
	// Extractor 文本提取
	Extractor TextExtractor
	// Classifier 句子分类与隐私过滤
	Classifier SentenceFilter
	// Grader 评分（规则或模拟）
	Grader Grader
	// Matcher 岗位匹配
	Matcher *screening.PositionMatcher
	// Ranker 排名
	Ranker *screening.Ranker

	// Storage 聚合存储，可为nil（纯文件模式）
	Storage *storage.Storage
}

// Settings 纯配置项，不包含业务组件
type Settings struct {
	TargetPosition     string
	SummaryMaxWords    int
	RemovePersonalInfo bool
	Logger             zerolog.Logger
}

// ScreeningProcessor 简历筛选流水线：提取 → 分类过滤 → 评分 → 岗位匹配 → 排名
type ScreeningProcessor struct {
	Components
	Settings Settings
}

// NewScreeningProcessor 按选项构建处理器，缺少必要组件时报错
func NewScreeningProcessor(compOpts []ComponentOpt, setOpts []SettingOpt) (*ScreeningProcessor, error) {
	p := &ScreeningProcessor{
		Settings: Settings{
			TargetPosition:     "software_engineer",
			SummaryMaxWords:    100,
			RemovePersonalInfo: true,
			Logger:             zerolog.Nop(),
		},
	}
	for _, opt := range compOpts {
		opt(&p.Components)
	}
	for _, opt := range setOpts {
		opt(&p.Settings)
	}

	if p.Extractor == nil {
		return nil, fmt.Errorf("文本提取组件未设置")
	}
	if p.Grader == nil {
		return nil, fmt.Errorf("评分组件未设置")
	}
	if p.Classifier == nil {
		p.Classifier = screening.NewSentenceClassifier(nil)
	}
	if p.Matcher == nil {
		p.Matcher = screening.NewPositionMatcher(screening.DefaultPositionTable())
	}
	if p.Ranker == nil {
		p.Ranker = screening.NewRanker(10, 0)
	}
	return p, nil
}

// BuildFromConfig 按应用配置组装默认流水线
func BuildFromConfig(cfg *config.Config, ext TextExtractor, store *storage.Storage, logger zerolog.Logger) (*ScreeningProcessor, error) {
	skills := screening.DefaultSkillTable()
	if len(cfg.Screening.SkillWeights) > 0 {
		skills = screening.SkillTable(cfg.Screening.SkillWeights)
	}

	positions := screening.DefaultPositionTable()
	if len(cfg.Screening.Positions) > 0 {
		positions = screening.PositionTable{}
		for _, pc := range cfg.Screening.Positions {
			positions[pc.ID] = screening.PositionProfile{
				ID:            pc.ID,
				Required:      pc.Required,
				BonusSkills:   pc.BonusSkills,
				BonusMinCount: pc.BonusMinCount,
				BonusPoints:   pc.BonusPoints,
			}
		}
	}

	var grader Grader
	if cfg.Screening.Simulation {
		grader = screening.NewSimulatedGrader(cfg.Screening.SimulationSeed, cfg.Screening.MinGrade, cfg.Screening.MaxGrade)
	} else {
		scorerCfg := screening.DefaultScorerConfig()
		if cfg.Screening.MinGrade > 0 {
			scorerCfg.MinGrade = cfg.Screening.MinGrade
		}
		if cfg.Screening.MaxGrade > 0 {
			scorerCfg.MaxGrade = cfg.Screening.MaxGrade
		}
		grader = screening.NewScorer(skills, positions, scorerCfg)
	}

	var sensitive []types.SentenceCategory
	if cfg.Screening.RemovePersonalInfo {
		sensitive = screening.DefaultSensitiveCategories()
	}

	compOpts := []ComponentOpt{
		WithExtractor(ext),
		WithGrader(grader),
		WithClassifier(screening.NewSentenceClassifier(sensitive)),
		WithMatcher(screening.NewPositionMatcher(positions)),
		WithRanker(screening.NewRanker(cfg.Screening.TopN, cfg.Screening.MinimumScore)),
		WithStorage(store),
	}
	setOpts := []SettingOpt{
		WithTargetPosition(cfg.Screening.TargetPosition),
		WithSummaryMaxWords(cfg.Screening.SummaryMaxWords),
		WithRemovePersonalInfo(cfg.Screening.RemovePersonalInfo),
		WithLogger(logger),
	}
	return NewScreeningProcessor(compOpts, setOpts)
}

// ProcessDocument 对已提取的文档执行分类、评分与岗位匹配
func (p *ScreeningProcessor) ProcessDocument(ctx context.Context, doc *types.ResumeDocument, positionID string) (types.ScoreRecord, error) {
	ctx, span := tracer.Start(ctx, "processor.ProcessDocument")
	defer span.End()
	span.SetAttributes(
		attribute.String("resume.filename", doc.Filename),
		attribute.String("resume.position", positionID),
		attribute.Int("resume.word_count", doc.WordCount),
	)

	if positionID == "" {
		positionID = p.Settings.TargetPosition
	}

	gradingText := doc.RawText
	if p.Settings.RemovePersonalInfo {
		result := p.Classifier.Process(doc.Sentences)
		if result.FilteredText != "" {
			gradingText = result.FilteredText
		}
		span.SetAttributes(attribute.Int("resume.sentences_removed", result.RemovedCount))
	}

	grade, skills, breakdown := p.Grader.Grade(gradingText, positionID)
	match := p.Matcher.Match(skills, positionID)

	record := types.ScoreRecord{
		Filename:        doc.Filename,
		Grade:           grade,
		Skills:          skills,
		Summary:         screening.Summarize(doc.RawText, p.Settings.SummaryMaxWords),
		WordCount:       doc.WordCount,
		PositionMatch:   match,
		Breakdown:       breakdown,
		YearsExperience: screening.EstimateYears(strings.ToLower(gradingText)),
		Education:       screening.DetectEducation(strings.ToLower(gradingText)),
	}

	span.SetAttributes(
		attribute.Int("resume.grade", grade),
		attribute.Int("resume.position_match", match),
		attribute.String("resume.summary", tracing.SafeResumeContent(record.Summary)),
	)

	p.Settings.Logger.Debug().
		Str("filename", doc.Filename).
		Int("grade", grade).
		Int("match", match).
		Strs("skills", skills).
		Msg("简历评分完成")
	return record, nil
}

// ProcessFile 从本地文件完成提取与评分
func (p *ScreeningProcessor) ProcessFile(ctx context.Context, path, positionID string) (types.ScoreRecord, error) {
	ctx, span := tracer.Start(ctx, "processor.ProcessFile")
	defer span.End()
	span.SetAttributes(attribute.String("resume.path", path))

	doc, err := p.Extractor.ExtractFile(ctx, path)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "extract failed")
		return types.ScoreRecord{}, fmt.Errorf("提取 %s 失败: %w", filepath.Base(path), err)
	}
	return p.ProcessDocument(ctx, doc, positionID)
}

// ProcessUpload 处理内存中的简历文件：去重、提取、评分、归档
// 内容与历史提交重复时返回 ErrDuplicateResume
func (p *ScreeningProcessor) ProcessUpload(ctx context.Context, data []byte, filename, positionID string) (*types.ResumeDocument, types.ScoreRecord, error) {
	ctx, span := tracer.Start(ctx, "processor.ProcessUpload")
	defer span.End()

	sum := md5.Sum(data)
	md5Hex := hex.EncodeToString(sum[:])

	if p.Storage != nil && p.Storage.Redis != nil {
		exists, err := p.Storage.Redis.CheckFileMD5Exists(ctx, md5Hex)
		if err != nil {
			p.Settings.Logger.Warn().Err(err).Msg("文件去重检查失败，继续处理")
		} else if exists {
			span.SetAttributes(attribute.Bool("resume.duplicate", true))
			priorID, idErr := p.Storage.Redis.GetSubmissionIDByMD5(ctx, md5Hex)
			if idErr != nil && !errors.Is(idErr, storage.ErrNotFound) {
				p.Settings.Logger.Warn().Err(idErr).Msg("查询重复简历的原始提交ID失败")
			}
			return nil, types.ScoreRecord{}, &DuplicateResumeError{SubmissionID: priorID}
		}
	}

	doc, err := p.Extractor.Extract(ctx, data, filename)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "extract failed")
		return nil, types.ScoreRecord{}, fmt.Errorf("提取 %s 失败: %w", filename, err)
	}

	record, err := p.ProcessDocument(ctx, doc, positionID)
	if err != nil {
		return nil, types.ScoreRecord{}, err
	}

	p.archiveSubmission(ctx, doc, data, md5Hex)
	return doc, record, nil
}

// archiveSubmission 尽力归档：上传原始文件与解析文本，登记MD5
// 归档失败不影响筛选结果，仅记录告警
func (p *ScreeningProcessor) archiveSubmission(ctx context.Context, doc *types.ResumeDocument, data []byte, md5Hex string) {
	if p.Storage == nil {
		return
	}
	if p.Storage.MinIO != nil {
		if _, _, err := p.Storage.MinIO.UploadResumeFileBytes(ctx, doc.SubmissionID, doc.FileType, data); err != nil {
			p.Settings.Logger.Warn().Err(err).Str("submission_id", doc.SubmissionID).Msg("归档原始简历失败")
		}
		if _, err := p.Storage.MinIO.UploadParsedText(ctx, doc.SubmissionID, doc.RawText); err != nil {
			p.Settings.Logger.Warn().Err(err).Str("submission_id", doc.SubmissionID).Msg("归档解析文本失败")
		}
	}
	if p.Storage.Redis != nil {
		if err := p.Storage.Redis.RecordFileMD5(ctx, md5Hex, doc.SubmissionID); err != nil {
			p.Settings.Logger.Warn().Err(err).Msg("登记文件MD5失败")
		}
	}
}

// ScreenDirectory 批量筛选目录下的全部简历文件并生成报告
// 单个文件解析失败记入SkippedFiles，不中断整体运行
func (p *ScreeningProcessor) ScreenDirectory(ctx context.Context, dir, positionID string) (*types.ScreeningReport, error) {
	ctx, span := tracer.Start(ctx, "processor.ScreenDirectory")
	defer span.End()

	if positionID == "" {
		positionID = p.Settings.TargetPosition
	}
	span.SetAttributes(
		attribute.String("screening.dir", dir),
		attribute.String("screening.position", positionID),
	)

	entries, err := os.ReadDir(dir)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "read dir failed")
		return nil, fmt.Errorf("读取简历目录 %s 失败: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !p.Extractor.Supported(entry.Name()) {
			continue
		}
		files = append(files, entry.Name())
	}
	sort.Strings(files)

	var records []types.ScoreRecord
	var skipped []string
	start := time.Now()
	for _, name := range files {
		record, err := p.ProcessFile(ctx, filepath.Join(dir, name), positionID)
		if err != nil {
			p.Settings.Logger.Warn().Err(err).Str("filename", name).Msg("简历处理失败，跳过")
			skipped = append(skipped, name)
			continue
		}
		records = append(records, record)
	}

	report := p.BuildReport(records, positionID, skipped)
	span.SetAttributes(
		attribute.Int("screening.total", len(records)),
		attribute.Int("screening.skipped", len(skipped)),
	)

	p.Settings.Logger.Info().
		Str("run_id", report.RunID).
		Str("position", positionID).
		Int("screened", len(records)).
		Int("skipped", len(skipped)).
		Dur("elapsed", time.Since(start)).
		Msg("目录筛选完成")

	p.persistReport(ctx, report)
	return report, nil
}

// BuildReport 由评分结果构建完整的筛选报告
func (p *ScreeningProcessor) BuildReport(records []types.ScoreRecord, positionID string, skipped []string) *types.ScreeningReport {
	if positionID == "" {
		positionID = p.Settings.TargetPosition
	}
	return &types.ScreeningReport{
		RunID:          uuid.NewString(),
		TargetPosition: positionID,
		ScreenedAt:     time.Now(),
		Results:        p.Ranker.SortAll(records),
		TopCandidates:  p.Ranker.Rank(records),
		Statistics:     screening.Statistics(records),
		SkippedFiles:   skipped,
	}
}

// persistReport 尽力持久化：写MySQL、缓存Redis，失败只告警
func (p *ScreeningProcessor) persistReport(ctx context.Context, report *types.ScreeningReport) {
	if p.Storage == nil {
		return
	}

	if p.Storage.MySQL != nil {
		run, results := reportToModels(report)
		if err := p.Storage.MySQL.SaveRun(ctx, run, results); err != nil {
			p.Settings.Logger.Warn().Err(err).Str("run_id", report.RunID).Msg("持久化筛选运行失败")
		}
	}
	if p.Storage.Redis != nil {
		if err := p.Storage.Redis.CacheReport(ctx, report.RunID, report); err != nil {
			p.Settings.Logger.Warn().Err(err).Str("run_id", report.RunID).Msg("缓存筛选报告失败")
		}
	}
}

// reportToModels 将筛选报告转换为数据库模型
func reportToModels(report *types.ScreeningReport) (*models.ScreeningRun, []models.ScreeningResult) {
	run := &models.ScreeningRun{
		RunID:          report.RunID,
		TargetPosition: report.TargetPosition,
		ScorerVersion:  constants.ScorerVersion,
		TotalScreened:  report.Statistics.TotalCandidates,
		SkippedCount:   len(report.SkippedFiles),
		AverageGrade:   report.Statistics.AverageGrade,
		HighestGrade:   report.Statistics.HighestGrade,
		LowestGrade:    report.Statistics.LowestGrade,
		ScreenedAt:     report.ScreenedAt,
	}

	results := make([]models.ScreeningResult, 0, len(report.Results))
	for _, rec := range report.Results {
		skillsJSON, _ := json.Marshal(rec.Skills)
		breakdownJSON, _ := json.Marshal(rec.Breakdown)
		results = append(results, models.ScreeningResult{
			RunID:           report.RunID,
			SubmissionID:    uuid.NewString(),
			Filename:        rec.Filename,
			CandidateName:   CandidateNameFromFilename(rec.Filename),
			Grade:           rec.Grade,
			PositionMatch:   rec.PositionMatch,
			Skills:          datatypes.JSON(skillsJSON),
			Breakdown:       datatypes.JSON(breakdownJSON),
			YearsExperience: int(rec.YearsExperience),
			Education:       string(rec.Education),
			Summary:         rec.Summary,
		})
	}
	return run, results
}

// CandidateNameFromFilename 从文件名推断候选人名: "jane_doe_resume.pdf" -> "Jane Doe"
func CandidateNameFromFilename(filename string) string {
	base := strings.TrimSuffix(filename, filepath.Ext(filename))
	base = strings.NewReplacer("_", " ", "-", " ", ".", " ").Replace(base)

	var words []string
	for _, w := range strings.Fields(base) {
		lower := strings.ToLower(w)
		if lower == "resume" || lower == "cv" {
			continue
		}
		words = append(words, upperFirst(w))
	}
	if len(words) == 0 {
		return ""
	}
	return strings.Join(words, " ")
}

// upperFirst 首字符大写，按rune解码避免截断多字节字符
func upperFirst(w string) string {
	r, size := utf8.DecodeRuneInString(w)
	if r == utf8.RuneError && size <= 1 {
		return w
	}
	return string(unicode.ToUpper(r)) + strings.ToLower(w[size:])
}
