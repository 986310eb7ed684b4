package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"resume-screener-go/internal/config"
	"resume-screener-go/internal/constants"
	"resume-screener-go/internal/logger"
	"resume-screener-go/internal/processor"
	"resume-screener-go/internal/screening"
	"resume-screener-go/internal/storage"
	"resume-screener-go/internal/storage/models"
	"resume-screener-go/internal/tracing"
	"resume-screener-go/internal/types"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
)

// ErrRunNotFound 查询的筛选运行不存在
var ErrRunNotFound = errors.New("screening run not found")

// ErrSubmissionNotFound 查询的简历提交不存在
var ErrSubmissionNotFound = errors.New("submission not found")

// ErrFileTooLarge 上传文件超过大小上限
var ErrFileTooLarge = errors.New("resume file too large")

// presignedURLExpiry 预签名下载链接有效期
const presignedURLExpiry = 15 * time.Minute

var handlerTracer = otel.Tracer("resume-screener-go/api")

// ScreeningHandler 筛选API处理器，协调上传、批量运行与结果查询
type ScreeningHandler struct {
	cfg   *config.Config
	store *storage.Storage
	proc  *processor.ScreeningProcessor
}

// NewScreeningHandler 创建筛选API处理器
func NewScreeningHandler(cfg *config.Config, store *storage.Storage, proc *processor.ScreeningProcessor) *ScreeningHandler {
	return &ScreeningHandler{cfg: cfg, store: store, proc: proc}
}

// UploadResponse 简历上传响应
type UploadResponse struct {
	SubmissionID  string            `json:"submission_id"`
	Status        string            `json:"status"`
	Grade         int               `json:"grade,omitempty"`
	PositionMatch int               `json:"position_match,omitempty"`
	Skills        []string          `json:"skills,omitempty"`
	Record        *types.ScoreRecord `json:"record,omitempty"`
}

// HandleResumeUpload 处理简历上传：同步评分并返回结果，异步发布归档事件
func (h *ScreeningHandler) HandleResumeUpload(ctx context.Context, reader io.Reader, filename, position string) (*UploadResponse, error) {
	ctx, span := handlerTracer.Start(ctx, "handler.HandleResumeUpload")
	defer span.End()
	span.SetAttributes(attribute.String("upload.filename", filename))

	data, err := io.ReadAll(io.LimitReader(reader, constants.MaxResumeFileSize+1))
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeHTTP)
		return nil, fmt.Errorf("读取上传文件内容失败: %w", err)
	}
	if int64(len(data)) > constants.MaxResumeFileSize {
		err := fmt.Errorf("%w: 超过 %d 字节", ErrFileTooLarge, constants.MaxResumeFileSize)
		tracing.RecordError(span, err, tracing.ErrorTypeValidation)
		return nil, err
	}

	doc, record, err := h.proc.ProcessUpload(ctx, data, filename, position)
	if err != nil {
		if errors.Is(err, processor.ErrDuplicateResume) {
			resp := &UploadResponse{Status: "duplicate"}
			// 重复提交回传首次提交ID，方便调用方查询既有结果
			var dup *processor.DuplicateResumeError
			if errors.As(err, &dup) {
				resp.SubmissionID = dup.SubmissionID
			}
			logger.Info().Str("filename", filename).Str("submission_id", resp.SubmissionID).
				Msg("检测到重复的简历内容，跳过处理")
			return resp, nil
		}
		tracing.RecordError(span, err, tracing.ErrorTypeExtraction)
		return nil, err
	}

	h.publishUploadEvent(ctx, doc, position)

	return &UploadResponse{
		SubmissionID:  doc.SubmissionID,
		Status:        "processed",
		Grade:         record.Grade,
		PositionMatch: record.PositionMatch,
		Skills:        record.Skills,
		Record:        &record,
	}, nil
}

// publishUploadEvent 上传渠道的归档事件
// 直接发布失败时退回发件箱，由中继补发；两者都不可用时静默跳过
func (h *ScreeningHandler) publishUploadEvent(ctx context.Context, doc *types.ResumeDocument, position string) {
	if h.store == nil || h.store.RabbitMQ == nil {
		return
	}
	event := &storage.ResumeReceivedEvent{
		SubmissionID:   doc.SubmissionID,
		Filename:       doc.Filename,
		FileType:       doc.FileType,
		OriginalObject: storage.OriginalObjectName(doc.SubmissionID, doc.FileType),
		TargetPosition: position,
		Source:         "api",
		ReceivedAt:     time.Now(),
	}
	if err := h.store.RabbitMQ.PublishResumeReceived(ctx, event); err != nil {
		logger.Warn().Err(err).Str("submission_id", doc.SubmissionID).Msg("发布简历接收事件失败，尝试写入发件箱")
		if h.store.MySQL == nil {
			return
		}
		payload, merr := json.Marshal(event)
		if merr != nil {
			logger.Error().Err(merr).Msg("序列化事件失败")
			return
		}
		if oerr := h.store.MySQL.EnqueueOutbox(ctx, event.SubmissionID,
			h.store.RabbitMQ.EventsExchange(), h.store.RabbitMQ.ReceivedRoutingKey(), string(payload)); oerr != nil {
			logger.Error().Err(oerr).Str("submission_id", doc.SubmissionID).Msg("写入发件箱失败")
		}
	}
}

// ScreenRequest 批量筛选请求
type ScreenRequest struct {
	// Dir 简历目录，为空时使用配置的输入目录
	Dir string `json:"dir"`
	// Position 目标岗位，为空时使用配置的默认岗位
	Position string `json:"position"`
}

// HandleScreenDirectory 触发目录批量筛选，同步返回完整报告
func (h *ScreeningHandler) HandleScreenDirectory(ctx context.Context, req *ScreenRequest) (*types.ScreeningReport, error) {
	ctx, span := handlerTracer.Start(ctx, "handler.HandleScreenDirectory")
	defer span.End()

	dir := req.Dir
	if dir == "" {
		dir = h.cfg.Screening.InputDir
	}
	position := req.Position
	if position != "" && !h.proc.Matcher.KnownPosition(position) {
		err := fmt.Errorf("未知岗位: %s", position)
		tracing.RecordError(span, err, tracing.ErrorTypeValidation)
		return nil, err
	}

	report, err := h.proc.ScreenDirectory(ctx, dir, position)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeInternal)
		return nil, err
	}
	return report, nil
}

// RunListResponse 运行列表响应
type RunListResponse struct {
	Total int64                 `json:"total"`
	Runs  []models.ScreeningRun `json:"runs"`
}

// HandleListRuns 分页查询历史筛选运行
func (h *ScreeningHandler) HandleListRuns(ctx context.Context, limit, offset int) (*RunListResponse, error) {
	if h.store == nil || h.store.MySQL == nil {
		return nil, fmt.Errorf("数据库不可用")
	}
	runs, total, err := h.store.MySQL.ListRuns(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("查询筛选运行失败: %w", err)
	}
	return &RunListResponse{Total: total, Runs: runs}, nil
}

// RunDetailResponse 运行详情响应
type RunDetailResponse struct {
	Run     *models.ScreeningRun     `json:"run"`
	Results []models.ScreeningResult `json:"results"`
}

// HandleGetRun 查询单次运行：优先Redis缓存的完整报告，未命中回退MySQL
func (h *ScreeningHandler) HandleGetRun(ctx context.Context, runID string) (any, error) {
	ctx, span := handlerTracer.Start(ctx, "handler.HandleGetRun")
	defer span.End()
	span.SetAttributes(attribute.String("run_id", runID))

	if h.store != nil && h.store.Redis != nil {
		var report types.ScreeningReport
		err := h.store.Redis.GetCachedReport(ctx, runID, &report)
		if err == nil {
			span.SetAttributes(attribute.Bool("cache.hit", true))
			return &report, nil
		}
		if !errors.Is(err, storage.ErrNotFound) {
			logger.Warn().Err(err).Str("run_id", runID).Msg("读取报告缓存失败")
		}
	}

	if h.store == nil || h.store.MySQL == nil {
		return nil, ErrRunNotFound
	}

	run, err := h.store.MySQL.GetRun(ctx, runID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRunNotFound
		}
		tracing.RecordError(span, err, tracing.ErrorTypeDB)
		return nil, fmt.Errorf("查询筛选运行失败: %w", err)
	}
	results, err := h.store.MySQL.ListResults(ctx, runID, 0)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeDB)
		return nil, fmt.Errorf("查询筛选结果失败: %w", err)
	}
	return &RunDetailResponse{Run: run, Results: results}, nil
}

// ResumeDetailResponse 单份简历提交的详情视图
type ResumeDetailResponse struct {
	Result *models.ScreeningResult `json:"result"`
	// ParsedText 归档的解析文本，对象存储不可用或未归档时为空
	ParsedText string `json:"parsed_text,omitempty"`
	// DownloadURL 原始简历的预签名下载链接，短期有效
	DownloadURL string `json:"download_url,omitempty"`
}

// HandleGetResume 查询单份简历：筛选结果、解析文本与原始文件下载链接
func (h *ScreeningHandler) HandleGetResume(ctx context.Context, submissionID string) (*ResumeDetailResponse, error) {
	ctx, span := handlerTracer.Start(ctx, "handler.HandleGetResume")
	defer span.End()
	span.SetAttributes(attribute.String("submission_id", submissionID))

	if h.store == nil || h.store.MySQL == nil {
		return nil, ErrSubmissionNotFound
	}
	result, err := h.store.MySQL.GetResultBySubmission(ctx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubmissionNotFound
		}
		tracing.RecordError(span, err, tracing.ErrorTypeDB)
		return nil, fmt.Errorf("查询简历提交失败: %w", err)
	}

	resp := &ResumeDetailResponse{Result: result}
	if h.store.MinIO == nil {
		return resp, nil
	}

	if result.RawTextObject != "" {
		text, terr := h.store.MinIO.GetParsedText(ctx, result.RawTextObject)
		if terr != nil {
			logger.Warn().Err(terr).Str("object", result.RawTextObject).Msg("读取解析文本失败")
		} else {
			resp.ParsedText = text
		}
	}

	objectName := storage.OriginalObjectName(submissionID, filepath.Ext(result.Filename))
	url, uerr := h.store.MinIO.GetPresignedURL(ctx, objectName, presignedURLExpiry)
	if uerr != nil {
		logger.Warn().Err(uerr).Str("object", objectName).Msg("生成预签名下载链接失败")
	} else {
		resp.DownloadURL = url
	}
	return resp, nil
}

// HandleDeleteResume 按候选人请求删除归档的原始简历文件
// 筛选结果与解析文本保留，用于运行统计
func (h *ScreeningHandler) HandleDeleteResume(ctx context.Context, submissionID string) error {
	ctx, span := handlerTracer.Start(ctx, "handler.HandleDeleteResume")
	defer span.End()
	span.SetAttributes(attribute.String("submission_id", submissionID))

	if h.store == nil || h.store.MySQL == nil || h.store.MinIO == nil {
		return fmt.Errorf("存储后端不可用")
	}
	result, err := h.store.MySQL.GetResultBySubmission(ctx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSubmissionNotFound
		}
		tracing.RecordError(span, err, tracing.ErrorTypeDB)
		return fmt.Errorf("查询简历提交失败: %w", err)
	}

	objectName := storage.OriginalObjectName(submissionID, filepath.Ext(result.Filename))
	if err := h.store.MinIO.DeleteFile(ctx, objectName); err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeObjectStorage)
		return fmt.Errorf("删除原始简历失败: %w", err)
	}
	logger.Info().Str("submission_id", submissionID).Str("object", objectName).Msg("原始简历已删除")
	return nil
}

// LatestResultsResponse 最近一次运行的结果视图
type LatestResultsResponse struct {
	RunID          string                   `json:"run_id"`
	TargetPosition string                   `json:"target_position"`
	ScreenedAt     time.Time                `json:"screened_at"`
	Results        []models.ScreeningResult `json:"results"`
}

// latestRun 取最近一次筛选运行
func (h *ScreeningHandler) latestRun(ctx context.Context) (*models.ScreeningRun, error) {
	if h.store == nil || h.store.MySQL == nil {
		return nil, fmt.Errorf("数据库不可用")
	}
	runs, _, err := h.store.MySQL.ListRuns(ctx, 1, 0)
	if err != nil {
		return nil, fmt.Errorf("查询筛选运行失败: %w", err)
	}
	if len(runs) == 0 {
		return nil, ErrRunNotFound
	}
	return &runs[0], nil
}

// HandleLatestResults 最近一次运行的候选人结果，可按最低分过滤并截断
func (h *ScreeningHandler) HandleLatestResults(ctx context.Context, minGrade, limit int) (*LatestResultsResponse, error) {
	ctx, span := handlerTracer.Start(ctx, "handler.HandleLatestResults")
	defer span.End()

	run, err := h.latestRun(ctx)
	if err != nil {
		return nil, err
	}

	results, err := h.store.MySQL.ListResults(ctx, run.RunID, minGrade)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeDB)
		return nil, fmt.Errorf("查询筛选结果失败: %w", err)
	}
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return &LatestResultsResponse{
		RunID:          run.RunID,
		TargetPosition: run.TargetPosition,
		ScreenedAt:     run.ScreenedAt,
		Results:        results,
	}, nil
}

// HandleLatestStats 最近一次运行的聚合统计
func (h *ScreeningHandler) HandleLatestStats(ctx context.Context) (*models.ScreeningRun, error) {
	return h.latestRun(ctx)
}

// PositionInfo 岗位画像信息
type PositionInfo struct {
	ID            string   `json:"id"`
	Required      []string `json:"required"`
	BonusSkills   []string `json:"bonus_skills,omitempty"`
	BonusMinCount int      `json:"bonus_min_count,omitempty"`
	BonusPoints   int      `json:"bonus_points,omitempty"`
}

// HandleListPositions 返回已配置的岗位画像
func (h *ScreeningHandler) HandleListPositions() []PositionInfo {
	positions := screening.DefaultPositionTable()
	if len(h.cfg.Screening.Positions) > 0 {
		positions = screening.PositionTable{}
		for _, pc := range h.cfg.Screening.Positions {
			positions[pc.ID] = screening.PositionProfile{
				ID:            pc.ID,
				Required:      pc.Required,
				BonusSkills:   pc.BonusSkills,
				BonusMinCount: pc.BonusMinCount,
				BonusPoints:   pc.BonusPoints,
			}
		}
	}

	infos := make([]PositionInfo, 0, len(positions))
	for _, id := range h.proc.Matcher.PositionIDs() {
		p := positions[id]
		infos = append(infos, PositionInfo{
			ID:            p.ID,
			Required:      p.Required,
			BonusSkills:   p.BonusSkills,
			BonusMinCount: p.BonusMinCount,
			BonusPoints:   p.BonusPoints,
		})
	}
	return infos
}
