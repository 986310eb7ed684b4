package processor

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"resume-screener-go/internal/constants"
	"resume-screener-go/internal/storage"
	"resume-screener-go/internal/storage/models"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/datatypes"
)

// intakeRunID 事件渠道的结果按天聚合到一个运行下
func intakeRunID(t time.Time) string {
	return "intake-" + t.Format("2006-01-02")
}

// HandleResumeReceived 消费简历接收事件：从对象存储取回原始文件，
// 重新提取评分并把结果落库。供 storage.RabbitMQ.StartConsumer 回调使用。
func (p *ScreeningProcessor) HandleResumeReceived(ctx context.Context, event *storage.ResumeReceivedEvent) error {
	ctx, span := tracer.Start(ctx, "processor.HandleResumeReceived")
	defer span.End()
	span.SetAttributes(
		attribute.String("event.submission_id", event.SubmissionID),
		attribute.String("event.source", event.Source),
	)

	if p.Storage == nil || p.Storage.MinIO == nil {
		return fmt.Errorf("对象存储不可用，无法处理事件 %s", event.SubmissionID)
	}

	data, err := p.Storage.MinIO.GetResumeFile(ctx, event.OriginalObject)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "download failed")
		return fmt.Errorf("下载原始简历 %s 失败: %w", event.OriginalObject, err)
	}

	doc, err := p.Extractor.Extract(ctx, data, event.Filename)
	if err != nil {
		return fmt.Errorf("提取 %s 失败: %w", event.Filename, err)
	}
	// 事件携带的SubmissionID优先，保持与投递渠道一致
	if event.SubmissionID != "" {
		doc.SubmissionID = event.SubmissionID
	}

	record, err := p.ProcessDocument(ctx, doc, event.TargetPosition)
	if err != nil {
		return err
	}

	parsedObject := ""
	if obj, err := p.Storage.MinIO.UploadParsedText(ctx, doc.SubmissionID, doc.RawText); err != nil {
		p.Settings.Logger.Warn().Err(err).Str("submission_id", doc.SubmissionID).Msg("归档解析文本失败")
	} else {
		parsedObject = obj
	}

	if p.Storage.MySQL == nil {
		p.Settings.Logger.Info().
			Str("submission_id", doc.SubmissionID).
			Int("grade", record.Grade).
			Msg("事件处理完成（无数据库，结果未落库）")
		return nil
	}

	now := time.Now()
	position := event.TargetPosition
	if position == "" {
		position = p.Settings.TargetPosition
	}
	run := &models.ScreeningRun{
		RunID:          intakeRunID(now),
		TargetPosition: position,
		ScorerVersion:  constants.ScorerVersion,
		ScreenedAt:     now,
	}
	if err := p.Storage.MySQL.EnsureRun(ctx, run); err != nil {
		return fmt.Errorf("创建事件渠道运行记录失败: %w", err)
	}

	skillsJSON, _ := json.Marshal(record.Skills)
	breakdownJSON, _ := json.Marshal(record.Breakdown)
	result := &models.ScreeningResult{
		RunID:           run.RunID,
		SubmissionID:    doc.SubmissionID,
		Filename:        record.Filename,
		CandidateName:   CandidateNameFromFilename(record.Filename),
		Grade:           record.Grade,
		PositionMatch:   record.PositionMatch,
		Skills:          datatypes.JSON(skillsJSON),
		Breakdown:       datatypes.JSON(breakdownJSON),
		YearsExperience: int(record.YearsExperience),
		Education:       string(record.Education),
		Summary:         record.Summary,
		RawTextObject:   parsedObject,
	}
	if err := p.Storage.MySQL.SaveResult(ctx, result); err != nil {
		return fmt.Errorf("保存事件渠道筛选结果失败: %w", err)
	}

	p.Settings.Logger.Info().
		Str("submission_id", doc.SubmissionID).
		Str("run_id", run.RunID).
		Int("grade", record.Grade).
		Msg("简历接收事件处理完成")
	return nil
}
