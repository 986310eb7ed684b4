package intake

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"resume-screener-go/internal/config"
	"resume-screener-go/internal/processor"
	"resume-screener-go/internal/storage"
	"resume-screener-go/internal/storage/models"
	"resume-screener-go/internal/types"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"github.com/emersion/go-message/mail"
	"github.com/rs/zerolog"
)

// EmailAgent 邮件收件代理：拉取投递邮件、筛选附件简历、自动回复
type EmailAgent struct {
	cfg       *config.EmailConfig
	processor *processor.ScreeningProcessor
	store     *storage.Storage
	mailer    *Mailer
	state     *localState
	logger    zerolog.Logger

	defaultPosition string
	// positionNames 岗位ID到展示名的映射，用于从邮件主题中识别投递岗位
	positionNames map[string]string
}

// NewEmailAgent 创建邮件代理
// Redis可用时用其做邮件去重，否则退回本地状态文件
func NewEmailAgent(cfg *config.Config, proc *processor.ScreeningProcessor, store *storage.Storage, logger zerolog.Logger) (*EmailAgent, error) {
	if cfg.Email.Username == "" || cfg.Email.Password == "" {
		return nil, fmt.Errorf("邮件账号未配置")
	}

	state, err := newLocalState(cfg.Email.StateFile)
	if err != nil {
		return nil, err
	}

	positionNames := make(map[string]string)
	for _, id := range proc.Matcher.PositionIDs() {
		positionNames[id] = strings.ReplaceAll(id, "_", " ")
	}

	return &EmailAgent{
		cfg:             &cfg.Email,
		processor:       proc,
		store:           store,
		mailer:          NewMailer(&cfg.Email),
		state:           state,
		logger:          logger,
		defaultPosition: cfg.Screening.TargetPosition,
		positionNames:   positionNames,
	}, nil
}

// RunOnce 执行一轮收件处理，返回本轮处理的简历数
func (a *EmailAgent) RunOnce(ctx context.Context) (int, error) {
	addr := fmt.Sprintf("%s:%d", a.cfg.IMAPServer, a.cfg.IMAPPort)
	c, err := client.DialTLS(addr, nil)
	if err != nil {
		return 0, fmt.Errorf("连接IMAP服务器 %s 失败: %w", addr, err)
	}
	defer c.Logout()

	if err := c.Login(a.cfg.Username, a.cfg.Password); err != nil {
		return 0, fmt.Errorf("IMAP登录失败: %w", err)
	}

	folder := a.cfg.Folder
	if folder == "" {
		folder = "INBOX"
	}
	if _, err := c.Select(folder, false); err != nil {
		return 0, fmt.Errorf("选择邮箱 %s 失败: %w", folder, err)
	}

	daysBack := a.cfg.DaysBack
	if daysBack <= 0 {
		daysBack = 7
	}
	criteria := imap.NewSearchCriteria()
	criteria.Since = time.Now().AddDate(0, 0, -daysBack)

	ids, err := c.Search(criteria)
	if err != nil {
		return 0, fmt.Errorf("搜索邮件失败: %w", err)
	}
	if len(ids) == 0 {
		a.logger.Debug().Msg("没有待处理的邮件")
		return 0, nil
	}

	seqset := new(imap.SeqSet)
	seqset.AddNum(ids...)

	section := &imap.BodySectionName{}
	items := []imap.FetchItem{imap.FetchEnvelope, section.FetchItem()}

	messages := make(chan *imap.Message, 10)
	done := make(chan error, 1)
	go func() {
		done <- c.Fetch(seqset, items, messages)
	}()

	processed := 0
	for msg := range messages {
		select {
		case <-ctx.Done():
			// 排空channel让fetch goroutine结束
			for range messages {
			}
			<-done
			return processed, ctx.Err()
		default:
		}

		n, err := a.handleMessage(ctx, msg, section)
		if err != nil {
			a.logger.Warn().Err(err).Msg("处理邮件失败，跳过")
			continue
		}
		processed += n
	}
	if err := <-done; err != nil {
		return processed, fmt.Errorf("拉取邮件失败: %w", err)
	}

	a.logger.Info().Int("resumes", processed).Int("emails", len(ids)).Msg("本轮收件处理完成")
	return processed, nil
}

// RunContinuous 按配置的间隔持续收件，直到ctx取消
func (a *EmailAgent) RunContinuous(ctx context.Context) error {
	interval := time.Duration(a.cfg.IntervalMinutes) * time.Minute
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := a.RunOnce(ctx); err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			a.logger.Error().Err(err).Msg("收件轮次失败，等待下一轮")
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// handleMessage 处理单封邮件，返回其中成功筛选的简历附件数
func (a *EmailAgent) handleMessage(ctx context.Context, msg *imap.Message, section *imap.BodySectionName) (int, error) {
	if msg.Envelope == nil {
		return 0, fmt.Errorf("邮件缺少信封信息")
	}
	messageID := msg.Envelope.MessageId
	if messageID == "" {
		messageID = fmt.Sprintf("no-id-%d", msg.SeqNum)
	}

	seen, err := a.isProcessed(ctx, messageID)
	if err != nil {
		a.logger.Warn().Err(err).Msg("邮件去重检查失败，继续处理")
	} else if seen {
		return 0, nil
	}

	sender, senderName := senderFromEnvelope(msg.Envelope)
	position := a.positionFromSubject(msg.Envelope.Subject)

	body := msg.GetBody(section)
	if body == nil {
		return 0, fmt.Errorf("邮件 %s 没有正文", messageID)
	}
	mr, err := mail.CreateReader(body)
	if err != nil {
		return 0, fmt.Errorf("解析邮件 %s 失败: %w", messageID, err)
	}

	processed := 0
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			a.logger.Warn().Err(err).Str("message_id", messageID).Msg("读取邮件分段失败")
			break
		}

		h, ok := part.Header.(*mail.AttachmentHeader)
		if !ok {
			continue
		}
		filename, err := h.Filename()
		if err != nil || filename == "" || !a.processor.Extractor.Supported(filename) {
			continue
		}

		data, err := io.ReadAll(part.Body)
		if err != nil {
			a.logger.Warn().Err(err).Str("filename", filename).Msg("读取附件失败")
			continue
		}

		if err := a.screenAttachment(ctx, messageID, sender, senderName, msg.Envelope.Subject, position, filename, data); err != nil {
			if errors.Is(err, processor.ErrDuplicateResume) {
				a.logger.Info().Str("filename", filename).Msg("附件与历史简历重复，忽略")
				continue
			}
			a.logger.Warn().Err(err).Str("filename", filename).Msg("附件筛选失败")
			continue
		}
		processed++
	}

	if err := a.markProcessed(ctx, messageID); err != nil {
		a.logger.Warn().Err(err).Str("message_id", messageID).Msg("标记邮件已处理失败")
	}
	return processed, nil
}

// screenAttachment 筛选单个简历附件：评分、落库、发事件、自动回复
func (a *EmailAgent) screenAttachment(ctx context.Context, messageID, sender, senderName, subject, position, filename string, data []byte) error {
	doc, record, err := a.processor.ProcessUpload(ctx, data, filename, position)
	if err != nil {
		return err
	}

	decision := DecideOutcome(record.Grade, a.acceptThreshold(), a.rejectThreshold())
	a.logger.Info().
		Str("sender", sender).
		Str("filename", filename).
		Int("grade", record.Grade).
		Str("decision", string(decision)).
		Msg("邮件简历筛选完成")

	a.recordSubmission(ctx, messageID, sender, subject, doc, record, decision)
	a.publishEvent(ctx, doc, position, sender)

	if a.cfg.AutomaticResponse && sender != "" {
		name := senderName
		if name == "" {
			name = processor.CandidateNameFromFilename(filename)
		}
		displayPosition := strings.ReplaceAll(position, "_", " ")
		if err := a.mailer.SendDecision(ctx, sender, name, displayPosition, decision); err != nil {
			a.logger.Warn().Err(err).Str("sender", sender).Msg("发送自动回复失败")
		} else if a.store != nil && a.store.MySQL != nil {
			if err := a.store.MySQL.MarkEmailReplied(ctx, messageID, string(decision)); err != nil {
				a.logger.Warn().Err(err).Msg("记录回复状态失败")
			}
		}
	}
	return nil
}

// recordSubmission 邮件投递落库，数据库不可用时跳过
func (a *EmailAgent) recordSubmission(ctx context.Context, messageID, sender, subject string, doc *types.ResumeDocument, record types.ScoreRecord, decision Decision) {
	if a.store == nil || a.store.MySQL == nil {
		return
	}
	sub := &models.EmailSubmission{
		MessageID:    messageID,
		Sender:       sender,
		Subject:      subject,
		SubmissionID: doc.SubmissionID,
		Filename:     doc.Filename,
		Grade:        record.Grade,
		Decision:     string(decision),
		ReceivedAt:   time.Now(),
	}
	if err := a.store.MySQL.SaveEmailSubmission(ctx, sub); err != nil {
		a.logger.Warn().Err(err).Str("message_id", messageID).Msg("保存邮件投递记录失败")
	}
}

// publishEvent 发布简历接收事件，供后台消费者归档
// 直接发布失败时退回发件箱，由中继补发
func (a *EmailAgent) publishEvent(ctx context.Context, doc *types.ResumeDocument, position, sender string) {
	if a.store == nil || a.store.RabbitMQ == nil {
		return
	}
	event := &storage.ResumeReceivedEvent{
		SubmissionID:   doc.SubmissionID,
		Filename:       doc.Filename,
		FileType:       doc.FileType,
		OriginalObject: storage.OriginalObjectName(doc.SubmissionID, doc.FileType),
		TargetPosition: position,
		Source:         "email",
		Sender:         sender,
		ReceivedAt:     time.Now(),
	}
	if err := a.store.RabbitMQ.PublishResumeReceived(ctx, event); err != nil {
		a.logger.Warn().Err(err).Str("submission_id", doc.SubmissionID).Msg("发布简历接收事件失败，尝试写入发件箱")
		a.enqueueOutbox(ctx, event)
	}
}

// enqueueOutbox 事件落入发件箱，数据库也不可用时只能丢弃并告警
func (a *EmailAgent) enqueueOutbox(ctx context.Context, event *storage.ResumeReceivedEvent) {
	if a.store.MySQL == nil {
		a.logger.Error().Str("submission_id", event.SubmissionID).Msg("发件箱不可用，事件丢弃")
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		a.logger.Error().Err(err).Msg("序列化事件失败")
		return
	}
	if err := a.store.MySQL.EnqueueOutbox(ctx, event.SubmissionID,
		a.store.RabbitMQ.EventsExchange(), a.store.RabbitMQ.ReceivedRoutingKey(), string(payload)); err != nil {
		a.logger.Error().Err(err).Str("submission_id", event.SubmissionID).Msg("写入发件箱失败")
	}
}

// isProcessed 邮件去重：优先Redis，降级本地状态文件
func (a *EmailAgent) isProcessed(ctx context.Context, messageID string) (bool, error) {
	if a.store != nil && a.store.Redis != nil {
		return a.store.Redis.IsEmailProcessed(ctx, messageID)
	}
	return a.state.Seen(messageID), nil
}

// markProcessed 标记邮件已处理
func (a *EmailAgent) markProcessed(ctx context.Context, messageID string) error {
	if a.store != nil && a.store.Redis != nil {
		return a.store.Redis.MarkEmailProcessed(ctx, messageID)
	}
	return a.state.Mark(messageID)
}

func (a *EmailAgent) acceptThreshold() int {
	if a.cfg.AcceptThreshold > 0 {
		return a.cfg.AcceptThreshold
	}
	return 75
}

func (a *EmailAgent) rejectThreshold() int {
	if a.cfg.RejectThreshold > 0 {
		return a.cfg.RejectThreshold
	}
	return 50
}

// positionFromSubject 从邮件主题识别投递岗位，识别不出时用默认岗位
func (a *EmailAgent) positionFromSubject(subject string) string {
	lower := strings.ToLower(subject)
	for id, display := range a.positionNames {
		if strings.Contains(lower, display) || strings.Contains(lower, id) {
			return id
		}
	}
	return a.defaultPosition
}

// senderFromEnvelope 从信封提取发件人地址与展示名
func senderFromEnvelope(env *imap.Envelope) (addr string, name string) {
	if len(env.From) == 0 {
		return "", ""
	}
	from := env.From[0]
	return from.Address(), from.PersonalName
}
