package intake

import (
	"context"
	"fmt"
	"strings"
	"time"

	"resume-screener-go/internal/config"
	"resume-screener-go/pkg/ratelimit"

	"gopkg.in/gomail.v2"
)

// Decision 自动回复决策
type Decision string

const (
	DecisionAccepted    Decision = "accepted"
	DecisionRejected    Decision = "rejected"
	DecisionNeedsReview Decision = "needs_review"
)

// DecideOutcome 按得分与阈值给出决策
// grade >= accept 进入下一轮；grade < reject 婉拒；其余转人工复核
func DecideOutcome(grade, acceptThreshold, rejectThreshold int) Decision {
	switch {
	case grade >= acceptThreshold:
		return DecisionAccepted
	case grade < rejectThreshold:
		return DecisionRejected
	default:
		return DecisionNeedsReview
	}
}

// Mailer 候选人回复发送器，带SMTP发送限速
type Mailer struct {
	cfg     *config.EmailConfig
	dialer  *gomail.Dialer
	limiter *ratelimit.TokenBucket
}

// NewMailer 创建SMTP发送器
func NewMailer(cfg *config.EmailConfig) *Mailer {
	qpm := cfg.RepliesPerMinute
	if qpm <= 0 {
		qpm = 10
	}
	return &Mailer{
		cfg:     cfg,
		dialer:  gomail.NewDialer(cfg.SMTPServer, cfg.SMTPPort, cfg.Username, cfg.Password),
		limiter: ratelimit.NewTokenBucket(qpm, 0).WithRetryPolicy(2*time.Second, 3),
	}
}

// RenderTemplate 填充模板占位符 {candidate_name} / {position}
func RenderTemplate(tpl, candidateName, position string) string {
	if candidateName == "" {
		candidateName = "Candidate"
	}
	r := strings.NewReplacer(
		"{candidate_name}", candidateName,
		"{position}", position,
	)
	return r.Replace(tpl)
}

// templateFor 按决策选择回复模板
func (m *Mailer) templateFor(decision Decision) string {
	switch decision {
	case DecisionAccepted:
		return m.cfg.Templates.Accepted
	case DecisionRejected:
		return m.cfg.Templates.Rejected
	default:
		return m.cfg.Templates.NeedsReview
	}
}

// subjectFor 按决策生成回复主题
func subjectFor(decision Decision, position string) string {
	switch decision {
	case DecisionAccepted:
		return fmt.Sprintf("Your application for %s - Next steps", position)
	case DecisionRejected:
		return fmt.Sprintf("Your application for %s", position)
	default:
		return fmt.Sprintf("Your application for %s - Under review", position)
	}
}

// SendDecision 向候选人发送决策回复
// 经过限流器发送，SMTP临时失败时退避重试
func (m *Mailer) SendDecision(ctx context.Context, to, candidateName, position string, decision Decision) error {
	body := RenderTemplate(m.templateFor(decision), candidateName, position)

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.Username)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subjectFor(decision, position))
	msg.SetBody("text/plain", body)

	err := m.limiter.RetryWithBackoff(ctx, func() error {
		return m.dialer.DialAndSend(msg)
	})
	if err != nil {
		return fmt.Errorf("发送回复给 %s 失败: %w", to, err)
	}
	return nil
}
