package models

import (
	"time"

	"gorm.io/datatypes"
)

// ScreeningRun 一次批量筛选运行
type ScreeningRun struct {
	RunID          string    `gorm:"type:varchar(36);primaryKey" json:"run_id"`
	TargetPosition string    `gorm:"type:varchar(64);not null;index" json:"target_position"`
	ScorerVersion  string    `gorm:"type:varchar(16);not null" json:"scorer_version"`
	TotalScreened  int       `gorm:"not null" json:"total_screened"`
	SkippedCount   int       `gorm:"not null" json:"skipped_count"`
	AverageGrade   float64   `json:"average_grade"`
	HighestGrade   int       `json:"highest_grade"`
	LowestGrade    int       `json:"lowest_grade"`
	ScreenedAt     time.Time `gorm:"not null;index" json:"screened_at"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	Results []ScreeningResult `gorm:"foreignKey:RunID;references:RunID" json:"results,omitempty"`
}

// TableName 指定表名
func (ScreeningRun) TableName() string {
	return "screening_runs"
}

// ScreeningResult 单份简历的筛选结果
type ScreeningResult struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	RunID        string `gorm:"type:varchar(36);not null;index" json:"run_id"`
	SubmissionID string `gorm:"type:varchar(36);not null;uniqueIndex:idx_run_submission,priority:2" json:"submission_id"`
	Filename     string `gorm:"type:varchar(255);not null" json:"filename"`
	// CandidateName 从文件名推断的候选人名，可能为空
	CandidateName string `gorm:"type:varchar(128)" json:"candidate_name"`
	Grade         int    `gorm:"not null;index" json:"grade"`
	PositionMatch int    `gorm:"not null" json:"position_match"`
	// Skills 识别出的技能列表 (JSON数组)
	Skills datatypes.JSON `gorm:"type:json" json:"skills"`
	// Breakdown 各评分项的得分明细 (JSON对象)
	Breakdown       datatypes.JSON `gorm:"type:json" json:"breakdown"`
	YearsExperience int            `json:"years_experience"`
	Education       string         `gorm:"type:varchar(16)" json:"education"`
	Summary         string         `gorm:"type:text" json:"summary"`
	// RawTextObject 解析文本在对象存储中的路径，可能为空
	RawTextObject string    `gorm:"type:varchar(255)" json:"raw_text_object"`
	CreatedAt     time.Time `json:"created_at"`
}

// TableName 指定表名
func (ScreeningResult) TableName() string {
	return "screening_results"
}

// EmailSubmission 邮件渠道收到的简历投递记录
type EmailSubmission struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	MessageID    string    `gorm:"type:varchar(255);not null;uniqueIndex" json:"message_id"`
	Sender       string    `gorm:"type:varchar(255);not null;index" json:"sender"`
	Subject      string    `gorm:"type:varchar(512)" json:"subject"`
	SubmissionID string    `gorm:"type:varchar(36)" json:"submission_id"`
	Filename     string    `gorm:"type:varchar(255)" json:"filename"`
	Grade        int       `json:"grade"`
	// Decision 自动回复决策: accepted / rejected / needs_review
	Decision   string    `gorm:"type:varchar(16)" json:"decision"`
	RepliedAt  *time.Time `json:"replied_at,omitempty"`
	ReceivedAt time.Time `gorm:"not null;index" json:"received_at"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName 指定表名
func (EmailSubmission) TableName() string {
	return "email_submissions"
}

// OutboxMessage 发件箱消息，事件发布失败时暂存，由中继轮询补发
type OutboxMessage struct {
	ID uint `gorm:"primaryKey;autoIncrement" json:"id"`
	// AggregateID 关联的业务标识，这里是SubmissionID
	AggregateID      string `gorm:"type:varchar(36);not null;index" json:"aggregate_id"`
	TargetExchange   string `gorm:"type:varchar(128);not null" json:"target_exchange"`
	TargetRoutingKey string `gorm:"type:varchar(128);not null" json:"target_routing_key"`
	Payload          string `gorm:"type:text;not null" json:"payload"`
	// Status PENDING / SENT / FAILED
	Status       string     `gorm:"type:varchar(16);not null;default:PENDING;index" json:"status"`
	RetryCount   int        `gorm:"not null;default:0" json:"retry_count"`
	ErrorMessage string     `gorm:"type:varchar(512)" json:"error_message"`
	ProcessedAt  *time.Time `json:"processed_at,omitempty"`
	CreatedAt    time.Time  `gorm:"index" json:"created_at"`
}

// TableName 指定表名
func (OutboxMessage) TableName() string {
	return "outbox_messages"
}
