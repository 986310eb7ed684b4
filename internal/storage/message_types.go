package storage

import "time"

// ResumeReceivedEvent 简历接收事件，邮件代理或API入口发布，筛选消费者订阅
type ResumeReceivedEvent struct {
	SubmissionID string `json:"submission_id"`
	Filename     string `json:"filename"`
	FileType     string `json:"file_type"`
	// OriginalObject 原始文件在对象存储中的路径
	OriginalObject string `json:"original_object"`
	// TargetPosition 投递的目标岗位，可为空（使用默认岗位）
	TargetPosition string `json:"target_position,omitempty"`
	// Source 来源渠道: email / api / scan
	Source string `json:"source"`
	// Sender 邮件来源时的发件人地址
	Sender     string    `json:"sender,omitempty"`
	ReceivedAt time.Time `json:"received_at"`
}
