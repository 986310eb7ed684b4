package storage

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"time"

	"resume-screener-go/internal/config"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/minio/minio-go/v7/pkg/lifecycle"
	"github.com/rs/zerolog"
)

// ObjectStorage 对象存储接口
type ObjectStorage interface {
	// UploadResumeFile 上传原始简历文件，返回对象路径
	UploadResumeFile(ctx context.Context, submissionID, fileExt string, reader io.Reader, fileSize int64) (string, error)
	// UploadResumeFileBytes 上传原始简历并返回对象路径与内容MD5
	UploadResumeFileBytes(ctx context.Context, submissionID, fileExt string, data []byte) (string, string, error)
	// UploadParsedText 上传解析后的纯文本，返回对象路径
	UploadParsedText(ctx context.Context, submissionID string, text string) (string, error)
	// GetResumeFile 下载原始简历内容
	GetResumeFile(ctx context.Context, objectName string) ([]byte, error)
	// GetParsedText 下载解析文本
	GetParsedText(ctx context.Context, objectName string) (string, error)
	// DeleteFile 从原始简历桶删除对象
	DeleteFile(ctx context.Context, objectName string) error
	// GetPresignedURL 获取原始简历的预签名下载URL
	GetPresignedURL(ctx context.Context, objectName string, expiry time.Duration) (string, error)
}

var _ ObjectStorage = (*MinIO)(nil)

// MinIO 对象存储访问层：原始简历与解析文本两个存储桶
type MinIO struct {
	client         *minio.Client
	cfg            *config.MinIOConfig
	originalBucket string
	parsedBucket   string
	logger         zerolog.Logger
}

// NewMinIO 创建MinIO客户端并确保存储桶就绪
func NewMinIO(cfg *config.MinIOConfig, logger zerolog.Logger) (*MinIO, error) {
	if cfg == nil {
		return nil, fmt.Errorf("MinIO配置不能为空")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("创建MinIO客户端失败: %w", err)
	}

	originalBucket := cfg.OriginalsBucket
	if originalBucket == "" {
		originalBucket = "resume-originals"
	}
	parsedBucket := cfg.ParsedTextBucket
	if parsedBucket == "" {
		parsedBucket = "resume-parsed-text"
	}

	m := &MinIO{
		client:         client,
		cfg:            cfg,
		originalBucket: originalBucket,
		parsedBucket:   parsedBucket,
		logger:         logger,
	}

	if err := m.ensureBucketExists(originalBucket, cfg.Location); err != nil {
		return nil, fmt.Errorf("确保原始简历存储桶 %s 存在失败: %w", originalBucket, err)
	}
	if err := m.ensureBucketExists(parsedBucket, cfg.Location); err != nil {
		return nil, fmt.Errorf("确保解析文本存储桶 %s 存在失败: %w", parsedBucket, err)
	}

	if cfg.OriginalFileExpireDays > 0 || cfg.ParsedTextExpireDays > 0 {
		if err := m.setupLifecycleRules(context.Background()); err != nil {
			m.logger.Warn().Err(err).Msg("设置对象生命周期规则失败")
		}
	}

	m.logger.Info().
		Str("endpoint", cfg.Endpoint).
		Str("originals", originalBucket).
		Str("parsed", parsedBucket).
		Msg("MinIO客户端初始化完成")
	return m, nil
}

// ensureBucketExists 存储桶不存在则创建
func (m *MinIO) ensureBucketExists(bucketName, location string) error {
	exists, err := m.client.BucketExists(context.Background(), bucketName)
	if err != nil {
		return fmt.Errorf("检查存储桶 %s 是否存在时出错: %w", bucketName, err)
	}
	if exists {
		return nil
	}
	if err := m.client.MakeBucket(context.Background(), bucketName, minio.MakeBucketOptions{Region: location}); err != nil {
		return fmt.Errorf("创建存储桶 %s 失败: %w", bucketName, err)
	}
	m.logger.Info().Str("bucket", bucketName).Msg("存储桶已创建")
	return nil
}

// setupLifecycleRules 按配置为两个桶设置过期规则
func (m *MinIO) setupLifecycleRules(ctx context.Context) error {
	if m.cfg.OriginalFileExpireDays > 0 {
		if err := m.setupBucketLifecycle(ctx, m.originalBucket, "expire-originals", m.cfg.OriginalFileExpireDays); err != nil {
			return fmt.Errorf("为原始文件存储桶 %s 设置生命周期失败: %w", m.originalBucket, err)
		}
	}
	if m.cfg.ParsedTextExpireDays > 0 {
		if err := m.setupBucketLifecycle(ctx, m.parsedBucket, "expire-parsed-text", m.cfg.ParsedTextExpireDays); err != nil {
			return fmt.Errorf("为解析文本存储桶 %s 设置生命周期失败: %w", m.parsedBucket, err)
		}
	}
	return nil
}

func (m *MinIO) setupBucketLifecycle(ctx context.Context, bucketName, ruleID string, expiryDays int) error {
	lc := lifecycle.NewConfiguration()
	lc.Rules = []lifecycle.Rule{
		{
			ID:     ruleID,
			Status: "Enabled",
			Expiration: lifecycle.Expiration{
				Days: lifecycle.ExpirationDays(expiryDays),
			},
		},
	}
	return m.client.SetBucketLifecycle(ctx, bucketName, lc)
}

// OriginalObjectName 原始简历对象命名: originals/{submissionID}{ext}
// 事件发布方用它推导对象路径
func OriginalObjectName(submissionID, fileExt string) string {
	if fileExt != "" && !strings.HasPrefix(fileExt, ".") {
		fileExt = "." + fileExt
	}
	return fmt.Sprintf("originals/%s%s", submissionID, strings.ToLower(fileExt))
}

// parsedObjectName 解析文本对象命名: parsed/{submissionID}.txt
func parsedObjectName(submissionID string) string {
	return fmt.Sprintf("parsed/%s.txt", submissionID)
}

// contentTypeForExt 按扩展名推断Content-Type
func contentTypeForExt(fileExt string) string {
	switch strings.ToLower(strings.TrimPrefix(fileExt, ".")) {
	case "pdf":
		return "application/pdf"
	case "docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case "doc":
		return "application/msword"
	case "txt":
		return "text/plain"
	default:
		return "application/octet-stream"
	}
}

// UploadResumeFile 上传原始简历文件
func (m *MinIO) UploadResumeFile(ctx context.Context, submissionID, fileExt string, reader io.Reader, fileSize int64) (string, error) {
	objectName := OriginalObjectName(submissionID, fileExt)
	_, err := m.client.PutObject(ctx, m.originalBucket, objectName, reader, fileSize, minio.PutObjectOptions{
		ContentType: contentTypeForExt(fileExt),
	})
	if err != nil {
		return "", fmt.Errorf("上传简历文件 %s 失败: %w", objectName, err)
	}
	m.logger.Debug().Str("object", objectName).Int64("size", fileSize).Msg("原始简历已上传")
	return objectName, nil
}

// UploadResumeFileBytes 上传原始简历并顺带计算内容MD5（供去重）
func (m *MinIO) UploadResumeFileBytes(ctx context.Context, submissionID, fileExt string, data []byte) (string, string, error) {
	sum := md5.Sum(data)
	md5Hex := hex.EncodeToString(sum[:])

	objectName, err := m.UploadResumeFile(ctx, submissionID, fileExt, bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", "", err
	}
	return objectName, md5Hex, nil
}

// UploadParsedText 上传解析后的纯文本
func (m *MinIO) UploadParsedText(ctx context.Context, submissionID string, text string) (string, error) {
	objectName := parsedObjectName(submissionID)
	reader := strings.NewReader(text)
	_, err := m.client.PutObject(ctx, m.parsedBucket, objectName, reader, int64(len(text)), minio.PutObjectOptions{
		ContentType: "text/plain; charset=utf-8",
	})
	if err != nil {
		return "", fmt.Errorf("上传解析文本 %s 失败: %w", objectName, err)
	}
	return objectName, nil
}

// GetResumeFile 下载原始简历内容
func (m *MinIO) GetResumeFile(ctx context.Context, objectName string) ([]byte, error) {
	obj, err := m.client.GetObject(ctx, m.originalBucket, objectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("获取简历文件 %s 失败: %w", objectName, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("读取简历文件 %s 失败: %w", objectName, err)
	}
	return data, nil
}

// GetParsedText 下载解析文本
func (m *MinIO) GetParsedText(ctx context.Context, objectName string) (string, error) {
	obj, err := m.client.GetObject(ctx, m.parsedBucket, objectName, minio.GetObjectOptions{})
	if err != nil {
		return "", fmt.Errorf("获取解析文本 %s 失败: %w", objectName, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return "", fmt.Errorf("读取解析文本 %s 失败: %w", objectName, err)
	}
	return string(data), nil
}

// DeleteFile 删除原始简历对象
func (m *MinIO) DeleteFile(ctx context.Context, objectName string) error {
	err := m.client.RemoveObject(ctx, m.originalBucket, objectName, minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("删除文件 %s 失败: %w", objectName, err)
	}
	return nil
}

// GetPresignedURL 获取原始简历的预签名下载URL
func (m *MinIO) GetPresignedURL(ctx context.Context, objectName string, expiry time.Duration) (string, error) {
	u, err := m.client.PresignedGetObject(ctx, m.originalBucket, objectName, expiry, nil)
	if err != nil {
		return "", fmt.Errorf("生成预签名URL失败: %w", err)
	}
	return u.String(), nil
}
