package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"resume-screener-go/internal/config"
	"resume-screener-go/internal/constants"

	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
)

// ErrNotFound 键不存在时返回，包装底层的 redis.Nil
var ErrNotFound = redis.Nil

// Redis 键值存储访问层：文件去重、邮件去重、报告缓存
type Redis struct {
	Client *redis.Client
	cfg    *config.RedisConfig
}

// NewRedisAdapter 创建Redis客户端连接
func NewRedisAdapter(cfg *config.RedisConfig) (*Redis, error) {
	if cfg == nil {
		return nil, fmt.Errorf("redis config cannot be nil")
	}
	if cfg.Address == "" {
		return nil, fmt.Errorf("redis address is required")
	}

	opt := &redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,

		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
	}

	client := redis.NewClient(opt)

	// OpenTelemetry钩子，记录所有Redis操作
	if err := redisotel.InstrumentTracing(client); err != nil {
		return nil, fmt.Errorf("failed to instrument Redis with OpenTelemetry: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Address, err)
	}

	return &Redis{Client: client, cfg: cfg}, nil
}

// Close 关闭Redis连接
func (r *Redis) Close() error {
	if r.Client != nil {
		return r.Client.Close()
	}
	return nil
}

// Ping 检查Redis连接
func (r *Redis) Ping(ctx context.Context) error {
	if r.Client == nil {
		return fmt.Errorf("redis client is not initialized")
	}
	return r.Client.Ping(ctx).Err()
}

// dedupeExpire 返回配置的去重记录过期时间
func (r *Redis) dedupeExpire() time.Duration {
	days := r.cfg.DedupeExpireDays
	if days <= 0 {
		return constants.DedupeExpireDuration
	}
	return time.Duration(days) * 24 * time.Hour
}

// reportTTL 返回配置的报告缓存TTL
func (r *Redis) reportTTL() time.Duration {
	minutes := r.cfg.ReportTTLMinutes
	if minutes <= 0 {
		return constants.ReportCacheDuration
	}
	return time.Duration(minutes) * time.Minute
}

// CheckFileMD5Exists 检查文件MD5是否已见过
func (r *Redis) CheckFileMD5Exists(ctx context.Context, md5Hex string) (bool, error) {
	if r.Client == nil {
		return false, fmt.Errorf("redis client is not initialized")
	}
	return r.Client.SIsMember(ctx, constants.KeyFileMD5Set, md5Hex).Result()
}

// RecordFileMD5 记录文件MD5及其对应的SubmissionID
// MD5集合与映射键一并刷新过期时间，避免集合长期膨胀
func (r *Redis) RecordFileMD5(ctx context.Context, md5Hex, submissionID string) error {
	if r.Client == nil {
		return fmt.Errorf("redis client is not initialized")
	}

	expire := r.dedupeExpire()
	pipe := r.Client.TxPipeline()
	pipe.SAdd(ctx, constants.KeyFileMD5Set, md5Hex)
	pipe.Expire(ctx, constants.KeyFileMD5Set, expire)
	pipe.Set(ctx, fmt.Sprintf(constants.KeyFileMD5ToSubmissionID, md5Hex), submissionID, expire)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("记录文件MD5失败: %w", err)
	}
	return nil
}

// GetSubmissionIDByMD5 按MD5查询已记录的SubmissionID，未找到返回ErrNotFound
func (r *Redis) GetSubmissionIDByMD5(ctx context.Context, md5Hex string) (string, error) {
	if r.Client == nil {
		return "", fmt.Errorf("redis client is not initialized")
	}
	return r.Client.Get(ctx, fmt.Sprintf(constants.KeyFileMD5ToSubmissionID, md5Hex)).Result()
}

// IsEmailProcessed 检查邮件Message-ID是否已处理
func (r *Redis) IsEmailProcessed(ctx context.Context, messageID string) (bool, error) {
	if r.Client == nil {
		return false, fmt.Errorf("redis client is not initialized")
	}
	n, err := r.Client.Exists(ctx, fmt.Sprintf(constants.KeyProcessedEmail, messageID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// MarkEmailProcessed 标记邮件已处理
func (r *Redis) MarkEmailProcessed(ctx context.Context, messageID string) error {
	if r.Client == nil {
		return fmt.Errorf("redis client is not initialized")
	}
	key := fmt.Sprintf(constants.KeyProcessedEmail, messageID)
	return r.Client.Set(ctx, key, time.Now().Format(time.RFC3339), r.dedupeExpire()).Err()
}

// CacheReport 缓存筛选报告（JSON序列化）
func (r *Redis) CacheReport(ctx context.Context, runID string, report any) error {
	if r.Client == nil {
		return fmt.Errorf("redis client is not initialized")
	}
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("序列化报告失败: %w", err)
	}
	key := fmt.Sprintf(constants.KeyScreeningReport, runID)
	return r.Client.Set(ctx, key, data, r.reportTTL()).Err()
}

// GetCachedReport 读取缓存的筛选报告并反序列化到out，未命中返回ErrNotFound
func (r *Redis) GetCachedReport(ctx context.Context, runID string, out any) error {
	if r.Client == nil {
		return fmt.Errorf("redis client is not initialized")
	}
	data, err := r.Client.Get(ctx, fmt.Sprintf(constants.KeyScreeningReport, runID)).Bytes()
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("反序列化报告失败: %w", err)
	}
	return nil
}
