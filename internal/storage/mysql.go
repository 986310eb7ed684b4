package storage

import (
	"context"
	"fmt"
	"time"

	"resume-screener-go/internal/config"
	"resume-screener-go/internal/storage/models"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// MySQL 关系型数据库访问层，持久化筛选运行与结果
type MySQL struct {
	db  *gorm.DB
	cfg *config.MySQLConfig
}

// NewMySQL 创建MySQL连接并完成表结构迁移
func NewMySQL(cfg *config.MySQLConfig) (*MySQL, error) {
	if cfg == nil {
		return nil, fmt.Errorf("MySQL配置不能为空")
	}
	if cfg.Host == "" {
		return nil, fmt.Errorf("MySQL host is required")
	}

	timeout := cfg.ConnectTimeoutSeconds
	if timeout <= 0 {
		timeout = 10
	}
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local&timeout=%ds",
		cfg.Username, cfg.Password, cfg.Host, cfg.Port, cfg.Database, timeout)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("连接MySQL失败: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取底层sql.DB失败: %w", err)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.ConnMaxLifetimeMinutes > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute)
	}

	m := &MySQL{db: db, cfg: cfg}
	if err := m.migrate(); err != nil {
		return nil, err
	}
	return m, nil
}

// migrate 自动迁移表结构
func (m *MySQL) migrate() error {
	err := m.db.AutoMigrate(
		&models.ScreeningRun{},
		&models.ScreeningResult{},
		&models.EmailSubmission{},
		&models.OutboxMessage{},
	)
	if err != nil {
		return fmt.Errorf("数据库迁移失败: %w", err)
	}
	return nil
}

// DB 暴露底层gorm句柄，供需要自定义查询的调用方使用
func (m *MySQL) DB() *gorm.DB {
	return m.db
}

// Close 关闭数据库连接
func (m *MySQL) Close() error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// SaveRun 保存一次筛选运行及其全部结果（事务）
func (m *MySQL) SaveRun(ctx context.Context, run *models.ScreeningRun, results []models.ScreeningResult) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(run).Error; err != nil {
			return fmt.Errorf("保存筛选运行失败: %w", err)
		}
		if len(results) == 0 {
			return nil
		}
		for i := range results {
			results[i].RunID = run.RunID
		}
		if err := tx.CreateInBatches(results, 100).Error; err != nil {
			return fmt.Errorf("保存筛选结果失败: %w", err)
		}
		return nil
	})
}

// GetRun 按RunID查询筛选运行（不含结果）
func (m *MySQL) GetRun(ctx context.Context, runID string) (*models.ScreeningRun, error) {
	var run models.ScreeningRun
	err := m.db.WithContext(ctx).Where("run_id = ?", runID).First(&run).Error
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// ListRuns 按时间倒序分页查询筛选运行
func (m *MySQL) ListRuns(ctx context.Context, limit, offset int) ([]models.ScreeningRun, int64, error) {
	if limit <= 0 {
		limit = 20
	}
	var total int64
	if err := m.db.WithContext(ctx).Model(&models.ScreeningRun{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var runs []models.ScreeningRun
	err := m.db.WithContext(ctx).
		Order("screened_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&runs).Error
	if err != nil {
		return nil, 0, err
	}
	return runs, total, nil
}

// ListResults 查询某次运行的结果，按得分倒序
func (m *MySQL) ListResults(ctx context.Context, runID string, minGrade int) ([]models.ScreeningResult, error) {
	q := m.db.WithContext(ctx).Where("run_id = ?", runID)
	if minGrade > 0 {
		q = q.Where("grade >= ?", minGrade)
	}

	var results []models.ScreeningResult
	if err := q.Order("grade DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// GetResultBySubmission 按SubmissionID查询最新一条筛选结果
func (m *MySQL) GetResultBySubmission(ctx context.Context, submissionID string) (*models.ScreeningResult, error) {
	var result models.ScreeningResult
	err := m.db.WithContext(ctx).
		Where("submission_id = ?", submissionID).
		Order("created_at DESC").
		First(&result).Error
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// EnsureRun 运行记录不存在则创建（事件渠道按天聚合结果时使用）
func (m *MySQL) EnsureRun(ctx context.Context, run *models.ScreeningRun) error {
	return m.db.WithContext(ctx).
		Where("run_id = ?", run.RunID).
		FirstOrCreate(run).Error
}

// SaveResult 保存单条筛选结果
func (m *MySQL) SaveResult(ctx context.Context, result *models.ScreeningResult) error {
	return m.db.WithContext(ctx).Create(result).Error
}

// EnqueueOutbox 将事件写入发件箱，等待中继补发
func (m *MySQL) EnqueueOutbox(ctx context.Context, aggregateID, exchange, routingKey, payload string) error {
	msg := &models.OutboxMessage{
		AggregateID:      aggregateID,
		TargetExchange:   exchange,
		TargetRoutingKey: routingKey,
		Payload:          payload,
		Status:           "PENDING",
	}
	return m.db.WithContext(ctx).Create(msg).Error
}

// SaveEmailSubmission 记录一次邮件投递
func (m *MySQL) SaveEmailSubmission(ctx context.Context, sub *models.EmailSubmission) error {
	return m.db.WithContext(ctx).Create(sub).Error
}

// MarkEmailReplied 记录已向候选人发送的决策回复
func (m *MySQL) MarkEmailReplied(ctx context.Context, messageID, decision string) error {
	now := time.Now()
	return m.db.WithContext(ctx).
		Model(&models.EmailSubmission{}).
		Where("message_id = ?", messageID).
		Updates(map[string]any{"decision": decision, "replied_at": &now}).Error
}
