package storage

import (
	"context"
	"fmt"
	"strings"

	"resume-screener-go/internal/config"
	"resume-screener-go/internal/logger"
)

// Storage 存储管理器，聚合所有存储相关依赖
// 各后端按配置独立初始化，部分失败不阻塞整体（纯文件模式可完全离线运行）
type Storage struct {
	// MinIO 对象存储
	MinIO *MinIO
	// RabbitMQ 消息队列
	RabbitMQ *RabbitMQ
	// MySQL 关系型数据库
	MySQL *MySQL
	// Redis 键值存储
	Redis *Redis
}

// NewStorage 创建存储管理器
// 所有已配置后端全部失败时返回错误；部分失败记录警告后继续
func NewStorage(ctx context.Context, cfg *config.Config) (*Storage, error) {
	if cfg == nil {
		return nil, fmt.Errorf("配置不能为空")
	}

	log := logger.WithComponent("storage")
	s := &Storage{}
	var initErrors []string
	configured := 0

	if cfg.MinIO.Endpoint != "" {
		configured++
		m, err := NewMinIO(&cfg.MinIO, logger.WithComponent("minio"))
		if err != nil {
			log.Warn().Err(err).Msg("初始化MinIO失败")
			initErrors = append(initErrors, fmt.Sprintf("MinIO: %v", err))
		} else {
			s.MinIO = m
		}
	}

	if cfg.RabbitMQ.URL != "" {
		configured++
		mq, err := NewRabbitMQ(&cfg.RabbitMQ, logger.WithComponent("rabbitmq"))
		if err != nil {
			log.Warn().Err(err).Msg("初始化RabbitMQ失败")
			initErrors = append(initErrors, fmt.Sprintf("RabbitMQ: %v", err))
		} else {
			s.RabbitMQ = mq
		}
	}

	if cfg.MySQL.Host != "" {
		configured++
		db, err := NewMySQL(&cfg.MySQL)
		if err != nil {
			log.Warn().Err(err).Msg("初始化MySQL失败")
			initErrors = append(initErrors, fmt.Sprintf("MySQL: %v", err))
		} else {
			s.MySQL = db
		}
	}

	if cfg.Redis.Address != "" {
		configured++
		r, err := NewRedisAdapter(&cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Msg("初始化Redis失败")
			initErrors = append(initErrors, fmt.Sprintf("Redis: %v", err))
		} else {
			s.Redis = r
		}
	}

	if configured > 0 && len(initErrors) == configured {
		return nil, fmt.Errorf("所有已配置的存储组件初始化失败: %s", strings.Join(initErrors, "; "))
	}
	if len(initErrors) > 0 {
		log.Warn().Strs("failed", initErrors).Msg("部分存储组件初始化失败，继续以降级模式运行")
	}
	return s, nil
}

// Close 关闭所有连接
func (s *Storage) Close() {
	log := logger.WithComponent("storage")
	if s.RabbitMQ != nil {
		if err := s.RabbitMQ.Close(); err != nil {
			log.Error().Err(err).Msg("关闭RabbitMQ连接失败")
		}
	}
	if s.MySQL != nil {
		if err := s.MySQL.Close(); err != nil {
			log.Error().Err(err).Msg("关闭MySQL连接失败")
		}
	}
	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil {
			log.Error().Err(err).Msg("关闭Redis连接失败")
		}
	}
	// MinIO客户端无需显式Close
}
