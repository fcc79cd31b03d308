package storage

import (
	"context"
	"fmt"

	"resume-parser-go/internal/config"
	"resume-parser-go/internal/logger"
	"resume-parser-go/pkg/utils"
)

// Storage 存储管理器，聚合Web层使用的所有存储相关依赖
// 外部服务都是可选的，未配置或连接失败时回退到进程内实现
type Storage struct {
	// 会话存储：Redis或进程内
	Sessions SessionStore

	// 上传暂存：MinIO或本地目录
	Staging Staging

	// 解析结果缓存，未启用时为nil
	ResultCache *RedisResultCache

	// 解析事件发布，未配置时为nil
	Events EventPublisher

	// 解析审计，未配置时为nil
	Audits AuditSink

	// 键值存储
	Redis *Redis

	// 对象存储
	MinIO *MinIOStaging

	// 消息队列
	RabbitMQ *RabbitMQ

	// 关系型数据库
	MySQL *MySQL
}

// NewStorage 创建存储管理器
// 外部组件初始化失败只记录警告，只有本地暂存目录不可用时返回错误
func NewStorage(ctx context.Context, cfg *config.Config) (*Storage, error) {
	if cfg == nil {
		return nil, fmt.Errorf("配置不能为空")
	}

	s := &Storage{}
	var failed []string
	warn := func(component string, err error) {
		logger.Ctx(ctx).Warn().Err(err).Str("component", component).Msg("存储组件初始化失败，已降级")
		failed = append(failed, component)
	}

	if cfg.Redis.Address != "" {
		r, err := NewRedisAdapter(&cfg.Redis)
		if err != nil {
			warn("redis", err)
		} else {
			s.Redis = r
		}
	}
	if s.Redis != nil {
		s.Sessions = NewRedisSessionStore(s.Redis, sessionScope(cfg.Session.Secret))
		if cfg.Redis.EnableResultCache {
			s.ResultCache = NewRedisResultCache(s.Redis, cfg.ResultCacheTTL())
		}
	} else {
		s.Sessions = NewMemorySessionStore()
	}

	if cfg.MinIO.Endpoint != "" {
		m, err := NewMinIOStaging(&cfg.MinIO, logger.NewStdLogger("[MinIOStaging] "))
		if err != nil {
			warn("minio", err)
		} else {
			s.MinIO = m
			s.Staging = m
		}
	}
	if s.Staging == nil {
		local, err := NewLocalStaging(cfg.Server.UploadDir)
		if err != nil {
			return nil, err
		}
		s.Staging = local
	}

	if cfg.RabbitMQ.URL != "" {
		mq, err := NewRabbitMQ(&cfg.RabbitMQ)
		if err == nil {
			if err = mq.SetupParsedTopology(); err != nil {
				mq.Close()
			}
		}
		if err != nil {
			warn("rabbitmq", err)
		} else {
			s.RabbitMQ = mq
			s.Events = mq
		}
	}

	if cfg.MySQL.Host != "" {
		db, err := NewMySQL(&cfg.MySQL)
		if err != nil {
			warn("mysql", err)
		} else {
			s.MySQL = db
			s.Audits = db
		}
	}

	logger.Ctx(ctx).Info().
		Bool("redis", s.Redis != nil).
		Bool("result_cache", s.ResultCache != nil).
		Bool("minio", s.MinIO != nil).
		Bool("rabbitmq", s.RabbitMQ != nil).
		Bool("mysql", s.MySQL != nil).
		Strs("degraded", failed).
		Msg("存储服务初始化完成")
	return s, nil
}

// NewInMemoryStorage 创建只使用进程内会话和本地暂存的存储管理器，用于测试和命令行
func NewInMemoryStorage(uploadDir string) (*Storage, error) {
	local, err := NewLocalStaging(uploadDir)
	if err != nil {
		return nil, err
	}
	return &Storage{
		Sessions: NewMemorySessionStore(),
		Staging:  local,
	}, nil
}

// sessionScope 由会话密钥派生Redis键的作用域，避免密钥本身出现在键名中
func sessionScope(secret string) string {
	if secret == "" {
		return "default"
	}
	return utils.CalculateMD5([]byte(secret))[:12]
}

// Close 关闭所有连接
func (s *Storage) Close() {
	if s.RabbitMQ != nil {
		logCloseError("rabbitmq", s.RabbitMQ.Close())
	}
	if s.MySQL != nil {
		logCloseError("mysql", s.MySQL.Close())
	}
	if s.Redis != nil {
		logCloseError("redis", s.Redis.Close())
	}
}

func logCloseError(component string, err error) {
	if err != nil {
		logger.Error().Err(err).Str("component", component).Msg("关闭存储连接失败")
	}
}
