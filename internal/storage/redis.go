package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"resume-parser-go/internal/config"
	"resume-parser-go/internal/constants"
	"resume-parser-go/internal/tracing"
	"resume-parser-go/internal/types"

	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

// ErrNotFound is returned when a key is not found in Redis.
var ErrNotFound = redis.Nil

// 为Redis操作定义专用tracer
var redisTracer = otel.Tracer("resume-parser-go/storage/redis")

// Redis操作前缀采样率配置，redisotel已记录每条命令，这里只为业务层采样
var redisKeySamplingRates = map[string]float64{
	constants.AppPrefix + ":" + constants.SessionModulePrefix + ":": 0.05,
	constants.AppPrefix + ":" + constants.ParseModulePrefix + ":":   0.1,
}

var (
	rnd      = rand.New(rand.NewSource(time.Now().UnixNano()))
	rndMutex sync.Mutex
)

// shouldSampleRedisOp 根据key前缀决定是否需要创建span
func shouldSampleRedisOp(key string) bool {
	if key == "" {
		return false
	}
	for prefix, rate := range redisKeySamplingRates {
		if strings.HasPrefix(key, prefix) {
			return randFloat() < rate
		}
	}
	return randFloat() < 0.05
}

func randFloat() float64 {
	rndMutex.Lock()
	defer rndMutex.Unlock()
	return rnd.Float64()
}

// Redis wraps the Redis client
type Redis struct {
	Client *redis.Client
	config *config.RedisConfig
}

// FormatKey 使用 constants 包中的键格式生成完整的Redis键
func FormatKey(keyFormat string, parts ...interface{}) string {
	if len(parts) == 0 {
		return keyFormat
	}
	return fmt.Sprintf(keyFormat, parts...)
}

// NewRedisAdapter creates a new Redis client connection
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

		DialTimeout:  time.Duration(cfg.DialTimeoutSeconds) * time.Second,
		ReadTimeout:  time.Duration(cfg.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeoutSeconds) * time.Second,

		MaxRetries: cfg.MaxRetries,
	}

	client := redis.NewClient(opt)

	// 添加OpenTelemetry钩子, 记录所有Redis操作
	if err := redisotel.InstrumentTracing(client); err != nil {
		return nil, fmt.Errorf("failed to instrument Redis with OpenTelemetry: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Address, err)
	}

	return &Redis{
		Client: client,
		config: cfg,
	}, nil
}

// Close closes the Redis client connection
func (r *Redis) Close() error {
	if r.Client != nil {
		return r.Client.Close()
	}
	return nil
}

// Ping checks the Redis connection
func (r *Redis) Ping(ctx context.Context) error {
	if r.Client == nil {
		return fmt.Errorf("redis client is not initialized")
	}
	return r.Client.Ping(ctx).Err()
}

// Get 读取字符串值，键不存在时返回 ErrNotFound
func (r *Redis) Get(ctx context.Context, key string) (string, error) {
	if r.Client == nil {
		return "", fmt.Errorf("redis client is not initialized")
	}

	if shouldSampleRedisOp(key) {
		var span trace.Span
		ctx, span = redisTracer.Start(ctx, "Redis.Get",
			trace.WithSpanKind(trace.SpanKindClient),
			trace.WithAttributes(
				semconv.DBSystemRedis,
				attribute.String("db.operation", "GET"),
				attribute.String("db.redis.key", tracing.SafeRedisKey(key)),
			))
		defer span.End()

		val, err := r.Client.Get(ctx, key).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			tracing.RecordError(span, err, tracing.ErrorTypeRedis)
		}
		span.SetAttributes(attribute.Bool("redis.hit", err == nil))
		return val, err
	}
	return r.Client.Get(ctx, key).Result()
}

// Set 写入字符串值
func (r *Redis) Set(ctx context.Context, key string, value string, expiration time.Duration) error {
	if r.Client == nil {
		return fmt.Errorf("redis client is not initialized")
	}

	if shouldSampleRedisOp(key) {
		var span trace.Span
		ctx, span = redisTracer.Start(ctx, "Redis.Set",
			trace.WithSpanKind(trace.SpanKindClient),
			trace.WithAttributes(
				semconv.DBSystemRedis,
				attribute.String("db.operation", "SET"),
				attribute.String("db.redis.key", tracing.SafeRedisKey(key)),
				attribute.Int64("db.redis.ttl_ms", expiration.Milliseconds()),
			))
		defer span.End()

		if err := r.Client.Set(ctx, key, value, expiration).Err(); err != nil {
			tracing.RecordError(span, err, tracing.ErrorTypeRedis)
			return err
		}
		return nil
	}
	return r.Client.Set(ctx, key, value, expiration).Err()
}

// MarkParsedFile 记录文件MD5，返回此前是否已解析过同一文件
func (r *Redis) MarkParsedFile(ctx context.Context, fileMD5 string, expiration time.Duration) (seen bool, err error) {
	if r.Client == nil {
		return false, fmt.Errorf("redis client is not initialized")
	}
	key := constants.KeyParsedFileMD5Set

	pipe := r.Client.TxPipeline()
	added := pipe.SAdd(ctx, key, fileMD5)
	if expiration > 0 {
		pipe.Expire(ctx, key, expiration)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("记录文件MD5失败: %w", err)
	}
	return added.Val() == 0, nil
}

// RedisSessionStore 基于Redis的会话存储，会话以JSON保存
type RedisSessionStore struct {
	redis *Redis
	scope string
}

var _ SessionStore = (*RedisSessionStore)(nil)

// NewRedisSessionStore 创建Redis会话存储，scope用于隔离不同部署（通常取会话密钥的摘要）
func NewRedisSessionStore(r *Redis, scope string) *RedisSessionStore {
	if scope == "" {
		scope = "default"
	}
	return &RedisSessionStore{redis: r, scope: scope}
}

func (s *RedisSessionStore) key(id string) string {
	return FormatKey(constants.KeySessionData, s.scope, id)
}

// Get 读取会话
func (s *RedisSessionStore) Get(ctx context.Context, id string) (*Session, error) {
	raw, err := s.redis.Get(ctx, s.key(id))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("读取会话失败: %w", err)
	}

	var session Session
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		return nil, fmt.Errorf("解析会话数据失败: %w", err)
	}
	if session.Record != nil {
		session.Record.Normalize()
	}
	return &session, nil
}

// Save 保存会话并刷新有效期
func (s *RedisSessionStore) Save(ctx context.Context, session *Session, ttl time.Duration) error {
	if session == nil || session.ID == "" {
		return errors.New("session id is required")
	}
	session.UpdatedAt = time.Now()
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("序列化会话失败: %w", err)
	}
	if err := s.redis.Set(ctx, s.key(session.ID), string(data), ttl); err != nil {
		return fmt.Errorf("保存会话失败: %w", err)
	}
	return nil
}

// Delete 删除会话
func (s *RedisSessionStore) Delete(ctx context.Context, id string) error {
	if err := s.redis.Client.Del(ctx, s.key(id)).Err(); err != nil {
		return fmt.Errorf("删除会话失败: %w", err)
	}
	return nil
}

// RedisResultCache 按文件MD5缓存解析结果
type RedisResultCache struct {
	redis *Redis
	ttl   time.Duration
}

// NewRedisResultCache 创建解析结果缓存
func NewRedisResultCache(r *Redis, ttl time.Duration) *RedisResultCache {
	return &RedisResultCache{redis: r, ttl: ttl}
}

// GetCachedResult 返回缓存的解析结果，未命中时返回 (nil, false, nil)
func (c *RedisResultCache) GetCachedResult(ctx context.Context, fileMD5 string) (*types.ResumeRecord, bool, error) {
	raw, err := c.redis.Get(ctx, FormatKey(constants.KeyParseResult, fileMD5))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}

	var record types.ResumeRecord
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		return nil, false, fmt.Errorf("解析缓存结果失败: %w", err)
	}
	return record.Normalize(), true, nil
}

// CacheResult 缓存解析结果
func (c *RedisResultCache) CacheResult(ctx context.Context, fileMD5 string, record *types.ResumeRecord) error {
	if record == nil {
		return nil
	}
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("序列化解析结果失败: %w", err)
	}
	return c.redis.Set(ctx, FormatKey(constants.KeyParseResult, fileMD5), string(data), c.ttl)
}
