package storage

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"resume-parser-go/internal/config"
	"resume-parser-go/internal/storage/models"
	"resume-parser-go/internal/tracing"
	"resume-parser-go/pkg/utils"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var mysqlTracer = otel.Tracer("resume-parser-go/storage/mysql")

type gormSpanKey struct{}

// GormTracingPlugin 为GORM的每类操作创建客户端span
type GormTracingPlugin struct {
	tracer trace.Tracer
	dbName string
}

// NewGormTracingPlugin 创建一个新的GORM追踪插件
func NewGormTracingPlugin(dbName string) *GormTracingPlugin {
	return &GormTracingPlugin{tracer: mysqlTracer, dbName: dbName}
}

// Name 返回插件名称
func (p *GormTracingPlugin) Name() string {
	return "GormOpenTelemetryPlugin"
}

// Initialize 注册GORM回调以启用追踪
func (p *GormTracingPlugin) Initialize(db *gorm.DB) error {
	cb := db.Callback()
	errs := []error{
		cb.Create().Before("gorm:create").Register("otel:before_create", p.before("CREATE")),
		cb.Create().After("gorm:create").Register("otel:after_create", p.after()),
		cb.Query().Before("gorm:query").Register("otel:before_query", p.before("SELECT")),
		cb.Query().After("gorm:query").Register("otel:after_query", p.after()),
		cb.Update().Before("gorm:update").Register("otel:before_update", p.before("UPDATE")),
		cb.Update().After("gorm:update").Register("otel:after_update", p.after()),
		cb.Delete().Before("gorm:delete").Register("otel:before_delete", p.before("DELETE")),
		cb.Delete().After("gorm:delete").Register("otel:after_delete", p.after()),
		cb.Row().Before("gorm:row").Register("otel:before_row", p.before("ROW")),
		cb.Row().After("gorm:row").Register("otel:after_row", p.after()),
		cb.Raw().Before("gorm:raw").Register("otel:before_raw", p.before("RAW")),
		cb.Raw().After("gorm:raw").Register("otel:after_raw", p.after()),
	}
	return errors.Join(errs...)
}

func (p *GormTracingPlugin) before(operation string) func(db *gorm.DB) {
	return func(db *gorm.DB) {
		if db.Statement.SkipHooks {
			return
		}
		ctx := db.Statement.Context
		if ctx == nil {
			ctx = context.Background()
		}
		table := db.Statement.Table
		if table == "" {
			table = "unknown"
		}

		ctx, span := p.tracer.Start(ctx, operation+" "+table,
			trace.WithSpanKind(trace.SpanKindClient),
			trace.WithAttributes(
				semconv.DBSystemMySQL,
				attribute.String("db.name", p.dbName),
				attribute.String("db.operation", operation),
				attribute.String("db.sql.table", table),
			))
		db.Statement.Context = context.WithValue(ctx, gormSpanKey{}, span)
	}
}

func (p *GormTracingPlugin) after() func(db *gorm.DB) {
	return func(db *gorm.DB) {
		span, ok := db.Statement.Context.Value(gormSpanKey{}).(trace.Span)
		if !ok {
			return
		}
		defer span.End()

		span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))
		switch {
		case db.Error == nil:
			span.SetStatus(codes.Ok, "")
		case errors.Is(db.Error, gorm.ErrRecordNotFound):
			// 查询不到记录属于正常业务结果
			span.SetAttributes(attribute.String("error.type", "record_not_found"))
		default:
			tracing.RecordError(span, db.Error, tracing.ErrorTypeDB)
		}
	}
}

// AuditSink 解析审计写入接口
type AuditSink interface {
	SaveParseAudit(ctx context.Context, audit *models.ParseAudit) error
}

var _ AuditSink = (*MySQL)(nil)

// MySQL 提供解析审计的持久化
type MySQL struct {
	db  *gorm.DB
	cfg *config.MySQLConfig
}

// NewMySQL 创建MySQL客户端
func NewMySQL(cfg *config.MySQLConfig) (*MySQL, error) {
	if cfg == nil {
		return nil, fmt.Errorf("MySQL配置不能为空")
	}

	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local&timeout=%ds",
		cfg.Username, cfg.Password, cfg.Host, cfg.Port, cfg.Database, cfg.ConnectTimeoutSeconds)

	var logLevel logger.LogLevel
	switch cfg.LogLevel {
	case 1:
		logLevel = logger.Silent
	case 3:
		logLevel = logger.Warn
	case 4:
		logLevel = logger.Info
	default:
		logLevel = logger.Error
	}

	gormConfig := &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   logger.Default.LogMode(logLevel),
		PrepareStmt:                              true,
		NowFunc: func() time.Time {
			return time.Now().Local()
		},
	}

	db, err := gorm.Open(mysql.Open(dsn), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("连接MySQL失败: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取底层 sql.DB 失败: %w", err)
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute)

	if err := db.Use(NewGormTracingPlugin(cfg.Database)); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("注册追踪插件失败: %w", err)
	}

	m := &MySQL{db: db, cfg: cfg}
	if err := m.autoMigrateSchema(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("自动迁移数据库结构失败: %w", err)
	}

	log.Println("成功连接到MySQL并自动迁移数据库结构")
	return m, nil
}

// autoMigrateSchema 使用静默日志迁移表结构
func (m *MySQL) autoMigrateSchema() error {
	silentDB := m.db.Session(&gorm.Session{Logger: m.db.Logger.LogMode(logger.Silent)})
	if err := silentDB.AutoMigrate(&models.ParseAudit{}); err != nil {
		return fmt.Errorf("GORM自动迁移失败: %w", err)
	}
	return nil
}

// DB 返回GORM数据库连接实例
func (m *MySQL) DB() *gorm.DB {
	return m.db
}

// Close 关闭数据库连接
func (m *MySQL) Close() error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return fmt.Errorf("获取底层 sql.DB 失败: %w", err)
	}
	return sqlDB.Close()
}

// SaveParseAudit 写入一条解析审计记录
func (m *MySQL) SaveParseAudit(ctx context.Context, audit *models.ParseAudit) error {
	ctx, span := mysqlTracer.Start(ctx, "MySQL.SaveParseAudit",
		trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	span.SetAttributes(
		semconv.DBSystemMySQL,
		attribute.String("db.name", m.cfg.Database),
		attribute.String("db.operation", "INSERT"),
		attribute.String("db.sql.table", audit.TableName()),
	)

	if err := m.db.WithContext(ctx).Create(audit).Error; err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeDB)
		return fmt.Errorf("写入解析审计失败: %w", err)
	}
	span.SetStatus(codes.Ok, "")
	return nil
}

// RecentParseAudits 按时间倒序返回最近的审计记录
func (m *MySQL) RecentParseAudits(ctx context.Context, limit int) ([]models.ParseAudit, error) {
	if limit <= 0 {
		limit = 20
	}
	var audits []models.ParseAudit
	err := m.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&audits).Error
	return audits, err
}

// ParseAuditFromMessage 将解析事件转换为审计记录
func ParseAuditFromMessage(msg *ResumeParsedMessage) *models.ParseAudit {
	return &models.ParseAudit{
		EventID:         msg.EventID,
		SessionID:       msg.SessionID,
		FileMD5:         msg.FileMD5,
		FileSize:        msg.FileSize,
		Extractor:       msg.Extractor,
		Succeeded:       msg.Succeeded,
		Cached:          msg.Cached,
		Duplicate:       msg.Duplicate,
		StatesJSON:      utils.ConvertArrayToJSON(msg.States),
		AnomaliesJSON:   utils.ConvertArrayToJSON(msg.Anomalies),
		TextLength:      msg.TextLength,
		EducationCount:  msg.Educations,
		ExperienceCount: msg.Experiences,
		SkillCount:      msg.Skills,
		DurationMS:      msg.DurationMS,
		ErrorMessage:    msg.Error,
		CreatedAt:       msg.Timestamp,
	}
}
