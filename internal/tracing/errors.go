package tracing

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ErrorType 错误分类，写入 span 的 error.type 属性
type ErrorType string

const (
	ErrorTypeHTTP            ErrorType = "http"
	ErrorTypeDB              ErrorType = "db"
	ErrorTypeRedis           ErrorType = "redis"
	ErrorTypeRabbitMQ        ErrorType = "rabbitmq"
	ErrorTypeObjectStore     ErrorType = "object_store"
	ErrorTypeExtraction      ErrorType = "text_extraction"
	ErrorTypeFieldExtraction ErrorType = "field_extraction"
	ErrorTypeTimeout         ErrorType = "timeout"
)

// RecordError 记录错误并设置 span 状态
// 上下文超时或取消的错误统一归类为 timeout
func RecordError(span trace.Span, err error, errorType ErrorType, attrs ...attribute.KeyValue) {
	if span == nil || err == nil {
		return
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		errorType = ErrorTypeTimeout
	}

	msg := TruncateString(err.Error(), DefaultMaxLength)
	span.RecordError(err)
	span.SetAttributes(
		attribute.String("error.type", string(errorType)),
		attribute.String("error.message", msg),
	)
	span.SetAttributes(attrs...)
	span.SetStatus(codes.Error, msg)
}

// RecordPublishNack 记录事件消息被 Broker 拒绝
func RecordPublishNack(span trace.Span, messageID string) {
	if span == nil {
		return
	}
	const msg = "message not acknowledged by broker"
	span.SetAttributes(
		attribute.String("error.type", string(ErrorTypeRabbitMQ)),
		attribute.String("messaging.message.id", messageID),
		attribute.String("messaging.error_type", "nack"),
	)
	span.SetStatus(codes.Error, msg)
}
