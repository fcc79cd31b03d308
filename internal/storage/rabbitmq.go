package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"resume-parser-go/internal/config"
	"resume-parser-go/internal/logger"
	"resume-parser-go/internal/tracing"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// EventPublisher 解析事件发布接口
type EventPublisher interface {
	PublishParsed(ctx context.Context, msg *ResumeParsedMessage) error
}

var _ EventPublisher = (*RabbitMQ)(nil)

// ErrPublishNacked Broker 拒绝了消息
var ErrPublishNacked = errors.New("message not acknowledged by broker")

var mqTracer = otel.Tracer("rabbitmq")

// RabbitMQ 解析事件发布者，使用单个开启了发布确认的通道
type RabbitMQ struct {
	conn *amqp.Connection
	cfg  *config.RabbitMQConfig

	mu sync.Mutex // 保护 ch，发布确认要求同一通道上的发布串行
	ch *amqp.Channel
}

// NewRabbitMQ 连接 RabbitMQ 并打开发布通道
func NewRabbitMQ(cfg *config.RabbitMQConfig) (*RabbitMQ, error) {
	if cfg == nil {
		return nil, fmt.Errorf("RabbitMQ配置不能为空")
	}
	if cfg.URL == "" {
		return nil, fmt.Errorf("RabbitMQ URL配置不能为空")
	}
	if cfg.ResumeEventsExchange == "" {
		return nil, fmt.Errorf("resume_events_exchange 不能为空")
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("无法连接到RabbitMQ服务器: %w", err)
	}

	mq := &RabbitMQ{conn: conn, cfg: cfg}
	if _, err := mq.channel(); err != nil {
		conn.Close()
		return nil, err
	}
	logger.Info().Str("exchange", cfg.ResumeEventsExchange).Msg("成功连接到RabbitMQ服务器")
	return mq, nil
}

// channel 返回发布通道，通道关闭后重新打开，调用方持有锁或处于初始化阶段
func (r *RabbitMQ) channel() (*amqp.Channel, error) {
	if r.ch != nil && !r.ch.IsClosed() {
		return r.ch, nil
	}
	ch, err := r.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("创建RabbitMQ通道失败: %w", err)
	}
	if err := ch.Confirm(false); err != nil {
		ch.Close()
		return nil, fmt.Errorf("开启发布确认失败: %w", err)
	}
	r.ch = ch
	return ch, nil
}

// SetupParsedTopology 声明解析事件的 topic 交换机，配置了队列时一并声明并绑定
func (r *RabbitMQ) SetupParsedTopology() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ch, err := r.channel()
	if err != nil {
		return err
	}

	exchange := r.cfg.ResumeEventsExchange
	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		return fmt.Errorf("声明exchange失败: %w", err)
	}
	if r.cfg.ParsedEventsQueue == "" {
		return nil
	}

	if _, err := ch.QueueDeclare(r.cfg.ParsedEventsQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("声明队列失败: %w", err)
	}
	if err := ch.QueueBind(r.cfg.ParsedEventsQueue, r.cfg.ParsedRoutingKey, exchange, false, nil); err != nil {
		return fmt.Errorf("绑定队列到exchange失败: %w", err)
	}
	logger.Info().
		Str("queue", r.cfg.ParsedEventsQueue).
		Str("exchange", exchange).
		Str("routing_key", r.cfg.ParsedRoutingKey).
		Msg("解析事件拓扑已就绪")
	return nil
}

// Close 关闭通道和连接
func (r *RabbitMQ) Close() error {
	r.mu.Lock()
	if r.ch != nil {
		_ = r.ch.Close()
		r.ch = nil
	}
	r.mu.Unlock()
	return r.conn.Close()
}

// PublishJSON 发布持久化的JSON消息并等待 Broker 确认
func (r *RabbitMQ) PublishJSON(ctx context.Context, routingKey, messageID string, data interface{}) error {
	body, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("JSON序列化失败: %w", err)
	}

	exchange := r.cfg.ResumeEventsExchange
	ctx, span := mqTracer.Start(ctx, exchange+" publish",
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			attribute.String("messaging.system", "rabbitmq"),
			attribute.String("messaging.destination.name", exchange),
			attribute.String("messaging.rabbitmq.destination.routing_key", routingKey),
			attribute.String("messaging.message.id", messageID),
			attribute.Int("messaging.message.body.size", len(body)),
		),
	)
	defer span.End()

	headers := amqp.Table{}
	otel.GetTextMapPropagator().Inject(ctx, amqpHeaderCarrier(headers))

	r.mu.Lock()
	defer r.mu.Unlock()

	ch, err := r.channel()
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeRabbitMQ)
		return err
	}

	confirm, err := ch.PublishWithDeferredConfirmWithContext(ctx, exchange, routingKey, false, false, amqp.Publishing{
		Headers:      headers,
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		MessageId:    messageID,
		Body:         body,
		Timestamp:    time.Now(),
	})
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeRabbitMQ)
		return fmt.Errorf("发布消息失败: %w", err)
	}

	acked, err := confirm.WaitContext(ctx)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeTimeout)
		return fmt.Errorf("等待发布确认失败: %w", err)
	}
	if !acked {
		tracing.RecordPublishNack(span, messageID)
		return ErrPublishNacked
	}
	return nil
}

// PublishParsed 发布解析完成事件，超时由 publish_timeout 控制
func (r *RabbitMQ) PublishParsed(ctx context.Context, msg *ResumeParsedMessage) error {
	timeout := config.GetDuration(r.cfg.PublishTimeout, 5*time.Second)
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return r.PublishJSON(ctx, r.cfg.ParsedRoutingKey, msg.EventID, msg)
}

// amqpHeaderCarrier 让追踪上下文随消息头传递给消费者
type amqpHeaderCarrier amqp.Table

func (c amqpHeaderCarrier) Get(key string) string {
	v, _ := c[key].(string)
	return v
}

func (c amqpHeaderCarrier) Set(key, value string) {
	c[key] = value
}

func (c amqpHeaderCarrier) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	return keys
}
