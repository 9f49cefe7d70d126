// Package messaging publishes sale and refund events to Kafka.
package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/smartwear/pos-backend/internal/events"
	"github.com/smartwear/pos-backend/pkg/config"
)

const (
	headerEventType = "event_type"

	EventTypeSaleCompleted   = "sale.completed"
	EventTypeRefundProcessed = "refund.processed"
)

var tracer = otel.Tracer("smartwear/pos/messaging")

// writer is the subset of *kafka.Writer the publisher needs.
type writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher sends outbound events as JSON messages, one topic per event type.
type Publisher struct {
	w           writer
	saleTopic   string
	refundTopic string
}

var _ events.Recorder = (*Publisher)(nil)

// NewPublisher builds a publisher backed by a kafka writer for the configured brokers.
func NewPublisher(cfg config.EventingConfig) (*Publisher, error) {
	if !cfg.KafkaEnabled() {
		return nil, errors.New("kafka brokers are required")
	}
	w := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.KafkaBrokers...),
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
		RequiredAcks:           kafka.RequireAll,
		BatchTimeout:           50 * time.Millisecond,
	}
	return newPublisher(w, cfg.SaleTopic, cfg.RefundTopic)
}

func newPublisher(w writer, saleTopic, refundTopic string) (*Publisher, error) {
	if w == nil {
		return nil, errors.New("kafka writer required")
	}
	if saleTopic == "" || refundTopic == "" {
		return nil, errors.New("sale and refund topics are required")
	}
	return &Publisher{w: w, saleTopic: saleTopic, refundTopic: refundTopic}, nil
}

// RecordSale publishes the sale keyed by its sale id.
func (p *Publisher) RecordSale(ctx context.Context, sale events.SaleCompleted) error {
	return p.publish(ctx, p.saleTopic, EventTypeSaleCompleted, sale.SaleID, sale)
}

// RecordRefund publishes the refund keyed by the order it refunds.
func (p *Publisher) RecordRefund(ctx context.Context, refund events.RefundProcessed) error {
	return p.publish(ctx, p.refundTopic, EventTypeRefundProcessed, refund.OrderID, refund)
}

func (p *Publisher) publish(ctx context.Context, topic, eventType, key string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", eventType, err)
	}

	msg := kafka.Message{
		Topic:   topic,
		Key:     []byte(key),
		Value:   data,
		Headers: []kafka.Header{{Key: headerEventType, Value: []byte(eventType)}},
	}

	ctx, span := tracer.Start(ctx, "send "+topic,
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			attribute.String("messaging.system", "kafka"),
			attribute.String("messaging.destination.name", topic),
			attribute.String("messaging.kafka.message.key", key),
			attribute.String("pos.event_type", eventType),
		),
	)
	defer span.End()

	otel.GetTextMapPropagator().Inject(ctx, newHeaderCarrier(&msg))

	if err := p.w.WriteMessages(ctx, msg); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("publish %s: %w", eventType, err)
	}
	return nil
}

// Close flushes and closes the underlying writer.
func (p *Publisher) Close() error {
	if p == nil || p.w == nil {
		return nil
	}
	return p.w.Close()
}
