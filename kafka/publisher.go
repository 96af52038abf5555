package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/tair/payment-service/pkg/logger"
)

// Publisher wraps Kafka producer
type Publisher struct {
	producer sarama.SyncProducer
	brokers  []string
}

// NewPublisher creates a new Kafka publisher
func NewPublisher(brokers []string) (*Publisher, error) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.Retry.Max = 3
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Compression = sarama.CompressionSnappy
	config.Producer.MaxMessageBytes = 1000000

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	logger.Logger.Info().
		Strs("brokers", brokers).
		Msg("Kafka publisher initialized")

	return &Publisher{
		producer: producer,
		brokers:  brokers,
	}, nil
}

// Close shuts down the underlying producer.
func (p *Publisher) Close() error {
	return p.producer.Close()
}

// PublishPaymentResult publishes a terminal payment event with tracing
func (p *Publisher) PublishPaymentResult(ctx context.Context, event PaymentResultEvent) error {
	tracer := otel.Tracer("kafka-publisher")
	ctx, span := tracer.Start(ctx, "kafka.publish.payment_result",
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			attribute.String("messaging.system", "kafka"),
			attribute.String("messaging.destination", TopicPaymentResults),
			attribute.String("messaging.destination_kind", "topic"),
			attribute.String("payment.txn_ref", event.TxnRef),
			attribute.String("payment.status", event.Status),
		),
	)
	defer span.End()

	if event.EventID == "" {
		event.EventID = uuid.New().String()
	}
	if event.EventType == "" {
		if event.Status == "PAID" {
			event.EventType = EventTypePaymentPaid
		} else {
			event.EventType = EventTypePaymentFailed
		}
	}
	event.Timestamp = time.Now()

	span.SetAttributes(attribute.String("event.id", event.EventID))

	return p.publish(ctx, span, TopicPaymentResults, event.TxnRef, event.EventType, event.EventID, event)
}

// PublishReconcileExhausted publishes an escalation event when the outbox
// worker has given up on an order-side reconciliation.
func (p *Publisher) PublishReconcileExhausted(ctx context.Context, event ReconcileExhaustedEvent) error {
	tracer := otel.Tracer("kafka-publisher")
	ctx, span := tracer.Start(ctx, "kafka.publish.reconcile_exhausted",
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			attribute.String("messaging.system", "kafka"),
			attribute.String("messaging.destination", TopicReconcileAlerts),
			attribute.String("reconcile.action", event.Action),
			attribute.Int("reconcile.attempts", event.Attempts),
		),
	)
	defer span.End()

	if event.EventID == "" {
		event.EventID = uuid.New().String()
	}
	event.EventType = EventTypeReconcileExhausted
	event.Timestamp = time.Now()

	return p.publish(ctx, span, TopicReconcileAlerts, event.TaskID, event.EventType, event.EventID, event)
}

func (p *Publisher) publish(ctx context.Context, span trace.Span, topic, key, eventType, eventID string, event interface{}) error {
	eventBytes, err := json.Marshal(event)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to marshal event")
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	// Inject trace context into Kafka headers
	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)

	headers := []sarama.RecordHeader{
		{Key: []byte("event_type"), Value: []byte(eventType)},
		{Key: []byte("event_id"), Value: []byte(eventID)},
	}
	for k, v := range carrier {
		headers = append(headers, sarama.RecordHeader{
			Key:   []byte(k),
			Value: []byte(v),
		})
	}

	msg := &sarama.ProducerMessage{
		Topic:   topic,
		Key:     sarama.StringEncoder(key),
		Value:   sarama.ByteEncoder(eventBytes),
		Headers: headers,
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to send message")
		logger.Logger.Error().
			Err(err).
			Str("topic", topic).
			Str("event_id", eventID).
			Msg("Failed to publish event")
		return fmt.Errorf("failed to send message: %w", err)
	}

	span.SetAttributes(
		attribute.Int64("messaging.kafka.partition", int64(partition)),
		attribute.Int64("messaging.kafka.offset", offset),
	)

	logger.Logger.Info().
		Str("topic", topic).
		Str("event_type", eventType).
		Str("event_id", eventID).
		Int32("partition", partition).
		Int64("offset", offset).
		Msg("Event published")

	return nil
}
