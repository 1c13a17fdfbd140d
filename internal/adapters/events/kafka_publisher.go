// Package events carries ledger events off the outbox and onto the bus.
package events

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/viralforge/mesh/services/financial-rails/M15-payments-ledger-service/internal/domain"
)

// Topic layout: one topic per aggregate, keyed so every event for a
// given payment, subscription, or account lands on the same partition.
const (
	TopicLedger        = "ledger.accounts.v1"
	TopicPayments      = "ledger.payments.v1"
	TopicSubscriptions = "ledger.subscriptions.v1"
)

func topicFor(eventType string) string {
	switch {
	case strings.HasPrefix(eventType, "ledger."):
		return TopicLedger
	case strings.HasPrefix(eventType, "subscription."):
		return TopicSubscriptions
	default:
		return TopicPayments
	}
}

type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(brokers []string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			BatchTimeout: 20 * time.Millisecond,
			Async:        false,
		},
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, eventType string, payload []byte, partitionKey string) error {
	if !domain.IsCanonicalEmittedEvent(eventType) {
		return fmt.Errorf("%w: unknown event type %q", domain.ErrInvalidEnvelope, eventType)
	}
	msg := kafka.Message{
		Topic: topicFor(eventType),
		Key:   []byte(partitionKey),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(eventType)},
			{Key: "event_class", Value: []byte(domain.CanonicalEventClass(eventType))},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish %s: %w", eventType, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
