package events

import (
	"context"
	"log/slog"

	"github.com/viralforge/mesh/services/financial-rails/M15-payments-ledger-service/internal/domain"
)

// LoggingPublisher is the publisher of last resort: when no broker is
// configured, events still leave a structured trace in the logs.
type LoggingPublisher struct {
	logger *slog.Logger
}

func NewLoggingPublisher(logger *slog.Logger) *LoggingPublisher {
	return &LoggingPublisher{logger: logger}
}

func (p *LoggingPublisher) Publish(_ context.Context, eventType string, payload []byte, partitionKey string) error {
	p.logger.Info("event published",
		slog.String("event_type", eventType),
		slog.String("event_class", domain.CanonicalEventClass(eventType)),
		slog.String("partition_key", partitionKey),
		slog.Int("payload_bytes", len(payload)),
	)
	return nil
}
