package application

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"github.com/viralforge/mesh/services/financial-rails/M15-payments-ledger-service/internal/contracts"
	"github.com/viralforge/mesh/services/financial-rails/M15-payments-ledger-service/internal/domain"
	"github.com/viralforge/mesh/services/financial-rails/M15-payments-ledger-service/internal/ports"
)

// enqueueEvent writes the canonical envelope into the outbox within the
// caller's transaction, so the event commits exactly when the ledger
// mutation does.
func (s *Service) enqueueEvent(ctx context.Context, repos ports.Repositories, eventType, traceID string, data any, partitionKey string) error {
	if repos.Outbox == nil {
		return nil
	}
	if !domain.IsCanonicalEmittedEvent(eventType) {
		return domain.ErrInvalidEnvelope
	}
	b, err := json.Marshal(data)
	if err != nil {
		return domain.ErrInvalidEnvelope
	}
	if strings.TrimSpace(traceID) == "" {
		traceID = uuid.NewString()
	}
	now := s.nowFn()
	eventID := uuid.New()
	envelope := contracts.EventEnvelope{
		EventID:          eventID.String(),
		EventType:        eventType,
		EventClass:       domain.CanonicalEventClass(eventType),
		OccurredAt:       now,
		PartitionKeyPath: domain.CanonicalPartitionKeyPath(eventType),
		PartitionKey:     partitionKey,
		SourceService:    s.cfg.ServiceName,
		TraceID:          traceID,
		SchemaVersion:    "v1",
		Data:             b,
	}
	payload, err := json.Marshal(envelope)
	if err != nil {
		return domain.ErrInvalidEnvelope
	}
	return repos.Outbox.Enqueue(ctx, ports.OutboxEvent{
		EventID:          eventID,
		EventType:        eventType,
		EventClass:       envelope.EventClass,
		PartitionKey:     partitionKey,
		PartitionKeyPath: envelope.PartitionKeyPath,
		Payload:          payload,
		SchemaVersion:    envelope.SchemaVersion,
		TraceID:          traceID,
		OccurredAt:       now,
	})
}
