package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/viralforge/mesh/services/financial-rails/M15-payments-ledger-service/internal/ports"
)

// OutboxWorker drains the transactional outbox: rows written inside
// ledger transactions are published to the bus in enqueue order, then
// marked so they are never sent twice.
type OutboxWorker struct {
	outbox    ports.OutboxRepository
	publisher ports.EventPublisher
	logger    *slog.Logger
	interval  time.Duration
	batchSize int
}

func NewOutboxWorker(outbox ports.OutboxRepository, publisher ports.EventPublisher, logger *slog.Logger, interval time.Duration, batchSize int) *OutboxWorker {
	if interval <= 0 {
		interval = time.Second
	}
	if batchSize <= 0 {
		batchSize = 100
	}
	return &OutboxWorker{
		outbox:    outbox,
		publisher: publisher,
		logger:    logger,
		interval:  interval,
		batchSize: batchSize,
	}
}

func (w *OutboxWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	w.logger.Info("outbox worker started", slog.Duration("interval", w.interval), slog.Int("batch_size", w.batchSize))
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("outbox worker stopped")
			return ctx.Err()
		case <-ticker.C:
			if err := w.ProcessOnce(ctx); err != nil {
				w.logger.Error("outbox pass failed", slog.String("error", err.Error()))
			}
		}
	}
}

// ProcessOnce publishes one batch. A publish failure records the error
// on the row and moves on; the row is retried next pass.
func (w *OutboxWorker) ProcessOnce(ctx context.Context) error {
	rows, err := w.outbox.FetchUnpublished(ctx, w.batchSize)
	if err != nil {
		return err
	}
	for _, row := range rows {
		now := time.Now().UTC()
		if pubErr := w.publisher.Publish(ctx, row.EventType, row.Payload, row.PartitionKey); pubErr != nil {
			w.logger.Warn("event publish failed",
				slog.String("outbox_id", row.OutboxID.String()),
				slog.String("event_type", row.EventType),
				slog.Int("retry_count", row.RetryCount+1),
				slog.String("error", pubErr.Error()),
			)
			if markErr := w.outbox.MarkFailed(ctx, row.OutboxID, pubErr.Error(), now); markErr != nil {
				return markErr
			}
			continue
		}
		if markErr := w.outbox.MarkPublished(ctx, row.OutboxID, now); markErr != nil {
			return markErr
		}
	}
	return nil
}
