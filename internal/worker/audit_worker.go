package worker

import (
	"context"
	"fmt"
	"log/slog"

	"finchat/internal/amqp"
	"finchat/internal/log"
	"finchat/internal/storage"
)

// EventRecorder persists chat events. Recording an id twice is a no-op.
type EventRecorder interface {
	RecordChatEvent(ctx context.Context, e storage.ChatEvent) (bool, error)
}

// AuditWorker stores chat events consumed from the broker.
type AuditWorker struct {
	store EventRecorder
}

func NewAuditWorker(store EventRecorder) *AuditWorker {
	return &AuditWorker{store: store}
}

// HandleChatEvent persists one event. A returned error makes the consumer
// requeue the delivery.
func (w *AuditWorker) HandleChatEvent(ctx context.Context, msg *amqp.ChatEvent) error {
	inserted, err := w.store.RecordChatEvent(ctx, storage.ChatEvent{
		ID:         msg.ID,
		UserID:     msg.UserID,
		Intent:     msg.Intent,
		Question:   msg.Question,
		Answer:     msg.Answer,
		OccurredAt: msg.OccurredAt,
	})
	if err != nil {
		return fmt.Errorf("record chat event %s: %w", msg.ID, err)
	}

	if !inserted {
		slog.DebugContext(ctx, "Skipping already recorded chat event", log.FieldEventID, msg.ID)
		return nil
	}

	slog.InfoContext(ctx, "Recorded chat event",
		log.FieldEventID, msg.ID,
		log.FieldUserID, msg.UserID,
		log.FieldIntent, msg.Intent)
	return nil
}
