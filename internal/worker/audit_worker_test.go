package worker

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"finchat/internal/amqp"
	"finchat/internal/storage"
)

func TestHandleChatEventStoresOnce(t *testing.T) {
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "audit.db"))
	if err != nil {
		t.Fatalf("new repository: %v", err)
	}
	defer repo.Close()

	w := NewAuditWorker(repo)
	ctx := context.Background()
	event := amqp.NewChatEvent("u1", "weekend", "this weekend?", "₹370")

	for i := 0; i < 2; i++ {
		if err := w.HandleChatEvent(ctx, event); err != nil {
			t.Fatalf("delivery %d: %v", i, err)
		}
	}

	events, err := repo.ListChatEvents(ctx, "u1", 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(events) != 1 || events[0].ID != event.ID || events[0].Intent != "weekend" {
		t.Fatalf("unexpected events: %+v", events)
	}
}

type failingRecorder struct{}

func (failingRecorder) RecordChatEvent(context.Context, storage.ChatEvent) (bool, error) {
	return false, errors.New("database is locked")
}

func TestHandleChatEventPropagatesFailure(t *testing.T) {
	err := NewAuditWorker(failingRecorder{}).HandleChatEvent(context.Background(), amqp.NewChatEvent("u1", "waste", "q", "a"))
	if err == nil {
		t.Fatal("expected error so the delivery is requeued")
	}
}
