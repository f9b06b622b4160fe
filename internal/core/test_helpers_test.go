package core

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/vovakirdan/wirefeed/internal/store"
)

func mustMessage(t *testing.T, ch <-chan store.Message, content string) store.Message {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case msg := <-ch:
			if msg.Content == content {
				return msg
			}
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
	t.Fatalf("expected message %q not received", content)
	return store.Message{}
}

func mustNoMessage(t *testing.T, ch <-chan store.Message) {
	t.Helper()

	select {
	case msg := <-ch:
		t.Fatalf("unexpected message: %+v", msg)
	case <-time.After(50 * time.Millisecond):
	}
}

// recorder is an observer that keeps everything it was notified with.
type recorder struct {
	mu  sync.Mutex
	got []store.Message
}

func (r *recorder) Notify(_ context.Context, msg store.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.got = append(r.got, msg)
	return nil
}

func (r *recorder) messages() []store.Message {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]store.Message(nil), r.got...)
}

func testMessage(channelID int64, content string) store.Message {
	return store.Message{
		ID:          1,
		ChannelID:   channelID,
		UserID:      1,
		Content:     content,
		CreatedAt:   time.Now().UTC(),
		AuthorEmail: "alice@example.com",
	}
}
