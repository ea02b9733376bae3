package store

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestChatAppendAndListSince(t *testing.T) {
	database := newTestDB(t)
	user := newTestUser(t, database, "a@example.com")
	store := NewChatStore(database)
	ctx := context.Background()

	if _, err := store.Append(ctx, user.ID, "user", "hello", ""); err != nil {
		t.Fatalf("append failed: %v", err)
	}
	if _, err := store.Append(ctx, user.ID, "assistant", "hi there", "openai"); err != nil {
		t.Fatalf("append failed: %v", err)
	}
	if _, err := store.Append(ctx, user.ID, "system", "nope", ""); err == nil {
		t.Fatalf("expected role validation error")
	}

	since := time.Now().Add(-time.Hour).Unix()
	messages, err := store.ListSince(ctx, user.ID, since, 100)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(messages))
	}
	if messages[0].Role != "user" || messages[1].Role != "assistant" {
		t.Fatalf("expected chronological order: %+v", messages)
	}
	if messages[1].ModelProvider != "openai" {
		t.Fatalf("expected provider to round-trip, got %q", messages[1].ModelProvider)
	}
}

func TestChatRecentForContext(t *testing.T) {
	database := newTestDB(t)
	user := newTestUser(t, database, "a@example.com")
	store := NewChatStore(database)
	ctx := context.Background()

	for i := 0; i < 25; i++ {
		role := "user"
		if i%2 == 1 {
			role = "assistant"
		}
		if _, err := store.Append(ctx, user.ID, role, fmt.Sprintf("msg-%d", i), ""); err != nil {
			t.Fatalf("append failed: %v", err)
		}
	}

	recent, err := store.RecentForContext(ctx, user.ID, 20)
	if err != nil {
		t.Fatalf("recent failed: %v", err)
	}
	if len(recent) != 20 {
		t.Fatalf("expected 20 messages, got %d", len(recent))
	}
	if recent[0].Content != "msg-5" || recent[19].Content != "msg-24" {
		t.Fatalf("expected last 20 in order, got first=%q last=%q", recent[0].Content, recent[19].Content)
	}
}

func TestChatDeleteScoping(t *testing.T) {
	database := newTestDB(t)
	owner := newTestUser(t, database, "owner@example.com")
	other := newTestUser(t, database, "other@example.com")
	store := NewChatStore(database)
	ctx := context.Background()

	msg, err := store.Append(ctx, owner.ID, "user", "mine", "")
	if err != nil {
		t.Fatalf("append failed: %v", err)
	}

	if err := store.Delete(ctx, msg.ID, other.ID); !errors.Is(err, ErrMessageNotFound) {
		t.Fatalf("expected not found for other user, got %v", err)
	}
	if err := store.Delete(ctx, msg.ID, owner.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if err := store.Delete(ctx, msg.ID, owner.ID); !errors.Is(err, ErrMessageNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestChatClearForUser(t *testing.T) {
	database := newTestDB(t)
	user := newTestUser(t, database, "a@example.com")
	other := newTestUser(t, database, "b@example.com")
	store := NewChatStore(database)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := store.Append(ctx, user.ID, "user", "x", ""); err != nil {
			t.Fatalf("append failed: %v", err)
		}
	}
	if _, err := store.Append(ctx, other.ID, "user", "keep", ""); err != nil {
		t.Fatalf("append failed: %v", err)
	}

	deleted, err := store.ClearForUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	if deleted != 3 {
		t.Fatalf("expected 3 deleted, got %d", deleted)
	}

	left, err := store.ListSince(ctx, other.ID, 0, 10)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(left) != 1 {
		t.Fatalf("expected other user's history untouched, got %d", len(left))
	}
}
