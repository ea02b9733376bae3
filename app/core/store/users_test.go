package store

import (
	"context"
	"errors"
	"testing"
)

func TestUserCreateAndLookup(t *testing.T) {
	database := newTestDB(t)
	store := NewUserStore(database)
	ctx := context.Background()

	user, err := store.Create(ctx, "Alice@Example.com", "hash-1")
	if err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	if user.Email != "alice@example.com" {
		t.Fatalf("expected lowercased email, got %q", user.Email)
	}
	if !user.IsActive {
		t.Fatalf("expected new user to be active")
	}

	byEmail, err := store.GetByEmail(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("get by email failed: %v", err)
	}
	if byEmail.ID != user.ID || byEmail.PasswordHash != "hash-1" {
		t.Fatalf("lookup mismatch: %+v", byEmail)
	}

	byID, err := store.GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("get by id failed: %v", err)
	}
	if byID.Email != user.Email {
		t.Fatalf("lookup mismatch: %+v", byID)
	}
}

func TestUserDuplicateEmail(t *testing.T) {
	database := newTestDB(t)
	store := NewUserStore(database)
	ctx := context.Background()

	if _, err := store.Create(ctx, "a@example.com", "h"); err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	if _, err := store.Create(ctx, "A@Example.com", "h"); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected email taken error, got %v", err)
	}
}

func TestUserNotFound(t *testing.T) {
	database := newTestDB(t)
	store := NewUserStore(database)
	ctx := context.Background()

	if _, err := store.GetByID(ctx, 42); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected user not found, got %v", err)
	}
	if _, err := store.GetByEmail(ctx, "ghost@example.com"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected user not found, got %v", err)
	}
}

func TestUserSetActive(t *testing.T) {
	database := newTestDB(t)
	store := NewUserStore(database)
	ctx := context.Background()

	user, err := store.Create(ctx, "a@example.com", "h")
	if err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	if err := store.SetActive(ctx, user.ID, false); err != nil {
		t.Fatalf("set active failed: %v", err)
	}
	got, err := store.GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("get by id failed: %v", err)
	}
	if got.IsActive {
		t.Fatalf("expected inactive user")
	}
}
