package redis

import (
	"context"
	"testing"
	"time"
)

func TestAttemptRepository_SetGet(t *testing.T) {
	client, server := newTestRedis(t)
	repo := NewAttemptRepository(client, "captcha:passed")

	ctx := context.Background()
	if err := repo.Set(ctx, "user@example.com:203.0.113.7", 6, 180*time.Second); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}

	value, found, err := repo.Get(ctx, "user@example.com:203.0.113.7")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if !found {
		t.Fatal("expected record to exist")
	}
	if value != 6 {
		t.Fatalf("expected 6, got %d", value)
	}

	remaining := server.TTL("captcha:passed:user@example.com:203.0.113.7")
	if remaining <= 0 || remaining > 180*time.Second {
		t.Fatalf("expected ttl within (0, 180s], got %v", remaining)
	}
}

func TestAttemptRepository_GetMiss(t *testing.T) {
	client, _ := newTestRedis(t)
	repo := NewAttemptRepository(client, "captcha:passed")

	_, found, err := repo.Get(context.Background(), "missing")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if found {
		t.Fatal("expected miss")
	}
}

func TestAttemptRepository_Expiry(t *testing.T) {
	client, server := newTestRedis(t)
	repo := NewAttemptRepository(client, "captcha:passed")

	ctx := context.Background()
	if err := repo.Set(ctx, "k", 6, 180*time.Second); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}

	server.FastForward(181 * time.Second)

	_, found, err := repo.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if found {
		t.Fatal("expected record to expire")
	}
}

func TestAttemptRepository_DeleteAndTTL(t *testing.T) {
	client, _ := newTestRedis(t)
	repo := NewAttemptRepository(client, "captcha:passed")

	ctx := context.Background()
	if err := repo.Set(ctx, "k", 3, time.Minute); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}

	ttl, found, err := repo.TTL(ctx, "k")
	if err != nil {
		t.Fatalf("TTL returned error: %v", err)
	}
	if !found || ttl <= 0 {
		t.Fatalf("expected positive ttl, got found=%v ttl=%v", found, ttl)
	}

	if err := repo.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}

	_, found, err = repo.TTL(ctx, "k")
	if err != nil {
		t.Fatalf("TTL returned error: %v", err)
	}
	if found {
		t.Fatal("expected miss after delete")
	}
}

func TestAttemptRepository_RejectsNonPositiveTTL(t *testing.T) {
	client, _ := newTestRedis(t)
	repo := NewAttemptRepository(client, "captcha:passed")

	if err := repo.Set(context.Background(), "k", 6, 0); err == nil {
		t.Fatal("expected error for zero ttl")
	}
}
