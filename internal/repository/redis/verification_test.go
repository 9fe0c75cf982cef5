package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/arklim/social-platform-accounts/internal/repository"
)

func TestVerificationTokenRepository_IssueOrReuseIsIdempotent(t *testing.T) {
	client, _ := newTestRedis(t)
	repo := NewVerificationTokenRepository(client, VerificationConfig{})

	ctx := context.Background()
	first, err := repo.IssueOrReuse(ctx, "user-1")
	if err != nil {
		t.Fatalf("IssueOrReuse returned error: %v", err)
	}
	if first == "" {
		t.Fatal("expected a token")
	}

	second, err := repo.IssueOrReuse(ctx, "user-1")
	if err != nil {
		t.Fatalf("second IssueOrReuse returned error: %v", err)
	}
	if second != first {
		t.Fatalf("expected identical token within TTL, got %q vs %q", first, second)
	}
}

func TestVerificationTokenRepository_NewTokenAfterExpiry(t *testing.T) {
	client, server := newTestRedis(t)
	repo := NewVerificationTokenRepository(client, VerificationConfig{TokenTTL: 30 * time.Minute})

	ctx := context.Background()
	first, err := repo.IssueOrReuse(ctx, "user-1")
	if err != nil {
		t.Fatalf("IssueOrReuse returned error: %v", err)
	}

	server.FastForward(31 * time.Minute)

	second, err := repo.IssueOrReuse(ctx, "user-1")
	if err != nil {
		t.Fatalf("IssueOrReuse after expiry returned error: %v", err)
	}
	if second == first {
		t.Fatal("expected a fresh token after expiry")
	}
}

func TestVerificationTokenRepository_LookupToken(t *testing.T) {
	client, _ := newTestRedis(t)
	repo := NewVerificationTokenRepository(client, VerificationConfig{})

	ctx := context.Background()
	token, err := repo.IssueOrReuse(ctx, "user-1")
	if err != nil {
		t.Fatalf("IssueOrReuse returned error: %v", err)
	}

	userID, err := repo.LookupToken(ctx, token)
	if err != nil {
		t.Fatalf("LookupToken returned error: %v", err)
	}
	if userID != "user-1" {
		t.Fatalf("expected user-1, got %q", userID)
	}

	if _, err := repo.LookupToken(ctx, "bogus"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestVerificationTokenRepository_Invalidate(t *testing.T) {
	client, _ := newTestRedis(t)
	repo := NewVerificationTokenRepository(client, VerificationConfig{})

	ctx := context.Background()
	token, err := repo.IssueOrReuse(ctx, "user-1")
	if err != nil {
		t.Fatalf("IssueOrReuse returned error: %v", err)
	}

	if err := repo.Invalidate(ctx, "user-1", token); err != nil {
		t.Fatalf("Invalidate returned error: %v", err)
	}

	if _, err := repo.LookupToken(ctx, token); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after invalidation, got %v", err)
	}

	fresh, err := repo.IssueOrReuse(ctx, "user-1")
	if err != nil {
		t.Fatalf("IssueOrReuse after invalidation returned error: %v", err)
	}
	if fresh == token {
		t.Fatal("expected a new token after invalidation")
	}
}

func TestVerificationTokenRepository_Cooldown(t *testing.T) {
	client, server := newTestRedis(t)
	repo := NewVerificationTokenRepository(client, VerificationConfig{CooldownTTL: 300 * time.Second})

	ctx := context.Background()
	active, err := repo.CooldownActive(ctx, "user-1")
	if err != nil {
		t.Fatalf("CooldownActive returned error: %v", err)
	}
	if active {
		t.Fatal("expected no cooldown initially")
	}

	if err := repo.SetCooldown(ctx, "user-1"); err != nil {
		t.Fatalf("SetCooldown returned error: %v", err)
	}

	active, err = repo.CooldownActive(ctx, "user-1")
	if err != nil {
		t.Fatalf("CooldownActive returned error: %v", err)
	}
	if !active {
		t.Fatal("expected cooldown to be active")
	}

	server.FastForward(301 * time.Second)

	active, err = repo.CooldownActive(ctx, "user-1")
	if err != nil {
		t.Fatalf("CooldownActive returned error: %v", err)
	}
	if active {
		t.Fatal("expected cooldown to lapse after 300s")
	}
}
