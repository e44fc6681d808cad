package service

import (
	"context"
	"errors"
	"testing"

	"forumhub/internal/model"
)

func TestRegisterAssignsDefaultRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user, err := f.users.Register(ctx, "alice", "alice@example.local", "secret")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if !user.HasRole(model.RoleUser) {
		t.Fatalf("expected default role, got %v", user.Roles)
	}
	if user.IsModerator() {
		t.Fatalf("fresh user must not be a moderator")
	}
	if user.PasswordHash == "secret" || user.PasswordHash == "" {
		t.Fatalf("expected password to be hashed")
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.users.Register(ctx, "alice", "alice@example.local", "secret"); err != nil {
		t.Fatalf("register: %v", err)
	}
	_, err := f.users.Register(ctx, "impostor", "alice@example.local", "other")
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestAuthenticate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.users.Register(ctx, "alice", "alice@example.local", "secret"); err != nil {
		t.Fatalf("register: %v", err)
	}

	user, err := f.users.Authenticate(ctx, "alice@example.local", "secret")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if user.Email != "alice@example.local" {
		t.Fatalf("unexpected user %s", user.Email)
	}

	if _, err := f.users.Authenticate(ctx, "alice@example.local", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	// unknown email reports the same error as a bad password
	if _, err := f.users.Authenticate(ctx, "nobody@example.local", "secret"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAddRemoveRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user, err := f.users.Register(ctx, "alice", "alice@example.local", "secret")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	promoted, err := f.users.AddRole(ctx, user.ID, model.RoleModerator)
	if err != nil {
		t.Fatalf("add role: %v", err)
	}
	if !promoted.IsModerator() {
		t.Fatalf("expected moderator after promotion")
	}

	// adding twice is a no-op
	promoted, err = f.users.AddRole(ctx, user.ID, model.RoleModerator)
	if err != nil {
		t.Fatalf("add role again: %v", err)
	}
	if len(promoted.Roles) != 2 {
		t.Fatalf("expected 2 roles, got %v", promoted.Roles)
	}

	demoted, err := f.users.RemoveRole(ctx, user.ID, model.RoleModerator)
	if err != nil {
		t.Fatalf("remove role: %v", err)
	}
	if demoted.IsModerator() {
		t.Fatalf("expected role removed")
	}

	if _, err := f.users.AddRole(ctx, "missing", model.RoleModerator); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestFindAndDeleteUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user, err := f.users.Register(ctx, "alice", "alice@example.local", "secret")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := f.users.FindByID(ctx, user.ID); err != nil {
		t.Fatalf("find by id: %v", err)
	}
	if _, err := f.users.FindByEmail(ctx, user.Email); err != nil {
		t.Fatalf("find by email: %v", err)
	}
	if _, err := f.users.FindByID(ctx, "missing"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}

	if err := f.users.Delete(ctx, user.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := f.users.FindByID(ctx, user.ID); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected user gone, got %v", err)
	}
}
