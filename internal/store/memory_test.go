package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"forumhub/internal/model"
)

func TestMemoryWithTxRollsBackOnError(t *testing.T) {
	db := NewMemoryDB()
	ctx := context.Background()

	boom := errors.New("boom")
	err := db.WithTx(ctx, func(stores Stores) error {
		topic := &model.Topic{ID: "t1", Title: "T", Body: "B", CreatedAt: time.Now(), Status: model.StatusOpen}
		if err := stores.Topics().Create(ctx, topic); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected fn error, got %v", err)
	}
	if _, err := db.Topics().GetByID(ctx, "t1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected rollback, got %v", err)
	}
}

func TestMemoryWithTxCommits(t *testing.T) {
	db := NewMemoryDB()
	ctx := context.Background()

	err := db.WithTx(ctx, func(stores Stores) error {
		return stores.Topics().Create(ctx, &model.Topic{ID: "t1", Title: "T", Body: "B", CreatedAt: time.Now(), Status: model.StatusOpen})
	})
	if err != nil {
		t.Fatalf("tx: %v", err)
	}
	if _, err := db.Topics().GetByID(ctx, "t1"); err != nil {
		t.Fatalf("expected committed topic, got %v", err)
	}
}

func TestMemoryTopicOrderingBreaksTimestampTies(t *testing.T) {
	db := NewMemoryDB()
	ctx := context.Background()
	now := time.Now()

	for _, id := range []string{"a", "b", "c"} {
		err := db.Topics().Create(ctx, &model.Topic{ID: id, Title: id, Body: id, CreatedAt: now, Status: model.StatusOpen})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	topics, total, err := db.Topics().List(ctx, Page{Number: 0, Size: 10})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 3 {
		t.Fatalf("expected 3, got %d", total)
	}
	// identical timestamps fall back to insertion order, newest first
	if topics[0].ID != "c" || topics[1].ID != "b" || topics[2].ID != "a" {
		t.Fatalf("unexpected order: %s %s %s", topics[0].ID, topics[1].ID, topics[2].ID)
	}
}

func TestMemoryUserEmailConflict(t *testing.T) {
	db := NewMemoryDB()
	ctx := context.Background()

	user := &model.User{ID: "u1", Name: "alice", Email: "alice@example.local", CreatedAt: time.Now()}
	if err := db.Users().Create(ctx, user); err != nil {
		t.Fatalf("create: %v", err)
	}
	dup := &model.User{ID: "u2", Name: "other", Email: "alice@example.local", CreatedAt: time.Now()}
	if err := db.Users().Create(ctx, dup); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestMemoryTopicDeleteCascades(t *testing.T) {
	db := NewMemoryDB()
	ctx := context.Background()
	now := time.Now()

	if err := db.Topics().Create(ctx, &model.Topic{ID: "t1", CreatedAt: now, Status: model.StatusOpen}); err != nil {
		t.Fatalf("create topic: %v", err)
	}
	if err := db.Responses().Create(ctx, &model.Response{ID: "r1", TopicID: "t1", CreatedAt: now}); err != nil {
		t.Fatalf("create response: %v", err)
	}
	if err := db.Topics().Delete(ctx, "t1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := db.Responses().GetByID(ctx, "r1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected cascade, got %v", err)
	}
}

func TestMemoryFindSolution(t *testing.T) {
	db := NewMemoryDB()
	ctx := context.Background()
	now := time.Now()

	if err := db.Responses().Create(ctx, &model.Response{ID: "r1", TopicID: "t1", CreatedAt: now}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := db.Responses().FindSolution(ctx, "t1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound with no solution, got %v", err)
	}

	solved := &model.Response{ID: "r2", TopicID: "t1", CreatedAt: now, Solution: true}
	if err := db.Responses().Create(ctx, solved); err != nil {
		t.Fatalf("create: %v", err)
	}
	found, err := db.Responses().FindSolution(ctx, "t1")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if found.ID != "r2" {
		t.Fatalf("expected r2, got %s", found.ID)
	}
}
