package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"forumhub/internal/model"
)

func openTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv("FORUMHUB_TEST_DB")
	if url == "" {
		url = os.Getenv("DATABASE_URL")
	}
	if url == "" {
		t.Skip("FORUMHUB_TEST_DB or DATABASE_URL not set")
		return nil
	}
	pool, err := NewPool(context.Background(), url)
	if err != nil {
		t.Skipf("db unavailable: %v", err)
		return nil
	}
	if err := Migrate(context.Background(), pool); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return pool
}

func TestPostgresTopicRoundTrip(t *testing.T) {
	pool := openTestDB(t)
	if pool == nil {
		return
	}
	defer pool.Close()

	db := NewPostgresDB(pool)
	ctx := context.Background()

	user := &model.User{
		ID:        uuid.NewString(),
		Name:      "alice",
		Email:     uuid.NewString() + "@example.local",
		CreatedAt: time.Now().UTC(),
		Roles:     []model.Role{model.RoleUser},
	}
	if err := db.Users().Create(ctx, user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	course := &model.Course{ID: uuid.NewString(), Name: "Go", Category: "programming"}
	if err := db.Courses().Create(ctx, course); err != nil {
		t.Fatalf("create course: %v", err)
	}

	topic := &model.Topic{
		ID:        uuid.NewString(),
		Title:     uuid.NewString(),
		Body:      "body",
		CreatedAt: time.Now().UTC(),
		Status:    model.StatusOpen,
		AuthorID:  user.ID,
		CourseID:  course.ID,
	}
	if err := db.Topics().Create(ctx, topic); err != nil {
		t.Fatalf("create topic: %v", err)
	}

	loaded, err := db.Topics().GetByID(ctx, topic.ID)
	if err != nil {
		t.Fatalf("get topic: %v", err)
	}
	if loaded.Title != topic.Title || loaded.Status != model.StatusOpen {
		t.Fatalf("unexpected topic %+v", loaded)
	}

	exists, err := db.Topics().ExistsByTitleAndBody(ctx, topic.Title, "body")
	if err != nil || !exists {
		t.Fatalf("expected pair to exist, got exists=%v err=%v", exists, err)
	}

	if err := db.Topics().Delete(ctx, topic.ID); err != nil {
		t.Fatalf("delete topic: %v", err)
	}
	if err := db.Users().Delete(ctx, user.ID); err != nil {
		t.Fatalf("delete user: %v", err)
	}
}

func TestPostgresRoleCatalogSeeded(t *testing.T) {
	pool := openTestDB(t)
	if pool == nil {
		return
	}
	defer pool.Close()

	for _, role := range []model.Role{model.RoleUser, model.RoleModerator, model.RoleAdmin} {
		ok, err := RoleExists(context.Background(), pool, role)
		if err != nil {
			t.Fatalf("role check: %v", err)
		}
		if !ok {
			t.Fatalf("expected role %s to be seeded", role)
		}
	}
}
