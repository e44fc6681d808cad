package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"forumhub/internal/model"
	"forumhub/internal/store"
)

// fixture wires the three services against a fresh in-memory DB.
type fixture struct {
	db        *store.MemoryDB
	users     *UserService
	topics    *TopicService
	responses *ResponseService
	course    *model.Course
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := store.NewMemoryDB()
	course := &model.Course{ID: uuid.NewString(), Name: "Go Fundamentals", Category: "programming"}
	if err := db.Courses().Create(context.Background(), course); err != nil {
		t.Fatalf("seed course: %v", err)
	}
	return &fixture{
		db:        db,
		users:     NewUserService(db),
		topics:    NewTopicService(db),
		responses: NewResponseService(db),
		course:    course,
	}
}

func (f *fixture) user(t *testing.T, name string, roles ...model.Role) *model.User {
	t.Helper()
	if len(roles) == 0 {
		roles = []model.Role{model.RoleUser}
	}
	user := &model.User{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     name + "@example.local",
		CreatedAt: time.Now().UTC(),
		Roles:     roles,
	}
	if err := f.db.Users().Create(context.Background(), user); err != nil {
		t.Fatalf("seed user %s: %v", name, err)
	}
	return user
}

func (f *fixture) topic(t *testing.T, author *model.User, title, body string) *model.Topic {
	t.Helper()
	topic, err := f.topics.Create(context.Background(), title, body, f.course.ID, author)
	if err != nil {
		t.Fatalf("create topic: %v", err)
	}
	return topic
}

func (f *fixture) response(t *testing.T, author *model.User, topicID, message string) *model.Response {
	t.Helper()
	response, err := f.responses.Create(context.Background(), topicID, message, author)
	if err != nil {
		t.Fatalf("create response: %v", err)
	}
	return response
}
