package store

import (
	"context"
	"errors"

	"forumhub/internal/model"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("already exists")
)

// Page describes a pagination window. Number is zero-based.
type Page struct {
	Number int
	Size   int
}

func (p Page) Offset() int {
	if p.Number < 0 {
		return 0
	}
	return p.Number * p.Size
}

type UserStore interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, user *model.User) error
	Update(ctx context.Context, user *model.User) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]model.User, error)
}

type CourseStore interface {
	GetByID(ctx context.Context, id string) (*model.Course, error)
	Create(ctx context.Context, course *model.Course) error
	List(ctx context.Context) ([]model.Course, error)
}

type TopicStore interface {
	GetByID(ctx context.Context, id string) (*model.Topic, error)
	// GetByIDForUpdate locks the topic row for the duration of the enclosing
	// transaction. Outside a transaction it behaves like GetByID.
	GetByIDForUpdate(ctx context.Context, id string) (*model.Topic, error)
	ExistsByTitleAndBody(ctx context.Context, title, body string) (bool, error)
	Create(ctx context.Context, topic *model.Topic) error
	Update(ctx context.Context, topic *model.Topic) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, page Page) ([]model.Topic, int64, error)
	ListByStatus(ctx context.Context, status model.TopicStatus, page Page) ([]model.Topic, int64, error)
	Count(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context, status model.TopicStatus) (int64, error)
}

type ResponseStore interface {
	GetByID(ctx context.Context, id string) (*model.Response, error)
	Create(ctx context.Context, response *model.Response) error
	Update(ctx context.Context, response *model.Response) error
	Delete(ctx context.Context, id string) error
	ListByTopic(ctx context.Context, topicID string) ([]model.Response, error)
	// FindSolution returns the response flagged as solution for the topic,
	// or ErrNotFound when none is flagged.
	FindSolution(ctx context.Context, topicID string) (*model.Response, error)
	CountByTopic(ctx context.Context, topicID string) (int64, error)
}

// Stores bundles the per-entity stores sharing one connection or transaction.
type Stores interface {
	Users() UserStore
	Courses() CourseStore
	Topics() TopicStore
	Responses() ResponseStore
}

// DB is the persistence entry point the services depend on. WithTx runs fn
// against transaction-scoped stores; any error rolls the whole unit back.
type DB interface {
	Stores
	WithTx(ctx context.Context, fn func(Stores) error) error
}
