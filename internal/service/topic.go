package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"forumhub/internal/model"
	"forumhub/internal/store"
)

type TopicService struct {
	db store.DB
}

func NewTopicService(db store.DB) *TopicService {
	return &TopicService{db: db}
}

// Create opens a new topic. The (title, body) pair must be unique across the
// whole forum, independent of course.
func (s *TopicService) Create(ctx context.Context, title, body, courseID string, author *model.User) (*model.Topic, error) {
	var created *model.Topic
	err := s.db.WithTx(ctx, func(stores store.Stores) error {
		exists, err := stores.Topics().ExistsByTitleAndBody(ctx, title, body)
		if err != nil {
			return err
		}
		if exists {
			return ErrDuplicateTopic
		}

		course, err := stores.Courses().GetByID(ctx, courseID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("%s: %w", courseID, ErrCourseNotFound)
			}
			return err
		}

		topic := &model.Topic{
			ID:        uuid.NewString(),
			Title:     title,
			Body:      body,
			CreatedAt: time.Now().UTC(),
			Status:    model.StatusOpen,
			AuthorID:  author.ID,
			CourseID:  course.ID,
		}
		if err := stores.Topics().Create(ctx, topic); err != nil {
			return err
		}
		created = topic
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// List returns a page of topics, newest first, optionally filtered by status.
// No authorization required.
func (s *TopicService) List(ctx context.Context, status *model.TopicStatus, page store.Page) ([]model.Topic, int64, error) {
	if status != nil {
		return s.db.Topics().ListByStatus(ctx, *status, page)
	}
	return s.db.Topics().List(ctx, page)
}

func (s *TopicService) GetByID(ctx context.Context, id string) (*model.Topic, error) {
	topic, err := s.db.Topics().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", id, ErrTopicNotFound)
		}
		return nil, err
	}
	return topic, nil
}

// Update replaces the topic content. Only the author or a moderator may
// update; the duplicate check applies only when the pair actually changes.
func (s *TopicService) Update(ctx context.Context, id, title, body string, actingUser *model.User) (*model.Topic, error) {
	var updated *model.Topic
	err := s.db.WithTx(ctx, func(stores store.Stores) error {
		topic, err := getTopicForUpdate(ctx, stores, id)
		if err != nil {
			return err
		}
		if !canModifyTopic(topic, actingUser) {
			return fmt.Errorf("update topic: %w", ErrUnauthorized)
		}

		if topic.Title != title || topic.Body != body {
			exists, err := stores.Topics().ExistsByTitleAndBody(ctx, title, body)
			if err != nil {
				return err
			}
			if exists {
				return ErrDuplicateTopic
			}
		}

		topic.Title = title
		topic.Body = body
		if err := stores.Topics().Update(ctx, topic); err != nil {
			return err
		}
		updated = topic
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes the topic and all of its responses.
func (s *TopicService) Delete(ctx context.Context, id string, actingUser *model.User) error {
	return s.db.WithTx(ctx, func(stores store.Stores) error {
		topic, err := getTopicForUpdate(ctx, stores, id)
		if err != nil {
			return err
		}
		if !canModifyTopic(topic, actingUser) {
			return fmt.Errorf("delete topic: %w", ErrUnauthorized)
		}
		return stores.Topics().Delete(ctx, id)
	})
}

// Close marks the topic CLOSED. Closing is an author-only editorial act;
// moderators cannot close on the author's behalf.
func (s *TopicService) Close(ctx context.Context, id string, actingUser *model.User) (*model.Topic, error) {
	return s.setStatus(ctx, id, model.StatusClosed, actingUser, false)
}

// Open marks the topic OPEN. Reopening is moderation-recoverable: the author
// or a moderator may do it.
func (s *TopicService) Open(ctx context.Context, id string, actingUser *model.User) (*model.Topic, error) {
	return s.setStatus(ctx, id, model.StatusOpen, actingUser, true)
}

// SetStatus sets either status with the uniform author-or-moderator check.
func (s *TopicService) SetStatus(ctx context.Context, id string, status model.TopicStatus, actingUser *model.User) (*model.Topic, error) {
	return s.setStatus(ctx, id, status, actingUser, true)
}

func (s *TopicService) setStatus(ctx context.Context, id string, status model.TopicStatus, actingUser *model.User, allowModerator bool) (*model.Topic, error) {
	var updated *model.Topic
	err := s.db.WithTx(ctx, func(stores store.Stores) error {
		topic, err := getTopicForUpdate(ctx, stores, id)
		if err != nil {
			return err
		}
		allowed := topic.IsAuthor(actingUser)
		if allowModerator {
			allowed = canModifyTopic(topic, actingUser)
		}
		if !allowed {
			return fmt.Errorf("change topic status: %w", ErrUnauthorized)
		}

		if status == model.StatusClosed {
			topic.Close()
		} else {
			topic.Open()
		}
		if err := stores.Topics().Update(ctx, topic); err != nil {
			return err
		}
		updated = topic
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *TopicService) IsAuthor(ctx context.Context, topicID string, user *model.User) (bool, error) {
	topic, err := s.GetByID(ctx, topicID)
	if err != nil {
		return false, err
	}
	return topic.IsAuthor(user), nil
}

func (s *TopicService) Count(ctx context.Context) (int64, error) {
	return s.db.Topics().Count(ctx)
}

func (s *TopicService) CountByStatus(ctx context.Context, status model.TopicStatus) (int64, error) {
	return s.db.Topics().CountByStatus(ctx, status)
}

func getTopicForUpdate(ctx context.Context, stores store.Stores, id string) (*model.Topic, error) {
	topic, err := stores.Topics().GetByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", id, ErrTopicNotFound)
		}
		return nil, err
	}
	return topic, nil
}

func canModifyTopic(topic *model.Topic, user *model.User) bool {
	return topic.IsAuthor(user) || user.IsModerator()
}
