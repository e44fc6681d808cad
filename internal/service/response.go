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

type ResponseService struct {
	db store.DB
}

func NewResponseService(db store.DB) *ResponseService {
	return &ResponseService{db: db}
}

func (s *ResponseService) ListByTopic(ctx context.Context, topicID string) ([]model.Response, error) {
	if _, err := s.db.Topics().GetByID(ctx, topicID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", topicID, ErrTopicNotFound)
		}
		return nil, err
	}
	return s.db.Responses().ListByTopic(ctx, topicID)
}

func (s *ResponseService) GetByID(ctx context.Context, id string) (*model.Response, error) {
	response, err := s.db.Responses().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", id, ErrResponseNotFound)
		}
		return nil, err
	}
	return response, nil
}

func (s *ResponseService) Create(ctx context.Context, topicID, message string, author *model.User) (*model.Response, error) {
	var created *model.Response
	err := s.db.WithTx(ctx, func(stores store.Stores) error {
		if _, err := stores.Topics().GetByID(ctx, topicID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("%s: %w", topicID, ErrTopicNotFound)
			}
			return err
		}
		response := &model.Response{
			ID:        uuid.NewString(),
			Message:   message,
			CreatedAt: time.Now().UTC(),
			Solution:  false,
			AuthorID:  author.ID,
			TopicID:   topicID,
		}
		if err := stores.Responses().Create(ctx, response); err != nil {
			return err
		}
		created = response
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// MarkAsSolution flags the response as the topic's solution. Only the topic's
// author may do this. Any previously flagged response is unflagged in the
// same transaction, and the topic is forced CLOSED.
func (s *ResponseService) MarkAsSolution(ctx context.Context, responseID string, actingUser *model.User) (*model.Response, error) {
	var marked *model.Response
	err := s.db.WithTx(ctx, func(stores store.Stores) error {
		response, topic, err := getResponseWithTopic(ctx, stores, responseID)
		if err != nil {
			return err
		}
		if !topic.IsAuthor(actingUser) {
			return fmt.Errorf("mark solution: %w", ErrUnauthorized)
		}

		current, err := stores.Responses().FindSolution(ctx, topic.ID)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return err
		}
		if current != nil && current.ID != response.ID {
			current.Solution = false
			if err := stores.Responses().Update(ctx, current); err != nil {
				return err
			}
		}

		response.Solution = true
		if err := stores.Responses().Update(ctx, response); err != nil {
			return err
		}

		topic.Close()
		if err := stores.Topics().Update(ctx, topic); err != nil {
			return err
		}
		marked = response
		return nil
	})
	if err != nil {
		return nil, err
	}
	return marked, nil
}

// UnmarkAsSolution clears the solution flag and reopens the topic.
func (s *ResponseService) UnmarkAsSolution(ctx context.Context, responseID string, actingUser *model.User) (*model.Response, error) {
	var unmarked *model.Response
	err := s.db.WithTx(ctx, func(stores store.Stores) error {
		response, topic, err := getResponseWithTopic(ctx, stores, responseID)
		if err != nil {
			return err
		}
		if !topic.IsAuthor(actingUser) {
			return fmt.Errorf("unmark solution: %w", ErrUnauthorized)
		}

		response.Solution = false
		if err := stores.Responses().Update(ctx, response); err != nil {
			return err
		}

		topic.Open()
		if err := stores.Topics().Update(ctx, topic); err != nil {
			return err
		}
		unmarked = response
		return nil
	})
	if err != nil {
		return nil, err
	}
	return unmarked, nil
}

// Delete removes the response. Deleting the active solution reopens its
// topic before removal.
func (s *ResponseService) Delete(ctx context.Context, responseID string, actingUser *model.User) error {
	return s.db.WithTx(ctx, func(stores store.Stores) error {
		response, topic, err := getResponseWithTopic(ctx, stores, responseID)
		if err != nil {
			return err
		}
		if !response.IsAuthor(actingUser) && !actingUser.IsModerator() {
			return fmt.Errorf("delete response: %w", ErrUnauthorized)
		}

		if response.Solution {
			topic.Open()
			if err := stores.Topics().Update(ctx, topic); err != nil {
				return err
			}
		}
		return stores.Responses().Delete(ctx, responseID)
	})
}

// FindSolution returns the topic's solution response, or nil when the topic
// has none.
func (s *ResponseService) FindSolution(ctx context.Context, topicID string) (*model.Response, error) {
	if _, err := s.db.Topics().GetByID(ctx, topicID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", topicID, ErrTopicNotFound)
		}
		return nil, err
	}
	solution, err := s.db.Responses().FindSolution(ctx, topicID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return solution, nil
}

func (s *ResponseService) CountByTopic(ctx context.Context, topicID string) (int64, error) {
	if _, err := s.db.Topics().GetByID(ctx, topicID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return 0, fmt.Errorf("%s: %w", topicID, ErrTopicNotFound)
		}
		return 0, err
	}
	return s.db.Responses().CountByTopic(ctx, topicID)
}

// CanMarkAsSolution reports whether the user is the author of the response's
// topic. Used for UI permission hints.
func (s *ResponseService) CanMarkAsSolution(ctx context.Context, responseID string, user *model.User) (bool, error) {
	response, err := s.GetByID(ctx, responseID)
	if err != nil {
		return false, err
	}
	topic, err := s.db.Topics().GetByID(ctx, response.TopicID)
	if err != nil {
		return false, err
	}
	return topic.IsAuthor(user), nil
}

func (s *ResponseService) IsResponseAuthor(ctx context.Context, responseID string, user *model.User) (bool, error) {
	response, err := s.GetByID(ctx, responseID)
	if err != nil {
		return false, err
	}
	return response.IsAuthor(user), nil
}

// getResponseWithTopic loads the response and locks its topic row so solution
// flag changes and the coupled status transition commit atomically.
func getResponseWithTopic(ctx context.Context, stores store.Stores, responseID string) (*model.Response, *model.Topic, error) {
	response, err := stores.Responses().GetByID(ctx, responseID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil, fmt.Errorf("%s: %w", responseID, ErrResponseNotFound)
		}
		return nil, nil, err
	}
	topic, err := stores.Topics().GetByIDForUpdate(ctx, response.TopicID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil, fmt.Errorf("%s: %w", response.TopicID, ErrTopicNotFound)
		}
		return nil, nil, err
	}
	return response, topic, nil
}
