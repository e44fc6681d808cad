package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"forumhub/internal/crypto"
	"forumhub/internal/model"
	"forumhub/internal/store"
)

type UserService struct {
	db store.DB
}

func NewUserService(db store.DB) *UserService {
	return &UserService{db: db}
}

// Register creates an account with the default USUARIO role.
func (s *UserService) Register(ctx context.Context, name, email, password string) (*model.User, error) {
	var created *model.User
	err := s.db.WithTx(ctx, func(stores store.Stores) error {
		taken, err := stores.Users().ExistsByEmail(ctx, email)
		if err != nil {
			return err
		}
		if taken {
			return fmt.Errorf("%s: %w", email, ErrEmailTaken)
		}

		hash, err := crypto.HashPassword(password)
		if err != nil {
			return err
		}
		user := &model.User{
			ID:           uuid.NewString(),
			Name:         name,
			Email:        email,
			PasswordHash: hash,
			CreatedAt:    time.Now().UTC(),
			Roles:        []model.Role{model.RoleUser},
		}
		if err := stores.Users().Create(ctx, user); err != nil {
			if errors.Is(err, store.ErrConflict) {
				return fmt.Errorf("%s: %w", email, ErrEmailTaken)
			}
			return err
		}
		created = user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *UserService) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	user, err := s.db.Users().GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := crypto.CheckPassword(user.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *UserService) FindByID(ctx context.Context, id string) (*model.User, error) {
	user, err := s.db.Users().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", id, ErrUserNotFound)
		}
		return nil, err
	}
	return user, nil
}

func (s *UserService) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	user, err := s.db.Users().GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", email, ErrUserNotFound)
		}
		return nil, err
	}
	return user, nil
}

func (s *UserService) List(ctx context.Context) ([]model.User, error) {
	return s.db.Users().List(ctx)
}

func (s *UserService) Delete(ctx context.Context, id string) error {
	err := s.db.Users().Delete(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%s: %w", id, ErrUserNotFound)
	}
	return err
}

// AddRole grants a role to a user. Role assignment is an administrative
// operation; the transport layer gates it to admins.
func (s *UserService) AddRole(ctx context.Context, userID string, role model.Role) (*model.User, error) {
	var updated *model.User
	err := s.db.WithTx(ctx, func(stores store.Stores) error {
		user, err := stores.Users().GetByID(ctx, userID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("%s: %w", userID, ErrUserNotFound)
			}
			return err
		}
		if !user.HasRole(role) {
			user.Roles = append(user.Roles, role)
			if err := stores.Users().Update(ctx, user); err != nil {
				return err
			}
		}
		updated = user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *UserService) RemoveRole(ctx context.Context, userID string, role model.Role) (*model.User, error) {
	var updated *model.User
	err := s.db.WithTx(ctx, func(stores store.Stores) error {
		user, err := stores.Users().GetByID(ctx, userID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("%s: %w", userID, ErrUserNotFound)
			}
			return err
		}
		roles := user.Roles[:0]
		for _, r := range user.Roles {
			if r != role {
				roles = append(roles, r)
			}
		}
		user.Roles = roles
		if err := stores.Users().Update(ctx, user); err != nil {
			return err
		}
		updated = user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
