package service

import (
	"context"
	"errors"
	"fmt"

	"postboard/internal/hasher"
	"postboard/internal/models"
	"postboard/internal/repository"
	"postboard/internal/util"
)

type UserService interface {
	Register(ctx context.Context, req models.RegisterUserRequest) (int64, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByID(ctx context.Context, userID int64) (*models.User, error)
	ListAll(ctx context.Context) ([]models.User, error)
	Delete(ctx context.Context, username string) error
}

type userService struct {
	userRepo repository.UserRepository
	hasher   hasher.Hasher
	clock    util.Clock
}

func NewUserService(userRepo repository.UserRepository, hasher hasher.Hasher, clock util.Clock) UserService {
	return &userService{
		userRepo: userRepo,
		hasher:   hasher,
		clock:    clock,
	}
}

// Register checks, in order, for a missing field, a taken username and a taken
// email before hashing the password and inserting the row.
func (s *userService) Register(ctx context.Context, req models.RegisterUserRequest) (int64, error) {
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return 0, ErrMissingData
	}

	taken, err := s.userRepo.ExistsByUsername(ctx, req.Username)
	if err != nil {
		return 0, err
	}
	if taken {
		return 0, ErrDuplicateUsername
	}

	taken, err = s.userRepo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return 0, err
	}
	if taken {
		return 0, ErrDuplicateEmail
	}

	hashedPassword, err := s.hasher.Hash(req.Password)
	if err != nil {
		return 0, err
	}

	user := &models.User{
		Username:    req.Username,
		Email:       req.Email,
		Password:    hashedPassword,
		DateCreated: s.clock.NowUtc(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return 0, err
	}

	return user.ID, nil
}

// FindByUsername returns nil without an error when no such user exists.
func (s *userService) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return user, nil
}

// FindByID returns nil without an error when no such user exists.
func (s *userService) FindByID(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return user, nil
}

func (s *userService) ListAll(ctx context.Context) ([]models.User, error) {
	return s.userRepo.List(ctx)
}

func (s *userService) Delete(ctx context.Context, username string) error {
	err := s.userRepo.DeleteByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("ошибка при удалении пользователя %s: %w", username, err)
	}

	return nil
}
