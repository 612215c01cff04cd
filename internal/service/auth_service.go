package service

import (
	"context"
	"errors"

	"postboard/internal/hasher"
	"postboard/internal/models"
	"postboard/internal/repository"
)

type AuthService interface {
	Authenticate(ctx context.Context, username, password string) (*models.User, error)
}

type authService struct {
	userRepo repository.UserRepository
	hasher   hasher.Hasher
}

func NewAuthService(userRepo repository.UserRepository, hasher hasher.Hasher) AuthService {
	return &authService{
		userRepo: userRepo,
		hasher:   hasher,
	}
}

// Authenticate fails with ErrUserNotFound or ErrInvalidPassword; it does not touch
// the session.
func (s *authService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if !s.hasher.Verify(user.Password, password) {
		return nil, ErrInvalidPassword
	}

	return user, nil
}
