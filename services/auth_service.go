package services

import (
	"context"
	"errors"

	"github.com/jankeeper/jankeeper/models"
	"github.com/jankeeper/jankeeper/repositories"
)

type AuthService interface {
	// Login verifies display name + password against the live user set
	// and returns the user on success. It never distinguishes "no such
	// user" from "wrong password" in its error.
	Login(ctx context.Context, displayName, password string) (*models.User, error)
}

type authService struct {
	userRepo repositories.UserRepository
}

func NewAuthService(userRepo repositories.UserRepository) AuthService {
	return &authService{userRepo: userRepo}
}

func (s *authService) Login(ctx context.Context, displayName, password string) (*models.User, error) {
	user, err := s.userRepo.GetByDisplayName(ctx, displayName)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !checkPasswordHash(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	user.PasswordHash = ""
	return user, nil
}
