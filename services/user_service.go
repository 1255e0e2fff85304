package services

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/jankeeper/jankeeper/models"
	"github.com/jankeeper/jankeeper/repositories"
	"github.com/jankeeper/jankeeper/storage"
)

type CreateUserInput struct {
	DisplayName string `json:"display_name"`
	Password    string `json:"password"`
	IsAdmin     bool   `json:"is_admin"`
}

type UpdateUserInput struct {
	DisplayName *string `json:"display_name,omitempty"`
	Password    *string `json:"password,omitempty"`
	IsAdmin     *bool   `json:"is_admin,omitempty"`
}

type UpdateProfileInput struct {
	DisplayName     *string `json:"display_name,omitempty"`
	CurrentPassword *string `json:"current_password,omitempty"`
	NewPassword     *string `json:"new_password,omitempty"`
}

type UserService interface {
	List(ctx context.Context) ([]models.User, error)
	Get(ctx context.Context, id string) (*models.User, error)
	Create(ctx context.Context, actor Actor, input CreateUserInput) (*models.User, error)
	Update(ctx context.Context, actor Actor, id string, input UpdateUserInput) (*models.User, error)
	Delete(ctx context.Context, actor Actor, id string) error
	UpdateProfile(ctx context.Context, actor Actor, input UpdateProfileInput) (*models.User, error)
	UploadAvatar(ctx context.Context, actor Actor, userID, contentType string, body io.Reader) (*models.User, error)
}

type userService struct {
	userRepo repositories.UserRepository
	uploader storage.FileUploader
}

func NewUserService(userRepo repositories.UserRepository, uploader storage.FileUploader) UserService {
	return &userService{userRepo: userRepo, uploader: uploader}
}

func (s *userService) List(ctx context.Context) ([]models.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	for i := range users {
		s.populateAvatarURL(&users[i])
	}
	return users, nil
}

func (s *userService) Get(ctx context.Context, id string) (*models.User, error) {
	user, err := s.getWithHash(ctx, id)
	if err != nil {
		return nil, err
	}
	s.populateAvatarURL(user)
	return user, nil
}

// getWithHash keeps PasswordHash populated for internal verification;
// callers returning the user to a client must populateAvatarURL first.
func (s *userService) getWithHash(ctx context.Context, id string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) Create(ctx context.Context, actor Actor, input CreateUserInput) (*models.User, error) {
	if !actor.IsAdmin {
		return nil, ErrAdminRequired
	}
	if err := validateDisplayName(input.DisplayName); err != nil {
		return nil, err
	}
	if err := validatePassword(input.Password); err != nil {
		return nil, err
	}

	hash, err := hashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		DisplayName:  input.DisplayName,
		PasswordHash: hash,
		IsAdmin:      input.IsAdmin,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDisplayNameConflict) {
			return nil, ErrDisplayNameTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	s.populateAvatarURL(user)
	return user, nil
}

func (s *userService) Update(ctx context.Context, actor Actor, id string, input UpdateUserInput) (*models.User, error) {
	if !actor.IsAdmin {
		return nil, ErrAdminRequired
	}

	user, err := s.getWithHash(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.DisplayName != nil {
		if err := validateDisplayName(*input.DisplayName); err != nil {
			return nil, err
		}
		user.DisplayName = *input.DisplayName
	}
	if input.Password != nil {
		if err := validatePassword(*input.Password); err != nil {
			return nil, err
		}
		hash, err := hashPassword(*input.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}
	if input.IsAdmin != nil {
		user.IsAdmin = *input.IsAdmin
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		switch {
		case errors.Is(err, repositories.ErrDisplayNameConflict):
			return nil, ErrDisplayNameTaken
		case errors.Is(err, repositories.ErrUserNotFound):
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	s.populateAvatarURL(user)
	return user, nil
}

// Delete soft-deletes: the row survives so old scores keep resolving.
func (s *userService) Delete(ctx context.Context, actor Actor, id string) error {
	if !actor.IsAdmin {
		return ErrAdminRequired
	}
	if err := s.userRepo.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

// UpdateProfile lets any user change their own display name and, with
// the current password verified, their password.
func (s *userService) UpdateProfile(ctx context.Context, actor Actor, input UpdateProfileInput) (*models.User, error) {
	user, err := s.getWithHash(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	if input.DisplayName != nil {
		if err := validateDisplayName(*input.DisplayName); err != nil {
			return nil, err
		}
		user.DisplayName = *input.DisplayName
	}

	if input.NewPassword != nil {
		if input.CurrentPassword == nil || !checkPasswordHash(*input.CurrentPassword, user.PasswordHash) {
			return nil, ErrInvalidCredentials
		}
		if err := validatePassword(*input.NewPassword); err != nil {
			return nil, err
		}
		hash, err := hashPassword(*input.NewPassword)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDisplayNameConflict) {
			return nil, ErrDisplayNameTaken
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	s.populateAvatarURL(user)
	return user, nil
}

func (s *userService) UploadAvatar(ctx context.Context, actor Actor, userID, contentType string, body io.Reader) (*models.User, error) {
	if actor.ID != userID && !actor.IsAdmin {
		return nil, ErrPermissionDenied
	}
	if s.uploader == nil {
		return nil, ErrAvatarStorageUnavailable
	}

	user, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	ext, err := imageExtension(contentType)
	if err != nil {
		return nil, err
	}
	key := fmt.Sprintf("avatars/%s/%s%s", userID, uuid.NewString(), ext)

	if _, err := s.uploader.Upload(ctx, key, contentType, body); err != nil {
		return nil, fmt.Errorf("failed to upload avatar: %w", err)
	}

	oldKey := user.AvatarKey
	if err := s.userRepo.UpdateAvatarKey(ctx, userID, &key); err != nil {
		// Compensate: the row was not updated, drop the uploaded object.
		_ = s.uploader.Delete(ctx, key)
		return nil, fmt.Errorf("failed to store avatar key: %w", err)
	}
	if oldKey != nil && *oldKey != "" {
		_ = s.uploader.Delete(ctx, *oldKey)
	}

	user.AvatarKey = &key
	s.populateAvatarURL(user)
	return user, nil
}

func (s *userService) populateAvatarURL(user *models.User) {
	user.PasswordHash = ""
	if s.uploader == nil || user.AvatarKey == nil || *user.AvatarKey == "" {
		return
	}
	if url := s.uploader.GetPublicURL(*user.AvatarKey); url != "" {
		user.AvatarURL = &url
	}
}
