package services

import "errors"

// Shared errors used across services and the HTTP mapping.
var (
	// Not found
	ErrUserNotFound    = errors.New("user not found")
	ErrSectionNotFound = errors.New("section not found")
	ErrGameNotFound    = errors.New("game not found")

	// Validation and business rules
	ErrValidationFailed         = errors.New("validation failed")
	ErrDisplayNameInvalid       = errors.New("display name must be between 1 and 50 characters")
	ErrPasswordTooShort         = errors.New("password must be at least 8 characters")
	ErrSectionNameInvalid       = errors.New("section name must be between 1 and 100 characters")
	ErrStartingPointsInvalid    = errors.New("starting points must be between 1000 and 100000")
	ErrReturnPointsInvalid      = errors.New("return points must be between 1000 and 100000")
	ErrRateInvalid              = errors.New("rate must be between 0 and 10000")
	ErrPlayerCountInvalid       = errors.New("player count must be 3 or 4")
	ErrParticipantCountMismatch = errors.New("the number of selected participants must equal the player count")
	ErrParticipantsNotDistinct  = errors.New("the same user cannot participate twice")

	// Conflicts
	ErrDisplayNameTaken = errors.New("display name is already in use")

	// Authentication and authorization
	ErrInvalidCredentials = errors.New("display name or password is incorrect")
	ErrPermissionDenied   = errors.New("operation not allowed for the current user")
	ErrAdminRequired      = errors.New("administrator privileges are required")

	// Lifecycle state
	ErrSectionNotActive = errors.New("the section is closed; games can no longer be modified")
	ErrSectionNotClosed = errors.New("only a closed section can be reopened")

	// Avatar storage
	ErrAvatarStorageUnavailable = errors.New("avatar storage is not configured")
	ErrUnsupportedImageType     = errors.New("unsupported image content type")
)
