package services

import (
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 12

// Notifier pushes change events to interested clients; satisfied by the
// realtime hub. Services fire-and-forget through it after a successful
// mutation so the UI can re-fetch.
type Notifier interface {
	BroadcastToRoom(roomID string, message interface{})
}

// ChangeEvent is what gets broadcast to a section's room.
type ChangeEvent struct {
	Type      string `json:"type"`
	SectionID string `json:"section_id"`
}

func sectionRoom(sectionID string) string {
	return "section_" + sectionID
}

func notifySection(n Notifier, sectionID, eventType string) {
	if n == nil {
		return
	}
	n.BroadcastToRoom(sectionRoom(sectionID), ChangeEvent{Type: eventType, SectionID: sectionID})
}

func hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(bytes), nil
}

func checkPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func validateDisplayName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" || len([]rune(trimmed)) > 50 {
		return ErrDisplayNameInvalid
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return ErrPasswordTooShort
	}
	return nil
}

// imageExtension maps an image content type to a file extension for
// stored avatar keys.
func imageExtension(contentType string) (string, error) {
	switch contentType {
	case "image/jpeg", "image/jpg":
		return ".jpg", nil
	case "image/png":
		return ".png", nil
	case "image/gif":
		return ".gif", nil
	case "image/webp":
		return ".webp", nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedImageType, contentType)
	}
}
