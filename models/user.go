package models

import "time"

type User struct {
	ID           string     `json:"id" db:"id"`
	DisplayName  string     `json:"display_name" db:"display_name"`
	PasswordHash string     `json:"-" db:"password_hash"`
	IsAdmin      bool       `json:"is_admin" db:"is_admin"`
	AvatarKey    *string    `json:"-" db:"avatar_key"`
	AvatarURL    *string    `json:"avatar_url,omitempty" db:"-"`
	DeletedAt    *time.Time `json:"-" db:"deleted_at"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}
