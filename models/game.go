package models

import "time"

// Game is one hand-count round within a section. It always carries
// exactly playerCount scores.
type Game struct {
	ID         string    `json:"id" db:"id"`
	SectionID  string    `json:"section_id" db:"section_id"`
	GameNumber int       `json:"game_number" db:"game_number"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`

	Scores []Score `json:"scores" db:"-"`
}

type Score struct {
	ID          string `json:"id" db:"id"`
	GameID      string `json:"game_id" db:"game_id"`
	UserID      string `json:"user_id" db:"user_id"`
	DisplayName string `json:"display_name" db:"-"`
	Points      int    `json:"points" db:"points"`
}
