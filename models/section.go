package models

import "time"

// SectionStatus mirrors the section_status ENUM in the database.
type SectionStatus string

const (
	SectionActive SectionStatus = "active"
	SectionClosed SectionStatus = "closed"
)

// Section is one scoring session: a sitting of games with fixed
// starting/return points and a money rate.
type Section struct {
	ID             string        `json:"id" db:"id"`
	Name           string        `json:"name" db:"name"`
	StartingPoints int           `json:"starting_points" db:"starting_points"`
	ReturnPoints   int           `json:"return_points" db:"return_points"`
	Rate           int           `json:"rate" db:"rate"`
	PlayerCount    int           `json:"player_count" db:"player_count"`
	Status         SectionStatus `json:"status" db:"status"`
	CreatedBy      *string       `json:"created_by,omitempty" db:"created_by"`
	CreatedByName  *string       `json:"created_by_name,omitempty" db:"-"`
	ClosedAt       *time.Time    `json:"closed_at,omitempty" db:"closed_at"`
	DeletedAt      *time.Time    `json:"-" db:"deleted_at"`
	CreatedAt      time.Time     `json:"created_at" db:"created_at"`

	// Populated by the service layer, not mapped directly.
	Participants []SectionParticipant `json:"participants,omitempty" db:"-"`
	GameCount    int                  `json:"game_count" db:"-"`
}

// SectionParticipant joins a section to a user. The set is fixed at
// section creation time.
type SectionParticipant struct {
	ID          string `json:"id" db:"id"`
	SectionID   string `json:"-" db:"section_id"`
	UserID      string `json:"user_id" db:"user_id"`
	DisplayName string `json:"display_name" db:"-"`
}

// HasParticipant reports whether the given user belongs to the section.
func (s *Section) HasParticipant(userID string) bool {
	for _, p := range s.Participants {
		if p.UserID == userID {
			return true
		}
	}
	return false
}

// IsCreatedBy reports whether the given user created the section.
func (s *Section) IsCreatedBy(userID string) bool {
	return s.CreatedBy != nil && *s.CreatedBy == userID
}
