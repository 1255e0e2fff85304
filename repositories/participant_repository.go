package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/jankeeper/jankeeper/models"
)

var ErrParticipantConflict = errors.New("user is already a participant of this section")

type ParticipantRepository interface {
	Insert(ctx context.Context, exec SQLExecutor, sectionID, userID string) error
	ListBySection(ctx context.Context, sectionID string) ([]models.SectionParticipant, error)
	IsParticipant(ctx context.Context, sectionID, userID string) (bool, error)
}

type postgresParticipantRepository struct {
	db *sql.DB
}

func NewPostgresParticipantRepository(db *sql.DB) ParticipantRepository {
	return &postgresParticipantRepository{db: db}
}

func (r *postgresParticipantRepository) Insert(ctx context.Context, exec SQLExecutor, sectionID, userID string) error {
	query := `
		INSERT INTO section_participants (id, section_id, user_id)
		VALUES ($1, $2, $3)`

	_, err := exec.ExecContext(ctx, query, uuid.NewString(), sectionID, userID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			switch pqErr.Code {
			case "23505":
				return ErrParticipantConflict
			case "23503":
				return ErrSectionUserInvalid
			}
		}
		return err
	}
	return nil
}

// ListBySection joins display names; soft-deleted users keep appearing
// here so historical sections stay readable.
func (r *postgresParticipantRepository) ListBySection(ctx context.Context, sectionID string) ([]models.SectionParticipant, error) {
	query := `
		SELECT sp.id, sp.section_id, sp.user_id, u.display_name
		FROM section_participants sp
		JOIN users u ON sp.user_id = u.id
		WHERE sp.section_id = $1
		ORDER BY sp.created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, sectionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	participants := []models.SectionParticipant{}
	for rows.Next() {
		var p models.SectionParticipant
		if err := rows.Scan(&p.ID, &p.SectionID, &p.UserID, &p.DisplayName); err != nil {
			return nil, err
		}
		participants = append(participants, p)
	}
	return participants, rows.Err()
}

func (r *postgresParticipantRepository) IsParticipant(ctx context.Context, sectionID, userID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM section_participants
			WHERE section_id = $1 AND user_id = $2
		)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, sectionID, userID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}
