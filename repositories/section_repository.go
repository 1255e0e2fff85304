package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/jankeeper/jankeeper/models"
)

var (
	ErrSectionNotFound = errors.New("section not found")
	// ErrSectionStatusConflict means a conditional status flip matched no
	// row: the section's status changed between the caller's read and
	// this write.
	ErrSectionStatusConflict = errors.New("section status changed concurrently")
	ErrSectionUserInvalid    = errors.New("section references an invalid user")
)

// ListSectionsFilter narrows and orders the section list.
type ListSectionsFilter struct {
	Status    *models.SectionStatus
	Search    string
	Ascending bool
}

// UpdateSectionParams carries the editable section fields; nil means
// leave unchanged.
type UpdateSectionParams struct {
	Name           *string
	StartingPoints *int
	ReturnPoints   *int
	Rate           *int
}

type SectionRepository interface {
	Create(ctx context.Context, exec SQLExecutor, section *models.Section) error
	GetByID(ctx context.Context, id string) (*models.Section, error)
	List(ctx context.Context, filter ListSectionsFilter) ([]models.Section, error)
	ListClosed(ctx context.Context, from, to *time.Time) ([]models.Section, error)
	Update(ctx context.Context, id string, params UpdateSectionParams) error
	Close(ctx context.Context, id string) error
	Reopen(ctx context.Context, id string) error
	SoftDelete(ctx context.Context, id string) error
}

type postgresSectionRepository struct {
	db *sql.DB
}

func NewPostgresSectionRepository(db *sql.DB) SectionRepository {
	return &postgresSectionRepository{db: db}
}

func (r *postgresSectionRepository) Create(ctx context.Context, exec SQLExecutor, section *models.Section) error {
	section.ID = uuid.NewString()
	section.Status = models.SectionActive

	query := `
		INSERT INTO sections (id, name, starting_points, return_points, rate, player_count, status, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at`

	err := exec.QueryRowContext(ctx, query,
		section.ID,
		section.Name,
		section.StartingPoints,
		section.ReturnPoints,
		section.Rate,
		section.PlayerCount,
		section.Status,
		section.CreatedBy,
	).Scan(&section.CreatedAt)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return ErrSectionUserInvalid
		}
		return err
	}
	return nil
}

const sectionSelect = `
	SELECT
		s.id, s.name, s.starting_points, s.return_points, s.rate, s.player_count,
		s.status, s.created_by, s.closed_at, s.created_at,
		u.display_name,
		(SELECT COUNT(*) FROM games g WHERE g.section_id = s.id)
	FROM sections s
	LEFT JOIN users u ON s.created_by = u.id`

func (r *postgresSectionRepository) GetByID(ctx context.Context, id string) (*models.Section, error) {
	query := sectionSelect + `
	WHERE s.id = $1 AND s.deleted_at IS NULL`

	section, err := scanSection(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSectionNotFound
		}
		return nil, err
	}
	return section, nil
}

func (r *postgresSectionRepository) List(ctx context.Context, filter ListSectionsFilter) ([]models.Section, error) {
	query := sectionSelect + `
	WHERE s.deleted_at IS NULL`

	args := []any{}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		query += fmt.Sprintf(" AND s.status = $%d", len(args))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		query += fmt.Sprintf(" AND s.name ILIKE $%d", len(args))
	}
	if filter.Ascending {
		query += " ORDER BY s.created_at ASC"
	} else {
		query += " ORDER BY s.created_at DESC"
	}

	return r.querySections(ctx, query, args...)
}

// ListClosed returns closed, non-deleted sections whose closed_at falls
// in [from, to). Nil bounds are open.
func (r *postgresSectionRepository) ListClosed(ctx context.Context, from, to *time.Time) ([]models.Section, error) {
	query := sectionSelect + `
	WHERE s.deleted_at IS NULL AND s.status = 'closed'`

	args := []any{}
	if from != nil {
		args = append(args, *from)
		query += fmt.Sprintf(" AND s.closed_at >= $%d", len(args))
	}
	if to != nil {
		args = append(args, *to)
		query += fmt.Sprintf(" AND s.closed_at < $%d", len(args))
	}
	query += " ORDER BY s.closed_at ASC"

	return r.querySections(ctx, query, args...)
}

func (r *postgresSectionRepository) Update(ctx context.Context, id string, params UpdateSectionParams) error {
	sets := []string{}
	args := []any{}
	appendSet := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if params.Name != nil {
		appendSet("name", *params.Name)
	}
	if params.StartingPoints != nil {
		appendSet("starting_points", *params.StartingPoints)
	}
	if params.ReturnPoints != nil {
		appendSet("return_points", *params.ReturnPoints)
	}
	if params.Rate != nil {
		appendSet("rate", *params.Rate)
	}
	if len(sets) == 0 {
		return nil
	}

	args = append(args, id)
	query := "UPDATE sections SET "
	for i, set := range sets {
		if i > 0 {
			query += ", "
		}
		query += set
	}
	query += fmt.Sprintf(" WHERE id = $%d AND deleted_at IS NULL", len(args))

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrSectionNotFound)
}

// Close flips active → closed and stamps closed_at. The status
// predicate makes the flip race-safe: a concurrent close surfaces as
// ErrSectionStatusConflict instead of silently double-applying.
func (r *postgresSectionRepository) Close(ctx context.Context, id string) error {
	query := `
		UPDATE sections
		SET status = 'closed', closed_at = NOW()
		WHERE id = $1 AND status = 'active' AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrSectionStatusConflict)
}

// Reopen flips closed → active and clears closed_at.
func (r *postgresSectionRepository) Reopen(ctx context.Context, id string) error {
	query := `
		UPDATE sections
		SET status = 'active', closed_at = NULL
		WHERE id = $1 AND status = 'closed' AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrSectionStatusConflict)
}

// SoftDelete logically removes the section; games and participants stay.
func (r *postgresSectionRepository) SoftDelete(ctx context.Context, id string) error {
	query := `
		UPDATE sections
		SET deleted_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrSectionNotFound)
}

func (r *postgresSectionRepository) querySections(ctx context.Context, query string, args ...any) ([]models.Section, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sections := []models.Section{}
	for rows.Next() {
		section, err := scanSection(rows)
		if err != nil {
			return nil, err
		}
		sections = append(sections, *section)
	}
	return sections, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSection(row rowScanner) (*models.Section, error) {
	var section models.Section
	var creatorName sql.NullString

	err := row.Scan(
		&section.ID,
		&section.Name,
		&section.StartingPoints,
		&section.ReturnPoints,
		&section.Rate,
		&section.PlayerCount,
		&section.Status,
		&section.CreatedBy,
		&section.ClosedAt,
		&section.CreatedAt,
		&creatorName,
		&section.GameCount,
	)
	if err != nil {
		return nil, err
	}
	if creatorName.Valid {
		section.CreatedByName = &creatorName.String
	}
	return &section, nil
}
