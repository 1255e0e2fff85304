package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/jankeeper/jankeeper/models"
)

var (
	ErrGameNotFound     = errors.New("game not found")
	ErrScoreUserInvalid = errors.New("score references an invalid user")
)

// ScoreParams is one (user, points) pair to persist for a game.
type ScoreParams struct {
	UserID string
	Points int
}

type GameRepository interface {
	// CreateWithScores inserts a game with the next dense game number and
	// all of its scores. Callers run it inside a transaction so a failed
	// score insert rolls the game row back.
	CreateWithScores(ctx context.Context, exec SQLExecutor, sectionID string, scores []ScoreParams) (*models.Game, error)
	// ReplaceScores swaps a game's full score set and touches updated_at.
	ReplaceScores(ctx context.Context, exec SQLExecutor, gameID string, scores []ScoreParams) error
	GetByID(ctx context.Context, gameID string) (*models.Game, error)
	ListBySection(ctx context.Context, sectionID string) ([]models.Game, error)
	Delete(ctx context.Context, gameID string) error
}

type postgresGameRepository struct {
	db *sql.DB
}

func NewPostgresGameRepository(db *sql.DB) GameRepository {
	return &postgresGameRepository{db: db}
}

func (r *postgresGameRepository) CreateWithScores(ctx context.Context, exec SQLExecutor, sectionID string, scores []ScoreParams) (*models.Game, error) {
	game := &models.Game{
		ID:        uuid.NewString(),
		SectionID: sectionID,
	}

	query := `
		INSERT INTO games (id, section_id, game_number)
		SELECT $1, $2, COALESCE(MAX(game_number), 0) + 1
		FROM games
		WHERE section_id = $2
		RETURNING game_number, created_at, updated_at`

	err := exec.QueryRowContext(ctx, query, game.ID, sectionID).
		Scan(&game.GameNumber, &game.CreatedAt, &game.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return nil, ErrSectionNotFound
		}
		return nil, err
	}

	if err := r.insertScores(ctx, exec, game.ID, scores); err != nil {
		return nil, err
	}
	return game, nil
}

func (r *postgresGameRepository) ReplaceScores(ctx context.Context, exec SQLExecutor, gameID string, scores []ScoreParams) error {
	if _, err := exec.ExecContext(ctx, `DELETE FROM scores WHERE game_id = $1`, gameID); err != nil {
		return err
	}
	if err := r.insertScores(ctx, exec, gameID, scores); err != nil {
		return err
	}

	result, err := exec.ExecContext(ctx, `UPDATE games SET updated_at = NOW() WHERE id = $1`, gameID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrGameNotFound)
}

func (r *postgresGameRepository) insertScores(ctx context.Context, exec SQLExecutor, gameID string, scores []ScoreParams) error {
	query := `
		INSERT INTO scores (id, game_id, user_id, points)
		VALUES ($1, $2, $3, $4)`

	for _, score := range scores {
		if _, err := exec.ExecContext(ctx, query, uuid.NewString(), gameID, score.UserID, score.Points); err != nil {
			var pqErr *pq.Error
			if errors.As(err, &pqErr) && pqErr.Code == "23503" {
				return ErrScoreUserInvalid
			}
			return err
		}
	}
	return nil
}

const gameSelect = `
	SELECT
		g.id, g.section_id, g.game_number, g.created_at, g.updated_at,
		sc.id, sc.game_id, sc.user_id, u.display_name, sc.points
	FROM games g
	LEFT JOIN scores sc ON sc.game_id = g.id
	LEFT JOIN users u ON sc.user_id = u.id`

func (r *postgresGameRepository) GetByID(ctx context.Context, gameID string) (*models.Game, error) {
	query := gameSelect + `
	WHERE g.id = $1
	ORDER BY sc.created_at ASC`

	games, err := r.queryGames(ctx, query, gameID)
	if err != nil {
		return nil, err
	}
	if len(games) == 0 {
		return nil, ErrGameNotFound
	}
	return &games[0], nil
}

func (r *postgresGameRepository) ListBySection(ctx context.Context, sectionID string) ([]models.Game, error) {
	query := gameSelect + `
	WHERE g.section_id = $1
	ORDER BY g.game_number ASC, sc.created_at ASC`

	return r.queryGames(ctx, query, sectionID)
}

// Delete removes the game row; scores go with it via ON DELETE CASCADE.
func (r *postgresGameRepository) Delete(ctx context.Context, gameID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM games WHERE id = $1`, gameID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrGameNotFound)
}

func (r *postgresGameRepository) queryGames(ctx context.Context, query string, args ...any) ([]models.Game, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	games := []models.Game{}
	index := map[string]int{}

	for rows.Next() {
		var game models.Game
		var scoreID, scoreGameID, scoreUserID, displayName sql.NullString
		var points sql.NullInt64

		if err := rows.Scan(
			&game.ID,
			&game.SectionID,
			&game.GameNumber,
			&game.CreatedAt,
			&game.UpdatedAt,
			&scoreID,
			&scoreGameID,
			&scoreUserID,
			&displayName,
			&points,
		); err != nil {
			return nil, err
		}

		i, ok := index[game.ID]
		if !ok {
			game.Scores = []models.Score{}
			games = append(games, game)
			i = len(games) - 1
			index[game.ID] = i
		}

		if scoreID.Valid {
			games[i].Scores = append(games[i].Scores, models.Score{
				ID:          scoreID.String,
				GameID:      scoreGameID.String,
				UserID:      scoreUserID.String,
				DisplayName: displayName.String,
				Points:      int(points.Int64),
			})
		}
	}
	return games, rows.Err()
}
