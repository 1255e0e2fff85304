package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jankeeper/jankeeper/models"
	"github.com/jankeeper/jankeeper/repositories"
	"github.com/jankeeper/jankeeper/scoring"
)

type ScoreInput struct {
	UserID string `json:"user_id"`
	Points int    `json:"points"`
}

type GameService interface {
	List(ctx context.Context, sectionID string) ([]models.Game, error)
	// Create records a new game: lifecycle guard, then score validation,
	// then a transactional insert of the game row and its scores.
	Create(ctx context.Context, actor Actor, sectionID string, scores []ScoreInput) (*models.Game, error)
	// UpdateScores replaces a game's score set under the same guard and
	// validation as Create.
	UpdateScores(ctx context.Context, actor Actor, sectionID, gameID string, scores []ScoreInput) (*models.Game, error)
	Delete(ctx context.Context, actor Actor, sectionID, gameID string) error
}

type gameService struct {
	tx          Transactor
	gameRepo    repositories.GameRepository
	sectionRepo repositories.SectionRepository
	partRepo    repositories.ParticipantRepository
	notifier    Notifier
	logger      *slog.Logger
}

func NewGameService(
	tx Transactor,
	gameRepo repositories.GameRepository,
	sectionRepo repositories.SectionRepository,
	partRepo repositories.ParticipantRepository,
	notifier Notifier,
	logger *slog.Logger,
) GameService {
	return &gameService{
		tx:          tx,
		gameRepo:    gameRepo,
		sectionRepo: sectionRepo,
		partRepo:    partRepo,
		notifier:    notifier,
		logger:      logger,
	}
}

func (s *gameService) List(ctx context.Context, sectionID string) ([]models.Game, error) {
	if _, err := s.loadSection(ctx, sectionID); err != nil {
		return nil, err
	}
	games, err := s.gameRepo.ListBySection(ctx, sectionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	return games, nil
}

func (s *gameService) Create(ctx context.Context, actor Actor, sectionID string, scores []ScoreInput) (*models.Game, error) {
	section, err := s.loadSection(ctx, sectionID)
	if err != nil {
		return nil, err
	}
	if err := checkGameWrite(section, actor); err != nil {
		return nil, err
	}

	validated, err := s.validateScores(section, scores)
	if err != nil {
		return nil, err
	}

	var game *models.Game
	err = s.tx.InTx(ctx, func(exec repositories.SQLExecutor) error {
		game, err = s.gameRepo.CreateWithScores(ctx, exec, sectionID, toScoreParams(validated))
		if err != nil {
			return fmt.Errorf("failed to create game: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "game recorded",
		slog.String("section_id", sectionID),
		slog.String("game_id", game.ID),
		slog.Int("game_number", game.GameNumber),
	)
	notifySection(s.notifier, sectionID, "GAMES_UPDATED")

	return s.gameRepo.GetByID(ctx, game.ID)
}

func (s *gameService) UpdateScores(ctx context.Context, actor Actor, sectionID, gameID string, scores []ScoreInput) (*models.Game, error) {
	section, err := s.loadSection(ctx, sectionID)
	if err != nil {
		return nil, err
	}
	if err := checkGameWrite(section, actor); err != nil {
		return nil, err
	}

	game, err := s.loadGame(ctx, section, gameID)
	if err != nil {
		return nil, err
	}

	validated, err := s.validateScores(section, scores)
	if err != nil {
		return nil, err
	}

	err = s.tx.InTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.gameRepo.ReplaceScores(ctx, exec, game.ID, toScoreParams(validated)); err != nil {
			return fmt.Errorf("failed to update scores: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	notifySection(s.notifier, sectionID, "GAMES_UPDATED")
	return s.gameRepo.GetByID(ctx, game.ID)
}

func (s *gameService) Delete(ctx context.Context, actor Actor, sectionID, gameID string) error {
	section, err := s.loadSection(ctx, sectionID)
	if err != nil {
		return err
	}
	if err := checkGameDelete(section, actor); err != nil {
		return err
	}

	game, err := s.loadGame(ctx, section, gameID)
	if err != nil {
		return err
	}

	if err := s.gameRepo.Delete(ctx, game.ID); err != nil {
		if errors.Is(err, repositories.ErrGameNotFound) {
			return ErrGameNotFound
		}
		return fmt.Errorf("failed to delete game: %w", err)
	}

	s.logger.InfoContext(ctx, "game deleted",
		slog.String("section_id", sectionID),
		slog.String("game_id", gameID),
		slog.Int("game_number", game.GameNumber),
	)
	notifySection(s.notifier, sectionID, "GAMES_UPDATED")
	return nil
}

func (s *gameService) loadSection(ctx context.Context, sectionID string) (*models.Section, error) {
	section, err := s.sectionRepo.GetByID(ctx, sectionID)
	if err != nil {
		if errors.Is(err, repositories.ErrSectionNotFound) {
			return nil, ErrSectionNotFound
		}
		return nil, err
	}
	participants, err := s.partRepo.ListBySection(ctx, sectionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load participants: %w", err)
	}
	section.Participants = participants
	return section, nil
}

func (s *gameService) loadGame(ctx context.Context, section *models.Section, gameID string) (*models.Game, error) {
	game, err := s.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		if errors.Is(err, repositories.ErrGameNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, err
	}
	if game.SectionID != section.ID {
		return nil, ErrGameNotFound
	}
	return game, nil
}

func (s *gameService) validateScores(section *models.Section, scores []ScoreInput) ([]scoring.ScoreEntry, error) {
	entries := make([]scoring.ScoreEntry, len(scores))
	for i, score := range scores {
		entries[i] = scoring.ScoreEntry{UserID: score.UserID, Points: score.Points}
	}

	participantIDs := make([]string, len(section.Participants))
	for i, p := range section.Participants {
		participantIDs[i] = p.UserID
	}

	return scoring.ValidateScores(entries, participantIDs, section.StartingPoints, section.PlayerCount)
}

func toScoreParams(entries []scoring.ScoreEntry) []repositories.ScoreParams {
	params := make([]repositories.ScoreParams, len(entries))
	for i, entry := range entries {
		params[i] = repositories.ScoreParams{UserID: entry.UserID, Points: entry.Points}
	}
	return params
}
