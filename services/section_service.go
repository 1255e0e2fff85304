package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jankeeper/jankeeper/models"
	"github.com/jankeeper/jankeeper/repositories"
	"github.com/jankeeper/jankeeper/scoring"
)

// Section defaults applied when a creation request leaves them unset.
const (
	DefaultStartingPoints = 25000
	DefaultReturnPoints   = 30000
	DefaultRate           = 50
)

type CreateSectionInput struct {
	Name           string   `json:"name"`
	StartingPoints *int     `json:"starting_points,omitempty"`
	ReturnPoints   *int     `json:"return_points,omitempty"`
	Rate           *int     `json:"rate,omitempty"`
	PlayerCount    int      `json:"player_count"`
	ParticipantIDs []string `json:"participant_ids"`
}

type UpdateSectionInput struct {
	Name           *string `json:"name,omitempty"`
	StartingPoints *int    `json:"starting_points,omitempty"`
	ReturnPoints   *int    `json:"return_points,omitempty"`
	Rate           *int    `json:"rate,omitempty"`
}

type ListSectionsInput struct {
	Status    *models.SectionStatus
	Search    string
	Ascending bool
}

type SectionService interface {
	Create(ctx context.Context, actor Actor, input CreateSectionInput) (*models.Section, error)
	Get(ctx context.Context, id string) (*models.Section, error)
	List(ctx context.Context, input ListSectionsInput) ([]models.Section, error)
	Update(ctx context.Context, actor Actor, id string, input UpdateSectionInput) (*models.Section, error)
	Close(ctx context.Context, actor Actor, id string) (*models.Section, error)
	Reopen(ctx context.Context, actor Actor, id string) (*models.Section, error)
	Delete(ctx context.Context, actor Actor, id string) error
	Summary(ctx context.Context, id string) (*scoring.SectionSummary, error)
}

type sectionService struct {
	tx              Transactor
	sectionRepo     repositories.SectionRepository
	participantRepo repositories.ParticipantRepository
	gameRepo        repositories.GameRepository
	userRepo        repositories.UserRepository
	notifier        Notifier
	logger          *slog.Logger
}

func NewSectionService(
	tx Transactor,
	sectionRepo repositories.SectionRepository,
	participantRepo repositories.ParticipantRepository,
	gameRepo repositories.GameRepository,
	userRepo repositories.UserRepository,
	notifier Notifier,
	logger *slog.Logger,
) SectionService {
	return &sectionService{
		tx:              tx,
		sectionRepo:     sectionRepo,
		participantRepo: participantRepo,
		gameRepo:        gameRepo,
		userRepo:        userRepo,
		notifier:        notifier,
		logger:          logger,
	}
}

// Create validates the settings, then inserts the section and its
// participant rows in one transaction: the participant set is part of
// the section's identity and must never be partially written.
func (s *sectionService) Create(ctx context.Context, actor Actor, input CreateSectionInput) (*models.Section, error) {
	section := &models.Section{
		Name:           strings.TrimSpace(input.Name),
		StartingPoints: valueOrDefault(input.StartingPoints, DefaultStartingPoints),
		ReturnPoints:   valueOrDefault(input.ReturnPoints, DefaultReturnPoints),
		Rate:           valueOrDefault(input.Rate, DefaultRate),
		PlayerCount:    input.PlayerCount,
		CreatedBy:      &actor.ID,
	}
	if err := validateSectionSettings(section); err != nil {
		return nil, err
	}
	if err := validateParticipantSet(input.ParticipantIDs, input.PlayerCount); err != nil {
		return nil, err
	}

	// Every participant must be a live user.
	for _, userID := range input.ParticipantIDs {
		if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
			if errors.Is(err, repositories.ErrUserNotFound) {
				return nil, ErrUserNotFound
			}
			return nil, err
		}
	}

	err := s.tx.InTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.sectionRepo.Create(ctx, exec, section); err != nil {
			return fmt.Errorf("failed to create section: %w", err)
		}
		for _, userID := range input.ParticipantIDs {
			if err := s.participantRepo.Insert(ctx, exec, section.ID, userID); err != nil {
				return fmt.Errorf("failed to add participant: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, section.ID)
}

func (s *sectionService) Get(ctx context.Context, id string) (*models.Section, error) {
	section, err := s.sectionRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrSectionNotFound) {
			return nil, ErrSectionNotFound
		}
		return nil, err
	}

	participants, err := s.participantRepo.ListBySection(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load participants: %w", err)
	}
	section.Participants = participants
	return section, nil
}

func (s *sectionService) List(ctx context.Context, input ListSectionsInput) ([]models.Section, error) {
	sections, err := s.sectionRepo.List(ctx, repositories.ListSectionsFilter{
		Status:    input.Status,
		Search:    input.Search,
		Ascending: input.Ascending,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list sections: %w", err)
	}

	for i := range sections {
		participants, err := s.participantRepo.ListBySection(ctx, sections[i].ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load participants: %w", err)
		}
		sections[i].Participants = participants
	}
	return sections, nil
}

func (s *sectionService) Update(ctx context.Context, actor Actor, id string, input UpdateSectionInput) (*models.Section, error) {
	section, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkSectionManage(section, actor); err != nil {
		return nil, err
	}

	if input.Name != nil {
		trimmed := strings.TrimSpace(*input.Name)
		if trimmed == "" || len([]rune(trimmed)) > 100 {
			return nil, ErrSectionNameInvalid
		}
		input.Name = &trimmed
	}
	if input.StartingPoints != nil && !pointsInRange(*input.StartingPoints) {
		return nil, ErrStartingPointsInvalid
	}
	if input.ReturnPoints != nil && !pointsInRange(*input.ReturnPoints) {
		return nil, ErrReturnPointsInvalid
	}
	if input.Rate != nil && (*input.Rate < 0 || *input.Rate > 10000) {
		return nil, ErrRateInvalid
	}

	err = s.sectionRepo.Update(ctx, id, repositories.UpdateSectionParams{
		Name:           input.Name,
		StartingPoints: input.StartingPoints,
		ReturnPoints:   input.ReturnPoints,
		Rate:           input.Rate,
	})
	if err != nil {
		if errors.Is(err, repositories.ErrSectionNotFound) {
			return nil, ErrSectionNotFound
		}
		return nil, fmt.Errorf("failed to update section: %w", err)
	}

	notifySection(s.notifier, id, "SECTION_UPDATED")
	return s.Get(ctx, id)
}

func (s *sectionService) Close(ctx context.Context, actor Actor, id string) (*models.Section, error) {
	section, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkSectionClose(section, actor); err != nil {
		return nil, err
	}

	if err := s.sectionRepo.Close(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrSectionStatusConflict) {
			// Lost the check-then-act race: somebody closed it first.
			return nil, ErrSectionNotActive
		}
		return nil, fmt.Errorf("failed to close section: %w", err)
	}

	s.logger.InfoContext(ctx, "section closed", slog.String("section_id", id), slog.String("actor_id", actor.ID))
	notifySection(s.notifier, id, "SECTION_CLOSED")
	return s.Get(ctx, id)
}

func (s *sectionService) Reopen(ctx context.Context, actor Actor, id string) (*models.Section, error) {
	section, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkSectionReopen(section, actor); err != nil {
		return nil, err
	}

	if err := s.sectionRepo.Reopen(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrSectionStatusConflict) {
			return nil, ErrSectionNotClosed
		}
		return nil, fmt.Errorf("failed to reopen section: %w", err)
	}

	s.logger.InfoContext(ctx, "section reopened", slog.String("section_id", id), slog.String("actor_id", actor.ID))
	notifySection(s.notifier, id, "SECTION_REOPENED")
	return s.Get(ctx, id)
}

// Delete is logical: the section disappears from listings while its
// games and participants remain stored.
func (s *sectionService) Delete(ctx context.Context, actor Actor, id string) error {
	section, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := checkSectionManage(section, actor); err != nil {
		return err
	}

	if err := s.sectionRepo.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrSectionNotFound) {
			return ErrSectionNotFound
		}
		return fmt.Errorf("failed to delete section: %w", err)
	}

	notifySection(s.notifier, id, "SECTION_DELETED")
	return nil
}

// Summary computes the section standing. Zero-game sections come back
// with GameCount 0 and unranked rows.
func (s *sectionService) Summary(ctx context.Context, id string) (*scoring.SectionSummary, error) {
	section, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	games, err := s.gameRepo.ListBySection(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load games: %w", err)
	}

	summary := scoring.BuildSummary(
		toScoringParticipants(section.Participants),
		toScoringGames(games),
		section.ReturnPoints,
		section.Rate,
	)
	return &summary, nil
}

func valueOrDefault(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}

func pointsInRange(points int) bool {
	return points >= 1000 && points <= 100000
}

func validateSectionSettings(section *models.Section) error {
	if section.Name == "" || len([]rune(section.Name)) > 100 {
		return ErrSectionNameInvalid
	}
	if !pointsInRange(section.StartingPoints) {
		return ErrStartingPointsInvalid
	}
	if !pointsInRange(section.ReturnPoints) {
		return ErrReturnPointsInvalid
	}
	if section.Rate < 0 || section.Rate > 10000 {
		return ErrRateInvalid
	}
	if section.PlayerCount != 3 && section.PlayerCount != 4 {
		return ErrPlayerCountInvalid
	}
	return nil
}

func validateParticipantSet(participantIDs []string, playerCount int) error {
	if len(participantIDs) != playerCount {
		return ErrParticipantCountMismatch
	}
	seen := make(map[string]struct{}, len(participantIDs))
	for _, id := range participantIDs {
		if _, dup := seen[id]; dup {
			return ErrParticipantsNotDistinct
		}
		seen[id] = struct{}{}
	}
	return nil
}

func toScoringParticipants(participants []models.SectionParticipant) []scoring.Participant {
	out := make([]scoring.Participant, len(participants))
	for i, p := range participants {
		out[i] = scoring.Participant{UserID: p.UserID, DisplayName: p.DisplayName}
	}
	return out
}

func toScoringGames(games []models.Game) []scoring.GameScores {
	out := make([]scoring.GameScores, len(games))
	for i, game := range games {
		scores := make(scoring.GameScores, len(game.Scores))
		for _, score := range game.Scores {
			scores[score.UserID] = score.Points
		}
		out[i] = scores
	}
	return out
}
