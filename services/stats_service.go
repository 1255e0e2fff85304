package services

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jankeeper/jankeeper/repositories"
	"github.com/jankeeper/jankeeper/scoring"
)

// DateRange filters closed sections by close date. From is the start of
// its calendar day (inclusive); To names a calendar day that is
// included in full, so the query bound becomes the following midnight.
type DateRange struct {
	From *time.Time
	To   *time.Time
}

type StatsService interface {
	GetStats(ctx context.Context, dateRange DateRange) (*scoring.StatsResult, error)
	// GetUserStats returns one user's row of the aggregate, or
	// ErrUserNotFound if the user has no counted games in the range.
	GetUserStats(ctx context.Context, userID string, dateRange DateRange) (*scoring.UserStats, error)
}

type statsService struct {
	sectionRepo repositories.SectionRepository
	partRepo    repositories.ParticipantRepository
	gameRepo    repositories.GameRepository
}

func NewStatsService(
	sectionRepo repositories.SectionRepository,
	partRepo repositories.ParticipantRepository,
	gameRepo repositories.GameRepository,
) StatsService {
	return &statsService{
		sectionRepo: sectionRepo,
		partRepo:    partRepo,
		gameRepo:    gameRepo,
	}
}

func (s *statsService) GetStats(ctx context.Context, dateRange DateRange) (*scoring.StatsResult, error) {
	var to *time.Time
	if dateRange.To != nil {
		// Include the whole "to" day.
		nextDay := dateRange.To.AddDate(0, 0, 1)
		to = &nextDay
	}

	sections, err := s.sectionRepo.ListClosed(ctx, dateRange.From, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list closed sections: %w", err)
	}

	data := make([]scoring.SectionData, len(sections))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i := range sections {
		i := i
		g.Go(func() error {
			section := sections[i]

			participants, err := s.partRepo.ListBySection(gCtx, section.ID)
			if err != nil {
				return fmt.Errorf("failed to load participants for section %s: %w", section.ID, err)
			}
			games, err := s.gameRepo.ListBySection(gCtx, section.ID)
			if err != nil {
				return fmt.Errorf("failed to load games for section %s: %w", section.ID, err)
			}

			// Each goroutine owns its own slot of data.
			data[i] = scoring.SectionData{
				ID:           section.ID,
				ReturnPoints: section.ReturnPoints,
				Rate:         section.Rate,
				Participants: toScoringParticipants(participants),
				Games:        toScoringGames(games),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := scoring.AggregateStats(data)
	return &result, nil
}

func (s *statsService) GetUserStats(ctx context.Context, userID string, dateRange DateRange) (*scoring.UserStats, error) {
	result, err := s.GetStats(ctx, dateRange)
	if err != nil {
		return nil, err
	}
	for _, user := range result.Users {
		if user.UserID == userID {
			return &user, nil
		}
	}
	return nil, ErrUserNotFound
}
