package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/jankeeper/jankeeper/models"
	"github.com/jankeeper/jankeeper/repositories"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeTransactor runs the function directly; the fake repositories
// ignore the executor.
type fakeTransactor struct{}

func (fakeTransactor) InTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	return fn(nil)
}

type recordingNotifier struct {
	rooms  []string
	events []string
}

func (n *recordingNotifier) BroadcastToRoom(roomID string, message interface{}) {
	n.rooms = append(n.rooms, roomID)
	if event, ok := message.(ChangeEvent); ok {
		n.events = append(n.events, event.Type)
	}
}

type fakeUserRepo struct {
	users map[string]*models.User
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: map[string]*models.User{}}
	for _, u := range users {
		repo.users[u.ID] = u
	}
	return repo
}

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	for _, u := range r.users {
		if u.DeletedAt == nil && u.DisplayName == user.DisplayName {
			return repositories.ErrDisplayNameConflict
		}
	}
	if user.ID == "" {
		user.ID = fmt.Sprintf("user-%d", len(r.users)+1)
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	user, ok := r.users[id]
	if !ok || user.DeletedAt != nil {
		return nil, repositories.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) GetByDisplayName(ctx context.Context, displayName string) (*models.User, error) {
	for _, user := range r.users {
		if user.DeletedAt == nil && user.DisplayName == displayName {
			copied := *user
			return &copied, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) List(ctx context.Context) ([]models.User, error) {
	users := []models.User{}
	for _, user := range r.users {
		if user.DeletedAt == nil {
			users = append(users, *user)
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (r *fakeUserRepo) Update(ctx context.Context, user *models.User) error {
	existing, ok := r.users[user.ID]
	if !ok || existing.DeletedAt != nil {
		return repositories.ErrUserNotFound
	}
	for _, u := range r.users {
		if u.ID != user.ID && u.DeletedAt == nil && u.DisplayName == user.DisplayName {
			return repositories.ErrDisplayNameConflict
		}
	}
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) UpdateAvatarKey(ctx context.Context, id string, key *string) error {
	user, ok := r.users[id]
	if !ok || user.DeletedAt != nil {
		return repositories.ErrUserNotFound
	}
	user.AvatarKey = key
	return nil
}

func (r *fakeUserRepo) SoftDelete(ctx context.Context, id string) error {
	user, ok := r.users[id]
	if !ok || user.DeletedAt != nil {
		return repositories.ErrUserNotFound
	}
	now := time.Now()
	user.DeletedAt = &now
	return nil
}

type fakeSectionRepo struct {
	sections map[string]*models.Section
	nextID   int
}

func newFakeSectionRepo(sections ...*models.Section) *fakeSectionRepo {
	repo := &fakeSectionRepo{sections: map[string]*models.Section{}}
	for _, s := range sections {
		copied := *s
		copied.Participants = nil
		repo.sections[s.ID] = &copied
	}
	return repo
}

func (r *fakeSectionRepo) Create(ctx context.Context, exec repositories.SQLExecutor, section *models.Section) error {
	r.nextID++
	section.ID = fmt.Sprintf("section-%d", r.nextID)
	section.Status = models.SectionActive
	section.CreatedAt = time.Now()
	copied := *section
	r.sections[section.ID] = &copied
	return nil
}

func (r *fakeSectionRepo) GetByID(ctx context.Context, id string) (*models.Section, error) {
	section, ok := r.sections[id]
	if !ok || section.DeletedAt != nil {
		return nil, repositories.ErrSectionNotFound
	}
	copied := *section
	return &copied, nil
}

func (r *fakeSectionRepo) List(ctx context.Context, filter repositories.ListSectionsFilter) ([]models.Section, error) {
	sections := []models.Section{}
	for _, section := range r.sections {
		if section.DeletedAt != nil {
			continue
		}
		if filter.Status != nil && section.Status != *filter.Status {
			continue
		}
		sections = append(sections, *section)
	}
	sort.Slice(sections, func(i, j int) bool {
		if filter.Ascending {
			return sections[i].CreatedAt.Before(sections[j].CreatedAt)
		}
		return sections[j].CreatedAt.Before(sections[i].CreatedAt)
	})
	return sections, nil
}

func (r *fakeSectionRepo) ListClosed(ctx context.Context, from, to *time.Time) ([]models.Section, error) {
	sections := []models.Section{}
	for _, section := range r.sections {
		if section.DeletedAt != nil || section.Status != models.SectionClosed || section.ClosedAt == nil {
			continue
		}
		if from != nil && section.ClosedAt.Before(*from) {
			continue
		}
		if to != nil && !section.ClosedAt.Before(*to) {
			continue
		}
		sections = append(sections, *section)
	}
	sort.Slice(sections, func(i, j int) bool {
		return sections[i].ClosedAt.Before(*sections[j].ClosedAt)
	})
	return sections, nil
}

func (r *fakeSectionRepo) Update(ctx context.Context, id string, params repositories.UpdateSectionParams) error {
	section, ok := r.sections[id]
	if !ok || section.DeletedAt != nil {
		return repositories.ErrSectionNotFound
	}
	if params.Name != nil {
		section.Name = *params.Name
	}
	if params.StartingPoints != nil {
		section.StartingPoints = *params.StartingPoints
	}
	if params.ReturnPoints != nil {
		section.ReturnPoints = *params.ReturnPoints
	}
	if params.Rate != nil {
		section.Rate = *params.Rate
	}
	return nil
}

func (r *fakeSectionRepo) Close(ctx context.Context, id string) error {
	section, ok := r.sections[id]
	if !ok || section.DeletedAt != nil || section.Status != models.SectionActive {
		return repositories.ErrSectionStatusConflict
	}
	now := time.Now()
	section.Status = models.SectionClosed
	section.ClosedAt = &now
	return nil
}

func (r *fakeSectionRepo) Reopen(ctx context.Context, id string) error {
	section, ok := r.sections[id]
	if !ok || section.DeletedAt != nil || section.Status != models.SectionClosed {
		return repositories.ErrSectionStatusConflict
	}
	section.Status = models.SectionActive
	section.ClosedAt = nil
	return nil
}

func (r *fakeSectionRepo) SoftDelete(ctx context.Context, id string) error {
	section, ok := r.sections[id]
	if !ok || section.DeletedAt != nil {
		return repositories.ErrSectionNotFound
	}
	now := time.Now()
	section.DeletedAt = &now
	return nil
}

type fakeParticipantRepo struct {
	bySection map[string][]models.SectionParticipant
}

func newFakeParticipantRepo() *fakeParticipantRepo {
	return &fakeParticipantRepo{bySection: map[string][]models.SectionParticipant{}}
}

func (r *fakeParticipantRepo) add(sectionID string, participants ...models.SectionParticipant) {
	r.bySection[sectionID] = append(r.bySection[sectionID], participants...)
}

func (r *fakeParticipantRepo) Insert(ctx context.Context, exec repositories.SQLExecutor, sectionID, userID string) error {
	for _, p := range r.bySection[sectionID] {
		if p.UserID == userID {
			return repositories.ErrParticipantConflict
		}
	}
	r.bySection[sectionID] = append(r.bySection[sectionID], models.SectionParticipant{
		ID:        fmt.Sprintf("part-%s-%s", sectionID, userID),
		SectionID: sectionID,
		UserID:    userID,
	})
	return nil
}

func (r *fakeParticipantRepo) ListBySection(ctx context.Context, sectionID string) ([]models.SectionParticipant, error) {
	return append([]models.SectionParticipant{}, r.bySection[sectionID]...), nil
}

func (r *fakeParticipantRepo) IsParticipant(ctx context.Context, sectionID, userID string) (bool, error) {
	for _, p := range r.bySection[sectionID] {
		if p.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

type fakeGameRepo struct {
	games  map[string]*models.Game
	nextID int
}

func newFakeGameRepo() *fakeGameRepo {
	return &fakeGameRepo{games: map[string]*models.Game{}}
}

func (r *fakeGameRepo) CreateWithScores(ctx context.Context, exec repositories.SQLExecutor, sectionID string, scores []repositories.ScoreParams) (*models.Game, error) {
	maxNumber := 0
	for _, game := range r.games {
		if game.SectionID == sectionID && game.GameNumber > maxNumber {
			maxNumber = game.GameNumber
		}
	}

	r.nextID++
	game := &models.Game{
		ID:         fmt.Sprintf("game-%d", r.nextID),
		SectionID:  sectionID,
		GameNumber: maxNumber + 1,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	for i, score := range scores {
		game.Scores = append(game.Scores, models.Score{
			ID:     fmt.Sprintf("score-%d-%d", r.nextID, i),
			GameID: game.ID,
			UserID: score.UserID,
			Points: score.Points,
		})
	}
	r.games[game.ID] = game
	copied := *game
	return &copied, nil
}

func (r *fakeGameRepo) ReplaceScores(ctx context.Context, exec repositories.SQLExecutor, gameID string, scores []repositories.ScoreParams) error {
	game, ok := r.games[gameID]
	if !ok {
		return repositories.ErrGameNotFound
	}
	game.Scores = nil
	for i, score := range scores {
		game.Scores = append(game.Scores, models.Score{
			ID:     fmt.Sprintf("score-%s-%d", gameID, i),
			GameID: gameID,
			UserID: score.UserID,
			Points: score.Points,
		})
	}
	game.UpdatedAt = time.Now()
	return nil
}

func (r *fakeGameRepo) GetByID(ctx context.Context, gameID string) (*models.Game, error) {
	game, ok := r.games[gameID]
	if !ok {
		return nil, repositories.ErrGameNotFound
	}
	copied := *game
	return &copied, nil
}

func (r *fakeGameRepo) ListBySection(ctx context.Context, sectionID string) ([]models.Game, error) {
	games := []models.Game{}
	for _, game := range r.games {
		if game.SectionID == sectionID {
			games = append(games, *game)
		}
	}
	sort.Slice(games, func(i, j int) bool { return games[i].GameNumber < games[j].GameNumber })
	return games, nil
}

func (r *fakeGameRepo) Delete(ctx context.Context, gameID string) error {
	if _, ok := r.games[gameID]; !ok {
		return repositories.ErrGameNotFound
	}
	delete(r.games, gameID)
	return nil
}
