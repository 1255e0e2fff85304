package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregateStats(t *testing.T) {
	t.Run("single section single game", func(t *testing.T) {
		sections := []SectionData{
			{
				ID:           "s1",
				ReturnPoints: 30000,
				Rate:         50,
				Participants: []Participant{
					{UserID: "a", DisplayName: "East"},
					{UserID: "b", DisplayName: "South"},
					{UserID: "c", DisplayName: "West"},
					{UserID: "d", DisplayName: "North"},
				},
				Games: []GameScores{
					{"a": 45000, "b": 32000, "c": 15000, "d": 8000},
				},
			},
		}

		result := AggregateStats(sections)
		assert.Equal(t, 1, result.TotalGames)
		assert.Equal(t, 1, result.TotalSections)
		require.Len(t, result.Users, 4)

		// Sorted by total settlement descending.
		top := result.Users[0]
		assert.Equal(t, "a", top.UserID)
		assert.Equal(t, 1, top.GameCount)
		assert.Equal(t, 1, top.SectionCount)
		assert.Equal(t, 1, top.WinCount)
		assert.InDelta(t, 100.0, top.WinRate, 1e-9)
		assert.InDelta(t, 1.0, top.AverageRank, 1e-9)
		assert.InDelta(t, 750.0, top.TotalSettlement, 1e-9)
		assert.Equal(t, RankCounts{First: 1}, top.RankCounts)

		bottom := result.Users[3]
		assert.Equal(t, "d", bottom.UserID)
		assert.InDelta(t, -1100.0, bottom.TotalSettlement, 1e-9)
		assert.Equal(t, RankCounts{Fourth: 1}, bottom.RankCounts)
	})

	t.Run("settlement sums per game across sections", func(t *testing.T) {
		participants := []Participant{
			{UserID: "a", DisplayName: "East"},
			{UserID: "b", DisplayName: "South"},
			{UserID: "c", DisplayName: "West"},
			{UserID: "d", DisplayName: "North"},
		}
		sections := []SectionData{
			{
				ID: "s1", ReturnPoints: 30000, Rate: 50, Participants: participants,
				Games: []GameScores{
					{"a": 45000, "b": 32000, "c": 15000, "d": 8000},
					{"a": 32000, "b": 45000, "c": 8000, "d": 15000},
				},
			},
			{
				// Different return points: per-game basis matters here.
				ID: "s2", ReturnPoints: 25000, Rate: 10, Participants: participants,
				Games: []GameScores{
					{"a": 40000, "b": 20000, "c": 25000, "d": 15000},
				},
			},
		}

		result := AggregateStats(sections)
		assert.Equal(t, 3, result.TotalGames)
		assert.Equal(t, 2, result.TotalSections)

		a := findUser(t, result, "a")
		assert.Equal(t, 3, a.GameCount)
		assert.Equal(t, 2, a.SectionCount)
		// Per game: +750, +100, +150.
		assert.InDelta(t, 1000.0, a.TotalSettlement, 1e-9)
		assert.Equal(t, RankCounts{First: 2, Second: 1}, a.RankCounts)
		assert.Equal(t, 2, a.WinCount)
		assert.InDelta(t, 100.0*2/3, a.WinRate, 1e-9)
		assert.InDelta(t, 4.0/3, a.AverageRank, 1e-9)
	})

	t.Run("game ranks share ties", func(t *testing.T) {
		sections := []SectionData{
			{
				ID: "s1", ReturnPoints: 30000, Rate: 0,
				Participants: []Participant{
					{UserID: "a"}, {UserID: "b"}, {UserID: "c"}, {UserID: "d"},
				},
				Games: []GameScores{
					{"a": 45000, "b": 32000, "c": 32000, "d": -9000},
				},
			},
		}

		result := AggregateStats(sections)
		assert.InDelta(t, 2.0, findUser(t, result, "b").AverageRank, 1e-9)
		assert.InDelta(t, 2.0, findUser(t, result, "c").AverageRank, 1e-9)
		assert.InDelta(t, 4.0, findUser(t, result, "d").AverageRank, 1e-9)
		assert.Equal(t, RankCounts{Second: 1}, findUser(t, result, "b").RankCounts)
	})

	t.Run("three player sections only populate ranks one to three", func(t *testing.T) {
		sections := []SectionData{
			{
				ID: "s1", ReturnPoints: 35000, Rate: 30,
				Participants: []Participant{
					{UserID: "a"}, {UserID: "b"}, {UserID: "c"},
				},
				Games: []GameScores{
					{"a": 52000, "b": 33000, "c": 20000},
					{"a": 20000, "b": 52000, "c": 33000},
				},
			},
		}

		result := AggregateStats(sections)
		for _, u := range result.Users {
			assert.Zero(t, u.RankCounts.Fourth)
		}
	})

	t.Run("users with zero games are omitted but sections still count", func(t *testing.T) {
		sections := []SectionData{
			{
				ID: "empty", ReturnPoints: 30000, Rate: 50,
				Participants: []Participant{
					{UserID: "idle", DisplayName: "Idle"},
				},
			},
			{
				ID: "played", ReturnPoints: 30000, Rate: 50,
				Participants: []Participant{
					{UserID: "a"}, {UserID: "b"}, {UserID: "c"}, {UserID: "d"},
				},
				Games: []GameScores{
					{"a": 45000, "b": 32000, "c": 15000, "d": 8000},
				},
			},
		}

		result := AggregateStats(sections)
		assert.Equal(t, 2, result.TotalSections)
		assert.Equal(t, 1, result.TotalGames)
		require.Len(t, result.Users, 4)
		for _, u := range result.Users {
			assert.NotEqual(t, "idle", u.UserID)
		}
	})

	t.Run("member of an empty section still counts it in their section count", func(t *testing.T) {
		participants := []Participant{
			{UserID: "a"}, {UserID: "b"}, {UserID: "c"}, {UserID: "d"},
		}
		sections := []SectionData{
			{ID: "empty", ReturnPoints: 30000, Rate: 50, Participants: participants},
			{
				ID: "played", ReturnPoints: 30000, Rate: 50, Participants: participants,
				Games: []GameScores{
					{"a": 45000, "b": 32000, "c": 15000, "d": 8000},
				},
			},
		}

		result := AggregateStats(sections)
		assert.Equal(t, 2, findUser(t, result, "a").SectionCount)
	})

	t.Run("no sections", func(t *testing.T) {
		result := AggregateStats(nil)
		assert.Empty(t, result.Users)
		assert.Zero(t, result.TotalGames)
		assert.Zero(t, result.TotalSections)
	})
}

func findUser(t *testing.T, result StatsResult, userID string) UserStats {
	t.Helper()
	for _, u := range result.Users {
		if u.UserID == userID {
			return u
		}
	}
	t.Fatalf("user %s not present in stats result", userID)
	return UserStats{}
}
