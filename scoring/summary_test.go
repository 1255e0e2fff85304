package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func summaryParticipants() []Participant {
	return []Participant{
		{UserID: "a", DisplayName: "East"},
		{UserID: "b", DisplayName: "South"},
		{UserID: "c", DisplayName: "West"},
		{UserID: "d", DisplayName: "North"},
	}
}

func TestBuildSummary(t *testing.T) {
	t.Run("single game end to end", func(t *testing.T) {
		games := []GameScores{
			{"a": 45000, "b": 32000, "c": 15000, "d": 8000},
		}
		summary := BuildSummary(summaryParticipants(), games, 30000, 50)

		require.Len(t, summary.Rows, 4)
		assert.Equal(t, 1, summary.GameCount)
		assert.True(t, summary.HasRate)

		a := summary.Rows[0]
		assert.Equal(t, "a", a.UserID)
		assert.Equal(t, 45000, a.TotalPoints)
		assert.Equal(t, 15000, a.PointDiff)
		assert.InDelta(t, 750.0, a.Settlement, 1e-9)
		assert.Equal(t, 1, a.Rank)

		assert.Equal(t, []int{1, 2, 3, 4}, rowRanks(summary))
	})

	t.Run("rows keep participant order, not rank order", func(t *testing.T) {
		games := []GameScores{
			{"a": 8000, "b": 15000, "c": 32000, "d": 45000},
		}
		summary := BuildSummary(summaryParticipants(), games, 30000, 50)

		ids := make([]string, len(summary.Rows))
		for i, row := range summary.Rows {
			ids[i] = row.UserID
		}
		assert.Equal(t, []string{"a", "b", "c", "d"}, ids)
		assert.Equal(t, []int{4, 3, 2, 1}, rowRanks(summary))
	})

	t.Run("totals accumulate across games with shared ranks", func(t *testing.T) {
		games := []GameScores{
			{"a": 45000, "b": 32000, "c": 15000, "d": 8000},
			{"a": 15000, "b": 28000, "c": 30000, "d": 27000},
		}
		summary := BuildSummary(summaryParticipants(), games, 30000, 50)

		// a and b both total 60000 and share rank 1; c (45000) takes
		// rank 3 and d (35000) rank 4.
		assert.Equal(t, 60000, summary.Rows[0].TotalPoints)
		assert.Equal(t, 60000, summary.Rows[1].TotalPoints)
		assert.Equal(t, []int{1, 1, 3, 4}, rowRanks(summary))

		// Cumulative diff over 2 games: 60000 - 60000 = 0.
		assert.Zero(t, summary.Rows[0].PointDiff)
		assert.Zero(t, summary.Rows[0].Settlement)
	})

	t.Run("participant missing from a game counts as zero", func(t *testing.T) {
		games := []GameScores{
			{"a": 45000, "b": 32000, "c": 23000},
		}
		summary := BuildSummary(summaryParticipants(), games, 30000, 50)
		assert.Zero(t, summary.Rows[3].TotalPoints)
		assert.Equal(t, 4, summary.Rows[3].Rank)
	})

	t.Run("zero rate suppresses money", func(t *testing.T) {
		games := []GameScores{
			{"a": 45000, "b": 32000, "c": 15000, "d": 8000},
		}
		summary := BuildSummary(summaryParticipants(), games, 30000, 0)
		assert.False(t, summary.HasRate)
		for _, row := range summary.Rows {
			assert.Zero(t, row.Settlement)
		}
		// Point accounting is unaffected by the rate.
		assert.Equal(t, 15000, summary.Rows[0].PointDiff)
	})

	t.Run("zero games yields unranked zero rows", func(t *testing.T) {
		summary := BuildSummary(summaryParticipants(), nil, 30000, 50)
		assert.Zero(t, summary.GameCount)
		require.Len(t, summary.Rows, 4)
		for _, row := range summary.Rows {
			assert.Zero(t, row.TotalPoints)
			assert.Zero(t, row.PointDiff)
			assert.Zero(t, row.Settlement)
			assert.Zero(t, row.Rank)
		}
	})
}

func rowRanks(s SectionSummary) []int {
	ranks := make([]int, len(s.Rows))
	for i, row := range s.Rows {
		ranks[i] = row.Rank
	}
	return ranks
}
