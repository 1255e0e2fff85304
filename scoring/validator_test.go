package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fourPlayers = []string{"u1", "u2", "u3", "u4"}

func TestValidateScores(t *testing.T) {
	valid := []ScoreEntry{
		{UserID: "u1", Points: 45000},
		{UserID: "u2", Points: 32000},
		{UserID: "u3", Points: 15000},
		{UserID: "u4", Points: 8000},
	}

	t.Run("accepts a balanced submission and preserves order", func(t *testing.T) {
		got, err := ValidateScores(valid, fourPlayers, 25000, 4)
		require.NoError(t, err)
		assert.Equal(t, valid, got)
	})

	t.Run("rejects wrong entry count", func(t *testing.T) {
		_, err := ValidateScores(valid[:3], fourPlayers, 25000, 4)
		var shapeErr *ShapeError
		require.ErrorAs(t, err, &shapeErr)
		assert.Equal(t, 4, shapeErr.Expected)
		assert.Equal(t, 3, shapeErr.Got)
	})

	t.Run("rejects an unknown participant", func(t *testing.T) {
		entries := []ScoreEntry{
			{UserID: "u1", Points: 45000},
			{UserID: "u2", Points: 32000},
			{UserID: "u3", Points: 15000},
			{UserID: "intruder", Points: 8000},
		}
		_, err := ValidateScores(entries, fourPlayers, 25000, 4)
		var shapeErr *ShapeError
		require.ErrorAs(t, err, &shapeErr)
		assert.Equal(t, "intruder", shapeErr.UnknownUserID)
	})

	t.Run("rejects points not quantized to 100", func(t *testing.T) {
		entries := []ScoreEntry{
			{UserID: "u1", Points: 45050},
			{UserID: "u2", Points: 31950},
			{UserID: "u3", Points: 15000},
			{UserID: "u4", Points: 8000},
		}
		_, err := ValidateScores(entries, fourPlayers, 25000, 4)
		var quantErr *QuantizationError
		require.ErrorAs(t, err, &quantErr)
		assert.Equal(t, "u1", quantErr.UserID)
		assert.Equal(t, 45050, quantErr.Points)
	})

	t.Run("accepts negative multiples of 100", func(t *testing.T) {
		entries := []ScoreEntry{
			{UserID: "u1", Points: 61000},
			{UserID: "u2", Points: 32000},
			{UserID: "u3", Points: 16000},
			{UserID: "u4", Points: -9000},
		}
		_, err := ValidateScores(entries, fourPlayers, 25000, 4)
		require.NoError(t, err)
	})

	t.Run("rejects an unbalanced total with the signed diff", func(t *testing.T) {
		entries := []ScoreEntry{
			{UserID: "u1", Points: 45000},
			{UserID: "u2", Points: 32000},
			{UserID: "u3", Points: 15000},
			{UserID: "u4", Points: 7000},
		}
		_, err := ValidateScores(entries, fourPlayers, 25000, 4)
		var balErr *BalanceError
		require.ErrorAs(t, err, &balErr)
		assert.Equal(t, 100000, balErr.Expected)
		assert.Equal(t, 99000, balErr.Actual)
		assert.Equal(t, 1000, balErr.Diff())
	})

	t.Run("three player sections balance against their own total", func(t *testing.T) {
		entries := []ScoreEntry{
			{UserID: "u1", Points: 52000},
			{UserID: "u2", Points: 33000},
			{UserID: "u3", Points: 20000},
		}
		got, err := ValidateScores(entries, []string{"u1", "u2", "u3"}, 35000, 3)
		require.NoError(t, err)
		assert.Len(t, got, 3)
	})
}
