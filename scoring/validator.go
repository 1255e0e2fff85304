package scoring

import "fmt"

// ScoreEntry is one player's submitted point total for a single game.
type ScoreEntry struct {
	UserID string
	Points int
}

// ShapeError reports a submission whose structure is wrong: either the
// entry count does not match the section's player count, or an entry
// names a user who is not a participant of the section.
type ShapeError struct {
	Expected      int
	Got           int
	UnknownUserID string
}

func (e *ShapeError) Error() string {
	if e.UnknownUserID != "" {
		return fmt.Sprintf("score submitted for user %s who is not a section participant", e.UnknownUserID)
	}
	return fmt.Sprintf("scores for exactly %d players are required, got %d", e.Expected, e.Got)
}

// QuantizationError reports a point value that is not a multiple of 100.
type QuantizationError struct {
	UserID string
	Points int
}

func (e *QuantizationError) Error() string {
	return fmt.Sprintf("points must be entered in units of 100, got %d", e.Points)
}

// BalanceError reports a submission whose total does not equal
// startingPoints × playerCount.
type BalanceError struct {
	Expected int
	Actual   int
}

// Diff is the signed difference (expected − actual), so callers can
// render an "off by N points" message.
func (e *BalanceError) Diff() int {
	return e.Expected - e.Actual
}

func (e *BalanceError) Error() string {
	return fmt.Sprintf("scores must total %d points, got %d (off by %d)", e.Expected, e.Actual, e.Diff())
}

// ValidateScores checks one game's submitted entries against the
// section's participant set, starting points and player count. On
// success it returns the entries unchanged and in their original order.
// It never mutates its input and performs no I/O.
func ValidateScores(entries []ScoreEntry, participantIDs []string, startingPoints, playerCount int) ([]ScoreEntry, error) {
	if len(entries) != playerCount {
		return nil, &ShapeError{Expected: playerCount, Got: len(entries)}
	}

	participants := make(map[string]struct{}, len(participantIDs))
	for _, id := range participantIDs {
		participants[id] = struct{}{}
	}

	total := 0
	for _, entry := range entries {
		if _, ok := participants[entry.UserID]; !ok {
			return nil, &ShapeError{Expected: playerCount, Got: len(entries), UnknownUserID: entry.UserID}
		}
		if entry.Points%100 != 0 {
			return nil, &QuantizationError{UserID: entry.UserID, Points: entry.Points}
		}
		total += entry.Points
	}

	expected := startingPoints * playerCount
	if total != expected {
		return nil, &BalanceError{Expected: expected, Actual: total}
	}

	return entries, nil
}
