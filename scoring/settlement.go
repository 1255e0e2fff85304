package scoring

// PointDiff is a participant's cumulative differential against the
// return-point reference over n games.
func PointDiff(totalPoints, returnPoints, games int) int {
	return totalPoints - returnPoints*games
}

// Settlement converts a cumulative point differential into currency at
// rate units per 1,000 points. The result may be fractional; callers
// round for display only. A zero rate always settles to 0 and means
// currency display should be suppressed entirely.
func Settlement(totalPoints, returnPoints, games, rate int) float64 {
	if rate == 0 {
		return 0
	}
	return float64(PointDiff(totalPoints, returnPoints, games)) / 1000 * float64(rate)
}

// GameSettlement is the settlement contribution of a single game's
// score. Lifetime statistics sum these per-game amounts, which is not
// algebraically the same as the session-cumulative Settlement when
// return points differ between sections.
func GameSettlement(points, returnPoints, rate int) float64 {
	if rate == 0 {
		return 0
	}
	return float64(points-returnPoints) / 1000 * float64(rate)
}
