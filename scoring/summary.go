package scoring

// Participant identifies one member of a section for summary purposes.
type Participant struct {
	UserID      string
	DisplayName string
}

// GameScores maps userID to the points scored in one game.
type GameScores map[string]int

// SummaryRow is one participant's standing within a section.
type SummaryRow struct {
	UserID      string  `json:"user_id"`
	DisplayName string  `json:"display_name"`
	TotalPoints int     `json:"total_points"`
	PointDiff   int     `json:"point_diff"`
	Settlement  float64 `json:"settlement"`
	Rank        int     `json:"rank"`
}

// SectionSummary is the aggregate standing of a section. HasRate false
// means the section plays without money and settlement columns should
// not be rendered.
type SectionSummary struct {
	GameCount int          `json:"game_count"`
	HasRate   bool         `json:"has_rate"`
	Rows      []SummaryRow `json:"rows"`
}

// BuildSummary aggregates a section's games into one row per
// participant: total points over all games, the cumulative differential
// against returnPoints × gameCount, the settlement at the section rate,
// and the competition rank over totals. Rows come back in the original
// participant order regardless of rank; a participant missing from a
// game simply contributes 0 for it. With zero games every row has zero
// totals and rank 0, and callers should render a "no games yet" state
// instead of the table.
func BuildSummary(participants []Participant, games []GameScores, returnPoints, rate int) SectionSummary {
	summary := SectionSummary{
		GameCount: len(games),
		HasRate:   rate != 0,
		Rows:      make([]SummaryRow, len(participants)),
	}

	entries := make([]RankEntry, len(participants))
	for i, p := range participants {
		total := 0
		for _, game := range games {
			total += game[p.UserID]
		}
		summary.Rows[i] = SummaryRow{
			UserID:      p.UserID,
			DisplayName: p.DisplayName,
			TotalPoints: total,
			PointDiff:   PointDiff(total, returnPoints, len(games)),
			Settlement:  Settlement(total, returnPoints, len(games), rate),
		}
		entries[i] = RankEntry{ID: p.UserID, Points: total}
	}

	if len(games) == 0 {
		return summary
	}

	for i, ranked := range ResolveRanks(entries) {
		summary.Rows[i].Rank = ranked.Rank
	}
	return summary
}
