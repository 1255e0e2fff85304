package scoring

// RankEntry is a (participant, total points) pair to be ranked.
type RankEntry struct {
	ID     string
	Points int
}

// RankedEntry is a RankEntry annotated with its resolved rank.
type RankedEntry struct {
	ID     string
	Points int
	Rank   int
}

// ResolveRanks assigns standard competition ranks over the given point
// totals: highest points is rank 1, ties share the better rank, and the
// next distinct value's rank equals 1 + the number of strictly higher
// entries ([45000, 32000, 32000, -9000] ranks as [1, 2, 2, 4]).
// The output preserves the caller's ordering.
func ResolveRanks(entries []RankEntry) []RankedEntry {
	ranked := make([]RankedEntry, len(entries))
	for i, entry := range entries {
		higher := 0
		for _, other := range entries {
			if other.Points > entry.Points {
				higher++
			}
		}
		ranked[i] = RankedEntry{ID: entry.ID, Points: entry.Points, Rank: 1 + higher}
	}
	return ranked
}

// RankByID resolves ranks and returns them keyed by participant ID.
func RankByID(entries []RankEntry) map[string]int {
	ranks := make(map[string]int, len(entries))
	for _, r := range ResolveRanks(entries) {
		ranks[r.ID] = r.Rank
	}
	return ranks
}
