package scoring

import "sort"

// SectionData is the slice of a closed section the statistics engine
// needs: its settlement parameters, its participants, and the scores of
// every recorded game.
type SectionData struct {
	ID           string
	ReturnPoints int
	Rate         int
	Participants []Participant
	Games        []GameScores
}

// RankCounts is a histogram of finishing positions. Three-player
// sections never populate Fourth.
type RankCounts struct {
	First  int `json:"first"`
	Second int `json:"second"`
	Third  int `json:"third"`
	Fourth int `json:"fourth"`
}

// UserStats is one user's lifetime record across the aggregated
// sections. TotalSettlement sums per-game settlements, not
// session-cumulative ones.
type UserStats struct {
	UserID          string     `json:"user_id"`
	DisplayName     string     `json:"display_name"`
	GameCount       int        `json:"game_count"`
	SectionCount    int        `json:"section_count"`
	WinCount        int        `json:"win_count"`
	WinRate         float64    `json:"win_rate"`
	AverageRank     float64    `json:"average_rank"`
	TotalSettlement float64    `json:"total_settlement"`
	RankCounts      RankCounts `json:"rank_counts"`
}

// StatsResult is the full output of one aggregation pass. TotalGames
// and TotalSections cover every included section, independent of which
// users end up in the per-user list.
type StatsResult struct {
	Users         []UserStats `json:"users"`
	TotalGames    int         `json:"total_games"`
	TotalSections int         `json:"total_sections"`
}

type gameRecord struct {
	rank       int
	settlement float64
}

type userAccumulator struct {
	displayName string
	games       []gameRecord
	sectionIDs  map[string]struct{}
	firstSeen   int
}

// AggregateStats computes per-user lifetime statistics over a set of
// closed sections (already filtered by date range). For every game it
// resolves competition ranks over the game's scores and records the
// per-game settlement (points − returnPoints, at the section rate).
// Users with zero counted games are omitted from the per-user list
// entirely, though sections they belong to still count toward
// TotalSections. Output is sorted by total settlement descending.
func AggregateStats(sections []SectionData) StatsResult {
	accs := make(map[string]*userAccumulator)
	totalGames := 0

	for _, section := range sections {
		for _, p := range section.Participants {
			acc, ok := accs[p.UserID]
			if !ok {
				acc = &userAccumulator{
					displayName: p.DisplayName,
					sectionIDs:  make(map[string]struct{}),
					firstSeen:   len(accs),
				}
				accs[p.UserID] = acc
			}
			acc.sectionIDs[section.ID] = struct{}{}
		}

		for _, game := range section.Games {
			totalGames++

			entries := make([]RankEntry, 0, len(game))
			for _, p := range section.Participants {
				if points, ok := game[p.UserID]; ok {
					entries = append(entries, RankEntry{ID: p.UserID, Points: points})
				}
			}
			ranks := RankByID(entries)

			for _, entry := range entries {
				acc := accs[entry.ID]
				acc.games = append(acc.games, gameRecord{
					rank:       ranks[entry.ID],
					settlement: GameSettlement(entry.Points, section.ReturnPoints, section.Rate),
				})
			}
		}
	}

	users := make([]UserStats, 0, len(accs))
	for userID, acc := range accs {
		gameCount := len(acc.games)
		if gameCount == 0 {
			continue
		}

		stats := UserStats{
			UserID:       userID,
			DisplayName:  acc.displayName,
			GameCount:    gameCount,
			SectionCount: len(acc.sectionIDs),
		}

		rankSum := 0
		for _, g := range acc.games {
			rankSum += g.rank
			stats.TotalSettlement += g.settlement
			switch g.rank {
			case 1:
				stats.RankCounts.First++
			case 2:
				stats.RankCounts.Second++
			case 3:
				stats.RankCounts.Third++
			case 4:
				stats.RankCounts.Fourth++
			}
		}

		stats.WinCount = stats.RankCounts.First
		stats.WinRate = float64(stats.WinCount) / float64(gameCount) * 100
		stats.AverageRank = float64(rankSum) / float64(gameCount)

		users = append(users, stats)
	}

	// Stable order before the settlement sort so equal totals come out
	// deterministically.
	sort.Slice(users, func(i, j int) bool {
		return accs[users[i].UserID].firstSeen < accs[users[j].UserID].firstSeen
	})
	sort.SliceStable(users, func(i, j int) bool {
		return users[i].TotalSettlement > users[j].TotalSettlement
	})

	return StatsResult{
		Users:         users,
		TotalGames:    totalGames,
		TotalSections: len(sections),
	}
}
