package scoring

import "github.com/MJE43/scorekeeper-desktop/internal/presets"

// TotalsByPlayer sums each player's raw score across rounds. A missing entry
// counts as zero.
func TotalsByPlayer(players []Player, rounds []Round) map[PlayerID]int {
	totals := make(map[PlayerID]int, len(players))
	for _, p := range players {
		totals[p.ID] = 0
	}
	for _, r := range rounds {
		for _, p := range players {
			totals[p.ID] += r.Scores[p.ID]
		}
	}
	return totals
}

// AdjustedScoresForRound returns the per-player scores that count toward
// totals. The stored round is never modified.
func AdjustedScoresForRound(players []Player, round Round, key presets.Key) map[PlayerID]int {
	return RulesFor(key).Adjust(players, round)
}

// TotalsForPreset sums rounds after the preset's adjustment has been applied.
func TotalsForPreset(players []Player, rounds []Round, key presets.Key) map[PlayerID]int {
	rules := RulesFor(key)
	totals := make(map[PlayerID]int, len(players))
	for _, p := range players {
		totals[p.ID] = 0
	}
	for _, r := range rounds {
		adjusted := rules.Adjust(players, r)
		for _, p := range players {
			totals[p.ID] += adjusted[p.ID]
		}
	}
	return totals
}

// TotalsByTeam sums member totals per team. No teams yields an empty map.
func TotalsByTeam(teams []Team, playerTotals map[PlayerID]int) map[string]int {
	totals := make(map[string]int, len(teams))
	for _, t := range teams {
		sum := 0
		for _, pid := range t.Members {
			sum += playerTotals[pid]
		}
		totals[t.ID] = sum
	}
	return totals
}

// Entries builds scoreboard entries in roster order: teams when present,
// players otherwise.
func Entries(players []Player, teams []Team, playerTotals map[PlayerID]int) []Entry {
	if len(teams) > 0 {
		teamTotals := TotalsByTeam(teams, playerTotals)
		out := make([]Entry, 0, len(teams))
		for _, t := range teams {
			out = append(out, Entry{ID: t.ID, Total: teamTotals[t.ID]})
		}
		return out
	}
	out := make([]Entry, 0, len(players))
	for _, p := range players {
		out = append(out, Entry{ID: string(p.ID), Total: playerTotals[p.ID]})
	}
	return out
}
