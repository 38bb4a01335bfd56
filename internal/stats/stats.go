// Package stats derives per-player statistics from the active game.
package stats

import (
	"github.com/shopspring/decimal"

	"github.com/MJE43/scorekeeper-desktop/internal/game"
	"github.com/MJE43/scorekeeper-desktop/internal/presets"
	"github.com/MJE43/scorekeeper-desktop/internal/scoring"
)

// Phase10Phases is the number of phases in Phase 10.
const Phase10Phases = 10

// PlayerStats summarises one player's rounds using preset-adjusted scores.
type PlayerStats struct {
	PlayerID scoring.PlayerID `json:"playerId"`
	Name     string           `json:"name"`
	Total    int              `json:"total"`
	// Average per round, fixed to two decimal places.
	Average string `json:"average"`
	Best    *int   `json:"best,omitempty"`
	Worst   *int   `json:"worst,omitempty"`
	// CurrentPhase is set for Phase 10 only.
	CurrentPhase int `json:"currentPhase,omitempty"`
}

// Summary is the statistics read model.
type Summary struct {
	RoundsPlayed int           `json:"roundsPlayed"`
	Players      []PlayerStats `json:"players"`
}

// Phase10CurrentPhase is the phase a player is working on after completing
// total phases.
func Phase10CurrentPhase(total int) int {
	if total < 0 {
		total = 0
	}
	return min(total+1, Phase10Phases)
}

// Average divides total by rounds and rounds half away from zero to two
// places. Zero rounds averages to zero.
func Average(total, rounds int) decimal.Decimal {
	if rounds <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(total)).Div(decimal.NewFromInt(int64(rounds))).Round(2)
}

// Compute builds the summary. Best and worst follow the win direction, so in
// low-scoring games the best round is the smallest one.
func Compute(s game.State) Summary {
	out := Summary{RoundsPlayed: len(s.Rounds), Players: make([]PlayerStats, 0, len(s.Players))}
	totals := scoring.TotalsForPreset(s.Players, s.Rounds, s.PresetKey)

	adjusted := make([]map[scoring.PlayerID]int, len(s.Rounds))
	for i, r := range s.Rounds {
		adjusted[i] = scoring.AdjustedScoresForRound(s.Players, r, s.PresetKey)
	}

	for _, p := range s.Players {
		ps := PlayerStats{
			PlayerID: p.ID,
			Name:     p.Name,
			Total:    totals[p.ID],
			Average:  Average(totals[p.ID], len(s.Rounds)).StringFixed(2),
		}
		for i := range adjusted {
			v := adjusted[i][p.ID]
			if ps.Best == nil {
				best, worst := v, v
				ps.Best, ps.Worst = &best, &worst
				continue
			}
			if better(v, *ps.Best, s.WinDirection) {
				*ps.Best = v
			}
			if better(*ps.Worst, v, s.WinDirection) {
				*ps.Worst = v
			}
		}
		if s.PresetKey == presets.Phase10 {
			ps.CurrentPhase = Phase10CurrentPhase(ps.Total)
		}
		out.Players = append(out.Players, ps)
	}
	return out
}

func better(a, b int, dir presets.WinDirection) bool {
	if dir == presets.Low {
		return a < b
	}
	return a > b
}
