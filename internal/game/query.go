package game

import (
	"time"

	"github.com/MJE43/scorekeeper-desktop/internal/scoring"
)

// TotalsView is the scoreboard read model.
type TotalsView struct {
	Players map[scoring.PlayerID]int `json:"players"`
	Teams   map[string]int           `json:"teams"`
	// Entries are in roster order, or best-first when sorting by total.
	Entries   []scoring.Entry `json:"entries"`
	LeaderID  string          `json:"leaderId,omitempty"`
	ThisRound map[string]int  `json:"thisRound"`
}

// Totals computes preset-adjusted totals for the scoreboard.
func Totals(s State) TotalsView {
	players := scoring.TotalsForPreset(s.Players, s.Rounds, s.PresetKey)
	entries := scoring.Entries(s.Players, s.Teams, players)
	v := TotalsView{
		Players: players,
		Teams:   scoring.TotalsByTeam(s.Teams, players),
		Entries: entries,
	}
	if len(s.Rounds) > 0 {
		v.LeaderID, _ = scoring.Leader(entries, s.WinDirection)
	}
	if s.SortByTotal {
		v.Entries = scoring.SortEntries(entries, s.WinDirection)
	}

	v.ThisRound = make(map[string]int, len(entries))
	if len(s.Rounds) > 0 {
		adjusted := scoring.AdjustedScoresForRound(s.Players, s.Rounds[len(s.Rounds)-1], s.PresetKey)
		if len(s.Teams) > 0 {
			for _, t := range s.Teams {
				v.ThisRound[t.ID] = adjusted[t.Members[0]] + adjusted[t.Members[1]]
			}
		} else {
			for pid, val := range adjusted {
				v.ThisRound[string(pid)] = val
			}
		}
	}
	return v
}

// CurrentWinner returns the winning entity of a finished game.
func CurrentWinner(s State) (string, bool) {
	if s.Mode != ModeFinished || s.WinnerID == "" {
		return "", false
	}
	return s.WinnerID, true
}

// IsGameOver reports whether a winner is currently declared.
func IsGameOver(s State) bool {
	_, ok := CurrentWinner(s)
	return ok
}

// MilestonesView exposes every milestone with the first and final anchors.
type MilestonesView struct {
	All   []WinnerMilestone `json:"all"`
	First *WinnerMilestone  `json:"firstDecided,omitempty"`
	Final *WinnerMilestone  `json:"finalDecided,omitempty"`
}

// WinnerMilestones returns the milestone history.
func WinnerMilestones(s State) MilestonesView {
	v := MilestonesView{All: append([]WinnerMilestone{}, s.Milestones...)}
	if n := len(v.All); n > 0 {
		first, final := v.All[0], v.All[n-1]
		v.First, v.Final = &first, &final
	}
	return v
}

// EntityName resolves a player or team id to its display name.
func EntityName(s State, id string) string {
	for _, t := range s.Teams {
		if t.ID == id {
			return t.Name
		}
	}
	for _, p := range s.Players {
		if string(p.ID) == id {
			return p.Name
		}
	}
	return ""
}

// HistoryRow is one round in the history view.
type HistoryRow struct {
	N         int                      `json:"n"`
	Raw       map[scoring.PlayerID]int `json:"raw"`
	Adjusted  map[scoring.PlayerID]int `json:"adjusted"`
	WentOut   scoring.PlayerID         `json:"wentOutPlayerId,omitempty"`
	Timestamp time.Time                `json:"timestamp"`
	Editing   bool                     `json:"editing"`
}

// History lists rounds with raw and preset-adjusted scores.
func History(s State) []HistoryRow {
	rows := make([]HistoryRow, 0, len(s.Rounds))
	for _, r := range s.Rounds {
		raw := make(map[scoring.PlayerID]int, len(s.Players))
		for _, p := range s.Players {
			raw[p.ID] = r.Scores[p.ID]
		}
		rows = append(rows, HistoryRow{
			N:         r.N,
			Raw:       raw,
			Adjusted:  scoring.AdjustedScoresForRound(s.Players, r, s.PresetKey),
			WentOut:   r.WentOut,
			Timestamp: r.Timestamp,
			Editing:   r.N == s.HistoryEditingRoundN,
		})
	}
	return rows
}
