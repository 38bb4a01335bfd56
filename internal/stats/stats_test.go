package stats

import (
	"testing"
	"time"

	"github.com/MJE43/scorekeeper-desktop/internal/game"
	"github.com/MJE43/scorekeeper-desktop/internal/presets"
	"github.com/MJE43/scorekeeper-desktop/internal/scoring"
)

func state(key presets.Key, rounds ...map[scoring.PlayerID]int) game.State {
	s := game.NewState()
	s.Mode = game.ModePlaying
	s.PresetKey = key
	s.WinDirection = presets.Lookup(key).WinDirection
	s.Players = []scoring.Player{{ID: "a", Name: "Ann"}, {ID: "b", Name: "Bob"}}
	for i, sc := range rounds {
		s.Rounds = append(s.Rounds, scoring.Round{N: i + 1, Scores: sc, Timestamp: time.Unix(0, 0)})
	}
	return s
}

func TestPhase10CurrentPhase(t *testing.T) {
	tests := []struct{ total, want int }{
		{-1, 1}, {0, 1}, {4, 5}, {9, 10}, {10, 10}, {15, 10},
	}
	for _, tt := range tests {
		if got := Phase10CurrentPhase(tt.total); got != tt.want {
			t.Errorf("Phase10CurrentPhase(%d) = %d, want %d", tt.total, got, tt.want)
		}
	}
}

func TestAverage(t *testing.T) {
	tests := []struct {
		total, rounds int
		want          string
	}{
		{0, 0, "0.00"},
		{10, 4, "2.50"},
		{10, 3, "3.33"},
		{-5, 3, "-1.67"},
		{2, 3, "0.67"},
	}
	for _, tt := range tests {
		if got := Average(tt.total, tt.rounds).StringFixed(2); got != tt.want {
			t.Errorf("Average(%d, %d) = %s, want %s", tt.total, tt.rounds, got, tt.want)
		}
	}
}

func TestComputeHigh(t *testing.T) {
	s := state(presets.Custom,
		map[scoring.PlayerID]int{"a": 10, "b": 3},
		map[scoring.PlayerID]int{"a": -2, "b": 7},
		map[scoring.PlayerID]int{"a": 5},
	)
	sum := Compute(s)
	if sum.RoundsPlayed != 3 {
		t.Fatalf("rounds played = %d", sum.RoundsPlayed)
	}
	ann, bob := sum.Players[0], sum.Players[1]
	if ann.Total != 13 || ann.Average != "4.33" || *ann.Best != 10 || *ann.Worst != -2 {
		t.Errorf("ann = %+v best=%d worst=%d", ann, *ann.Best, *ann.Worst)
	}
	if bob.Total != 10 || *bob.Best != 7 || *bob.Worst != 0 {
		t.Errorf("bob = %+v", bob)
	}
	if ann.CurrentPhase != 0 {
		t.Errorf("current phase outside Phase 10 = %d", ann.CurrentPhase)
	}
}

func TestComputeLowUsesAdjustedScores(t *testing.T) {
	s := state(presets.SkyJo, map[scoring.PlayerID]int{"a": 6, "b": 2})
	s.Rounds[0].WentOut = "a"
	s = withRound(s, map[scoring.PlayerID]int{"a": 1, "b": 9})

	ann := Compute(s).Players[0]
	if ann.Total != 13 {
		t.Errorf("total = %d, want 13 with doubling", ann.Total)
	}
	if *ann.Best != 1 || *ann.Worst != 12 {
		t.Errorf("best/worst = %d/%d, want 1/12", *ann.Best, *ann.Worst)
	}
}

func withRound(s game.State, sc map[scoring.PlayerID]int) game.State {
	s.Rounds = append(s.Rounds, scoring.Round{N: len(s.Rounds) + 1, Scores: sc})
	return s
}

func TestComputePhase10(t *testing.T) {
	s := state(presets.Phase10,
		map[scoring.PlayerID]int{"a": 1, "b": 0},
		map[scoring.PlayerID]int{"a": 1, "b": 1},
	)
	sum := Compute(s)
	if sum.Players[0].CurrentPhase != 3 || sum.Players[1].CurrentPhase != 2 {
		t.Errorf("phases = %d/%d", sum.Players[0].CurrentPhase, sum.Players[1].CurrentPhase)
	}
}

func TestComputeNoRounds(t *testing.T) {
	sum := Compute(state(presets.Custom))
	p := sum.Players[0]
	if p.Best != nil || p.Worst != nil || p.Average != "0.00" {
		t.Errorf("empty stats = %+v", p)
	}
}
