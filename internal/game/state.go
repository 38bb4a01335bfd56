package game

import (
	"time"

	"github.com/MJE43/scorekeeper-desktop/internal/presets"
	"github.com/MJE43/scorekeeper-desktop/internal/scoring"
)

// Mode is the coarse screen state of the game.
type Mode string

const (
	ModeSetup    Mode = "setup"
	ModePlaying  Mode = "playing"
	ModeFinished Mode = "finished"
)

// Lifecycle records how a decided game continues.
type Lifecycle string

const (
	LifecycleInProgress Lifecycle = "in_progress"
	LifecycleCompleted  Lifecycle = "completed"
	LifecycleExtended   Lifecycle = "extended"
	LifecycleFreePlay   Lifecycle = "free_play"
)

const (
	// DefaultTarget is used when neither the preset nor the user sets one.
	DefaultTarget = 100
	// DefaultPartnerIndex pairs player 1 with player 3.
	DefaultPartnerIndex = 2

	teamAID = "teamA"
	teamBID = "teamB"
)

// WinnerMilestone records one satisfied win condition.
type WinnerMilestone struct {
	WinnerID  string    `json:"winnerId"`
	RoundN    int       `json:"roundN"`
	Target    int       `json:"target"`
	Timestamp time.Time `json:"timestamp"`
}

// State is the aggregate root for the single active game.
type State struct {
	GameID        string               `json:"gameId"`
	Mode          Mode                 `json:"mode"`
	Lifecycle     Lifecycle            `json:"lifecycle"`
	PresetKey     presets.Key          `json:"presetKey"`
	Target        int                  `json:"target"`
	InitialTarget int                  `json:"initialTarget"`
	WinDirection  presets.WinDirection `json:"winDirection"`
	Players       []scoring.Player     `json:"players"`
	Teams         []scoring.Team       `json:"teams"`
	Rounds        []scoring.Round      `json:"rounds"`
	WinnerID      string               `json:"winnerId"`
	Milestones    []WinnerMilestone    `json:"winnerMilestones"`
	SortByTotal   bool                 `json:"sortByTotal"`

	// UI scratch. Not needed for engine correctness.
	BannerDismissed       bool                     `json:"bannerDismissed"`
	LastRoundScores       map[scoring.PlayerID]int `json:"lastRoundScores"`
	CurrentRoundScores    map[scoring.PlayerID]int `json:"currentRoundScores"`
	SpadesPartnerIndex    int                      `json:"spadesPartnerIndex"`
	PresetNote            string                   `json:"presetNote"`
	SkyjoWentOutSelection scoring.PlayerID         `json:"skyjoWentOutSelection"`
	HistoryEditingRoundN  int                      `json:"historyEditingRoundN"`
}

// NewState returns a fresh setup state.
func NewState() State {
	return State{
		Mode:               ModeSetup,
		Lifecycle:          LifecycleInProgress,
		PresetKey:          presets.Custom,
		Target:             DefaultTarget,
		InitialTarget:      DefaultTarget,
		WinDirection:       presets.High,
		LastRoundScores:    map[scoring.PlayerID]int{},
		CurrentRoundScores: map[scoring.PlayerID]int{},
		SpadesPartnerIndex: DefaultPartnerIndex,
	}
}

// Clone returns a deep copy so transitions never alias their input.
func (s State) Clone() State {
	out := s
	out.Players = append([]scoring.Player(nil), s.Players...)
	if s.Teams != nil {
		out.Teams = append([]scoring.Team(nil), s.Teams...)
	}
	out.Rounds = make([]scoring.Round, len(s.Rounds))
	for i, r := range s.Rounds {
		out.Rounds[i] = r.Clone()
	}
	out.Milestones = append([]WinnerMilestone(nil), s.Milestones...)
	out.LastRoundScores = copyScores(s.LastRoundScores)
	out.CurrentRoundScores = copyScores(s.CurrentRoundScores)
	return out
}

func copyScores(in map[scoring.PlayerID]int) map[scoring.PlayerID]int {
	out := make(map[scoring.PlayerID]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// Preset returns the active preset.
func (s State) Preset() presets.Preset { return presets.Lookup(s.PresetKey) }

// HasPlayer reports whether id belongs to the roster.
func (s State) HasPlayer(id scoring.PlayerID) bool {
	for _, p := range s.Players {
		if p.ID == id {
			return true
		}
	}
	return false
}

func (s State) roundIndex(n int) int {
	for i, r := range s.Rounds {
		if r.N == n {
			return i
		}
	}
	return -1
}

func (s *State) zeroCurrentRound() {
	s.CurrentRoundScores = make(map[scoring.PlayerID]int, len(s.Players))
	for _, p := range s.Players {
		s.CurrentRoundScores[p.ID] = 0
	}
}

func (s *State) refreshLastRoundScores() {
	if len(s.Rounds) == 0 {
		s.LastRoundScores = map[scoring.PlayerID]int{}
		return
	}
	s.LastRoundScores = copyScores(s.Rounds[len(s.Rounds)-1].Scores)
}

func (s State) hasEntity(id string) bool {
	if id == "" {
		return false
	}
	for _, t := range s.Teams {
		if t.ID == id {
			return true
		}
	}
	return s.HasPlayer(scoring.PlayerID(id))
}
