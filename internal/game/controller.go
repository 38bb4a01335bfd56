// Package game owns the single active game: its state machine, round
// history, snapshot format and the session that persists it.
package game

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MJE43/scorekeeper-desktop/internal/presets"
	"github.com/MJE43/scorekeeper-desktop/internal/scoring"
)

const (
	MinPlayers        = 2
	DefaultMaxPlayers = 12
)

// Controller applies lifecycle transitions. Every method takes a State and
// returns a new one; the input is never modified. On error the input state
// is returned unchanged.
type Controller struct {
	Bounds     scoring.Bounds
	MaxPlayers int
	Now        func() time.Time
	NewID      func() string
}

// NewController returns a controller with default bounds and uuid ids.
func NewController() Controller {
	return Controller{
		Bounds:     scoring.DefaultBounds,
		MaxPlayers: DefaultMaxPlayers,
		Now:        time.Now,
		NewID:      uuid.NewString,
	}
}

func (c Controller) now() time.Time {
	if c.Now == nil {
		return time.Now()
	}
	return c.Now()
}

func (c Controller) newID() string {
	if c.NewID == nil {
		return uuid.NewString()
	}
	return c.NewID()
}

func (c Controller) maxPlayers() int {
	if c.MaxPlayers < MinPlayers {
		return DefaultMaxPlayers
	}
	return c.MaxPlayers
}

// RoundInput is a live round submission or a history edit.
type RoundInput struct {
	Scores  scoring.RawScores `json:"scores"`
	WentOut scoring.PlayerID  `json:"wentOutPlayerId,omitempty"`
	// Confirmed accepts any warning the validation step raised.
	Confirmed bool `json:"confirmed"`
}

// SelectPreset switches the preset during setup, or during play before the
// first round is recorded.
func (c Controller) SelectPreset(s State, key presets.Key) (State, error) {
	if s.Mode == ModeFinished || (s.Mode == ModePlaying && len(s.Rounds) > 0) {
		return s, PhaseError("preset can only be changed before the first round")
	}
	p := presets.Lookup(key)
	next := s.Clone()
	next.PresetKey = p.Key
	next.WinDirection = p.WinDirection
	next.PresetNote = p.Note
	if p.HasTarget() {
		next.Target = p.Target(DefaultTarget)
		next.InitialTarget = next.Target
	}
	next.Teams = teamsFor(next)
	if next.PresetKey != presets.SkyJo {
		next.SkyjoWentOutSelection = ""
	}
	return next, nil
}

// SetPartnerIndex picks player 1's partner by roster position (1..3).
func (c Controller) SetPartnerIndex(s State, idx int) (State, error) {
	if idx < 1 || idx > 3 {
		return s, setupErr("Partner must be player 2, 3 or 4.")
	}
	if len(s.Rounds) > 0 {
		return s, ErrTeamsLocked
	}
	next := s.Clone()
	next.SpadesPartnerIndex = idx
	if next.Mode != ModeSetup {
		next.Teams = teamsFor(next)
	}
	return next, nil
}

// ValidateSetup checks a roster and target before a game starts and
// returns the trimmed names.
func (c Controller) ValidateSetup(names []string, target int) ([]string, error) {
	trimmed := make([]string, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			return nil, setupErr("All player names are required.")
		}
		key := strings.ToLower(n)
		if seen[key] {
			return nil, setupErr("Player names must be unique (case-insensitive).")
		}
		seen[key] = true
		trimmed = append(trimmed, n)
	}
	if len(trimmed) < MinPlayers {
		return nil, setupErr(fmt.Sprintf("At least %d players are required.", MinPlayers))
	}
	if limit := c.maxPlayers(); len(trimmed) > limit {
		return nil, setupErr(fmt.Sprintf("At most %d players are supported.", limit))
	}
	if target < 1 {
		return nil, setupErr("Target must be a positive whole number.")
	}
	return trimmed, nil
}

// StartGame leaves setup with a new roster and target.
func (c Controller) StartGame(s State, names []string, target int) (State, error) {
	if s.Mode != ModeSetup {
		return s, PhaseError("a game is already in progress")
	}
	trimmed, err := c.ValidateSetup(names, target)
	if err != nil {
		return s, err
	}
	next := s.Clone()
	next.GameID = c.newID()
	next.Players = make([]scoring.Player, 0, len(trimmed))
	for _, n := range trimmed {
		next.Players = append(next.Players, scoring.Player{ID: scoring.PlayerID(c.newID()), Name: n})
	}
	next.Target = target
	next.InitialTarget = target
	c.resetPlay(&next)
	return next, nil
}

// resetPlay clears everything a fresh game on the current roster needs
// cleared and enters playing mode.
func (c Controller) resetPlay(s *State) {
	s.Teams = teamsFor(*s)
	s.Rounds = nil
	s.WinnerID = ""
	s.Milestones = nil
	s.Lifecycle = LifecycleInProgress
	s.Mode = ModePlaying
	s.BannerDismissed = false
	s.LastRoundScores = map[scoring.PlayerID]int{}
	s.SkyjoWentOutSelection = ""
	s.HistoryEditingRoundN = 0
	s.zeroCurrentRound()
}

// AddRound validates and records a round, then resolves the winner unless
// the game is in free play.
func (c Controller) AddRound(s State, in RoundInput) (State, error) {
	if s.Mode != ModePlaying {
		return s, PhaseError("rounds can only be added while playing")
	}
	wentOut := in.WentOut
	if wentOut == "" {
		wentOut = s.SkyjoWentOutSelection
	}
	prepared, err := scoring.Prepare(scoring.RulesFor(s.PresetKey), s.Players,
		scoring.Proposal{Scores: in.Scores, WentOut: wentOut, Label: "round"}, c.Bounds)
	if err != nil {
		return s, err
	}
	if prepared.Warning != "" && !in.Confirmed {
		return s, needsConfirmation(prepared.Warning)
	}

	next := s.Clone()
	round := scoring.Round{
		N:         len(next.Rounds) + 1,
		Scores:    prepared.Scores,
		Timestamp: c.now(),
		WentOut:   prepared.WentOut,
	}
	next.Rounds = append(next.Rounds, round)
	next.LastRoundScores = copyScores(round.Scores)
	next.SkyjoWentOutSelection = ""
	next.zeroCurrentRound()

	if next.Lifecycle == LifecycleFreePlay {
		return next, nil
	}
	if w, ok := resolve(next); ok {
		next.WinnerID = w
		next.Mode = ModeFinished
		next.Milestones = append(next.Milestones, WinnerMilestone{
			WinnerID:  w,
			RoundN:    round.N,
			Target:    next.Target,
			Timestamp: round.Timestamp,
		})
		if next.Lifecycle != LifecycleExtended {
			next.Lifecycle = LifecycleCompleted
		}
		next.BannerDismissed = false
		return next, nil
	}
	next.Mode = ModePlaying
	if len(next.Milestones) == 0 {
		next.Lifecycle = LifecycleInProgress
	}
	return next, nil
}

// ContinueRaiseTarget resumes a decided game with a strictly higher target.
// Totals are not re-checked until the next round is added.
func (c Controller) ContinueRaiseTarget(s State, newTarget int) (State, error) {
	if s.Mode != ModeFinished || s.WinnerID == "" {
		return s, PhaseError("the game has no winner to continue from")
	}
	if newTarget <= s.Target {
		return s, setupErr(fmt.Sprintf("New target must be greater than %d.", s.Target))
	}
	next := s.Clone()
	next.Target = newTarget
	next.WinnerID = ""
	next.Mode = ModePlaying
	next.Lifecycle = LifecycleExtended
	next.BannerDismissed = false
	return next, nil
}

// ContinueFreePlay resumes a decided game with no further winner checks.
func (c Controller) ContinueFreePlay(s State) (State, error) {
	if s.Mode != ModeFinished || s.WinnerID == "" {
		return s, PhaseError("the game has no winner to continue from")
	}
	next := s.Clone()
	next.WinnerID = ""
	next.Mode = ModePlaying
	next.Lifecycle = LifecycleFreePlay
	next.BannerDismissed = false
	return next, nil
}

// StartNewGame discards everything and returns to setup.
func (c Controller) StartNewGame(s State) State {
	return NewState()
}

// StartNewGameSamePlayers keeps names, preset and partner choice; ids, rounds
// and milestones are fresh and the target returns to the initial one.
func (c Controller) StartNewGameSamePlayers(s State) (State, error) {
	if len(s.Players) < MinPlayers {
		return s, PhaseError("no players to start a new game with")
	}
	next := s.Clone()
	next.GameID = c.newID()
	for i := range next.Players {
		next.Players[i].ID = scoring.PlayerID(c.newID())
	}
	if next.InitialTarget > 0 {
		next.Target = next.InitialTarget
	}
	c.resetPlay(&next)
	return next, nil
}

// ToggleSort flips scoreboard ordering between roster and totals.
func (c Controller) ToggleSort(s State) State {
	next := s.Clone()
	next.SortByTotal = !next.SortByTotal
	return next
}

// DismissBanner hides the winner banner without touching game state.
func (c Controller) DismissBanner(s State) State {
	next := s.Clone()
	next.BannerDismissed = true
	return next
}

// SelectWentOut records the SkyJo player who ended the round being entered.
func (c Controller) SelectWentOut(s State, pid scoring.PlayerID) (State, error) {
	if s.PresetKey != presets.SkyJo {
		return s, PhaseError("went-out selection only applies to SkyJo")
	}
	if pid != "" && !s.HasPlayer(pid) {
		return s, unknownPlayer(pid)
	}
	next := s.Clone()
	next.SkyjoWentOutSelection = pid
	return next, nil
}

func unknownPlayer(pid scoring.PlayerID) error {
	return &scoring.ValidationError{
		Kind:    scoring.KindUnknownPlayer,
		Message: fmt.Sprintf("Player %q is not in this game.", pid),
		Player:  pid,
	}
}

// resolve runs winner resolution over the full history.
func resolve(s State) (string, bool) {
	totals := scoring.TotalsForPreset(s.Players, s.Rounds, s.PresetKey)
	entries := scoring.Entries(s.Players, s.Teams, totals)
	return scoring.ResolveWinner(entries, s.WinDirection, s.Target)
}
