package game

import (
	"github.com/MJE43/scorekeeper-desktop/internal/presets"
	"github.com/MJE43/scorekeeper-desktop/internal/scoring"
)

// Round-entry helpers. They only fill CurrentRoundScores; nothing is
// recorded until the scratch round is submitted.

func (c Controller) scratchable(s State) error {
	if s.Mode != ModePlaying {
		return PhaseError("round entry is only available while playing")
	}
	return nil
}

func entryValue(s State, v int) int {
	if s.PresetKey != presets.Phase10 {
		return v
	}
	if v <= 0 {
		return 0
	}
	return 1
}

// SetCurrentScore sets one player's scratch value.
func (c Controller) SetCurrentScore(s State, pid scoring.PlayerID, v int) (State, error) {
	if err := c.scratchable(s); err != nil {
		return s, err
	}
	if !s.HasPlayer(pid) {
		return s, unknownPlayer(pid)
	}
	next := s.Clone()
	next.CurrentRoundScores[pid] = entryValue(s, v)
	return next, nil
}

// ZeroAll clears the scratch round.
func (c Controller) ZeroAll(s State) (State, error) {
	if err := c.scratchable(s); err != nil {
		return s, err
	}
	next := s.Clone()
	next.zeroCurrentRound()
	return next, nil
}

// RepeatLast copies the last recorded round into the scratch round.
func (c Controller) RepeatLast(s State) (State, error) {
	if err := c.scratchable(s); err != nil {
		return s, err
	}
	if len(s.Rounds) == 0 {
		return s, ErrNoRounds
	}
	next := s.Clone()
	last := s.Rounds[len(s.Rounds)-1]
	for _, p := range next.Players {
		if v, ok := last.Scores[p.ID]; ok {
			next.CurrentRoundScores[p.ID] = v
		}
	}
	return next, nil
}

// SetAll puts the same value in every scratch slot.
func (c Controller) SetAll(s State, v int) (State, error) {
	if err := c.scratchable(s); err != nil {
		return s, err
	}
	next := s.Clone()
	for _, p := range next.Players {
		next.CurrentRoundScores[p.ID] = entryValue(s, v)
	}
	return next, nil
}

// ApplyHeartsMoon fills the scratch round with the moon-shot entry: 26 for
// shooter and 0 for everyone else. Submitting it hands the 26 points to the
// opponents, whatever the player count.
func (c Controller) ApplyHeartsMoon(s State, shooter scoring.PlayerID) (State, error) {
	if err := c.scratchable(s); err != nil {
		return s, err
	}
	if s.PresetKey != presets.Hearts {
		return s, PhaseError("shooting the moon only applies to Hearts")
	}
	if !s.HasPlayer(shooter) {
		return s, unknownPlayer(shooter)
	}
	next := s.Clone()
	next.zeroCurrentRound()
	next.CurrentRoundScores[shooter] = 26
	return next, nil
}

// ApplyWinnerRound marks winner as the round winner with 0. Opponents keep
// any value already entered; those still at 0 take points.
func (c Controller) ApplyWinnerRound(s State, winner scoring.PlayerID, points int) (State, error) {
	if err := c.scratchable(s); err != nil {
		return s, err
	}
	if !s.HasPlayer(winner) {
		return s, unknownPlayer(winner)
	}
	if points < 0 {
		return s, setupErr("Winner points must be 0 or more.")
	}
	next := s.Clone()
	next.CurrentRoundScores[winner] = 0
	for _, p := range next.Players {
		if p.ID == winner || next.CurrentRoundScores[p.ID] != 0 {
			continue
		}
		if points == 0 {
			return s, setupErr("Enter points for every player except the winner.")
		}
		next.CurrentRoundScores[p.ID] = entryValue(s, points)
	}
	return next, nil
}

// CurrentInput turns the scratch round into a submission.
func (s State) CurrentInput(confirmed bool) RoundInput {
	scores := make(scoring.RawScores, len(s.Players))
	for _, p := range s.Players {
		scores[p.ID] = float64(s.CurrentRoundScores[p.ID])
	}
	return RoundInput{Scores: scores, WentOut: s.SkyjoWentOutSelection, Confirmed: confirmed}
}
