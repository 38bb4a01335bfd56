package game

import (
	"fmt"

	"github.com/MJE43/scorekeeper-desktop/internal/presets"
	"github.com/MJE43/scorekeeper-desktop/internal/scoring"
)

func historyEditable(s State) error {
	if s.Mode != ModePlaying && s.Mode != ModeFinished {
		return PhaseError("no game in progress")
	}
	return nil
}

// UndoLastRound removes the most recent round and re-derives the outcome.
func (c Controller) UndoLastRound(s State) (State, error) {
	if err := historyEditable(s); err != nil {
		return s, err
	}
	if len(s.Rounds) == 0 {
		return s, ErrNoRounds
	}
	next := s.Clone()
	next.Rounds = next.Rounds[:len(next.Rounds)-1]
	recompute(&next)
	return next, nil
}

// SelectHistoryRound marks round n as being edited. Zero clears the selection.
func (c Controller) SelectHistoryRound(s State, n int) (State, error) {
	if n != 0 && s.roundIndex(n) < 0 {
		return s, fmt.Errorf("round %d: %w", n, ErrRoundNotFound)
	}
	next := s.Clone()
	next.HistoryEditingRoundN = n
	return next, nil
}

// EditRound replaces the scores of round n and stamps it with the edit time.
// The submission goes through the same checks as a live round; Phase 10
// values are first coerced to Yes/No.
func (c Controller) EditRound(s State, n int, in RoundInput) (State, error) {
	if err := historyEditable(s); err != nil {
		return s, err
	}
	idx := s.roundIndex(n)
	if idx < 0 {
		return s, fmt.Errorf("round %d: %w", n, ErrRoundNotFound)
	}
	existing := s.Rounds[idx]

	scores := scoring.WithDefaults(s.Players, in.Scores)
	if s.PresetKey == presets.Phase10 {
		scores = scoring.CoercePhase10(s.Players, scores)
	}
	wentOut := in.WentOut
	if wentOut == "" {
		wentOut = existing.WentOut
	}
	prepared, err := scoring.Prepare(scoring.RulesFor(s.PresetKey), s.Players,
		scoring.Proposal{Scores: scores, WentOut: wentOut, Label: fmt.Sprintf("round %d", n)}, c.Bounds)
	if err != nil {
		return s, err
	}
	if prepared.Warning != "" && !in.Confirmed {
		return s, needsConfirmation(prepared.Warning)
	}

	next := s.Clone()
	next.Rounds[idx].Scores = prepared.Scores
	next.Rounds[idx].WentOut = prepared.WentOut
	next.Rounds[idx].Timestamp = c.now()
	recompute(&next)
	return next, nil
}

// DeleteRound removes round n. It is refused until confirmed.
func (c Controller) DeleteRound(s State, n int, confirmed bool) (State, error) {
	if err := historyEditable(s); err != nil {
		return s, err
	}
	idx := s.roundIndex(n)
	if idx < 0 {
		return s, fmt.Errorf("round %d: %w", n, ErrRoundNotFound)
	}
	if !confirmed {
		return s, needsConfirmation(fmt.Sprintf("Delete round %d? This cannot be undone.", n))
	}
	next := s.Clone()
	next.Rounds = append(next.Rounds[:idx], next.Rounds[idx+1:]...)
	recompute(&next)
	return next, nil
}

// recompute rebuilds everything derived from the round list after a history
// change: numbering, last-round scores, winner and the milestone of the
// current target. Milestones of earlier targets are kept as history.
func recompute(s *State) {
	for i := range s.Rounds {
		s.Rounds[i].N = i + 1
	}
	s.refreshLastRoundScores()
	s.zeroCurrentRound()
	s.HistoryEditingRoundN = 0
	s.BannerDismissed = true

	if s.Lifecycle == LifecycleFreePlay {
		s.WinnerID = ""
		s.Mode = ModePlaying
		return
	}

	var previous *WinnerMilestone
	kept := s.Milestones[:0:0]
	for i, m := range s.Milestones {
		if m.Target == s.Target {
			previous = &s.Milestones[i]
			continue
		}
		kept = append(kept, m)
	}

	w, ok := resolve(*s)
	if !ok || len(s.Rounds) == 0 {
		s.Milestones = kept
		s.WinnerID = ""
		s.Mode = ModePlaying
		if len(s.Milestones) == 0 {
			s.Lifecycle = LifecycleInProgress
		}
		return
	}

	last := s.Rounds[len(s.Rounds)-1]
	m := WinnerMilestone{WinnerID: w, RoundN: last.N, Target: s.Target, Timestamp: last.Timestamp}
	if previous != nil && previous.WinnerID == m.WinnerID && previous.RoundN == m.RoundN {
		m.Timestamp = previous.Timestamp
	}
	s.Milestones = append(kept, m)
	s.WinnerID = w
	s.Mode = ModeFinished
	if s.Lifecycle != LifecycleExtended {
		s.Lifecycle = LifecycleCompleted
	}
}
