package game

import (
	"context"
	"errors"
	"io"
	"log"
	"sync"

	"github.com/MJE43/scorekeeper-desktop/internal/presets"
	"github.com/MJE43/scorekeeper-desktop/internal/scoring"
)

// SnapshotStore persists the single game snapshot. Load returns a nil blob
// when nothing is stored under key.
type SnapshotStore interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, blob []byte) error
	Clear(ctx context.Context, key string) error
}

// Session is the process-wide owner of the active game. It serializes
// callers, persists after every successful transition and notifies the UI.
type Session struct {
	mu       sync.Mutex
	ctrl     Controller
	state    State
	store    SnapshotStore
	logger   *log.Logger
	onChange func(State)
}

// NewSession creates a session in setup mode. store may be nil, in which
// case nothing is persisted.
func NewSession(ctrl Controller, store SnapshotStore, logger *log.Logger) *Session {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Session{ctrl: ctrl, state: NewState(), store: store, logger: logger}
}

// OnChange registers a callback invoked with the new state after every
// successful transition. It runs with the session lock released.
func (s *Session) OnChange(fn func(State)) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// State returns a copy of the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Controller returns the rules the session applies.
func (s *Session) Controller() Controller { return s.ctrl }

func (s *Session) apply(ctx context.Context, op string, fn func(State) (State, error)) (State, error) {
	s.mu.Lock()
	next, err := fn(s.state)
	if err != nil {
		cur := s.state.Clone()
		s.mu.Unlock()
		return cur, err
	}
	s.state = next
	s.persistLocked(ctx, op)
	out := next.Clone()
	notify := s.onChange
	s.mu.Unlock()

	if notify != nil {
		notify(out.Clone())
	}
	return out, nil
}

// persistLocked writes the snapshot. Failures are logged and the in-memory
// state stays authoritative.
func (s *Session) persistLocked(ctx context.Context, op string) {
	if s.store == nil {
		return
	}
	blob, err := Marshal(s.state)
	if err != nil {
		s.logger.Printf("%s: encode snapshot: %v", op, err)
		return
	}
	if err := s.store.Save(ctx, StorageKey, blob); err != nil {
		s.logger.Printf("%s: save snapshot: %v", op, err)
	}
}

func (s *Session) load(ctx context.Context) ([]byte, error) {
	if s.store == nil {
		return nil, ErrNoSavedGame
	}
	blob, err := s.store.Load(ctx, StorageKey)
	if err != nil {
		return nil, err
	}
	if len(blob) == 0 {
		return nil, ErrNoSavedGame
	}
	return blob, nil
}

// HasSaved reports whether a snapshot is stored.
func (s *Session) HasSaved(ctx context.Context) bool {
	_, err := s.load(ctx)
	return err == nil
}

// Restore adopts the stored snapshot on startup, but only when it holds a
// game that is playing or finished.
func (s *Session) Restore(ctx context.Context) bool {
	blob, err := s.load(ctx)
	if err != nil {
		if !errors.Is(err, ErrNoSavedGame) {
			s.logger.Printf("restore: %v", err)
		}
		return false
	}
	if SavedMode(blob) == ModeSetup {
		return false
	}
	st, ok := Sanitize(blob, s.ctrl.now())
	if !ok {
		s.logger.Printf("restore: discarding unusable snapshot")
		return false
	}
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
	s.logger.Printf("restore: loaded %s game with %d players and %d rounds", st.Mode, len(st.Players), len(st.Rounds))
	return true
}

// LoadSaved replaces the current state with the stored snapshot whatever
// its mode.
func (s *Session) LoadSaved(ctx context.Context) (State, error) {
	blob, err := s.load(ctx)
	if err != nil {
		return s.State(), err
	}
	st, ok := Sanitize(blob, s.ctrl.now())
	if !ok {
		return s.State(), ErrNoSavedGame
	}
	return s.apply(ctx, "load", func(State) (State, error) { return st, nil })
}

// SelectPreset switches the preset before the first round.
func (s *Session) SelectPreset(ctx context.Context, key presets.Key) (State, error) {
	return s.apply(ctx, "select preset", func(st State) (State, error) { return s.ctrl.SelectPreset(st, key) })
}

func (s *Session) SetPartnerIndex(ctx context.Context, idx int) (State, error) {
	return s.apply(ctx, "set partner", func(st State) (State, error) { return s.ctrl.SetPartnerIndex(st, idx) })
}

// StartGame validates the roster and target and moves to play.
func (s *Session) StartGame(ctx context.Context, names []string, target int) (State, error) {
	return s.apply(ctx, "start game", func(st State) (State, error) { return s.ctrl.StartGame(st, names, target) })
}

// AddRound validates, records and saves a round, then resolves the winner.
// A Hearts total warning comes back as a *ConfirmationError until
// in.Confirmed is set.
func (s *Session) AddRound(ctx context.Context, in RoundInput) (State, error) {
	return s.apply(ctx, "add round", func(st State) (State, error) { return s.ctrl.AddRound(st, in) })
}

// SubmitCurrentRound records the scratch round.
func (s *Session) SubmitCurrentRound(ctx context.Context, confirmed bool) (State, error) {
	return s.apply(ctx, "add round", func(st State) (State, error) {
		return s.ctrl.AddRound(st, st.CurrentInput(confirmed))
	})
}

// UndoLastRound drops the newest round and leaves the banner dismissed.
func (s *Session) UndoLastRound(ctx context.Context) (State, error) {
	return s.apply(ctx, "undo", s.ctrl.UndoLastRound)
}

// EditRound rewrites round n and recomputes the winner from the full history.
func (s *Session) EditRound(ctx context.Context, n int, in RoundInput) (State, error) {
	return s.apply(ctx, "edit round", func(st State) (State, error) { return s.ctrl.EditRound(st, n, in) })
}

// DeleteRound removes round n and renumbers the rest. Without confirmed it
// returns a *ConfirmationError and changes nothing.
func (s *Session) DeleteRound(ctx context.Context, n int, confirmed bool) (State, error) {
	return s.apply(ctx, "delete round", func(st State) (State, error) { return s.ctrl.DeleteRound(st, n, confirmed) })
}

// SelectHistoryRound marks round n for editing; 0 clears the selection.
func (s *Session) SelectHistoryRound(ctx context.Context, n int) (State, error) {
	return s.apply(ctx, "select history round", func(st State) (State, error) { return s.ctrl.SelectHistoryRound(st, n) })
}

// ContinueRaiseTarget reopens a decided game at a higher target.
func (s *Session) ContinueRaiseTarget(ctx context.Context, target int) (State, error) {
	return s.apply(ctx, "raise target", func(st State) (State, error) { return s.ctrl.ContinueRaiseTarget(st, target) })
}

// ContinueFreePlay reopens a decided game with winner checks off.
func (s *Session) ContinueFreePlay(ctx context.Context) (State, error) {
	return s.apply(ctx, "free play", s.ctrl.ContinueFreePlay)
}

// StartNewGame returns to setup and removes the stored snapshot.
func (s *Session) StartNewGame(ctx context.Context) (State, error) {
	s.mu.Lock()
	s.state = s.ctrl.StartNewGame(s.state)
	if s.store != nil {
		if err := s.store.Clear(ctx, StorageKey); err != nil {
			s.logger.Printf("new game: clear snapshot: %v", err)
		}
	}
	out := s.state.Clone()
	notify := s.onChange
	s.mu.Unlock()
	if notify != nil {
		notify(out.Clone())
	}
	return out, nil
}

// StartNewGameSamePlayers restarts with the same roster under fresh ids.
func (s *Session) StartNewGameSamePlayers(ctx context.Context) (State, error) {
	return s.apply(ctx, "rematch", s.ctrl.StartNewGameSamePlayers)
}

func (s *Session) ToggleSort(ctx context.Context) (State, error) {
	return s.apply(ctx, "toggle sort", func(st State) (State, error) { return s.ctrl.ToggleSort(st), nil })
}

func (s *Session) DismissBanner(ctx context.Context) (State, error) {
	return s.apply(ctx, "dismiss banner", func(st State) (State, error) { return s.ctrl.DismissBanner(st), nil })
}

func (s *Session) SelectWentOut(ctx context.Context, pid scoring.PlayerID) (State, error) {
	return s.apply(ctx, "went out", func(st State) (State, error) { return s.ctrl.SelectWentOut(st, pid) })
}

func (s *Session) SetCurrentScore(ctx context.Context, pid scoring.PlayerID, v int) (State, error) {
	return s.apply(ctx, "set score", func(st State) (State, error) { return s.ctrl.SetCurrentScore(st, pid, v) })
}

func (s *Session) ZeroAll(ctx context.Context) (State, error) {
	return s.apply(ctx, "zero all", s.ctrl.ZeroAll)
}

func (s *Session) RepeatLast(ctx context.Context) (State, error) {
	return s.apply(ctx, "repeat last", s.ctrl.RepeatLast)
}

func (s *Session) SetAll(ctx context.Context, v int) (State, error) {
	return s.apply(ctx, "set all", func(st State) (State, error) { return s.ctrl.SetAll(st, v) })
}

// ApplyHeartsMoon fills the scratch round for a moon shot; see
// Controller.ApplyHeartsMoon.
func (s *Session) ApplyHeartsMoon(ctx context.Context, shooter scoring.PlayerID) (State, error) {
	return s.apply(ctx, "shoot moon", func(st State) (State, error) { return s.ctrl.ApplyHeartsMoon(st, shooter) })
}

// ApplyWinnerRound fills the scratch round for a winner-only round.
func (s *Session) ApplyWinnerRound(ctx context.Context, winner scoring.PlayerID, points int) (State, error) {
	return s.apply(ctx, "winner round", func(st State) (State, error) { return s.ctrl.ApplyWinnerRound(st, winner, points) })
}
