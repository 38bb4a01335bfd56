package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MJE43/scorekeeper-desktop/internal/game"
	"github.com/MJE43/scorekeeper-desktop/internal/presets"
	"github.com/MJE43/scorekeeper-desktop/internal/scoring"
	"github.com/MJE43/scorekeeper-desktop/internal/stats"
)

// GameResponse is returned by every endpoint that reads or changes the game.
type GameResponse struct {
	State      game.State      `json:"state"`
	Totals     game.TotalsView `json:"totals"`
	GameOver   bool            `json:"gameOver"`
	WinnerID   string          `json:"winnerId,omitempty"`
	WinnerName string          `json:"winnerName,omitempty"`
}

// NewGameResponse bundles st with its scoreboard and winner.
func NewGameResponse(st game.State) GameResponse {
	resp := GameResponse{State: st, Totals: game.Totals(st)}
	if id, ok := game.CurrentWinner(st); ok {
		resp.GameOver = true
		resp.WinnerID = id
		resp.WinnerName = game.EntityName(st, id)
	}
	return resp
}

type VersionResponse struct {
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
}

type StartRequest struct {
	Names  []string `json:"names"`
	Target int      `json:"target"`
}

type PresetRequest struct {
	Key presets.Key `json:"key"`
}

type PartnerRequest struct {
	Index int `json:"index"`
}

type TargetRequest struct {
	Target int `json:"target"`
}

type ConfirmRequest struct {
	Confirmed bool `json:"confirmed"`
}

type PlayerRequest struct {
	PlayerID scoring.PlayerID `json:"playerId"`
}

type ValueRequest struct {
	Value int `json:"value"`
}

type WinnerRoundRequest struct {
	PlayerID scoring.PlayerID `json:"playerId"`
	Points   int              `json:"points"`
}

type SavedResponse struct {
	HasSaved bool `json:"hasSaved"`
}

// decodeJSON reads a JSON body into v. An empty body leaves v untouched when
// optional is set.
func decodeJSON(r *http.Request, v any, optional bool) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	err := dec.Decode(v)
	if optional && errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func (s *Server) respond(w http.ResponseWriter, r *http.Request, st game.State, err error) {
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, NewGameResponse(st))
}

func roundNumber(r *http.Request) (int, bool) {
	n, err := strconv.Atoi(chi.URLParam(r, "n"))
	return n, err == nil && n >= 0
}

// GET /api/v1/version
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, VersionResponse{
		Version: Version,
		Uptime:  time.Since(s.startTime).Round(time.Second).String(),
	})
}

// GET /api/v1/presets
func (s *Server) handleListPresets(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, presets.All())
}

// GET /api/v1/game
func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, NewGameResponse(s.session.State()))
}

func (s *Server) handleTotals(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, game.Totals(s.session.State()))
}

func (s *Server) handleWinner(w http.ResponseWriter, r *http.Request) {
	resp := NewGameResponse(s.session.State())
	s.writeJSON(w, http.StatusOK, map[string]any{
		"gameOver":   resp.GameOver,
		"winnerId":   resp.WinnerID,
		"winnerName": resp.WinnerName,
	})
}

func (s *Server) handleMilestones(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, game.WinnerMilestones(s.session.State()))
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, game.History(s.session.State()))
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, stats.Compute(s.session.State()))
}

// PUT /api/v1/game/preset
func (s *Server) handleSelectPreset(w http.ResponseWriter, r *http.Request) {
	var req PresetRequest
	if err := decodeJSON(r, &req, false); err != nil {
		s.errorHandler.HandleBadRequest(w, r, "", "invalid JSON")
		return
	}
	if !presets.Known(req.Key) {
		s.errorHandler.HandleBadRequest(w, r, "key", "unknown preset "+strconv.Quote(string(req.Key)))
		return
	}
	st, err := s.session.SelectPreset(r.Context(), req.Key)
	s.respond(w, r, st, err)
}

// PUT /api/v1/game/partner
func (s *Server) handleSetPartner(w http.ResponseWriter, r *http.Request) {
	var req PartnerRequest
	if err := decodeJSON(r, &req, false); err != nil {
		s.errorHandler.HandleBadRequest(w, r, "", "invalid JSON")
		return
	}
	st, err := s.session.SetPartnerIndex(r.Context(), req.Index)
	s.respond(w, r, st, err)
}

// POST /api/v1/game/start
func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	var req StartRequest
	if err := decodeJSON(r, &req, false); err != nil {
		s.errorHandler.HandleBadRequest(w, r, "", "invalid JSON")
		return
	}
	st, err := s.session.StartGame(r.Context(), req.Names, req.Target)
	s.respond(w, r, st, err)
}

// POST /api/v1/game/rounds
func (s *Server) handleAddRound(w http.ResponseWriter, r *http.Request) {
	var in game.RoundInput
	if err := decodeJSON(r, &in, false); err != nil {
		s.errorHandler.HandleBadRequest(w, r, "", "invalid JSON")
		return
	}
	st, err := s.session.AddRound(r.Context(), in)
	s.respond(w, r, st, err)
}

// POST /api/v1/game/rounds/submit records the scratch round.
func (s *Server) handleSubmitRound(w http.ResponseWriter, r *http.Request) {
	var req ConfirmRequest
	if err := decodeJSON(r, &req, true); err != nil {
		s.errorHandler.HandleBadRequest(w, r, "", "invalid JSON")
		return
	}
	st, err := s.session.SubmitCurrentRound(r.Context(), req.Confirmed)
	s.respond(w, r, st, err)
}

func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request) {
	st, err := s.session.UndoLastRound(r.Context())
	s.respond(w, r, st, err)
}

// PUT /api/v1/game/rounds/{n}
func (s *Server) handleEditRound(w http.ResponseWriter, r *http.Request) {
	n, ok := roundNumber(r)
	if !ok {
		s.errorHandler.HandleBadRequest(w, r, "n", "round number must be a whole number")
		return
	}
	var in game.RoundInput
	if err := decodeJSON(r, &in, false); err != nil {
		s.errorHandler.HandleBadRequest(w, r, "", "invalid JSON")
		return
	}
	st, err := s.session.EditRound(r.Context(), n, in)
	s.respond(w, r, st, err)
}

// DELETE /api/v1/game/rounds/{n}?confirm=true
func (s *Server) handleDeleteRound(w http.ResponseWriter, r *http.Request) {
	n, ok := roundNumber(r)
	if !ok {
		s.errorHandler.HandleBadRequest(w, r, "n", "round number must be a whole number")
		return
	}
	confirmed, _ := strconv.ParseBool(r.URL.Query().Get("confirm"))
	st, err := s.session.DeleteRound(r.Context(), n, confirmed)
	s.respond(w, r, st, err)
}

func (s *Server) handleSelectRound(w http.ResponseWriter, r *http.Request) {
	n, ok := roundNumber(r)
	if !ok {
		s.errorHandler.HandleBadRequest(w, r, "n", "round number must be a whole number")
		return
	}
	st, err := s.session.SelectHistoryRound(r.Context(), n)
	s.respond(w, r, st, err)
}

// POST /api/v1/game/continue/raise
func (s *Server) handleRaiseTarget(w http.ResponseWriter, r *http.Request) {
	var req TargetRequest
	if err := decodeJSON(r, &req, false); err != nil {
		s.errorHandler.HandleBadRequest(w, r, "", "invalid JSON")
		return
	}
	st, err := s.session.ContinueRaiseTarget(r.Context(), req.Target)
	s.respond(w, r, st, err)
}

func (s *Server) handleFreePlay(w http.ResponseWriter, r *http.Request) {
	st, err := s.session.ContinueFreePlay(r.Context())
	s.respond(w, r, st, err)
}

func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	st, err := s.session.StartNewGame(r.Context())
	s.respond(w, r, st, err)
}

func (s *Server) handleRematch(w http.ResponseWriter, r *http.Request) {
	st, err := s.session.StartNewGameSamePlayers(r.Context())
	s.respond(w, r, st, err)
}

func (s *Server) handleToggleSort(w http.ResponseWriter, r *http.Request) {
	st, err := s.session.ToggleSort(r.Context())
	s.respond(w, r, st, err)
}

func (s *Server) handleDismissBanner(w http.ResponseWriter, r *http.Request) {
	st, err := s.session.DismissBanner(r.Context())
	s.respond(w, r, st, err)
}

// PUT /api/v1/game/went-out
func (s *Server) handleWentOut(w http.ResponseWriter, r *http.Request) {
	var req PlayerRequest
	if err := decodeJSON(r, &req, false); err != nil {
		s.errorHandler.HandleBadRequest(w, r, "", "invalid JSON")
		return
	}
	st, err := s.session.SelectWentOut(r.Context(), req.PlayerID)
	s.respond(w, r, st, err)
}

// PUT /api/v1/game/scratch/{playerID}
func (s *Server) handleSetScore(w http.ResponseWriter, r *http.Request) {
	var req ValueRequest
	if err := decodeJSON(r, &req, false); err != nil {
		s.errorHandler.HandleBadRequest(w, r, "", "invalid JSON")
		return
	}
	pid := scoring.PlayerID(chi.URLParam(r, "playerID"))
	st, err := s.session.SetCurrentScore(r.Context(), pid, req.Value)
	s.respond(w, r, st, err)
}

func (s *Server) handleZeroAll(w http.ResponseWriter, r *http.Request) {
	st, err := s.session.ZeroAll(r.Context())
	s.respond(w, r, st, err)
}

func (s *Server) handleRepeatLast(w http.ResponseWriter, r *http.Request) {
	st, err := s.session.RepeatLast(r.Context())
	s.respond(w, r, st, err)
}

func (s *Server) handleSetAll(w http.ResponseWriter, r *http.Request) {
	var req ValueRequest
	if err := decodeJSON(r, &req, false); err != nil {
		s.errorHandler.HandleBadRequest(w, r, "", "invalid JSON")
		return
	}
	st, err := s.session.SetAll(r.Context(), req.Value)
	s.respond(w, r, st, err)
}

// POST /api/v1/game/scratch/moon
func (s *Server) handleMoon(w http.ResponseWriter, r *http.Request) {
	var req PlayerRequest
	if err := decodeJSON(r, &req, false); err != nil {
		s.errorHandler.HandleBadRequest(w, r, "", "invalid JSON")
		return
	}
	st, err := s.session.ApplyHeartsMoon(r.Context(), req.PlayerID)
	s.respond(w, r, st, err)
}

// POST /api/v1/game/scratch/winner
func (s *Server) handleWinnerRound(w http.ResponseWriter, r *http.Request) {
	var req WinnerRoundRequest
	if err := decodeJSON(r, &req, false); err != nil {
		s.errorHandler.HandleBadRequest(w, r, "", "invalid JSON")
		return
	}
	st, err := s.session.ApplyWinnerRound(r.Context(), req.PlayerID, req.Points)
	s.respond(w, r, st, err)
}

func (s *Server) handleHasSaved(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, SavedResponse{HasSaved: s.session.HasSaved(r.Context())})
}

func (s *Server) handleLoadSaved(w http.ResponseWriter, r *http.Request) {
	st, err := s.session.LoadSaved(r.Context())
	s.respond(w, r, st, err)
}
