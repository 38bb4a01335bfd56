// Package desktop binds the game session to the Wails window.
package desktop

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/wailsapp/wails/v2/pkg/runtime"

	"github.com/MJE43/scorekeeper-desktop/internal/api"
	"github.com/MJE43/scorekeeper-desktop/internal/apitoken"
	"github.com/MJE43/scorekeeper-desktop/internal/config"
	"github.com/MJE43/scorekeeper-desktop/internal/game"
	"github.com/MJE43/scorekeeper-desktop/internal/presets"
	"github.com/MJE43/scorekeeper-desktop/internal/scoring"
	"github.com/MJE43/scorekeeper-desktop/internal/stats"
	"github.com/MJE43/scorekeeper-desktop/internal/store"
)

// EventGameChanged is emitted with the new GameResponse after every change,
// whether it came from the window or the loopback API.
const EventGameChanged = "game:changed"

type emitFunc func(ctx context.Context, name string, data ...interface{})

// GameModule is the Wails-bound service that owns the snapshot database, the
// session and the loopback API. The UI calls its methods directly.
type GameModule struct {
	ctx     context.Context
	session *game.Session
	store   *store.Store
	server  *api.Server
	emit    emitFunc

	dataDir string
	dbPath  string
	port    int
	token   string
}

// NewGameModule opens the database and restores any game that was in play.
// Call Startup(ctx) from the OnStartup hook.
func NewGameModule(ctx context.Context, cfg config.Config) (*GameModule, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	st, err := store.Open(ctx, cfg.DBPath, log.New(os.Stdout, "[STORE] ", log.LstdFlags))
	if err != nil {
		return nil, err
	}

	ctrl := game.NewController()
	ctrl.Bounds = cfg.Bounds
	ctrl.MaxPlayers = cfg.MaxPlayers
	session := game.NewSession(ctrl, st, log.New(os.Stdout, "[GAME] ", log.LstdFlags))
	session.Restore(ctx)

	m := newModule(session, cfg.HTTPPort)
	m.store = st
	m.dataDir = cfg.DataDir
	m.dbPath = cfg.DBPath
	if cfg.HTTPPort > 0 {
		m.token = resolveToken(cfg)
	}
	return m, nil
}

// resolveToken prefers the configured token, then the stored one. When
// neither can be had the API still runs behind a token that lasts until exit.
func resolveToken(cfg config.Config) string {
	if cfg.APIToken != "" {
		return cfg.APIToken
	}
	tok, err := apitoken.New(apitoken.DefaultService, cfg.TokenFallbackPath()).Ensure(uuid.NewString)
	if err != nil {
		log.Printf("api token: %v; using a session-only token", err)
		return uuid.NewString()
	}
	return tok
}

func newModule(session *game.Session, port int) *GameModule {
	return &GameModule{session: session, port: port, emit: runtime.EventsEmit}
}

// Startup keeps the Wails context, forwards session changes to the window
// and starts the loopback API when a port is configured.
func (m *GameModule) Startup(ctx context.Context) error {
	m.ctx = ctx
	m.session.OnChange(func(st game.State) {
		m.emit(ctx, EventGameChanged, api.NewGameResponse(st))
	})
	if m.port <= 0 {
		return nil
	}
	m.server = api.NewServer(m.session, m.token, nil)
	return m.server.Start(m.port)
}

// Shutdown stops the API and closes the database.
func (m *GameModule) Shutdown(ctx context.Context) error {
	if m.server != nil {
		if err := m.server.Shutdown(ctx); err != nil {
			log.Printf("api shutdown: %v", err)
		}
	}
	if m.store == nil {
		return nil
	}
	return m.store.Close()
}

func (m *GameModule) context() context.Context {
	if m.ctx == nil {
		return context.Background()
	}
	return m.ctx
}

func result(st game.State, err error) (api.GameResponse, error) {
	if err != nil {
		return api.GameResponse{}, err
	}
	return api.NewGameResponse(st), nil
}

// ------------- Wails binding methods (UI calls) -------------

// DataInfo describes where the app keeps its data.
type DataInfo struct {
	DataDir  string `json:"dataDir"`
	DBPath   string `json:"dbPath"`
	APIURL   string `json:"apiUrl,omitempty"`
	APIToken string `json:"apiToken,omitempty"`
}

func (m *GameModule) GetDataInfo() DataInfo {
	info := DataInfo{DataDir: m.dataDir, DBPath: m.dbPath}
	if m.port > 0 {
		info.APIURL = fmt.Sprintf("http://127.0.0.1:%d/api/v1", m.port)
		info.APIToken = m.token
	}
	return info
}

func (m *GameModule) GetPresets() []presets.Preset { return presets.All() }

func (m *GameModule) GetGame() api.GameResponse { return api.NewGameResponse(m.session.State()) }

func (m *GameModule) GetHistory() []game.HistoryRow { return game.History(m.session.State()) }

func (m *GameModule) GetMilestones() game.MilestonesView {
	return game.WinnerMilestones(m.session.State())
}

func (m *GameModule) GetStats() stats.Summary { return stats.Compute(m.session.State()) }

// ValidateSetup returns the trimmed names, or the first problem with the
// setup form.
func (m *GameModule) ValidateSetup(names []string, target int) ([]string, error) {
	return m.session.Controller().ValidateSetup(names, target)
}

func (m *GameModule) HasSavedGame() bool { return m.session.HasSaved(m.context()) }

func (m *GameModule) LoadSavedGame() (api.GameResponse, error) {
	return result(m.session.LoadSaved(m.context()))
}

func (m *GameModule) SelectPreset(key string) (api.GameResponse, error) {
	if !presets.Known(presets.Key(key)) {
		return api.GameResponse{}, fmt.Errorf("unknown preset %q", key)
	}
	return result(m.session.SelectPreset(m.context(), presets.Key(key)))
}

func (m *GameModule) SetPartnerIndex(idx int) (api.GameResponse, error) {
	return result(m.session.SetPartnerIndex(m.context(), idx))
}

func (m *GameModule) StartGame(names []string, target int) (api.GameResponse, error) {
	return result(m.session.StartGame(m.context(), names, target))
}

func (m *GameModule) AddRound(in game.RoundInput) (api.GameResponse, error) {
	return result(m.session.AddRound(m.context(), in))
}

// SubmitRound records the scores currently typed into the round form.
func (m *GameModule) SubmitRound(confirmed bool) (api.GameResponse, error) {
	return result(m.session.SubmitCurrentRound(m.context(), confirmed))
}

func (m *GameModule) UndoLastRound() (api.GameResponse, error) {
	return result(m.session.UndoLastRound(m.context()))
}

func (m *GameModule) EditRound(n int, in game.RoundInput) (api.GameResponse, error) {
	return result(m.session.EditRound(m.context(), n, in))
}

func (m *GameModule) DeleteRound(n int, confirmed bool) (api.GameResponse, error) {
	return result(m.session.DeleteRound(m.context(), n, confirmed))
}

func (m *GameModule) SelectHistoryRound(n int) (api.GameResponse, error) {
	return result(m.session.SelectHistoryRound(m.context(), n))
}

func (m *GameModule) RaiseTarget(target int) (api.GameResponse, error) {
	return result(m.session.ContinueRaiseTarget(m.context(), target))
}

func (m *GameModule) ContinueFreePlay() (api.GameResponse, error) {
	return result(m.session.ContinueFreePlay(m.context()))
}

func (m *GameModule) NewGame() (api.GameResponse, error) {
	return result(m.session.StartNewGame(m.context()))
}

func (m *GameModule) NewGameSamePlayers() (api.GameResponse, error) {
	return result(m.session.StartNewGameSamePlayers(m.context()))
}

func (m *GameModule) ToggleSort() (api.GameResponse, error) {
	return result(m.session.ToggleSort(m.context()))
}

func (m *GameModule) DismissBanner() (api.GameResponse, error) {
	return result(m.session.DismissBanner(m.context()))
}

func (m *GameModule) SelectWentOut(playerID string) (api.GameResponse, error) {
	return result(m.session.SelectWentOut(m.context(), scoring.PlayerID(playerID)))
}

func (m *GameModule) SetScore(playerID string, value int) (api.GameResponse, error) {
	return result(m.session.SetCurrentScore(m.context(), scoring.PlayerID(playerID), value))
}

func (m *GameModule) ZeroAll() (api.GameResponse, error) {
	return result(m.session.ZeroAll(m.context()))
}

func (m *GameModule) RepeatLast() (api.GameResponse, error) {
	return result(m.session.RepeatLast(m.context()))
}

func (m *GameModule) SetAll(value int) (api.GameResponse, error) {
	return result(m.session.SetAll(m.context(), value))
}

func (m *GameModule) ShootMoon(playerID string) (api.GameResponse, error) {
	return result(m.session.ApplyHeartsMoon(m.context(), scoring.PlayerID(playerID)))
}

func (m *GameModule) WinnerRound(playerID string, points int) (api.GameResponse, error) {
	return result(m.session.ApplyWinnerRound(m.context(), scoring.PlayerID(playerID), points))
}
