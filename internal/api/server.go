// Package api exposes the active game over a loopback HTTP API so that
// scripts and companion tools can drive the same session as the window.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MJE43/scorekeeper-desktop/internal/game"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Server handles HTTP requests against a game session.
type Server struct {
	session      *game.Session
	token        string
	errorHandler *ErrorHandler
	logger       *log.Logger
	startTime    time.Time
	httpServer   *http.Server
}

// NewServer creates a server for session. Requests under /api/v1 must carry
// token in the X-Scorekeeper-Token header; an empty token disables the check.
// A nil logger writes to stdout.
func NewServer(session *game.Session, token string, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(os.Stdout, "[API] ", log.LstdFlags|log.Lshortfile)
	}
	return &Server{
		session:      session,
		token:        token,
		errorHandler: NewErrorHandler(logger),
		logger:       logger,
		startTime:    time.Now(),
	}
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.RequestLoggingMiddleware)
	r.Use(s.errorHandler.RecoveryHandler)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(versionHeader)
	r.Use(middleware.Heartbeat("/health"))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(s.TokenMiddleware)
		r.Use(middleware.AllowContentType("application/json"))

		r.Get("/version", s.handleVersion)
		r.Get("/presets", s.handleListPresets)

		r.Route("/game", func(r chi.Router) {
			r.Get("/", s.handleGetGame)
			r.Get("/totals", s.handleTotals)
			r.Get("/winner", s.handleWinner)
			r.Get("/milestones", s.handleMilestones)
			r.Get("/history", s.handleHistory)
			r.Get("/stats", s.handleStats)

			r.Put("/preset", s.handleSelectPreset)
			r.Put("/partner", s.handleSetPartner)
			r.Post("/start", s.handleStart)

			r.Post("/rounds", s.handleAddRound)
			r.Post("/rounds/submit", s.handleSubmitRound)
			r.Post("/rounds/undo", s.handleUndo)
			r.Put("/rounds/{n}", s.handleEditRound)
			r.Delete("/rounds/{n}", s.handleDeleteRound)
			r.Post("/rounds/{n}/select", s.handleSelectRound)

			r.Post("/continue/raise", s.handleRaiseTarget)
			r.Post("/continue/free-play", s.handleFreePlay)
			r.Post("/new", s.handleNewGame)
			r.Post("/rematch", s.handleRematch)

			r.Post("/sort", s.handleToggleSort)
			r.Post("/banner/dismiss", s.handleDismissBanner)
			r.Put("/went-out", s.handleWentOut)

			r.Route("/scratch", func(r chi.Router) {
				r.Put("/{playerID}", s.handleSetScore)
				r.Post("/zero", s.handleZeroAll)
				r.Post("/repeat", s.handleRepeatLast)
				r.Post("/all", s.handleSetAll)
				r.Post("/moon", s.handleMoon)
				r.Post("/winner", s.handleWinnerRound)
			})

			r.Get("/saved", s.handleHasSaved)
			r.Post("/saved/load", s.handleLoadSaved)
		})
	})

	return r
}

// Start listens on 127.0.0.1:port and serves in the background. It returns
// once the socket is bound.
func (s *Server) Start(port int) error {
	addr := fmt.Sprintf("127.0.0.1:%d", port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	s.logger.Printf("listening on http://%s", ln.Addr())
	go func() {
		if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Printf("serve: %v", err)
		}
	}()
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Printf("encode response: %v", err)
	}
}
