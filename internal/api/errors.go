package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/MJE43/scorekeeper-desktop/internal/game"
	"github.com/MJE43/scorekeeper-desktop/internal/scoring"
)

// APIError is the JSON body of every failed request.
type APIError struct {
	Type      string         `json:"type"`
	Message   string         `json:"message"`
	Context   map[string]any `json:"context,omitempty"`
	RequestID string         `json:"request_id,omitempty"`
	Timestamp string         `json:"timestamp,omitempty"`
}

func (e APIError) Error() string { return e.Message }

const (
	ErrTypeValidation   = "validation_error"
	ErrTypeSetup        = "setup_error"
	ErrTypeConfirmation = "confirmation_required"
	ErrTypePhase        = "invalid_phase"
	ErrTypeNotFound     = "not_found"
	ErrTypeConflict     = "conflict"
	ErrTypeBadRequest   = "bad_request"
	ErrTypeUnauthorized = "unauthorized"
	ErrTypeInternal     = "internal_error"
)

// ErrorBuilder assembles an APIError.
type ErrorBuilder struct {
	errType   string
	message   string
	context   map[string]any
	requestID string
}

func NewError(errType, message string) *ErrorBuilder {
	return &ErrorBuilder{errType: errType, message: message, context: make(map[string]any)}
}

func (eb *ErrorBuilder) WithContext(key string, value any) *ErrorBuilder {
	eb.context[key] = value
	return eb
}

func (eb *ErrorBuilder) WithRequestID(requestID string) *ErrorBuilder {
	eb.requestID = requestID
	return eb
}

// WithCause records err's text under "cause".
func (eb *ErrorBuilder) WithCause(err error) *ErrorBuilder {
	if err != nil {
		eb.context["cause"] = err.Error()
	}
	return eb
}

func (eb *ErrorBuilder) Build() APIError {
	ctx := eb.context
	if len(ctx) == 0 {
		ctx = nil
	}
	return APIError{
		Type:      eb.errType,
		Message:   eb.message,
		Context:   ctx,
		RequestID: eb.requestID,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// classify maps an engine error to a status and a builder.
func classify(err error) (int, *ErrorBuilder) {
	var (
		verr  *scoring.ValidationError
		cerr  *game.ConfirmationError
		serr  *game.SetupError
		phase game.PhaseError
	)
	switch {
	case errors.As(err, &verr):
		b := NewError(ErrTypeValidation, verr.Message).WithContext("kind", verr.Kind)
		if verr.Player != "" {
			b.WithContext("player", verr.Player)
		}
		return http.StatusUnprocessableEntity, b
	case errors.As(err, &cerr):
		return http.StatusConflict, NewError(ErrTypeConfirmation, cerr.Prompt).WithContext("retry_with", "confirmed")
	case errors.As(err, &serr):
		return http.StatusUnprocessableEntity, NewError(ErrTypeSetup, serr.Message)
	case errors.As(err, &phase):
		return http.StatusConflict, NewError(ErrTypePhase, phase.Error())
	case errors.Is(err, game.ErrRoundNotFound), errors.Is(err, game.ErrNoSavedGame):
		return http.StatusNotFound, NewError(ErrTypeNotFound, err.Error())
	case errors.Is(err, game.ErrNoRounds), errors.Is(err, game.ErrTeamsLocked):
		return http.StatusConflict, NewError(ErrTypeConflict, err.Error())
	default:
		return http.StatusInternalServerError, NewError(ErrTypeInternal, "Internal server error").WithCause(err)
	}
}

// Describe renders err the way the HTTP API reports it. Desktop bindings use
// it so the window sees the same error types as API clients.
func Describe(err error) APIError {
	_, b := classify(err)
	return b.Build()
}

// ErrorHandler writes and logs error responses.
type ErrorHandler struct {
	logger *log.Logger
}

func NewErrorHandler(logger *log.Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// HandleError writes the response for an error returned by the session.
func (eh *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	status, b := classify(err)
	eh.write(w, r, status, b)
}

// HandleBadRequest reports a malformed request body or parameter.
func (eh *ErrorHandler) HandleBadRequest(w http.ResponseWriter, r *http.Request, field, message string) {
	b := NewError(ErrTypeBadRequest, message)
	if field != "" {
		b.WithContext("field", field)
	}
	eh.write(w, r, http.StatusBadRequest, b)
}

func (eh *ErrorHandler) write(w http.ResponseWriter, r *http.Request, status int, b *ErrorBuilder) {
	apiErr := b.WithRequestID(middleware.GetReqID(r.Context())).Build()
	level := "WARN"
	if status >= 500 {
		level = "ERROR"
	}
	eh.logger.Printf("error_occurred level=%s type=%s status=%d request_id=%s method=%s path=%s message=%q",
		level, apiErr.Type, status, apiErr.RequestID, r.Method, r.URL.Path, apiErr.Message)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Error-Type", apiErr.Type)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(apiErr); err != nil {
		eh.logger.Printf("encode error response: %v", err)
	}
}

// RecoveryHandler turns a panic into a 500 response.
func (eh *ErrorHandler) RecoveryHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rvr := recover(); rvr != nil {
				if rvr == http.ErrAbortHandler {
					panic(rvr)
				}
				eh.logger.Printf("panic_recovered request_id=%s path=%s method=%s panic=%v",
					middleware.GetReqID(r.Context()), r.URL.Path, r.Method, rvr)
				eh.write(w, r, http.StatusInternalServerError,
					NewError(ErrTypeInternal, "Internal server error").WithContext("panic", fmt.Sprintf("%v", rvr)))
			}
		}()
		next.ServeHTTP(w, r)
	})
}
