package game

import "errors"

// PhaseError reports an operation that the current mode does not allow.
type PhaseError string

func (e PhaseError) Error() string { return string(e) }

// SetupError is a blocking setup or continuation input problem.
type SetupError struct {
	Message string
}

func (e *SetupError) Error() string { return e.Message }

func setupErr(msg string) error { return &SetupError{Message: msg} }

var (
	// ErrConfirmationRequired is matched by every ConfirmationError.
	ErrConfirmationRequired = errors.New("confirmation required")
	// ErrRoundNotFound is returned for history operations on a missing round.
	ErrRoundNotFound = errors.New("round not found")
	// ErrNoRounds is returned when undoing with an empty history.
	ErrNoRounds = errors.New("no rounds recorded")
	// ErrTeamsLocked is returned when teams would change after round 1.
	ErrTeamsLocked = errors.New("teams cannot change after the first round")
	// ErrNoSavedGame is returned when no usable snapshot exists.
	ErrNoSavedGame = errors.New("no valid saved game found")
)

// ConfirmationError carries a prompt the user must accept before the
// operation is retried with confirmation. State is left untouched.
type ConfirmationError struct {
	Prompt string
}

func (e *ConfirmationError) Error() string { return e.Prompt }

func (e *ConfirmationError) Is(target error) bool { return target == ErrConfirmationRequired }

func needsConfirmation(prompt string) error { return &ConfirmationError{Prompt: prompt} }
