package scoring

// ErrorKind classifies a blocking round validation failure.
type ErrorKind string

const (
	KindWholeNumber    ErrorKind = "whole_number"
	KindOutOfRange     ErrorKind = "out_of_range"
	KindPhase10YesNo   ErrorKind = "phase10_yes_no"
	KindMissingWentOut ErrorKind = "missing_went_out"
	KindWinnerCount    ErrorKind = "winner_count"
	KindUnknownPlayer  ErrorKind = "unknown_player"
)

// ValidationError blocks a round from being recorded.
type ValidationError struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
	Player  PlayerID  `json:"player,omitempty"`
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(kind ErrorKind, msg string) *ValidationError {
	return &ValidationError{Kind: kind, Message: msg}
}
