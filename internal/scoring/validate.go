package scoring

import (
	"fmt"
	"math"

	"github.com/MJE43/scorekeeper-desktop/internal/presets"
)

const (
	heartsRoundTotal = 26

	msgWholeNumbers = "Scores must be whole numbers."
	msgPhase10YesNo = "Phase 10 scores must be Yes/No only."
)

// Validation is the outcome of ValidateRoundScores. A warning never blocks.
type Validation struct {
	OK      bool             `json:"ok"`
	Error   string           `json:"error,omitempty"`
	Warning string           `json:"warning,omitempty"`
	Err     *ValidationError `json:"-"`
}

func failed(err *ValidationError) Validation {
	return Validation{OK: false, Error: err.Message, Err: err}
}

// IsWhole reports whether v is a finite integer value.
func IsWhole(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v == math.Trunc(v)
}

// HeartsShootMoonTotal is the round total when one player shoots the moon.
func HeartsShootMoonTotal(playerCount int) int {
	if playerCount < 1 {
		return 0
	}
	return heartsRoundTotal * (playerCount - 1)
}

// ValidateRoundScores checks a proposed round for the preset. Every player
// needs a whole score within bounds; Phase 10 accepts only 0 or 1; Hearts
// totals other than 26 or the shoot-the-moon total produce a warning.
func ValidateRoundScores(scores RawScores, players []Player, key presets.Key, bounds Bounds, label string) Validation {
	if label == "" {
		label = "round"
	}

	for _, p := range players {
		v, ok := scores[p.ID]
		if !ok || !IsWhole(v) {
			e := invalid(KindWholeNumber, msgWholeNumbers)
			e.Player = p.ID
			return failed(e)
		}
		if v < float64(bounds.Min) || v > float64(bounds.Max) {
			e := invalid(KindOutOfRange, fmt.Sprintf("Score for %s looks out of range (%d).", p.Name, int64(v)))
			e.Player = p.ID
			return failed(e)
		}
	}

	if key == presets.Phase10 {
		for _, p := range players {
			v := scores[p.ID]
			if v != 0 && v != 1 {
				e := invalid(KindPhase10YesNo, msgPhase10YesNo)
				e.Player = p.ID
				return failed(e)
			}
		}
	}

	if key == presets.Hearts {
		total := 0
		for _, p := range players {
			total += int(scores[p.ID])
		}
		moon := HeartsShootMoonTotal(len(players))
		if total != heartsRoundTotal && total != moon {
			return Validation{
				OK: true,
				Warning: fmt.Sprintf("Hearts %s total is %d (typical is %d, or %d when someone shoots the moon).",
					label, total, heartsRoundTotal, moon),
			}
		}
	}

	return Validation{OK: true}
}

// NormalizeHeartsShootMoon rewrites an exact moon-shot entry (one player with
// 26, everyone else 0) so the shooter's opponents take the 26 points. The
// returned shooter is empty when the pattern does not match.
func NormalizeHeartsShootMoon(players []Player, scores RawScores) (RawScores, PlayerID) {
	out := make(RawScores, len(players))
	for _, p := range players {
		out[p.ID] = scores[p.ID]
	}
	if len(players) == 0 {
		return out, ""
	}

	var shooter PlayerID
	count := 0
	for _, p := range players {
		if out[p.ID] == heartsRoundTotal {
			shooter = p.ID
			count++
		}
	}
	if count != 1 {
		return out, ""
	}
	for _, p := range players {
		if p.ID != shooter && out[p.ID] != 0 {
			return out, ""
		}
	}

	for _, p := range players {
		out[p.ID] = heartsRoundTotal
	}
	out[shooter] = 0
	return out, shooter
}

// CheckSingleWinner enforces the winner-only presets: exactly one player
// entered 0. Scores are left unchanged.
func CheckSingleWinner(players []Player, scores RawScores) error {
	zeros := 0
	for _, p := range players {
		if scores[p.ID] == 0 {
			zeros++
		}
	}
	if zeros != 1 {
		return invalid(KindWinnerCount,
			fmt.Sprintf("Exactly one player must score 0 as the round winner (found %d).", zeros))
	}
	return nil
}

// CoercePhase10 maps history-edit values onto Yes/No: anything above 0 is 1.
func CoercePhase10(players []Player, scores RawScores) RawScores {
	out := make(RawScores, len(players))
	for _, p := range players {
		v := scores[p.ID]
		if IsWhole(v) && v > 0 {
			out[p.ID] = 1
		} else if IsWhole(v) {
			out[p.ID] = 0
		} else {
			out[p.ID] = v
		}
	}
	return out
}

// WithDefaults returns scores restricted to players, filling missing entries
// with 0.
func WithDefaults(players []Player, scores RawScores) RawScores {
	out := make(RawScores, len(players))
	for _, p := range players {
		if v, ok := scores[p.ID]; ok {
			out[p.ID] = v
		} else {
			out[p.ID] = 0
		}
	}
	return out
}

// ToInts converts validated scores. Non-finite values become 0.
func ToInts(players []Player, scores RawScores) map[PlayerID]int {
	out := make(map[PlayerID]int, len(players))
	for _, p := range players {
		v := scores[p.ID]
		if IsWhole(v) {
			out[p.ID] = int(v)
		} else {
			out[p.ID] = 0
		}
	}
	return out
}
