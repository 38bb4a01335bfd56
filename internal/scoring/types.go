package scoring

import "time"

// PlayerID identifies a player for the lifetime of one game.
type PlayerID string

// Player is a participant in the active game.
type Player struct {
	ID   PlayerID `json:"id"`
	Name string   `json:"name"`
}

// Team pairs two players under the team-forming presets.
type Team struct {
	ID      string      `json:"id"`
	Name    string      `json:"name"`
	Members [2]PlayerID `json:"members"`
}

// Round is one recorded round. Scores hold the raw entered values.
type Round struct {
	N         int              `json:"n"`
	Scores    map[PlayerID]int `json:"scores"`
	Timestamp time.Time        `json:"timestamp"`
	// WentOut is the SkyJo player who ended the round; empty otherwise.
	WentOut PlayerID `json:"skyjoWentOutPlayerId,omitempty"`
}

// Clone returns a deep copy of the round.
func (r Round) Clone() Round {
	out := r
	out.Scores = make(map[PlayerID]int, len(r.Scores))
	for k, v := range r.Scores {
		out.Scores[k] = v
	}
	return out
}

// Entry is a scoreboard line: a player or team id with its running total.
type Entry struct {
	ID    string `json:"id"`
	Total int    `json:"total"`
}

// RawScores are proposed round values before validation. Values arrive from
// loosely typed input so non-integers must still be representable.
type RawScores map[PlayerID]float64

// Bounds limit a single round score.
type Bounds struct {
	Min int `json:"minScore"`
	Max int `json:"maxScore"`
}

// DefaultBounds are applied when no explicit bounds are configured.
var DefaultBounds = Bounds{Min: -10000, Max: 10000}

// Proposal is a round as submitted from round entry or a history edit.
type Proposal struct {
	Scores  RawScores
	WentOut PlayerID
	// Label is used in messages, e.g. "round" or "round 3".
	Label string
}
