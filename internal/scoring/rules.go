package scoring

import (
	"fmt"

	"github.com/MJE43/scorekeeper-desktop/internal/presets"
)

// Rules is the per-preset strategy used by round submission, history edits
// and aggregation.
type Rules interface {
	// Key returns the preset the rules belong to.
	Key() presets.Key
	// Gate checks preconditions on the proposal before validation.
	Gate(players []Player, p Proposal) error
	// Normalize rewrites entered scores before validation.
	Normalize(players []Player, scores RawScores) RawScores
	// Validate runs the bounds and preset checks.
	Validate(players []Player, scores RawScores, bounds Bounds, label string) Validation
	// Adjust returns the scores that count toward totals for a stored round.
	Adjust(players []Player, r Round) map[PlayerID]int
}

type baseRules struct {
	key presets.Key
}

func (b baseRules) Key() presets.Key { return b.key }

func (b baseRules) Gate(players []Player, p Proposal) error { return nil }

func (b baseRules) Normalize(players []Player, scores RawScores) RawScores { return scores }

func (b baseRules) Validate(players []Player, scores RawScores, bounds Bounds, label string) Validation {
	return ValidateRoundScores(scores, players, b.key, bounds, label)
}

func (b baseRules) Adjust(players []Player, r Round) map[PlayerID]int {
	out := make(map[PlayerID]int, len(players))
	for _, p := range players {
		out[p.ID] = r.Scores[p.ID]
	}
	return out
}

// winnerOnlyRules covers Uno and Crazy 8s: the round winner enters 0 and
// everyone else enters the points they hand over.
type winnerOnlyRules struct{ baseRules }

func (w winnerOnlyRules) Gate(players []Player, p Proposal) error {
	return CheckSingleWinner(players, p.Scores)
}

type heartsRules struct{ baseRules }

func (h heartsRules) Normalize(players []Player, scores RawScores) RawScores {
	out, _ := NormalizeHeartsShootMoon(players, scores)
	return out
}

type skyjoRules struct{ baseRules }

func (s skyjoRules) Gate(players []Player, p Proposal) error {
	if p.WentOut == "" {
		return invalid(KindMissingWentOut, "Select the player who went out this round.")
	}
	for _, pl := range players {
		if pl.ID == p.WentOut {
			return nil
		}
	}
	return invalid(KindUnknownPlayer, fmt.Sprintf("Went-out player %q is not in this game.", p.WentOut))
}

// Adjust doubles the went-out player's positive score when another player
// scored the same or less.
func (s skyjoRules) Adjust(players []Player, r Round) map[PlayerID]int {
	out := s.baseRules.Adjust(players, r)
	if r.WentOut == "" {
		return out
	}
	wentOut, ok := out[r.WentOut]
	if !ok || wentOut <= 0 {
		return out
	}
	for _, p := range players {
		if p.ID == r.WentOut {
			continue
		}
		if out[p.ID] <= wentOut {
			out[r.WentOut] = wentOut * 2
			break
		}
	}
	return out
}

var rulesRegistry = map[presets.Key]Rules{
	presets.Custom:  baseRules{key: presets.Custom},
	presets.Uno:     winnerOnlyRules{baseRules{key: presets.Uno}},
	presets.Phase10: baseRules{key: presets.Phase10},
	presets.SkyJo:   skyjoRules{baseRules{key: presets.SkyJo}},
	presets.Hearts:  heartsRules{baseRules{key: presets.Hearts}},
	presets.Spades:  baseRules{key: presets.Spades},
	presets.Crazy8s: winnerOnlyRules{baseRules{key: presets.Crazy8s}},
}

// RulesFor returns the rules for key; unknown keys get the Custom rules.
func RulesFor(key presets.Key) Rules {
	if r, ok := rulesRegistry[key]; ok {
		return r
	}
	return rulesRegistry[presets.Custom]
}

// Prepared is a proposal that passed every blocking check.
type Prepared struct {
	Scores  map[PlayerID]int
	Warning string
	WentOut PlayerID
}

// Prepare runs gate, normalization and validation in order. A returned
// warning must be confirmed by the caller before the round is recorded.
func Prepare(rules Rules, players []Player, p Proposal, bounds Bounds) (Prepared, error) {
	scores := WithDefaults(players, p.Scores)
	p.Scores = scores
	if err := rules.Gate(players, p); err != nil {
		return Prepared{}, err
	}
	scores = rules.Normalize(players, scores)
	v := rules.Validate(players, scores, bounds, p.Label)
	if !v.OK {
		return Prepared{}, v.Err
	}
	out := Prepared{Scores: ToInts(players, scores), Warning: v.Warning}
	if rules.Key() == presets.SkyJo {
		out.WentOut = p.WentOut
	}
	return out, nil
}
