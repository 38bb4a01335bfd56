// Package presets holds the static table of named rule configurations.
package presets

import "strings"

// Key identifies a preset.
type Key string

const (
	Custom  Key = "custom"
	Uno     Key = "uno"
	Phase10 Key = "phase10"
	SkyJo   Key = "skyjo"
	Hearts  Key = "hearts"
	Spades  Key = "spades"
	Crazy8s Key = "crazy8s"
)

// WinDirection tells whether higher or lower totals are favourable.
type WinDirection string

const (
	High WinDirection = "high"
	Low  WinDirection = "low"
)

// ParseWinDirection returns Low only for "low"; everything else is High.
func ParseWinDirection(s string) WinDirection {
	if strings.EqualFold(strings.TrimSpace(s), string(Low)) {
		return Low
	}
	return High
}

// Label returns the human readable rule line for the direction.
func (d WinDirection) Label() string {
	if d == Low {
		return "Lowest score wins"
	}
	return "Highest score wins"
}

// Preset is an immutable rule configuration.
type Preset struct {
	Key           Key          `json:"key"`
	Label         string       `json:"label"`
	TargetDefault *int         `json:"targetDefault"`
	WinDirection  WinDirection `json:"winDirection"`
	FormsTeams    bool         `json:"formsTeams"`
	Note          string       `json:"note"`
}

// HasTarget reports whether the preset suggests a default target.
func (p Preset) HasTarget() bool { return p.TargetDefault != nil }

// Target returns the default target or fallback when the preset has none.
func (p Preset) Target(fallback int) int {
	if p.TargetDefault == nil {
		return fallback
	}
	return *p.TargetDefault
}

func target(v int) *int { return &v }

// order is the display order of the built-ins.
var order = []Key{Custom, Uno, Phase10, SkyJo, Hearts, Spades, Crazy8s}

var registry = map[Key]Preset{
	Custom: {
		Key:          Custom,
		Label:        "Custom",
		WinDirection: High,
	},
	Uno: {
		Key:           Uno,
		Label:         "Uno",
		TargetDefault: target(500),
		WinDirection:  High,
		Note:          "First player to 500 points wins.",
	},
	Phase10: {
		Key:           Phase10,
		Label:         "Phase 10",
		TargetDefault: target(10),
		WinDirection:  High,
		Note:          "Tracking phases completed (not points).",
	},
	SkyJo: {
		Key:           SkyJo,
		Label:         "SkyJo",
		TargetDefault: target(100),
		WinDirection:  Low,
		Note:          "Lowest score wins. Negative scores possible.",
	},
	Hearts: {
		Key:           Hearts,
		Label:         "Hearts",
		TargetDefault: target(100),
		WinDirection:  Low,
		Note:          "Lowest score wins. Shooting the moon applies.",
	},
	Spades: {
		Key:           Spades,
		Label:         "Spades",
		TargetDefault: target(500),
		WinDirection:  High,
		FormsTeams:    true,
		Note:          "Partnership game. Scores are tracked per-player and summed by team.",
	},
	Crazy8s: {
		Key:           Crazy8s,
		Label:         "Crazy 8s",
		TargetDefault: target(100),
		WinDirection:  High,
		Note:          "Standard scoring: you score points from opponents' remaining cards. First to 100+ wins.",
	},
}

// Lookup returns the preset for key, falling back to Custom for unknown keys.
func Lookup(key Key) Preset {
	if p, ok := registry[key]; ok {
		return p
	}
	return registry[Custom]
}

// Known reports whether key names a built-in preset.
func Known(key Key) bool {
	_, ok := registry[key]
	return ok
}

// Normalize maps unknown keys to Custom.
func Normalize(key Key) Key {
	if Known(key) {
		return key
	}
	return Custom
}

// All returns every preset in display order.
func All() []Preset {
	out := make([]Preset, 0, len(order))
	for _, k := range order {
		out = append(out, registry[k])
	}
	return out
}
