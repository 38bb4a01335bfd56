package scoring

import (
	"sort"

	"github.com/MJE43/scorekeeper-desktop/internal/presets"
)

// Leader returns the current best entry. Ties keep the earlier entry. This is
// a display hint, not the authoritative winner.
func Leader(entries []Entry, dir presets.WinDirection) (string, bool) {
	if len(entries) == 0 {
		return "", false
	}
	best := entries[0]
	for _, e := range entries[1:] {
		if dir == presets.Low {
			if e.Total < best.Total {
				best = e
			}
		} else if e.Total > best.Total {
			best = e
		}
	}
	return best.ID, true
}

// ResolveWinner decides whether the game is over at target.
//
// High: entries at or above target are eligible and the highest of them wins.
// Low: the game ends once any entry reaches the target, and the lowest total
// among all entries wins. Ties go to the earlier entry in both directions.
func ResolveWinner(entries []Entry, dir presets.WinDirection, target int) (string, bool) {
	if dir == presets.Low {
		over := false
		for _, e := range entries {
			if e.Total >= target {
				over = true
				break
			}
		}
		if !over {
			return "", false
		}
		sorted := append([]Entry(nil), entries...)
		sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Total < sorted[j].Total })
		return sorted[0].ID, true
	}

	eligible := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.Total >= target {
			eligible = append(eligible, e)
		}
	}
	if len(eligible) == 0 {
		return "", false
	}
	sort.SliceStable(eligible, func(i, j int) bool { return eligible[i].Total > eligible[j].Total })
	return eligible[0].ID, true
}

// SortEntries orders entries best-first for the direction. The input is not
// modified.
func SortEntries(entries []Entry, dir presets.WinDirection) []Entry {
	out := append([]Entry(nil), entries...)
	sort.SliceStable(out, func(i, j int) bool {
		if dir == presets.Low {
			return out[i].Total < out[j].Total
		}
		return out[i].Total > out[j].Total
	})
	return out
}
