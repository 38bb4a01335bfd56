package presets

import "testing"

func TestLookup(t *testing.T) {
	tests := []struct {
		key       Key
		label     string
		dir       WinDirection
		target    int
		hasTarget bool
		teams     bool
	}{
		{Custom, "Custom", High, 0, false, false},
		{Uno, "Uno", High, 500, true, false},
		{Phase10, "Phase 10", High, 10, true, false},
		{SkyJo, "SkyJo", Low, 100, true, false},
		{Hearts, "Hearts", Low, 100, true, false},
		{Spades, "Spades", High, 500, true, true},
		{Crazy8s, "Crazy 8s", High, 100, true, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.key), func(t *testing.T) {
			p := Lookup(tt.key)
			if p.Key != tt.key {
				t.Errorf("Key = %q, want %q", p.Key, tt.key)
			}
			if p.Label != tt.label {
				t.Errorf("Label = %q, want %q", p.Label, tt.label)
			}
			if p.WinDirection != tt.dir {
				t.Errorf("WinDirection = %q, want %q", p.WinDirection, tt.dir)
			}
			if p.HasTarget() != tt.hasTarget {
				t.Errorf("HasTarget = %v, want %v", p.HasTarget(), tt.hasTarget)
			}
			if tt.hasTarget && p.Target(0) != tt.target {
				t.Errorf("Target = %d, want %d", p.Target(0), tt.target)
			}
			if p.FormsTeams != tt.teams {
				t.Errorf("FormsTeams = %v, want %v", p.FormsTeams, tt.teams)
			}
		})
	}
}

func TestLookupUnknownFallsBackToCustom(t *testing.T) {
	p := Lookup("yahtzee")
	if p.Key != Custom {
		t.Fatalf("expected custom fallback, got %q", p.Key)
	}
	if p.Target(100) != 100 {
		t.Errorf("custom preset should use fallback target, got %d", p.Target(100))
	}
	if Normalize("yahtzee") != Custom {
		t.Error("Normalize should map unknown keys to custom")
	}
}

func TestAllOrder(t *testing.T) {
	all := All()
	if len(all) != 7 {
		t.Fatalf("expected 7 presets, got %d", len(all))
	}
	if all[0].Key != Custom || all[len(all)-1].Key != Crazy8s {
		t.Errorf("unexpected order: first=%q last=%q", all[0].Key, all[len(all)-1].Key)
	}
}

func TestParseWinDirection(t *testing.T) {
	if ParseWinDirection("LOW") != Low {
		t.Error("expected LOW to parse as low")
	}
	if ParseWinDirection("sideways") != High {
		t.Error("expected unknown direction to default to high")
	}
}
