package scoring

import (
	"errors"
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/MJE43/scorekeeper-desktop/internal/presets"
)

func players(ids ...string) []Player {
	out := make([]Player, len(ids))
	for i, id := range ids {
		out[i] = Player{ID: PlayerID(id), Name: strings.ToUpper(id)}
	}
	return out
}

func TestResolveWinnerHigh(t *testing.T) {
	entries := []Entry{{"a", 140}, {"b", 170}, {"c", 160}}

	if w, ok := ResolveWinner(entries, presets.High, 150); !ok || w != "b" {
		t.Errorf("target 150: got (%q, %v), want b", w, ok)
	}
	if w, ok := ResolveWinner(entries, presets.High, 200); ok {
		t.Errorf("target 200: expected no winner, got %q", w)
	}
}

func TestResolveWinnerLowBustThenLowest(t *testing.T) {
	before := []Entry{{"a", 50}, {"b", 60}, {"c", 70}}
	if w, ok := ResolveWinner(before, presets.Low, 100); ok {
		t.Errorf("expected no winner before anyone reaches target, got %q", w)
	}

	ended := []Entry{{"a", 120}, {"b", 97}, {"c", 103}}
	if w, ok := ResolveWinner(ended, presets.Low, 100); !ok || w != "b" {
		t.Errorf("got (%q, %v), want b", w, ok)
	}
}

func TestResolveWinnerTiesKeepInputOrder(t *testing.T) {
	high := []Entry{{"a", 90}, {"b", 120}, {"c", 120}}
	if w, _ := ResolveWinner(high, presets.High, 100); w != "b" {
		t.Errorf("high tie: got %q, want b", w)
	}
	low := []Entry{{"a", 100}, {"b", 40}, {"c", 40}}
	if w, _ := ResolveWinner(low, presets.Low, 100); w != "b" {
		t.Errorf("low tie: got %q, want b", w)
	}
}

func TestLeader(t *testing.T) {
	entries := []Entry{{"a", 10}, {"b", 30}, {"c", 30}, {"d", 5}}
	if id, _ := Leader(entries, presets.High); id != "b" {
		t.Errorf("high leader = %q, want b", id)
	}
	if id, _ := Leader(entries, presets.Low); id != "d" {
		t.Errorf("low leader = %q, want d", id)
	}
	if _, ok := Leader(nil, presets.High); ok {
		t.Error("expected no leader for empty entries")
	}
}

func TestTotalsAndTeams(t *testing.T) {
	ps := players("p1", "p2", "p3", "p4")
	rounds := []Round{
		{N: 1, Scores: map[PlayerID]int{"p1": 50, "p2": 40, "p3": 30, "p4": 20}},
		{N: 2, Scores: map[PlayerID]int{"p1": -10, "p2": 10, "p3": 5, "p4": 15}},
	}
	teams := []Team{
		{ID: "A", Members: [2]PlayerID{"p1", "p3"}},
		{ID: "B", Members: [2]PlayerID{"p2", "p4"}},
	}

	byPlayer := TotalsByPlayer(ps, rounds)
	want := map[PlayerID]int{"p1": 40, "p2": 50, "p3": 35, "p4": 35}
	if !reflect.DeepEqual(byPlayer, want) {
		t.Errorf("player totals = %v, want %v", byPlayer, want)
	}
	if again := TotalsByPlayer(ps, rounds); !reflect.DeepEqual(again, byPlayer) {
		t.Error("totals changed between identical calls")
	}

	byTeam := TotalsByTeam(teams, byPlayer)
	if !reflect.DeepEqual(byTeam, map[string]int{"A": 75, "B": 85}) {
		t.Errorf("team totals = %v", byTeam)
	}
	if got := TotalsByTeam(nil, byPlayer); len(got) != 0 {
		t.Errorf("expected empty team totals, got %v", got)
	}

	entries := Entries(ps, teams, byPlayer)
	if len(entries) != 2 || entries[0].ID != "A" || entries[1].Total != 85 {
		t.Errorf("unexpected team entries %v", entries)
	}
}

func TestTotalsMissingEntryCountsZero(t *testing.T) {
	ps := players("a", "b")
	rounds := []Round{{N: 1, Scores: map[PlayerID]int{"a": 7}}, {N: 2, Scores: nil}}
	got := TotalsByPlayer(ps, rounds)
	if got["a"] != 7 || got["b"] != 0 {
		t.Errorf("got %v", got)
	}
}

func TestSkyJoAdjustment(t *testing.T) {
	ps := players("a", "b", "c")

	tests := []struct {
		name    string
		scores  map[PlayerID]int
		wentOut PlayerID
		wantA   int
	}{
		{"strictly lowest keeps score", map[PlayerID]int{"a": 5, "b": 6, "c": 20}, "a", 5},
		{"someone lower doubles", map[PlayerID]int{"a": 10, "b": 3, "c": 20}, "a", 20},
		{"tie doubles", map[PlayerID]int{"a": 10, "b": 10, "c": 20}, "a", 20},
		{"non-positive never doubles", map[PlayerID]int{"a": 0, "b": -5, "c": 20}, "a", 0},
		{"no went-out", map[PlayerID]int{"a": 10, "b": 3, "c": 20}, "", 10},
		{"unknown went-out", map[PlayerID]int{"a": 10, "b": 3, "c": 20}, "zz", 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Round{N: 1, Scores: tt.scores, WentOut: tt.wentOut}
			adj := AdjustedScoresForRound(ps, r, presets.SkyJo)
			if adj["a"] != tt.wantA {
				t.Errorf("adjusted a = %d, want %d", adj["a"], tt.wantA)
			}
			if r.Scores["a"] != tt.scores["a"] {
				t.Error("raw round score was modified")
			}
		})
	}
}

func TestTotalsForPresetRoutesSkyJoOnly(t *testing.T) {
	ps := players("a", "b")
	rounds := []Round{{N: 1, Scores: map[PlayerID]int{"a": 10, "b": 4}, WentOut: "a"}}

	if got := TotalsForPreset(ps, rounds, presets.SkyJo); got["a"] != 20 {
		t.Errorf("skyjo total a = %d, want 20", got["a"])
	}
	if got := TotalsForPreset(ps, rounds, presets.Custom); got["a"] != 10 {
		t.Errorf("custom total a = %d, want 10", got["a"])
	}
	if raw := TotalsByPlayer(ps, rounds); raw["a"] != 10 {
		t.Errorf("raw total a = %d, want 10", raw["a"])
	}
}

func TestValidatePhase10(t *testing.T) {
	ps := players("p1", "p2")

	ok := ValidateRoundScores(RawScores{"p1": 1, "p2": 0}, ps, presets.Phase10, DefaultBounds, "")
	if !ok.OK {
		t.Fatalf("expected valid, got %q", ok.Error)
	}

	bad := ValidateRoundScores(RawScores{"p1": 2, "p2": 0}, ps, presets.Phase10, DefaultBounds, "")
	if bad.OK {
		t.Fatal("expected phase 10 value 2 to be rejected")
	}
	if !strings.Contains(bad.Error, "Yes/No") {
		t.Errorf("error %q should mention Yes/No", bad.Error)
	}
	if bad.Err.Kind != KindPhase10YesNo {
		t.Errorf("kind = %q", bad.Err.Kind)
	}
}

func TestValidateHeartsTotals(t *testing.T) {
	ps := players("a", "b", "c", "d")

	normal := ValidateRoundScores(RawScores{"a": 10, "b": 8, "c": 5, "d": 3}, ps, presets.Hearts, DefaultBounds, "")
	if !normal.OK || normal.Warning != "" {
		t.Errorf("normal round: %+v", normal)
	}

	moon := ValidateRoundScores(RawScores{"a": 78, "b": 0, "c": 0, "d": 0}, ps, presets.Hearts, DefaultBounds, "")
	if !moon.OK || moon.Warning != "" {
		t.Errorf("moon round: %+v", moon)
	}

	odd := ValidateRoundScores(RawScores{"a": 20, "b": 20, "c": 20, "d": 20}, ps, presets.Hearts, DefaultBounds, "")
	if !odd.OK {
		t.Fatal("warning must not block")
	}
	for _, want := range []string{"Hearts round total is 80", "26", "78"} {
		if !strings.Contains(odd.Warning, want) {
			t.Errorf("warning %q missing %q", odd.Warning, want)
		}
	}
}

func TestValidateWholeNumbersAndBounds(t *testing.T) {
	ps := players("a", "b")

	tests := []struct {
		name   string
		scores RawScores
		kind   ErrorKind
	}{
		{"fraction", RawScores{"a": 1.5, "b": 0}, KindWholeNumber},
		{"nan", RawScores{"a": math.NaN(), "b": 0}, KindWholeNumber},
		{"inf", RawScores{"a": math.Inf(1), "b": 0}, KindWholeNumber},
		{"missing", RawScores{"a": 1}, KindWholeNumber},
		{"too high", RawScores{"a": 10001, "b": 0}, KindOutOfRange},
		{"too low", RawScores{"a": 0, "b": -10001}, KindOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := ValidateRoundScores(tt.scores, ps, presets.Custom, DefaultBounds, "")
			if v.OK {
				t.Fatal("expected failure")
			}
			if v.Err.Kind != tt.kind {
				t.Errorf("kind = %q, want %q", v.Err.Kind, tt.kind)
			}
		})
	}

	if v := ValidateRoundScores(RawScores{"a": 10000, "b": -10000}, ps, presets.Custom, DefaultBounds, ""); !v.OK {
		t.Errorf("bounds are inclusive: %q", v.Error)
	}
}

func TestNormalizeHeartsShootMoon(t *testing.T) {
	ps := players("a", "b", "c", "d")

	got, shooter := NormalizeHeartsShootMoon(ps, RawScores{"a": 0, "b": 26, "c": 0, "d": 0})
	if shooter != "b" {
		t.Fatalf("shooter = %q, want b", shooter)
	}
	want := RawScores{"a": 26, "b": 0, "c": 26, "d": 26}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("normalized = %v, want %v", got, want)
	}

	unchanged := RawScores{"a": 26, "b": 0, "c": 1, "d": 0}
	got, shooter = NormalizeHeartsShootMoon(ps, unchanged)
	if shooter != "" || !reflect.DeepEqual(got, unchanged) {
		t.Errorf("non-moon pattern changed: %v (%q)", got, shooter)
	}
}

func TestCheckSingleWinner(t *testing.T) {
	ps := players("a", "b", "c")
	if err := CheckSingleWinner(ps, RawScores{"a": 0, "b": 12, "c": 30}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	for _, scores := range []RawScores{{"a": 5, "b": 12, "c": 30}, {"a": 0, "b": 0, "c": 30}} {
		err := CheckSingleWinner(ps, scores)
		var ve *ValidationError
		if !errors.As(err, &ve) || ve.Kind != KindWinnerCount {
			t.Errorf("scores %v: expected winner count error, got %v", scores, err)
		}
	}
}

func TestPrepare(t *testing.T) {
	ps := players("a", "b", "c", "d")

	t.Run("hearts moon is normalized", func(t *testing.T) {
		out, err := Prepare(RulesFor(presets.Hearts), ps, Proposal{Scores: RawScores{"a": 26}}, DefaultBounds)
		if err != nil {
			t.Fatalf("Prepare: %v", err)
		}
		if out.Scores["a"] != 0 || out.Scores["d"] != 26 || out.Warning != "" {
			t.Errorf("unexpected %+v", out)
		}
	})

	t.Run("skyjo requires went-out", func(t *testing.T) {
		_, err := Prepare(RulesFor(presets.SkyJo), ps, Proposal{Scores: RawScores{"a": 3}}, DefaultBounds)
		var ve *ValidationError
		if !errors.As(err, &ve) || ve.Kind != KindMissingWentOut {
			t.Fatalf("expected missing went-out, got %v", err)
		}
		out, err := Prepare(RulesFor(presets.SkyJo), ps, Proposal{Scores: RawScores{"a": 3}, WentOut: "a"}, DefaultBounds)
		if err != nil || out.WentOut != "a" {
			t.Fatalf("got %+v, %v", out, err)
		}
	})

	t.Run("uno needs one zero", func(t *testing.T) {
		_, err := Prepare(RulesFor(presets.Uno), ps, Proposal{Scores: RawScores{"a": 1, "b": 2, "c": 3, "d": 4}}, DefaultBounds)
		if err == nil {
			t.Fatal("expected gate failure")
		}
		out, err := Prepare(RulesFor(presets.Crazy8s), ps, Proposal{Scores: RawScores{"a": 0, "b": 2, "c": 3, "d": 4}}, DefaultBounds)
		if err != nil || out.Scores["d"] != 4 {
			t.Fatalf("got %+v, %v", out, err)
		}
	})

	t.Run("ignores unknown ids and defaults missing", func(t *testing.T) {
		out, err := Prepare(RulesFor(presets.Custom), ps, Proposal{Scores: RawScores{"a": 4, "ghost": 9}}, DefaultBounds)
		if err != nil {
			t.Fatalf("Prepare: %v", err)
		}
		if len(out.Scores) != 4 || out.Scores["b"] != 0 {
			t.Errorf("unexpected scores %v", out.Scores)
		}
		if _, ok := out.Scores["ghost"]; ok {
			t.Error("unknown id leaked into scores")
		}
	})
}

func TestCoercePhase10(t *testing.T) {
	ps := players("a", "b", "c")
	got := CoercePhase10(ps, RawScores{"a": 5, "b": -3, "c": 0})
	if !reflect.DeepEqual(got, RawScores{"a": 1, "b": 0, "c": 0}) {
		t.Errorf("got %v", got)
	}
}

func TestSortEntries(t *testing.T) {
	entries := []Entry{{"a", 3}, {"b", 9}, {"c", 1}}
	if got := SortEntries(entries, presets.High); got[0].ID != "b" || got[2].ID != "c" {
		t.Errorf("high order %v", got)
	}
	if got := SortEntries(entries, presets.Low); got[0].ID != "c" {
		t.Errorf("low order %v", got)
	}
	if entries[0].ID != "a" {
		t.Error("input was reordered")
	}
}
