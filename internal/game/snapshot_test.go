package game

import (
	"reflect"
	"testing"
	"time"

	"github.com/MJE43/scorekeeper-desktop/internal/presets"
)

func TestSnapshotRoundTripPreservesGame(t *testing.T) {
	c := testController()
	s := mustStart(t, c, presets.Spades, 100, "Ann", "Bob", "Cat", "Dan")
	s = mustAdd(t, c, s, 60, 10, 50, 10)
	s, err := c.ContinueRaiseTarget(s, 200)
	if err != nil {
		t.Fatal(err)
	}
	s = mustAdd(t, c, s, 1, 2, 3, 4)
	s.SortByTotal = true

	blob, err := Marshal(s)
	if err != nil {
		t.Fatal(err)
	}
	got, ok := Sanitize(blob, testEpoch)
	if !ok {
		t.Fatalf("sanitize rejected a valid snapshot")
	}

	if got.Mode != s.Mode || got.Lifecycle != s.Lifecycle || got.Target != 200 || got.InitialTarget != 100 {
		t.Errorf("header = %s %s %d %d", got.Mode, got.Lifecycle, got.Target, got.InitialTarget)
	}
	if !reflect.DeepEqual(got.Players, s.Players) || !reflect.DeepEqual(got.Teams, s.Teams) {
		t.Errorf("roster changed: %+v %+v", got.Players, got.Teams)
	}
	if len(got.Rounds) != 2 || !got.Rounds[1].Timestamp.Equal(s.Rounds[1].Timestamp) {
		t.Errorf("rounds = %+v", got.Rounds)
	}
	if !reflect.DeepEqual(Totals(got).Teams, Totals(s).Teams) {
		t.Errorf("totals differ after reload")
	}
	if len(got.Milestones) != 1 || got.Milestones[0].Target != 100 {
		t.Errorf("milestones = %+v", got.Milestones)
	}
	if !got.SortByTotal {
		t.Errorf("sort flag lost")
	}
	if got.BannerDismissed {
		t.Errorf("banner should start visible after load")
	}
}

func TestSanitizeRejectsStructurallyBrokenBlobs(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", `{{{`},
		{"array root", `[1,2,3]`},
		{"null", `null`},
		{"players not array", `{"mode":"playing","players":{},"rounds":[]}`},
		{"rounds missing", `{"mode":"playing","players":[]}`},
		{"rounds null", `{"mode":"playing","players":[],"rounds":null}`},
		{"playing with one player", `{"mode":"playing","players":[{"id":"a","name":"A"}],"rounds":[]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, ok := Sanitize([]byte(tt.raw), testEpoch)
			if ok {
				t.Fatalf("expected rejection")
			}
			if s.Mode != ModeSetup || len(s.Players) != 0 {
				t.Errorf("fallback state = %+v", s)
			}
		})
	}
}

func TestSanitizeFieldFallbacks(t *testing.T) {
	raw := `{
		"mode": "bogus",
		"presetKey": "poker",
		"target": "lots",
		"winMode": "low",
		"players": [{"id": 7, "name": "Ann"}, {"id": "b", "name": "Bob"}, {"id": "b", "name": "Dup"}, 5],
		"teams": "nope",
		"rounds": [
			{"n": 9, "scores": {"7": 3, "b": "x"}, "ts": 1700000000000},
			{"scores": null},
			"junk"
		],
		"winnerId": "ghost",
		"lifecycle": "weird",
		"sortByTotal": "yes",
		"spadesPartnerIndex": 9
	}`
	s, ok := Sanitize([]byte(raw), testEpoch)
	if !ok {
		t.Fatalf("sanitize rejected a recoverable blob")
	}
	if s.Mode != ModeSetup {
		t.Errorf("mode = %s", s.Mode)
	}
	if s.PresetKey != presets.Custom || s.Target != DefaultTarget {
		t.Errorf("preset/target = %s/%d", s.PresetKey, s.Target)
	}
	if s.WinDirection != presets.Low {
		t.Errorf("legacy winMode ignored")
	}
	if len(s.Players) != 2 || s.Players[0].ID != "7" {
		t.Errorf("players = %+v", s.Players)
	}
	if len(s.Rounds) != 3 {
		t.Fatalf("rounds = %d", len(s.Rounds))
	}
	for i, r := range s.Rounds {
		if r.N != i+1 {
			t.Errorf("round %d numbered %d", i, r.N)
		}
	}
	if s.Rounds[0].Scores["7"] != 3 || s.Rounds[0].Scores["b"] != 0 {
		t.Errorf("round scores = %v", s.Rounds[0].Scores)
	}
	if !s.Rounds[0].Timestamp.Equal(time.UnixMilli(1700000000000)) {
		t.Errorf("legacy ts = %v", s.Rounds[0].Timestamp)
	}
	if !s.Rounds[1].Timestamp.Equal(testEpoch) {
		t.Errorf("missing timestamp should default to now")
	}
	if s.WinnerID != "" || s.Lifecycle != LifecycleInProgress || s.SortByTotal || s.SpadesPartnerIndex != DefaultPartnerIndex {
		t.Errorf("scalar fallbacks: %q %s %v %d", s.WinnerID, s.Lifecycle, s.SortByTotal, s.SpadesPartnerIndex)
	}
	if s.Teams != nil {
		t.Errorf("teams = %+v", s.Teams)
	}
}

func TestSanitizeFinishedWithoutWinnerReopens(t *testing.T) {
	raw := `{"mode":"finished","players":[{"id":"a","name":"A"},{"id":"b","name":"B"}],"rounds":[],"winnerId":null}`
	s, ok := Sanitize([]byte(raw), testEpoch)
	if !ok {
		t.Fatal("rejected")
	}
	if s.Mode != ModePlaying {
		t.Errorf("mode = %s, want playing", s.Mode)
	}
}

func TestSanitizeLegacyFinishedIsCompleted(t *testing.T) {
	raw := `{"mode":"finished","presetKey":"uno","target":10,"players":[{"id":"a","name":"A"},{"id":"b","name":"B"}],
		"rounds":[{"n":1,"scores":{"a":0,"b":12}}],"winnerId":"b"}`
	s, ok := Sanitize([]byte(raw), testEpoch)
	if !ok {
		t.Fatal("rejected")
	}
	if s.WinnerID != "b" || s.Lifecycle != LifecycleCompleted {
		t.Errorf("winner/lifecycle = %q/%s", s.WinnerID, s.Lifecycle)
	}
	if s.LastRoundScores["b"] != 12 {
		t.Errorf("last round scores not derived: %v", s.LastRoundScores)
	}
}

func TestSanitizeRebuildsBrokenTeams(t *testing.T) {
	raw := `{"mode":"playing","presetKey":"spades","players":[
		{"id":"a","name":"A"},{"id":"b","name":"B"},{"id":"c","name":"C"},{"id":"d","name":"D"}],
		"teams":[{"id":"teamA","name":"x","members":["a","zz"]}],"rounds":[]}`
	s, ok := Sanitize([]byte(raw), testEpoch)
	if !ok {
		t.Fatal("rejected")
	}
	if len(s.Teams) != 2 || s.Teams[0].Name != "A + C" {
		t.Errorf("teams = %+v", s.Teams)
	}
}

func TestSavedMode(t *testing.T) {
	tests := map[string]Mode{
		`{"mode":"playing"}`:  ModePlaying,
		`{"mode":"finished"}`: ModeFinished,
		`{"mode":"setup"}`:    ModeSetup,
		`{"mode":3}`:          ModeSetup,
		`garbage`:             ModeSetup,
	}
	for raw, want := range tests {
		if got := SavedMode([]byte(raw)); got != want {
			t.Errorf("SavedMode(%s) = %s, want %s", raw, got, want)
		}
	}
}
