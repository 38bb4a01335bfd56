package game

import (
	"encoding/json"
	"math"
	"strconv"
	"time"

	"github.com/MJE43/scorekeeper-desktop/internal/presets"
	"github.com/MJE43/scorekeeper-desktop/internal/scoring"
)

// StorageKey is the fixed key of the persisted snapshot.
const StorageKey = "scorekeeper.v2"

const snapshotVersion = 2

type snapshotPlayer struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type snapshotTeam struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Members []string `json:"members"`
}

type snapshotRound struct {
	N         int            `json:"n"`
	Scores    map[string]int `json:"scores"`
	Timestamp string         `json:"timestamp"`
	WentOut   *string        `json:"skyjoWentOutPlayerId"`
}

type snapshotMilestone struct {
	WinnerID  string `json:"winnerId"`
	RoundN    int    `json:"roundN"`
	Target    int    `json:"target"`
	Timestamp string `json:"timestamp"`
}

type snapshot struct {
	Version               int                 `json:"version"`
	GameID                string              `json:"gameId,omitempty"`
	Mode                  string              `json:"mode"`
	PresetKey             string              `json:"presetKey"`
	Target                int                 `json:"target"`
	InitialTarget         int                 `json:"initialTarget"`
	WinDirection          string              `json:"winDirection"`
	Players               []snapshotPlayer    `json:"players"`
	Teams                 []snapshotTeam      `json:"teams"`
	Rounds                []snapshotRound     `json:"rounds"`
	WinnerID              *string             `json:"winnerId"`
	Lifecycle             string              `json:"lifecycle"`
	WinnerMilestones      []snapshotMilestone `json:"winnerMilestones"`
	SortByTotal           bool                `json:"sortByTotal"`
	SpadesPartnerIndex    int                 `json:"spadesPartnerIndex"`
	PresetNote            string              `json:"presetNote"`
	SkyjoWentOutSelection *string             `json:"skyjoWentOutSelection"`
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Marshal encodes the persistent part of s. Banner, scratch round and
// history-edit selection are not saved.
func Marshal(s State) ([]byte, error) {
	snap := snapshot{
		Version:               snapshotVersion,
		GameID:                s.GameID,
		Mode:                  string(s.Mode),
		PresetKey:             string(s.PresetKey),
		Target:                s.Target,
		InitialTarget:         s.InitialTarget,
		WinDirection:          string(s.WinDirection),
		Players:               make([]snapshotPlayer, 0, len(s.Players)),
		Rounds:                make([]snapshotRound, 0, len(s.Rounds)),
		WinnerID:              optional(s.WinnerID),
		Lifecycle:             string(s.Lifecycle),
		WinnerMilestones:      make([]snapshotMilestone, 0, len(s.Milestones)),
		SortByTotal:           s.SortByTotal,
		SpadesPartnerIndex:    s.SpadesPartnerIndex,
		PresetNote:            s.PresetNote,
		SkyjoWentOutSelection: optional(string(s.SkyjoWentOutSelection)),
	}
	for _, p := range s.Players {
		snap.Players = append(snap.Players, snapshotPlayer{ID: string(p.ID), Name: p.Name})
	}
	if s.Teams != nil {
		snap.Teams = make([]snapshotTeam, 0, len(s.Teams))
		for _, t := range s.Teams {
			snap.Teams = append(snap.Teams, snapshotTeam{
				ID: t.ID, Name: t.Name, Members: []string{string(t.Members[0]), string(t.Members[1])},
			})
		}
	}
	for _, r := range s.Rounds {
		scores := make(map[string]int, len(r.Scores))
		for k, v := range r.Scores {
			scores[string(k)] = v
		}
		snap.Rounds = append(snap.Rounds, snapshotRound{
			N:         r.N,
			Scores:    scores,
			Timestamp: r.Timestamp.UTC().Format(time.RFC3339Nano),
			WentOut:   optional(string(r.WentOut)),
		})
	}
	for _, m := range s.Milestones {
		snap.WinnerMilestones = append(snap.WinnerMilestones, snapshotMilestone{
			WinnerID:  m.WinnerID,
			RoundN:    m.RoundN,
			Target:    m.Target,
			Timestamp: m.Timestamp.UTC().Format(time.RFC3339Nano),
		})
	}
	return json.Marshal(snap)
}

// SavedMode peeks at the mode of a stored blob without sanitizing it.
func SavedMode(raw []byte) Mode {
	var head struct {
		Mode string `json:"mode"`
	}
	if json.Unmarshal(raw, &head) != nil {
		return ModeSetup
	}
	switch Mode(head.Mode) {
	case ModePlaying, ModeFinished:
		return Mode(head.Mode)
	}
	return ModeSetup
}

// Sanitize decodes a stored blob field by field. Each field falls back to a
// safe default when missing or of the wrong type. A blob without player and
// round arrays, or an active game with fewer than two players, yields a fresh
// setup state and false. Sanitize never panics on malformed input.
func Sanitize(raw []byte, now time.Time) (State, bool) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
		return NewState(), false
	}
	rawPlayers, ok := asArray(obj["players"])
	if !ok {
		return NewState(), false
	}
	rawRounds, ok := asArray(obj["rounds"])
	if !ok {
		return NewState(), false
	}

	s := NewState()
	s.GameID, _ = asString(obj["gameId"])

	switch m, _ := asString(obj["mode"]); Mode(m) {
	case ModePlaying, ModeFinished:
		s.Mode = Mode(m)
	}

	key, _ := asString(obj["presetKey"])
	s.PresetKey = presets.Normalize(presets.Key(key))
	s.PresetNote = presets.Lookup(s.PresetKey).Note
	if note, ok := asString(obj["presetNote"]); ok {
		s.PresetNote = note
	}

	if t, ok := asInt(obj["target"]); ok && t > 0 {
		s.Target = t
	}
	s.InitialTarget = s.Target
	if t, ok := asInt(obj["initialTarget"]); ok && t > 0 {
		s.InitialTarget = t
	}

	dir, ok := asString(obj["winDirection"])
	if !ok {
		// Snapshots written before the rename used winMode.
		dir, _ = asString(obj["winMode"])
	}
	s.WinDirection = presets.ParseWinDirection(dir)

	seen := map[scoring.PlayerID]bool{}
	for _, rp := range rawPlayers {
		var p map[string]json.RawMessage
		if json.Unmarshal(rp, &p) != nil || p == nil {
			continue
		}
		id, ok := asID(p["id"])
		if !ok || seen[scoring.PlayerID(id)] {
			continue
		}
		name, _ := asString(p["name"])
		seen[scoring.PlayerID(id)] = true
		s.Players = append(s.Players, scoring.Player{ID: scoring.PlayerID(id), Name: name})
	}
	if s.Mode != ModeSetup && len(s.Players) < MinPlayers {
		return NewState(), false
	}

	if idx, ok := asInt(obj["spadesPartnerIndex"]); ok && idx >= 1 && idx <= 3 {
		s.SpadesPartnerIndex = idx
	}
	if s.Preset().FormsTeams {
		s.Teams = sanitizeTeams(obj["teams"], seen)
		if s.Teams == nil {
			s.Teams = teamsFor(s)
		}
	}

	for _, rr := range rawRounds {
		s.Rounds = append(s.Rounds, sanitizeRound(rr, seen, now))
	}
	for i := range s.Rounds {
		s.Rounds[i].N = i + 1
	}

	if ms, ok := asArray(obj["winnerMilestones"]); ok {
		for _, rm := range ms {
			if m, ok := sanitizeMilestone(rm, now); ok {
				s.Milestones = append(s.Milestones, m)
			}
		}
	}

	if w, ok := asString(obj["winnerId"]); ok && s.hasEntity(w) {
		s.WinnerID = w
	}
	if s.Mode == ModeFinished && s.WinnerID == "" {
		s.Mode = ModePlaying
	}
	if s.Mode != ModeFinished {
		s.WinnerID = ""
	}

	switch l, _ := asString(obj["lifecycle"]); Lifecycle(l) {
	case LifecycleInProgress, LifecycleCompleted, LifecycleExtended, LifecycleFreePlay:
		s.Lifecycle = Lifecycle(l)
	default:
		if s.Mode == ModeFinished || len(s.Milestones) > 0 {
			s.Lifecycle = LifecycleCompleted
		}
	}

	s.SortByTotal, _ = asBool(obj["sortByTotal"])
	if sel, ok := asString(obj["skyjoWentOutSelection"]); ok && s.PresetKey == presets.SkyJo && seen[scoring.PlayerID(sel)] {
		s.SkyjoWentOutSelection = scoring.PlayerID(sel)
	}

	s.refreshLastRoundScores()
	s.zeroCurrentRound()
	s.BannerDismissed = false
	return s, true
}

func sanitizeTeams(raw json.RawMessage, players map[scoring.PlayerID]bool) []scoring.Team {
	items, ok := asArray(raw)
	if !ok || len(items) != 2 {
		return nil
	}
	teams := make([]scoring.Team, 0, 2)
	for _, it := range items {
		var t map[string]json.RawMessage
		if json.Unmarshal(it, &t) != nil || t == nil {
			return nil
		}
		id, _ := asString(t["id"])
		name, _ := asString(t["name"])
		members, ok := asArray(t["members"])
		if id == "" || !ok || len(members) != 2 {
			return nil
		}
		var team scoring.Team
		team.ID, team.Name = id, name
		for i, m := range members {
			mid, ok := asID(m)
			if !ok || !players[scoring.PlayerID(mid)] {
				return nil
			}
			team.Members[i] = scoring.PlayerID(mid)
		}
		teams = append(teams, team)
	}
	return teams
}

func sanitizeRound(raw json.RawMessage, players map[scoring.PlayerID]bool, now time.Time) scoring.Round {
	r := scoring.Round{Scores: map[scoring.PlayerID]int{}, Timestamp: now}
	var obj map[string]json.RawMessage
	if json.Unmarshal(raw, &obj) != nil || obj == nil {
		return r
	}
	var scores map[string]json.RawMessage
	if json.Unmarshal(obj["scores"], &scores) == nil {
		for k, v := range scores {
			if n, ok := asInt(v); ok {
				r.Scores[scoring.PlayerID(k)] = n
			} else {
				r.Scores[scoring.PlayerID(k)] = 0
			}
		}
	}
	if ts, ok := asTime(obj["timestamp"]); ok {
		r.Timestamp = ts
	} else if ts, ok := asTime(obj["ts"]); ok {
		r.Timestamp = ts
	}
	if w, ok := asString(obj["skyjoWentOutPlayerId"]); ok && players[scoring.PlayerID(w)] {
		r.WentOut = scoring.PlayerID(w)
	}
	return r
}

func sanitizeMilestone(raw json.RawMessage, now time.Time) (WinnerMilestone, bool) {
	var obj map[string]json.RawMessage
	if json.Unmarshal(raw, &obj) != nil || obj == nil {
		return WinnerMilestone{}, false
	}
	w, ok := asString(obj["winnerId"])
	if !ok || w == "" {
		return WinnerMilestone{}, false
	}
	n, ok := asInt(obj["roundN"])
	if !ok || n < 1 {
		return WinnerMilestone{}, false
	}
	target, ok := asInt(obj["target"])
	if !ok || target < 1 {
		return WinnerMilestone{}, false
	}
	m := WinnerMilestone{WinnerID: w, RoundN: n, Target: target, Timestamp: now}
	if ts, ok := asTime(obj["timestamp"]); ok {
		m.Timestamp = ts
	}
	return m, true
}

// absent reports a missing field or an explicit null.
func absent(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}

func asArray(raw json.RawMessage) ([]json.RawMessage, bool) {
	var out []json.RawMessage
	if absent(raw) || json.Unmarshal(raw, &out) != nil || out == nil {
		return nil, false
	}
	return out, true
}

func asString(raw json.RawMessage) (string, bool) {
	var s string
	if absent(raw) || json.Unmarshal(raw, &s) != nil {
		return "", false
	}
	return s, true
}

// asID accepts string ids and numeric ids written by older builds.
func asID(raw json.RawMessage) (string, bool) {
	if s, ok := asString(raw); ok {
		return s, s != ""
	}
	var f float64
	if absent(raw) || json.Unmarshal(raw, &f) != nil {
		return "", false
	}
	return strconv.FormatFloat(f, 'f', -1, 64), true
}

// asInt accepts finite numbers and truncates toward zero.
func asInt(raw json.RawMessage) (int, bool) {
	var f float64
	if absent(raw) || json.Unmarshal(raw, &f) != nil {
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) > math.MaxInt32 {
		return 0, false
	}
	return int(math.Trunc(f)), true
}

func asBool(raw json.RawMessage) (bool, bool) {
	var b bool
	if absent(raw) || json.Unmarshal(raw, &b) != nil {
		return false, false
	}
	return b, true
}

// asTime accepts RFC 3339 strings or Unix milliseconds.
func asTime(raw json.RawMessage) (time.Time, bool) {
	if s, ok := asString(raw); ok {
		t, err := time.Parse(time.RFC3339Nano, s)
		return t, err == nil
	}
	if ms, ok := asInt64(raw); ok && ms > 0 {
		return time.UnixMilli(ms), true
	}
	return time.Time{}, false
}

func asInt64(raw json.RawMessage) (int64, bool) {
	var f float64
	if absent(raw) || json.Unmarshal(raw, &f) != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int64(f), true
}
