package game

import "github.com/MJE43/scorekeeper-desktop/internal/scoring"

// BuildTeams pairs player 1 with the player at partnerIndex and the remaining
// two form the second team. Only four-player rosters form teams.
func BuildTeams(players []scoring.Player, partnerIndex int) []scoring.Team {
	if len(players) != 4 {
		return nil
	}
	if partnerIndex < 1 || partnerIndex > 3 {
		partnerIndex = DefaultPartnerIndex
	}
	first, partner := players[0], players[partnerIndex]
	var rest []scoring.Player
	for i, p := range players {
		if i != 0 && i != partnerIndex {
			rest = append(rest, p)
		}
	}
	return []scoring.Team{
		{ID: teamAID, Name: first.Name + " + " + partner.Name, Members: [2]scoring.PlayerID{first.ID, partner.ID}},
		{ID: teamBID, Name: rest[0].Name + " + " + rest[1].Name, Members: [2]scoring.PlayerID{rest[0].ID, rest[1].ID}},
	}
}

func teamsFor(s State) []scoring.Team {
	if !s.Preset().FormsTeams {
		return nil
	}
	return BuildTeams(s.Players, s.SpadesPartnerIndex)
}

// TeamOf returns the team containing pid.
func (s State) TeamOf(pid scoring.PlayerID) (scoring.Team, bool) {
	for _, t := range s.Teams {
		if t.Members[0] == pid || t.Members[1] == pid {
			return t, true
		}
	}
	return scoring.Team{}, false
}
