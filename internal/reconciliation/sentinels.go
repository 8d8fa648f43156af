package reconciliation

import "regexp"

// multiTeamPattern matches Basketball-Reference's "2TM", "3TM", ... rows that
// sum a traded player's stints.
var multiTeamPattern = regexp.MustCompile(`^\d+TM$`)

// combinedTeamCodes are the legacy sentinel codes for combined-team rows.
var combinedTeamCodes = map[string]bool{
	"TOT": true,
	"2TM": true,
	"3TM": true,
}

// IsCombinedTeam reports whether team is a synthetic aggregate of several stints
// rather than a real franchise.
func IsCombinedTeam(team string) bool {
	team = NormalizeTeam(team)
	return combinedTeamCodes[team] || multiTeamPattern.MatchString(team)
}
