package matchers

import (
	"strconv"
	"strings"
)

// MatchesLeague reports whether the league is in the allowlist. An empty allowlist
// matches nothing.
func MatchesLeague(allowlist map[int64]bool, leagueID int64) bool {
	return allowlist[leagueID]
}

// ParseLeagueIDs reads a comma separated list of league ids, ignoring blanks and
// anything that is not a positive integer.
func ParseLeagueIDs(raw string) map[int64]bool {
	ids := make(map[int64]bool)
	for _, part := range strings.Split(raw, ",") {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil || id <= 0 {
			continue
		}
		ids[id] = true
	}
	return ids
}
