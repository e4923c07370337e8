package queries

import (
	"strings"

	"github.com/kova98/footroll.api/data"
	"github.com/kova98/footroll.api/matchers"
)

// MaxQueries caps the number of queries issued per initial search.
const MaxQueries = 2

const (
	videoNoise = "-fifa -efootball -fc24 -pes -betting -tips"
	postScope  = "(subreddit:soccer OR subreddit:footballhighlights)"
)

// BuildVideoQueries returns the most specific video query first (with player and
// minute) followed by a broader fallback.
func BuildVideoQueries(e data.MatchEvent) []string {
	detail := eventDetail(e)
	return compose(
		[]string{quote(e.Home), quote(e.Away), e.League, detail, e.Player, e.MinuteLabel, "highlights", videoNoise},
		[]string{quote(e.Home), quote(e.Away), detail, "official highlights", videoNoise},
	)
}

// BuildPostQueries returns discussion post queries restricted to football subreddits.
func BuildPostQueries(e data.MatchEvent) []string {
	detail := eventDetail(e)
	return compose(
		[]string{quote(e.Home), quote(e.Away), detail, e.Player, postScope},
		[]string{quote(e.Home), quote(e.Away), e.League, "highlights", postScope},
	)
}

func compose(parts ...[]string) []string {
	out := make([]string, 0, MaxQueries)
	for _, p := range parts {
		q := matchers.CollapseSpaces(strings.Join(p, " "))
		if q == "" {
			continue
		}
		out = append(out, q)
		if len(out) == MaxQueries {
			break
		}
	}
	return out
}

func eventDetail(e data.MatchEvent) string {
	if d := strings.TrimSpace(e.EventDetail); d != "" {
		return d
	}
	return strings.TrimSpace(e.EventType)
}

func quote(s string) string {
	s = matchers.CollapseSpaces(s)
	if s == "" {
		return ""
	}
	return `"` + s + `"`
}
