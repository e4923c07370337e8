package ranking

import (
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/kova98/footroll.api/data"
	"github.com/kova98/footroll.api/matchers"
)

const (
	bothTeamsBonus   = 40
	oneTeamBonus     = 18
	leagueTokenBonus = 4
	detailTokenBonus = 3
	genericBonus     = 2
	shortTitlePen    = 8
	longTitlePen     = 5
	spamPenalty      = 25
	recentDayBonus   = 8
	recentDaysBonus  = 4

	shortTitleRunes = 12
	longTitleRunes  = 140
	minTokenLen     = 3
)

var DefaultSpamKeywords = []string{
	"fifa", "efootball", "fc24", "fc25", "pes", "gameplay", "simulation",
	"betting", "tips", "prediction", "odds",
}

var genericTokens = []string{"highlights", "goal", "red", "card", "injury", "var"}

type Ranker struct {
	spam []string
}

// NewRanker builds a ranker with the given spam keywords, falling back to
// DefaultSpamKeywords when none are configured.
func NewRanker(spam []string) *Ranker {
	cleaned := make([]string, 0, len(spam))
	for _, s := range spam {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			cleaned = append(cleaned, s)
		}
	}
	if len(cleaned) == 0 {
		cleaned = DefaultSpamKeywords
	}
	return &Ranker{spam: cleaned}
}

// Score rates how likely the video title is actual footage of the event.
func (r *Ranker) Score(result data.SearchResult, event data.MatchEvent, now time.Time) int {
	title := strings.ToLower(result.Title)
	score := 0

	home := teamMatches(title, event.Home)
	away := teamMatches(title, event.Away)
	switch {
	case home && away:
		score += bothTeamsBonus
	case home || away:
		score += oneTeamBonus
	}

	score += leagueTokenBonus * countTokens(title, distinctTokens(event.League))
	score += detailTokenBonus * countTokens(title, distinctTokens(event.EventDetail+" "+event.EventType))
	score += genericBonus * countTokens(title, genericTokens)

	length := utf8.RuneCountInString(result.Title)
	if length < shortTitleRunes {
		score -= shortTitlePen
	}
	if length > longTitleRunes {
		score -= longTitlePen
	}

	score -= spamPenalty * countTokens(title, r.spam)

	if !result.PublishedAt.IsZero() {
		age := now.Sub(result.PublishedAt)
		switch {
		case age < 0:
		case age <= 24*time.Hour:
			score += recentDayBonus
		case age <= 72*time.Hour:
			score += recentDaysBonus
		}
	}

	return score
}

// Rank returns a scored copy of results ordered by score, newest first on ties.
func (r *Ranker) Rank(results []data.SearchResult, event data.MatchEvent, now time.Time) []data.SearchResult {
	ranked := make([]data.SearchResult, len(results))
	for i, res := range results {
		res.Score = r.Score(res, event, now)
		ranked[i] = res
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].PublishedAt.After(ranked[j].PublishedAt)
	})

	return ranked
}

// teamMatches requires every significant token of the team name to appear as a
// word in the title. Names made only of short tokens must match as a whole.
func teamMatches(title, team string) bool {
	tokens := distinctTokens(team)
	if len(tokens) == 0 {
		name := strings.ToLower(matchers.CollapseSpaces(team))
		return name != "" && matchers.MatchesWholeWord(title, name)
	}
	return countTokens(title, tokens) == len(tokens)
}

func distinctTokens(text string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, t := range matchers.Tokens(text) {
		if utf8.RuneCountInString(t) < minTokenLen || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

func countTokens(title string, tokens []string) int {
	n := 0
	for _, t := range tokens {
		if matchers.MatchesWholeWord(title, t) {
			n++
		}
	}
	return n
}
