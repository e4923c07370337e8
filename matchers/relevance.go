package matchers

import (
	"strings"

	"github.com/kova98/footroll.api/models"
)

const lateGoalMinute = 85

var notableTerms = []string{"injury", "red card", "second yellow", "2nd yellow", "var"}

// IsNotable reports whether a raw fixture event deserves an operator notification:
// injuries, red cards, second yellows and VAR reviews at any minute, goals from
// the 85th minute on.
func IsNotable(event models.FixtureEvent) bool {
	text := strings.ToLower(event.Type + " " + event.Detail)
	for _, term := range notableTerms {
		if strings.Contains(text, term) {
			return true
		}
	}

	if strings.EqualFold(strings.TrimSpace(event.Type), "goal") {
		minute, ok := EventMinute(event)
		return ok && minute >= lateGoalMinute
	}

	return false
}

// EventMinute is elapsed plus non negative stoppage time. It is unknown when
// elapsed is absent.
func EventMinute(event models.FixtureEvent) (int, bool) {
	if event.Time.Elapsed == nil {
		return 0, false
	}
	minute := *event.Time.Elapsed
	if event.Time.Extra != nil && *event.Time.Extra > 0 {
		minute += *event.Time.Extra
	}
	return minute, true
}
