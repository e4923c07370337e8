package tracker

import (
	"strconv"
	"strings"

	"github.com/kova98/footroll.api/enums"
)

// Action is a parsed callback token "action:eventId[:resultId]". For more-* actions
// the third segment is the requested page.
type Action struct {
	Kind     enums.ActionKind
	EventID  string
	ResultID string
}

func ParseAction(token string) Action {
	parts := strings.SplitN(strings.TrimSpace(token), ":", 3)

	a := Action{Kind: enums.ParseActionKind(parts[0])}
	if len(parts) > 1 {
		a.EventID = parts[1]
	}
	if len(parts) > 2 {
		a.ResultID = parts[2]
	}
	if a.EventID == "" {
		a.Kind = enums.ActionUnknown
	}
	return a
}

func (a Action) Token() string {
	if a.ResultID == "" {
		return string(a.Kind) + ":" + a.EventID
	}
	return string(a.Kind) + ":" + a.EventID + ":" + a.ResultID
}

// Page is the zero based page requested by a more-* action.
func (a Action) Page() int {
	page, err := strconv.Atoi(a.ResultID)
	if err != nil || page < 0 {
		return 0
	}
	return page
}

func searchAction(provider enums.Provider) enums.ActionKind {
	if provider == enums.ProviderPost {
		return enums.ActionSearchPost
	}
	return enums.ActionSearchVideo
}

func moreAction(provider enums.Provider) enums.ActionKind {
	if provider == enums.ProviderPost {
		return enums.ActionMorePost
	}
	return enums.ActionMoreVideo
}

func pickAction(provider enums.Provider) enums.ActionKind {
	if provider == enums.ProviderPost {
		return enums.ActionPickPost
	}
	return enums.ActionPickVideo
}

func token(kind enums.ActionKind, eventID string, resultID ...string) string {
	a := Action{Kind: kind, EventID: eventID}
	if len(resultID) > 0 {
		a.ResultID = resultID[0]
	}
	return a.Token()
}
