package enums

// ActionKind is the first segment of a callback token ("action:eventId[:resultId]").
type ActionKind string

const (
	ActionUnknown     ActionKind = ""
	ActionSearchVideo ActionKind = "search-video"
	ActionSearchPost  ActionKind = "search-post"
	ActionMoreVideo   ActionKind = "more-video"
	ActionMorePost    ActionKind = "more-post"
	ActionPickVideo   ActionKind = "pick-video"
	ActionPickPost    ActionKind = "pick-post"
	ActionBack        ActionKind = "back"
	ActionSkip        ActionKind = "skip"
)

var actionKinds = map[string]ActionKind{
	string(ActionSearchVideo): ActionSearchVideo,
	string(ActionSearchPost):  ActionSearchPost,
	string(ActionMoreVideo):   ActionMoreVideo,
	string(ActionMorePost):    ActionMorePost,
	string(ActionPickVideo):   ActionPickVideo,
	string(ActionPickPost):    ActionPickPost,
	string(ActionBack):        ActionBack,
	string(ActionSkip):        ActionSkip,
}

func ParseActionKind(s string) ActionKind {
	if kind, ok := actionKinds[s]; ok {
		return kind
	}
	return ActionUnknown
}

// Provider returns the search provider an action operates on, if any.
func (k ActionKind) Provider() Provider {
	switch k {
	case ActionSearchVideo, ActionMoreVideo, ActionPickVideo:
		return ProviderVideo
	case ActionSearchPost, ActionMorePost, ActionPickPost:
		return ProviderPost
	case ActionUnknown, ActionBack, ActionSkip:
		return ProviderInvalid
	}
	return ProviderInvalid
}
