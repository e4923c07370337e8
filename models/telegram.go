package models

// Keyboard is a transport independent inline keyboard: rows of buttons.
type Keyboard [][]Button

// Button carries either a callback action or a URL, never both.
type Button struct {
	Label  string
	Action string
	URL    string
}

func ActionButton(label, action string) Button {
	return Button{Label: label, Action: action}
}

func LinkButton(label, url string) Button {
	return Button{Label: label, URL: url}
}

// SentMessage identifies a posted message for later edits.
type SentMessage struct {
	ChatID    int64
	MessageID int
}

// Callback is an inbound button press.
type Callback struct {
	ID     string
	Data   string
	ChatID int64
	// MessageID is zero when the pressed message is unknown.
	MessageID int
}
