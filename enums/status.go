package enums

type EventStatus string

const (
	EventStatusPending  EventStatus = "PENDING"
	EventStatusApproved EventStatus = "APPROVED"
	EventStatusSkipped  EventStatus = "SKIPPED"
)

// IsTerminal reports whether the operator workflow is finished for the event.
func (s EventStatus) IsTerminal() bool {
	return s == EventStatusApproved || s == EventStatusSkipped
}
