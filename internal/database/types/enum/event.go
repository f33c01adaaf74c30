package enum

// EventType identifies the domain event a badge callback reacts to.
type EventType int

const (
	EventTypeVote EventType = iota
	EventTypeAccept
	EventTypeReply
	EventTypeNewTopic
	EventTypeEdit
)

// String returns the event name used in logs.
func (e EventType) String() string {
	switch e {
	case EventTypeVote:
		return "vote"
	case EventTypeAccept:
		return "accept"
	case EventTypeReply:
		return "reply"
	case EventTypeNewTopic:
		return "new_topic"
	case EventTypeEdit:
		return "edit"
	default:
		return "unknown"
	}
}
