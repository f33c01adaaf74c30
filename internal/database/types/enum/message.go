package enum

// MessageSeverity classifies a user notification.
type MessageSeverity int

const (
	MessageSeverityInfo MessageSeverity = iota
	MessageSeverityError
)

// String returns the lowercase name of the severity.
func (s MessageSeverity) String() string {
	switch s {
	case MessageSeverityInfo:
		return "info"
	case MessageSeverityError:
		return "error"
	default:
		return "unknown"
	}
}
