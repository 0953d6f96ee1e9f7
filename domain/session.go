package domain

// ConnState is the lifecycle state of the streaming session.
type ConnState int

const (
	Disconnected ConnState = iota
	Connecting
	Open
	Closed
)

func (s ConnState) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Open:
		return "open"
	case Closed:
		return "closed"
	default:
		return "disconnected"
	}
}
