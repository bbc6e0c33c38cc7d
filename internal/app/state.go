package app

// State is the lifecycle position of one participant connection.
type State int32

const (
	StateConnecting State = iota
	StateJoined
	StateLeaving
	StateKicked
	StateDisconnected
	StateGone
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateJoined:
		return "joined"
	case StateLeaving:
		return "leaving"
	case StateKicked:
		return "kicked"
	case StateDisconnected:
		return "disconnected"
	case StateGone:
		return "gone"
	default:
		return "unknown"
	}
}
