package server

// State is the connection state of the listener.
type State int

const (
	StateClosed State = iota
	StateListening
	StateHandshaking
	StateOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "CLOSED"
	case StateListening:
		return "LISTENING"
	case StateHandshaking:
		return "HANDSHAKING"
	case StateOpen:
		return "OPEN"
	default:
		return "UNKNOWN"
	}
}
