package game

// TimerStatus is the state of a room's countdown.
type TimerStatus int

const (
	TimerStopped TimerStatus = iota
	TimerRunning
)

func (s TimerStatus) String() string {
	switch s {
	case TimerStopped:
		return "stopped"
	case TimerRunning:
		return "running"
	default:
		return "unknown"
	}
}
