package core

// Action represents a semantic page action, abstracted from physical key presses
// and mouse clicks.
type Action int

const (
	ActionNone    Action = iota
	ActionUp             // Up arrow, W, K, D-pad up
	ActionDown           // Down arrow, S, J, D-pad down
	ActionLeft           // Left arrow, A, H, D-pad left
	ActionRight          // Right arrow, D, L, D-pad right
	ActionConnect        // C - connect wallet
	ActionStart          // Enter, Space - pay and start
	ActionRetry          // R - pay again after game over
	ActionQuit           // Q, Ctrl+C - exit
)

// String returns a human-readable name for the action.
func (a Action) String() string {
	switch a {
	case ActionNone:
		return "None"
	case ActionUp:
		return "Up"
	case ActionDown:
		return "Down"
	case ActionLeft:
		return "Left"
	case ActionRight:
		return "Right"
	case ActionConnect:
		return "Connect"
	case ActionStart:
		return "Start"
	case ActionRetry:
		return "Retry"
	case ActionQuit:
		return "Quit"
	default:
		return "Unknown"
	}
}

// Vec returns the movement vector for a directional action.
// The second result is false for non-directional actions.
func (a Action) Vec() (Vec, bool) {
	switch a {
	case ActionUp:
		return Vec{X: 0, Y: -1}, true
	case ActionDown:
		return Vec{X: 0, Y: 1}, true
	case ActionLeft:
		return Vec{X: -1, Y: 0}, true
	case ActionRight:
		return Vec{X: 1, Y: 0}, true
	}
	return Vec{}, false
}
