package format

// State is the answer to a formatting query.
type State int

const (
	// Unknown means the query has no answer at the current selection.
	Unknown State = iota
	// Off means the format is not applied.
	Off
	// On means the format is applied.
	On
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case Off:
		return "off"
	case On:
		return "on"
	default:
		return "unknown"
	}
}

// Bool returns the state as a boolean and whether it is known.
func (s State) Bool() (value, known bool) {
	return s == On, s != Unknown
}

func stateOf(b bool) State {
	if b {
		return On
	}
	return Off
}
