package call

import "fmt"

// State is the lifecycle position of one placed call.
type State int

const (
	Pending State = iota
	Initiated
	AwaitingTranscript
	Completed
	TimedOut
	Failed
)

func (s State) String() string {
	switch s {
	case Pending:
		return "PENDING"
	case Initiated:
		return "INITIATED"
	case AwaitingTranscript:
		return "AWAITING_TRANSCRIPT"
	case Completed:
		return "COMPLETED"
	case TimedOut:
		return "TIMED_OUT"
	case Failed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// Terminal reports whether no further transition can follow s.
func (s State) Terminal() bool {
	return s == Completed || s == TimedOut || s == Failed
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(text []byte) error {
	for candidate := Pending; candidate <= Failed; candidate++ {
		if candidate.String() == string(text) {
			*s = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown call state %q", text)
}
