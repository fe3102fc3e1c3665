package interact

type Result int

const (
	Success Result = iota
	NotFound
	TimedOut
)

func (r Result) String() string {
	switch r {
	case Success:
		return "success"
	case NotFound:
		return "not_found"
	case TimedOut:
		return "timed_out"
	default:
		return "unknown"
	}
}

func (r Result) OK() bool {
	return r == Success
}
