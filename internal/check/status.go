package check

// Status is a plugin state. Its value is the process exit code consumed by
// Nagios-compatible monitoring systems.
type Status int

const (
	OK       Status = 0
	Warning  Status = 1
	Critical Status = 2
	Unknown  Status = 3
)

func (s Status) String() string {
	switch s {
	case OK:
		return "OK"
	case Warning:
		return "WARNING"
	case Critical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// ExitCode returns the exit code for the status
func (s Status) ExitCode() int {
	if s < OK || s > Unknown {
		return int(Unknown)
	}
	return int(s)
}

// worst returns the more severe of two states; UNKNOWN outranks everything
func worst(a, b Status) Status {
	if b > a {
		return b
	}
	return a
}
