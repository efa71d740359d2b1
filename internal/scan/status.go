package scan

// Status represents the lifecycle state of a scan as reported by the backend.
type Status string

// Scan lifecycle states. pending and running are non-terminal; completed,
// cancelled and failed are terminal.
const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusFailed    Status = "failed"
)

// Valid reports whether s is one of the known lifecycle states.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusRunning, StatusCompleted, StatusCancelled, StatusFailed:
		return true
	}
	return false
}

// Terminal reports whether no further progress can occur from s.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusCancelled, StatusFailed:
		return true
	}
	return false
}

func (s Status) String() string {
	return string(s)
}
