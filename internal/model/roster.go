package model

// LoadStatus is the roster loading state.
type LoadStatus string

const (
	StatusIdle    LoadStatus = "idle"
	StatusLoading LoadStatus = "loading"
	StatusReady   LoadStatus = "ready"
	StatusFailed  LoadStatus = "failed"
)

// RosterSnapshot is the read model of the roster coordinator.
type RosterSnapshot struct {
	Roster    []Student    `json:"roster"`
	Filtered  []Student    `json:"filtered"`
	Filter    CourseFilter `json:"filter"`
	Status    LoadStatus   `json:"status"`
	LastError string       `json:"last_error,omitempty"`
}

// SessionSnapshot is the read model of the session coordinator.
// A nil Session means anonymous.
type SessionSnapshot struct {
	Session      *Identity `json:"session"`
	Initializing bool      `json:"initializing"`
}
