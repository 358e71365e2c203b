package storage

import "time"

// Command names recorded in the usage log.
const (
	CommandLookup   = "lookup"
	CommandBrowse   = "browse"
	CommandNavigate = "navigate"
)

// Outcomes recorded in the usage log.
const (
	OutcomeFound    = "found"
	OutcomeNotFound = "not_found"
	OutcomeBrowse   = "browse"
	OutcomeNavigate = "navigate"
	OutcomeExpired  = "expired"
	OutcomeError    = "error"
)

// Event is one handled command or navigation step.
// Events are expected to be appended in chronological order.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	UserID    int64     `json:"user_id"`
	ChatID    int64     `json:"chat_id"`
	Command   string    `json:"command"`
	Query     string    `json:"query,omitempty"`
	BuildHash string    `json:"build_hash,omitempty"`
	Outcome   string    `json:"outcome"`
}

// Recorder abstracts persistence of usage events.
// Load should return events in chronological order.
// Implementations must be safe for concurrent use.
type Recorder interface {
	Append(event Event) error
	Load() ([]Event, error)
}
