package entity

import "strings"

// Status is the lifecycle state of an appointment. Forward movement
// (PLANNED -> ONGOING -> DONE) is driven by wall-clock time; CANCELLED
// is reachable only from PLANNED or ONGOING.
type Status string

const (
	StatusPlanned   Status = "PLANNED"
	StatusOngoing   Status = "ONGOING"
	StatusDone      Status = "DONE"
	StatusCancelled Status = "CANCELLED"
)

// ParseStatus maps a raw string (case-insensitive) to a Status.
// Returns false for anything outside the enum.
func ParseStatus(raw string) (Status, bool) {
	switch Status(strings.ToUpper(strings.TrimSpace(raw))) {
	case StatusPlanned:
		return StatusPlanned, true
	case StatusOngoing:
		return StatusOngoing, true
	case StatusDone:
		return StatusDone, true
	case StatusCancelled:
		return StatusCancelled, true
	}
	return "", false
}

// IsTerminal reports whether no further transitions are permitted.
func (s Status) IsTerminal() bool {
	return s == StatusDone || s == StatusCancelled
}

type Appointment struct {
	ID              string
	HostID          string
	Title           string
	Description     string
	StartTime       int64 // epoch millis, UTC
	EndTime         int64 // epoch millis, UTC
	LocationID      string
	Status          Status
	FeedbackPending bool
	CreatedAt       int64
	UpdatedAt       int64
}

// Overlaps reports whether the half-open windows [a.StartTime,
// a.EndTime) and [start, end) intersect.
func (a *Appointment) Overlaps(start, end int64) bool {
	return a.StartTime < end && start < a.EndTime
}
