// Package invariant holds the business rules that gate appointment
// creation and manual status changes. Everything here is a pure
// function of its inputs; persistence and collaborator lookups are the
// caller's problem.
package invariant

import (
	"fmt"

	"meetpoint/cmd/internal/domain/entity"
)

// Stable rule identifiers, used in error payloads for traceability.
const (
	CodeStartBeforeEnd  = "INV-A001"
	CodeStartNotPast    = "INV-A002"
	CodeHostRequired    = "INV-A003"
	CodeTitleRequired   = "INV-A004"
	CodeLocationRequire = "INV-A005"
	CodeStatusOrder     = "INV-A006"
	CodeTerminalStatus  = "INV-A007"
)

// Violation is a single broken rule. The first violated rule wins;
// callers never see more than one per check.
type Violation struct {
	Code    string
	Message string
}

func (v *Violation) Error() string {
	return fmt.Sprintf("%s: %s", v.Code, v.Message)
}

// CreateParams is the slice of a creation request the rules care
// about. Times are epoch millis.
type CreateParams struct {
	HostID     string
	Title      string
	LocationID string
	StartTime  int64
	EndTime    int64
}

// Policy toggles the optional rules.
type Policy struct {
	// RejectPastStart enables INV-A002: the appointment must not
	// start before Now. Off by default.
	RejectPastStart bool
}

// ValidateCreate checks a creation request against the fixed rules and
// returns the first violation, cheapest checks first. now is only
// consulted when the policy enables INV-A002.
func ValidateCreate(params CreateParams, policy Policy, now int64) *Violation {
	if params.HostID == "" {
		return &Violation{Code: CodeHostRequired, Message: "host id must not be empty"}
	}
	if params.Title == "" {
		return &Violation{Code: CodeTitleRequired, Message: "title must not be empty"}
	}
	if params.LocationID == "" {
		return &Violation{Code: CodeLocationRequire, Message: "location id must not be empty"}
	}
	if params.StartTime >= params.EndTime {
		return &Violation{Code: CodeStartBeforeEnd, Message: "start time must be before end time"}
	}
	if policy.RejectPastStart && params.StartTime < now {
		return &Violation{Code: CodeStartNotPast, Message: "start time must not be in the past"}
	}
	return nil
}

// ValidateTransition checks a manually requested status change.
// Automatic forward transitions never pass through here: the scheduler
// only ever writes the single legal next state for a row it selected
// by status, so this gate exists for callers.
func ValidateTransition(current, requested entity.Status) *Violation {
	if current.IsTerminal() {
		return &Violation{
			Code:    CodeTerminalStatus,
			Message: fmt.Sprintf("status %s is terminal", current),
		}
	}
	if requested != entity.StatusCancelled {
		return &Violation{
			Code:    CodeStatusOrder,
			Message: fmt.Sprintf("cannot move %s to %s: forward transitions are time-driven", current, requested),
		}
	}
	return nil
}
