package directory

import "github.com/labstack/gommon/log"

// GuestClient reads participant records from the guest service. Guests
// feed display and feedback enrichment only; no invariant depends on
// them.
type GuestClient struct {
	client
}

func NewGuestClient(cfg Config) *GuestClient {
	return &GuestClient{client: newClient(cfg)}
}

// ListByAppointment returns the guests of one appointment. A failed
// lookup degrades to an empty list: enrichment must never fail a read.
func (g *GuestClient) ListByAppointment(appointmentID string) []Guest {
	var guests []Guest
	err := g.getJSON("/guests/appointment/"+escape(appointmentID), &guests)
	if err == errNotFound {
		return nil
	}
	if err != nil {
		log.Errorf("guest lookup failed for appointment %s: %v", appointmentID, err)
		return nil
	}
	return guests
}

// ListByUserAndStatus returns the guest records of one user filtered
// by feedback status ("PENDING" or "DONE" on the guest service side).
func (g *GuestClient) ListByUserAndStatus(userID, feedbackStatus string) ([]Guest, error) {
	var guests []Guest
	err := g.getJSON("/guests/user/"+escape(userID)+"?feedback_status="+escape(feedbackStatus), &guests)
	if err == errNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return guests, nil
}
