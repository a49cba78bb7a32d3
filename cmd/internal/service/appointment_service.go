package service

import (
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/gommon/log"

	"meetpoint/cmd/internal/clock"
	"meetpoint/cmd/internal/domain/entity"
	"meetpoint/cmd/internal/domain/invariant"
	"meetpoint/cmd/internal/integration/directory"
	"meetpoint/cmd/internal/utils"
	"meetpoint/cmd/internal/utils/apierror"
)

// AppointmentStore is the slice of persistence this service needs.
// The sqlite repository satisfies it in production; tests substitute
// an in-memory fake.
type AppointmentStore interface {
	Get(id string) (*entity.Appointment, error)
	Save(appt *entity.Appointment) error
	DeleteByID(id string) error
	FindAll() ([]*entity.Appointment, error)
	FindByHost(hostID string) ([]*entity.Appointment, error)
	FindByLocation(locationID string) ([]*entity.Appointment, error)
	FindByStartTime(startTime int64) ([]*entity.Appointment, error)
	FindByEndTime(endTime int64) ([]*entity.Appointment, error)
	FindWithFilters(filter entity.ListFilter) ([]*entity.Appointment, error)
	FindOverlapping(hostID string, start, end int64) ([]*entity.Appointment, error)
}

// HostDirectory resolves host identity. Existence gates creation;
// names only enrich responses.
type HostDirectory interface {
	GetHost(hostID string) (*directory.Host, error)
}

// GuestDirectory feeds feedback enrichment. Never consulted for
// invariants.
type GuestDirectory interface {
	ListByAppointment(appointmentID string) []directory.Guest
	ListByUserAndStatus(userID, feedbackStatus string) ([]directory.Guest, error)
}

type AppointmentRequest struct {
	HostID      string `json:"host_id" validate:"max=100"`
	Title       string `json:"title" validate:"max=200"`
	Description string `json:"description" validate:"max=2000"`
	StartTime   string `json:"start_time" validate:"required,iso8601"`
	EndTime     string `json:"end_time" validate:"required,iso8601"`
	LocationID  string `json:"location_id" validate:"max=100"`
}

type AppointmentResponse struct {
	AppointmentID     string `json:"appointment_id"`
	HostID            string `json:"host_id"`
	HostUsername      string `json:"host_username"`
	HostNickname      string `json:"host_nickname"`
	Title             string `json:"title"`
	Description       string `json:"description"`
	StartTime         string `json:"start_time"`
	EndTime           string `json:"end_time"`
	LocationID        string `json:"location_id"`
	AppointmentStatus string `json:"appointment_status"`
	Feedback          string `json:"feedback"` // "F" pending, "T" complete
	CreatedAt         string `json:"created_at"`
	UpdatedAt         string `json:"updated_at"`
}

type GuestInfo struct {
	GuestID  string `json:"guest_id"`
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Nickname string `json:"nickname"`
}

type StatusFeedbackResponse struct {
	AppointmentStatus string      `json:"appointment_status"`
	Feedback          string      `json:"feedback"`
	Guests            []GuestInfo `json:"guests"`
}

// unknownHost is the display fallback when the user service cannot be
// reached during read enrichment.
const unknownHost = "Unknown User"

type DefaultAppointmentService struct {
	Store    AppointmentStore
	Hosts    HostDirectory
	Guests   GuestDirectory
	Detector *OverlapDetector
	Validate *validator.Validate
	Policy   invariant.Policy
	Clock    clock.Clock
}

func NewAppointmentService(
	store AppointmentStore,
	hosts HostDirectory,
	guests GuestDirectory,
	validate *validator.Validate,
	policy invariant.Policy,
	clk clock.Clock,
) *DefaultAppointmentService {
	return &DefaultAppointmentService{
		Store:    store,
		Hosts:    hosts,
		Guests:   guests,
		Detector: &OverlapDetector{Store: store},
		Validate: validate,
		Policy:   policy,
		Clock:    clk,
	}
}

// CreateAppointment runs the creation gauntlet in fixed order: request
// shape, business invariants (cheap checks first), host existence,
// overlap. Nothing is persisted unless every gate passes.
func (s *DefaultAppointmentService) CreateAppointment(req *AppointmentRequest) (*AppointmentResponse, apierror.ErrorResponse) {
	utils.Sanitize(req)
	if err := s.Validate.Struct(req); err != nil {
		return nil, apierror.FromValidationError(err)
	}

	start, err := utils.FromEpoch(req.StartTime)
	if err != nil {
		return nil, apierror.MalformedBodyError
	}
	end, err := utils.FromEpoch(req.EndTime)
	if err != nil {
		return nil, apierror.MalformedBodyError
	}

	params := invariant.CreateParams{
		HostID:     req.HostID,
		Title:      req.Title,
		LocationID: req.LocationID,
		StartTime:  start,
		EndTime:    end,
	}
	if violation := invariant.ValidateCreate(params, s.Policy, s.Clock.Now().UTC().UnixMilli()); violation != nil {
		return nil, apierror.NewValidation(violation)
	}

	host, err := s.Hosts.GetHost(req.HostID)
	if err != nil {
		log.Errorf("host existence check failed for %s: %v", req.HostID, err)
		return nil, apierror.NewDependency("user-service")
	}
	if host == nil {
		return nil, apierror.NewHostNotFound(req.HostID)
	}

	conflicts, err := s.Detector.FindConflicts(req.HostID, start, end, "")
	if err != nil {
		log.Errorf("overlap check failed for host %s: %v", req.HostID, err)
		return nil, apierror.InternalServerError
	}
	if len(conflicts) > 0 {
		return nil, apierror.NewConflict(conflicts[0].ID)
	}

	appt := &entity.Appointment{
		ID:              uuid.NewString(),
		HostID:          req.HostID,
		Title:           req.Title,
		Description:     req.Description,
		StartTime:       start,
		EndTime:         end,
		LocationID:      req.LocationID,
		Status:          entity.StatusPlanned,
		FeedbackPending: true,
	}
	if err := s.Store.Save(appt); err != nil {
		log.Errorf("failed to save appointment for host %s: %v", req.HostID, err)
		return nil, apierror.InternalServerError
	}

	return s.toResponseWithHost(appt, host), nil
}

// GetAppointment returns (nil, nil) when the id is unknown; the
// transport layer owns the 404.
func (s *DefaultAppointmentService) GetAppointment(id string) (*AppointmentResponse, apierror.ErrorResponse) {
	appt, err := s.Store.Get(id)
	if err != nil {
		log.Errorf("failed to fetch appointment %s: %v", id, err)
		return nil, apierror.InternalServerError
	}
	if appt == nil {
		return nil, nil
	}
	return s.toResponse(appt, map[string]*directory.Host{}), nil
}

func (s *DefaultAppointmentService) GetAppointments(filter entity.ListFilter) ([]*AppointmentResponse, apierror.ErrorResponse) {
	var appts []*entity.Appointment
	var err error
	if filter.Empty() {
		appts, err = s.Store.FindAll()
	} else {
		appts, err = s.Store.FindWithFilters(filter)
	}
	if err != nil {
		log.Errorf("failed to list appointments: %v", err)
		return nil, apierror.InternalServerError
	}
	return s.toResponses(appts), nil
}

func (s *DefaultAppointmentService) GetAppointmentsByHost(hostID string) ([]*AppointmentResponse, apierror.ErrorResponse) {
	appts, err := s.Store.FindByHost(hostID)
	if err != nil {
		log.Errorf("failed to list appointments for host %s: %v", hostID, err)
		return nil, apierror.InternalServerError
	}
	return s.toResponses(appts), nil
}

func (s *DefaultAppointmentService) GetAppointmentsByLocation(locationID string) ([]*AppointmentResponse, apierror.ErrorResponse) {
	appts, err := s.Store.FindByLocation(locationID)
	if err != nil {
		log.Errorf("failed to list appointments for location %s: %v", locationID, err)
		return nil, apierror.InternalServerError
	}
	return s.toResponses(appts), nil
}

func (s *DefaultAppointmentService) GetAppointmentsByStartTime(startTime int64) ([]*AppointmentResponse, apierror.ErrorResponse) {
	appts, err := s.Store.FindByStartTime(startTime)
	if err != nil {
		log.Errorf("failed to list appointments by start time %d: %v", startTime, err)
		return nil, apierror.InternalServerError
	}
	return s.toResponses(appts), nil
}

func (s *DefaultAppointmentService) GetAppointmentsByEndTime(endTime int64) ([]*AppointmentResponse, apierror.ErrorResponse) {
	appts, err := s.Store.FindByEndTime(endTime)
	if err != nil {
		log.Errorf("failed to list appointments by end time %d: %v", endTime, err)
		return nil, apierror.InternalServerError
	}
	return s.toResponses(appts), nil
}

// GetAppointmentStatus returns ("", nil) when the id is unknown.
// Status always comes straight from the store: reads never recompute
// it against the clock — the scheduler is the only writer of
// automatic transitions.
func (s *DefaultAppointmentService) GetAppointmentStatus(id string) (entity.Status, apierror.ErrorResponse) {
	appt, err := s.Store.Get(id)
	if err != nil {
		log.Errorf("failed to fetch appointment %s: %v", id, err)
		return "", apierror.InternalServerError
	}
	if appt == nil {
		return "", nil
	}
	return appt.Status, nil
}

// UpdateAppointmentStatus handles a manual status change. Only
// CANCELLED is acceptable; forward movement belongs to the scheduler.
// The current status is re-read immediately before writing so a
// concurrent scheduler tick cannot be raced into cancelling a DONE
// appointment.
func (s *DefaultAppointmentService) UpdateAppointmentStatus(id, requested string) (*AppointmentResponse, apierror.ErrorResponse) {
	target, ok := entity.ParseStatus(requested)
	if !ok {
		return nil, apierror.NewSimple(400, "InvalidRequest", "Invalid appointment status")
	}
	if target != entity.StatusCancelled {
		return nil, apierror.NewManualTargetNotAllowed(requested)
	}

	appt, err := s.Store.Get(id)
	if err != nil {
		log.Errorf("failed to fetch appointment %s: %v", id, err)
		return nil, apierror.InternalServerError
	}
	if appt == nil {
		return nil, apierror.NotFoundError
	}

	if violation := invariant.ValidateTransition(appt.Status, target); violation != nil {
		return nil, apierror.NewTransition(violation)
	}

	appt.Status = entity.StatusCancelled
	if err := s.Store.Save(appt); err != nil {
		log.Errorf("failed to cancel appointment %s: %v", id, err)
		return nil, apierror.InternalServerError
	}

	log.Infof("appointment %s cancelled manually", id)
	return s.toResponse(appt, map[string]*directory.Host{}), nil
}

// DeleteAppointment is an administrative removal: no status check,
// absent ids succeed silently.
func (s *DefaultAppointmentService) DeleteAppointment(id string) apierror.ErrorResponse {
	if err := s.Store.DeleteByID(id); err != nil {
		log.Errorf("failed to delete appointment %s: %v", id, err)
		return apierror.InternalServerError
	}
	return nil
}

// GetStatusFeedback returns the appointment's status, feedback flag,
// and guest list. Guest lookup failures degrade to an empty list
// inside the client.
func (s *DefaultAppointmentService) GetStatusFeedback(id string) (*StatusFeedbackResponse, apierror.ErrorResponse) {
	appt, err := s.Store.Get(id)
	if err != nil {
		log.Errorf("failed to fetch appointment %s: %v", id, err)
		return nil, apierror.InternalServerError
	}
	if appt == nil {
		return nil, nil
	}

	guests := s.Guests.ListByAppointment(id)
	infos := make([]GuestInfo, len(guests))
	for i, guest := range guests {
		infos[i] = GuestInfo{
			GuestID:  guest.GuestID,
			UserID:   guest.UserID,
			Username: guest.Username,
			Nickname: guest.Nickname,
		}
	}

	return &StatusFeedbackResponse{
		AppointmentStatus: string(appt.Status),
		Feedback:          feedbackFlag(appt.FeedbackPending),
		Guests:            infos,
	}, nil
}

// GetPendingFeedback lists the appointments a user still owes
// feedback for. The guest directory is the source of that relation,
// so its failure is fatal here, unlike display enrichment.
func (s *DefaultAppointmentService) GetPendingFeedback(userID string) ([]*AppointmentResponse, apierror.ErrorResponse) {
	guests, err := s.Guests.ListByUserAndStatus(userID, "PENDING")
	if err != nil {
		log.Errorf("pending-feedback lookup failed for user %s: %v", userID, err)
		return nil, apierror.NewDependency("guest-service")
	}

	responses := make([]*AppointmentResponse, 0, len(guests))
	hosts := map[string]*directory.Host{}
	for _, guest := range guests {
		appt, err := s.Store.Get(guest.AppointmentID)
		if err != nil {
			log.Errorf("failed to fetch appointment %s: %v", guest.AppointmentID, err)
			return nil, apierror.InternalServerError
		}
		if appt == nil {
			continue
		}
		responses = append(responses, s.toResponse(appt, hosts))
	}
	return responses, nil
}

func (s *DefaultAppointmentService) toResponses(appts []*entity.Appointment) []*AppointmentResponse {
	hosts := map[string]*directory.Host{}
	responses := make([]*AppointmentResponse, len(appts))
	for i, appt := range appts {
		responses[i] = s.toResponse(appt, hosts)
	}
	return responses
}

// toResponse enriches best-effort: a failed host lookup degrades to a
// placeholder, logged, never surfaced. The cache bounds directory
// calls to one per distinct host per request.
func (s *DefaultAppointmentService) toResponse(appt *entity.Appointment, cache map[string]*directory.Host) *AppointmentResponse {
	host, seen := cache[appt.HostID]
	if !seen {
		fetched, err := s.Hosts.GetHost(appt.HostID)
		if err != nil {
			log.Errorf("host enrichment failed for %s: %v", appt.HostID, err)
		}
		host = fetched
		cache[appt.HostID] = host
	}
	return s.toResponseWithHost(appt, host)
}

func (s *DefaultAppointmentService) toResponseWithHost(appt *entity.Appointment, host *directory.Host) *AppointmentResponse {
	username, nickname := unknownHost, unknownHost
	if host != nil {
		username, nickname = host.Username, host.Nickname
	}
	return &AppointmentResponse{
		AppointmentID:     appt.ID,
		HostID:            appt.HostID,
		HostUsername:      username,
		HostNickname:      nickname,
		Title:             appt.Title,
		Description:       appt.Description,
		StartTime:         utils.FormatEpoch(appt.StartTime),
		EndTime:           utils.FormatEpoch(appt.EndTime),
		LocationID:        appt.LocationID,
		AppointmentStatus: string(appt.Status),
		Feedback:          feedbackFlag(appt.FeedbackPending),
		CreatedAt:         utils.FormatEpoch(appt.CreatedAt),
		UpdatedAt:         utils.FormatEpoch(appt.UpdatedAt),
	}
}

func feedbackFlag(pending bool) string {
	if pending {
		return "F"
	}
	return "T"
}
