package routes

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"meetpoint/cmd/internal/domain/entity"
	"meetpoint/cmd/internal/service"
	"meetpoint/cmd/internal/utils/apierror"
)

// stubService lets each test wire just the methods it exercises.
type stubService struct {
	create         func(req *service.AppointmentRequest) (*service.AppointmentResponse, apierror.ErrorResponse)
	get            func(id string) (*service.AppointmentResponse, apierror.ErrorResponse)
	list           func(filter entity.ListFilter) ([]*service.AppointmentResponse, apierror.ErrorResponse)
	status         func(id string) (entity.Status, apierror.ErrorResponse)
	updateStatus   func(id, requested string) (*service.AppointmentResponse, apierror.ErrorResponse)
	remove         func(id string) apierror.ErrorResponse
	statusFeedback func(id string) (*service.StatusFeedbackResponse, apierror.ErrorResponse)
	pending        func(userID string) ([]*service.AppointmentResponse, apierror.ErrorResponse)
}

func (s *stubService) CreateAppointment(req *service.AppointmentRequest) (*service.AppointmentResponse, apierror.ErrorResponse) {
	return s.create(req)
}

func (s *stubService) GetAppointment(id string) (*service.AppointmentResponse, apierror.ErrorResponse) {
	return s.get(id)
}

func (s *stubService) GetAppointments(filter entity.ListFilter) ([]*service.AppointmentResponse, apierror.ErrorResponse) {
	return s.list(filter)
}

func (s *stubService) GetAppointmentsByHost(string) ([]*service.AppointmentResponse, apierror.ErrorResponse) {
	return nil, nil
}

func (s *stubService) GetAppointmentsByLocation(string) ([]*service.AppointmentResponse, apierror.ErrorResponse) {
	return nil, nil
}

func (s *stubService) GetAppointmentsByStartTime(int64) ([]*service.AppointmentResponse, apierror.ErrorResponse) {
	return nil, nil
}

func (s *stubService) GetAppointmentsByEndTime(int64) ([]*service.AppointmentResponse, apierror.ErrorResponse) {
	return nil, nil
}

func (s *stubService) GetAppointmentStatus(id string) (entity.Status, apierror.ErrorResponse) {
	return s.status(id)
}

func (s *stubService) UpdateAppointmentStatus(id, requested string) (*service.AppointmentResponse, apierror.ErrorResponse) {
	return s.updateStatus(id, requested)
}

func (s *stubService) DeleteAppointment(id string) apierror.ErrorResponse {
	return s.remove(id)
}

func (s *stubService) GetStatusFeedback(id string) (*service.StatusFeedbackResponse, apierror.ErrorResponse) {
	return s.statusFeedback(id)
}

func (s *stubService) GetPendingFeedback(userID string) ([]*service.AppointmentResponse, apierror.ErrorResponse) {
	return s.pending(userID)
}

func perform(t *testing.T, svc AppointmentService, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	NewAppointmentDefault(svc).RegisterRoutes(e)

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestCreateAppointmentReturns201(t *testing.T) {
	svc := &stubService{
		create: func(req *service.AppointmentRequest) (*service.AppointmentResponse, apierror.ErrorResponse) {
			if req.Title != "coffee chat" {
				t.Errorf("request not bound: title = %q", req.Title)
			}
			return &service.AppointmentResponse{AppointmentID: "appt-1", AppointmentStatus: "PLANNED"}, nil
		},
	}

	body := `{"host_id":"user123","title":"coffee chat","start_time":"2026-08-01T13:00:00Z","end_time":"2026-08-01T14:00:00Z","location_id":"room-a"}`
	rec := perform(t, svc, http.MethodPost, "/appointments", body)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}
	var resp service.AppointmentResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if resp.AppointmentID != "appt-1" {
		t.Errorf("appointment_id = %q", resp.AppointmentID)
	}
}

func TestCreateAppointmentPropagatesServiceError(t *testing.T) {
	svc := &stubService{
		create: func(*service.AppointmentRequest) (*service.AppointmentResponse, apierror.ErrorResponse) {
			return nil, apierror.NewConflict("appt-9")
		},
	}

	rec := perform(t, svc, http.MethodPost, "/appointments", `{"title":"x"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}

	var payload map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("bad error body: %v", err)
	}
	if payload["error"] != "Conflict" {
		t.Errorf("error id = %v, want Conflict", payload["error"])
	}
	if payload["conflicting_appointment_id"] != "appt-9" {
		t.Errorf("conflicting_appointment_id = %v, want appt-9", payload["conflicting_appointment_id"])
	}
}

func TestGetAppointmentNotFound(t *testing.T) {
	svc := &stubService{
		get: func(string) (*service.AppointmentResponse, apierror.ErrorResponse) { return nil, nil },
	}

	rec := perform(t, svc, http.MethodGet, "/appointments/missing", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestGetAppointmentsParsesFilters(t *testing.T) {
	var seen entity.ListFilter
	svc := &stubService{
		list: func(filter entity.ListFilter) ([]*service.AppointmentResponse, apierror.ErrorResponse) {
			seen = filter
			return []*service.AppointmentResponse{}, nil
		},
	}

	rec := perform(t, svc, http.MethodGet,
		"/appointments?location_id=room-a&appointment_status=planned&start_time=2026-08-01T12:00:00Z", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if seen.LocationID != "room-a" {
		t.Errorf("location_id = %q", seen.LocationID)
	}
	if seen.Status != entity.StatusPlanned {
		t.Errorf("status = %q, want PLANNED (case-insensitive parse)", seen.Status)
	}
	if seen.StartAtOrAfter == nil {
		t.Error("start_time bound not parsed")
	}
}

func TestGetAppointmentsRejectsBadFilter(t *testing.T) {
	svc := &stubService{
		list: func(entity.ListFilter) ([]*service.AppointmentResponse, apierror.ErrorResponse) {
			t.Fatal("service must not be called on a bad filter")
			return nil, nil
		},
	}

	rec := perform(t, svc, http.MethodGet, "/appointments?appointment_status=SOMEDAY", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestGetAppointmentStatusNotFound(t *testing.T) {
	svc := &stubService{
		status: func(string) (entity.Status, apierror.ErrorResponse) { return "", nil },
	}

	rec := perform(t, svc, http.MethodGet, "/appointments/missing/status", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestUpdateAppointmentStatus(t *testing.T) {
	svc := &stubService{
		updateStatus: func(id, requested string) (*service.AppointmentResponse, apierror.ErrorResponse) {
			if id != "appt-1" || requested != "CANCELLED" {
				t.Errorf("got %s/%s", id, requested)
			}
			return &service.AppointmentResponse{AppointmentID: id, AppointmentStatus: "CANCELLED"}, nil
		},
	}

	rec := perform(t, svc, http.MethodPut, "/appointments/appt-1/status", `{"appointment_status":"CANCELLED"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestUpdateAppointmentStatusRequiresBodyField(t *testing.T) {
	svc := &stubService{
		updateStatus: func(string, string) (*service.AppointmentResponse, apierror.ErrorResponse) {
			t.Fatal("service must not be called without a status")
			return nil, nil
		},
	}

	rec := perform(t, svc, http.MethodPut, "/appointments/appt-1/status", `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestDeleteAppointmentReturns204(t *testing.T) {
	svc := &stubService{
		remove: func(id string) apierror.ErrorResponse {
			if id != "appt-1" {
				t.Errorf("id = %q", id)
			}
			return nil
		},
	}

	rec := perform(t, svc, http.MethodDelete, "/appointments/appt-1", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("204 with body: %q", rec.Body.String())
	}
}

func TestGetStatusFeedback(t *testing.T) {
	svc := &stubService{
		statusFeedback: func(id string) (*service.StatusFeedbackResponse, apierror.ErrorResponse) {
			return &service.StatusFeedbackResponse{AppointmentStatus: "DONE", Feedback: "F"}, nil
		},
	}

	rec := perform(t, svc, http.MethodGet, "/appointments/appt-1/feedback", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp service.StatusFeedbackResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if resp.Feedback != "F" {
		t.Errorf("feedback = %q, want F", resp.Feedback)
	}
}

func TestGetPendingFeedbackRequiresUserID(t *testing.T) {
	svc := &stubService{
		pending: func(string) ([]*service.AppointmentResponse, apierror.ErrorResponse) {
			t.Fatal("service must not be called without user_id")
			return nil, nil
		},
	}

	rec := perform(t, svc, http.MethodGet, "/appointments/feedback/pending", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestGetPendingFeedbackPropagatesDependencyFailure(t *testing.T) {
	svc := &stubService{
		pending: func(userID string) ([]*service.AppointmentResponse, apierror.ErrorResponse) {
			return nil, apierror.NewDependency("guest-service")
		},
	}

	rec := perform(t, svc, http.MethodGet, "/appointments/feedback/pending?user_id=u9", "")
	if rec.Code != http.StatusFailedDependency {
		t.Fatalf("status = %d, want 424", rec.Code)
	}
}
