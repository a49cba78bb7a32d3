package routes

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"meetpoint/cmd/internal/domain/entity"
	"meetpoint/cmd/internal/service"
	"meetpoint/cmd/internal/utils"
	"meetpoint/cmd/internal/utils/apierror"
)

type AppointmentService interface {
	CreateAppointment(req *service.AppointmentRequest) (*service.AppointmentResponse, apierror.ErrorResponse)
	GetAppointment(id string) (*service.AppointmentResponse, apierror.ErrorResponse)
	GetAppointments(filter entity.ListFilter) ([]*service.AppointmentResponse, apierror.ErrorResponse)
	GetAppointmentsByHost(hostID string) ([]*service.AppointmentResponse, apierror.ErrorResponse)
	GetAppointmentsByLocation(locationID string) ([]*service.AppointmentResponse, apierror.ErrorResponse)
	GetAppointmentsByStartTime(startTime int64) ([]*service.AppointmentResponse, apierror.ErrorResponse)
	GetAppointmentsByEndTime(endTime int64) ([]*service.AppointmentResponse, apierror.ErrorResponse)
	GetAppointmentStatus(id string) (entity.Status, apierror.ErrorResponse)
	UpdateAppointmentStatus(id, requested string) (*service.AppointmentResponse, apierror.ErrorResponse)
	DeleteAppointment(id string) apierror.ErrorResponse
	GetStatusFeedback(id string) (*service.StatusFeedbackResponse, apierror.ErrorResponse)
	GetPendingFeedback(userID string) ([]*service.AppointmentResponse, apierror.ErrorResponse)
}

type statusUpdateRequest struct {
	AppointmentStatus string `json:"appointment_status"`
}

type DefaultAppointmentRoute struct {
	AppointmentService AppointmentService
}

func NewAppointmentDefault(apptService AppointmentService) *DefaultAppointmentRoute {
	return &DefaultAppointmentRoute{AppointmentService: apptService}
}

func (a *DefaultAppointmentRoute) RegisterRoutes(e *echo.Echo) {
	e.POST("/appointments", a.CreateAppointment)
	e.GET("/appointments", a.GetAppointments)
	e.GET("/appointments/feedback/pending", a.GetPendingFeedback)
	e.GET("/appointments/host/:host_id", a.GetAppointmentsByHost)
	e.GET("/appointments/location/:location_id", a.GetAppointmentsByLocation)
	e.GET("/appointments/start-time/:start_time", a.GetAppointmentsByStartTime)
	e.GET("/appointments/end-time/:end_time", a.GetAppointmentsByEndTime)
	e.GET("/appointments/:appointment_id", a.GetAppointment)
	e.GET("/appointments/:appointment_id/status", a.GetAppointmentStatus)
	e.PUT("/appointments/:appointment_id/status", a.UpdateAppointmentStatus)
	e.GET("/appointments/:appointment_id/feedback", a.GetStatusFeedback)
	e.DELETE("/appointments/:appointment_id", a.DeleteAppointment)
}

func (a *DefaultAppointmentRoute) CreateAppointment(c echo.Context) error {
	var req service.AppointmentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	appt, apierr := a.AppointmentService.CreateAppointment(&req)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusCreated, appt)
}

func (a *DefaultAppointmentRoute) GetAppointments(c echo.Context) error {
	filter, apierr := parseListFilter(c)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	appts, apierr := a.AppointmentService.GetAppointments(filter)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, appts)
}

func (a *DefaultAppointmentRoute) GetAppointment(c echo.Context) error {
	id := strings.TrimSpace(c.Param("appointment_id"))
	if id == "" {
		return c.JSON(http.StatusBadRequest, apierror.NewMissingParamError("appointment_id"))
	}

	appt, apierr := a.AppointmentService.GetAppointment(id)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	if appt == nil {
		return c.JSON(http.StatusNotFound, apierror.NotFoundError)
	}
	return c.JSON(http.StatusOK, appt)
}

func (a *DefaultAppointmentRoute) GetAppointmentsByHost(c echo.Context) error {
	hostID := strings.TrimSpace(c.Param("host_id"))
	if hostID == "" {
		return c.JSON(http.StatusBadRequest, apierror.NewMissingParamError("host_id"))
	}

	appts, apierr := a.AppointmentService.GetAppointmentsByHost(hostID)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, appts)
}

func (a *DefaultAppointmentRoute) GetAppointmentsByLocation(c echo.Context) error {
	locationID := strings.TrimSpace(c.Param("location_id"))
	if locationID == "" {
		return c.JSON(http.StatusBadRequest, apierror.NewMissingParamError("location_id"))
	}

	appts, apierr := a.AppointmentService.GetAppointmentsByLocation(locationID)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, appts)
}

func (a *DefaultAppointmentRoute) GetAppointmentsByStartTime(c echo.Context) error {
	startTime, err := utils.FromEpoch(strings.TrimSpace(c.Param("start_time")))
	if err != nil {
		return c.JSON(http.StatusBadRequest,
			apierror.NewSimple(http.StatusBadRequest, "InvalidRequest", "Invalid start time format"))
	}

	appts, apierr := a.AppointmentService.GetAppointmentsByStartTime(startTime)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, appts)
}

func (a *DefaultAppointmentRoute) GetAppointmentsByEndTime(c echo.Context) error {
	endTime, err := utils.FromEpoch(strings.TrimSpace(c.Param("end_time")))
	if err != nil {
		return c.JSON(http.StatusBadRequest,
			apierror.NewSimple(http.StatusBadRequest, "InvalidRequest", "Invalid end time format"))
	}

	appts, apierr := a.AppointmentService.GetAppointmentsByEndTime(endTime)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, appts)
}

func (a *DefaultAppointmentRoute) GetAppointmentStatus(c echo.Context) error {
	id := strings.TrimSpace(c.Param("appointment_id"))
	if id == "" {
		return c.JSON(http.StatusBadRequest, apierror.NewMissingParamError("appointment_id"))
	}

	status, apierr := a.AppointmentService.GetAppointmentStatus(id)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	if status == "" {
		return c.JSON(http.StatusNotFound, apierror.NotFoundError)
	}
	return c.JSON(http.StatusOK, echo.Map{"appointment_status": status})
}

func (a *DefaultAppointmentRoute) UpdateAppointmentStatus(c echo.Context) error {
	id := strings.TrimSpace(c.Param("appointment_id"))
	if id == "" {
		return c.JSON(http.StatusBadRequest, apierror.NewMissingParamError("appointment_id"))
	}

	var req statusUpdateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}
	if strings.TrimSpace(req.AppointmentStatus) == "" {
		return c.JSON(http.StatusBadRequest, apierror.NewMissingParamError("appointment_status"))
	}

	appt, apierr := a.AppointmentService.UpdateAppointmentStatus(id, req.AppointmentStatus)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, appt)
}

func (a *DefaultAppointmentRoute) DeleteAppointment(c echo.Context) error {
	id := strings.TrimSpace(c.Param("appointment_id"))
	if id == "" {
		return c.JSON(http.StatusBadRequest, apierror.NewMissingParamError("appointment_id"))
	}

	if apierr := a.AppointmentService.DeleteAppointment(id); apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.NoContent(http.StatusNoContent)
}

func (a *DefaultAppointmentRoute) GetStatusFeedback(c echo.Context) error {
	id := strings.TrimSpace(c.Param("appointment_id"))
	if id == "" {
		return c.JSON(http.StatusBadRequest, apierror.NewMissingParamError("appointment_id"))
	}

	feedback, apierr := a.AppointmentService.GetStatusFeedback(id)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	if feedback == nil {
		return c.JSON(http.StatusNotFound, apierror.NotFoundError)
	}
	return c.JSON(http.StatusOK, feedback)
}

func (a *DefaultAppointmentRoute) GetPendingFeedback(c echo.Context) error {
	userID := strings.TrimSpace(c.QueryParam("user_id"))
	if userID == "" {
		return c.JSON(http.StatusBadRequest, apierror.NewMissingParamError("user_id"))
	}

	appts, apierr := a.AppointmentService.GetPendingFeedback(userID)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, appts)
}

// parseListFilter reads the optional query filters: location_id,
// appointment_status, start_time (lower bound), end_time (upper
// bound).
func parseListFilter(c echo.Context) (entity.ListFilter, apierror.ErrorResponse) {
	var filter entity.ListFilter

	filter.LocationID = strings.TrimSpace(c.QueryParam("location_id"))

	if raw := strings.TrimSpace(c.QueryParam("appointment_status")); raw != "" {
		status, ok := entity.ParseStatus(raw)
		if !ok {
			return filter, apierror.NewSimple(http.StatusBadRequest, "InvalidRequest", "Invalid appointment status")
		}
		filter.Status = status
	}

	if raw := strings.TrimSpace(c.QueryParam("start_time")); raw != "" {
		start, err := utils.FromEpoch(raw)
		if err != nil {
			return filter, apierror.NewSimple(http.StatusBadRequest, "InvalidRequest", "Invalid start time format")
		}
		filter.StartAtOrAfter = &start
	}

	if raw := strings.TrimSpace(c.QueryParam("end_time")); raw != "" {
		end, err := utils.FromEpoch(raw)
		if err != nil {
			return filter, apierror.NewSimple(http.StatusBadRequest, "InvalidRequest", "Invalid end time format")
		}
		filter.EndAtOrBefore = &end
	}

	return filter, nil
}
