package cases

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/surgiflow/surgiflow/internal/platform/auth"
	"github.com/surgiflow/surgiflow/pkg/pagination"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/cases", h.CreateCase, auth.RequireRole("surgeon", "admin"))
	g.GET("/cases", h.ListCases)
	g.GET("/cases/:id", h.GetCase)
	g.POST("/cases/:id/transition", h.Transition, auth.RequireRole("surgeon", "nurse", "anesthetist"))
	g.POST("/cases/:id/booking", h.CreateBooking, auth.RequireRole("surgeon", "nurse", "admin"))
	g.GET("/cases/:id/booking", h.GetBooking)
	g.POST("/cases/:id/invites", h.CreateInvite, auth.RequireRole("surgeon", "admin"))
	g.GET("/cases/:id/invites", h.ListInvites)
	g.POST("/invites/:id/respond", h.RespondInvite)
}

func actorFromContext(c echo.Context) Actor {
	ctx := c.Request().Context()
	return Actor{
		ID:    auth.UserIDFromContext(ctx),
		Roles: auth.RolesFromContext(ctx),
	}
}

type createCaseRequest struct {
	PatientID        uuid.UUID  `json:"patient_id"`
	PrimarySurgeonID uuid.UUID  `json:"primary_surgeon_id"`
	ConsultationID   *uuid.UUID `json:"consultation_id"`
	Urgency          string     `json:"urgency"`
	Note             *string    `json:"note"`
}

func (h *Handler) CreateCase(c echo.Context) error {
	var req createCaseRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	sc := &SurgicalCase{
		PatientID:        req.PatientID,
		PrimarySurgeonID: req.PrimarySurgeonID,
		ConsultationID:   req.ConsultationID,
		Urgency:          req.Urgency,
		Note:             req.Note,
	}
	if err := h.service.CreateCase(c.Request().Context(), actorFromContext(c), sc); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, sc)
}

func (h *Handler) GetCase(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid case id")
	}
	sc, err := h.service.GetCase(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to get case")
	}
	if sc == nil {
		return echo.NewHTTPError(http.StatusNotFound, "case not found")
	}
	return c.JSON(http.StatusOK, sc)
}

func (h *Handler) ListCases(c echo.Context) error {
	params := pagination.FromContext(c)

	var filter ListFilter
	if v := c.QueryParam("patient_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid patient_id")
		}
		filter.PatientID = id
	}
	if v := c.QueryParam("surgeon_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid surgeon_id")
		}
		filter.SurgeonID = id
	}
	filter.Status = c.QueryParam("status")
	filter.Urgency = c.QueryParam("urgency")

	items, total, err := h.service.ListCases(c.Request().Context(), filter, params.Limit, params.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list cases")
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, params.Limit, params.Offset))
}

type transitionRequest struct {
	Target string `json:"target"`
	Reason string `json:"reason"`
}

func (h *Handler) Transition(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid case id")
	}
	var req transitionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Target == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "target is required")
	}

	result, err := h.service.Transition(c.Request().Context(), actorFromContext(c), id, req.Target, req.Reason)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to transition case")
	}
	return result.Respond(c, http.StatusOK)
}

type createBookingRequest struct {
	TheatreName    string     `json:"theatre_name"`
	ScheduledDate  time.Time  `json:"scheduled_date"`
	ScheduledStart *time.Time `json:"scheduled_start"`
	ScheduledEnd   *time.Time `json:"scheduled_end"`
	Note           *string    `json:"note"`
}

func (h *Handler) CreateBooking(c echo.Context) error {
	caseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid case id")
	}
	var req createBookingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	b := &TheatreBooking{
		SurgicalCaseID: caseID,
		TheatreName:    req.TheatreName,
		ScheduledDate:  req.ScheduledDate,
		ScheduledStart: req.ScheduledStart,
		ScheduledEnd:   req.ScheduledEnd,
		Note:           req.Note,
	}
	if err := h.service.CreateBooking(c.Request().Context(), actorFromContext(c), b); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, b)
}

func (h *Handler) GetBooking(c echo.Context) error {
	caseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid case id")
	}
	b, err := h.service.GetBooking(c.Request().Context(), caseID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to get booking")
	}
	if b == nil {
		return echo.NewHTTPError(http.StatusNotFound, "no booking for case")
	}
	return c.JSON(http.StatusOK, b)
}

type createInviteRequest struct {
	UserID      uuid.UUID `json:"user_id"`
	InvitedRole string    `json:"invited_role"`
}

func (h *Handler) CreateInvite(c echo.Context) error {
	caseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid case id")
	}
	var req createInviteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	inv := &StaffInvite{
		SurgicalCaseID: caseID,
		UserID:         req.UserID,
		InvitedRole:    req.InvitedRole,
	}
	if err := h.service.CreateInvite(c.Request().Context(), actorFromContext(c), inv); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, inv)
}

func (h *Handler) ListInvites(c echo.Context) error {
	caseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid case id")
	}
	invites, err := h.service.ListInvites(c.Request().Context(), caseID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list invites")
	}
	return c.JSON(http.StatusOK, invites)
}

type respondInviteRequest struct {
	Accept bool `json:"accept"`
}

func (h *Handler) RespondInvite(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid invite id")
	}
	var req respondInviteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.RespondInvite(c.Request().Context(), actorFromContext(c), id, req.Accept)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to respond to invite")
	}
	return result.Respond(c, http.StatusOK)
}
