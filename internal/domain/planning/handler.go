package planning

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/surgiflow/surgiflow/internal/platform/auth"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	clinicians := auth.RequireRole("surgeon", "nurse", "anesthetist")
	g.PUT("/cases/:id/plan", h.UpsertPlan, clinicians)
	g.GET("/cases/:id/plan", h.GetPlan)
	g.GET("/cases/:id/readiness", h.Readiness)
	g.POST("/cases/:id/consents", h.AddConsent, clinicians)
	g.GET("/cases/:id/consents", h.ListConsents)
	g.POST("/consents/:id/sign", h.SignConsent, auth.RequireRole("surgeon"))
	g.POST("/cases/:id/images", h.AddImage, clinicians)
	g.GET("/cases/:id/images", h.ListImages)
}

func caseID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid case id")
	}
	return id, nil
}

func (h *Handler) UpsertPlan(c echo.Context) error {
	id, err := caseID(c)
	if err != nil {
		return err
	}
	var in PlanInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	plan, err := h.service.UpsertPlan(c.Request().Context(), auth.UserIDFromContext(c.Request().Context()), id, in)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, plan)
}

func (h *Handler) GetPlan(c echo.Context) error {
	id, err := caseID(c)
	if err != nil {
		return err
	}
	plan, err := h.service.GetPlan(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to get plan")
	}
	if plan == nil {
		return echo.NewHTTPError(http.StatusNotFound, "no plan for case")
	}
	return c.JSON(http.StatusOK, plan)
}

func (h *Handler) Readiness(c echo.Context) error {
	id, err := caseID(c)
	if err != nil {
		return err
	}
	ev, err := h.service.Readiness(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to evaluate readiness")
	}
	return c.JSON(http.StatusOK, ev)
}

type addConsentRequest struct {
	Title   string  `json:"title"`
	Content *string `json:"content"`
}

func (h *Handler) AddConsent(c echo.Context) error {
	id, err := caseID(c)
	if err != nil {
		return err
	}
	var req addConsentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	f := &ConsentForm{SurgicalCaseID: id, Title: req.Title, Content: req.Content}
	if err := h.service.AddConsent(c.Request().Context(), auth.UserIDFromContext(c.Request().Context()), f); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, f)
}

func (h *Handler) ListConsents(c echo.Context) error {
	id, err := caseID(c)
	if err != nil {
		return err
	}
	consents, err := h.service.ListConsents(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list consents")
	}
	return c.JSON(http.StatusOK, consents)
}

func (h *Handler) SignConsent(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid consent id")
	}

	result, err := h.service.SignConsent(c.Request().Context(), auth.UserIDFromContext(c.Request().Context()), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to sign consent")
	}
	return result.Respond(c, http.StatusOK)
}

type addImageRequest struct {
	Timepoint string  `json:"timepoint"`
	URL       string  `json:"url"`
	Caption   *string `json:"caption"`
}

func (h *Handler) AddImage(c echo.Context) error {
	id, err := caseID(c)
	if err != nil {
		return err
	}
	var req addImageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	img := &PatientImage{SurgicalCaseID: id, Timepoint: req.Timepoint, URL: req.URL, Caption: req.Caption}
	if err := h.service.AddImage(c.Request().Context(), auth.UserIDFromContext(c.Request().Context()), img); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, img)
}

func (h *Handler) ListImages(c echo.Context) error {
	id, err := caseID(c)
	if err != nil {
		return err
	}
	images, err := h.service.ListImages(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list images")
	}
	return c.JSON(http.StatusOK, images)
}
