package forms

import (
	"errors"
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
	g.GET("/form-templates", h.ListTemplates)
	g.PUT("/cases/:id/forms/:template", h.SaveDraft, clinicians)
	g.GET("/cases/:id/forms/:template", h.GetForm)
	g.GET("/cases/:id/forms", h.ListForms)
	g.POST("/cases/:id/forms/:template/finalize", h.Finalize, auth.RequireRole("surgeon", "nurse"))
	g.GET("/cases/:id/recovery-gate", h.RecoveryGate)
	g.GET("/cases/:id/procedure-record", h.GetProcedureRecord)
}

func (h *Handler) ListTemplates(c echo.Context) error {
	out := []map[string]interface{}{}
	for _, key := range TemplateKeys() {
		t, _ := TemplateFor(key)
		out = append(out, map[string]interface{}{"key": t.Key, "version": t.Version})
	}
	return c.JSON(http.StatusOK, out)
}

func caseID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid case id")
	}
	return id, nil
}

type saveDraftRequest struct {
	Data map[string]interface{} `json:"data"`
}

func (h *Handler) SaveDraft(c echo.Context) error {
	id, err := caseID(c)
	if err != nil {
		return err
	}
	var req saveDraftRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.SaveDraft(c.Request().Context(),
		auth.UserIDFromContext(c.Request().Context()), id, c.Param("template"), req.Data)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to save form")
	}
	return result.Respond(c, http.StatusOK)
}

func (h *Handler) GetForm(c echo.Context) error {
	id, err := caseID(c)
	if err != nil {
		return err
	}
	form, err := h.service.GetForm(c.Request().Context(), id, c.Param("template"))
	if err != nil {
		if errors.Is(err, ErrCorruptPayload) {
			return echo.NewHTTPError(http.StatusInternalServerError, "stored form payload is corrupt")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if form == nil {
		return echo.NewHTTPError(http.StatusNotFound, "form not found")
	}
	return c.JSON(http.StatusOK, form)
}

func (h *Handler) ListForms(c echo.Context) error {
	id, err := caseID(c)
	if err != nil {
		return err
	}
	forms, err := h.service.ListForms(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list forms")
	}
	return c.JSON(http.StatusOK, forms)
}

func (h *Handler) Finalize(c echo.Context) error {
	id, err := caseID(c)
	if err != nil {
		return err
	}
	result, err := h.service.Finalize(c.Request().Context(),
		auth.UserIDFromContext(c.Request().Context()), id, c.Param("template"))
	if err != nil {
		if errors.Is(err, ErrCorruptPayload) {
			return echo.NewHTTPError(http.StatusInternalServerError, "stored form payload is corrupt")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to finalize form")
	}
	return result.Respond(c, http.StatusOK)
}

func (h *Handler) RecoveryGate(c echo.Context) error {
	id, err := caseID(c)
	if err != nil {
		return err
	}
	blockers, err := h.service.RecoveryBlockers(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to evaluate recovery gate")
	}
	if blockers == nil {
		blockers = []string{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"passes":   len(blockers) == 0,
		"blockers": blockers,
	})
}

func (h *Handler) GetProcedureRecord(c echo.Context) error {
	id, err := caseID(c)
	if err != nil {
		return err
	}
	rec, err := h.service.GetProcedureRecord(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to get procedure record")
	}
	if rec == nil {
		return echo.NewHTTPError(http.StatusNotFound, "no procedure record for case")
	}
	return c.JSON(http.StatusOK, rec)
}
