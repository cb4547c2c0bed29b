package audit

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/surgiflow/surgiflow/internal/platform/auth"
	"github.com/surgiflow/surgiflow/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/audit", h.ListTrail)
}

// ListTrail serves the audit trail. A clinician may read their own trail;
// entity trails and other actors' trails are admin only.
func (h *Handler) ListTrail(c echo.Context) error {
	ctx := c.Request().Context()
	pg := pagination.FromContext(c)

	if actorID := c.QueryParam("actor_id"); actorID != "" {
		if actorID != auth.UserIDFromContext(ctx) && !auth.HasRole(ctx, "admin") {
			return echo.NewHTTPError(http.StatusForbidden, "admin role required")
		}
		items, total, err := h.svc.ActorTrail(ctx, actorID, pg.Limit, pg.Offset)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
	}

	if !auth.HasRole(ctx, "admin") {
		return echo.NewHTTPError(http.StatusForbidden, "admin role required")
	}
	entityType := c.QueryParam("entity_type")
	entityID, err := uuid.Parse(c.QueryParam("entity_id"))
	if entityType == "" || err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "entity_type and entity_id are required")
	}
	items, total, err := h.svc.Trail(ctx, entityType, entityID, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}
