package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func contextWithRoles(c echo.Context, roles []string) echo.Context {
	ctx := context.WithValue(c.Request().Context(), UserRolesKey, roles)
	c.SetRequest(c.Request().WithContext(ctx))
	return c
}

func invokeRequireRole(t *testing.T, userRoles []string, required ...string) error {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c = contextWithRoles(c, userRoles)

	handler := RequireRole(required...)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	return handler(c)
}

func TestRequireRole_Allows(t *testing.T) {
	if err := invokeRequireRole(t, []string{"surgeon"}, "surgeon", "nurse"); err != nil {
		t.Errorf("expected surgeon to pass, got %v", err)
	}
}

func TestRequireRole_AdminBypass(t *testing.T) {
	if err := invokeRequireRole(t, []string{"admin"}, "surgeon"); err != nil {
		t.Errorf("expected admin to pass, got %v", err)
	}
}

func TestRequireRole_Denies(t *testing.T) {
	err := invokeRequireRole(t, []string{"receptionist"}, "surgeon")
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %v", err)
	}
}

func TestRequireRole_NoRoles(t *testing.T) {
	err := invokeRequireRole(t, nil, "surgeon")
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusForbidden {
		t.Errorf("expected 403 for missing roles, got %v", err)
	}
}

func TestHasRole(t *testing.T) {
	ctx := context.WithValue(context.Background(), UserRolesKey, []string{"nurse"})
	if !HasRole(ctx, "nurse") {
		t.Error("expected nurse role to be present")
	}
	if HasRole(ctx, "surgeon") {
		t.Error("did not expect surgeon role")
	}
	admin := context.WithValue(context.Background(), UserRolesKey, []string{"admin"})
	if !HasRole(admin, "surgeon") {
		t.Error("expected admin to imply surgeon")
	}
}
