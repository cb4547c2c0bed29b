package outcome

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// HTTPStatus maps a result kind to its transport status code.
// VALIDATION -> 422, FORBIDDEN -> 403, CONFLICT -> 409, NOT_FOUND -> 404.
func (r Result) HTTPStatus(successStatus int) int {
	switch r.Kind {
	case KindOK:
		return successStatus
	case KindValidation:
		return http.StatusUnprocessableEntity
	case KindForbidden:
		return http.StatusForbidden
	case KindConflict:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Respond writes the result as JSON with the mapped status code.
// successStatus is used when the result is OK (200 or 201).
func (r Result) Respond(c echo.Context, successStatus int) error {
	if r.Ok() {
		body := map[string]interface{}{"ok": true}
		if r.Data != nil {
			body["data"] = r.Data
		}
		if r.NextStatus != "" {
			body["next_status"] = r.NextStatus
		}
		return c.JSON(successStatus, body)
	}

	body := map[string]interface{}{
		"ok":   false,
		"kind": r.Kind,
	}
	if len(r.FieldErrors) > 0 {
		body["field_errors"] = r.FieldErrors
	}
	if len(r.MissingItems) > 0 {
		body["missing_items"] = r.MissingItems
	}
	if r.Reason != "" {
		body["reason"] = r.Reason
	}
	return c.JSON(r.HTTPStatus(successStatus), body)
}
