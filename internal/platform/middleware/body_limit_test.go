package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func runBodyLimit(t *testing.T, limit string, body []byte) error {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cases", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := func(c echo.Context) error {
		buf := make([]byte, len(body)+1)
		_, err := c.Request().Body.Read(buf)
		if err != nil && err.Error() != "EOF" {
			return err
		}
		return c.NoContent(http.StatusOK)
	}
	return BodyLimit(limit)(handler)(c)
}

func TestBodyLimit_UnderLimit(t *testing.T) {
	if err := runBodyLimit(t, "1K", []byte(`{"status":"draft"}`)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestBodyLimit_OverLimitContentLength(t *testing.T) {
	err := runBodyLimit(t, "16", bytes.Repeat([]byte("x"), 64))
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("expected 413, got %v", err)
	}
}

func TestParseLimit(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"1K", 1 << 10},
		{"2M", 2 << 20},
		{"1G", 1 << 30},
		{"512", 512},
		{"", 1 << 20},
		{"garbage", 1 << 20},
	}
	for _, tc := range cases {
		if got := parseLimit(tc.in); got != tc.want {
			t.Errorf("parseLimit(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}
