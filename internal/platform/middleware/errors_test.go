package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/ehr/patientsvc/internal/platform/apperr"
)

func TestErrorHandler(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantError   string
		wantMessage string
	}{
		{"validation", apperr.Validation("firstName is required"), 400, "ValidationFailure", "firstName is required"},
		{"bad request", apperr.BadRequest(apperr.MsgIDMismatch), 400, "BadRequest", apperr.MsgIDMismatch},
		{"not found", apperr.NotFound("The patient does not exist in the database"), 404, "NotFound", "The patient does not exist in the database"},
		{"conflict", apperr.Conflict("taken"), 409, "Conflict", "taken"},
		{"unavailable", apperr.Unavailable(errors.New("dial tcp")), 503, "ServiceUnavailable", "The record store is unavailable"},
		{"echo error", echo.NewHTTPError(http.StatusMethodNotAllowed, "nope"), 405, "Method Not Allowed", "nope"},
		{"raw error", errors.New("boom"), 503, "ServiceUnavailable", "The record store is unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/patients/1", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)
			c.Set("request_id", "req-1")

			ErrorHandler(zerolog.Nop())(tt.err, c)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			var body ErrorBody
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if body.Error != tt.wantError || body.Message != tt.wantMessage {
				t.Errorf("body = %+v", body)
			}
			if body.RequestID != "req-1" {
				t.Errorf("expected request id in body, got %q", body.RequestID)
			}
		})
	}
}

func TestErrorHandler_SkipsCommittedResponse(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	_ = c.NoContent(http.StatusNoContent)

	ErrorHandler(zerolog.Nop())(apperr.NotFound("late"), c)

	if rec.Code != http.StatusNoContent || rec.Body.Len() != 0 {
		t.Errorf("expected committed response to be left alone, got %d %q", rec.Code, rec.Body.String())
	}
}
