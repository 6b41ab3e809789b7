package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/ehr/patientsvc/internal/platform/apperr"
)

// ErrorBody is the JSON envelope for every failed request.
type ErrorBody struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	RequestID string `json:"requestId,omitempty"`
}

// ErrorHandler renders handler errors. Classified service errors keep their
// reason text; echo errors keep their status; anything else is reported as
// ServiceUnavailable with the cause logged but not returned.
func ErrorHandler(logger zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		rid, _ := c.Get("request_id").(string)

		var (
			status int
			body   = ErrorBody{RequestID: rid}
			he     *echo.HTTPError
			ae     *apperr.Error
		)
		switch {
		case errors.As(err, &ae):
			status = apperr.HTTPStatus(ae.Kind)
			body.Error = string(ae.Kind)
			body.Message = ae.Reason
			if ae.Cause != nil {
				logger.Error().Err(ae.Cause).Str("request_id", rid).Msg("record store failure")
			}
		case errors.As(err, &he):
			status = he.Code
			body.Error = http.StatusText(he.Code)
			if msg, ok := he.Message.(string); ok {
				body.Message = msg
			} else {
				body.Message = http.StatusText(he.Code)
			}
		default:
			status = http.StatusServiceUnavailable
			body.Error = string(apperr.KindUnavailable)
			body.Message = apperr.Unavailable(err).Reason
			logger.Error().Err(err).Str("request_id", rid).Msg("unclassified error")
		}

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(status)
		} else {
			writeErr = c.JSON(status, body)
		}
		if writeErr != nil {
			logger.Error().Err(writeErr).Msg("write error response")
		}
	}
}

func writeError(c echo.Context, status int, message string) error {
	rid, _ := c.Get("request_id").(string)
	return c.JSON(status, ErrorBody{
		Error:     http.StatusText(status),
		Message:   message,
		RequestID: rid,
	})
}
