package api

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"taskboard/backend"
	"taskboard/session"
	"taskboard/views"
)

// errorResponse mirrors the upstream error payload.
type errorResponse struct {
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}

func httpError(err error) (int, errorResponse) {
	var (
		apiErr   *backend.Error
		httpErr  *echo.HTTPError
		fieldErr validator.ValidationErrors
	)
	switch {
	case errors.Is(err, views.ErrSeatLimit):
		resp := errorResponse{Message: views.ErrSeatLimit.Error()}
		if errors.As(err, &apiErr) {
			if apiErr.Message != "" {
				resp.Message = apiErr.Message
			}
			resp.Errors = apiErr.FieldErrors
		}
		return http.StatusForbidden, resp
	case errors.Is(err, views.ErrSessionExpired), errors.Is(err, session.ErrNoSession):
		return http.StatusUnauthorized, errorResponse{Message: views.ErrSessionExpired.Error()}
	case errors.As(err, &fieldErr):
		resp := errorResponse{Message: "invalid request", Errors: make(map[string]string, len(fieldErr))}
		for _, fe := range fieldErr {
			resp.Errors[fe.Field()] = fe.Tag()
		}
		return http.StatusBadRequest, resp
	case errors.As(err, &apiErr):
		if apiErr.StatusCode == 0 {
			return http.StatusBadGateway, errorResponse{Message: "upstream unavailable"}
		}
		msg := apiErr.Message
		if msg == "" {
			msg = http.StatusText(apiErr.StatusCode)
		}
		return apiErr.StatusCode, errorResponse{Message: msg, Errors: apiErr.FieldErrors}
	case errors.As(err, &httpErr):
		msg, ok := httpErr.Message.(string)
		if !ok {
			msg = http.StatusText(httpErr.Code)
		}
		return httpErr.Code, errorResponse{Message: msg}
	default:
		return http.StatusInternalServerError, errorResponse{Message: http.StatusText(http.StatusInternalServerError)}
	}
}

// ErrorHandler writes handler errors as JSON error payloads.
func ErrorHandler(logger *log.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		status, body := httpError(err)
		if status >= http.StatusInternalServerError {
			logger.WithError(err).WithFields(log.Fields{
				"method": c.Request().Method,
				"path":   c.Path(),
				"status": status,
			}).Error("request failed")
		}
		var werr error
		if c.Request().Method == http.MethodHead {
			werr = c.NoContent(status)
		} else {
			werr = c.JSON(status, body)
		}
		if werr != nil {
			logger.WithError(werr).Warn("write error response failed")
		}
	}
}
