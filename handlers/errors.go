package handlers

import (
	"net/http"
	"strconv"

	"admissions_app_go/middleware"
	"admissions_app_go/services"
	"admissions_app_go/services/i18n"
	"admissions_app_go/services/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Codes for failures raised outside the lead workflow
const (
	CodeBadRequest   = "BAD_REQUEST"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeNotFound     = "NOT_FOUND"
	CodeRateLimited  = "RATE_LIMITED"
	CodeInternal     = "INTERNAL_ERROR"
)

var (
	errBadRequest = echo.NewHTTPError(http.StatusBadRequest, "errors.error_bad_request")
	errNotFound   = echo.NewHTTPError(http.StatusNotFound, "errors.error_not_found")
)

// ErrorBody is the payload of every failed API call
type ErrorBody struct {
	Code       string   `json:"code"`
	Field      string   `json:"field,omitempty"`
	Fields     []string `json:"fields,omitempty"`
	Message    string   `json:"message"`
	RetryAfter int      `json:"retry_after,omitempty"`
}

type errorResponse struct {
	Error ErrorBody `json:"error"`
}

// APIErrorHandler renders errors as {"error": {...}} with the message
// translated into the request locale.
func APIErrorHandler(err error, c echo.Context) {
	lang := middleware.GetLocale(c)

	var code int
	var body ErrorBody

	if le, ok := services.AsLeadError(err); ok {
		code = le.HTTPStatus()
		body = ErrorBody{
			Code:   string(le.Kind),
			Field:  le.Field,
			Fields: le.Fields,
		}
		args := map[string]interface{}{}
		if secs := le.RetryAfterSeconds(); secs > 0 {
			body.RetryAfter = secs
			args["seconds"] = secs
			c.Response().Header().Set("Retry-After", strconv.Itoa(secs))
		}
		body.Message = i18n.Translate(lang, le.MessageKey(), args)
		if code >= http.StatusInternalServerError {
			logger.L().Error("Lead request failed",
				zap.String("path", c.Path()), zap.String("kind", string(le.Kind)), zap.Error(err))
		}
	} else if he, ok := err.(*echo.HTTPError); ok {
		if he.Internal != nil {
			if inner, ok := he.Internal.(*echo.HTTPError); ok {
				he = inner
			}
		}
		code = he.Code
		body.Code = codeForStatus(code)
		key, _ := he.Message.(string)
		body.Message = i18n.Translate(lang, key)
		if key == "" || body.Message == key {
			// echo's own errors carry English text rather than a translation key
			body.Message = i18n.Translate(lang, fallbackKeys[body.Code])
		}
	} else {
		logger.L().Error("Unhandled request error", zap.String("path", c.Path()), zap.Error(err))
		code = http.StatusInternalServerError
		body = ErrorBody{Code: CodeInternal, Message: i18n.Translate(lang, services.GenericErrorKey)}
	}

	if c.Response().Committed {
		return
	}
	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = c.JSON(code, errorResponse{Error: body})
	}
	if err != nil {
		logger.L().Error("Failed to write error response", zap.Error(err))
	}
}

var fallbackKeys = map[string]string{
	CodeBadRequest:   "errors.error_bad_request",
	CodeUnauthorized: "errors.error_unauthorized",
	CodeNotFound:     "errors.error_not_found",
	CodeRateLimited:  "errors.error_rate_limited",
	CodeInternal:     services.GenericErrorKey,
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest, http.StatusRequestEntityTooLarge, http.StatusUnsupportedMediaType:
		return CodeBadRequest
	case http.StatusUnauthorized, http.StatusForbidden:
		return CodeUnauthorized
	case http.StatusNotFound, http.StatusMethodNotAllowed:
		return CodeNotFound
	case http.StatusTooManyRequests:
		return CodeRateLimited
	default:
		return CodeInternal
	}
}
