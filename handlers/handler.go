package handlers

import (
	"admissions_app_go/middleware"
	"admissions_app_go/services"

	"github.com/labstack/echo/v4"
)

// Handler serves the public lead API and the admin export
type Handler struct {
	Verification *services.VerificationService
	Leads        *services.LeadService
	Quiz         *services.QuizService
	Exporter     *services.LeadExporter
	Captcha      services.CaptchaVerifier
}

// bind decodes the request body, reporting malformed payloads as a bad request
func bind(c echo.Context, dst interface{}) error {
	if err := c.Bind(dst); err != nil {
		return errBadRequest
	}
	return nil
}

func leadMeta(c echo.Context, sessionID string) services.LeadMeta {
	return services.LeadMeta{
		SessionID: sessionID,
		Locale:    middleware.GetLocale(c),
		IPAddress: c.RealIP(),
		UserAgent: c.Request().UserAgent(),
	}
}

// checkCaptcha runs before any submission work; a nil verifier disables it
func (h *Handler) checkCaptcha(c echo.Context, token string) error {
	if h.Captcha == nil {
		return nil
	}
	return h.Captcha.Verify(c.Request().Context(), token, c.RealIP())
}
