package handlers

import (
	"net/http"
	"time"

	"admissions_app_go/middleware"
	"admissions_app_go/services"
	"admissions_app_go/services/i18n"

	"github.com/labstack/echo/v4"
)

// verificationResponse is what the form needs to render the phone widget
type verificationResponse struct {
	ID          string                     `json:"id"`
	Form        string                     `json:"form"`
	State       services.VerificationState `json:"state"`
	Phone       string                     `json:"phone,omitempty"`
	PhoneLocked bool                       `json:"phone_locked"`
	CanSend     bool                       `json:"can_send"`
	ResendIn    int                        `json:"resend_in"`
	ExpiresAt   time.Time                  `json:"expires_at"`
	Message     string                     `json:"message,omitempty"`
}

func (h *Handler) verificationView(v *services.PhoneVerification) verificationResponse {
	phone := v.National
	if phone == "" {
		phone = v.RawInput
	}
	return verificationResponse{
		ID:          v.ID,
		Form:        v.Form,
		State:       v.State,
		Phone:       phone,
		PhoneLocked: v.PhoneLocked(),
		CanSend:     h.Verification.CanSend(v),
		ResendIn:    h.Verification.ResendIn(v),
		ExpiresAt:   v.ExpiresAt,
	}
}

// StartVerificationHandler opens a verification session for a form
func (h *Handler) StartVerificationHandler(c echo.Context) error {
	var req struct {
		Form string `json:"form"`
	}
	if err := bind(c, &req); err != nil {
		return err
	}

	v, err := h.Verification.Start(c.Request().Context(), req.Form)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, h.verificationView(v))
}

// GetVerificationHandler returns the current state of a session
func (h *Handler) GetVerificationHandler(c echo.Context) error {
	v, err := h.Verification.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, h.verificationView(v))
}

// SendOTPHandler sends or resends the OTP for the posted phone number
func (h *Handler) SendOTPHandler(c echo.Context) error {
	var req struct {
		Phone string `json:"phone"`
	}
	if err := bind(c, &req); err != nil {
		return err
	}

	v, err := h.Verification.SendCode(c.Request().Context(), c.Param("id"), req.Phone)
	if err != nil {
		return err
	}

	resp := h.verificationView(v)
	resp.Message = i18n.Translate(middleware.GetLocale(c), "success.otp_sent", map[string]interface{}{"phone": v.National})
	return c.JSON(http.StatusOK, resp)
}

// VerifyOTPHandler checks the posted code
func (h *Handler) VerifyOTPHandler(c echo.Context) error {
	var req struct {
		OTP string `json:"otp"`
	}
	if err := bind(c, &req); err != nil {
		return err
	}

	v, err := h.Verification.VerifyCode(c.Request().Context(), c.Param("id"), req.OTP)
	if err != nil {
		return err
	}

	resp := h.verificationView(v)
	resp.Message = i18n.Translate(middleware.GetLocale(c), "success.otp_verified")
	return c.JSON(http.StatusOK, resp)
}
