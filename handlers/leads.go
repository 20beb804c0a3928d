package handlers

import (
	"net/http"

	"admissions_app_go/middleware"
	"admissions_app_go/services"
	"admissions_app_go/services/i18n"

	"github.com/labstack/echo/v4"
)

type submissionResponse struct {
	ID              string `json:"id"`
	Message         string `json:"message"`
	Reset           bool   `json:"reset"`
	RegisteredEmail string `json:"registered_email,omitempty"`
}

func submitted(c echo.Context, res *services.SubmissionResult) error {
	return c.JSON(http.StatusCreated, submissionResponse{
		ID:              res.ID,
		Message:         i18n.Translate(middleware.GetLocale(c), res.MessageKey),
		Reset:           res.Reset,
		RegisteredEmail: res.RegisteredEmail,
	})
}

type registrationRequest struct {
	SessionID            string `json:"session_id"`
	CaptchaToken         string `json:"captcha_token"`
	Name                 string `json:"name"`
	DateOfBirth          string `json:"date_of_birth"`
	Email                string `json:"email"`
	HighestQualification string `json:"highest_qualification"`
	InterestedCourse     string `json:"interested_course"`
}

// AdmissionsHandler handles the admissions registration form
func (h *Handler) AdmissionsHandler(c echo.Context) error {
	var req registrationRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := h.checkCaptcha(c, req.CaptchaToken); err != nil {
		return err
	}

	res, err := h.Leads.SubmitRegistration(c.Request().Context(), services.RegistrationInput{
		LeadMeta:             leadMeta(c, req.SessionID),
		Name:                 req.Name,
		DateOfBirth:          req.DateOfBirth,
		Email:                req.Email,
		HighestQualification: req.HighestQualification,
		InterestedCourse:     req.InterestedCourse,
	})
	if err != nil {
		return err
	}
	return submitted(c, res)
}

type inquiryRequest struct {
	SessionID    string `json:"session_id"`
	CaptchaToken string `json:"captcha_token"`
	Name         string `json:"name"`
	Message      string `json:"message"`
}

// ContactHandler handles the quick inquiry form
func (h *Handler) ContactHandler(c echo.Context) error {
	var req inquiryRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := h.checkCaptcha(c, req.CaptchaToken); err != nil {
		return err
	}

	res, err := h.Leads.SubmitInquiry(c.Request().Context(), services.InquiryInput{
		LeadMeta: leadMeta(c, req.SessionID),
		Name:     req.Name,
		Message:  req.Message,
	})
	if err != nil {
		return err
	}
	return submitted(c, res)
}

type franchiseRequest struct {
	SessionID          string `json:"session_id"`
	CaptchaToken       string `json:"captcha_token"`
	Name               string `json:"name"`
	CityState          string `json:"city_state"`
	Email              string `json:"email"`
	InvestmentCapacity string `json:"investment_capacity"`
	BusinessExperience string `json:"business_experience"`
}

// FranchiseHandler handles the franchise application form
func (h *Handler) FranchiseHandler(c echo.Context) error {
	var req franchiseRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := h.checkCaptcha(c, req.CaptchaToken); err != nil {
		return err
	}

	res, err := h.Leads.SubmitFranchiseApplication(c.Request().Context(), services.FranchiseInput{
		LeadMeta:           leadMeta(c, req.SessionID),
		Name:               req.Name,
		CityState:          req.CityState,
		Email:              req.Email,
		InvestmentCapacity: req.InvestmentCapacity,
		BusinessExperience: req.BusinessExperience,
	})
	if err != nil {
		return err
	}
	return submitted(c, res)
}
