package handlers

import (
	"net/http"

	"admissions_app_go/middleware"
	"admissions_app_go/services"

	"github.com/labstack/echo/v4"
)

// QuizQuestionsHandler returns the career navigator questionnaire
func (h *Handler) QuizQuestionsHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"questions": services.QuizQuestions,
		"count":     len(services.QuizQuestions),
	})
}

// QuizScoreHandler scores a completed questionnaire
func (h *Handler) QuizScoreHandler(c echo.Context) error {
	var req struct {
		Answers []string `json:"answers"`
	}
	if err := bind(c, &req); err != nil {
		return err
	}

	outcome, err := h.Quiz.Complete(c.Request().Context(), req.Answers, middleware.GetLocale(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, outcome)
}

// ROICoursesHandler lists the courses the calculator knows
func (h *Handler) ROICoursesHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"courses": services.Courses(),
	})
}

// ROIHandler calculates the salary return on a course
func (h *Handler) ROIHandler(c echo.Context) error {
	var req struct {
		Course               string `json:"course"`
		CurrentMonthlyIncome int64  `json:"current_monthly_income"`
	}
	if err := bind(c, &req); err != nil {
		return err
	}

	result, err := services.CalculateROI(req.Course, req.CurrentMonthlyIncome)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}
