package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"admissions_app_go/models"
	"admissions_app_go/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuizQuestionsHandler(t *testing.T) {
	app := newTestApp(t)
	_, c, rec := setupEcho(http.MethodGet, "/api/career-navigator/questions", nil)

	serve(c, app.handler.QuizQuestionsHandler)
	assertStatus(t, rec, http.StatusOK)

	var resp struct {
		Questions []map[string]interface{} `json:"questions"`
		Count     int                      `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, len(services.QuizQuestions), resp.Count)
	assert.Len(t, resp.Questions, resp.Count)
	assert.NotContains(t, rec.Body.String(), "weights", "scoring weights stay on the server")
}

func TestQuizScoreHandler(t *testing.T) {
	t.Run("All A answers recommend cabin crew", func(t *testing.T) {
		app := newTestApp(t)
		answers := strings.Split(strings.Repeat("A", len(services.QuizQuestions)), "")

		_, c, rec := setupEcho(http.MethodPost, "/api/career-navigator/score", jsonBody(t, map[string]interface{}{"answers": answers}))
		serve(c, app.handler.QuizScoreHandler)
		assertStatus(t, rec, http.StatusOK)

		var outcome services.QuizOutcome
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &outcome))
		assert.Equal(t, services.CategoryCrew, outcome.TopCategory)
		assert.Equal(t, "/courses/cabin-crew", outcome.Recommendation.Route)
		assert.False(t, outcome.AIGenerated)
		assert.NotEmpty(t, outcome.Blurb)

		var count int64
		app.db.Model(&models.CareerQuizResult{}).Count(&count)
		assert.Equal(t, int64(1), count)
	})

	t.Run("Incomplete answers", func(t *testing.T) {
		app := newTestApp(t)
		_, c, rec := setupEcho(http.MethodPost, "/api/career-navigator/score", jsonBody(t, map[string]interface{}{"answers": []string{"A", "B"}}))

		serve(c, app.handler.QuizScoreHandler)
		assertStatus(t, rec, http.StatusBadRequest)
		assert.Equal(t, string(services.KindInvalidQuizAnswers), decodeError(t, rec).Code)
	})
}

func TestROICoursesHandler(t *testing.T) {
	app := newTestApp(t)
	_, c, rec := setupEcho(http.MethodGet, "/api/salary-roi/courses", nil)

	serve(c, app.handler.ROICoursesHandler)
	assertStatus(t, rec, http.StatusOK)

	var resp struct {
		Courses []services.CourseEconomics `json:"courses"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, services.Courses(), resp.Courses)
}

func TestROIHandler(t *testing.T) {
	app := newTestApp(t)

	t.Run("Success", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodPost, "/api/salary-roi", jsonBody(t, map[string]interface{}{
			"course":                 "ground-staff",
			"current_monthly_income": 12000,
		}))
		serve(c, app.handler.ROIHandler)
		assertStatus(t, rec, http.StatusOK)

		var result services.ROIResult
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
		assert.Equal(t, int64(120000), result.YearlyGain)
		require.NotNil(t, result.PaybackMonths)
		assert.Equal(t, 10, *result.PaybackMonths)
	})

	t.Run("Income too large", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodPost, "/api/salary-roi", jsonBody(t, map[string]interface{}{
			"course":                 "cabin-crew",
			"current_monthly_income": int64(1_000_000_000_000_000_000),
		}))
		serve(c, app.handler.ROIHandler)
		assertStatus(t, rec, http.StatusBadRequest)

		body := decodeError(t, rec)
		assert.Equal(t, string(services.KindInvalidIncome), body.Code)
		assert.Equal(t, "current_monthly_income", body.Field)
		assert.NotContains(t, body.Message, "errors.")
	})

	t.Run("Unknown course", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodPost, "/api/salary-roi", jsonBody(t, map[string]interface{}{"course": "pilot"}))
		serve(c, app.handler.ROIHandler)
		assertStatus(t, rec, http.StatusNotFound)

		body := decodeError(t, rec)
		assert.Equal(t, string(services.KindUnknownCourse), body.Code)
		assert.Equal(t, "course", body.Field)
	})
}
