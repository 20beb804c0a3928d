package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"admissions_app_go/config"
	"admissions_app_go/services/i18n"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func runLocale(t *testing.T, cfg *config.Config, req *http.Request) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var ctxLocale string
	handler := Locale(cfg)(func(c echo.Context) error {
		ctxLocale = i18n.GetLocale(c.Request().Context())
		return c.NoContent(http.StatusOK)
	})

	assert.NoError(t, handler(c))
	assert.Equal(t, c.Get("locale"), ctxLocale, "echo and request contexts agree")
	return c, rec
}

func TestLocale(t *testing.T) {
	cfg := &config.Config{Environment: "development"}

	t.Run("PriorityQueryParam", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/?lang=hi", nil)
		req.AddCookie(&http.Cookie{Name: "lang", Value: "en"})
		c, rec := runLocale(t, cfg, req)

		assert.Equal(t, "hi", c.Get("locale"))
		found := false
		for _, cookie := range rec.Result().Cookies() {
			if cookie.Name == "lang" {
				assert.Equal(t, "hi", cookie.Value)
				assert.False(t, cookie.Secure)
				found = true
			}
		}
		assert.True(t, found)
	})

	t.Run("UnsupportedQueryParam", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/?lang=es", nil)
		c, _ := runLocale(t, cfg, req)
		assert.Equal(t, "en", c.Get("locale"))
	})

	t.Run("PriorityCookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: "lang", Value: "hi"})
		req.Header.Set("Accept-Language", "en-US")
		c, _ := runLocale(t, cfg, req)
		assert.Equal(t, "hi", c.Get("locale"))
	})

	t.Run("PriorityHeader", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Accept-Language", "fr-FR,hi-IN;q=0.9,en;q=0.8")
		c, _ := runLocale(t, cfg, req)
		assert.Equal(t, "hi", c.Get("locale"))
	})

	t.Run("Default", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		c, _ := runLocale(t, cfg, req)
		assert.Equal(t, "en", c.Get("locale"))
		assert.Equal(t, "en", GetLocale(c))
	})

	t.Run("SecureCookieInProduction", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/?lang=hi", nil)
		_, rec := runLocale(t, &config.Config{Environment: "production"}, req)
		cookies := rec.Result().Cookies()
		if assert.Len(t, cookies, 1) {
			assert.True(t, cookies[0].Secure)
		}
	})
}

func TestFromAcceptLanguage(t *testing.T) {
	assert.Equal(t, "hi", fromAcceptLanguage("hi"))
	assert.Equal(t, "en", fromAcceptLanguage("EN-gb"))
	assert.Equal(t, "en", fromAcceptLanguage(""))
	assert.Equal(t, "en", fromAcceptLanguage("de,fr;q=0.5"))
}
