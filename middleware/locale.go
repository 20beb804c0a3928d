package middleware

import (
	"net/http"
	"strings"
	"time"

	"admissions_app_go/config"
	"admissions_app_go/services/i18n"

	"github.com/labstack/echo/v4"
)

// LangCookieName stores the visitor's language choice
const LangCookieName = "lang"

// Locale middleware handles language detection and persistence.
// Priority:
// 1. Query param "lang" (sets cookie)
// 2. Cookie "lang"
// 3. Accept-Language header
// 4. Default ("en")
func Locale(cfg *config.Config) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			lang := c.QueryParam("lang")
			if lang != "" {
				if !i18n.IsSupported(lang) {
					lang = i18n.DefaultLang
				}
				setLanguageCookie(c, cfg, lang)
			} else if cookie, err := c.Cookie(LangCookieName); err == nil && i18n.IsSupported(cookie.Value) {
				lang = cookie.Value
			}

			if lang == "" {
				lang = fromAcceptLanguage(c.Request().Header.Get("Accept-Language"))
			}

			c.Set("locale", lang)
			c.SetRequest(c.Request().WithContext(i18n.WithLocale(c.Request().Context(), lang)))

			return next(c)
		}
	}
}

// fromAcceptLanguage returns the first supported primary tag, e.g. "hi" for "hi-IN,en;q=0.8"
func fromAcceptLanguage(header string) string {
	for _, part := range strings.Split(header, ",") {
		tag := strings.TrimSpace(strings.SplitN(part, ";", 2)[0])
		primary := strings.ToLower(strings.SplitN(tag, "-", 2)[0])
		if primary != "" && i18n.IsSupported(primary) {
			return primary
		}
	}
	return i18n.DefaultLang
}

func setLanguageCookie(c echo.Context, cfg *config.Config, lang string) {
	cookie := new(http.Cookie)
	cookie.Name = LangCookieName
	cookie.Value = lang
	cookie.Expires = time.Now().Add(24 * 365 * time.Hour) // 1 year
	cookie.Path = "/"
	cookie.HttpOnly = true
	cookie.SameSite = http.SameSiteLaxMode
	if cfg != nil && cfg.IsProduction() {
		cookie.Secure = true
	}
	c.SetCookie(cookie)
}

// GetLocale returns the current locale from context
func GetLocale(c echo.Context) string {
	if lang, ok := c.Get("locale").(string); ok && lang != "" {
		return lang
	}
	return i18n.DefaultLang
}
