package middleware

import (
	"admissions_app_go/services"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
)

// ContextKeyAdmin holds the authenticated admin username
const ContextKeyAdmin = "admin"

// RequireAdmin protects admin routes with HTTP basic auth checked against a
// bcrypt hash. Without a configured hash every request is rejected.
func RequireAdmin(creds services.AdminCredentials) echo.MiddlewareFunc {
	return echomiddleware.BasicAuthWithConfig(echomiddleware.BasicAuthConfig{
		Realm: "Admissions Admin",
		Validator: func(username, password string, c echo.Context) (bool, error) {
			if !creds.Check(username, password) {
				return false, nil
			}
			c.Set(ContextKeyAdmin, username)
			return true, nil
		},
	})
}

// GetAdmin returns the authenticated admin username
func GetAdmin(c echo.Context) string {
	if name, ok := c.Get(ContextKeyAdmin).(string); ok {
		return name
	}
	return ""
}
