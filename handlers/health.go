package handlers

import (
	"net/http"
	"time"

	"admissions_app_go/db"
	"admissions_app_go/services/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// HealthHandler reports liveness and whether the database answers a ping
func HealthHandler(c echo.Context) error {
	status := http.StatusOK
	dbStatus := "ok"

	if db.DB == nil {
		status, dbStatus = http.StatusServiceUnavailable, "unavailable"
	} else if sqlDB, err := db.DB.DB(); err != nil {
		status, dbStatus = http.StatusServiceUnavailable, "unavailable"
	} else if err := sqlDB.PingContext(c.Request().Context()); err != nil {
		logger.L().Warn("Health check database ping failed", zap.Error(err))
		status, dbStatus = http.StatusServiceUnavailable, "unavailable"
	}

	overall := "healthy"
	if status != http.StatusOK {
		overall = "degraded"
	}
	return c.JSON(status, map[string]string{
		"status":   overall,
		"database": dbStatus,
		"time":     time.Now().UTC().Format(time.RFC3339),
	})
}
