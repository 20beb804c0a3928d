package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"path"
	"strconv"
	"time"

	"admissions_app_go/middleware"
	"admissions_app_go/services"
	"admissions_app_go/services/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// DefaultExportWindow is used when no since date is given
const DefaultExportWindow = 30 * 24 * time.Hour

// ExportLeadsHandler streams every lead since ?since=YYYY-MM-DD as XLSX
func (h *Handler) ExportLeadsHandler(c echo.Context) error {
	since := time.Now().UTC().Add(-DefaultExportWindow)
	if raw := c.QueryParam("since"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return errBadRequest
		}
		since = parsed
	}

	export, err := h.Exporter.Export(c.Request().Context(), since)
	if err != nil {
		return err
	}

	logger.L().Info("Lead export generated",
		zap.String("admin", middleware.GetAdmin(c)),
		zap.Time("since", since),
		zap.Int("registrations", export.Registrations),
		zap.Int("inquiries", export.Inquiries),
		zap.Int("franchise", export.Franchise),
	)

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", export.FileName))
	c.Response().Header().Set("X-Lead-Count", strconv.Itoa(export.Registrations+export.Inquiries+export.Franchise))
	if export.ArchiveKey != "" {
		c.Response().Header().Set("X-Archive-Key", export.ArchiveKey)
	}
	if export.ArchiveURL != "" {
		c.Response().Header().Set("X-Archive-URL", export.ArchiveURL)
	}
	return c.Blob(http.StatusOK, services.XLSXContentType, export.Buffer.Bytes())
}

// ArchiveHandler downloads a previously archived export by ?key=
func (h *Handler) ArchiveHandler(c echo.Context) error {
	key := c.QueryParam("key")
	reader, contentType, err := h.Exporter.OpenArchive(c.Request().Context(), key)
	if errors.Is(err, services.ErrInvalidArchiveKey) {
		return errBadRequest
	}
	if err != nil {
		logger.L().Warn("Lead export archive unavailable", zap.String("key", key), zap.Error(err))
		return errNotFound
	}
	defer reader.Close()

	logger.L().Info("Lead export archive downloaded", zap.String("admin", middleware.GetAdmin(c)), zap.String("key", key))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", path.Base(key)))
	return c.Stream(http.StatusOK, contentType, reader)
}

// NotFoundHandler answers unknown API paths with the JSON error shape
func NotFoundHandler(c echo.Context) error {
	return errNotFound
}
