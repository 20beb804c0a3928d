package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"admissions_app_go/services/i18n"
	"admissions_app_go/services/logger"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ArchiveURLTTL bounds presigned download links for archived exports
const ArchiveURLTTL = 24 * time.Hour

const leadExportPrefix = "exports/leads/"

var (
	ErrInvalidArchiveKey = errors.New("invalid archive key")
	ErrArchiveDisabled   = errors.New("export archiving is not configured")
)

// LeadExport is a generated workbook and where it was archived
type LeadExport struct {
	Buffer        *bytes.Buffer
	FileName      string
	ArchiveKey    string // empty when archiving failed
	ArchiveURL    string // download link for ArchiveKey, if one could be issued
	Registrations int
	Inquiries     int
	Franchise     int
}

// LeadExporter builds XLSX workbooks of every lead since a date
type LeadExporter struct {
	repo    LeadRepository
	storage StorageProvider
	now     func() time.Time
}

// NewLeadExporter accepts a nil storage, in which case exports are not archived
func NewLeadExporter(repo LeadRepository, storage StorageProvider) *LeadExporter {
	return &LeadExporter{repo: repo, storage: storage, now: time.Now}
}

// Export writes one sheet per form. A failed archive upload is logged and the
// workbook is still returned.
func (e *LeadExporter) Export(ctx context.Context, since time.Time) (*LeadExport, error) {
	registrations, err := e.repo.ListRegistrations(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("failed to list registrations: %w", err)
	}
	inquiries, err := e.repo.ListInquiries(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("failed to list inquiries: %w", err)
	}
	franchise, err := e.repo.ListFranchiseApplications(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("failed to list franchise applications: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})

	sheetRegistrations := i18n.Translate(i18n.DefaultLang, "export.sheets.registrations")
	f.SetSheetName("Sheet1", sheetRegistrations)
	regRows := make([][]interface{}, 0, len(registrations))
	for _, r := range registrations {
		regRows = append(regRows, []interface{}{
			r.CreatedAt.UTC().Format(time.RFC3339), r.Name, r.DateOfBirth, r.Phone, r.Email,
			r.HighestQualification, r.InterestedCourse, r.Locale,
		})
	}
	if err := writeSheet(f, sheetRegistrations, headerStyle,
		[]string{"Submitted At", "Name", "Date of Birth", "Phone", "Email", "Highest Qualification", "Interested Course", "Locale"},
		regRows); err != nil {
		return nil, err
	}

	sheetInquiries := i18n.Translate(i18n.DefaultLang, "export.sheets.inquiries")
	f.NewSheet(sheetInquiries)
	inqRows := make([][]interface{}, 0, len(inquiries))
	for _, q := range inquiries {
		inqRows = append(inqRows, []interface{}{
			q.CreatedAt.UTC().Format(time.RFC3339), q.Name, q.Phone, q.Message, q.Locale,
		})
	}
	if err := writeSheet(f, sheetInquiries, headerStyle,
		[]string{"Submitted At", "Name", "Phone", "Message", "Locale"},
		inqRows); err != nil {
		return nil, err
	}

	sheetFranchise := i18n.Translate(i18n.DefaultLang, "export.sheets.franchise")
	f.NewSheet(sheetFranchise)
	frRows := make([][]interface{}, 0, len(franchise))
	for _, a := range franchise {
		frRows = append(frRows, []interface{}{
			a.CreatedAt.UTC().Format(time.RFC3339), a.Name, a.CityState, a.Phone, a.Email,
			a.InvestmentCapacity, a.BusinessExperience, a.Locale,
		})
	}
	if err := writeSheet(f, sheetFranchise, headerStyle,
		[]string{"Submitted At", "Name", "City/State", "Phone", "Email", "Investment Capacity", "Business Experience", "Locale"},
		frRows); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write excel buffer: %w", err)
	}

	now := e.now()
	key := LeadExportKey(now)
	export := &LeadExport{
		Buffer:        buf,
		FileName:      path.Base(key),
		Registrations: len(registrations),
		Inquiries:     len(inquiries),
		Franchise:     len(franchise),
	}

	if e.storage != nil {
		if _, err := e.storage.UploadReader(ctx, bytes.NewReader(buf.Bytes()), key, XLSXContentType, int64(buf.Len())); err != nil {
			logger.L().Warn("Failed to archive lead export", zap.String("key", key), zap.Error(err))
		} else {
			export.ArchiveKey = key
			logger.L().Info("Lead export archived", zap.String("key", key), zap.String("storage", e.storage.Name()))

			if link, err := e.storage.GetSignedURL(ctx, key, ArchiveURLTTL); err != nil {
				logger.L().Warn("Failed to sign lead export URL", zap.String("key", key), zap.Error(err))
			} else {
				export.ArchiveURL = link
			}
		}
	}

	return export, nil
}

// ValidArchiveKey reports whether key names an archived lead export
func ValidArchiveKey(key string) bool {
	return strings.HasPrefix(key, leadExportPrefix) &&
		strings.HasSuffix(key, ".xlsx") &&
		!strings.Contains(key, "..") &&
		!strings.Contains(key, "\\")
}

// OpenArchive reads back an export archived by Export. The caller closes the reader.
func (e *LeadExporter) OpenArchive(ctx context.Context, key string) (io.ReadCloser, string, error) {
	if !ValidArchiveKey(key) {
		return nil, "", ErrInvalidArchiveKey
	}
	if e.storage == nil {
		return nil, "", ErrArchiveDisabled
	}
	return e.storage.Get(ctx, key)
}

func writeSheet(f *excelize.File, sheet string, headerStyle int, headers []string, rows [][]interface{}) error {
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, header)
	}
	lastCol, _ := excelize.ColumnNumberToName(len(headers))
	f.SetCellStyle(sheet, "A1", lastCol+"1", headerStyle)
	f.SetColWidth(sheet, "A", lastCol, 22)

	for r, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, r+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, r+2, err)
		}
	}
	return nil
}
