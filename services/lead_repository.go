package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"admissions_app_go/models"

	"gorm.io/gorm"
)

// LeadRepository persists submitted leads. Create methods return nil,
// ErrAlreadyExists or an error wrapping ErrTransient.
type LeadRepository interface {
	EmailExists(ctx context.Context, email string) (bool, error)
	CreateRegistration(ctx context.Context, r *models.Registration) error
	CreateInquiry(ctx context.Context, q *models.QuickInquiry) error
	CreateFranchiseApplication(ctx context.Context, f *models.FranchiseApplication) error
	CreateQuizResult(ctx context.Context, q *models.CareerQuizResult) error
	ListRegistrations(ctx context.Context, since time.Time) ([]models.Registration, error)
	ListInquiries(ctx context.Context, since time.Time) ([]models.QuickInquiry, error)
	ListFranchiseApplications(ctx context.Context, since time.Time) ([]models.FranchiseApplication, error)
}

// GormLeadRepository implements LeadRepository on gorm
type GormLeadRepository struct {
	db *gorm.DB
}

func NewGormLeadRepository(db *gorm.DB) *GormLeadRepository {
	return &GormLeadRepository{db: db}
}

// EmailExists checks registrations case-insensitively
func (r *GormLeadRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Registration{}).
		Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).
		Count(&count).Error
	if err != nil {
		return false, transientf("email lookup: %v", err)
	}
	return count > 0, nil
}

func (r *GormLeadRepository) CreateRegistration(ctx context.Context, reg *models.Registration) error {
	return classifyCreateError(r.db.WithContext(ctx).Create(reg).Error)
}

func (r *GormLeadRepository) CreateInquiry(ctx context.Context, q *models.QuickInquiry) error {
	return classifyCreateError(r.db.WithContext(ctx).Create(q).Error)
}

func (r *GormLeadRepository) CreateFranchiseApplication(ctx context.Context, f *models.FranchiseApplication) error {
	return classifyCreateError(r.db.WithContext(ctx).Create(f).Error)
}

func (r *GormLeadRepository) CreateQuizResult(ctx context.Context, q *models.CareerQuizResult) error {
	return classifyCreateError(r.db.WithContext(ctx).Create(q).Error)
}

func (r *GormLeadRepository) ListRegistrations(ctx context.Context, since time.Time) ([]models.Registration, error) {
	var out []models.Registration
	err := r.db.WithContext(ctx).Where("created_at >= ?", since).Order("created_at ASC").Find(&out).Error
	return out, err
}

func (r *GormLeadRepository) ListInquiries(ctx context.Context, since time.Time) ([]models.QuickInquiry, error) {
	var out []models.QuickInquiry
	err := r.db.WithContext(ctx).Where("created_at >= ?", since).Order("created_at ASC").Find(&out).Error
	return out, err
}

func (r *GormLeadRepository) ListFranchiseApplications(ctx context.Context, since time.Time) ([]models.FranchiseApplication, error) {
	var out []models.FranchiseApplication
	err := r.db.WithContext(ctx).Where("created_at >= ?", since).Order("created_at ASC").Find(&out).Error
	return out, err
}

// classifyCreateError maps driver errors onto the repository results. libsql
// errors are not translated by gorm, hence the message check.
func classifyCreateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return ErrAlreadyExists
	}
	return transientf("insert: %v", err)
}
