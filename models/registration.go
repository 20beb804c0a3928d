package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Form identifiers shared by verification sessions, metrics and notifications
const (
	FormAdmissions = "admissions"
	FormContact    = "contact"
	FormFranchise  = "franchise"
)

// IsValidForm checks if the form identifier is known
func IsValidForm(form string) bool {
	switch form {
	case FormAdmissions, FormContact, FormFranchise:
		return true
	}
	return false
}

// Registration is an admissions lead. Phone is always the E.164 number of a
// verified phone verification session.
type Registration struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name                 string `gorm:"not null" json:"name"`
	DateOfBirth          string `gorm:"not null" json:"date_of_birth"` // YYYY-MM-DD
	Phone                string `gorm:"not null;index" json:"phone"`
	Email                string `gorm:"not null;uniqueIndex" json:"email"`
	HighestQualification string `gorm:"not null" json:"highest_qualification"`
	InterestedCourse     string `gorm:"not null;index" json:"interested_course"`

	// Audit fields
	Locale    string `json:"locale,omitempty"`
	IPAddress string `json:"ip_address,omitempty"`
	UserAgent string `gorm:"type:text" json:"user_agent,omitempty"`
}

// BeforeCreate hook to generate UUID
func (r *Registration) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for Registration model
func (Registration) TableName() string {
	return "registrations"
}
