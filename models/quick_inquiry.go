package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// QuickInquiry is a contact-page lead
type QuickInquiry struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name    string `gorm:"not null" json:"name"`
	Phone   string `gorm:"not null;index" json:"phone"`
	Message string `gorm:"type:text;not null" json:"message"`

	Locale    string `json:"locale,omitempty"`
	IPAddress string `json:"ip_address,omitempty"`
	UserAgent string `gorm:"type:text" json:"user_agent,omitempty"`
}

// BeforeCreate hook to generate UUID
func (q *QuickInquiry) BeforeCreate(tx *gorm.DB) error {
	if q.ID == "" {
		q.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for QuickInquiry model
func (QuickInquiry) TableName() string {
	return "quick_inquiries"
}
