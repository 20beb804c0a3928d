package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FranchiseApplication struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name               string `gorm:"not null" json:"name"`
	CityState          string `gorm:"not null" json:"city_state"`
	Phone              string `gorm:"not null;index" json:"phone"`
	Email              string `gorm:"not null;index" json:"email"`
	InvestmentCapacity string `gorm:"not null" json:"investment_capacity"`
	BusinessExperience string `gorm:"type:text;not null" json:"business_experience"`

	Locale    string `json:"locale,omitempty"`
	IPAddress string `json:"ip_address,omitempty"`
	UserAgent string `gorm:"type:text" json:"user_agent,omitempty"`
}

// BeforeCreate hook to generate UUID
func (f *FranchiseApplication) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for FranchiseApplication model
func (FranchiseApplication) TableName() string {
	return "franchise_applications"
}
