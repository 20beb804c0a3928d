package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CareerQuizResult records one scored career navigator attempt
type CareerQuizResult struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	Answers     string `gorm:"not null" json:"answers"`        // comma separated option keys, in question order
	Totals      string `gorm:"type:text;not null" json:"totals"` // JSON object category -> score
	TopCategory string `gorm:"not null;index" json:"top_category"`
	CourseRoute string `json:"course_route"`
	Locale      string `json:"locale,omitempty"`
}

// BeforeCreate hook to generate UUID
func (q *CareerQuizResult) BeforeCreate(tx *gorm.DB) error {
	if q.ID == "" {
		q.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for CareerQuizResult model
func (CareerQuizResult) TableName() string {
	return "career_quiz_results"
}
