package models

import "time"

// Inquiry is a visitor contact message handled from the admin back office.
type Inquiry struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Name       string    `gorm:"size:64;not null" json:"name"`
	Contact    string    `gorm:"size:255;not null" json:"contact"`
	Subject    string    `gorm:"size:255" json:"subject"`
	Message    string    `gorm:"type:text;not null" json:"message"`
	IsAnswered bool      `gorm:"default:false;index" json:"is_answered"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
