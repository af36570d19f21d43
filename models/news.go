package models

import "time"

// News represents a studio news/announcement article. News has no tags and
// no comment thread; otherwise it shares the content-item shape.
type News struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Title        string    `gorm:"size:255;not null" json:"title"`
	Slug         string    `gorm:"size:255;uniqueIndex;not null" json:"slug"`
	Category     string    `gorm:"size:32;default:'notice'" json:"category"`
	Body         string    `gorm:"type:text" json:"body"`
	ThumbnailURL string    `gorm:"size:512" json:"thumbnail_url"`
	IsPublished  bool      `gorm:"default:false;index" json:"is_published"`
	AuthorID     uint      `gorm:"index" json:"author_id"`
	ViewCount    int64     `gorm:"default:0" json:"view_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Author       User      `gorm:"foreignKey:AuthorID" json:"author"`
}
