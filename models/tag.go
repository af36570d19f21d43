package models

import "time"

// Tag is created lazily the first time a name appears in a submitted tag
// string and is never deleted automatically.
type Tag struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Name       string    `gorm:"size:64;uniqueIndex;not null" json:"name"`
	Slug       string    `gorm:"size:64;index" json:"slug"`
	UsageCount int64     `gorm:"default:0" json:"usage_count"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ClassTag links classes and tags. Matches the many2many join table on Class.
type ClassTag struct {
	ClassID uint `gorm:"primaryKey" json:"class_id"`
	TagID   uint `gorm:"primaryKey" json:"tag_id"`
}

// GalleryTag links galleries and tags.
type GalleryTag struct {
	GalleryID uint `gorm:"primaryKey" json:"gallery_id"`
	TagID     uint `gorm:"primaryKey" json:"tag_id"`
}
