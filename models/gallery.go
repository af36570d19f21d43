package models

import (
	"time"

	"gorm.io/datatypes"
)

// Gallery represents an exhibition/work gallery entry. Besides the rich-text
// body it carries an ordered image_urls array reconciled explicitly on update.
type Gallery struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Title        string         `gorm:"size:255;not null" json:"title"`
	Slug         string         `gorm:"size:255;uniqueIndex;not null" json:"slug"`
	Category     string         `gorm:"size:32;default:'general'" json:"category"`
	Body         string         `gorm:"type:text" json:"body"`
	ThumbnailURL string         `gorm:"size:512" json:"thumbnail_url"`
	CoverURL     string         `gorm:"size:512" json:"cover_url"`
	ImageURLs    datatypes.JSON `gorm:"type:jsonb" json:"image_urls"`
	IsPublished  bool           `gorm:"default:false;index" json:"is_published"`
	AuthorID     uint           `gorm:"index" json:"author_id"`
	ViewCount    int64          `gorm:"default:0" json:"view_count"`
	LikeCount    int64          `gorm:"default:0" json:"like_count"`
	SaveCount    int64          `gorm:"default:0" json:"save_count"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	Author       User           `gorm:"foreignKey:AuthorID" json:"author"`
	Tags         []Tag          `gorm:"many2many:gallery_tags;" json:"tags"`
}

// GalleryLike marks that a user liked a gallery. One row per (gallery, user).
type GalleryLike struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	GalleryID uint      `gorm:"index:idx_gallery_like,unique;not null" json:"gallery_id"`
	UserID    uint      `gorm:"index:idx_gallery_like,unique;not null" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// GallerySave marks that a user saved a gallery for later.
type GallerySave struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	GalleryID uint      `gorm:"index:idx_gallery_save,unique;not null" json:"gallery_id"`
	UserID    uint      `gorm:"index:idx_gallery_save,unique;not null" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}
