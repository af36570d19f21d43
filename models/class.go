package models

import "time"

// Class represents a studio class page: rich-text body with embedded images,
// a thumbnail and optional cover images in object storage under "{id}/".
type Class struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Title        string         `gorm:"size:255;not null" json:"title"`
	Slug         string         `gorm:"size:255;uniqueIndex;not null" json:"slug"`
	Category     string         `gorm:"size:32;default:'general'" json:"category"`
	Body         string         `gorm:"type:text" json:"body"`
	ThumbnailURL string         `gorm:"size:512" json:"thumbnail_url"`
	CoverURL     string         `gorm:"size:512" json:"cover_url"`
	IsPublished  bool           `gorm:"default:false;index" json:"is_published"`
	AuthorID     uint           `gorm:"index" json:"author_id"`
	ViewCount    int64          `gorm:"default:0" json:"view_count"`
	LikeCount    int64          `gorm:"default:0" json:"like_count"`
	SaveCount    int64          `gorm:"default:0" json:"save_count"`
	CommentCount int64          `gorm:"default:0" json:"comment_count"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	Author       User           `gorm:"foreignKey:AuthorID" json:"author"`
	Tags         []Tag          `gorm:"many2many:class_tags;" json:"tags"`
}

// ClassLike marks that a user liked a class. One row per (class, user).
type ClassLike struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ClassID   uint      `gorm:"index:idx_class_like,unique;not null" json:"class_id"`
	UserID    uint      `gorm:"index:idx_class_like,unique;not null" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// ClassSave marks that a user saved a class for later.
type ClassSave struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ClassID   uint      `gorm:"index:idx_class_save,unique;not null" json:"class_id"`
	UserID    uint      `gorm:"index:idx_class_save,unique;not null" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}
