package models

import "time"

// Comment represents a class comment. Top-level comments (ParentID nil) are
// paginated independently; replies always travel with their parent.
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ClassID   uint      `gorm:"index;not null" json:"class_id"`
	ParentID  *uint     `gorm:"index" json:"parent_id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	IsVisible bool      `gorm:"default:true;index" json:"is_visible"`
	LikeCount int64     `gorm:"default:0" json:"like_count"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	User      User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author"`
	Replies   []Comment `gorm:"foreignKey:ParentID" json:"replies,omitempty"`
}

// CommentLike marks that a user liked a comment.
type CommentLike struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CommentID uint      `gorm:"index:idx_comment_like,unique;not null" json:"comment_id"`
	UserID    uint      `gorm:"index:idx_comment_like,unique;not null" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}
