package controllers

import (
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/plumstudio/atelier/models"
	"github.com/plumstudio/atelier/utils"
)

// CommentController handles the class comment threads: paginated top-level
// comments with their replies attached, likes and moderation.
type CommentController struct {
	db *gorm.DB
}

// NewCommentController creates a new CommentController instance.
func NewCommentController(db *gorm.DB) *CommentController {
	return &CommentController{db: db}
}

// ListComments returns one page of top-level comments for a class with all
// their replies attached. sort=latest orders by newest first; sort=popular by
// like count. The pagination total counts top-level comments only.
func (cc *CommentController) ListComments(ctx *gin.Context) {
	slug := strings.TrimSpace(ctx.Param("slug"))
	var cls models.Class
	if err := cc.db.Select("id").Where("slug = ? AND is_published = ?", slug, true).First(&cls).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40420, "class not found")
		return
	}
	classID := cls.ID
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))

	order := "created_at DESC"
	if ctx.Query("sort") == "popular" {
		order = "like_count DESC, created_at DESC"
	}

	base := cc.db.Model(&models.Comment{}).
		Where("class_id = ? AND parent_id IS NULL AND is_visible = ?", classID, true)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50150, "failed to count comments")
		return
	}

	var comments []models.Comment
	err := cc.db.Preload("User").
		Where("class_id = ? AND parent_id IS NULL AND is_visible = ?", classID, true).
		Order(order).
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&comments).Error
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50151, "failed to list comments")
		return
	}

	// Replies ride along with their parent regardless of pagination.
	if len(comments) > 0 {
		parentIDs := make([]uint, 0, len(comments))
		for _, c := range comments {
			parentIDs = append(parentIDs, c.ID)
		}
		var replies []models.Comment
		err := cc.db.Preload("User").
			Where("parent_id IN ? AND is_visible = ?", parentIDs, true).
			Order("created_at ASC").
			Find(&replies).Error
		if err != nil {
			utils.Error(ctx, http.StatusInternalServerError, 50152, "failed to load replies")
			return
		}
		byParent := map[uint][]models.Comment{}
		for _, r := range replies {
			byParent[*r.ParentID] = append(byParent[*r.ParentID], r)
		}
		for i := range comments {
			comments[i].Replies = byParent[comments[i].ID]
		}
	}

	utils.Success(ctx, gin.H{
		"items": comments,
		"pagination": gin.H{
			"page":        page,
			"page_size":   pageSize,
			"total":       total,
			"total_pages": totalPages(total, pageSize),
		},
	})
}

// CreateComment posts a comment or a reply on a published class. Replies are
// one level deep: a parent comment must itself be top-level.
func (cc *CommentController) CreateComment(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	slug := strings.TrimSpace(ctx.Param("slug"))

	var req struct {
		Content  string `json:"content" binding:"required"`
		ParentID *uint  `json:"parent_id"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40151, "invalid request payload")
		return
	}
	content := utils.Sanitize(req.Content)
	if content == "" {
		utils.Error(ctx, http.StatusBadRequest, 40152, "content cannot be empty")
		return
	}

	var cls models.Class
	if err := cc.db.Where("slug = ? AND is_published = ?", slug, true).First(&cls).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40420, "class not found")
		return
	}

	if req.ParentID != nil {
		var parent models.Comment
		if err := cc.db.First(&parent, *req.ParentID).Error; err != nil {
			utils.Error(ctx, http.StatusNotFound, 40450, "parent comment not found")
			return
		}
		if parent.ClassID != cls.ID {
			utils.Error(ctx, http.StatusBadRequest, 40153, "parent comment belongs to another class")
			return
		}
		if parent.ParentID != nil {
			utils.Error(ctx, http.StatusBadRequest, 40154, "replies cannot be nested")
			return
		}
	}

	comment := models.Comment{
		ClassID:   cls.ID,
		ParentID:  req.ParentID,
		UserID:    userID,
		Content:   content,
		IsVisible: true,
	}
	err := cc.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&comment).Error; err != nil {
			return err
		}
		return tx.Model(&models.Class{}).Where("id = ?", cls.ID).
			UpdateColumn("comment_count", gorm.Expr("comment_count + 1")).Error
	})
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50153, "failed to create comment")
		return
	}

	if err := cc.db.Preload("User").First(&comment, comment.ID).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50154, "failed to load comment")
		return
	}
	utils.InvalidateByPrefix("cache:classes:detail:" + cls.Slug)
	utils.Success(ctx, gin.H{"comment": comment})
}

// DeleteComment lets the comment owner or an admin delete a comment along
// with its replies.
func (cc *CommentController) DeleteComment(ctx *gin.Context) {
	commentID, err := strconv.ParseUint(ctx.Param("commentId"), 10, 32)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40155, "invalid comment id")
		return
	}

	var comment models.Comment
	if err := cc.db.First(&comment, commentID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40450, "comment not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50155, "failed to load comment")
		return
	}

	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	if comment.UserID != userID && !isAdmin(ctx) {
		utils.Error(ctx, http.StatusForbidden, 40350, "you can only delete your own comment")
		return
	}

	err = cc.db.Transaction(func(tx *gorm.DB) error {
		var removed int64 = 1
		if comment.ParentID == nil {
			res := tx.Where("parent_id = ?", comment.ID).Delete(&models.Comment{})
			if res.Error != nil {
				return res.Error
			}
			removed += res.RowsAffected
		}
		if err := tx.Where("comment_id = ?", comment.ID).Delete(&models.CommentLike{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&comment).Error; err != nil {
			return err
		}
		return tx.Model(&models.Class{}).Where("id = ?", comment.ClassID).
			UpdateColumn("comment_count", gorm.Expr("comment_count - ?", removed)).Error
	})
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50156, "failed to delete comment")
		return
	}
	utils.Success(ctx, gin.H{"message": "comment deleted"})
}

// ToggleCommentLike flips the authenticated user's like on a comment.
func (cc *CommentController) ToggleCommentLike(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	commentID, err := strconv.ParseUint(ctx.Param("commentId"), 10, 32)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40155, "invalid comment id")
		return
	}

	var comment models.Comment
	if err := cc.db.Where("is_visible = ?", true).First(&comment, commentID).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40450, "comment not found")
		return
	}

	var active bool
	err = cc.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("comment_id = ? AND user_id = ?", comment.ID, userID).Delete(&models.CommentLike{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			active = false
			return tx.Model(&models.Comment{}).Where("id = ?", comment.ID).
				UpdateColumn("like_count", gorm.Expr("like_count - 1")).Error
		}
		active = true
		if err := tx.Create(&models.CommentLike{CommentID: comment.ID, UserID: userID}).Error; err != nil {
			return err
		}
		return tx.Model(&models.Comment{}).Where("id = ?", comment.ID).
			UpdateColumn("like_count", gorm.Expr("like_count + 1")).Error
	})
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50157, "failed to toggle like")
		return
	}

	var count int64
	_ = cc.db.Model(&models.Comment{}).Where("id = ?", comment.ID).Select("like_count").Scan(&count).Error
	utils.Success(ctx, gin.H{"active": active, "count": count})
}

// AdminSetVisibility hides or restores a batch of comments. Updates fan out
// concurrently and the response reports each id individually, so one bad id
// does not sink the batch.
func (cc *CommentController) AdminSetVisibility(ctx *gin.Context) {
	var req struct {
		IDs       []uint `json:"ids" binding:"required,min=1"`
		IsVisible *bool  `json:"is_visible" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40156, "invalid request payload")
		return
	}

	ids := utils.UniqueUint(req.IDs)

	type result struct {
		ID uint   `json:"id"`
		OK bool   `json:"ok"`
		Err string `json:"error,omitempty"`
	}
	results := make([]result, len(ids))

	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id uint) {
			defer wg.Done()
			res := cc.db.Model(&models.Comment{}).Where("id = ?", id).
				Update("is_visible", *req.IsVisible)
			switch {
			case res.Error != nil:
				results[i] = result{ID: id, OK: false, Err: "update failed"}
			case res.RowsAffected == 0:
				results[i] = result{ID: id, OK: false, Err: "not found"}
			default:
				results[i] = result{ID: id, OK: true}
			}
		}(i, id)
	}
	wg.Wait()

	utils.Success(ctx, gin.H{"results": results})
}
