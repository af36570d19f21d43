package controllers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/plumstudio/atelier/models"
	"github.com/plumstudio/atelier/services"
	"github.com/plumstudio/atelier/utils"
)

// ClassController serves the public class pages and the admin class CRUD.
// Mutations go through ClassService so storage and tag side effects stay in
// one place.
type ClassController struct {
	db  *gorm.DB
	svc *services.ClassService
}

// NewClassController creates a new ClassController instance.
func NewClassController(db *gorm.DB, svc *services.ClassService) *ClassController {
	return &ClassController{db: db, svc: svc}
}

// ListClasses returns published classes, optionally filtered by category or
// tag slug. Results are cached per filter and page.
func (c *ClassController) ListClasses(ctx *gin.Context) {
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))
	category := strings.TrimSpace(ctx.Query("category"))
	tag := strings.TrimSpace(ctx.Query("tag"))

	cacheKey := fmt.Sprintf("cache:classes:list:cat=%s:tag=%s:page=%d:size=%d", category, tag, page, pageSize)
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	query := c.db.Model(&models.Class{}).Where("is_published = ?", true)
	if category != "" {
		query = query.Where("category = ?", category)
	}
	if tag != "" {
		query = query.Where("id IN (?)", c.db.Model(&models.ClassTag{}).
			Select("class_id").
			Where("tag_id IN (?)", c.db.Model(&models.Tag{}).Select("id").Where("slug = ?", tag)))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50100, "failed to count classes")
		return
	}

	var classes []models.Class
	err := query.Preload("Author").Preload("Tags").
		Order("created_at DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&classes).Error
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50101, "failed to list classes")
		return
	}

	payload := gin.H{
		"items": classes,
		"pagination": gin.H{
			"page":        page,
			"page_size":   pageSize,
			"total":       total,
			"total_pages": totalPages(total, pageSize),
		},
	}
	utils.CacheSetResponse(cacheKey, payload, 10*time.Minute)
	utils.Success(ctx, payload)
}

// GetClassBySlug returns a published class detail and bumps its view counter.
// The counter update is fire-and-forget; detail payloads are cached briefly so
// the displayed count may lag.
func (c *ClassController) GetClassBySlug(ctx *gin.Context) {
	slug := strings.TrimSpace(ctx.Param("slug"))
	if slug == "" {
		utils.Error(ctx, http.StatusBadRequest, 40100, "missing slug")
		return
	}

	_ = c.db.Model(&models.Class{}).
		Where("slug = ? AND is_published = ?", slug, true).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error

	cacheKey := "cache:classes:detail:" + slug
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	var cls models.Class
	err := c.db.Preload("Author").Preload("Tags").
		Where("slug = ? AND is_published = ?", slug, true).
		First(&cls).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40420, "class not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50102, "failed to load class")
		return
	}

	payload := gin.H{"class": cls}
	utils.CacheSetResponse(cacheKey, payload, 5*time.Minute)
	utils.Success(ctx, payload)
}

// ToggleLike flips the authenticated user's like on a class and keeps the
// denormalized counter in step inside one transaction.
func (c *ClassController) ToggleLike(ctx *gin.Context) {
	c.toggleReaction(ctx, "like")
}

// ToggleSave flips the authenticated user's save on a class.
func (c *ClassController) ToggleSave(ctx *gin.Context) {
	c.toggleReaction(ctx, "save")
}

func (c *ClassController) toggleReaction(ctx *gin.Context, kind string) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	slug := strings.TrimSpace(ctx.Param("slug"))

	var cls models.Class
	if err := c.db.Where("slug = ? AND is_published = ?", slug, true).First(&cls).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40420, "class not found")
		return
	}

	column := "like_count"
	if kind == "save" {
		column = "save_count"
	}

	var active bool
	err := c.db.Transaction(func(tx *gorm.DB) error {
		var res *gorm.DB
		if kind == "like" {
			res = tx.Where("class_id = ? AND user_id = ?", cls.ID, userID).Delete(&models.ClassLike{})
		} else {
			res = tx.Where("class_id = ? AND user_id = ?", cls.ID, userID).Delete(&models.ClassSave{})
		}
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			active = false
			return tx.Model(&models.Class{}).Where("id = ?", cls.ID).
				UpdateColumn(column, gorm.Expr(column+" - 1")).Error
		}
		active = true
		if kind == "like" {
			if err := tx.Create(&models.ClassLike{ClassID: cls.ID, UserID: userID}).Error; err != nil {
				return err
			}
		} else {
			if err := tx.Create(&models.ClassSave{ClassID: cls.ID, UserID: userID}).Error; err != nil {
				return err
			}
		}
		return tx.Model(&models.Class{}).Where("id = ?", cls.ID).
			UpdateColumn(column, gorm.Expr(column+" + 1")).Error
	})
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50103, "failed to toggle "+kind)
		return
	}

	utils.InvalidateByPrefix("cache:classes:detail:" + cls.Slug)

	var count int64
	_ = c.db.Model(&models.Class{}).Where("id = ?", cls.ID).Select(column).Scan(&count).Error
	utils.Success(ctx, gin.H{"active": active, "count": count})
}

// ListSavedClasses returns the authenticated user's saved classes, newest
// save first.
func (c *ClassController) ListSavedClasses(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))

	base := c.db.Model(&models.ClassSave{}).Where("user_id = ?", userID)
	var total int64
	if err := base.Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50104, "failed to count saved classes")
		return
	}

	var classes []models.Class
	err := c.db.Preload("Author").Preload("Tags").
		Joins("JOIN class_saves ON class_saves.class_id = classes.id").
		Where("class_saves.user_id = ? AND classes.is_published = ?", userID, true).
		Order("class_saves.created_at DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&classes).Error
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50105, "failed to list saved classes")
		return
	}
	utils.Success(ctx, gin.H{
		"items": classes,
		"pagination": gin.H{
			"page":        page,
			"page_size":   pageSize,
			"total":       total,
			"total_pages": totalPages(total, pageSize),
		},
	})
}

// AdminListClasses returns all classes including drafts, with optional search.
func (c *ClassController) AdminListClasses(ctx *gin.Context) {
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))
	search := strings.TrimSpace(ctx.Query("search"))

	query := c.db.Model(&models.Class{})
	if search != "" {
		query = query.Where("title LIKE ?", "%"+search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50106, "failed to count classes")
		return
	}
	var classes []models.Class
	err := query.Preload("Author").Preload("Tags").
		Order("created_at DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&classes).Error
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50107, "failed to list classes")
		return
	}
	utils.Success(ctx, gin.H{
		"items": classes,
		"pagination": gin.H{
			"page":        page,
			"page_size":   pageSize,
			"total":       total,
			"total_pages": totalPages(total, pageSize),
		},
	})
}

// CreateClass handles the admin multipart create form.
func (c *ClassController) CreateClass(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	in, ok := c.bindClassForm(ctx)
	if !ok {
		return
	}
	if in.Title == "" {
		utils.Error(ctx, http.StatusBadRequest, 40102, "title cannot be empty")
		return
	}

	cls, err := c.svc.Create(userID, *in)
	if err != nil {
		utils.Sugar.Errorw("class create failed", "error", err)
		utils.Error(ctx, http.StatusInternalServerError, 50108, "failed to create class")
		return
	}

	utils.InvalidateByPrefix("cache:classes:")
	utils.InvalidateByPrefix("cache:tags:")
	utils.Success(ctx, gin.H{"class": cls})
}

// UpdateClass handles the admin multipart edit form. The slug never changes.
func (c *ClassController) UpdateClass(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40101, "invalid class id")
		return
	}
	in, ok := c.bindClassForm(ctx)
	if !ok {
		return
	}
	if in.Title == "" {
		utils.Error(ctx, http.StatusBadRequest, 40102, "title cannot be empty")
		return
	}

	cls, err := c.svc.Update(uint(id), *in)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40420, "class not found")
			return
		}
		utils.Sugar.Errorw("class update failed", "id", id, "error", err)
		utils.Error(ctx, http.StatusInternalServerError, 50109, "failed to update class")
		return
	}

	utils.InvalidateByPrefix("cache:classes:")
	utils.InvalidateByPrefix("cache:tags:")
	utils.Success(ctx, gin.H{"class": cls})
}

// DeleteClass removes a class along with its storage folder, comments and
// reactions.
func (c *ClassController) DeleteClass(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40101, "invalid class id")
		return
	}
	if err := c.svc.Delete(uint(id)); err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40420, "class not found")
			return
		}
		utils.Sugar.Errorw("class delete failed", "id", id, "error", err)
		utils.Error(ctx, http.StatusInternalServerError, 50110, "failed to delete class")
		return
	}
	utils.InvalidateByPrefix("cache:classes:")
	utils.InvalidateByPrefix("cache:tags:")
	utils.Success(ctx, gin.H{"message": "class deleted"})
}

// SetClassPublishState toggles draft/published without touching anything else.
func (c *ClassController) SetClassPublishState(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40101, "invalid class id")
		return
	}
	var req struct {
		IsPublished *bool `json:"is_published" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40103, "invalid request payload")
		return
	}

	res := c.db.Model(&models.Class{}).Where("id = ?", id).Update("is_published", *req.IsPublished)
	if res.Error != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50111, "failed to update publish state")
		return
	}
	if res.RowsAffected == 0 {
		utils.Error(ctx, http.StatusNotFound, 40420, "class not found")
		return
	}
	utils.InvalidateByPrefix("cache:classes:")
	utils.Success(ctx, gin.H{"id": id, "is_published": *req.IsPublished})
}

// bindClassForm parses the admin multipart form into a service input. It
// writes the error response itself when parsing fails.
func (c *ClassController) bindClassForm(ctx *gin.Context) (*services.ClassInput, bool) {
	form, err := ctx.MultipartForm()
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40104, "invalid multipart form")
		return nil, false
	}

	thumbnail, ok := formFile(form, "thumbnail")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40105, "thumbnail upload failed or too large")
		return nil, false
	}
	cover, ok := formFile(form, "cover")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40105, "cover upload failed or too large")
		return nil, false
	}
	contentImages, ok := collectTempImages(form)
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40105, "body image upload failed or too large")
		return nil, false
	}

	return &services.ClassInput{
		Title:         utils.SanitizeStrict(strings.TrimSpace(formValue(form, "title"))),
		Category:      utils.SanitizeStrict(strings.TrimSpace(formValue(form, "category"))),
		Body:          utils.Sanitize(formValue(form, "body")),
		TagString:     utils.SanitizeStrict(formValue(form, "tags")),
		IsPublished:   formBool(form, "is_published"),
		Thumbnail:     thumbnail,
		Cover:         cover,
		ContentImages: contentImages,
	}, true
}
