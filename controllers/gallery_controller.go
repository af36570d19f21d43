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

// GalleryController serves the public gallery pages and the admin gallery CRUD.
type GalleryController struct {
	db  *gorm.DB
	svc *services.GalleryService
}

// NewGalleryController creates a new GalleryController instance.
func NewGalleryController(db *gorm.DB, svc *services.GalleryService) *GalleryController {
	return &GalleryController{db: db, svc: svc}
}

// ListGalleries returns published galleries filtered by category or tag slug.
func (g *GalleryController) ListGalleries(ctx *gin.Context) {
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))
	category := strings.TrimSpace(ctx.Query("category"))
	tag := strings.TrimSpace(ctx.Query("tag"))

	cacheKey := fmt.Sprintf("cache:galleries:list:cat=%s:tag=%s:page=%d:size=%d", category, tag, page, pageSize)
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	query := g.db.Model(&models.Gallery{}).Where("is_published = ?", true)
	if category != "" {
		query = query.Where("category = ?", category)
	}
	if tag != "" {
		query = query.Where("id IN (?)", g.db.Model(&models.GalleryTag{}).
			Select("gallery_id").
			Where("tag_id IN (?)", g.db.Model(&models.Tag{}).Select("id").Where("slug = ?", tag)))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50120, "failed to count galleries")
		return
	}
	var galleries []models.Gallery
	err := query.Preload("Author").Preload("Tags").
		Order("created_at DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&galleries).Error
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50121, "failed to list galleries")
		return
	}

	payload := gin.H{
		"items": galleries,
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

// GetGalleryBySlug returns a published gallery detail and bumps its view
// counter.
func (g *GalleryController) GetGalleryBySlug(ctx *gin.Context) {
	slug := strings.TrimSpace(ctx.Param("slug"))
	if slug == "" {
		utils.Error(ctx, http.StatusBadRequest, 40130, "missing slug")
		return
	}

	_ = g.db.Model(&models.Gallery{}).
		Where("slug = ? AND is_published = ?", slug, true).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error

	cacheKey := "cache:galleries:detail:" + slug
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	var gal models.Gallery
	err := g.db.Preload("Author").Preload("Tags").
		Where("slug = ? AND is_published = ?", slug, true).
		First(&gal).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40430, "gallery not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50122, "failed to load gallery")
		return
	}

	payload := gin.H{"gallery": gal}
	utils.CacheSetResponse(cacheKey, payload, 5*time.Minute)
	utils.Success(ctx, payload)
}

// ToggleGalleryLike flips the authenticated user's like on a gallery.
func (g *GalleryController) ToggleGalleryLike(ctx *gin.Context) {
	g.toggleReaction(ctx, "like")
}

// ToggleGallerySave flips the authenticated user's save on a gallery.
func (g *GalleryController) ToggleGallerySave(ctx *gin.Context) {
	g.toggleReaction(ctx, "save")
}

func (g *GalleryController) toggleReaction(ctx *gin.Context, kind string) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	slug := strings.TrimSpace(ctx.Param("slug"))

	var gal models.Gallery
	if err := g.db.Where("slug = ? AND is_published = ?", slug, true).First(&gal).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40430, "gallery not found")
		return
	}

	column := "like_count"
	if kind == "save" {
		column = "save_count"
	}

	var active bool
	err := g.db.Transaction(func(tx *gorm.DB) error {
		var res *gorm.DB
		if kind == "like" {
			res = tx.Where("gallery_id = ? AND user_id = ?", gal.ID, userID).Delete(&models.GalleryLike{})
		} else {
			res = tx.Where("gallery_id = ? AND user_id = ?", gal.ID, userID).Delete(&models.GallerySave{})
		}
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			active = false
			return tx.Model(&models.Gallery{}).Where("id = ?", gal.ID).
				UpdateColumn(column, gorm.Expr(column+" - 1")).Error
		}
		active = true
		if kind == "like" {
			if err := tx.Create(&models.GalleryLike{GalleryID: gal.ID, UserID: userID}).Error; err != nil {
				return err
			}
		} else {
			if err := tx.Create(&models.GallerySave{GalleryID: gal.ID, UserID: userID}).Error; err != nil {
				return err
			}
		}
		return tx.Model(&models.Gallery{}).Where("id = ?", gal.ID).
			UpdateColumn(column, gorm.Expr(column+" + 1")).Error
	})
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50123, "failed to toggle "+kind)
		return
	}

	utils.InvalidateByPrefix("cache:galleries:detail:" + gal.Slug)

	var count int64
	_ = g.db.Model(&models.Gallery{}).Where("id = ?", gal.ID).Select(column).Scan(&count).Error
	utils.Success(ctx, gin.H{"active": active, "count": count})
}

// AdminListGalleries returns all galleries including drafts.
func (g *GalleryController) AdminListGalleries(ctx *gin.Context) {
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))
	search := strings.TrimSpace(ctx.Query("search"))

	query := g.db.Model(&models.Gallery{})
	if search != "" {
		query = query.Where("title LIKE ?", "%"+search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50124, "failed to count galleries")
		return
	}
	var galleries []models.Gallery
	err := query.Preload("Author").Preload("Tags").
		Order("created_at DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&galleries).Error
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50125, "failed to list galleries")
		return
	}
	utils.Success(ctx, gin.H{
		"items": galleries,
		"pagination": gin.H{
			"page":        page,
			"page_size":   pageSize,
			"total":       total,
			"total_pages": totalPages(total, pageSize),
		},
	})
}

// CreateGallery handles the admin multipart create form.
func (g *GalleryController) CreateGallery(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	in, ok := g.bindGalleryForm(ctx)
	if !ok {
		return
	}
	if in.Title == "" {
		utils.Error(ctx, http.StatusBadRequest, 40132, "title cannot be empty")
		return
	}

	gal, err := g.svc.Create(userID, *in)
	if err != nil {
		utils.Sugar.Errorw("gallery create failed", "error", err)
		utils.Error(ctx, http.StatusInternalServerError, 50126, "failed to create gallery")
		return
	}

	utils.InvalidateByPrefix("cache:galleries:")
	utils.InvalidateByPrefix("cache:tags:")
	utils.Success(ctx, gin.H{"gallery": gal})
}

// UpdateGallery handles the admin multipart edit form, including image list
// reconciliation via keep_image_urls and added_images fields.
func (g *GalleryController) UpdateGallery(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40131, "invalid gallery id")
		return
	}
	in, ok := g.bindGalleryForm(ctx)
	if !ok {
		return
	}
	if in.Title == "" {
		utils.Error(ctx, http.StatusBadRequest, 40132, "title cannot be empty")
		return
	}

	gal, err := g.svc.Update(uint(id), *in)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40430, "gallery not found")
			return
		}
		utils.Sugar.Errorw("gallery update failed", "id", id, "error", err)
		utils.Error(ctx, http.StatusInternalServerError, 50127, "failed to update gallery")
		return
	}

	utils.InvalidateByPrefix("cache:galleries:")
	utils.InvalidateByPrefix("cache:tags:")
	utils.Success(ctx, gin.H{"gallery": gal})
}

// DeleteGallery removes a gallery and its storage folder.
func (g *GalleryController) DeleteGallery(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40131, "invalid gallery id")
		return
	}
	if err := g.svc.Delete(uint(id)); err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40430, "gallery not found")
			return
		}
		utils.Sugar.Errorw("gallery delete failed", "id", id, "error", err)
		utils.Error(ctx, http.StatusInternalServerError, 50128, "failed to delete gallery")
		return
	}
	utils.InvalidateByPrefix("cache:galleries:")
	utils.InvalidateByPrefix("cache:tags:")
	utils.Success(ctx, gin.H{"message": "gallery deleted"})
}

// SetGalleryPublishState toggles draft/published.
func (g *GalleryController) SetGalleryPublishState(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40131, "invalid gallery id")
		return
	}
	var req struct {
		IsPublished *bool `json:"is_published" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40133, "invalid request payload")
		return
	}

	res := g.db.Model(&models.Gallery{}).Where("id = ?", id).Update("is_published", *req.IsPublished)
	if res.Error != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50129, "failed to update publish state")
		return
	}
	if res.RowsAffected == 0 {
		utils.Error(ctx, http.StatusNotFound, 40430, "gallery not found")
		return
	}
	utils.InvalidateByPrefix("cache:galleries:")
	utils.Success(ctx, gin.H{"id": id, "is_published": *req.IsPublished})
}

func (g *GalleryController) bindGalleryForm(ctx *gin.Context) (*services.GalleryInput, bool) {
	form, err := ctx.MultipartForm()
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40134, "invalid multipart form")
		return nil, false
	}

	thumbnail, ok := formFile(form, "thumbnail")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40135, "thumbnail upload failed or too large")
		return nil, false
	}
	cover, ok := formFile(form, "cover")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40135, "cover upload failed or too large")
		return nil, false
	}
	contentImages, ok := collectTempImages(form)
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40135, "body image upload failed or too large")
		return nil, false
	}
	added, ok := collectFiles(form, "added_images")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40135, "image upload failed or too large")
		return nil, false
	}

	var keep []string
	for _, v := range form.Value["keep_image_urls"] {
		v = strings.TrimSpace(v)
		if v != "" {
			keep = append(keep, v)
		}
	}

	return &services.GalleryInput{
		Title:         utils.SanitizeStrict(strings.TrimSpace(formValue(form, "title"))),
		Category:      utils.SanitizeStrict(strings.TrimSpace(formValue(form, "category"))),
		Body:          utils.Sanitize(formValue(form, "body")),
		TagString:     utils.SanitizeStrict(formValue(form, "tags")),
		IsPublished:   formBool(form, "is_published"),
		Thumbnail:     thumbnail,
		Cover:         cover,
		ContentImages: contentImages,
		KeepImageURLs: keep,
		AddedImages:   added,
	}, true
}
