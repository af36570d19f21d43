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

// NewsController serves public news articles and the admin news CRUD. News has
// no tags, comments or reactions.
type NewsController struct {
	db  *gorm.DB
	svc *services.NewsService
}

// NewNewsController creates a new NewsController instance.
func NewNewsController(db *gorm.DB, svc *services.NewsService) *NewsController {
	return &NewsController{db: db, svc: svc}
}

// ListNews returns published news, newest first.
func (n *NewsController) ListNews(ctx *gin.Context) {
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))
	category := strings.TrimSpace(ctx.Query("category"))

	cacheKey := fmt.Sprintf("cache:news:list:cat=%s:page=%d:size=%d", category, page, pageSize)
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	query := n.db.Model(&models.News{}).Where("is_published = ?", true)
	if category != "" {
		query = query.Where("category = ?", category)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50140, "failed to count news")
		return
	}
	var items []models.News
	err := query.Preload("Author").
		Order("created_at DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&items).Error
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50141, "failed to list news")
		return
	}

	payload := gin.H{
		"items": items,
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

// GetNewsBySlug returns a published article and bumps its view counter.
func (n *NewsController) GetNewsBySlug(ctx *gin.Context) {
	slug := strings.TrimSpace(ctx.Param("slug"))
	if slug == "" {
		utils.Error(ctx, http.StatusBadRequest, 40140, "missing slug")
		return
	}

	_ = n.db.Model(&models.News{}).
		Where("slug = ? AND is_published = ?", slug, true).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error

	cacheKey := "cache:news:detail:" + slug
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	var article models.News
	err := n.db.Preload("Author").
		Where("slug = ? AND is_published = ?", slug, true).
		First(&article).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40440, "news not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50142, "failed to load news")
		return
	}

	payload := gin.H{"news": article}
	utils.CacheSetResponse(cacheKey, payload, 5*time.Minute)
	utils.Success(ctx, payload)
}

// AdminListNews returns all news including drafts.
func (n *NewsController) AdminListNews(ctx *gin.Context) {
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))
	search := strings.TrimSpace(ctx.Query("search"))

	query := n.db.Model(&models.News{})
	if search != "" {
		query = query.Where("title LIKE ?", "%"+search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50143, "failed to count news")
		return
	}
	var items []models.News
	err := query.Preload("Author").
		Order("created_at DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&items).Error
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50144, "failed to list news")
		return
	}
	utils.Success(ctx, gin.H{
		"items": items,
		"pagination": gin.H{
			"page":        page,
			"page_size":   pageSize,
			"total":       total,
			"total_pages": totalPages(total, pageSize),
		},
	})
}

// CreateNews handles the admin multipart create form.
func (n *NewsController) CreateNews(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	in, ok := n.bindNewsForm(ctx)
	if !ok {
		return
	}
	if in.Title == "" {
		utils.Error(ctx, http.StatusBadRequest, 40141, "title cannot be empty")
		return
	}

	article, err := n.svc.Create(userID, *in)
	if err != nil {
		utils.Sugar.Errorw("news create failed", "error", err)
		utils.Error(ctx, http.StatusInternalServerError, 50145, "failed to create news")
		return
	}

	utils.InvalidateByPrefix("cache:news:")
	utils.Success(ctx, gin.H{"news": article})
}

// UpdateNews handles the admin multipart edit form.
func (n *NewsController) UpdateNews(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40142, "invalid news id")
		return
	}
	in, ok := n.bindNewsForm(ctx)
	if !ok {
		return
	}
	if in.Title == "" {
		utils.Error(ctx, http.StatusBadRequest, 40141, "title cannot be empty")
		return
	}

	article, err := n.svc.Update(uint(id), *in)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40440, "news not found")
			return
		}
		utils.Sugar.Errorw("news update failed", "id", id, "error", err)
		utils.Error(ctx, http.StatusInternalServerError, 50146, "failed to update news")
		return
	}

	utils.InvalidateByPrefix("cache:news:")
	utils.Success(ctx, gin.H{"news": article})
}

// DeleteNews removes an article and its storage folder.
func (n *NewsController) DeleteNews(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40142, "invalid news id")
		return
	}
	if err := n.svc.Delete(uint(id)); err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40440, "news not found")
			return
		}
		utils.Sugar.Errorw("news delete failed", "id", id, "error", err)
		utils.Error(ctx, http.StatusInternalServerError, 50147, "failed to delete news")
		return
	}
	utils.InvalidateByPrefix("cache:news:")
	utils.Success(ctx, gin.H{"message": "news deleted"})
}

// SetNewsPublishState toggles draft/published.
func (n *NewsController) SetNewsPublishState(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40142, "invalid news id")
		return
	}
	var req struct {
		IsPublished *bool `json:"is_published" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40143, "invalid request payload")
		return
	}

	res := n.db.Model(&models.News{}).Where("id = ?", id).Update("is_published", *req.IsPublished)
	if res.Error != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50148, "failed to update publish state")
		return
	}
	if res.RowsAffected == 0 {
		utils.Error(ctx, http.StatusNotFound, 40440, "news not found")
		return
	}
	utils.InvalidateByPrefix("cache:news:")
	utils.Success(ctx, gin.H{"id": id, "is_published": *req.IsPublished})
}

func (n *NewsController) bindNewsForm(ctx *gin.Context) (*services.NewsInput, bool) {
	form, err := ctx.MultipartForm()
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40144, "invalid multipart form")
		return nil, false
	}

	thumbnail, ok := formFile(form, "thumbnail")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40145, "thumbnail upload failed or too large")
		return nil, false
	}
	contentImages, ok := collectTempImages(form)
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40145, "body image upload failed or too large")
		return nil, false
	}

	return &services.NewsInput{
		Title:         utils.SanitizeStrict(strings.TrimSpace(formValue(form, "title"))),
		Category:      utils.SanitizeStrict(strings.TrimSpace(formValue(form, "category"))),
		Body:          utils.Sanitize(formValue(form, "body")),
		IsPublished:   formBool(form, "is_published"),
		Thumbnail:     thumbnail,
		ContentImages: contentImages,
	}, true
}
