package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/plumstudio/atelier/models"
	"github.com/plumstudio/atelier/utils"
)

// TagController serves the public tag list used for filtering classes and
// galleries.
type TagController struct {
	db *gorm.DB
}

// NewTagController creates a new TagController instance.
func NewTagController(db *gorm.DB) *TagController {
	return &TagController{db: db}
}

// ListTags returns tags that are attached to at least one item, most used
// first.
func (t *TagController) ListTags(ctx *gin.Context) {
	cacheKey := "cache:tags:list"
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	var tags []models.Tag
	err := t.db.Where("usage_count > 0").
		Order("usage_count DESC, name ASC").
		Find(&tags).Error
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50170, "failed to list tags")
		return
	}

	payload := gin.H{"items": tags}
	utils.CacheSetResponse(cacheKey, payload, 30*time.Minute)
	utils.Success(ctx, payload)
}
