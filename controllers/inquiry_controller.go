package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/plumstudio/atelier/models"
	"github.com/plumstudio/atelier/utils"
)

// InquiryController accepts visitor contact messages and exposes them to the
// back office.
type InquiryController struct {
	db *gorm.DB
}

// NewInquiryController creates a new InquiryController instance.
func NewInquiryController(db *gorm.DB) *InquiryController {
	return &InquiryController{db: db}
}

// CreateInquiry stores a visitor message. No account required; the rate
// limiter is the only spam brake.
func (i *InquiryController) CreateInquiry(ctx *gin.Context) {
	var req struct {
		Name    string `json:"name" binding:"required,max=64"`
		Contact string `json:"contact" binding:"required,max=255"`
		Subject string `json:"subject" binding:"max=255"`
		Message string `json:"message" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40160, "invalid request payload")
		return
	}

	message := utils.SanitizeStrict(strings.TrimSpace(req.Message))
	if message == "" {
		utils.Error(ctx, http.StatusBadRequest, 40161, "message cannot be empty")
		return
	}

	inquiry := models.Inquiry{
		Name:    utils.SanitizeStrict(strings.TrimSpace(req.Name)),
		Contact: utils.SanitizeStrict(strings.TrimSpace(req.Contact)),
		Subject: utils.SanitizeStrict(strings.TrimSpace(req.Subject)),
		Message: message,
	}
	if err := i.db.Create(&inquiry).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50160, "failed to submit inquiry")
		return
	}
	utils.Success(ctx, gin.H{"inquiry": inquiry})
}

// AdminListInquiries returns inquiries for the back office, unanswered first
// by default; answered=true|false filters.
func (i *InquiryController) AdminListInquiries(ctx *gin.Context) {
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))

	query := i.db.Model(&models.Inquiry{})
	switch strings.TrimSpace(ctx.Query("answered")) {
	case "true":
		query = query.Where("is_answered = ?", true)
	case "false":
		query = query.Where("is_answered = ?", false)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50161, "failed to count inquiries")
		return
	}
	var inquiries []models.Inquiry
	err := query.Order("is_answered ASC, created_at DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&inquiries).Error
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50162, "failed to list inquiries")
		return
	}
	utils.Success(ctx, gin.H{
		"items": inquiries,
		"pagination": gin.H{
			"page":        page,
			"page_size":   pageSize,
			"total":       total,
			"total_pages": totalPages(total, pageSize),
		},
	})
}

// AdminSetInquiryAnswered flips the answered flag.
func (i *InquiryController) AdminSetInquiryAnswered(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40162, "invalid inquiry id")
		return
	}
	var req struct {
		IsAnswered *bool `json:"is_answered" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40163, "invalid request payload")
		return
	}

	res := i.db.Model(&models.Inquiry{}).Where("id = ?", id).Update("is_answered", *req.IsAnswered)
	if res.Error != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50163, "failed to update inquiry")
		return
	}
	if res.RowsAffected == 0 {
		utils.Error(ctx, http.StatusNotFound, 40460, "inquiry not found")
		return
	}
	utils.Success(ctx, gin.H{"id": id, "is_answered": *req.IsAnswered})
}

// AdminDeleteInquiry removes an inquiry.
func (i *InquiryController) AdminDeleteInquiry(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40162, "invalid inquiry id")
		return
	}
	res := i.db.Delete(&models.Inquiry{}, id)
	if res.Error != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50164, "failed to delete inquiry")
		return
	}
	if res.RowsAffected == 0 {
		utils.Error(ctx, http.StatusNotFound, 40460, "inquiry not found")
		return
	}
	utils.Success(ctx, gin.H{"message": "inquiry deleted"})
}
