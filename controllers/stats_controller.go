package controllers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/plumstudio/atelier/models"
	"github.com/plumstudio/atelier/utils"
)

// StatsController aggregates the numbers shown on the admin dashboard.
type StatsController struct {
	db *gorm.DB
}

// NewStatsController creates a new StatsController instance.
func NewStatsController(db *gorm.DB) *StatsController {
	return &StatsController{db: db}
}

// GetDashboard returns entity counts, today's traffic and the most viewed
// classes. Individual query failures degrade to zero instead of failing the
// whole endpoint.
func (s *StatsController) GetDashboard(ctx *gin.Context) {
	counts := gin.H{}
	countInto := func(name string, model interface{}, conds ...interface{}) {
		var n int64
		q := s.db.Model(model)
		if len(conds) > 0 {
			q = q.Where(conds[0], conds[1:]...)
		}
		if err := q.Count(&n).Error; err != nil {
			n = 0
		}
		counts[name] = n
	}

	countInto("users", &models.User{})
	countInto("classes", &models.Class{})
	countInto("galleries", &models.Gallery{})
	countInto("news", &models.News{})
	countInto("comments", &models.Comment{})
	countInto("unanswered_inquiries", &models.Inquiry{}, "is_answered = ?", false)

	var todayViews int64
	today := time.Now().In(time.Local).Format("2006-01-02")
	if err := s.db.Model(&models.PageView{}).
		Where("date = ?", today).
		Select("COALESCE(SUM(count),0)").
		Scan(&todayViews).Error; err != nil {
		todayViews = 0
	}

	var topClasses []models.Class
	if err := s.db.Where("is_published = ?", true).
		Order("view_count DESC").
		Limit(5).
		Find(&topClasses).Error; err != nil {
		topClasses = nil
	}

	utils.Success(ctx, gin.H{
		"counts":      counts,
		"today_views": todayViews,
		"top_classes": topClasses,
	})
}

// GetDailyViews returns a per-day traffic series for the last `days` days
// (default 14, capped at 90).
func (s *StatsController) GetDailyViews(ctx *gin.Context) {
	days := 14
	if n, err := strconv.Atoi(ctx.Query("days")); err == nil && n > 0 {
		days = n
		if days > 90 {
			days = 90
		}
	}

	since := time.Now().In(time.Local).AddDate(0, 0, -(days - 1)).Format("2006-01-02")

	type dailyRow struct {
		Date  time.Time `json:"date"`
		Views int64     `json:"views"`
	}
	var rows []dailyRow
	err := s.db.Model(&models.PageView{}).
		Select("date, COALESCE(SUM(count),0) AS views").
		Where("date >= ?", since).
		Group("date").
		Order("date ASC").
		Scan(&rows).Error
	if err != nil {
		utils.Error(ctx, 500, 50180, "failed to load daily views")
		return
	}

	utils.Success(ctx, gin.H{"days": days, "items": rows})
}
