package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/plumstudio/atelier/config"
	"github.com/plumstudio/atelier/controllers"
	"github.com/plumstudio/atelier/middleware"
	"github.com/plumstudio/atelier/services"
	"github.com/plumstudio/atelier/storage"
	"github.com/plumstudio/atelier/utils"
)

// Stores groups the per-content-type object storage backends. Each content
// type gets its own bucket so numeric folder names never collide.
type Stores struct {
	Classes   storage.Store
	Galleries storage.Store
	News      storage.Store
}

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(db *gorm.DB, stores Stores) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.MaxMultipartMemory = 64 << 20

	// HTTP access log goes to its own rolling file, apart from the app log
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	// Record PV after each request
	r.Use(middleware.PageViewRecorder(db))

	// Uploaded media is served straight off disk
	r.Static(cfg.StorageBaseURL, cfg.StorageRoot)

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	classService := services.NewClassService(db, stores.Classes)
	galleryService := services.NewGalleryService(db, stores.Galleries)
	newsService := services.NewNewsService(db, stores.News)

	authController := controllers.NewAuthController(db)
	classController := controllers.NewClassController(db, classService)
	galleryController := controllers.NewGalleryController(db, galleryService)
	newsController := controllers.NewNewsController(db, newsService)
	commentController := controllers.NewCommentController(db)
	inquiryController := controllers.NewInquiryController(db)
	tagController := controllers.NewTagController(db)
	statsController := controllers.NewStatsController(db)

	api := r.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware())
	authGroup.POST("/register", authController.Register)
	authGroup.POST("/login", authController.Login)
	authGroup.POST("/logout", middleware.AuthRequired(), authController.Logout)
	authGroup.GET("/me", middleware.AuthRequired(), authController.Me)
	authGroup.PATCH("/profile", middleware.AuthRequired(), authController.UpdateProfile)

	// Public content surface
	api.GET("/classes", classController.ListClasses)
	api.GET("/classes/:slug", classController.GetClassBySlug)
	api.GET("/galleries", galleryController.ListGalleries)
	api.GET("/galleries/:slug", galleryController.GetGalleryBySlug)
	api.GET("/news", newsController.ListNews)
	api.GET("/news/:slug", newsController.GetNewsBySlug)
	api.GET("/tags", tagController.ListTags)
	api.GET("/classes/:slug/comments", commentController.ListComments)
	api.POST("/inquiries", middleware.RateLimitMiddleware(), inquiryController.CreateInquiry)

	// Authenticated member surface
	protected := api.Group("")
	protected.Use(middleware.AuthRequired(), middleware.RateLimitMiddleware())
	protected.POST("/classes/:slug/like", classController.ToggleLike)
	protected.POST("/classes/:slug/save", classController.ToggleSave)
	protected.GET("/users/me/saved-classes", classController.ListSavedClasses)
	protected.POST("/galleries/:slug/like", galleryController.ToggleGalleryLike)
	protected.POST("/galleries/:slug/save", galleryController.ToggleGallerySave)
	protected.POST("/classes/:slug/comments", commentController.CreateComment)
	protected.DELETE("/comments/:commentId", commentController.DeleteComment)
	protected.POST("/comments/:commentId/like", commentController.ToggleCommentLike)

	// Back office. AdminRequired answers 404 for anyone without the role.
	admin := api.Group("/admin")
	admin.Use(middleware.AdminRequired())
	admin.GET("/users", authController.ListUsers)

	admin.GET("/classes", classController.AdminListClasses)
	admin.POST("/classes", classController.CreateClass)
	admin.PUT("/classes/:id", classController.UpdateClass)
	admin.DELETE("/classes/:id", classController.DeleteClass)
	admin.PATCH("/classes/:id/publish", classController.SetClassPublishState)

	admin.GET("/galleries", galleryController.AdminListGalleries)
	admin.POST("/galleries", galleryController.CreateGallery)
	admin.PUT("/galleries/:id", galleryController.UpdateGallery)
	admin.DELETE("/galleries/:id", galleryController.DeleteGallery)
	admin.PATCH("/galleries/:id/publish", galleryController.SetGalleryPublishState)

	admin.GET("/news", newsController.AdminListNews)
	admin.POST("/news", newsController.CreateNews)
	admin.PUT("/news/:id", newsController.UpdateNews)
	admin.DELETE("/news/:id", newsController.DeleteNews)
	admin.PATCH("/news/:id/publish", newsController.SetNewsPublishState)

	admin.PATCH("/comments/visibility", commentController.AdminSetVisibility)

	admin.GET("/inquiries", inquiryController.AdminListInquiries)
	admin.PATCH("/inquiries/:id", inquiryController.AdminSetInquiryAnswered)
	admin.DELETE("/inquiries/:id", inquiryController.AdminDeleteInquiry)

	admin.GET("/stats/dashboard", statsController.GetDashboard)
	admin.GET("/stats/daily-views", statsController.GetDailyViews)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, 40400, "not found")
	})

	return r
}
