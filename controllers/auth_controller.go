package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/plumstudio/atelier/models"
	"github.com/plumstudio/atelier/utils"
)

const tokenDuration = 24 * time.Hour

// AuthController handles account registration, login and profile endpoints.
type AuthController struct {
	db *gorm.DB
}

// NewAuthController creates a new AuthController instance.
func NewAuthController(db *gorm.DB) *AuthController {
	return &AuthController{db: db}
}

// Register creates a member account. The first registered account is promoted
// to admin so a fresh deployment can reach the back office.
func (a *AuthController) Register(ctx *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required,min=3,max=32"`
		Email    string `json:"email"`
		Password string `json:"password" binding:"required,min=8,max=72"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40010, "invalid request payload")
		return
	}

	username := utils.SanitizeStrict(strings.TrimSpace(req.Username))
	if username == "" {
		utils.Error(ctx, http.StatusBadRequest, 40011, "username cannot be empty")
		return
	}

	var existing int64
	if err := a.db.Model(&models.User{}).Where("username = ?", username).Count(&existing).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50010, "failed to check username")
		return
	}
	if existing > 0 {
		utils.Error(ctx, http.StatusConflict, 40910, "username already taken")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50011, "failed to hash password")
		return
	}

	role := models.RoleMember
	var userCount int64
	if err := a.db.Model(&models.User{}).Count(&userCount).Error; err == nil && userCount == 0 {
		role = models.RoleAdmin
	}

	user := models.User{
		Username:     username,
		Email:        strings.TrimSpace(req.Email),
		PasswordHash: hash,
		Role:         role,
	}
	if err := a.db.Create(&user).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50012, "failed to create user")
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Username, user.Role, tokenDuration)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50013, "failed to issue token")
		return
	}
	utils.Success(ctx, gin.H{"token": token, "user": user})
}

// Login verifies credentials and issues a JWT.
func (a *AuthController) Login(ctx *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40012, "invalid request payload")
		return
	}

	var user models.User
	if err := a.db.Where("username = ?", strings.TrimSpace(req.Username)).First(&user).Error; err != nil {
		// Same error for unknown user and wrong password
		utils.Error(ctx, http.StatusUnauthorized, 40120, "invalid username or password")
		return
	}
	if !utils.CheckPassword(user.PasswordHash, req.Password) {
		utils.Error(ctx, http.StatusUnauthorized, 40120, "invalid username or password")
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Username, user.Role, tokenDuration)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50014, "failed to issue token")
		return
	}
	utils.Success(ctx, gin.H{"token": token, "user": user})
}

// Logout revokes the presented token until its natural expiry.
func (a *AuthController) Logout(ctx *gin.Context) {
	authHeader := ctx.GetHeader("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 {
		utils.Error(ctx, http.StatusBadRequest, 40013, "missing bearer token")
		return
	}
	tokenStr := strings.TrimSpace(parts[1])
	if claims, err := utils.ParseToken(tokenStr); err == nil && claims.ExpiresAt != nil {
		utils.BlacklistToken(tokenStr, claims.ExpiresAt.Time)
	}
	utils.Success(ctx, gin.H{"message": "logged out"})
}

// Me returns the authenticated user's profile.
func (a *AuthController) Me(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	var user models.User
	if err := a.db.First(&user, userID).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40410, "user not found")
		return
	}
	utils.Success(ctx, gin.H{"user": user})
}

// UpdateProfile lets the authenticated user change email, avatar or password.
func (a *AuthController) UpdateProfile(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40111, "unauthorized")
		return
	}

	var req struct {
		Email       string `json:"email"`
		AvatarURL   string `json:"avatar_url"`
		OldPassword string `json:"old_password"`
		NewPassword string `json:"new_password"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40014, "invalid request payload")
		return
	}

	var user models.User
	if err := a.db.First(&user, userID).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40410, "user not found")
		return
	}

	updates := map[string]interface{}{}
	if req.Email != "" {
		updates["email"] = strings.TrimSpace(req.Email)
	}
	if req.AvatarURL != "" {
		updates["avatar_url"] = strings.TrimSpace(req.AvatarURL)
	}
	if req.NewPassword != "" {
		if len(req.NewPassword) < 8 || len(req.NewPassword) > 72 {
			utils.Error(ctx, http.StatusBadRequest, 40015, "password must be 8-72 characters")
			return
		}
		if !utils.CheckPassword(user.PasswordHash, req.OldPassword) {
			utils.Error(ctx, http.StatusUnauthorized, 40121, "old password incorrect")
			return
		}
		hash, err := utils.HashPassword(req.NewPassword)
		if err != nil {
			utils.Error(ctx, http.StatusInternalServerError, 50015, "failed to hash password")
			return
		}
		updates["password_hash"] = hash
	}
	if len(updates) == 0 {
		utils.Success(ctx, gin.H{"user": user})
		return
	}

	if err := a.db.Model(&user).Updates(updates).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50016, "failed to update profile")
		return
	}
	utils.Success(ctx, gin.H{"user": user})
}

// ListUsers returns paginated accounts for the back office.
func (a *AuthController) ListUsers(ctx *gin.Context) {
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))

	var users []models.User
	var total int64
	if err := a.db.Model(&models.User{}).Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50017, "failed to count users")
		return
	}
	if err := a.db.Order("created_at DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&users).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50018, "failed to list users")
		return
	}
	utils.Success(ctx, gin.H{
		"items": users,
		"pagination": gin.H{
			"page":        page,
			"page_size":   pageSize,
			"total":       total,
			"total_pages": totalPages(total, pageSize),
		},
	})
}
