package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/plumstudio/atelier/models"
	"github.com/plumstudio/atelier/utils"
)

const (
	// ContextUserIDKey is the key used to store authenticated user ID in Gin context.
	ContextUserIDKey = "user_id"
	// ContextUsernameKey stores the username inside Gin context.
	ContextUsernameKey = "username"
	// ContextRoleKey stores the role claim inside Gin context.
	ContextRoleKey = "role"
)

// AuthRequired ensures the request is authenticated via JWT.
func AuthRequired() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		claims, code, msg := bearerClaims(ctx)
		if claims == nil {
			utils.Error(ctx, http.StatusUnauthorized, code, msg)
			ctx.Abort()
			return
		}
		ctx.Set(ContextUserIDKey, claims.UserID)
		ctx.Set(ContextUsernameKey, claims.Username)
		ctx.Set(ContextRoleKey, claims.Role)
		ctx.Next()
	}
}

// AdminRequired gates back-office routes. Any request that is not an
// authenticated admin gets a plain 404, deliberately indistinguishable from
// a route that does not exist.
func AdminRequired() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		claims, _, _ := bearerClaims(ctx)
		if claims == nil || claims.Role != models.RoleAdmin {
			utils.Error(ctx, http.StatusNotFound, 40400, "not found")
			ctx.Abort()
			return
		}
		ctx.Set(ContextUserIDKey, claims.UserID)
		ctx.Set(ContextUsernameKey, claims.Username)
		ctx.Set(ContextRoleKey, claims.Role)
		ctx.Next()
	}
}

// bearerClaims extracts and validates the bearer token, returning nil claims
// plus an error code/message on failure.
func bearerClaims(ctx *gin.Context) (*utils.Claims, int, string) {
	authHeader := ctx.GetHeader("Authorization")
	if authHeader == "" {
		return nil, 40101, "authorization header missing"
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil, 40102, "invalid authorization header format"
	}

	tokenString := strings.TrimSpace(parts[1])
	if tokenString == "" {
		return nil, 40103, "empty bearer token"
	}

	if utils.IsTokenBlacklisted(tokenString) {
		return nil, 40104, "token revoked"
	}

	claims, err := utils.ParseToken(tokenString)
	if err != nil {
		return nil, 40105, "invalid token"
	}
	return claims, 0, ""
}
