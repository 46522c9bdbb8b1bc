package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"hibiki/utils"
)

const (
	// ContextStaffIDKey is the key used to store the authenticated staff ID in Gin context.
	ContextStaffIDKey = "staff_id"
	// ContextStaffEmailKey stores the staff email inside Gin context.
	ContextStaffEmailKey = "staff_email"
	// ContextStaffRoleKey stores the staff role inside Gin context.
	ContextStaffRoleKey = "staff_role"
)

// AuthRequired ensures the request is authenticated via JWT.
func AuthRequired() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		authHeader := ctx.GetHeader("Authorization")
		if authHeader == "" {
			utils.Error(ctx, http.StatusUnauthorized, 40101, "authorization header missing")
			ctx.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			utils.Error(ctx, http.StatusUnauthorized, 40102, "invalid authorization header format")
			ctx.Abort()
			return
		}

		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			utils.Error(ctx, http.StatusUnauthorized, 40103, "empty bearer token")
			ctx.Abort()
			return
		}

		claims, err := utils.ParseToken(tokenString)
		if err != nil {
			utils.Error(ctx, http.StatusUnauthorized, 40104, "invalid token")
			ctx.Abort()
			return
		}

		ctx.Set(ContextStaffIDKey, claims.StaffID)
		ctx.Set(ContextStaffEmailKey, claims.Email)
		ctx.Set(ContextStaffRoleKey, claims.Role)
		ctx.Next()
	}
}

// AdministratorOnly restricts a route to staff with the administrator role.
// Must run after AuthRequired.
func AdministratorOnly() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if ctx.GetString(ContextStaffRoleKey) != "administrator" {
			utils.Error(ctx, http.StatusForbidden, 40301, "administrator role required")
			ctx.Abort()
			return
		}
		ctx.Next()
	}
}
