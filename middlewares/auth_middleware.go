package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"taller-inventory/models"
	"taller-inventory/utils"
)

func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Token no encontrado"})
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		claims, err := utils.VerifyToken(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Token invalido"})
			c.Abort()
			return
		}

		userID, ok := claims["user_id"].(float64)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Token invalido"})
			c.Abort()
			return
		}
		role, _ := claims["role"].(string)
		username, _ := claims["username"].(string)

		c.Set("user_id", uint(userID))
		c.Set("username", username)
		c.Set("role", models.Role(role))
		c.Next()
	}
}

// CurrentUserID reads the authenticated user id from the context.
func CurrentUserID(c *gin.Context) uint {
	v, _ := c.Get("user_id")
	id, _ := v.(uint)
	return id
}

// CurrentRole reads the authenticated role from the context.
func CurrentRole(c *gin.Context) models.Role {
	v, _ := c.Get("role")
	role, _ := v.(models.Role)
	return role
}

// Require gates a route on a role capability, e.g.
// Require(models.Role.CanApproveRequests).
func Require(check func(models.Role) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !check(CurrentRole(c)) {
			c.JSON(http.StatusForbidden, gin.H{"error": "No tiene permisos para esta operacion"})
			c.Abort()
			return
		}
		c.Next()
	}
}
