package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/phani-001/FixMyTown/internal/domain/entity"
)

// RequireCapability bloque la requête si le rôle de l'appelant ne possède pas
// la capacité demandée. Les règles dépendant du signalement lui-même (ex.
// réouverture par le propriétaire) restent dans le service.
func RequireCapability(cap entity.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := entity.UserRole(c.GetString("userRole"))
		if !role.Can(cap) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
			return
		}
		c.Next()
	}
}

// StaffOnly réserve la route au personnel municipal
func StaffOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		role := entity.UserRole(c.GetString("userRole"))
		if !role.IsStaff() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "staff access required"})
			return
		}
		c.Next()
	}
}

// AdminOnly réserve la route au super admin
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if entity.UserRole(c.GetString("userRole")) != entity.RoleSuperAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			return
		}
		c.Next()
	}
}
