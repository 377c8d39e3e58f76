package middlewares

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"voxarena/models"
	"voxarena/utils"
)

// Context keys set by AdminAuth.
const (
	AdminIDKey    = "adminID"
	AdminEmailKey = "adminEmail"
	AdminRoleKey  = "adminRole"
)

type AdminLookup interface {
	GetByEmail(ctx context.Context, email string) (*models.Admin, error)
}

// AdminAuth verifies the bearer JWT and loads the admin it names. The role is
// read from the stored admin, so demotions apply to tokens already issued.
func AdminAuth(admins AdminLookup, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" && c.Query("access_token") != "" {
			// Browsers cannot set headers on websocket upgrades.
			authHeader = "Bearer " + c.Query("access_token")
		}
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			return
		}

		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token format"})
			return
		}

		claims, err := utils.ParseJWTToken(tokenParts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token", "message": err.Error()})
			return
		}

		dbCtx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		admin, err := admins.GetByEmail(dbCtx, claims.Subject)
		if err != nil {
			if !errors.Is(err, models.ErrNotFound) {
				log.WithError(err).Error("Admin lookup failed")
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify admin"})
				return
			}
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			return
		}

		c.Set(AdminEmailKey, admin.Email)
		c.Set(AdminIDKey, admin.ID)
		c.Set(AdminRoleKey, admin.Role)
		c.Next()
	}
}

// AdminID returns the authenticated admin's id, or the zero id outside AdminAuth.
func AdminID(c *gin.Context) primitive.ObjectID {
	id, _ := c.Get(AdminIDKey)
	oid, _ := id.(primitive.ObjectID)
	return oid
}
