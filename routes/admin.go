package routes

import "github.com/gin-gonic/gin"

// SetupAdminRoutes sets up the public admin routes. Accounts are created with
// voxctl or by an admin through POST /api/admins.
func SetupAdminRoutes(router *gin.Engine, deps Dependencies) {
	adminPublic := router.Group("/admin")
	{
		adminPublic.POST("/login", deps.Admin.Login)
	}
}
