package routes

import (
	"net/http"

	"github.com/casbin/casbin/v2"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"voxarena/controllers"
	"voxarena/middlewares"
	"voxarena/observability"
	"voxarena/websocket"
)

// Dependencies are the handlers and guards the router mounts.
type Dependencies struct {
	Admins      middlewares.AdminLookup
	Audit       middlewares.AuditStore
	Enforcer    *casbin.Enforcer
	Log         logrus.FieldLogger
	ServiceName string

	AllowedOrigins    []string
	MaxMultipartBytes int64

	Admin     *controllers.AdminController
	Debates   *controllers.DebateController
	Templates *controllers.TemplateController
	Personas  *controllers.PersonaController
	Taxonomy  *controllers.TaxonomyController
	Modes     *controllers.ModeController
	AI        *controllers.AIController
	Wizard    *controllers.WizardController
	Events    *websocket.GenerationRelay
}

// guard is shorthand for an RBAC check on resource.
type guard func(resource, action string) gin.HandlerFunc

func NewRouter(deps Dependencies) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middlewares.RequestLogger(deps.Log), observability.Middleware(deps.ServiceName))

	router.SetTrustedProxies([]string{"127.0.0.1", "localhost"})
	if deps.MaxMultipartBytes > 0 {
		router.MaxMultipartMemory = deps.MaxMultipartBytes
	}

	origins := deps.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", "X-Request-ID", "Retry-After"},
		AllowCredentials: true,
	}))

	router.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	SetupAdminRoutes(router, deps)

	api := router.Group("/api")
	api.Use(middlewares.AdminAuth(deps.Admins, deps.Log), middlewares.AuditTrail(deps.Audit, deps.Log))
	rbac := func(resource, action string) gin.HandlerFunc {
		return middlewares.RBAC(deps.Enforcer, resource, action, deps.Log)
	}

	api.GET("/admin/me", deps.Admin.Me)
	api.POST("/admins", rbac("admins", middlewares.ActionManage), deps.Admin.Signup)

	SetupDebateRoutes(api, deps, rbac)
	SetupCatalogRoutes(api, deps, rbac)
	SetupAIRoutes(api, deps, rbac)
	SetupWizardRoutes(api, deps, rbac)

	return router
}
