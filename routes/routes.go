package routes

import (
	"github.com/gin-gonic/gin"

	"digitaltwin/controllers"
	"digitaltwin/middleware"
)

// Controllers bundles the constructed controller handles for route wiring
type Controllers struct {
	Auth     *controllers.AuthController
	Security *controllers.SecurityController
	Audit    *controllers.AuditController
	Admin    *controllers.AdminController
	Project  *controllers.ProjectController
}

// SetupRoutes configures all application routes
func SetupRoutes(r *gin.Engine, ctrl Controllers) {
	// Public routes (no authentication required)
	public := r.Group("/api")
	{
		// Authentication routes
		auth := public.Group("/auth")
		{
			auth.POST("/login", ctrl.Auth.Login)
		}

		// Live security telemetry consumed by the dashboard
		sec := public.Group("/security")
		{
			sec.GET("/attack-logs", ctrl.Security.GetAttackLogs)
			sec.GET("/hourly-stats", ctrl.Security.GetHourlyStats)
			sec.GET("/threat-activity", ctrl.Security.GetThreatActivity)
			sec.POST("/client-events", ctrl.Security.LogClientEvent)
		}

		// Portfolio content (public view)
		public.GET("/projects", ctrl.Project.GetProjects)
	}

	// Protected routes (authentication required)
	protected := r.Group("/api")
	protected.Use(middleware.AuthMiddleware())
	{
		// Admin routes. Handlers revalidate the admin role against the
		// users table themselves; the middleware only establishes identity.
		admin := protected.Group("/admin")
		{
			admin.GET("/audit-logs", ctrl.Audit.GetAuditLogs)
			admin.GET("/audit-stats", ctrl.Audit.GetAuditStats)

			admin.PUT("/users/role", ctrl.Admin.SetUserRole)
			admin.DELETE("/attack-logs/purge", ctrl.Admin.PurgeAttackLogs)

			admin.POST("/projects", ctrl.Project.CreateProject)
			admin.PUT("/projects/:id", ctrl.Project.UpdateProject)
			admin.DELETE("/projects/:id", ctrl.Project.DeleteProject)
		}
	}
}
