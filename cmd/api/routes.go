package main

import (
	"database/sql"
	"net/http"
	"time"

	"call-console/internal/audit"
	"call-console/internal/auth"
	"call-console/internal/console"
	"call-console/internal/httpapi"
	"call-console/internal/reporting"
	"call-console/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

type registerDeps struct {
	sessions    *console.Manager
	authManager *auth.Manager
	audit       *audit.Service
	reports     *reporting.Service
	db          *sql.DB
	redis       *redis.Client
}

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers should delegate to internal modules.
func registerRoutes(r *gin.Engine, deps registerDeps) {
	h := httpapi.Handlers{
		Sessions: deps.sessions,
		Auth:     deps.authManager,
		Audit:    deps.audit,
		Reports:  deps.reports,
	}

	// public
	r.GET("/healthz", func(c *gin.Context) {
		ctx := c.Request.Context()
		if err := utils.HealthCheck(ctx, deps.db, 2*time.Second); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "postgres": err.Error()})
			return
		}
		if err := deps.redis.Ping(ctx).Err(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "redis": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Toolkit webhooks (public).
	// NOTE: This endpoint should be protected by toolkit signature validation in production.
	r.POST("/webhooks/toolkit/:session_id/events", h.ToolkitEvent)

	// AUTH routes (token issuance). Public by necessity.
	// NOTE: This is a placeholder login route; real credential validation is not implemented.
	r.POST("/v1/auth/login", h.Login)

	// protected API group
	v1 := r.Group("/v1")
	v1.Use(auth.RequireAccessToken(deps.authManager))
	{
		v1.GET("/me", func(c *gin.Context) {
			ctx := c.Request.Context()
			agentID, _ := auth.AgentID(ctx)
			extension, _ := auth.Extension(ctx)
			role, _ := auth.Role(ctx)
			c.JSON(http.StatusOK, gin.H{"agent_id": agentID, "extension": extension, "role": role})
		})

		// SESSION routes: any authenticated role may observe.
		v1.POST("/sessions", h.AttachSession)
		v1.GET("/sessions/:session_id", h.GetSession)
		v1.DELETE("/sessions/:session_id", h.DetachSession)
		v1.GET("/sessions/:session_id/debuglog", h.GetDebugLog)

		// Call control is restricted: observers watch, they do not drive.
		control := v1.Group("/sessions/:session_id")
		control.Use(auth.RequireAnyRole(auth.RoleAgent, auth.RoleSupervisor))
		{
			control.POST("/commands/:command", h.Command)
			control.POST("/reset", h.ResetSession)
		}

		// REPORTS routes
		reports := v1.Group("/reports")
		reports.Use(auth.RequireAnyRole(auth.RoleSupervisor))
		{
			reports.GET("/calls", h.CallsSummary)
		}
	}
}
