package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/studentdash/roster-backend/internal/config"
	"github.com/studentdash/roster-backend/internal/handler"
	"github.com/studentdash/roster-backend/internal/middleware"
	"github.com/studentdash/roster-backend/internal/response"
	"github.com/studentdash/roster-backend/internal/workspace"
)

// sessionWait bounds how long a guarded route waits for session restore.
const sessionWait = 3 * time.Second

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth   *handler.AuthHandler
	Roster *handler.RosterHandler
	Course *handler.CourseHandler
	WS     *handler.WSHandler
	System *handler.SystemHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
// The returned RateLimiter must be stopped on shutdown.
func SetupRouter(
	registry *workspace.Registry,
	handlers *Handlers,
	cfg *config.Config,
	log zerolog.Logger,
) (*gin.Engine, *middleware.RateLimiter) {
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Recovery())

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID", middleware.HeaderClientID}
	corsConfig.ExposeHeaders = []string{"X-Request-ID", middleware.HeaderClientID}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.Brotli())

	router.GET("/health", handlers.System.Health)

	// ─── 0. Public Group (No Workspace) ────────────────────────────────
	publicAPI := router.Group("/api/v1")
	{
		publicAPI.GET("/courses", middleware.CacheControl(60), handlers.Course.ListCourses)
		publicAPI.GET("/directory/students", handlers.Course.ListDirectory)
	}

	// ─── 1. Workspace Group ────────────────────────────────────────────
	api := router.Group("/api/v1")
	api.Use(middleware.ResolveWorkspace(registry))
	{
		api.GET("/session", handlers.Auth.GetSession)
		api.GET("/roster", handlers.Roster.GetRoster)
		api.POST("/roster/refresh", handlers.Roster.Refresh)
		api.PUT("/roster/filter", handlers.Roster.SetFilter)
		api.GET("/students/:id", handlers.Roster.GetStudent)
		api.DELETE("/workspace", handlers.Roster.CloseWorkspace)

		// Adding a student needs a signed-in user.
		api.POST("/students", middleware.RequireSession(sessionWait), handlers.Roster.AddStudent)
	}

	// ─── 2. Auth Group (Rate Limited) ──────────────────────────────────
	authLimiter := middleware.NewRateLimiter(cfg.AuthRateLimitPerMin, time.Minute)
	auth := api.Group("/auth")
	{
		auth.POST("/login", authLimiter.Middleware(), handlers.Auth.Login)
		auth.POST("/register", authLimiter.Middleware(), handlers.Auth.Register)
		auth.POST("/logout", handlers.Auth.Logout)
	}

	// ─── 3. WebSocket Group ────────────────────────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.ResolveWorkspace(registry))
	{
		ws.GET("/workspace/stream", handlers.WS.WorkspaceStream)
	}

	return router, authLimiter
}
