package router

import (
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"magic-encyclopedia/backend/internal/api"
	"magic-encyclopedia/backend/pkg/di"
	"magic-encyclopedia/backend/pkg/errors"
	"magic-encyclopedia/backend/pkg/logger"
	"magic-encyclopedia/backend/pkg/middleware"
)

// Router is the main HTTP router for the application
type Router struct {
	Engine    *gin.Engine
	Container *di.Container
	Logger    *logger.Logger
}

// New creates a router with the standard middleware chain
func New(container *di.Container, metricsHandler gin.HandlerFunc) *Router {
	logger.SetGlobal(container.Logger)

	if container.Config.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(logger.Middleware(container.Logger))
	engine.Use(errors.ErrorHandler())
	engine.Use(errors.RecoveryWithLogger())

	rlOpts := middleware.DefaultRateLimiterOptions()
	rlOpts.Limit = rate.Limit(container.Config.Security.RateLimit)
	rlOpts.Burst = container.Config.Security.RateLimitBurst
	rateLimiter := middleware.NewRateLimiter(container.Logger, rlOpts)
	engine.Use(rateLimiter.Middleware())

	if metricsHandler != nil {
		engine.GET("/metrics", metricsHandler)
	}

	return &Router{
		Engine:    engine,
		Container: container,
		Logger:    container.Logger,
	}
}

// SetupRoutes registers all application routes
func (r *Router) SetupRoutes() {
	r.Engine.Use(corsMiddleware(r.Container.Config.Security.AllowedOrigins))

	parentalAuth := middleware.ParentalAuthMiddleware(r.Container.JWTService, r.Logger)

	healthHandler := api.NewHealthHandler(r.Container.DB, r.Container.SpeechCache)
	characterHandler := api.NewCharacterHandler(r.Container.CharacterService)
	messageHandler := api.NewMessageHandler(r.Container.MessageService, r.Container.CharacterService)
	chatHandler := api.NewChatHandler(r.Container.ChatService, r.Container.CharacterService, r.Container.SettingsService)
	settingsHandler := api.NewSettingsHandler(r.Container.SettingsService)
	parentalHandler := api.NewParentalHandler(r.Container.SettingsService, r.Container.JWTService, r.Logger)

	v1 := r.Engine.Group("/api/v1")

	// Child-facing routes, no authentication. The kiosk UI is the only
	// client and the parental gate protects everything sensitive.
	v1.GET("/health", healthHandler.Health)

	characters := v1.Group("/characters")
	{
		characters.GET("", characterHandler.List)
		characters.GET("/:id", characterHandler.Get)
		characters.POST("", characterHandler.Create)
		characters.PUT("/:id", characterHandler.Update)
		characters.DELETE("/:id", characterHandler.Delete)
	}

	chat := v1.Group("/chat")
	{
		chat.GET("/:characterId/messages", messageHandler.List)
		chat.POST("/:characterId/send", chatHandler.Send)
		chat.POST("/:characterId/speak", chatHandler.Speak)
	}
	v1.POST("/speech/stop", chatHandler.StopSpeech)

	v1.GET("/settings", settingsHandler.Get)
	v1.POST("/parental/unlock", parentalHandler.Unlock)

	// Guardian routes, behind the PIN-issued parent token
	parental := v1.Group("/parental")
	parental.Use(parentalAuth)
	{
		parental.PUT("/settings", settingsHandler.Update)
		parental.POST("/settings/reset-time", settingsHandler.ResetTime)
		parental.PUT("/pin", parentalHandler.SetPIN)
		parental.DELETE("/messages", messageHandler.ClearAll)
	}
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	allowAll := len(allowedOrigins) == 0
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		if o == "*" {
			allowAll = true
		}
		allowed[o] = true
	}

	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		switch {
		case origin == "" || allowAll:
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		case allowed[origin]:
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept, Accept-Encoding, Authorization, Origin, Cache-Control")
		c.Writer.Header().Set("Access-Control-Max-Age", "86400")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
