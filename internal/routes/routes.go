package routes

import (
	"time"

	"github.com/Sankura23/woofadaar-moderation/internal/config"
	"github.com/Sankura23/woofadaar-moderation/internal/handlers"
	"github.com/Sankura23/woofadaar-moderation/internal/middleware"
	"github.com/Sankura23/woofadaar-moderation/internal/models"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"gorm.io/gorm"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	db *gorm.DB,
	authHandler *handlers.AuthHandler,
	healthHandler *handlers.HealthHandler,
	moderationHandler *handlers.ModerationHandler,
	queueHandler *handlers.QueueHandler,
	reportHandler *handlers.ReportHandler,
	feedbackHandler *handlers.FeedbackHandler,
	analyticsHandler *handlers.AnalyticsHandler,
	rulesHandler *handlers.RulesHandler,
) {
	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", healthHandler.Check)

	// Auth is public but rate limited harder: 10 req/min per IP
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/refresh", authHandler.Refresh)
	api.Post("/auth/logout", middleware.JWTProtected(cfg), authHandler.Logout)

	// User-facing moderation endpoints (JWT required)
	mod := api.Group("/moderation", middleware.JWTProtected(cfg))
	mod.Post("/evaluate", moderationHandler.Evaluate)
	mod.Post("/reports", reportHandler.Create)
	mod.Post("/feedback", feedbackHandler.Submit)
	mod.Get("/feedback/:id/agreement", feedbackHandler.Agreement)

	// Moderator panel (JWT + moderator role). Resolution is a PATCH on the
	// queue resource; the item id travels in the body.
	moderator := middleware.RoleRequired(db, cfg, models.RoleModerator)
	mod.Get("/queue", moderator, queueHandler.List)
	mod.Patch("/queue", moderator, queueHandler.Resolve)
	mod.Post("/queue/:id/claim", moderator, queueHandler.Claim)
	mod.Get("/analytics", moderator, analyticsHandler.Get)

	// Rule administration (JWT + moderator role)
	admin := api.Group("/admin", middleware.JWTProtected(cfg), middleware.RoleRequired(db, cfg, models.RoleModerator))
	admin.Get("/rules", rulesHandler.List)
	admin.Put("/rules/:id", rulesHandler.Upsert)
	admin.Delete("/rules/:id", rulesHandler.Deactivate)
}
