package routes

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/bloodlink/internal/config"
	"github.com/ahmetcoskunkizilkaya/bloodlink/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/bloodlink/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	db *gorm.DB,
	gatherer prometheus.Gatherer,
	authHandler *handlers.AuthHandler,
	healthHandler *handlers.HealthHandler,
	donorHandler *handlers.DonorHandler,
	searchHandler *handlers.SearchHandler,
	assistantHandler *handlers.AssistantHandler,
	exportHandler *handlers.ExportHandler,
) {
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", healthHandler.Check)

	// Auth-specific rate limit: 10 req/min per IP (stricter)
	auth := api.Group("/auth")
	auth.Use(strictLimiter())
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/refresh", authHandler.Refresh)

	// Protected auth routes (JWT required)
	api.Post("/auth/logout", middleware.JWTProtected(cfg), authHandler.Logout)
	api.Delete("/auth/account", middleware.JWTProtected(cfg), authHandler.DeleteAccount)

	// Donors: public
	api.Get("/donors/eligibility-rules", donorHandler.EligibilityRules)
	api.Get("/donors/search", searchHandler.Search)
	api.Get("/donors/live-count", searchHandler.LiveCount)
	api.Get("/donors/live", searchHandler.UpgradeLive, searchHandler.Live())

	// Donors: own record
	me := api.Group("/donors/me", middleware.JWTProtected(cfg))
	me.Get("/", donorHandler.Me)
	me.Post("/submission", donorHandler.Submit)
	me.Put("/availability", donorHandler.SetAvailability)
	me.Post("/availability/toggle", donorHandler.Toggle)
	me.Put("/profile", donorHandler.SaveProfile)

	// Assistant: 10 req/min per IP
	api.Post("/assistant/chat", strictLimiter(), assistantHandler.Chat)

	admin := api.Group("/admin", middleware.JWTProtected(cfg), middleware.AdminRequired(db, cfg))
	admin.Get("/donors/export", exportHandler.Donors)
}

func strictLimiter() fiber.Handler {
	return limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	})
}
