package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/example/storefront/internal/handlers"
	"github.com/example/storefront/internal/middleware"
)

// Handlers groups everything Register mounts.
type Handlers struct {
	Products   *handlers.ProductHandler
	Categories *handlers.CategoryHandler
	Settings   *handlers.SettingsHandler
	Orders     *handlers.OrderHandler
	Payments   *handlers.PaymentHandler
	Navigation *handlers.NavigationHandler
	Admin      *handlers.AdminHandler
	Auth       *handlers.AuthHandler
	Health     *handlers.HealthHandler
}

// Options carries the route-level middleware.
type Options struct {
	AdminAuth       fiber.Handler
	CheckoutLimiter *middleware.RateLimiter
	LoginLimiter    *middleware.RateLimiter
}

// Register wires up all HTTP routes under /api.
func Register(app *fiber.App, h Handlers, opts Options) {
	admin := opts.AdminAuth

	api := app.Group("/api")
	api.Get("/health", h.Health.Health)

	api.Post("/auth/login", opts.LoginLimiter.Handler(), h.Auth.Login)

	products := api.Group("/products")
	h.Products.RegisterProductRoutes(products, admin)

	categories := api.Group("/categories")
	categories.Get("/", h.Categories.ListCategories)
	categories.Post("/", admin, h.Categories.CreateCategory)
	categories.Put("/:id", admin, h.Categories.UpdateCategory)
	categories.Delete("/:id", admin, h.Categories.DeleteCategory)

	settings := api.Group("/settings")
	settings.Get("/", h.Settings.GetSettings)
	settings.Put("/", admin, h.Settings.UpdateSetting)
	settings.Post("/", admin, h.Settings.CreateSetting)

	orders := api.Group("/orders")
	orders.Post("/", opts.CheckoutLimiter.Handler(), h.Orders.CreateOrder)
	orders.Get("/", admin, h.Orders.ListOrders)
	orders.Get("/:id", admin, h.Orders.GetOrder)
	orders.Patch("/:id/status", admin, h.Orders.UpdateStatus)

	stripe := api.Group("/stripe")
	stripe.Get("/check-payment", h.Payments.CheckPayment)
	stripe.Post("/create-payment-link", opts.CheckoutLimiter.Handler(), h.Payments.CreatePaymentLink)
	stripe.Post("/save-payment-link", admin, h.Payments.SavePaymentLink)
	stripe.Post("/webhook", h.Payments.Webhook)

	nav := api.Group("/nav")
	nav.Get("/", h.Navigation.ListNav)
	nav.Get("/icons", h.Navigation.ListIcons)
	nav.Get("/:id", h.Navigation.GetNav)
	nav.Post("/", admin, h.Navigation.CreateNav)
	nav.Put("/:id", admin, h.Navigation.UpdateNav)
	nav.Delete("/:id", admin, h.Navigation.DeleteNav)

	social := api.Group("/social-media")
	social.Get("/", h.Navigation.ListSocialLinks)
	social.Post("/", admin, h.Navigation.CreateSocialLink)
	social.Put("/:id", admin, h.Navigation.UpdateSocialLink)
	social.Delete("/:id", admin, h.Navigation.DeleteSocialLink)

	back := api.Group("/admin", admin)
	back.Get("/revenue/overview", h.Admin.RevenueOverview)
	back.Get("/revenue/analytics", h.Admin.RevenueAnalytics)
	back.Get("/products/low-stock", h.Admin.LowStockProducts)
}
