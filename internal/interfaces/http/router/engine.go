package router

import (
	"github.com/fitcoach/backend/internal/infrastructure/config"
	"github.com/fitcoach/backend/internal/infrastructure/logger"
	"github.com/fitcoach/backend/internal/infrastructure/telemetry"
	"github.com/fitcoach/backend/internal/interfaces/http/handler"
	"github.com/fitcoach/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// Handlers are the HTTP handlers the engine routes to
type Handlers struct {
	Health   *handler.HealthHandler
	Checkout *handler.CheckoutHandler
	Catalog  *handler.CatalogHandler
	Coupon   *handler.CouponHandler
	Webhook  *handler.WebhookHandler
	Prospect *handler.ProspectHandler
	Blog     *handler.BlogHandler
	Admin    *handler.AdminHandler
}

// Options carries the cross-cutting pieces the middleware chain needs
type Options struct {
	Config        *config.Config
	Logger        *zap.Logger
	Authenticator middleware.Authenticator
	// RateCounter backs the rate limits; nil disables them
	RateCounter middleware.RateCounter
	// HTTPMetrics is nil when metrics export is off
	HTTPMetrics *telemetry.HTTPMetrics
	Tracing     bool
	Profiling   bool
}

// NewEngine builds the gin engine with the full middleware chain and every
// route of the API.
func NewEngine(opts Options, h Handlers) *gin.Engine {
	cfg := opts.Config
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Invalid trusted proxies, trusting none", zap.Error(err))
			_ = engine.SetTrustedProxies(nil)
		}
	} else {
		_ = engine.SetTrustedProxies(nil)
	}

	engine.Use(logger.Recovery(log))
	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(log))
	if opts.Tracing {
		engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     true,
		}))
		engine.Use(middleware.SpanEnricher())
	}
	if opts.HTTPMetrics != nil {
		engine.Use(middleware.HTTPMetrics(opts.HTTPMetrics, "/health"))
	}
	if opts.Profiling {
		profiling := middleware.DefaultProfilingConfig()
		profiling.Enabled = true
		engine.Use(middleware.Profiling(profiling))
	}
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfigFrom(cfg.HTTP)))
	security := middleware.DefaultSecurityConfig()
	security.HSTSEnabled = cfg.App.IsProduction()
	engine.Use(middleware.SecureWithConfig(security))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	adminAuth := middleware.AdminAuth(opts.Authenticator, log)
	publicLimit := rateLimit(opts, "public", cfg.HTTP.RateLimitRequests, cfg)
	loginLimit := middleware.RateLimit(middleware.RateLimitConfig{
		Name:    "login",
		Limit:   cfg.HTTP.AuthRateLimitRequests,
		Window:  cfg.HTTP.AuthRateLimitWindow,
		Counter: opts.RateCounter,
		Logger:  log,
	})

	r := NewRouter(engine)
	r.Register(publicRoutes(h, publicLimit))
	r.Register(adminRoutes(h, adminAuth, loginLimit))
	r.Setup()

	engine.GET("/swagger/*any",
		middleware.SwaggerProtection(cfg.Swagger, adminAuth),
		ginSwagger.WrapHandler(swaggerFiles.Handler),
	)

	return engine
}

// rateLimit returns the general limiter, a pass-through when rate limiting
// is turned off.
func rateLimit(opts Options, name string, limit int, cfg *config.Config) gin.HandlerFunc {
	if !cfg.HTTP.RateLimitEnabled {
		limit = 0
	}
	return middleware.RateLimit(middleware.RateLimitConfig{
		Name:    name,
		Limit:   limit,
		Window:  cfg.HTTP.RateLimitWindow,
		Counter: opts.RateCounter,
		Logger:  opts.Logger,
	})
}

func publicRoutes(h Handlers, limit gin.HandlerFunc) *DomainGroup {
	g := NewDomainGroup("public", "")
	g.GET("/health", h.Health.Health)

	g.POST("/create-checkout-session", limit, h.Checkout.CreateCheckoutSession)
	g.POST("/create-subscription", limit, h.Checkout.CreateSubscription)
	g.POST("/create-payment-intent", limit, h.Checkout.CreatePaymentIntent)
	g.GET("/get-products", h.Catalog.GetProducts)

	g.POST("/prospects", limit, h.Prospect.Submit)
	g.GET("/blog-posts", h.Blog.List)
	g.GET("/blog-posts/:slug", h.Blog.Get)

	g.POST("/webhooks/stripe", h.Webhook.HandleStripeWebhook)
	return g
}

func adminRoutes(h Handlers, adminAuth, loginLimit gin.HandlerFunc) *DomainGroup {
	g := NewDomainGroup("admin", "")
	g.POST("/admin/login", loginLimit, h.Admin.Login)

	protected := g.Group("admin-protected", "").Use(adminAuth)
	protected.POST("/admin/logout", h.Admin.Logout)
	protected.GET("/admin/prospects", h.Prospect.List)
	protected.POST("/admin/blog-posts", h.Blog.Create)

	protected.POST("/coupons", h.Coupon.Create)
	protected.GET("/coupons", h.Coupon.List)
	protected.DELETE("/coupons/:id", h.Coupon.Delete)
	return g
}
