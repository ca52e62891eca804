package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/velo-register/internal/config"
	domainRepo "github.com/sangkips/velo-register/internal/domain/repository"
	"github.com/sangkips/velo-register/internal/presentation/http/handler"
	"github.com/sangkips/velo-register/internal/presentation/http/middleware"
	"go.uber.org/zap"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Session  *handler.SessionHandler
	Catalog  *handler.CatalogHandler
	Cart     *handler.CartHandler
	Client   *handler.ClientHandler
	Checkout *handler.CheckoutHandler
	Health   *handler.HealthHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	Credentials middleware.CredentialRegistrar
	RateLimiter *middleware.OperatorRateLimiter
	Cfg         *config.Config
	Logger      *zap.Logger
	// IdempotencyRepo is nil when the register runs without a database
	IdempotencyRepo domainRepo.IdempotencyRepository
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware(deps.Logger))
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	router.GET("/health", h.Health.Health)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", h.Health.Health)

		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(deps.Credentials))
		if deps.RateLimiter != nil {
			protected.Use(deps.RateLimiter.Middleware())
		}

		registerProtectedRoutes(protected, h, deps)
	}

	return router
}

func registerProtectedRoutes(protected *gin.RouterGroup, h *Handlers, deps *Deps) {
	protected.POST("/session/token", h.Session.Token)
	protected.DELETE("/session", h.Session.End)

	catalog := protected.Group("/catalog")
	{
		catalog.GET("/products", h.Catalog.Browse)
		catalog.POST("/refresh", h.Catalog.Refresh)
	}

	registerCartRoutes(protected, h)

	clients := protected.Group("/clients")
	{
		clients.GET("", h.Client.Search)
		clients.POST("", h.Client.Create)
	}

	checkout := protected.Group("")
	if deps.IdempotencyRepo != nil {
		checkout.Use(middleware.Idempotency(middleware.IdempotencyConfig{
			Repo:   deps.IdempotencyRepo,
			TTL:    deps.Cfg.Register.IdempotencyTTL,
			Logger: deps.Logger,
		}))
	}
	checkout.POST("/checkout", h.Checkout.Checkout)
	protected.GET("/checkout", h.Checkout.State)
	protected.GET("/checkouts", h.Checkout.List)
}

func registerCartRoutes(protected *gin.RouterGroup, h *Handlers) {
	cart := protected.Group("/cart")
	{
		cart.GET("", h.Cart.Get)
		cart.DELETE("", h.Cart.Clear)
		cart.POST("/scan", h.Cart.Scan)
		cart.POST("/items", h.Cart.AddItem)
		cart.PATCH("/items/:product_id", h.Cart.UpdateItem)
		cart.DELETE("/items/:product_id", h.Cart.RemoveItem)
		cart.PUT("/store", h.Cart.SetStore)
		cart.PUT("/client", h.Cart.SetClient)
		cart.DELETE("/client", h.Cart.ClearClient)
		cart.PUT("/payment", h.Cart.SetPayment)
		cart.PUT("/notes", h.Cart.SetNotes)
	}
}
