package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/storefrontlab/storefront-backend/api/controllers"
	"github.com/storefrontlab/storefront-backend/api/middleware"
	"github.com/storefrontlab/storefront-backend/internal/auth"
	category "github.com/storefrontlab/storefront-backend/internal/categories"
	orderitem "github.com/storefrontlab/storefront-backend/internal/orderitems"
	order "github.com/storefrontlab/storefront-backend/internal/orders"
	product "github.com/storefrontlab/storefront-backend/internal/products"
	user "github.com/storefrontlab/storefront-backend/internal/users"
	"github.com/storefrontlab/storefront-backend/pkg/auth/session"
	"github.com/storefrontlab/storefront-backend/pkg/config"
	"github.com/storefrontlab/storefront-backend/pkg/db"
	"github.com/storefrontlab/storefront-backend/pkg/db/models"
	"github.com/storefrontlab/storefront-backend/pkg/logger"
	"github.com/storefrontlab/storefront-backend/pkg/metrics"
	"github.com/storefrontlab/storefront-backend/pkg/redis"
)

// Deps carries everything the router wires together.
type Deps struct {
	Config      *config.Config
	Logger      *logger.Logger
	DB          db.Pinger
	Redis       *redis.Client
	Sessions    session.AccessSessionChecker
	HTTPMetrics *metrics.HTTPMetrics
	Gatherer    prometheus.Gatherer

	AuthService      auth.Service
	UserService      user.Service
	CategoryService  category.Service
	ProductService   product.Service
	OrderService     order.Service
	OrderItemService orderitem.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.HTTPMetrics),
		middleware.CORS(),
	)

	var limiter middleware.FixedWindowLimiter
	if deps.Redis != nil {
		limiter = deps.Redis
	}
	loginPolicy := middleware.ThrottlePolicy{
		Surface:    "login",
		Window:     cfg.AuthRateLimit.LoginWindow,
		PerIP:      cfg.AuthRateLimit.LoginIPLimit,
		PerAccount: cfg.AuthRateLimit.LoginEmailLimit,
	}
	registerPolicy := middleware.ThrottlePolicy{
		Surface:    "register",
		Window:     cfg.AuthRateLimit.RegisterWindow,
		PerIP:      cfg.AuthRateLimit.RegisterIPLimit,
		PerAccount: cfg.AuthRateLimit.RegisterEmailLimit,
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, deps.DB, deps.Redis, logg))
	})

	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.Throttle(loginPolicy, limiter, logg)).Post("/login", controllers.AuthLogin(deps.AuthService, logg))
		r.With(middleware.Throttle(registerPolicy, limiter, logg)).Post("/register", controllers.AuthRegister(deps.AuthService, logg))
		r.Post("/refresh", controllers.AuthRefresh(deps.AuthService, logg))
		r.Post("/logout", controllers.AuthLogout(deps.AuthService, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", controllers.CategoryList(deps.CategoryService, logg))
			r.Post("/", controllers.CategoryCreate(deps.CategoryService, logg))
			r.Get("/{categoryId}", controllers.CategoryGet(deps.CategoryService, logg))
			r.Put("/{categoryId}", controllers.CategoryUpdate(deps.CategoryService, logg))
			r.Delete("/{categoryId}", controllers.CategoryDelete(deps.CategoryService, logg))
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ProductList(deps.ProductService, logg))
			r.Post("/", controllers.ProductCreate(deps.ProductService, logg))
			r.Get("/category-search", controllers.ProductCategorySearch(deps.ProductService, logg))
			r.Get("/{productId}", controllers.ProductGet(deps.ProductService, logg))
			r.Put("/{productId}", controllers.ProductUpdate(deps.ProductService, logg))
			r.Delete("/{productId}", controllers.ProductDelete(deps.ProductService, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.OrderList(deps.OrderService, logg))
			r.Post("/", controllers.OrderCreate(deps.OrderService, logg))
			r.Get("/{orderId}", controllers.OrderGet(deps.OrderService, logg))
			r.Put("/{orderId}", controllers.OrderUpdate(deps.OrderService, logg))
			r.Delete("/{orderId}", controllers.OrderDelete(deps.OrderService, logg))
		})

		r.Route("/order-items", func(r chi.Router) {
			r.Get("/", controllers.OrderItemList(deps.OrderItemService, logg))
			r.Post("/", controllers.OrderItemCreate(deps.OrderItemService, logg))
			r.Get("/{itemId}", controllers.OrderItemGet(deps.OrderItemService, logg))
			r.Put("/{itemId}", controllers.OrderItemUpdate(deps.OrderItemService, logg))
			r.Delete("/{itemId}", controllers.OrderItemDelete(deps.OrderItemService, logg))
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(middleware.RequireRole(logg, models.RoleAdmin))
			r.Get("/", controllers.UserList(deps.UserService, logg))
			r.Post("/", controllers.UserCreate(deps.UserService, logg))
			r.Get("/{userId}", controllers.UserGet(deps.UserService, logg))
			r.Put("/{userId}", controllers.UserUpdate(deps.UserService, logg))
			r.Delete("/{userId}", controllers.UserDelete(deps.UserService, logg))
			r.Get("/{userId}/products", controllers.UserProducts(deps.ProductService, logg))
			r.Get("/{userId}/orders", controllers.UserOrders(deps.OrderService, logg))
		})
	})

	return r
}
