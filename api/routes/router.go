package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/stringmaster/stringmaster-backend/api/controllers"
	"github.com/stringmaster/stringmaster-backend/api/middleware"
	"github.com/stringmaster/stringmaster-backend/internal/auth"
	"github.com/stringmaster/stringmaster-backend/internal/catalog"
	"github.com/stringmaster/stringmaster-backend/internal/discounts"
	"github.com/stringmaster/stringmaster-backend/internal/notifications"
	"github.com/stringmaster/stringmaster-backend/internal/orders"
	"github.com/stringmaster/stringmaster-backend/internal/presence"
	"github.com/stringmaster/stringmaster-backend/pkg/auth/session"
	"github.com/stringmaster/stringmaster-backend/pkg/config"
	"github.com/stringmaster/stringmaster-backend/pkg/db"
	"github.com/stringmaster/stringmaster-backend/pkg/enums"
	"github.com/stringmaster/stringmaster-backend/pkg/logger"
	"github.com/stringmaster/stringmaster-backend/pkg/redis"
)

// Deps bundles everything the HTTP surface needs.
type Deps struct {
	Config         *config.Config
	Logger         *logger.Logger
	DB             db.Pinger
	Redis          *redis.Client
	SessionChecker session.Checker
	Auth           auth.Service
	Catalog        catalog.Service
	Discounts      discounts.Service
	Orders         orders.Service
	Notifications  notifications.Service
	Hub            *notifications.Hub
	Presence       *presence.Tracker
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, deps.Redis))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.AuthRateLimit(registerPolicy, deps.Redis, logg)).Post("/register", controllers.AuthRegister(deps.Auth, logg))
			r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).Post("/login", controllers.AuthLogin(deps.Auth, logg))
			r.With(middleware.Auth(cfg.JWT, deps.SessionChecker, logg)).Post("/logout", controllers.AuthLogout(deps.Auth, logg))
		})

		r.Route("/instruments", func(r chi.Router) {
			r.Get("/", controllers.ListInstruments(deps.Catalog, logg))
			r.Get("/{instrumentId}", controllers.GetInstrument(deps.Catalog, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, deps.SessionChecker, logg))

			r.Post("/purchase", controllers.Purchase(deps.Orders, logg))
			r.Get("/orders", controllers.ListOrders(deps.Orders, logg))
			r.Post("/presence/heartbeat", controllers.PresenceHeartbeat(deps.Presence, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.SessionChecker, logg))
		r.Use(middleware.RequireRole(enums.UserRoleAdmin.String(), logg))

		r.Get("/presence", controllers.AdminPresenceList(deps.Presence, logg))
		r.Get("/stats", controllers.AdminCatalogStats(deps.Catalog, logg))

		r.Route("/instruments", func(r chi.Router) {
			r.Post("/", controllers.AdminCreateInstrument(deps.Catalog, logg))
			r.Put("/{instrumentId}", controllers.AdminUpdateInstrument(deps.Catalog, logg))
			r.Delete("/{instrumentId}", controllers.AdminDeleteInstrument(deps.Catalog, logg))
			r.Post("/{instrumentId}/restock", controllers.AdminRestockInstrument(deps.Catalog, logg))
		})

		r.Route("/discounts", func(r chi.Router) {
			r.Get("/", controllers.AdminListDiscounts(deps.Discounts, logg))
			r.Put("/", controllers.AdminUpsertDiscount(deps.Discounts, logg))
			r.Delete("/", controllers.AdminClearDiscounts(deps.Discounts, logg))
			r.Delete("/{ruleId}", controllers.AdminDeleteDiscount(deps.Discounts, logg))
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.AdminListNotifications(deps.Notifications, logg))
			r.Get("/stream", controllers.AdminNotificationStream(deps.Hub, logg))
			r.Post("/{notificationId}/read", controllers.AdminMarkNotificationRead(deps.Notifications, logg))
			r.Post("/read-all", controllers.AdminMarkAllNotificationsRead(deps.Notifications, logg))
		})
	})

	return r
}
