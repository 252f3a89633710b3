// Package fleetledger предоставляет маршруты для основного приложения.
package fleetledger

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/fleet-ledger/internal/cache"
	"github.com/magabrotheeeer/fleet-ledger/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/fleet-ledger/internal/http/handlers/auth/register"
	backfillsubmit "github.com/magabrotheeeer/fleet-ledger/internal/http/handlers/backfill/submit"
	entrycreate "github.com/magabrotheeeer/fleet-ledger/internal/http/handlers/entry/create"
	entrylist "github.com/magabrotheeeer/fleet-ledger/internal/http/handlers/entry/list"
	entryread "github.com/magabrotheeeer/fleet-ledger/internal/http/handlers/entry/read"
	entryremove "github.com/magabrotheeeer/fleet-ledger/internal/http/handlers/entry/remove"
	entryupdate "github.com/magabrotheeeer/fleet-ledger/internal/http/handlers/entry/update"
	"github.com/magabrotheeeer/fleet-ledger/internal/http/handlers/health"
	planget "github.com/magabrotheeeer/fleet-ledger/internal/http/handlers/plan/get"
	reconcilescan "github.com/magabrotheeeer/fleet-ledger/internal/http/handlers/reconcile/scan"
	vehiclecreate "github.com/magabrotheeeer/fleet-ledger/internal/http/handlers/vehicle/create"
	vehiclelist "github.com/magabrotheeeer/fleet-ledger/internal/http/handlers/vehicle/list"
	vehicleremove "github.com/magabrotheeeer/fleet-ledger/internal/http/handlers/vehicle/remove"
	"github.com/magabrotheeeer/fleet-ledger/internal/http/middlewarectx"
	"github.com/magabrotheeeer/fleet-ledger/internal/lib/jwt"
	authservice "github.com/magabrotheeeer/fleet-ledger/internal/services/auth"
	backfillservice "github.com/magabrotheeeer/fleet-ledger/internal/services/backfill"
	ledgerservice "github.com/magabrotheeeer/fleet-ledger/internal/services/ledger"
	reconcileservice "github.com/magabrotheeeer/fleet-ledger/internal/services/reconcile"
	"github.com/magabrotheeeer/fleet-ledger/internal/storage/repository"
)

// Services объединяет зависимости, нужные маршрутам приложения.
type Services struct {
	Auth      *authservice.Service
	Ledger    *ledgerservice.Service
	Reconcile *reconcileservice.Service
	Backfill  *backfillservice.Service
	JWTMaker  jwt.Maker
	Storage   *repository.Storage
	Cache     *cache.Cache
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, svc Services) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/register", register.New(logger, svc.Auth).ServeHTTP)
		r.Post("/login", login.New(logger, svc.Auth).ServeHTTP)

		// Группа только с JWT аутентификацией: чтение доступно и при
		// истекшем тарифе
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(svc.JWTMaker, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))
			r.Get("/plan", planget.New(logger, svc.Reconcile).ServeHTTP)
			r.Get("/vehicles", vehiclelist.New(logger, svc.Ledger).ServeHTTP)
			r.Get("/entries", entrylist.New(logger, svc.Ledger, svc.Reconcile).ServeHTTP)
			r.Get("/entries/{id}", entryread.New(logger, svc.Ledger).ServeHTTP)
		})

		// Группа записи: дополнительно закрыта тарифным гейтом
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(svc.JWTMaker, logger))
			r.Use(middlewarectx.EntitlementMiddleware(logger, svc.Reconcile))
			r.Use(middlewarectx.RateLimitMiddleware(logger))
			r.Post("/vehicles", vehiclecreate.New(logger, svc.Ledger, svc.Reconcile).ServeHTTP)
			r.Delete("/vehicles/{id}", vehicleremove.New(logger, svc.Ledger).ServeHTTP)
			r.Post("/entries", entrycreate.New(logger, svc.Ledger).ServeHTTP)
			r.Put("/entries/{id}", entryupdate.New(logger, svc.Ledger).ServeHTTP)
			r.Delete("/entries/{id}", entryremove.New(logger, svc.Ledger).ServeHTTP)
			r.Post("/reconcile/scan", reconcilescan.New(logger, svc.Reconcile).ServeHTTP)
			r.Post("/backfill", backfillsubmit.New(logger, svc.Backfill, svc.Reconcile).ServeHTTP)
		})

		r.Get("/health", health.New(logger, svc.Storage, svc.Cache).ServeHTTP)
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
