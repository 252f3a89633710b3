// Package fleetledger собирает HTTP-приложение журнала поездок:
// хранилище, миграции, кеш, сервисы и маршруты.
package fleetledger

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/magabrotheeeer/fleet-ledger/internal/cache"
	"github.com/magabrotheeeer/fleet-ledger/internal/config"
	"github.com/magabrotheeeer/fleet-ledger/internal/entitlement"
	"github.com/magabrotheeeer/fleet-ledger/internal/lib/jwt"
	"github.com/magabrotheeeer/fleet-ledger/internal/migrations"
	authservice "github.com/magabrotheeeer/fleet-ledger/internal/services/auth"
	backfillservice "github.com/magabrotheeeer/fleet-ledger/internal/services/backfill"
	ledgerservice "github.com/magabrotheeeer/fleet-ledger/internal/services/ledger"
	reconcileservice "github.com/magabrotheeeer/fleet-ledger/internal/services/reconcile"
	"github.com/magabrotheeeer/fleet-ledger/internal/storage/repository"
)

type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	cache  *cache.Cache
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	resolver := entitlement.NewResolver(cfg.AdminEmails)

	authService := authservice.New(db, jwtMaker)
	reconcileService := reconcileservice.New(db, db, db, resolver, logger)
	backfillService := backfillservice.New(db, db, logger)
	ledgerService := ledgerservice.New(db, db, cacheRedis, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, Services{
		Auth:      authService,
		Ledger:    ledgerService,
		Reconcile: reconcileService,
		Backfill:  backfillService,
		JWTMaker:  jwtMaker,
		Storage:   db,
		Cache:     cacheRedis,
	})

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		cache:  cacheRedis,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		if closeErr := a.db.DB.Close(); closeErr != nil {
			a.logger.Error("failed to close storage", slog.Any("err", closeErr))
		}
		return err
	}
}
