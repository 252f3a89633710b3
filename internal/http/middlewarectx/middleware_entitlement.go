package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/fleet-ledger/internal/entitlement"
	"github.com/magabrotheeeer/fleet-ledger/internal/http/response"
	"github.com/magabrotheeeer/fleet-ledger/internal/lib/sl"
)

// EntitlementService определяет интерфейс для вычисления тарифа пользователя.
type EntitlementService interface {
	ResolveForUsername(ctx context.Context, username string) (entitlement.Resolution, error)
}

// EntitlementMiddleware закрывает write-эндпоинты для истёкшего тарифа.
// При ошибке загрузки аккаунта доступ тоже закрывается: отказ безопаснее
// работы с неверными лимитами.
func EntitlementMiddleware(log *slog.Logger, svc EntitlementService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			username, ok := r.Context().Value(User).(string)
			if !ok || username == "" {
				log.Error("user identification missing")
				w.WriteHeader(http.StatusUnauthorized)
				render.JSON(w, r, response.Error("user identification missing"))
				return
			}

			res, err := svc.ResolveForUsername(r.Context(), username)
			if err != nil {
				log.Error("failed to resolve entitlement", sl.Err(err))
				w.WriteHeader(http.StatusForbidden)
				render.JSON(w, r, response.Error("plan could not be resolved, access denied"))
				return
			}

			if res.Plan == entitlement.PlanExpired && !res.IsAdministrative {
				log.Warn("plan expired, access denied", slog.String("username", username))
				w.WriteHeader(http.StatusForbidden)
				render.JSON(w, r, response.Error("plan expired, access denied"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
