// Package get реализует HTTP-обработчик запроса текущего тарифа и лимитов.
package get

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/fleet-ledger/internal/entitlement"
	"github.com/magabrotheeeer/fleet-ledger/internal/http/middlewarectx"
	"github.com/magabrotheeeer/fleet-ledger/internal/http/response"
	"github.com/magabrotheeeer/fleet-ledger/internal/lib/sl"
)

// Handler отвечает за обработку запросов текущего тарифа.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service вычисляет тариф и лимиты пользователя.
type Service interface {
	ResolveForUsername(ctx context.Context, username string) (entitlement.Resolution, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Текущий тариф
// @Description Возвращает действующий тариф пользователя и его лимиты
// @Tags Plan
// @Produce  json
// @Success 200 {object} map[string]any "Тариф и лимиты"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /plan [get]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.plan.get"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	username, ok := r.Context().Value(middlewarectx.User).(string)
	if !ok || username == "" {
		log.Error("username not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	res, err := h.service.ResolveForUsername(r.Context(), username)
	if err != nil {
		log.Error("failed to resolve plan", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not resolve plan"))
		return
	}

	log.Info("success to resolve plan", slog.String("plan", string(res.Plan)))
	render.JSON(w, r, response.OKWithData(res))
}
