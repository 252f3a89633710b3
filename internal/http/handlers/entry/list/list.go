// Package list реализует HTTP-обработчик постраничного списка записей журнала.
//
// Глубина выборки ограничена тарифным лимитом на историю поездок.
package list

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/fleet-ledger/internal/entitlement"
	"github.com/magabrotheeeer/fleet-ledger/internal/http/middlewarectx"
	"github.com/magabrotheeeer/fleet-ledger/internal/http/response"
	"github.com/magabrotheeeer/fleet-ledger/internal/lib/sl"
	"github.com/magabrotheeeer/fleet-ledger/internal/models"
)

const defaultLimit = 50

// Handler отвечает за обработку запросов на список записей журнала.
type Handler struct {
	log          *slog.Logger
	service      Service
	entitlements EntitlementService
}

// Service описывает интерфейс бизнес-логики списка записей.
type Service interface {
	ListEntries(ctx context.Context, username string, limits entitlement.Limits, limit, offset int) ([]*models.Entry, error)
}

// EntitlementService вычисляет тариф и лимиты пользователя.
type EntitlementService interface {
	ResolveForUsername(ctx context.Context, username string) (entitlement.Resolution, error)
}

// New создает новый Handler с переданными логгером и сервисами.
func New(log *slog.Logger, service Service, entitlements EntitlementService) *Handler {
	return &Handler{
		log:          log,
		service:      service,
		entitlements: entitlements,
	}
}

// ServeHTTP godoc
// @Summary Список записей журнала
// @Description Возвращает записи журнала пользователя в пределах тарифной глубины истории
// @Tags Entries
// @Produce  json
// @Param limit query int false "Максимум записей в ответе"
// @Param offset query int false "Смещение"
// @Success 200 {object} map[string]any "Список записей"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Тариф не определен"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /entries [get]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.entry.list"

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

	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = defaultLimit
	}
	offset, err := strconv.Atoi(r.URL.Query().Get("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}

	res, err := h.entitlements.ResolveForUsername(r.Context(), username)
	if err != nil {
		log.Error("failed to resolve plan limits", sl.Err(err))
		w.WriteHeader(http.StatusForbidden)
		render.JSON(w, r, response.Error("plan could not be resolved"))
		return
	}

	entries, err := h.service.ListEntries(r.Context(), username, res.Limits, limit, offset)
	if err != nil {
		log.Error("failed to list entries", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list entries"))
		return
	}

	log.Info("success to list entries", slog.Int("count", len(entries)))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"entries": entries,
		"count":   len(entries),
	}))
}
