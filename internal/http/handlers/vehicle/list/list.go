// Package list реализует HTTP-обработчик получения списка активных машин парка.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/fleet-ledger/internal/http/middlewarectx"
	"github.com/magabrotheeeer/fleet-ledger/internal/http/response"
	"github.com/magabrotheeeer/fleet-ledger/internal/lib/sl"
	"github.com/magabrotheeeer/fleet-ledger/internal/models"
)

// Handler отвечает за обработку запросов на список машин.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики списка машин.
type Service interface {
	ListVehicles(ctx context.Context, username string) ([]*models.Vehicle, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Список машин
// @Description Возвращает активные машины парка пользователя
// @Tags Vehicles
// @Produce  json
// @Success 200 {object} map[string]any "Список машин"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /vehicles [get]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.vehicle.list"

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

	vehicles, err := h.service.ListVehicles(r.Context(), username)
	if err != nil {
		log.Error("failed to list vehicles", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list vehicles"))
		return
	}

	log.Info("success to list vehicles", slog.Int("count", len(vehicles)))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"vehicles": vehicles,
		"count":    len(vehicles),
	}))
}
