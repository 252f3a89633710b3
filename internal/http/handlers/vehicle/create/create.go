// Package create реализует HTTP-обработчик добавления машины в парк.
//
// Handler валидирует параметры машины, вычисляет тариф пользователя
// и передает создание в бизнес-логику, где проверяется лимит на размер парка.
package create

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/fleet-ledger/internal/entitlement"
	"github.com/magabrotheeeer/fleet-ledger/internal/http/middlewarectx"
	"github.com/magabrotheeeer/fleet-ledger/internal/http/response"
	"github.com/magabrotheeeer/fleet-ledger/internal/lib/sl"
	"github.com/magabrotheeeer/fleet-ledger/internal/models"
)

// Handler отвечает за обработку запросов на добавление машины.
type Handler struct {
	log          *slog.Logger
	service      Service
	entitlements EntitlementService
	validate     *validator.Validate
}

// Service описывает интерфейс бизнес-логики добавления машины.
type Service interface {
	CreateVehicle(ctx context.Context, username string, limits entitlement.Limits, req models.VehicleRequest) (int, error)
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
		validate:     validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Добавить машину
// @Description Добавляет машину в парк пользователя с учетом тарифного лимита
// @Tags Vehicles
// @Accept  json
// @Produce  json
// @Param request body models.VehicleRequest true "Параметры машины"
// @Success 200 {object} map[string]any "Машина добавлена"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 403 {object} response.ErrorResponse "Превышен лимит парка"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /vehicles [post]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.vehicle.create"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.VehicleRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to decode request"))
		return
	}
	log.Info("request body decoded", slog.Any("request", req))

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}
	log.Info("all fields are validated")

	username, ok := r.Context().Value(middlewarectx.User).(string)
	if !ok || username == "" {
		log.Error("username not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	res, err := h.entitlements.ResolveForUsername(r.Context(), username)
	if err != nil {
		log.Error("failed to resolve plan limits", sl.Err(err))
		w.WriteHeader(http.StatusForbidden)
		render.JSON(w, r, response.Error("plan could not be resolved"))
		return
	}

	id, err := h.service.CreateVehicle(r.Context(), username, res.Limits, req)
	if err != nil {
		if strings.Contains(err.Error(), "vehicle limit reached") {
			log.Warn("vehicle limit reached", slog.String("username", username))
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error(err.Error()))
			return
		}
		log.Error("failed to create vehicle", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not create vehicle"))
		return
	}

	log.Info("success to create vehicle", slog.Int("id", id))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"id": id,
	}))
}
