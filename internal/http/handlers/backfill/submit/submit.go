// Package submit реализует HTTP-обработчик дозаполнения пропусков журнала.
//
// Перед вставкой выполняется проход сверки: он закрывает даты, вышедшие
// за окно корректировки, и возвращает актуальный список открытых дат.
// Дозаполнение принимается целиком или отклоняется целиком.
package submit

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/fleet-ledger/internal/http/middlewarectx"
	"github.com/magabrotheeeer/fleet-ledger/internal/http/response"
	"github.com/magabrotheeeer/fleet-ledger/internal/lib/sl"
	"github.com/magabrotheeeer/fleet-ledger/internal/models"
	"github.com/magabrotheeeer/fleet-ledger/internal/services/backfill"
	"github.com/magabrotheeeer/fleet-ledger/internal/services/reconcile"
)

// Handler отвечает за обработку запросов на дозаполнение журнала.
type Handler struct {
	log        *slog.Logger
	service    Service
	reconciler ReconcileService
	validate   *validator.Validate
}

// Service описывает интерфейс бизнес-логики дозаполнения.
type Service interface {
	Submit(ctx context.Context, username string, req models.BackfillRequest, correctable []time.Time) (*backfill.Result, error)
}

// ReconcileService запускает проход сверки для определения открытых дат.
type ReconcileService interface {
	Run(ctx context.Context, username string, now time.Time) (*reconcile.Report, error)
}

// New создает новый Handler с переданными логгером и сервисами.
func New(log *slog.Logger, service Service, reconciler ReconcileService) *Handler {
	return &Handler{
		log:        log,
		service:    service,
		reconciler: reconciler,
		validate:   validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Дозаполнить пропуски журнала
// @Description Вносит записи за открытые даты в режиме daily или distributed; запрос принимается целиком или отклоняется целиком
// @Tags Backfill
// @Accept  json
// @Produce  json
// @Param request body models.BackfillRequest true "Данные дозаполнения"
// @Success 200 {object} map[string]any "Записи внесены"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или закрытая дата"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /backfill [post]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.backfill.submit"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.BackfillRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to decode request"))
		return
	}
	log.Info("request body decoded", slog.String("mode", req.Mode))

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

	report, err := h.reconciler.Run(r.Context(), username, time.Now().UTC())
	if err != nil {
		log.Error("failed to reconcile ledger before backfill", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not reconcile ledger"))
		return
	}

	result, err := h.service.Submit(r.Context(), username, req, report.Correctable)
	if err != nil {
		log.Error("failed to submit backfill", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error(err.Error()))
		return
	}

	log.Info("success to submit backfill", slog.Int("inserted", result.Inserted))
	render.JSON(w, r, response.OKWithData(result))
}
