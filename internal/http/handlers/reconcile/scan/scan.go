// Package scan реализует HTTP-обработчик прохода сверки журнала.
//
// Проход находит непокрытые дни аккаунта, автоматически закрывает даты,
// вышедшие за окно корректировки, и возвращает даты, доступные для
// ручного дозаполнения. Повторный вызов безопасен.
package scan

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/fleet-ledger/internal/http/middlewarectx"
	"github.com/magabrotheeeer/fleet-ledger/internal/http/response"
	"github.com/magabrotheeeer/fleet-ledger/internal/lib/sl"
	"github.com/magabrotheeeer/fleet-ledger/internal/services/reconcile"
)

// Handler отвечает за обработку запросов на сверку журнала.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс движка сверки.
type Service interface {
	Run(ctx context.Context, username string, now time.Time) (*reconcile.Report, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Сверить журнал
// @Description Находит дни без записей, закрывает вышедшие за окно корректировки и возвращает оставшиеся
// @Tags Reconcile
// @Produce  json
// @Success 200 {object} map[string]any "Результат сверки"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /reconcile/scan [post]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.reconcile.scan"

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

	report, err := h.service.Run(r.Context(), username, time.Now().UTC())
	if err != nil {
		log.Error("failed to reconcile ledger", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not reconcile ledger"))
		return
	}

	log.Info("success to reconcile ledger",
		slog.Int("correctable", len(report.Correctable)),
		slog.Int("settled", report.SettledCount))
	render.JSON(w, r, response.OKWithData(report))
}
