// Package scheduler периодически прогоняет сверку журнала по всем
// аккаунтам и публикует уведомления об автосверке в очередь рассылки.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/fleet-ledger/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/fleet-ledger/internal/lib/sl"
	"github.com/magabrotheeeer/fleet-ledger/internal/models"
	"github.com/magabrotheeeer/fleet-ledger/internal/services/reconcile"
)

// UserRepository определяет методы для перебора аккаунтов.
type UserRepository interface {
	ListUsernames(ctx context.Context) ([]string, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}

// Reconciler запускает проход сверки для одного аккаунта.
type Reconciler interface {
	Run(ctx context.Context, username string, now time.Time) (*reconcile.Report, error)
}

// Service обходит аккаунты по расписанию и сверяет их журналы.
type Service struct {
	users      UserRepository
	reconciler Reconciler
	log        *slog.Logger
}

// New создает новый экземпляр Service.
func New(users UserRepository, reconciler Reconciler, log *slog.Logger) *Service {
	return &Service{
		users:      users,
		reconciler: reconciler,
		log:        log,
	}
}

// RunReconcileLoop сверяет все аккаунты сразу и далее раз в сутки.
func (s *Service) RunReconcileLoop(ctx context.Context, channel *amqp.Channel) {
	s.runReconcilePass(ctx, channel)

	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runReconcilePass(ctx, channel)
		}
	}
}

func (s *Service) runReconcilePass(ctx context.Context, channel *amqp.Channel) {
	s.log.Info("starting ledger reconcile pass")
	usernames, err := s.users.ListUsernames(ctx)
	if err != nil {
		s.log.Error("failed to list accounts", sl.Err(err))
		return
	}
	if len(usernames) == 0 {
		s.log.Info("no accounts to reconcile")
		return
	}
	s.log.Info("reconciling accounts", "count", len(usernames))

	for _, username := range usernames {
		report, err := s.reconciler.Run(ctx, username, time.Now().UTC())
		if err != nil {
			s.log.Error("reconcile pass failed for account",
				slog.String("username", username), sl.Err(err))
			continue
		}
		if report.SettledCount == 0 {
			continue
		}
		notice, err := s.buildNotice(ctx, username, report)
		if err != nil {
			s.log.Error("failed to build settlement notice",
				slog.String("username", username), sl.Err(err))
			continue
		}
		err = rabbitmq.PublishMessage(channel, rabbitmq.NotificationsExchange,
			rabbitmq.SettlementRoutingKey, notice)
		if err != nil {
			s.log.Error("failed to publish message", sl.Err(err))
		}
	}
}

func (s *Service) buildNotice(ctx context.Context, username string, report *reconcile.Report) (*models.SettlementNotice, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return &models.SettlementNotice{
		Email:            user.Email,
		Username:         username,
		SettledDates:     report.SettledDates,
		CorrectableCount: len(report.Correctable),
	}, nil
}
