// Package reconcile реализует движок сверки журнала: поиск непокрытых дат
// между созданием аккаунта и вчерашним днём, их разбиение по окну
// корректировки тарифа и автосверку устаревших пропусков нулевыми записями.
package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/fleet-ledger/internal/entitlement"
	"github.com/magabrotheeeer/fleet-ledger/internal/lib/dates"
	"github.com/magabrotheeeer/fleet-ledger/internal/lib/sl"
	"github.com/magabrotheeeer/fleet-ledger/internal/models"
)

// UserRepository описывает чтение аккаунта для вычисления тарифа.
type UserRepository interface {
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}

// EntryRepository описывает доступ движка сверки к журналу.
type EntryRepository interface {
	// ListEntryDates возвращает уникальные покрытые даты в диапазоне.
	ListEntryDates(ctx context.Context, username string, from, to time.Time) ([]time.Time, error)
	// CreateEntriesBatch вставляет пакет записей, пропуская уже покрытые даты.
	CreateEntriesBatch(ctx context.Context, entries []*models.Entry) (int, error)
}

// VehicleRepository описывает выбор машины по умолчанию для автосверки.
type VehicleRepository interface {
	FirstActiveVehicle(ctx context.Context, username string) (*models.Vehicle, error)
}

// Report — результат прохода сверки: тариф, оставшиеся корректируемые даты
// и итог автосверки.
type Report struct {
	Plan                 entitlement.PlanKind `json:"plan"`
	CorrectionWindowDays int                  `json:"correction_window_days"`
	Correctable          []time.Time          `json:"correctable"`
	SettledDates         []time.Time          `json:"settled_dates"`
	SettledCount         int                  `json:"settled_count"`
}

// NothingToDo сообщает, что корректируемых пропусков не осталось.
func (r *Report) NothingToDo() bool {
	return len(r.Correctable) == 0
}

// Service — движок сверки.
type Service struct {
	users    UserRepository
	entries  EntryRepository
	vehicles VehicleRepository
	resolver *entitlement.Resolver
	log      *slog.Logger
}

// New создает новый экземпляр Service.
func New(users UserRepository, entries EntryRepository, vehicles VehicleRepository,
	resolver *entitlement.Resolver, log *slog.Logger) *Service {
	return &Service{
		users:    users,
		entries:  entries,
		vehicles: vehicles,
		resolver: resolver,
		log:      log,
	}
}

// ResolveForUsername загружает аккаунт и вычисляет его текущий тариф.
// Ошибка загрузки возвращается вызывающему: тот обязан закрыть доступ,
// а не подставлять лимиты по умолчанию.
func (s *Service) ResolveForUsername(ctx context.Context, username string) (entitlement.Resolution, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return entitlement.Expired(), err
	}
	return s.resolver.Resolve(*user, time.Now().UTC()), nil
}

// FindCoverageGaps возвращает даты диапазона [from, to] без единой записи
// журнала, по возрастанию. Покрытие считается по аккаунту: запись по любой
// машине закрывает дату. Если to раньше from, сканирование не выполняется.
func (s *Service) FindCoverageGaps(ctx context.Context, username string, from, to time.Time) ([]time.Time, error) {
	const op = "reconcile.FindCoverageGaps"
	from, to = dates.Day(from), dates.Day(to)
	if to.Before(from) {
		return nil, nil
	}

	covered, err := s.entries.ListEntryDates(ctx, username, from, to)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return dates.Subtract(dates.Range(from, to), covered), nil
}

// ClassifyGaps разбивает пропуски на корректируемые пользователем и
// подлежащие автосверке. Граница cutoff = today - window включается
// в корректируемые: пограничный день никогда молча не обнуляется.
func ClassifyGaps(gaps []time.Time, correctionWindowDays int, today time.Time) (correctable, autoSettle []time.Time) {
	cutoff := dates.Day(today).AddDate(0, 0, -correctionWindowDays)
	for _, g := range gaps {
		if dates.Day(g).Before(cutoff) {
			autoSettle = append(autoSettle, g)
		} else {
			correctable = append(correctable, g)
		}
	}
	return correctable, autoSettle
}

// Settle вставляет нулевые записи для дат автосверки, привязывая их
// к первой активной машине аккаунта. Возвращает количество реально
// вставленных строк: уже покрытые даты молча пропускаются.
func (s *Service) Settle(ctx context.Context, username string, settleDates []time.Time) (int, error) {
	const op = "reconcile.Settle"
	if len(settleDates) == 0 {
		return 0, nil
	}

	vehicle, err := s.vehicles.FirstActiveVehicle(ctx, username)
	if err != nil {
		return 0, fmt.Errorf("%s: no active vehicle for settlement: %w", op, err)
	}

	entries := make([]*models.Entry, 0, len(settleDates))
	for _, d := range settleDates {
		entries = append(entries, &models.Entry{
			Username:  username,
			VehicleID: vehicle.ID,
			EntryDate: dates.Day(d),
			Notes:     models.SettlementNote,
		})
	}

	inserted, err := s.entries.CreateEntriesBatch(ctx, entries)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return inserted, nil
}

// Run выполняет полный проход сверки для аккаунта на момент now:
// тариф -> поиск пропусков -> классификация -> автосверка.
//
// Автосверка идёт до возврата корректируемых дат, чтобы закрытые даты
// не предлагались к заполнению. Сбой записи автосверки не фатален:
// пропуски останутся непокрытыми и будут переобнаружены следующим проходом.
func (s *Service) Run(ctx context.Context, username string, now time.Time) (*Report, error) {
	const op = "reconcile.Run"
	log := s.log.With(slog.String("op", op), slog.String("username", username))

	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	res := s.resolver.Resolve(*user, now)

	today := dates.Day(now)
	yesterday := dates.Yesterday(now)
	start := dates.Max(dates.Day(user.CreatedAt), today.AddDate(0, 0, -res.Limits.TripHistoryDays))

	gaps, err := s.FindCoverageGaps(ctx, username, start, yesterday)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	correctable, autoSettle := ClassifyGaps(gaps, res.Limits.CorrectionWindowDays, today)

	report := &Report{
		Plan:                 res.Plan,
		CorrectionWindowDays: res.Limits.CorrectionWindowDays,
		Correctable:          correctable,
	}

	if len(autoSettle) > 0 {
		settled, err := s.Settle(ctx, username, autoSettle)
		if err != nil {
			// Автосверка best-effort: даты переобнаружатся следующим проходом.
			log.Error("failed to settle gaps", sl.Err(err))
		} else {
			report.SettledDates = autoSettle
			report.SettledCount = settled
			log.Info("auto-settled ledger gaps", slog.Int("count", settled))
		}
	}

	return report, nil
}
