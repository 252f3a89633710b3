// Package backfill реализует дозаполнение корректируемых пропусков:
// валидацию пакета целиком, финансовый расчёт каждой строки и одну
// пакетную вставку. Частичной фиксации нет: либо весь пакет, либо ничего.
package backfill

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/fleet-ledger/internal/finance"
	"github.com/magabrotheeeer/fleet-ledger/internal/lib/dates"
	"github.com/magabrotheeeer/fleet-ledger/internal/models"
)

// EntryRepository описывает пакетную запись строк журнала.
type EntryRepository interface {
	CreateEntriesBatch(ctx context.Context, entries []*models.Entry) (int, error)
}

// VehicleRepository описывает чтение машин пользователя.
type VehicleRepository interface {
	GetVehicle(ctx context.Context, id int, username string) (*models.Vehicle, error)
}

// Result — итог отправки пакета.
type Result struct {
	Inserted int `json:"inserted"`
}

// Service — контроллер дозаполнения.
type Service struct {
	entries  EntryRepository
	vehicles VehicleRepository
	log      *slog.Logger
}

// New создает новый экземпляр Service.
func New(entries EntryRepository, vehicles VehicleRepository, log *slog.Logger) *Service {
	return &Service{
		entries:  entries,
		vehicles: vehicles,
		log:      log,
	}
}

// Submit проводит пакет дозаполнения: сначала валидирует каждую строку
// и загружает её машину, затем прогоняет строки через финансовый расчёт
// и вставляет одним пакетом. Ошибка валидации любой строки блокирует
// весь пакет до каких-либо записей.
//
// correctable — список дат, открытых к заполнению на момент отправки;
// строки с датами вне списка отклоняются.
func (s *Service) Submit(ctx context.Context, username string, req models.BackfillRequest, correctable []time.Time) (*Result, error) {
	const op = "backfill.Submit"

	open := make(map[time.Time]struct{}, len(correctable))
	for _, d := range correctable {
		open[dates.Day(d)] = struct{}{}
	}

	var entries []*models.Entry
	var err error
	switch req.Mode {
	case models.BackfillModeDaily:
		entries, err = s.buildDailyRows(ctx, username, req.Daily, open)
	case models.BackfillModeDistributed:
		entries, err = s.buildDistributedRows(ctx, username, req.Distributed, correctable)
	default:
		return nil, fmt.Errorf("%s: unknown mode %q", op, req.Mode)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%s: nothing to submit", op)
	}

	inserted, err := s.entries.CreateEntriesBatch(ctx, entries)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("backfill submitted",
		slog.String("username", username),
		slog.String("mode", req.Mode),
		slog.Int("inserted", inserted))
	return &Result{Inserted: inserted}, nil
}

// buildDailyRows собирает строки подневного режима: каждая строка
// самостоятельна — своя дата, машина и дистанция.
func (s *Service) buildDailyRows(ctx context.Context, username string, rows []models.BackfillDailyRow, open map[time.Time]struct{}) ([]*models.Entry, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("daily mode requires at least one row")
	}

	entries := make([]*models.Entry, 0, len(rows))
	for _, row := range rows {
		entryDate, err := time.Parse("2006-01-02", row.EntryDate)
		if err != nil {
			return nil, fmt.Errorf("invalid entry date %q: %w", row.EntryDate, err)
		}
		if _, ok := open[dates.Day(entryDate)]; !ok {
			return nil, fmt.Errorf("date %s is not open for backfill", row.EntryDate)
		}
		if row.DistanceTravelled <= 0 {
			return nil, fmt.Errorf("distance must be positive for date %s", row.EntryDate)
		}

		vehicle, err := s.vehicles.GetVehicle(ctx, row.VehicleID, username)
		if err != nil {
			return nil, fmt.Errorf("vehicle %d: %w", row.VehicleID, err)
		}

		entries = append(entries, buildEntry(username, vehicle, dates.Day(entryDate), row.DistanceTravelled, row.FuelPrice))
	}
	return entries, nil
}

// buildDistributedRows собирает строки распределённого режима: суммарная
// дистанция каждого кортежа делится поровну между всеми корректируемыми
// датами, машина участвует не более чем в одном кортеже.
func (s *Service) buildDistributedRows(ctx context.Context, username string, rows []models.BackfillDistributedRow, correctable []time.Time) ([]*models.Entry, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("distributed mode requires at least one row")
	}
	if len(correctable) == 0 {
		return nil, fmt.Errorf("no correctable gaps to distribute over")
	}

	// Весь пакет проверяется до загрузки первой машины: ошибка в любом
	// кортеже блокирует пакет целиком.
	seen := make(map[int]struct{}, len(rows))
	for _, row := range rows {
		if _, dup := seen[row.VehicleID]; dup {
			return nil, fmt.Errorf("vehicle %d used in more than one row", row.VehicleID)
		}
		seen[row.VehicleID] = struct{}{}

		if row.TotalDistance <= 0 {
			return nil, fmt.Errorf("total distance must be positive for vehicle %d", row.VehicleID)
		}
	}

	entries := make([]*models.Entry, 0, len(rows)*len(correctable))
	for _, row := range rows {
		vehicle, err := s.vehicles.GetVehicle(ctx, row.VehicleID, username)
		if err != nil {
			return nil, fmt.Errorf("vehicle %d: %w", row.VehicleID, err)
		}

		perDay := row.TotalDistance / float64(len(correctable))
		for _, d := range correctable {
			entries = append(entries, buildEntry(username, vehicle, dates.Day(d), perDay, row.FuelPrice))
		}
	}
	return entries, nil
}

func buildEntry(username string, vehicle *models.Vehicle, entryDate time.Time, distance, fuelPrice float64) *models.Entry {
	b := finance.Derive(*vehicle, distance, fuelPrice)
	return &models.Entry{
		Username:            username,
		VehicleID:           vehicle.ID,
		EntryDate:           entryDate,
		DistanceTravelled:   distance,
		FuelConsumed:        b.FuelConsumed,
		FuelCost:            b.FuelCost,
		TripEarnings:        b.TripEarnings,
		AmortizedFixedCosts: b.AmortizedFixedCosts,
		TotalExpenses:       b.TotalExpenses,
		NetProfit:           b.NetProfit,
	}
}
