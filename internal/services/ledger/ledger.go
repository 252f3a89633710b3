// Package ledger содержит бизнес-логику ручных записей журнала и парка машин:
// создание с финансовым расчётом, чтение через кеш, правку и удаление,
// а также тарифные лимиты на размер парка и глубину истории.
package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/fleet-ledger/internal/entitlement"
	"github.com/magabrotheeeer/fleet-ledger/internal/finance"
	"github.com/magabrotheeeer/fleet-ledger/internal/lib/dates"
	"github.com/magabrotheeeer/fleet-ledger/internal/models"
)

// EntryRepository определяет методы для работы с записями журнала в хранилище.
type EntryRepository interface {
	// CreateEntry добавляет новую запись и возвращает её ID.
	CreateEntry(ctx context.Context, entry models.Entry) (int, error)
	// ReadEntry возвращает запись по ID.
	ReadEntry(ctx context.Context, id int, username string) (*models.Entry, error)
	// UpdateEntry обновляет запись по ID.
	UpdateEntry(ctx context.Context, entry models.Entry, id int, username string) (int, error)
	// RemoveEntry удаляет запись по ID.
	RemoveEntry(ctx context.Context, id int, username string) (int, error)
	// ListEntries возвращает записи пользователя не раньше since с пагинацией.
	ListEntries(ctx context.Context, username string, since time.Time, limit, offset int) ([]*models.Entry, error)
}

// VehicleRepository определяет методы для работы с машинами в хранилище.
type VehicleRepository interface {
	CreateVehicle(ctx context.Context, v models.Vehicle) (int, error)
	GetVehicle(ctx context.Context, id int, username string) (*models.Vehicle, error)
	ListActiveVehicles(ctx context.Context, username string) ([]*models.Vehicle, error)
	CountActiveVehicles(ctx context.Context, username string) (int, error)
	DeactivateVehicle(ctx context.Context, id int, username string) (int, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	// Get пытается получить значение из кеша по ключу.
	Get(key string, result any) (bool, error)
	// Set сохраняет значение в кеш с временем жизни.
	Set(key string, value any, expiration time.Duration) error
	// Invalidate удаляет значение из кеша по ключу.
	Invalidate(key string) error
}

// Service реализует бизнес-логику журнала, включая кеширование записей.
type Service struct {
	entries  EntryRepository
	vehicles VehicleRepository
	cache    Cache
	log      *slog.Logger
}

// New создает новый экземпляр Service.
func New(entries EntryRepository, vehicles VehicleRepository, cache Cache, log *slog.Logger) *Service {
	return &Service{
		entries:  entries,
		vehicles: vehicles,
		cache:    cache,
		log:      log,
	}
}

// CreateEntry создает ручную запись за один день: парсит дату, загружает
// машину, прогоняет строку через финансовый расчёт с разовыми расходами
// и сохраняет. Возвращает ID созданной записи.
func (s *Service) CreateEntry(ctx context.Context, username string, req models.EntryRequest) (int, error) {
	entry, err := s.buildEntry(ctx, username, req)
	if err != nil {
		return 0, err
	}

	id, err := s.entries.CreateEntry(ctx, *entry)
	if err != nil {
		return 0, err
	}
	s.log.Info("created ledger entry", slog.Int("id", id), slog.String("username", username))

	cacheKey := entryCacheKey(id)
	if err := s.cache.Set(cacheKey, entry, time.Hour); err != nil {
		s.log.Warn("failed to cache entry", slog.String("key", cacheKey), slog.Any("err", err))
	}

	return id, nil
}

// ReadEntry возвращает запись по ID, используя кеш или репозиторий.
func (s *Service) ReadEntry(ctx context.Context, id int, username string) (*models.Entry, error) {
	var result *models.Entry
	cacheKey := entryCacheKey(id)
	found, err := s.cache.Get(cacheKey, &result)
	if err != nil {
		return nil, err
	}
	if found && result.Username == username {
		return result, nil
	}

	result, err = s.entries.ReadEntry(ctx, id, username)
	if err != nil {
		return nil, err
	}

	if result != nil {
		if err := s.cache.Set(cacheKey, result, time.Hour); err != nil {
			s.log.Warn("failed to add to cache", slog.String("key", cacheKey), slog.Any("err", err))
		}
	}
	return result, nil
}

// UpdateEntry пересчитывает и обновляет запись, затем обновляет кеш.
func (s *Service) UpdateEntry(ctx context.Context, id int, username string, req models.EntryRequest) (int, error) {
	entry, err := s.buildEntry(ctx, username, req)
	if err != nil {
		return 0, err
	}

	count, err := s.entries.UpdateEntry(ctx, *entry, id, username)
	if err != nil {
		return 0, err
	}
	s.log.Info("updated ledger entry", slog.Int("id", id))

	cacheKey := entryCacheKey(id)
	if err := s.cache.Set(cacheKey, entry, time.Hour); err != nil {
		s.log.Warn("failed to cache entry", slog.String("key", cacheKey), slog.Any("err", err))
	}
	return count, nil
}

// RemoveEntry удаляет запись по ID и инвалидирует кеш.
func (s *Service) RemoveEntry(ctx context.Context, id int, username string) (int, error) {
	cacheKey := entryCacheKey(id)
	if err := s.cache.Invalidate(cacheKey); err != nil {
		s.log.Warn("failed to remove from cache", slog.String("key", cacheKey), slog.Any("err", err))
	}

	count, err := s.entries.RemoveEntry(ctx, id, username)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// ListEntries возвращает записи пользователя с пагинацией. Глубина выборки
// ограничена тарифным лимитом TripHistoryDays.
func (s *Service) ListEntries(ctx context.Context, username string, limits entitlement.Limits, limit, offset int) ([]*models.Entry, error) {
	since := dates.Day(time.Now().UTC()).AddDate(0, 0, -limits.TripHistoryDays)
	return s.entries.ListEntries(ctx, username, since, limit, offset)
}

// CreateVehicle добавляет машину, проверяя тарифный лимит на размер парка.
// Нулевой или отрицательный пробег отклонён валидацией запроса раньше.
func (s *Service) CreateVehicle(ctx context.Context, username string, limits entitlement.Limits, req models.VehicleRequest) (int, error) {
	count, err := s.vehicles.CountActiveVehicles(ctx, username)
	if err != nil {
		return 0, err
	}
	if count >= limits.MaxVehicles {
		return 0, fmt.Errorf("vehicle limit reached: plan allows %d", limits.MaxVehicles)
	}

	id, err := s.vehicles.CreateVehicle(ctx, models.Vehicle{
		Username:            username,
		Name:                req.Name,
		MileageKmPerLiter:   req.MileageKmPerLiter,
		EarningMode:         req.EarningMode,
		EarningRate:         req.EarningRate,
		MonthlyLoanPayment:  req.MonthlyLoanPayment,
		MonthlyDriverSalary: req.MonthlyDriverSalary,
		MonthlyMaintenance:  req.MonthlyMaintenance,
		IsActive:            true,
	})
	if err != nil {
		return 0, err
	}
	s.log.Info("created vehicle", slog.Int("id", id), slog.String("username", username))
	return id, nil
}

// ListVehicles возвращает активные машины пользователя.
func (s *Service) ListVehicles(ctx context.Context, username string) ([]*models.Vehicle, error) {
	return s.vehicles.ListActiveVehicles(ctx, username)
}

// DeactivateVehicle помечает машину неактивной; записи журнала,
// ссылающиеся на неё, сохраняются.
func (s *Service) DeactivateVehicle(ctx context.Context, id int, username string) (int, error) {
	return s.vehicles.DeactivateVehicle(ctx, id, username)
}

func (s *Service) buildEntry(ctx context.Context, username string, req models.EntryRequest) (*models.Entry, error) {
	entryDate, err := time.Parse("2006-01-02", req.EntryDate)
	if err != nil {
		return nil, fmt.Errorf("invalid entry date: %w", err)
	}
	if dates.Day(entryDate).After(dates.Day(time.Now().UTC())) {
		return nil, fmt.Errorf("entry date must not be in the future")
	}

	vehicle, err := s.vehicles.GetVehicle(ctx, req.VehicleID, username)
	if err != nil {
		return nil, fmt.Errorf("vehicle %d: %w", req.VehicleID, err)
	}

	extra := finance.Expenses{
		Toll:   req.TollExpenses,
		Repair: req.RepairExpenses,
		Food:   req.FoodExpenses,
		Misc:   req.MiscExpenses,
	}
	b := finance.DeriveWithExpenses(*vehicle, req.DistanceTravelled, req.FuelPrice, extra)

	return &models.Entry{
		Username:            username,
		VehicleID:           vehicle.ID,
		EntryDate:           dates.Day(entryDate),
		DistanceTravelled:   req.DistanceTravelled,
		FuelConsumed:        b.FuelConsumed,
		FuelCost:            b.FuelCost,
		TripEarnings:        b.TripEarnings,
		AmortizedFixedCosts: b.AmortizedFixedCosts,
		TollExpenses:        req.TollExpenses,
		RepairExpenses:      req.RepairExpenses,
		FoodExpenses:        req.FoodExpenses,
		MiscExpenses:        req.MiscExpenses,
		TotalExpenses:       b.TotalExpenses,
		NetProfit:           b.NetProfit,
		Notes:               req.Notes,
	}, nil
}

func entryCacheKey(id int) string {
	return fmt.Sprintf("entry:%d", id)
}
