package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/magabrotheeeer/fleet-ledger/internal/models"
)

const entryColumns = `id, username, vehicle_id, entry_date, distance_travelled, fuel_consumed,
			      fuel_cost, trip_earnings, amortized_fixed_costs, toll_expenses, repair_expenses,
			      food_expenses, misc_expenses, total_expenses, net_profit, notes`

// CreateEntry вставляет новую запись журнала и возвращает её ID.
func (s *Storage) CreateEntry(ctx context.Context, entry models.Entry) (int, error) {
	const op = "storage.CreateEntry"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO ledger_entries (username, vehicle_id, entry_date, distance_travelled,
			      fuel_consumed, fuel_cost, trip_earnings, amortized_fixed_costs, toll_expenses,
			      repair_expenses, food_expenses, misc_expenses, total_expenses, net_profit, notes)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
			  RETURNING id`
	var newID int
	err := s.DB.QueryRowContext(ctx, query,
		entry.Username, entry.VehicleID, entry.EntryDate, entry.DistanceTravelled,
		entry.FuelConsumed, entry.FuelCost, entry.TripEarnings, entry.AmortizedFixedCosts,
		entry.TollExpenses, entry.RepairExpenses, entry.FoodExpenses, entry.MiscExpenses,
		entry.TotalExpenses, entry.NetProfit, entry.Notes).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// CreateEntriesBatch вставляет пакет записей в одной транзакции и возвращает
// количество вставленных строк. Конфликт по (username, vehicle_id, entry_date)
// пропускается: уже покрытая дата не перезаписывается.
func (s *Storage) CreateEntriesBatch(ctx context.Context, entries []*models.Entry) (int, error) {
	const op = "storage.CreateEntriesBatch"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `INSERT INTO ledger_entries (username, vehicle_id, entry_date, distance_travelled,
			      fuel_consumed, fuel_cost, trip_earnings, amortized_fixed_costs, toll_expenses,
			      repair_expenses, food_expenses, misc_expenses, total_expenses, net_profit, notes)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
			  ON CONFLICT (username, vehicle_id, entry_date) DO NOTHING`
	var inserted int
	for _, entry := range entries {
		result, err := tx.ExecContext(ctx, query,
			entry.Username, entry.VehicleID, entry.EntryDate, entry.DistanceTravelled,
			entry.FuelConsumed, entry.FuelCost, entry.TripEarnings, entry.AmortizedFixedCosts,
			entry.TollExpenses, entry.RepairExpenses, entry.FoodExpenses, entry.MiscExpenses,
			entry.TotalExpenses, entry.NetProfit, entry.Notes)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", op, err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("%s: %w", op, err)
		}
		inserted += int(rows)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return inserted, nil
}

// ReadEntry возвращает запись журнала пользователя по её ID.
func (s *Storage) ReadEntry(ctx context.Context, id int, username string) (*models.Entry, error) {
	const op = "storage.ReadEntry"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + entryColumns + `
			  FROM ledger_entries WHERE id = $1 AND username = $2`
	row := s.DB.QueryRowContext(ctx, query, id, username)

	var result models.Entry
	if err := scanEntry(row, &result); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &result, nil
}

// UpdateEntry обновляет запись журнала по её ID и возвращает количество
// изменённых строк.
func (s *Storage) UpdateEntry(ctx context.Context, entry models.Entry, id int, username string) (int, error) {
	const op = "storage.UpdateEntry"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE ledger_entries
			  SET vehicle_id = $1, entry_date = $2, distance_travelled = $3, fuel_consumed = $4,
			      fuel_cost = $5, trip_earnings = $6, amortized_fixed_costs = $7, toll_expenses = $8,
			      repair_expenses = $9, food_expenses = $10, misc_expenses = $11, total_expenses = $12,
			      net_profit = $13, notes = $14
			  WHERE id = $15 AND username = $16`
	result, err := s.DB.ExecContext(ctx, query,
		entry.VehicleID, entry.EntryDate, entry.DistanceTravelled, entry.FuelConsumed,
		entry.FuelCost, entry.TripEarnings, entry.AmortizedFixedCosts, entry.TollExpenses,
		entry.RepairExpenses, entry.FoodExpenses, entry.MiscExpenses, entry.TotalExpenses,
		entry.NetProfit, entry.Notes, id, username)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// RemoveEntry удаляет запись журнала и возвращает количество удалённых строк.
func (s *Storage) RemoveEntry(ctx context.Context, id int, username string) (int, error) {
	const op = "storage.RemoveEntry"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM ledger_entries WHERE id = $1 AND username = $2`
	result, err := s.DB.ExecContext(ctx, query, id, username)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// ListEntries возвращает записи журнала пользователя не раньше даты since,
// новые сверху, с пагинацией.
func (s *Storage) ListEntries(ctx context.Context, username string, since time.Time, limit, offset int) ([]*models.Entry, error) {
	const op = "storage.ListEntries"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + entryColumns + `
			  FROM ledger_entries
			  WHERE username = $1 AND entry_date >= $2
			  ORDER BY entry_date DESC, id DESC
			  LIMIT $3 OFFSET $4`
	rows, err := s.DB.QueryContext(ctx, query, username, since, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = rows.Close() }()

	var result []*models.Entry
	for rows.Next() {
		var entry models.Entry
		if err := scanEntry(rows, &entry); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ListEntryDates возвращает отсортированные уникальные даты записей
// пользователя в диапазоне [from, to]. Покрытие учитывается по аккаунту
// в целом: запись по любой машине закрывает дату.
func (s *Storage) ListEntryDates(ctx context.Context, username string, from, to time.Time) ([]time.Time, error) {
	const op = "storage.ListEntryDates"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT DISTINCT entry_date
			  FROM ledger_entries
			  WHERE username = $1 AND entry_date BETWEEN $2 AND $3
			  ORDER BY entry_date`
	rows, err := s.DB.QueryContext(ctx, query, username, from, to)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = rows.Close() }()

	var result []time.Time
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// scanner объединяет *sql.Row и *sql.Rows для scanEntry.
type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner, entry *models.Entry) error {
	return row.Scan(&entry.ID, &entry.Username, &entry.VehicleID, &entry.EntryDate,
		&entry.DistanceTravelled, &entry.FuelConsumed, &entry.FuelCost, &entry.TripEarnings,
		&entry.AmortizedFixedCosts, &entry.TollExpenses, &entry.RepairExpenses,
		&entry.FoodExpenses, &entry.MiscExpenses, &entry.TotalExpenses, &entry.NetProfit,
		&entry.Notes)
}
