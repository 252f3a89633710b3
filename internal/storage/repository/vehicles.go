package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/fleet-ledger/internal/models"
)

// CreateVehicle вставляет новую машину и возвращает её ID.
func (s *Storage) CreateVehicle(ctx context.Context, v models.Vehicle) (int, error) {
	const op = "storage.CreateVehicle"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO vehicles (username, name, mileage_km_per_liter, earning_mode, earning_rate,
			      monthly_loan_payment, monthly_driver_salary, monthly_maintenance, is_active)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			  RETURNING id`
	var newID int
	err := s.DB.QueryRowContext(ctx, query,
		v.Username, v.Name, v.MileageKmPerLiter, v.EarningMode, v.EarningRate,
		v.MonthlyLoanPayment, v.MonthlyDriverSalary, v.MonthlyMaintenance, v.IsActive).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetVehicle возвращает машину пользователя по её ID.
func (s *Storage) GetVehicle(ctx context.Context, id int, username string) (*models.Vehicle, error) {
	const op = "storage.GetVehicle"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, username, name, mileage_km_per_liter, earning_mode, earning_rate,
			      monthly_loan_payment, monthly_driver_salary, monthly_maintenance, is_active, created_at
			  FROM vehicles WHERE id = $1 AND username = $2`
	row := s.DB.QueryRowContext(ctx, query, id, username)

	var result models.Vehicle
	if err := row.Scan(&result.ID, &result.Username, &result.Name, &result.MileageKmPerLiter,
		&result.EarningMode, &result.EarningRate, &result.MonthlyLoanPayment,
		&result.MonthlyDriverSalary, &result.MonthlyMaintenance, &result.IsActive, &result.CreatedAt); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &result, nil
}

// ListActiveVehicles возвращает активные машины пользователя в стабильном
// порядке создания.
func (s *Storage) ListActiveVehicles(ctx context.Context, username string) ([]*models.Vehicle, error) {
	const op = "storage.ListActiveVehicles"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, username, name, mileage_km_per_liter, earning_mode, earning_rate,
			      monthly_loan_payment, monthly_driver_salary, monthly_maintenance, is_active, created_at
			  FROM vehicles
			  WHERE username = $1 AND is_active = TRUE
			  ORDER BY created_at, id`
	rows, err := s.DB.QueryContext(ctx, query, username)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = rows.Close() }()

	var result []*models.Vehicle
	for rows.Next() {
		var v models.Vehicle
		if err := rows.Scan(&v.ID, &v.Username, &v.Name, &v.MileageKmPerLiter,
			&v.EarningMode, &v.EarningRate, &v.MonthlyLoanPayment,
			&v.MonthlyDriverSalary, &v.MonthlyMaintenance, &v.IsActive, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// FirstActiveVehicle возвращает первую активную машину пользователя.
// "Первая" — произвольный, но стабильный выбор (ORDER BY created_at, id);
// используется как машина по умолчанию для строк автосверки.
func (s *Storage) FirstActiveVehicle(ctx context.Context, username string) (*models.Vehicle, error) {
	const op = "storage.FirstActiveVehicle"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, username, name, mileage_km_per_liter, earning_mode, earning_rate,
			      monthly_loan_payment, monthly_driver_salary, monthly_maintenance, is_active, created_at
			  FROM vehicles
			  WHERE username = $1 AND is_active = TRUE
			  ORDER BY created_at, id
			  LIMIT 1`
	row := s.DB.QueryRowContext(ctx, query, username)

	var v models.Vehicle
	if err := row.Scan(&v.ID, &v.Username, &v.Name, &v.MileageKmPerLiter,
		&v.EarningMode, &v.EarningRate, &v.MonthlyLoanPayment,
		&v.MonthlyDriverSalary, &v.MonthlyMaintenance, &v.IsActive, &v.CreatedAt); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &v, nil
}

// CountActiveVehicles считает активные машины пользователя; используется
// для проверки тарифного лимита MaxVehicles.
func (s *Storage) CountActiveVehicles(ctx context.Context, username string) (int, error) {
	const op = "storage.CountActiveVehicles"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var count int
	query := `SELECT COUNT(*) FROM vehicles WHERE username = $1 AND is_active = TRUE`
	if err := s.DB.QueryRowContext(ctx, query, username).Scan(&count); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

// DeactivateVehicle помечает машину неактивной и возвращает количество
// изменённых строк. Машина не удаляется: на неё ссылаются записи журнала.
func (s *Storage) DeactivateVehicle(ctx context.Context, id int, username string) (int, error) {
	const op = "storage.DeactivateVehicle"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE vehicles SET is_active = FALSE WHERE id = $1 AND username = $2`
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
