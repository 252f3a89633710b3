package models

import "time"

// Режимы начисления дохода транспортного средства.
const (
	EarningPerDistance = "per_distance" // Доход пропорционален пройденной дистанции
	EarningPerTrip     = "per_trip"     // Фиксированный доход за день работы
	EarningCustom      = "custom"       // Фиксированная ставка, задаваемая вручную
)

// Vehicle описывает профиль затрат и доходов транспортного средства.
// Профиль используется движком финансового расчёта; записи журнала
// ссылаются на машину, поэтому она деактивируется, но не удаляется.
type Vehicle struct {
	ID                  int       // Идентификатор машины
	Username            string    // Владелец
	Name                string    // Название/номер машины
	MileageKmPerLiter   float64   // Пробег на литр топлива, км
	EarningMode         string    // Режим начисления дохода
	EarningRate         float64   // Ставка дохода: за км или за день
	MonthlyLoanPayment  float64   // Ежемесячный платёж по кредиту
	MonthlyDriverSalary float64   // Ежемесячная зарплата водителя
	MonthlyMaintenance  float64   // Ежемесячный бюджет на обслуживание
	IsActive            bool      // Машина активна
	CreatedAt           time.Time // Дата добавления
}

// VehicleRequest используется для приёма данных машины из JSON-запроса.
// Пробег обязан быть строго положительным: деление на ноль в финансовом
// расчёте исключается на этапе создания машины.
type VehicleRequest struct {
	Name                string  `json:"name" validate:"required"`                                            // Название машины
	MileageKmPerLiter   float64 `json:"mileage_km_per_liter" validate:"required,gt=0"`                       // Пробег на литр (>0)
	EarningMode         string  `json:"earning_mode" validate:"required,oneof=per_distance per_trip custom"` // Режим дохода
	EarningRate         float64 `json:"earning_rate" validate:"required,gte=0"`                              // Ставка дохода
	MonthlyLoanPayment  float64 `json:"monthly_loan_payment" validate:"gte=0"`                               // Платёж по кредиту
	MonthlyDriverSalary float64 `json:"monthly_driver_salary" validate:"gte=0"`                              // Зарплата водителя
	MonthlyMaintenance  float64 `json:"monthly_maintenance" validate:"gte=0"`                                // Бюджет обслуживания
}
