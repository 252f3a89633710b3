// Package finance реализует чистый финансовый расчёт одной строки журнала:
// профиль машины + дистанция + цена топлива -> расход, затраты, доход
// и чистая прибыль. Никакого ввода-вывода и округления: вся арифметика
// в плавающей точке, округление — забота слоя отображения.
package finance

import (
	"math"

	"github.com/magabrotheeeer/fleet-ledger/internal/models"
)

// DefaultFuelPrice подставляется вместо отсутствующей или некорректной
// цены топлива.
const DefaultFuelPrice = 100

// fixedCostDivisor — фиксированное 30-дневное приближение месяца для
// амортизации ежемесячных затрат. Намеренно не календарное.
const fixedCostDivisor = 30

// Breakdown — полный финансовый разрез одного дня.
type Breakdown struct {
	FuelConsumed        float64 `json:"fuel_consumed"`
	FuelCost            float64 `json:"fuel_cost"`
	TripEarnings        float64 `json:"trip_earnings"`
	AmortizedFixedCosts float64 `json:"amortized_fixed_costs"`
	TotalExpenses       float64 `json:"total_expenses"`
	NetProfit           float64 `json:"net_profit"`
}

// Expenses — разовые расходы дня, задаваемые пользователем при ручной записи.
// В путях дозаполнения и автосверки они нулевые.
type Expenses struct {
	Toll   float64
	Repair float64
	Food   float64
	Misc   float64
}

// Sum возвращает сумму разовых расходов.
func (e Expenses) Sum() float64 {
	return e.Toll + e.Repair + e.Food + e.Misc
}

// Derive считает финансовый разрез дня без разовых расходов.
// Детерминирован для любых конечных входов; нулевой пробег машины
// отсекается валидацией при её создании.
func Derive(v models.Vehicle, distance, fuelPrice float64) Breakdown {
	return DeriveWithExpenses(v, distance, fuelPrice, Expenses{})
}

// DeriveWithExpenses считает финансовый разрез дня с учётом разовых расходов.
func DeriveWithExpenses(v models.Vehicle, distance, fuelPrice float64, extra Expenses) Breakdown {
	if fuelPrice <= 0 || math.IsNaN(fuelPrice) || math.IsInf(fuelPrice, 0) {
		fuelPrice = DefaultFuelPrice
	}

	fuelConsumed := distance / v.MileageKmPerLiter
	fuelCost := fuelConsumed * fuelPrice

	var earnings float64
	switch v.EarningMode {
	case models.EarningPerDistance:
		earnings = distance * v.EarningRate
	default:
		// per_trip и custom: плоская ставка независимо от дистанции.
		earnings = v.EarningRate
	}

	amortized := (v.MonthlyLoanPayment + v.MonthlyDriverSalary + v.MonthlyMaintenance) / fixedCostDivisor
	total := fuelCost + amortized + extra.Sum()

	return Breakdown{
		FuelConsumed:        fuelConsumed,
		FuelCost:            fuelCost,
		TripEarnings:        earnings,
		AmortizedFixedCosts: amortized,
		TotalExpenses:       total,
		NetProfit:           earnings - total,
	}
}

// ZeroBreakdown — разрез автосверки: нулевая дистанция и нулевые суммы.
// Форма совпадает с обычным расчётом, чтобы строка ложилась в журнал
// теми же полями.
func ZeroBreakdown() Breakdown {
	return Breakdown{}
}
