package models

import "time"

// SettlementNote помечает строки журнала, вставленные автоматической
// сверкой для дат, вышедших за окно ручной корректировки.
const SettlementNote = "auto-settled: no entry recorded"

// Entry представляет одну строку журнала поездок: (пользователь, машина,
// дата) плюс полный финансовый разрез дня. Инварианты:
//
//	TotalExpenses = FuelCost + AmortizedFixedCosts + разовые расходы
//	NetProfit     = TripEarnings - TotalExpenses
type Entry struct {
	ID                  int       // Идентификатор записи
	Username            string    // Владелец
	VehicleID           int       // Машина, к которой относится запись
	EntryDate           time.Time // Календарный день записи
	DistanceTravelled   float64   // Пройденная дистанция, км
	FuelConsumed        float64   // Израсходованное топливо, л
	FuelCost            float64   // Стоимость топлива
	TripEarnings        float64   // Доход за день
	AmortizedFixedCosts float64   // Суточная доля месячных фиксированных затрат
	TollExpenses        float64   // Платные дороги
	RepairExpenses      float64   // Ремонт
	FoodExpenses        float64   // Питание
	MiscExpenses        float64   // Прочее
	TotalExpenses       float64   // Итого расходов
	NetProfit           float64   // Чистая прибыль
	Notes               string    // Примечания; SettlementNote для автосверки
}

// EntryRequest используется для приёма ручной записи за один день
// из JSON-запроса. Дата приходит строкой в формате 2006-01-02.
type EntryRequest struct {
	VehicleID         int     `json:"vehicle_id" validate:"required,gt=0"`           // Машина
	EntryDate         string  `json:"entry_date" validate:"required"`                // Дата записи
	DistanceTravelled float64 `json:"distance_travelled" validate:"required,gt=0"`   // Дистанция (>0)
	FuelPrice         float64 `json:"fuel_price" validate:"gte=0"`                   // Цена топлива за литр
	TollExpenses      float64 `json:"toll_expenses,omitempty" validate:"gte=0"`      // Платные дороги
	RepairExpenses    float64 `json:"repair_expenses,omitempty" validate:"gte=0"`    // Ремонт
	FoodExpenses      float64 `json:"food_expenses,omitempty" validate:"gte=0"`      // Питание
	MiscExpenses      float64 `json:"misc_expenses,omitempty" validate:"gte=0"`      // Прочее
	Notes             string  `json:"notes,omitempty"`                               // Примечания
}
