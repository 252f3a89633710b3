package models

import "time"

// Режимы заполнения пропущенных дат.
const (
	BackfillModeDaily       = "daily"       // Отдельная строка на каждую дату
	BackfillModeDistributed = "distributed" // Общая дистанция, равномерно делимая по датам
)

// BackfillDailyRow описывает одну строку подневного режима: дата из списка
// корректируемых пропусков, машина и дистанция за этот день.
type BackfillDailyRow struct {
	EntryDate         string  `json:"entry_date" validate:"required"`              // Дата пропуска
	VehicleID         int     `json:"vehicle_id" validate:"required,gt=0"`         // Машина
	DistanceTravelled float64 `json:"distance_travelled" validate:"required,gt=0"` // Дистанция (>0)
	FuelPrice         float64 `json:"fuel_price" validate:"gte=0"`                 // Цена топлива за литр
}

// BackfillDistributedRow описывает один кортеж распределённого режима:
// суммарная дистанция машины делится поровну между всеми корректируемыми
// датами. Машина может участвовать не более чем в одном кортеже.
type BackfillDistributedRow struct {
	VehicleID     int     `json:"vehicle_id" validate:"required,gt=0"`     // Машина
	TotalDistance float64 `json:"total_distance" validate:"required,gt=0"` // Суммарная дистанция (>0)
	FuelPrice     float64 `json:"fuel_price" validate:"gte=0"`             // Цена топлива за литр
}

// BackfillRequest используется для приёма пакета заполнения пропусков
// из JSON-запроса. Заполняется ровно одно из полей Daily/Distributed,
// согласно Mode.
type BackfillRequest struct {
	Mode        string                   `json:"mode" validate:"required,oneof=daily distributed"` // Режим заполнения
	Daily       []BackfillDailyRow       `json:"daily,omitempty" validate:"omitempty,dive"`        // Строки подневного режима
	Distributed []BackfillDistributedRow `json:"distributed,omitempty" validate:"omitempty,dive"`  // Кортежи распределённого режима
}

// SettlementNotice публикуется планировщиком после автосверки аккаунта
// и потребляется сервисом рассылки уведомлений.
type SettlementNotice struct {
	Email            string      `json:"email"`             // Куда отправить уведомление
	Username         string      `json:"username"`          // Владелец аккаунта
	SettledDates     []time.Time `json:"settled_dates"`     // Даты, закрытые нулевыми записями
	CorrectableCount int         `json:"correctable_count"` // Сколько дат ещё можно заполнить вручную
}
