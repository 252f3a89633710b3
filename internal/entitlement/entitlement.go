// Package entitlement вычисляет текущий тариф пользователя и его числовые
// лимиты из состояния подписки. Вся логика "тариф -> лимиты" живёт здесь
// одной таблицей; остальной код потребляет готовую Resolution как данные
// и нигде не перевычисляет тарифные ветвления.
package entitlement

import (
	"time"

	"github.com/magabrotheeeer/fleet-ledger/internal/lib/dates"
	"github.com/magabrotheeeer/fleet-ledger/internal/models"
)

// PlanKind — тариф пользователя.
type PlanKind string

// Допустимые тарифы.
const (
	PlanTrial    PlanKind = "trial"
	PlanBasic    PlanKind = "basic"
	PlanStandard PlanKind = "standard"
	PlanUltra    PlanKind = "ultra"
	PlanExpired  PlanKind = "expired"
)

// TrialLengthDays — длительность пробного периода с момента создания аккаунта.
const TrialLengthDays = 30

// Limits — числовые лимиты тарифа.
type Limits struct {
	MaxVehicles          int  `json:"max_vehicles"`           // Максимум машин в парке
	TripHistoryDays      int  `json:"trip_history_days"`      // Глубина истории поездок
	DashboardMonths      int  `json:"dashboard_months"`       // Глубина дашбордов, месяцев
	CorrectionWindowDays int  `json:"correction_window_days"` // Окно ручной корректировки пропусков
	AIChatEnabled        bool `json:"ai_chat_enabled"`        // Доступен ли AI-чат
	AIChatDailyLimit     int  `json:"ai_chat_daily_limit"`    // Лимит сообщений AI-чата в день
	ReportsExportEnabled bool `json:"reports_export_enabled"` // Доступен ли экспорт отчётов
}

// limitsByPlan — единственная таблица соответствия тарифа лимитам.
// Тариф expired обнуляет все лимиты: доступ закрыт.
var limitsByPlan = map[PlanKind]Limits{
	PlanTrial: {
		MaxVehicles:          2,
		TripHistoryDays:      30,
		DashboardMonths:      1,
		CorrectionWindowDays: 3,
		AIChatEnabled:        false,
		AIChatDailyLimit:     0,
		ReportsExportEnabled: false,
	},
	PlanBasic: {
		MaxVehicles:          3,
		TripHistoryDays:      90,
		DashboardMonths:      3,
		CorrectionWindowDays: 7,
		AIChatEnabled:        false,
		AIChatDailyLimit:     0,
		ReportsExportEnabled: false,
	},
	PlanStandard: {
		MaxVehicles:          10,
		TripHistoryDays:      365,
		DashboardMonths:      12,
		CorrectionWindowDays: 30,
		AIChatEnabled:        true,
		AIChatDailyLimit:     20,
		ReportsExportEnabled: true,
	},
	PlanUltra: {
		MaxVehicles:          50,
		TripHistoryDays:      1095,
		DashboardMonths:      36,
		CorrectionWindowDays: 90,
		AIChatEnabled:        true,
		AIChatDailyLimit:     200,
		ReportsExportEnabled: true,
	},
	PlanExpired: {},
}

// administrativeLimits возвращаются для адресов из допуск-листа:
// безлимитный доступ независимо от состояния подписки.
var administrativeLimits = Limits{
	MaxVehicles:          1000,
	TripHistoryDays:      3650,
	DashboardMonths:      120,
	CorrectionWindowDays: 365,
	AIChatEnabled:        true,
	AIChatDailyLimit:     10000,
	ReportsExportEnabled: true,
}

// Resolution — результат вычисления тарифа: сам тариф, его лимиты,
// признак административного доступа и остаток пробного периода.
type Resolution struct {
	Plan               PlanKind `json:"plan"`
	Limits             Limits   `json:"limits"`
	IsAdministrative   bool     `json:"is_administrative"`
	TrialDaysRemaining int      `json:"trial_days_remaining"`
}

// Resolver вычисляет Resolution по данным аккаунта. Допуск-лист
// административных адресов задаётся конфигурацией при создании.
type Resolver struct {
	adminEmails map[string]struct{}
}

// NewResolver создаёт Resolver с допуск-листом административных адресов.
func NewResolver(adminEmails []string) *Resolver {
	set := make(map[string]struct{}, len(adminEmails))
	for _, e := range adminEmails {
		set[e] = struct{}{}
	}
	return &Resolver{adminEmails: set}
}

// Resolve вычисляет текущий тариф пользователя на момент now.
//
// Порядок: административный допуск-лист перекрывает всё; оплаченный тариф
// действует, пока дата окончания подписки строго позже now; иначе trial,
// пока не истёк пробный период; иначе expired.
func (r *Resolver) Resolve(user models.User, now time.Time) Resolution {
	// Пробный период меряется полными сутками от момента создания,
	// а не календарными днями: регистрация вечером не съедает день.
	remaining := TrialLengthDays - dates.ElapsedDays(user.CreatedAt, now)
	if remaining < 0 {
		remaining = 0
	}

	if _, ok := r.adminEmails[user.Email]; ok {
		return Resolution{
			Plan:               planOrTrial(user, now),
			Limits:             administrativeLimits,
			IsAdministrative:   true,
			TrialDaysRemaining: remaining,
		}
	}

	res := Resolution{TrialDaysRemaining: remaining}
	switch {
	case user.SubscriptionEndDate != nil && user.SubscriptionEndDate.After(now) && isPaid(PlanKind(user.PlanKind)):
		res.Plan = PlanKind(user.PlanKind)
	case remaining > 0:
		res.Plan = PlanTrial
	default:
		res.Plan = PlanExpired
	}
	res.Limits = limitsByPlan[res.Plan]
	return res
}

// Expired возвращает самый ограничительный вариант. Используется
// вызывающей стороной, когда данные аккаунта загрузить не удалось:
// при сомнении доступ закрывается.
func Expired() Resolution {
	return Resolution{Plan: PlanExpired, Limits: limitsByPlan[PlanExpired]}
}

// LimitsFor возвращает лимиты тарифа из таблицы.
func LimitsFor(plan PlanKind) Limits {
	return limitsByPlan[plan]
}

func isPaid(p PlanKind) bool {
	return p == PlanBasic || p == PlanStandard || p == PlanUltra
}

func planOrTrial(user models.User, now time.Time) PlanKind {
	if user.SubscriptionEndDate != nil && user.SubscriptionEndDate.After(now) && isPaid(PlanKind(user.PlanKind)) {
		return PlanKind(user.PlanKind)
	}
	if dates.ElapsedDays(user.CreatedAt, now) < TrialLengthDays {
		return PlanTrial
	}
	return PlanExpired
}
