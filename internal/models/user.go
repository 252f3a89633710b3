// Package models содержит доменные структуры: владельца парка, транспортное
// средство и строку журнала поездок, а также вспомогательные типы для приёма
// данных из JSON-запросов.
package models

import "time"

// User представляет владельца парка, зарегистрированного в системе.
// Дата создания аккаунта фиксирует самый ранний день, который когда-либо
// может потребовать записи в журнале.
type User struct {
	UUID                string     // Уникальный идентификатор пользователя
	Email               string     // Электронная почта
	Username            string     // Имя пользователя (уникальное)
	PasswordHash        string     // Хэш пароля пользователя
	Role                string     // Роль пользователя, admin или user
	PlanKind            string     // Оплаченный тариф: basic, standard, ultra
	SubscriptionEndDate *time.Time // Дата окончания оплаченной подписки, nil если не оплачивалась
	CreatedAt           time.Time  // Дата создания аккаунта
}

// RegisterRequest используется для приёма данных регистрации из JSON-запроса.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`       // Электронная почта
	Username string `json:"username" validate:"required,alphanum"` // Имя пользователя
	Password string `json:"password" validate:"required,min=8"`    // Пароль
}

// LoginRequest используется для приёма данных входа из JSON-запроса.
type LoginRequest struct {
	Username string `json:"username" validate:"required"` // Имя пользователя
	Password string `json:"password" validate:"required"` // Пароль
}
