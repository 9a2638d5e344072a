// Package models содержит доменные структуры учетных записей, ролей и компаний,
// а также вспомогательные типы для приёма данных из HTML-форм.
package models

import "time"

// User представляет учетную запись пользователя системы.
// Запись никогда не удаляется физически: "удаление" выставляет флаг IsDeleted.
type User struct {
	ID              int64     // Уникальный идентификатор
	FirstName       string    // Имя
	LastName        string    // Фамилия
	Email           string    // Электронная почта (уникальная)
	RoleID          int64     // Ссылка на роль
	CompanyID       *int64    // Ссылка на компанию, может отсутствовать
	PasswordHash    string    // Хэш пароля пользователя
	IsActive        bool      // Учетная запись активирована
	IsDeleted       bool      // Мягкое удаление
	ActivationToken string    // Одноразовый токен активации
	CreatedAt       time.Time // Дата создания записи
}

// UserDetails объединяет пользователя с названием его роли, набором разрешений
// роли и названием компании. Используется страницами просмотра и профиля.
type UserDetails struct {
	User
	RoleName    string   // Название роли
	Permissions []string // Разрешения, входящие в роль
	CompanyName string   // Название компании, пустая строка если компании нет
}

// UserForm используется для приёма данных из HTML-формы создания и редактирования
// пользователя, прежде чем конвертировать их в User.
// Числовые поля приходят строками, чтобы их можно было валидировать и парсить вручную.
type UserForm struct {
	FirstName string `form:"first_name" validate:"required,max=100"`  // Имя (до 100 символов)
	LastName  string `form:"last_name" validate:"required,max=100"`   // Фамилия (до 100 символов)
	Email     string `form:"email" validate:"required,email"`         // Электронная почта
	RoleID    string `form:"role_id" validate:"required,numeric"`     // ID роли
	CompanyID string `form:"company_id" validate:"omitempty,numeric"` // ID компании (опционально)
}

// ListResult результат постраничной выборки пользователей.
// Total считает все подходящие записи без учета окна страницы,
// длина Users не превышает запрошенный limit.
type ListResult struct {
	Users []*User
	Total int
}
