package models

// Role представляет роль пользователя с набором разрешений.
// С точки зрения админки роли доступны только для чтения.
type Role struct {
	ID          int64    // Уникальный идентификатор
	Name        string   // Название роли
	Permissions []string // Ключи разрешений, например "view_users"
}
