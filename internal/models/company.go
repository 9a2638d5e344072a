package models

// Company представляет компанию, к которой может относиться пользователь.
// С точки зрения админки компании доступны только для чтения.
type Company struct {
	ID   int64  // Уникальный идентификатор
	Name string // Название компании
}
