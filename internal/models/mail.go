package models

// ActivationTask задача на отправку письма активации, публикуемая в очередь.
type ActivationTask struct {
	Email     string `json:"email"`      // Адрес получателя
	FirstName string `json:"first_name"` // Имя для обращения в письме
	Token     string `json:"token"`      // Токен активации
}
