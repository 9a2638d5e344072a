// Package token реализует генерацию и парсинг токенов активации учетных записей.
//
// Токен активации — одноразовый подписанный JWT, который отправляется на почту
// новому пользователю и позволяет неактивной учетной записи завершить настройку.
package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ActivationClaims описывает данные, хранящиеся в токене активации.
type ActivationClaims struct {
	UserID               int64  `json:"user_id"` // Идентификатор активируемого пользователя
	Email                string `json:"email"`   // Почта, на которую отправлен токен
	jwt.RegisteredClaims        // Встроенные стандартные claims JWT (ExpiresAt, IssuedAt и пр.)
}

// Maker описывает интерфейс для генерации и парсинга токенов активации.
type Maker interface {
	// GenerateToken создает токен активации для пользователя с указанной почтой
	GenerateToken(userID int64, email string) (string, error)
	// ParseToken возвращает *ActivationClaims, если токен корректен и не истёк
	ParseToken(tokenStr string) (*ActivationClaims, error)
}

// MakerImpl реализует интерфейс Maker с использованием секретного ключа
// и времени жизни токена (TTL).
type MakerImpl struct {
	secretKey string        // Секретный ключ для подписи токенов.
	tokenTTL  time.Duration // Время жизни токена.
}

// NewMaker создаёт новый экземпляр MakerImpl на основе секретного ключа и TTL.
func NewMaker(secretKey string, ttl time.Duration) *MakerImpl {
	return &MakerImpl{
		secretKey: secretKey,
		tokenTTL:  ttl,
	}
}

// GenerateToken создает JWT токен с идентификатором и почтой пользователя,
// подписывая его секретным ключом. Время жизни токена определяется полем tokenTTL.
func (m *MakerImpl) GenerateToken(userID int64, email string) (string, error) {
	claims := ActivationClaims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(m.tokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(m.secretKey))
}

// ParseToken парсит токен активации, проверяет его подпись и срок действия,
// возвращает ActivationClaims с данными, если токен корректен.
func (m *MakerImpl) ParseToken(tokenStr string) (*ActivationClaims, error) {
	const op = "token.ParseToken"
	token, err := jwt.ParseWithClaims(tokenStr, &ActivationClaims{}, func(_ *jwt.Token) (any, error) {
		return []byte(m.secretKey), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	claims, ok := token.Claims.(*ActivationClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%s: invalid token", op)
	}
	return claims, nil
}
