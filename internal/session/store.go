// Package session реализует браузерные сессии поверх Redis.
//
// Сессия создается при входе в систему и хранит идентификатор и профиль
// пользователя, снимок его разрешений, одноразовые flash-сообщения и данные
// последней отправленной формы для повторного заполнения после ошибок валидации.
// Flash-слоты перезаписываются, а не дополняются: последний писатель побеждает.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/rbenzing/slimbooks-app/internal/config"
)

// Flash одноразовые сообщения, показываемые на следующей отрисованной странице.
type Flash struct {
	Error   string `json:"error,omitempty"`
	Success string `json:"success,omitempty"`
}

// Data полное состояние одной браузерной сессии.
type Data struct {
	UserID      int64             `json:"user_id"`
	Email       string            `json:"email"`
	FirstName   string            `json:"first_name"`
	Permissions []string          `json:"permissions"`
	Flash       Flash             `json:"flash"`
	FormData    map[string]string `json:"form_data,omitempty"`
}

// HasPermission проверяет наличие разрешения в снимке сессии.
func (d *Data) HasPermission(perm string) bool {
	return slices.Contains(d.Permissions, perm)
}

// Store хранилище сессий поверх Redis.
type Store struct {
	Db         *redis.Client
	cookieName string
	ttl        time.Duration
}

// InitStore подключается к Redis и возвращает готовое хранилище сессий.
func InitStore(ctx context.Context, cfg config.RedisConnection, cookieName string, ttl time.Duration) (*Store, error) {
	const op = "session.InitStore"
	db := redis.NewClient(&redis.Options{
		Addr:         cfg.AddressRedis,
		Password:     cfg.Password,
		DB:           cfg.DB,
		Username:     cfg.User,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.TimeoutRedis,
		WriteTimeout: cfg.TimeoutRedis,
	})

	if err := db.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Store{Db: db, cookieName: cookieName, ttl: ttl}, nil
}

func key(sid string) string {
	return "session:" + sid
}

// Create сохраняет новую сессию и возвращает её идентификатор.
func (s *Store) Create(ctx context.Context, data *Data) (string, error) {
	const op = "session.Create"
	sid := uuid.New().String()
	if err := s.save(ctx, sid, data); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return sid, nil
}

// Get возвращает данные сессии по идентификатору.
// Второе значение false означает, что сессия не найдена или истекла.
func (s *Store) Get(ctx context.Context, sid string) (*Data, bool, error) {
	const op = "session.Get"
	val, err := s.Db.Get(ctx, key(sid)).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}
	var data Data
	if err = json.Unmarshal([]byte(val), &data); err != nil {
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}
	return &data, true, nil
}

// Save перезаписывает данные сессии, продлевая её время жизни.
func (s *Store) Save(ctx context.Context, sid string, data *Data) error {
	const op = "session.Save"
	if err := s.save(ctx, sid, data); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Destroy удаляет сессию.
func (s *Store) Destroy(ctx context.Context, sid string) error {
	return s.Db.Del(ctx, key(sid)).Err()
}

func (s *Store) save(ctx context.Context, sid string, data *Data) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return s.Db.Set(ctx, key(sid), jsonData, s.ttl).Err()
}

// SetFlashError записывает одноразовое сообщение об ошибке.
func (s *Store) SetFlashError(ctx context.Context, sid, msg string) error {
	return s.mutate(ctx, sid, func(d *Data) {
		d.Flash.Error = msg
	})
}

// SetFlashSuccess записывает одноразовое сообщение об успехе.
func (s *Store) SetFlashSuccess(ctx context.Context, sid, msg string) error {
	return s.mutate(ctx, sid, func(d *Data) {
		d.Flash.Success = msg
	})
}

// SetFormData сохраняет данные последней отправленной формы.
func (s *Store) SetFormData(ctx context.Context, sid string, form map[string]string) error {
	return s.mutate(ctx, sid, func(d *Data) {
		d.FormData = form
	})
}

// PopFlash возвращает flash-сообщения и очищает слот. Одноразовая семантика:
// повторное чтение возвращает пустые значения.
func (s *Store) PopFlash(ctx context.Context, sid string) (Flash, error) {
	const op = "session.PopFlash"
	var flash Flash
	err := s.mutate(ctx, sid, func(d *Data) {
		flash = d.Flash
		d.Flash = Flash{}
	})
	if err != nil {
		return Flash{}, fmt.Errorf("%s: %w", op, err)
	}
	return flash, nil
}

// PopFormData возвращает сохраненные данные формы и очищает слот.
func (s *Store) PopFormData(ctx context.Context, sid string) (map[string]string, error) {
	const op = "session.PopFormData"
	var form map[string]string
	err := s.mutate(ctx, sid, func(d *Data) {
		form = d.FormData
		d.FormData = nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return form, nil
}

// mutate читает сессию, применяет fn и сохраняет результат.
func (s *Store) mutate(ctx context.Context, sid string, fn func(*Data)) error {
	data, found, err := s.Get(ctx, sid)
	if err != nil {
		return err
	}
	if !found {
		return nil
	}
	fn(data)
	return s.save(ctx, sid, data)
}

// ReadCookie извлекает идентификатор сессии из cookie запроса.
func (s *Store) ReadCookie(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(s.cookieName)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}

// WriteCookie выставляет cookie с идентификатором сессии.
func (s *Store) WriteCookie(w http.ResponseWriter, sid string) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName,
		Value:    sid,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(s.ttl.Seconds()),
	})
}

// ClearCookie сбрасывает cookie сессии.
func (s *Store) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}
