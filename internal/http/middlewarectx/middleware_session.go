// Package middlewarectx содержит HTTP middleware админки.
//
// SessionMiddleware проверяет cookie сессии, загружает её из Redis и добавляет
// в контекст запроса идентификатор сессии и данные пользователя.
// Неаутентифицированный запрос перенаправляется на страницу входа.
//
// RequirePermission проверяет снимок разрешений сессии и при отказе сам
// выставляет flash-сообщение и выполняет редирект: обработчик не вызывается,
// до мутации хранилища дело не доходит.
package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/rbenzing/slimbooks-app/internal/lib/sl"
	"github.com/rbenzing/slimbooks-app/internal/session"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

const (
	// SID — ключ идентификатора сессии в контексте
	SID Key = "sid"
	// User — ключ данных сессии пользователя в контексте
	User Key = "session_user"
)

// SessionID извлекает идентификатор сессии из контекста.
func SessionID(ctx context.Context) (string, bool) {
	sid, ok := ctx.Value(SID).(string)
	return sid, ok && sid != ""
}

// SessionData извлекает данные сессии пользователя из контекста.
func SessionData(ctx context.Context) (*session.Data, bool) {
	data, ok := ctx.Value(User).(*session.Data)
	return data, ok && data != nil
}

// SessionMiddleware возвращает HTTP middleware, который загружает сессию по cookie.
//
// Если сессия найдена, добавляет её идентификатор и данные в контекст запроса,
// иначе перенаправляет на страницу входа.
func SessionMiddleware(sessions Sessions, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.SessionMiddleware"

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			sid, ok := sessions.ReadCookie(r)
			if !ok {
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}

			data, found, err := sessions.Get(r.Context(), sid)
			if err != nil {
				log.Error("failed to load session", sl.Err(err))
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}
			if !found {
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}

			ctx := context.WithValue(r.Context(), SID, sid)
			ctx = context.WithValue(ctx, User, data)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequirePermission возвращает middleware-шлюз авторизации: пропускает запрос
// дальше только при наличии разрешения perm в снимке сессии. При отказе
// выставляет flash-сообщение об ошибке и перенаправляет на дашборд.
func RequirePermission(perm string, sessions Sessions, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.RequirePermission"

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			data, ok := SessionData(r.Context())
			if !ok {
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}

			if !data.HasPermission(perm) {
				log.Warn("permission denied",
					slog.String("permission", perm),
					slog.Int64("user_id", data.UserID))
				if sid, ok := SessionID(r.Context()); ok {
					if err := sessions.SetFlashError(r.Context(), sid, "You do not have permission to perform this action"); err != nil {
						log.Error("failed to set flash", sl.Err(err))
					}
				}
				http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
