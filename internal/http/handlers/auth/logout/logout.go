// Package logout реализует HTTP-обработчик выхода из системы.
package logout

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/rbenzing/slimbooks-app/internal/http/middlewarectx"
	"github.com/rbenzing/slimbooks-app/internal/lib/sl"
)

// Handler управляет HTTP-запросами на выход из системы.
type Handler struct {
	log      *slog.Logger
	sessions Sessions
}

// Sessions описывает методы сессий, используемые обработчиком.
type Sessions interface {
	Destroy(ctx context.Context, sid string) error
	ClearCookie(w http.ResponseWriter)
}

// New создает новый Handler с переданными зависимостями.
func New(log *slog.Logger, sessions Sessions) *Handler {
	return &Handler{
		log:      log,
		sessions: sessions,
	}
}

// ServeHTTP завершает сессию и перенаправляет на страницу входа.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.logout"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	if sid, ok := middlewarectx.SessionID(r.Context()); ok {
		if err := h.sessions.Destroy(r.Context(), sid); err != nil {
			log.Error("failed to destroy session", sl.Err(err))
		}
	}
	h.sessions.ClearCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
