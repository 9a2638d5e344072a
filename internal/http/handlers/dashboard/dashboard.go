// Package dashboard реализует HTTP-обработчик стартовой страницы админки.
package dashboard

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/rbenzing/slimbooks-app/internal/http/middlewarectx"
	"github.com/rbenzing/slimbooks-app/internal/lib/sl"
	"github.com/rbenzing/slimbooks-app/internal/session"
	appview "github.com/rbenzing/slimbooks-app/internal/view"
)

// Handler управляет HTTP-запросами дашборда.
type Handler struct {
	log      *slog.Logger
	sessions Sessions
	renderer appview.Renderer
}

// Sessions описывает методы сессий, используемые обработчиком.
type Sessions interface {
	PopFlash(ctx context.Context, sid string) (session.Flash, error)
}

// New создает новый Handler с переданными зависимостями.
func New(log *slog.Logger, sessions Sessions, renderer appview.Renderer) *Handler {
	return &Handler{
		log:      log,
		sessions: sessions,
		renderer: renderer,
	}
}

// ServeHTTP отрисовывает дашборд с flash-сообщениями текущей сессии.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.dashboard"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	data, _ := middlewarectx.SessionData(r.Context())
	sid, _ := middlewarectx.SessionID(r.Context())

	flash, err := h.sessions.PopFlash(r.Context(), sid)
	if err != nil {
		log.Error("failed to pop flash", sl.Err(err))
	}

	if err := h.renderer.Render(w, "dashboard", map[string]any{
		"user":    data,
		"error":   flash.Error,
		"success": flash.Success,
	}); err != nil {
		log.Error("failed to render view", sl.Err(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}
