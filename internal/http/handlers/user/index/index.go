// Package index реализует HTTP-обработчик страницы списка пользователей.
//
// Handler читает номер страницы из строки запроса, запрашивает у бизнес-логики
// страницу не удаленных пользователей и отрисовывает список с пагинацией.
// Любая ошибка превращается в общее flash-сообщение и редирект на дашборд.
package index

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"

	"github.com/rbenzing/slimbooks-app/internal/http/middlewarectx"
	"github.com/rbenzing/slimbooks-app/internal/lib/sl"
	"github.com/rbenzing/slimbooks-app/internal/session"
	userservice "github.com/rbenzing/slimbooks-app/internal/services/user"
	"github.com/rbenzing/slimbooks-app/internal/view"
)

// Handler управляет HTTP-запросами страницы списка пользователей.
type Handler struct {
	log      *slog.Logger
	service  Service
	sessions Sessions
	renderer view.Renderer
}

// Service описывает интерфейс бизнес-логики постраничного списка.
type Service interface {
	List(ctx context.Context, page int) (*userservice.ListPage, error)
}

// Sessions описывает методы сессий, используемые обработчиком.
type Sessions interface {
	PopFlash(ctx context.Context, sid string) (session.Flash, error)
	SetFlashError(ctx context.Context, sid, msg string) error
}

// New создает новый Handler с переданными зависимостями.
func New(log *slog.Logger, service Service, sessions Sessions, renderer view.Renderer) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		sessions: sessions,
		renderer: renderer,
	}
}

// ServeHTTP отрисовывает страницу списка пользователей.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.index"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		page = 1
	}

	sid, _ := middlewarectx.SessionID(r.Context())

	list, err := h.service.List(r.Context(), page)
	if err != nil {
		log.Error("failed to list users", sl.Err(err))
		if setErr := h.sessions.SetFlashError(r.Context(), sid, "Could not load users"); setErr != nil {
			log.Error("failed to set flash", sl.Err(setErr))
		}
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}

	flash, err := h.sessions.PopFlash(r.Context(), sid)
	if err != nil {
		log.Error("failed to pop flash", sl.Err(err))
	}

	log.Info("users listed", slog.Int("count", len(list.Users)), slog.Int("page", list.Page))
	if err := h.renderer.Render(w, "users_list", map[string]any{
		"users":      list.Users,
		"totalUsers": list.Total,
		"totalPages": list.TotalPages,
		"page":       list.Page,
		"error":      flash.Error,
		"success":    flash.Success,
	}); err != nil {
		log.Error("failed to render view", sl.Err(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}
