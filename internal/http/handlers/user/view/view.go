// Package view реализует HTTP-обработчик страницы просмотра пользователя.
//
// Handler извлекает ID из строки запроса, валидирует его как положительное
// целое и запрашивает у бизнес-логики пользователя вместе с ролью,
// разрешениями и компанией. Отсутствующая и мягко удаленная запись
// обрабатываются одинаково: flash-сообщение и редирект на список.
package view

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"

	"github.com/rbenzing/slimbooks-app/internal/http/middlewarectx"
	"github.com/rbenzing/slimbooks-app/internal/lib/sl"
	"github.com/rbenzing/slimbooks-app/internal/models"
	userservice "github.com/rbenzing/slimbooks-app/internal/services/user"
	"github.com/rbenzing/slimbooks-app/internal/session"
	appview "github.com/rbenzing/slimbooks-app/internal/view"
)

// Handler управляет HTTP-запросами страницы просмотра пользователя.
type Handler struct {
	log      *slog.Logger
	service  Service
	sessions Sessions
	renderer appview.Renderer
}

// Service описывает интерфейс бизнес-логики чтения пользователя с деталями.
type Service interface {
	Get(ctx context.Context, id int64) (*models.UserDetails, error)
}

// Sessions описывает методы сессий, используемые обработчиком.
type Sessions interface {
	PopFlash(ctx context.Context, sid string) (session.Flash, error)
	SetFlashError(ctx context.Context, sid, msg string) error
}

// New создает новый Handler с переданными зависимостями.
func New(log *slog.Logger, service Service, sessions Sessions, renderer appview.Renderer) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		sessions: sessions,
		renderer: renderer,
	}
}

// ServeHTTP отрисовывает страницу пользователя по ID из строки запроса.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.view"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	sid, _ := middlewarectx.SessionID(r.Context())

	id, err := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64)
	if err != nil || id <= 0 {
		log.Error("invalid user id in query")
		h.failToList(w, r, sid, "Invalid user id", log)
		return
	}

	details, err := h.service.Get(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, userservice.ErrInvalidID), errors.Is(err, userservice.ErrNotFound):
			log.Error("user not found", slog.Int64("id", id))
			h.failToList(w, r, sid, "User not found", log)
		default:
			log.Error("failed to get user", sl.Err(err))
			h.failToList(w, r, sid, "Could not load user", log)
		}
		return
	}

	flash, err := h.sessions.PopFlash(r.Context(), sid)
	if err != nil {
		log.Error("failed to pop flash", sl.Err(err))
	}

	log.Info("user viewed", slog.Int64("id", id))
	if err := h.renderer.Render(w, "user_view", map[string]any{
		"user":        details,
		"roles":       details.RoleName,
		"permissions": details.Permissions,
		"error":       flash.Error,
		"success":     flash.Success,
	}); err != nil {
		log.Error("failed to render view", sl.Err(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

func (h *Handler) failToList(w http.ResponseWriter, r *http.Request, sid, msg string, log *slog.Logger) {
	if err := h.sessions.SetFlashError(r.Context(), sid, msg); err != nil {
		log.Error("failed to set flash", sl.Err(err))
	}
	http.Redirect(w, r, "/users", http.StatusSeeOther)
}
