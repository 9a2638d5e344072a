// Package profile реализует HTTP-обработчик страницы собственного профиля.
//
// Субъектом выступает пользователь текущей сессии, а не параметр маршрута.
// Дополнительных разрешений не требуется: достаточно быть аутентифицированным.
package profile

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/rbenzing/slimbooks-app/internal/http/middlewarectx"
	"github.com/rbenzing/slimbooks-app/internal/lib/sl"
	"github.com/rbenzing/slimbooks-app/internal/models"
	"github.com/rbenzing/slimbooks-app/internal/session"
	appview "github.com/rbenzing/slimbooks-app/internal/view"
)

// Handler управляет HTTP-запросами страницы профиля.
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

// ServeHTTP отрисовывает профиль пользователя текущей сессии.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.profile"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	data, ok := middlewarectx.SessionData(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	sid, _ := middlewarectx.SessionID(r.Context())

	details, err := h.service.Get(r.Context(), data.UserID)
	if err != nil {
		log.Error("failed to get own profile", sl.Err(err), slog.Int64("id", data.UserID))
		if setErr := h.sessions.SetFlashError(r.Context(), sid, "Could not load profile"); setErr != nil {
			log.Error("failed to set flash", sl.Err(setErr))
		}
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}

	flash, err := h.sessions.PopFlash(r.Context(), sid)
	if err != nil {
		log.Error("failed to pop flash", sl.Err(err))
	}

	log.Info("profile viewed", slog.Int64("id", data.UserID))
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
