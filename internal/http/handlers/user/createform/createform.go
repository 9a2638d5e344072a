// Package createform реализует HTTP-обработчик формы создания пользователя.
//
// Handler подгружает роли и компании для выпадающих списков и отрисовывает
// пустую форму либо форму с данными прошлой неудачной отправки.
package createform

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/rbenzing/slimbooks-app/internal/http/middlewarectx"
	"github.com/rbenzing/slimbooks-app/internal/lib/sl"
	userservice "github.com/rbenzing/slimbooks-app/internal/services/user"
	"github.com/rbenzing/slimbooks-app/internal/session"
	appview "github.com/rbenzing/slimbooks-app/internal/view"
)

// Handler управляет HTTP-запросами формы создания пользователя.
type Handler struct {
	log      *slog.Logger
	service  Service
	sessions Sessions
	renderer appview.Renderer
}

// Service описывает интерфейс бизнес-логики вариантов формы.
type Service interface {
	Options(ctx context.Context) (*userservice.FormOptions, error)
}

// Sessions описывает методы сессий, используемые обработчиком.
type Sessions interface {
	PopFlash(ctx context.Context, sid string) (session.Flash, error)
	PopFormData(ctx context.Context, sid string) (map[string]string, error)
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

// ServeHTTP отрисовывает форму создания пользователя.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.createform"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	sid, _ := middlewarectx.SessionID(r.Context())

	options, err := h.service.Options(r.Context())
	if err != nil {
		log.Error("failed to load form options", sl.Err(err))
		if setErr := h.sessions.SetFlashError(r.Context(), sid, "Could not load the form"); setErr != nil {
			log.Error("failed to set flash", sl.Err(setErr))
		}
		http.Redirect(w, r, "/users", http.StatusSeeOther)
		return
	}

	flash, err := h.sessions.PopFlash(r.Context(), sid)
	if err != nil {
		log.Error("failed to pop flash", sl.Err(err))
	}
	formData, err := h.sessions.PopFormData(r.Context(), sid)
	if err != nil {
		log.Error("failed to pop form data", sl.Err(err))
	}

	if err := h.renderer.Render(w, "user_form", map[string]any{
		"action":    "/users/create",
		"roles":     options.Roles,
		"companies": options.Companies,
		"form_data": formData,
		"error":     flash.Error,
		"success":   flash.Success,
	}); err != nil {
		log.Error("failed to render view", sl.Err(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}
