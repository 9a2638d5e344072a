// Package editform реализует HTTP-обработчик формы редактирования пользователя.
//
// Handler требует корректный ID существующего не удаленного пользователя,
// подгружает роли и компании для выпадающих списков и отрисовывает форму
// с текущими значениями либо данными прошлой неудачной отправки.
package editform

import (
	"context"
	"errors"
	"fmt"
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

// Handler управляет HTTP-запросами формы редактирования пользователя.
type Handler struct {
	log      *slog.Logger
	service  Service
	sessions Sessions
	renderer appview.Renderer
}

// Service описывает интерфейс бизнес-логики формы редактирования.
type Service interface {
	Get(ctx context.Context, id int64) (*models.UserDetails, error)
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

// ServeHTTP отрисовывает форму редактирования пользователя по ID.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.editform"

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

	options, err := h.service.Options(r.Context())
	if err != nil {
		log.Error("failed to load form options", sl.Err(err))
		h.failToList(w, r, sid, "Could not load the form", log)
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
		"action":    fmt.Sprintf("/users/edit?id=%d", id),
		"user":      details,
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

func (h *Handler) failToList(w http.ResponseWriter, r *http.Request, sid, msg string, log *slog.Logger) {
	if err := h.sessions.SetFlashError(r.Context(), sid, msg); err != nil {
		log.Error("failed to set flash", sl.Err(err))
	}
	http.Redirect(w, r, "/users", http.StatusSeeOther)
}
