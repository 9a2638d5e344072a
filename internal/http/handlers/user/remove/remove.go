// Package remove реализует HTTP-обработчик мягкого удаления пользователя.
//
// Принимается только POST: любой другой метод сразу получает flash-сообщение
// об ошибке и редирект на список. Удаление собственной учетной записи
// запрещено, уже удаленная запись повторно не изменяется.
package remove

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"

	"github.com/rbenzing/slimbooks-app/internal/http/middlewarectx"
	"github.com/rbenzing/slimbooks-app/internal/lib/sl"
	userservice "github.com/rbenzing/slimbooks-app/internal/services/user"
)

// Handler управляет HTTP-запросами на мягкое удаление пользователей.
type Handler struct {
	log      *slog.Logger
	service  Service
	sessions Sessions
}

// Service описывает интерфейс бизнес-логики мягкого удаления.
type Service interface {
	Delete(ctx context.Context, id, actorID int64) error
}

// Sessions описывает методы сессий, используемые обработчиком.
type Sessions interface {
	SetFlashError(ctx context.Context, sid, msg string) error
	SetFlashSuccess(ctx context.Context, sid, msg string) error
}

// New создает новый Handler с переданными зависимостями.
func New(log *slog.Logger, service Service, sessions Sessions) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		sessions: sessions,
	}
}

// ServeHTTP обрабатывает запрос на мягкое удаление пользователя.
// Все пути, успешные и ошибочные, заканчиваются редиректом на список.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.remove"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	sid, _ := middlewarectx.SessionID(r.Context())

	if r.Method != http.MethodPost {
		log.Error("method not allowed", slog.String("method", r.Method))
		h.failToList(w, r, sid, "Invalid request method", log)
		return
	}

	data, ok := middlewarectx.SessionData(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	id, err := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64)
	if err != nil || id <= 0 {
		log.Error("invalid user id in query")
		h.failToList(w, r, sid, "Invalid user id", log)
		return
	}

	if err := h.service.Delete(r.Context(), id, data.UserID); err != nil {
		switch {
		case errors.Is(err, userservice.ErrSelfDelete):
			log.Error("self-delete attempt", slog.Int64("id", id))
			h.failToList(w, r, sid, "You cannot delete your own account", log)
		case errors.Is(err, userservice.ErrNotFound), errors.Is(err, userservice.ErrInvalidID):
			log.Error("user not found", slog.Int64("id", id))
			h.failToList(w, r, sid, "User not found", log)
		default:
			log.Error("failed to delete user", sl.Err(err))
			h.failToList(w, r, sid, "Could not delete user", log)
		}
		return
	}

	log.Info("user soft-deleted", slog.Int64("id", id))
	if err := h.sessions.SetFlashSuccess(r.Context(), sid, "User deleted"); err != nil {
		log.Error("failed to set flash", sl.Err(err))
	}
	http.Redirect(w, r, "/users", http.StatusSeeOther)
}

func (h *Handler) failToList(w http.ResponseWriter, r *http.Request, sid, msg string, log *slog.Logger) {
	if err := h.sessions.SetFlashError(r.Context(), sid, msg); err != nil {
		log.Error("failed to set flash", sl.Err(err))
	}
	http.Redirect(w, r, "/users", http.StatusSeeOther)
}
