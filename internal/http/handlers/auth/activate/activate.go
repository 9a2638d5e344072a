// Package activate реализует HTTP-обработчик активации учетной записи
// по токену из письма.
package activate

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/rbenzing/slimbooks-app/internal/lib/sl"
)

// Handler управляет HTTP-запросами активации учетных записей.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики активации.
type Service interface {
	Activate(ctx context.Context, token string) error
}

// New создает новый Handler с переданными зависимостями.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP активирует учетную запись по токену из строки запроса
// и перенаправляет на страницу входа с результатом.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.activate"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		log.Error("missing activation token")
		http.Redirect(w, r, "/login?activated=0", http.StatusSeeOther)
		return
	}

	if err := h.service.Activate(r.Context(), tokenStr); err != nil {
		log.Error("failed to activate account", sl.Err(err))
		http.Redirect(w, r, "/login?activated=0", http.StatusSeeOther)
		return
	}

	log.Info("account activated")
	http.Redirect(w, r, "/login?activated=1", http.StatusSeeOther)
}
