// Package login реализует HTTP-обработчики страницы входа.
//
// GET отрисовывает форму входа, POST проверяет учетные данные, создает
// сессию со снимком разрешений роли и перенаправляет на дашборд.
// Неудачный вход заново отрисовывает форму с сообщением об ошибке,
// не раскрывая, существует ли такая почта.
package login

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/rbenzing/slimbooks-app/internal/lib/sl"
	"github.com/rbenzing/slimbooks-app/internal/models"
	authservice "github.com/rbenzing/slimbooks-app/internal/services/auth"
	"github.com/rbenzing/slimbooks-app/internal/session"
	appview "github.com/rbenzing/slimbooks-app/internal/view"
)

// Handler управляет HTTP-запросами страницы входа.
type Handler struct {
	log      *slog.Logger
	service  Service
	sessions Sessions
	renderer appview.Renderer
}

// Service описывает интерфейс бизнес-логики проверки учетных данных.
type Service interface {
	Authenticate(ctx context.Context, email, pass string) (*models.User, []string, error)
}

// Sessions описывает методы сессий, используемые обработчиком.
type Sessions interface {
	Create(ctx context.Context, data *session.Data) (string, error)
	WriteCookie(w http.ResponseWriter, sid string)
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

// ShowForm отрисовывает форму входа.
// Параметр activated в строке запроса показывает результат активации по письму.
func (h *Handler) ShowForm(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.login.form"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	data := map[string]any{}
	switch r.URL.Query().Get("activated") {
	case "1":
		data["success"] = "Account activated, you can sign in now"
	case "0":
		data["error"] = "Activation link is invalid or expired"
	}

	if err := h.renderer.Render(w, "login", data); err != nil {
		log.Error("failed to render view", sl.Err(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

// ServeHTTP обрабатывает отправку формы входа.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.login"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	if err := r.ParseForm(); err != nil {
		log.Error("failed to parse form", sl.Err(err))
		h.renderError(w, "Invalid form submission", log)
		return
	}

	email := r.PostFormValue("email")
	pass := r.PostFormValue("password")

	user, perms, err := h.service.Authenticate(r.Context(), email, pass)
	if err != nil {
		switch {
		case errors.Is(err, authservice.ErrInvalidCredentials):
			log.Warn("invalid credentials")
			h.renderError(w, "Invalid email or password", log)
		case errors.Is(err, authservice.ErrInactiveAccount):
			log.Warn("inactive account login attempt")
			h.renderError(w, "Account is not activated yet, check your email", log)
		default:
			log.Error("failed to authenticate", sl.Err(err))
			h.renderError(w, "Could not sign in, try again later", log)
		}
		return
	}

	sid, err := h.sessions.Create(r.Context(), &session.Data{
		UserID:      user.ID,
		Email:       user.Email,
		FirstName:   user.FirstName,
		Permissions: perms,
	})
	if err != nil {
		log.Error("failed to create session", sl.Err(err))
		h.renderError(w, "Could not sign in, try again later", log)
		return
	}

	h.sessions.WriteCookie(w, sid)
	log.Info("user signed in", slog.Int64("id", user.ID))
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func (h *Handler) renderError(w http.ResponseWriter, msg string, log *slog.Logger) {
	if err := h.renderer.Render(w, "login", map[string]any{"error": msg}); err != nil {
		log.Error("failed to render view", sl.Err(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}
