// Package update реализует HTTP-обработчик обновления пользователя.
//
// Идентификатор цели связывается один раз при входе в обработчик и
// используется и в успешном, и в ошибочном пути: редирект при отказе
// всегда ведет на форму редактирования именно проверенной записи.
//
// Проверка уникальности почты исключает собственную запись, поэтому
// сохранение без смены почты проходит успешно. Пароль, флаги активности
// и удаления этим обработчиком не изменяются.
package update

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-playground/validator"

	"github.com/rbenzing/slimbooks-app/internal/http/middlewarectx"
	"github.com/rbenzing/slimbooks-app/internal/http/response"
	"github.com/rbenzing/slimbooks-app/internal/lib/sl"
	"github.com/rbenzing/slimbooks-app/internal/models"
	userservice "github.com/rbenzing/slimbooks-app/internal/services/user"
)

// Handler управляет HTTP-запросами на обновление пользователей.
type Handler struct {
	log      *slog.Logger
	service  Service
	sessions Sessions
	validate *validator.Validate
	// detailedErrors добавляет текст внутренней ошибки во flash (окружения разработки)
	detailedErrors bool
}

// Service описывает интерфейс бизнес-логики обновления пользователя.
type Service interface {
	Update(ctx context.Context, id int64, form models.UserForm) error
}

// Sessions описывает методы сессий, используемые обработчиком.
type Sessions interface {
	SetFlashError(ctx context.Context, sid, msg string) error
	SetFlashSuccess(ctx context.Context, sid, msg string) error
	SetFormData(ctx context.Context, sid string, form map[string]string) error
}

// New создает новый Handler с переданными зависимостями.
func New(log *slog.Logger, service Service, sessions Sessions, detailedErrors bool) *Handler {
	return &Handler{
		log:            log,
		service:        service,
		sessions:       sessions,
		validate:       validator.New(),
		detailedErrors: detailedErrors,
	}
}

// ServeHTTP обрабатывает отправку формы редактирования пользователя.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.update"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	sid, _ := middlewarectx.SessionID(r.Context())

	// ID связывается здесь один раз, дальше и успех, и отказ работают с ним.
	id, err := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64)
	if err != nil || id <= 0 {
		log.Error("invalid user id in query")
		if setErr := h.sessions.SetFlashError(r.Context(), sid, "Invalid user id"); setErr != nil {
			log.Error("failed to set flash", sl.Err(setErr))
		}
		http.Redirect(w, r, "/users", http.StatusSeeOther)
		return
	}
	editURL := fmt.Sprintf("/users/edit?id=%d", id)

	if err := r.ParseForm(); err != nil {
		log.Error("failed to parse form", sl.Err(err))
		h.failToForm(w, r, sid, "Invalid form submission", nil, editURL, log)
		return
	}

	form := models.UserForm{
		FirstName: r.PostFormValue("first_name"),
		LastName:  r.PostFormValue("last_name"),
		Email:     r.PostFormValue("email"),
		RoleID:    r.PostFormValue("role_id"),
		CompanyID: r.PostFormValue("company_id"),
	}
	formData := map[string]string{
		"first_name": form.FirstName,
		"last_name":  form.LastName,
		"email":      form.Email,
		"role_id":    form.RoleID,
		"company_id": form.CompanyID,
	}

	if err := h.validate.Struct(form); err != nil {
		log.Error("validation failed", sl.Err(err))
		h.failToForm(w, r, sid, response.ValidationError(err.(validator.ValidationErrors)), formData, editURL, log)
		return
	}
	log.Info("all fields are validated")

	if err := h.service.Update(r.Context(), id, form); err != nil {
		switch {
		case errors.Is(err, userservice.ErrNotFound), errors.Is(err, userservice.ErrInvalidID):
			log.Error("user not found", slog.Int64("id", id))
			if setErr := h.sessions.SetFlashError(r.Context(), sid, "User not found"); setErr != nil {
				log.Error("failed to set flash", sl.Err(setErr))
			}
			http.Redirect(w, r, "/users", http.StatusSeeOther)
		case errors.Is(err, userservice.ErrEmailTaken),
			errors.Is(err, userservice.ErrRoleNotFound),
			errors.Is(err, userservice.ErrCompanyNotFound):
			log.Error("update rejected", sl.Err(err))
			h.failToForm(w, r, sid, err.Error(), formData, editURL, log)
		default:
			log.Error("failed to update user", sl.Err(err))
			msg := "Could not update user"
			if h.detailedErrors {
				msg = msg + ": " + err.Error()
			}
			h.failToForm(w, r, sid, msg, formData, editURL, log)
		}
		return
	}

	log.Info("user updated", slog.Int64("id", id))
	if err := h.sessions.SetFlashSuccess(r.Context(), sid, "User updated"); err != nil {
		log.Error("failed to set flash", sl.Err(err))
	}
	http.Redirect(w, r, "/users", http.StatusSeeOther)
}

func (h *Handler) failToForm(w http.ResponseWriter, r *http.Request, sid, msg string, formData map[string]string, editURL string, log *slog.Logger) {
	if err := h.sessions.SetFlashError(r.Context(), sid, msg); err != nil {
		log.Error("failed to set flash", sl.Err(err))
	}
	if formData != nil {
		if err := h.sessions.SetFormData(r.Context(), sid, formData); err != nil {
			log.Error("failed to set form data", sl.Err(err))
		}
	}
	http.Redirect(w, r, editURL, http.StatusSeeOther)
}
