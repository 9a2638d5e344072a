// Package create реализует HTTP-обработчик создания нового пользователя.
//
// Handler принимает данные HTML-формы, валидирует их, вызывает бизнес-логику
// создания учетной записи и перенаправляет на список пользователей.
//
// При ошибке валидации сообщения и введенные данные сохраняются в сессию,
// а пользователь возвращается на форму создания.
package create

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-playground/validator"

	"github.com/rbenzing/slimbooks-app/internal/http/middlewarectx"
	"github.com/rbenzing/slimbooks-app/internal/http/response"
	"github.com/rbenzing/slimbooks-app/internal/lib/sl"
	"github.com/rbenzing/slimbooks-app/internal/models"
	userservice "github.com/rbenzing/slimbooks-app/internal/services/user"
)

// Handler управляет HTTP-запросами на создание пользователей.
type Handler struct {
	log      *slog.Logger
	service  Service
	sessions Sessions
	validate *validator.Validate
	// detailedErrors добавляет текст внутренней ошибки во flash (окружения разработки)
	detailedErrors bool
}

// Service описывает интерфейс бизнес-логики создания пользователя.
type Service interface {
	Create(ctx context.Context, form models.UserForm) (int64, error)
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

// ServeHTTP обрабатывает отправку формы создания пользователя.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.create"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	sid, _ := middlewarectx.SessionID(r.Context())

	if err := r.ParseForm(); err != nil {
		log.Error("failed to parse form", sl.Err(err))
		h.failToForm(w, r, sid, "Invalid form submission", nil, log)
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
		h.failToForm(w, r, sid, response.ValidationError(err.(validator.ValidationErrors)), formData, log)
		return
	}
	log.Info("all fields are validated")

	id, err := h.service.Create(r.Context(), form)
	if err != nil {
		switch {
		case errors.Is(err, userservice.ErrEmailTaken),
			errors.Is(err, userservice.ErrRoleNotFound),
			errors.Is(err, userservice.ErrCompanyNotFound):
			log.Error("create rejected", sl.Err(err))
			h.failToForm(w, r, sid, err.Error(), formData, log)
		default:
			log.Error("failed to create user", sl.Err(err))
			msg := "Could not create user"
			if h.detailedErrors {
				msg = msg + ": " + err.Error()
			}
			h.failToForm(w, r, sid, msg, formData, log)
		}
		return
	}

	log.Info("user created", slog.Int64("id", id))
	if err := h.sessions.SetFlashSuccess(r.Context(), sid, "User created, activation email sent"); err != nil {
		log.Error("failed to set flash", sl.Err(err))
	}
	http.Redirect(w, r, "/users", http.StatusSeeOther)
}

func (h *Handler) failToForm(w http.ResponseWriter, r *http.Request, sid, msg string, formData map[string]string, log *slog.Logger) {
	if err := h.sessions.SetFlashError(r.Context(), sid, msg); err != nil {
		log.Error("failed to set flash", sl.Err(err))
	}
	if formData != nil {
		if err := h.sessions.SetFormData(r.Context(), sid, formData); err != nil {
			log.Error("failed to set form data", sl.Err(err))
		}
	}
	http.Redirect(w, r, "/users/create", http.StatusSeeOther)
}
