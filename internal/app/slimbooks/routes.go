// Package slimbooks предоставляет маршруты для веб-приложения админки.
package slimbooks

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rbenzing/slimbooks-app/internal/http/handlers/auth/activate"
	"github.com/rbenzing/slimbooks-app/internal/http/handlers/auth/login"
	"github.com/rbenzing/slimbooks-app/internal/http/handlers/auth/logout"
	"github.com/rbenzing/slimbooks-app/internal/http/handlers/dashboard"
	"github.com/rbenzing/slimbooks-app/internal/http/handlers/health"
	"github.com/rbenzing/slimbooks-app/internal/http/handlers/user/create"
	"github.com/rbenzing/slimbooks-app/internal/http/handlers/user/createform"
	"github.com/rbenzing/slimbooks-app/internal/http/handlers/user/editform"
	"github.com/rbenzing/slimbooks-app/internal/http/handlers/user/index"
	"github.com/rbenzing/slimbooks-app/internal/http/handlers/user/profile"
	"github.com/rbenzing/slimbooks-app/internal/http/handlers/user/remove"
	"github.com/rbenzing/slimbooks-app/internal/http/handlers/user/update"
	"github.com/rbenzing/slimbooks-app/internal/http/handlers/user/view"
	"github.com/rbenzing/slimbooks-app/internal/http/middlewarectx"
	authservice "github.com/rbenzing/slimbooks-app/internal/services/auth"
	userservice "github.com/rbenzing/slimbooks-app/internal/services/user"
	"github.com/rbenzing/slimbooks-app/internal/session"
	appview "github.com/rbenzing/slimbooks-app/internal/view"
)

// Разрешения, которыми шлюзуются операции над учетными записями.
const (
	PermViewUsers   = "view_users"
	PermCreateUsers = "create_users"
	PermEditUsers   = "edit_users"
	PermDeleteUsers = "delete_users"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, userService *userservice.Service, authService *authservice.Service, sessions *session.Store, renderer appview.Renderer, detailedErrors bool) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
		middlewarectx.RateLimitMiddleware(logger),
	)

	// Открытые конечные точки
	loginHandler := login.New(logger, authService, sessions, renderer)
	r.Get("/login", loginHandler.ShowForm)
	r.Post("/login", loginHandler.ServeHTTP)
	r.Get("/activate", activate.New(logger, userService).ServeHTTP)
	r.Get("/health", health.New(logger).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())

	// Группа с аутентификацией по сессии
	r.Group(func(r chi.Router) {
		r.Use(middlewarectx.SessionMiddleware(sessions, logger))

		r.Get("/dashboard", dashboard.New(logger, sessions, renderer).ServeHTTP)
		r.Get("/profile", profile.New(logger, userService, sessions, renderer).ServeHTTP)
		r.Post("/logout", logout.New(logger, sessions).ServeHTTP)

		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.RequirePermission(PermViewUsers, sessions, logger))
			r.Get("/users", index.New(logger, userService, sessions, renderer).ServeHTTP)
			r.Get("/users/view", view.New(logger, userService, sessions, renderer).ServeHTTP)
		})

		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.RequirePermission(PermCreateUsers, sessions, logger))
			r.Get("/users/create", createform.New(logger, userService, sessions, renderer).ServeHTTP)
			r.Post("/users/create", create.New(logger, userService, sessions, detailedErrors).ServeHTTP)
		})

		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.RequirePermission(PermEditUsers, sessions, logger))
			r.Get("/users/edit", editform.New(logger, userService, sessions, renderer).ServeHTTP)
			r.Post("/users/edit", update.New(logger, userService, sessions, detailedErrors).ServeHTTP)
		})

		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.RequirePermission(PermDeleteUsers, sessions, logger))
			// Обработчик сам отвергает не-POST запросы, поэтому маршрут
			// регистрируется для всех методов.
			r.Handle("/users/delete", remove.New(logger, userService, sessions))
		})
	})
}
