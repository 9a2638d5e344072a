// Package auth содержит бизнес-логику входа в систему: проверку пары
// почта-пароль и сборку снимка разрешений для новой сессии.
package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rbenzing/slimbooks-app/internal/lib/password"
	"github.com/rbenzing/slimbooks-app/internal/metrics"
	"github.com/rbenzing/slimbooks-app/internal/models"
)

// Типизированные ошибки ожидаемых отказов входа.
var (
	// ErrInvalidCredentials почта неизвестна или пароль не подходит.
	// Оба случая неразличимы снаружи, чтобы не раскрывать существование почты.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrInactiveAccount учетная запись еще не активирована.
	ErrInactiveAccount = errors.New("account is not activated")
)

// Repository определяет методы хранилища, используемые при входе.
type Repository interface {
	// GetUserByEmail возвращает активного не удаленного пользователя по почте.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	// GetRole возвращает роль с разрешениями.
	GetRole(ctx context.Context, id int64) (*models.Role, error)
}

// Service реализует проверку учетных данных.
type Service struct {
	repo Repository
	log  *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo Repository, log *slog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Authenticate проверяет пару почта-пароль и возвращает пользователя вместе
// со снимком разрешений его роли для записи в сессию.
func (s *Service) Authenticate(ctx context.Context, email, pass string) (*models.User, []string, error) {
	const op = "services.auth.Authenticate"

	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			metrics.LoginFailures.Inc()
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := password.CompareHash(user.PasswordHash, pass); err != nil {
		metrics.LoginFailures.Inc()
		return nil, nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, nil, ErrInactiveAccount
	}

	role, err := s.repo.GetRole(ctx, user.RoleID)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("user authenticated", slog.Int64("id", user.ID))
	return user, role.Permissions, nil
}
