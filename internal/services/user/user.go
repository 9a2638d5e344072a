// Package user содержит бизнес-логику администрирования учетных записей:
// постраничные списки, чтение с деталями, создание с отправкой письма активации,
// обновление и мягкое удаление. Ожидаемые отказы возвращаются типизированными
// ошибками, чтобы обработчики отличали их от системных сбоев.
package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/rbenzing/slimbooks-app/internal/lib/password"
	"github.com/rbenzing/slimbooks-app/internal/lib/sl"
	"github.com/rbenzing/slimbooks-app/internal/lib/token"
	"github.com/rbenzing/slimbooks-app/internal/metrics"
	"github.com/rbenzing/slimbooks-app/internal/models"
)

// Типизированные ошибки ожидаемых, исправимых пользователем отказов.
var (
	// ErrInvalidID идентификатор не является положительным целым числом.
	ErrInvalidID = errors.New("invalid user id")
	// ErrNotFound запись отсутствует или мягко удалена.
	ErrNotFound = errors.New("user not found")
	// ErrEmailTaken почта занята другим пользователем.
	ErrEmailTaken = errors.New("email is already in use")
	// ErrRoleNotFound указанная роль не существует.
	ErrRoleNotFound = errors.New("role does not exist")
	// ErrCompanyNotFound указанная компания не существует.
	ErrCompanyNotFound = errors.New("company does not exist")
	// ErrSelfDelete попытка удалить собственную учетную запись.
	ErrSelfDelete = errors.New("cannot delete own account")
	// ErrInvalidToken токен активации не прошел проверку или истёк.
	ErrInvalidToken = errors.New("invalid activation token")
)

// Repository определяет методы хранилища, используемые сервисом.
type Repository interface {
	// ListUsers возвращает страницу не удаленных пользователей и общее количество.
	ListUsers(ctx context.Context, limit, offset int) (*models.ListResult, error)
	// GetUserDetails возвращает пользователя с ролью, разрешениями и компанией.
	GetUserDetails(ctx context.Context, id int64) (*models.UserDetails, error)
	// EmailTaken проверяет занятость почты, исключая запись excludeID.
	EmailTaken(ctx context.Context, email string, excludeID int64) (bool, error)
	// CreateUser сохраняет нового пользователя и возвращает его ID.
	CreateUser(ctx context.Context, user models.User) (int64, error)
	// UpdateUser обновляет поля пользователя, возвращает количество записей.
	UpdateUser(ctx context.Context, id int64, user models.User) (int64, error)
	// SoftDeleteUser выставляет флаг удаления, возвращает количество записей.
	SoftDeleteUser(ctx context.Context, id int64) (int64, error)
	// SetActivationToken сохраняет токен активации.
	SetActivationToken(ctx context.Context, id int64, token string) error
	// SetUserActive активирует учетную запись.
	SetUserActive(ctx context.Context, id int64) (int64, error)
	// GetRole возвращает роль по ID.
	GetRole(ctx context.Context, id int64) (*models.Role, error)
	// GetCompany возвращает компанию по ID.
	GetCompany(ctx context.Context, id int64) (*models.Company, error)
	// ListRoles возвращает роли для форм.
	ListRoles(ctx context.Context, limit int) ([]*models.Role, error)
	// ListCompanies возвращает компании для форм.
	ListCompanies(ctx context.Context, limit int) ([]*models.Company, error)
}

// Publisher описывает публикацию задач на отправку почты.
type Publisher interface {
	PublishActivation(task models.ActivationTask) error
}

// Service реализует бизнес-логику администрирования учетных записей.
type Service struct {
	repo          Repository
	publisher     Publisher
	tokens        token.Maker
	log           *slog.Logger
	pageSize      int
	selectorLimit int
}

// New создает новый экземпляр Service.
func New(repo Repository, publisher Publisher, tokens token.Maker, log *slog.Logger, pageSize, selectorLimit int) *Service {
	return &Service{
		repo:          repo,
		publisher:     publisher,
		tokens:        tokens,
		log:           log,
		pageSize:      pageSize,
		selectorLimit: selectorLimit,
	}
}

// ListPage страница списка пользователей вместе с вычисленной пагинацией.
type ListPage struct {
	Users      []*models.User
	Total      int
	TotalPages int
	Page       int
}

// List возвращает страницу пользователей. Номер страницы меньше единицы
// поднимается до единицы, totalPages = ceil(total / pageSize), ноль при
// отсутствии записей.
func (s *Service) List(ctx context.Context, page int) (*ListPage, error) {
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * s.pageSize

	result, err := s.repo.ListUsers(ctx, s.pageSize, offset)
	if err != nil {
		return nil, err
	}

	totalPages := (result.Total + s.pageSize - 1) / s.pageSize
	return &ListPage{
		Users:      result.Users,
		Total:      result.Total,
		TotalPages: totalPages,
		Page:       page,
	}, nil
}

// Get возвращает пользователя с деталями по идентификатору.
// Отсутствующая и мягко удаленная запись неразличимы: обе дают ErrNotFound.
func (s *Service) Get(ctx context.Context, id int64) (*models.UserDetails, error) {
	if id <= 0 {
		return nil, ErrInvalidID
	}
	details, err := s.repo.GetUserDetails(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return details, nil
}

// FormOptions варианты для выпадающих списков формы пользователя.
type FormOptions struct {
	Roles     []*models.Role
	Companies []*models.Company
}

// Options возвращает роли и компании для формы создания и редактирования.
func (s *Service) Options(ctx context.Context) (*FormOptions, error) {
	roles, err := s.repo.ListRoles(ctx, s.selectorLimit)
	if err != nil {
		return nil, err
	}
	companies, err := s.repo.ListCompanies(ctx, s.selectorLimit)
	if err != nil {
		return nil, err
	}
	return &FormOptions{Roles: roles, Companies: companies}, nil
}

// Create создает неактивную учетную запись со случайным временным паролем,
// сохраняет токен активации и публикует задачу на отправку письма.
// Отказ публикации не отменяет создание: письмо можно отправить повторно.
func (s *Service) Create(ctx context.Context, form models.UserForm) (int64, error) {
	const op = "services.user.Create"

	user, err := s.buildUser(ctx, form, 0)
	if err != nil {
		return 0, err
	}

	// Временный пароль: учетная запись активируется по токену, вход по этому
	// паролю невозможен, так как исходное значение нигде не сохраняется.
	hash, err := password.GetHash(uuid.New().String())
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	user.PasswordHash = hash
	user.IsActive = false

	id, err := s.repo.CreateUser(ctx, *user)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	activationToken, err := s.tokens.GenerateToken(id, user.Email)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.repo.SetActivationToken(ctx, id, activationToken); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	task := models.ActivationTask{
		Email:     user.Email,
		FirstName: user.FirstName,
		Token:     activationToken,
	}
	if err := s.publisher.PublishActivation(task); err != nil {
		s.log.Warn("failed to publish activation email task", sl.Err(err), slog.Int64("user_id", id))
	}

	s.log.Info("created new user", slog.Int64("id", id))
	metrics.UsersCreated.Inc()
	return id, nil
}

// Update обновляет имя, фамилию, почту, роль и компанию пользователя.
// Проверка уникальности почты исключает собственную запись. Пароль, флаги
// активности и удаления не изменяются.
func (s *Service) Update(ctx context.Context, id int64, form models.UserForm) error {
	const op = "services.user.Update"

	if id <= 0 {
		return ErrInvalidID
	}

	user, err := s.buildUser(ctx, form, id)
	if err != nil {
		return err
	}

	count, err := s.repo.UpdateUser(ctx, id, *user)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if count == 0 {
		return ErrNotFound
	}

	s.log.Info("updated user", slog.Int64("id", id))
	metrics.UsersUpdated.Inc()
	return nil
}

// Delete мягко удаляет пользователя. Удаление собственной учетной записи
// запрещено. Уже удаленная запись дает ErrNotFound без повторной мутации.
func (s *Service) Delete(ctx context.Context, id, actorID int64) error {
	const op = "services.user.Delete"

	if id <= 0 {
		return ErrInvalidID
	}
	if id == actorID {
		return ErrSelfDelete
	}

	count, err := s.repo.SoftDeleteUser(ctx, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if count == 0 {
		return ErrNotFound
	}

	s.log.Info("soft-deleted user", slog.Int64("id", id))
	metrics.UsersDeleted.Inc()
	return nil
}

// Activate активирует учетную запись по токену из письма.
func (s *Service) Activate(ctx context.Context, tokenStr string) error {
	const op = "services.user.Activate"

	claims, err := s.tokens.ParseToken(tokenStr)
	if err != nil {
		return ErrInvalidToken
	}

	count, err := s.repo.SetUserActive(ctx, claims.UserID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if count == 0 {
		return ErrNotFound
	}

	s.log.Info("activated user", slog.Int64("id", claims.UserID))
	return nil
}

// buildUser конвертирует данные формы в модель: экранирует имена, приводит
// почту к нижнему регистру, проверяет уникальность почты и существование
// роли и компании. excludeID исключает собственную запись из проверки почты.
func (s *Service) buildUser(ctx context.Context, form models.UserForm, excludeID int64) (*models.User, error) {
	const op = "services.user.buildUser"

	email := strings.ToLower(strings.TrimSpace(form.Email))
	taken, err := s.repo.EmailTaken(ctx, email, excludeID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if taken {
		return nil, ErrEmailTaken
	}

	roleID, err := strconv.ParseInt(form.RoleID, 10, 64)
	if err != nil || roleID <= 0 {
		return nil, ErrRoleNotFound
	}
	if _, err := s.repo.GetRole(ctx, roleID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRoleNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var companyID *int64
	if form.CompanyID != "" {
		id, err := strconv.ParseInt(form.CompanyID, 10, 64)
		if err != nil || id <= 0 {
			return nil, ErrCompanyNotFound
		}
		if _, err := s.repo.GetCompany(ctx, id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, ErrCompanyNotFound
			}
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		companyID = &id
	}

	return &models.User{
		FirstName: html.EscapeString(strings.TrimSpace(form.FirstName)),
		LastName:  html.EscapeString(strings.TrimSpace(form.LastName)),
		Email:     email,
		RoleID:    roleID,
		CompanyID: companyID,
	}, nil
}
