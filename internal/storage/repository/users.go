package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rbenzing/slimbooks-app/internal/models"
)

// ListUsers возвращает страницу не удаленных пользователей и общее количество
// подходящих записей без учета окна страницы.
func (s *Storage) ListUsers(ctx context.Context, limit, offset int) (*models.ListResult, error) {
	const op = "storage.ListUsers"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var total int
	if err := s.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE is_deleted = FALSE`).Scan(&total); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	query := `SELECT id, first_name, last_name, email, role_id, company_id,
			      is_active, is_deleted, created_at
			  FROM users
			  WHERE is_deleted = FALSE
			  ORDER BY id DESC
			  LIMIT $1 OFFSET $2`
	rows, err := s.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var users []*models.User
	for rows.Next() {
		var u models.User
		var companyID sql.NullInt64
		if err = rows.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.RoleID,
			&companyID, &u.IsActive, &u.IsDeleted, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if companyID.Valid {
			u.CompanyID = &companyID.Int64
		}
		users = append(users, &u)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &models.ListResult{Users: users, Total: total}, nil
}

// GetUserDetails возвращает пользователя с названием роли, разрешениями роли
// и названием компании. Мягко удаленные записи не находятся.
func (s *Storage) GetUserDetails(ctx context.Context, id int64) (*models.UserDetails, error) {
	const op = "storage.GetUserDetails"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT u.id, u.first_name, u.last_name, u.email, u.role_id, u.company_id,
			      u.is_active, u.is_deleted, u.created_at, r.name, COALESCE(c.name, '')
			  FROM users u
			  JOIN roles r ON r.id = u.role_id
			  LEFT JOIN companies c ON c.id = u.company_id
			  WHERE u.id = $1 AND u.is_deleted = FALSE`
	d := &models.UserDetails{}
	var companyID sql.NullInt64
	row := s.DB.QueryRowContext(ctx, query, id)
	if err := row.Scan(&d.ID, &d.FirstName, &d.LastName, &d.Email, &d.RoleID,
		&companyID, &d.IsActive, &d.IsDeleted, &d.CreatedAt, &d.RoleName, &d.CompanyName); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if companyID.Valid {
		d.CompanyID = &companyID.Int64
	}

	perms, err := s.listRolePermissions(ctx, d.RoleID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	d.Permissions = perms
	return d, nil
}

// GetUserByEmail возвращает активного не удаленного пользователя по почте.
// Используется при входе в систему.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.GetUserByEmail"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, first_name, last_name, email, role_id, company_id,
			      password_hash, is_active, is_deleted, created_at
			  FROM users
			  WHERE email = $1 AND is_deleted = FALSE`
	u := &models.User{}
	var companyID sql.NullInt64
	row := s.DB.QueryRowContext(ctx, query, email)
	if err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.RoleID,
		&companyID, &u.PasswordHash, &u.IsActive, &u.IsDeleted, &u.CreatedAt); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if companyID.Valid {
		u.CompanyID = &companyID.Int64
	}
	return u, nil
}

// EmailTaken проверяет, занята ли почта другим пользователем.
// excludeID исключает собственную запись при обновлении, ноль не исключает никого.
func (s *Storage) EmailTaken(ctx context.Context, email string, excludeID int64) (bool, error) {
	const op = "storage.EmailTaken"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var count int
	query := `SELECT COUNT(*) FROM users WHERE email = $1 AND id <> $2`
	if err := s.DB.QueryRowContext(ctx, query, email, excludeID).Scan(&count); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return count > 0, nil
}

// CreateUser сохраняет нового пользователя в базу данных и возвращает его ID.
func (s *Storage) CreateUser(ctx context.Context, user models.User) (int64, error) {
	const op = "storage.CreateUser"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newID int64
	query := `INSERT INTO users (first_name, last_name, email, role_id, company_id,
			      password_hash, is_active, is_deleted, activation_token)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			  RETURNING id;`
	if err := s.DB.QueryRowContext(ctx, query,
		user.FirstName, user.LastName, user.Email, user.RoleID, user.CompanyID,
		user.PasswordHash, user.IsActive, user.IsDeleted, user.ActivationToken).Scan(&newID); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// UpdateUser обновляет имя, фамилию, почту, роль и компанию пользователя.
// Пароль, флаги активности и удаления не трогаются. Возвращает количество
// обновленных записей: ноль означает, что запись отсутствует или удалена.
func (s *Storage) UpdateUser(ctx context.Context, id int64, user models.User) (int64, error) {
	const op = "storage.UpdateUser"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET first_name = $1, last_name = $2, email = $3, role_id = $4, company_id = $5
			  WHERE id = $6 AND is_deleted = FALSE`
	res, err := s.DB.ExecContext(ctx, query,
		user.FirstName, user.LastName, user.Email, user.RoleID, user.CompanyID, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

// SoftDeleteUser выставляет флаг мягкого удаления. Возвращает количество
// затронутых записей: ноль означает, что запись отсутствует или уже удалена.
func (s *Storage) SoftDeleteUser(ctx context.Context, id int64) (int64, error) {
	const op = "storage.SoftDeleteUser"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET is_deleted = TRUE
			  WHERE id = $1 AND is_deleted = FALSE`
	res, err := s.DB.ExecContext(ctx, query, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

// SetActivationToken сохраняет выданный пользователю токен активации.
func (s *Storage) SetActivationToken(ctx context.Context, id int64, token string) error {
	const op = "storage.SetActivationToken"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users SET activation_token = $1 WHERE id = $2`
	if _, err := s.DB.ExecContext(ctx, query, token, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// SetUserActive активирует учетную запись и очищает токен активации.
func (s *Storage) SetUserActive(ctx context.Context, id int64) (int64, error) {
	const op = "storage.SetUserActive"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET is_active = TRUE, activation_token = ''
			  WHERE id = $1 AND is_deleted = FALSE`
	res, err := s.DB.ExecContext(ctx, query, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

// listRolePermissions возвращает ключи разрешений, входящих в роль.
func (s *Storage) listRolePermissions(ctx context.Context, roleID int64) ([]string, error) {
	const op = "storage.listRolePermissions"

	query := `SELECT p.key
			  FROM role_permissions rp
			  JOIN permissions p ON p.id = rp.permission_id
			  WHERE rp.role_id = $1
			  ORDER BY p.key`
	rows, err := s.DB.QueryContext(ctx, query, roleID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var perms []string
	for rows.Next() {
		var key string
		if err = rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		perms = append(perms, key)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return perms, nil
}
