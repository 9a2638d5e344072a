package repository

import (
	"context"
	"fmt"

	"github.com/rbenzing/slimbooks-app/internal/models"
)

// ListRoles возвращает роли для выпадающих списков форм, не более limit штук.
func (s *Storage) ListRoles(ctx context.Context, limit int) ([]*models.Role, error) {
	const op = "storage.ListRoles"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, name FROM roles ORDER BY name LIMIT $1`
	rows, err := s.DB.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var roles []*models.Role
	for rows.Next() {
		var r models.Role
		if err = rows.Scan(&r.ID, &r.Name); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		roles = append(roles, &r)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return roles, nil
}

// GetRole возвращает роль по ID вместе с её разрешениями.
func (s *Storage) GetRole(ctx context.Context, id int64) (*models.Role, error) {
	const op = "storage.GetRole"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	r := &models.Role{}
	query := `SELECT id, name FROM roles WHERE id = $1`
	if err := s.DB.QueryRowContext(ctx, query, id).Scan(&r.ID, &r.Name); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	perms, err := s.listRolePermissions(ctx, r.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	r.Permissions = perms
	return r, nil
}
