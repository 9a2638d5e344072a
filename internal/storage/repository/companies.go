package repository

import (
	"context"
	"fmt"

	"github.com/rbenzing/slimbooks-app/internal/models"
)

// ListCompanies возвращает компании для выпадающих списков форм, не более limit штук.
func (s *Storage) ListCompanies(ctx context.Context, limit int) ([]*models.Company, error) {
	const op = "storage.ListCompanies"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, name FROM companies ORDER BY name LIMIT $1`
	rows, err := s.DB.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var companies []*models.Company
	for rows.Next() {
		var c models.Company
		if err = rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		companies = append(companies, &c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return companies, nil
}

// GetCompany возвращает компанию по ID.
func (s *Storage) GetCompany(ctx context.Context, id int64) (*models.Company, error) {
	const op = "storage.GetCompany"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	c := &models.Company{}
	query := `SELECT id, name FROM companies WHERE id = $1`
	if err := s.DB.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.Name); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return c, nil
}
