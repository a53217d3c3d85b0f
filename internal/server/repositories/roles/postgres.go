// Package roles persists roles, their permissions and membership listings.
package roles

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gophidentity/internal/common"
	"github.com/dmitrijs2005/gophidentity/internal/dbx"
	"github.com/dmitrijs2005/gophidentity/internal/server/models"
	"github.com/dmitrijs2005/gophidentity/internal/server/repositories/pgerr"
)

type PostgresRepository struct {
	db     dbx.DBTX
	schema *SchemaState
}

var _ Store = (*PostgresRepository)(nil)

// NewPostgresRepository returns a store with its own schema state.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return NewPostgresRepositoryWithSchema(db, &SchemaState{})
}

// NewPostgresRepositoryWithSchema returns a store sharing s with every other
// store built from it, so the permission table check runs once per s.
func NewPostgresRepositoryWithSchema(db dbx.DBTX, s *SchemaState) *PostgresRepository {
	if s == nil {
		s = &SchemaState{}
	}
	return &PostgresRepository{db: db, schema: s}
}

func (r *PostgresRepository) Create(ctx context.Context, role *models.Role) error {
	query := `INSERT INTO roles (id, name) VALUES ($1, $2)`

	if _, err := r.db.ExecContext(ctx, query, role.ID, role.Name); err != nil {
		return pgerr.Wrap(err)
	}
	return nil
}

func (r *PostgresRepository) Update(ctx context.Context, role *models.Role) error {
	query := `UPDATE roles SET name = $2 WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, role.ID, role.Name)
	if err != nil {
		return pgerr.Wrap(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

// Delete removes the role; memberships and permissions cascade.
func (r *PostgresRepository) Delete(ctx context.Context, role *models.Role) error {
	query := `DELETE FROM roles WHERE id = $1`

	if _, err := r.db.ExecContext(ctx, query, role.ID); err != nil {
		return pgerr.Wrap(err)
	}
	return nil
}

func (r *PostgresRepository) FindByID(ctx context.Context, id string) (*models.Role, error) {
	return r.findOne(ctx, `SELECT id, name FROM roles WHERE id = $1`, id)
}

func (r *PostgresRepository) FindByName(ctx context.Context, name string) (*models.Role, error) {
	return r.findOne(ctx, `SELECT id, name FROM roles WHERE name = $1`, name)
}

func (r *PostgresRepository) findOne(ctx context.Context, query string, arg string) (*models.Role, error) {
	role := &models.Role{}
	if err := r.db.QueryRowContext(ctx, query, arg).Scan(&role.ID, &role.Name); err != nil {
		return nil, pgerr.Wrap(err)
	}
	return role, nil
}

func (r *PostgresRepository) List(ctx context.Context, opts ListOptions) ([]models.Role, error) {
	query :=
		`SELECT id, name FROM roles
		 WHERE $1 = '' OR name ILIKE '%' || $1 || '%'
		 ORDER BY name
		 LIMIT $2 OFFSET $3
		 `

	var limit any
	if opts.Limit > 0 {
		limit = opts.Limit
	}
	offset := max(opts.Offset, 0)

	rows, err := r.db.QueryContext(ctx, query, opts.Search, limit, offset)
	if err != nil {
		return nil, pgerr.Wrap(err)
	}
	defer rows.Close()

	roles := make([]models.Role, 0)
	for rows.Next() {
		var role models.Role
		if err := rows.Scan(&role.ID, &role.Name); err != nil {
			return nil, pgerr.Wrap(err)
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, pgerr.Wrap(err)
	}
	return roles, nil
}

func (r *PostgresRepository) Count(ctx context.Context, search string) (int, error) {
	query :=
		`SELECT COUNT(*) FROM roles
		 WHERE $1 = '' OR name ILIKE '%' || $1 || '%'
		 `

	var n int
	if err := r.db.QueryRowContext(ctx, query, search).Scan(&n); err != nil {
		return 0, pgerr.Wrap(err)
	}
	return n, nil
}
