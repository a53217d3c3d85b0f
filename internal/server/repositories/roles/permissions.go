package roles

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/gophidentity/internal/server/models"
	"github.com/dmitrijs2005/gophidentity/internal/server/repositories/pgerr"
)

// SchemaState records whether the permission table has been ensured. It
// outlives individual stores, which are rebuilt for every *sql.DB or *sql.Tx.
type SchemaState struct {
	mu      sync.Mutex
	ensured bool
}

var ensureStatements = []string{
	`CREATE TABLE IF NOT EXISTS role_permissions (
	   role_id    TEXT NOT NULL REFERENCES roles (id) ON DELETE CASCADE,
	   permission TEXT NOT NULL,
	   PRIMARY KEY (role_id, permission)
	 )`,
	`CREATE INDEX IF NOT EXISTS ix_role_permissions_permission ON role_permissions (permission)`,
}

// EnsureSchema creates the permission table when it is missing. It is
// idempotent and safe to run against a fully migrated database. Success
// also satisfies the lazy step of every store sharing this schema state.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	if err := r.createPermissionTable(ctx); err != nil {
		return err
	}
	r.schema.mu.Lock()
	r.schema.ensured = true
	r.schema.mu.Unlock()
	return nil
}

func (r *PostgresRepository) createPermissionTable(ctx context.Context) error {
	for _, stmt := range ensureStatements {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return pgerr.Wrap(err)
		}
	}
	return nil
}

// ensureOnce runs EnsureSchema the first time a permission operation uses
// the shared schema state. A failed attempt is retried on the next call.
func (r *PostgresRepository) ensureOnce(ctx context.Context) error {
	r.schema.mu.Lock()
	defer r.schema.mu.Unlock()

	if r.schema.ensured {
		return nil
	}
	if err := r.createPermissionTable(ctx); err != nil {
		return err
	}
	r.schema.ensured = true
	return nil
}

func (r *PostgresRepository) GetPermissions(ctx context.Context, roleID string) ([]string, error) {
	if err := r.ensureOnce(ctx); err != nil {
		return nil, err
	}

	query :=
		`SELECT permission FROM role_permissions
		 WHERE role_id = $1
		 ORDER BY permission
		 `

	rows, err := r.db.QueryContext(ctx, query, roleID)
	if err != nil {
		return nil, pgerr.Wrap(err)
	}
	defer rows.Close()

	perms := make([]string, 0)
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, pgerr.Wrap(err)
		}
		perms = append(perms, p)
	}
	if err := rows.Err(); err != nil {
		return nil, pgerr.Wrap(err)
	}
	return perms, nil
}

// AddPermission inserts the pair unless it already exists.
func (r *PostgresRepository) AddPermission(ctx context.Context, roleID, permission string) error {
	if err := r.ensureOnce(ctx); err != nil {
		return err
	}

	row := models.RolePermission{RoleID: roleID, Permission: permission}

	query :=
		`INSERT INTO role_permissions (role_id, permission)
		 VALUES ($1, $2)
		 ON CONFLICT (role_id, permission) DO NOTHING
		 `

	if _, err := r.db.ExecContext(ctx, query, row.RoleID, row.Permission); err != nil {
		return pgerr.Wrap(err)
	}
	return nil
}

// RemovePermissions deletes each permission on its own; absent ones are skipped.
func (r *PostgresRepository) RemovePermissions(ctx context.Context, roleID string, permissions []string) error {
	if len(permissions) == 0 {
		return nil
	}
	if err := r.ensureOnce(ctx); err != nil {
		return err
	}

	query := `DELETE FROM role_permissions WHERE role_id = $1 AND permission = $2`

	for _, p := range permissions {
		if _, err := r.db.ExecContext(ctx, query, roleID, p); err != nil {
			return pgerr.Wrap(err)
		}
	}
	return nil
}
