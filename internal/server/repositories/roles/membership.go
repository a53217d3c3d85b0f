package roles

import (
	"context"

	"github.com/dmitrijs2005/gophidentity/internal/server/models"
	"github.com/dmitrijs2005/gophidentity/internal/server/repositories/pgerr"
)

func (r *PostgresRepository) UsersInRole(ctx context.Context, roleID string) ([]models.UserSummary, error) {
	query :=
		`SELECT u.id, u.user_name, COALESCE(u.email, '')
		 FROM users u
		 JOIN user_roles ur ON ur.user_id = u.id
		 WHERE ur.role_id = $1
		 ORDER BY u.user_name
		 `
	return r.listUsers(ctx, query, roleID)
}

// UsersNotInRole is the complement of UsersInRole over all users.
func (r *PostgresRepository) UsersNotInRole(ctx context.Context, roleID string) ([]models.UserSummary, error) {
	query :=
		`SELECT u.id, u.user_name, COALESCE(u.email, '')
		 FROM users u
		 WHERE NOT EXISTS (
		   SELECT 1 FROM user_roles ur WHERE ur.user_id = u.id AND ur.role_id = $1
		 )
		 ORDER BY u.user_name
		 `
	return r.listUsers(ctx, query, roleID)
}

func (r *PostgresRepository) listUsers(ctx context.Context, query, roleID string) ([]models.UserSummary, error) {
	rows, err := r.db.QueryContext(ctx, query, roleID)
	if err != nil {
		return nil, pgerr.Wrap(err)
	}
	defer rows.Close()

	users := make([]models.UserSummary, 0)
	for rows.Next() {
		var u models.UserSummary
		if err := rows.Scan(&u.ID, &u.UserName, &u.Email); err != nil {
			return nil, pgerr.Wrap(err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, pgerr.Wrap(err)
	}
	return users, nil
}
