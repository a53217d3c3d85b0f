package users

import (
	"context"

	"github.com/dmitrijs2005/gophidentity/internal/server/models"
	"github.com/dmitrijs2005/gophidentity/internal/server/repositories/pgerr"
)

func (r *PostgresRepository) AddLogin(ctx context.Context, user *models.User, login models.UserLoginInfo) error {
	row := models.NewUserLogin(user.ID, login)

	query :=
		`INSERT INTO user_logins (login_provider, provider_key, user_id)
		 VALUES ($1, $2, $3)
		 `

	if _, err := r.db.ExecContext(ctx, query, row.LoginProvider, row.ProviderKey, row.UserID); err != nil {
		return pgerr.Wrap(err)
	}
	return nil
}

func (r *PostgresRepository) RemoveLogin(ctx context.Context, user *models.User, login models.UserLoginInfo) error {
	query :=
		`DELETE FROM user_logins
		 WHERE user_id = $1 AND login_provider = $2 AND provider_key = $3
		 `

	if _, err := r.db.ExecContext(ctx, query, user.ID, login.LoginProvider, login.ProviderKey); err != nil {
		return pgerr.Wrap(err)
	}
	return nil
}

func (r *PostgresRepository) GetLogins(ctx context.Context, user *models.User) ([]models.UserLoginInfo, error) {
	query :=
		`SELECT login_provider, provider_key, user_id FROM user_logins
		 WHERE user_id = $1
		 ORDER BY login_provider, provider_key
		 `

	rows, err := r.db.QueryContext(ctx, query, user.ID)
	if err != nil {
		return nil, pgerr.Wrap(err)
	}
	defer rows.Close()

	logins := make([]models.UserLoginInfo, 0)
	for rows.Next() {
		var l models.UserLogin
		if err := rows.Scan(&l.LoginProvider, &l.ProviderKey, &l.UserID); err != nil {
			return nil, pgerr.Wrap(err)
		}
		logins = append(logins, l.Info())
	}
	if err := rows.Err(); err != nil {
		return nil, pgerr.Wrap(err)
	}
	return logins, nil
}

func (r *PostgresRepository) FindByLogin(ctx context.Context, login models.UserLoginInfo) (*models.User, error) {
	query :=
		`SELECT ` + userColumnsQualified + `
		 FROM users u
		 JOIN user_logins l ON l.user_id = u.id
		 WHERE l.login_provider = $1 AND l.provider_key = $2
		 `
	return r.findOne(ctx, query, login.LoginProvider, login.ProviderKey)
}

// AddToRole resolves roleName and inserts the membership in one statement,
// so an unknown role name inserts nothing. Repeating it is harmless.
func (r *PostgresRepository) AddToRole(ctx context.Context, user *models.User, roleName string) error {
	query :=
		`INSERT INTO user_roles (user_id, role_id)
		 SELECT $1, id FROM roles WHERE name = $2
		 ON CONFLICT DO NOTHING
		 `

	if _, err := r.db.ExecContext(ctx, query, user.ID, roleName); err != nil {
		return pgerr.Wrap(err)
	}
	return nil
}

func (r *PostgresRepository) RemoveFromRole(ctx context.Context, user *models.User, roleName string) error {
	query :=
		`DELETE FROM user_roles
		 WHERE user_id = $1 AND role_id IN (SELECT id FROM roles WHERE name = $2)
		 `

	if _, err := r.db.ExecContext(ctx, query, user.ID, roleName); err != nil {
		return pgerr.Wrap(err)
	}
	return nil
}

func (r *PostgresRepository) GetRoles(ctx context.Context, user *models.User) ([]string, error) {
	query :=
		`SELECT r.name FROM roles r
		 JOIN user_roles ur ON ur.role_id = r.id
		 WHERE ur.user_id = $1
		 ORDER BY r.name
		 `

	rows, err := r.db.QueryContext(ctx, query, user.ID)
	if err != nil {
		return nil, pgerr.Wrap(err)
	}
	defer rows.Close()

	names := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, pgerr.Wrap(err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, pgerr.Wrap(err)
	}
	return names, nil
}

func (r *PostgresRepository) IsInRole(ctx context.Context, user *models.User, roleName string) (bool, error) {
	query :=
		`SELECT EXISTS (
		   SELECT 1 FROM user_roles ur
		   JOIN roles r ON r.id = ur.role_id
		   WHERE ur.user_id = $1 AND r.name = $2
		 )
		 `

	var ok bool
	if err := r.db.QueryRowContext(ctx, query, user.ID, roleName).Scan(&ok); err != nil {
		return false, pgerr.Wrap(err)
	}
	return ok, nil
}

func (r *PostgresRepository) GetClaims(ctx context.Context, user *models.User) ([]models.Claim, error) {
	query :=
		`SELECT claim_type, claim_value FROM user_claims
		 WHERE user_id = $1
		 ORDER BY id
		 `

	rows, err := r.db.QueryContext(ctx, query, user.ID)
	if err != nil {
		return nil, pgerr.Wrap(err)
	}
	defer rows.Close()

	claims := make([]models.Claim, 0)
	for rows.Next() {
		var c models.Claim
		if err := rows.Scan(&c.Type, &c.Value); err != nil {
			return nil, pgerr.Wrap(err)
		}
		claims = append(claims, c)
	}
	if err := rows.Err(); err != nil {
		return nil, pgerr.Wrap(err)
	}
	return claims, nil
}

func (r *PostgresRepository) AddClaim(ctx context.Context, user *models.User, claim models.Claim) error {
	query :=
		`INSERT INTO user_claims (user_id, claim_type, claim_value)
		 VALUES ($1, $2, $3)
		 `

	if _, err := r.db.ExecContext(ctx, query, user.ID, claim.Type, claim.Value); err != nil {
		return pgerr.Wrap(err)
	}
	return nil
}

func (r *PostgresRepository) RemoveClaim(ctx context.Context, user *models.User, claim models.Claim) error {
	query :=
		`DELETE FROM user_claims
		 WHERE user_id = $1 AND claim_type = $2 AND claim_value = $3
		 `

	if _, err := r.db.ExecContext(ctx, query, user.ID, claim.Type, claim.Value); err != nil {
		return pgerr.Wrap(err)
	}
	return nil
}
