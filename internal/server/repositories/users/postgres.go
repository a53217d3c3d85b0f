// Package users persists users, their logins, role memberships and claims.
package users

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophidentity/internal/common"
	"github.com/dmitrijs2005/gophidentity/internal/dbx"
	"github.com/dmitrijs2005/gophidentity/internal/server/models"
	"github.com/dmitrijs2005/gophidentity/internal/server/repositories/pgerr"
)

const userColumns = `id, user_name, email, email_confirmed, password_hash, security_stamp,
		phone_number, phone_number_confirmed, two_factor_enabled,
		lockout_end, lockout_enabled, access_failed_count`

const userColumnsQualified = `u.id, u.user_name, u.email, u.email_confirmed, u.password_hash, u.security_stamp,
		u.phone_number, u.phone_number_confirmed, u.two_factor_enabled,
		u.lockout_end, u.lockout_enabled, u.access_failed_count`

// Unique constraints reported by Create and Update on a 23505.
const (
	ConstraintUniqueUserName = "uq_users_user_name"
	ConstraintUniqueEmail    = "uq_users_email"
)

type PostgresRepository struct {
	db dbx.DBTX
}

var _ Store = (*PostgresRepository)(nil)

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var (
		u                         models.User
		email, hash, stamp, phone sql.NullString
		lockoutEnd                sql.NullTime
	)
	err := row.Scan(&u.ID, &u.UserName, &email, &u.EmailConfirmed, &hash, &stamp,
		&phone, &u.PhoneNumberConfirmed, &u.TwoFactorEnabled,
		&lockoutEnd, &u.LockoutEnabled, &u.AccessFailedCount)
	if err != nil {
		return nil, err
	}
	u.Email = email.String
	u.PasswordHash = hash.String
	u.SecurityStamp = stamp.String
	u.PhoneNumber = phone.String
	if lockoutEnd.Valid {
		u.LockoutEnd = lockoutEnd.Time.UTC()
	}
	return &u, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// nullTime stores the zero time (no lockout) as NULL.
func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func (r *PostgresRepository) findOne(ctx context.Context, query string, args ...any) (*models.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, pgerr.Wrap(err)
	}
	return u, nil
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) error {
	query :=
		`INSERT INTO users (` + userColumns + `)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 `

	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.UserName, nullString(user.Email), user.EmailConfirmed,
		nullString(user.PasswordHash), nullString(user.SecurityStamp),
		nullString(user.PhoneNumber), user.PhoneNumberConfirmed, user.TwoFactorEnabled,
		nullTime(user.LockoutEnd), user.LockoutEnabled, user.AccessFailedCount)
	if err != nil {
		return pgerr.Wrap(err)
	}

	user.MarkClean()
	return nil
}

// Update overwrites every mutable column by id. Concurrent updates of the
// same user are last-writer-wins.
func (r *PostgresRepository) Update(ctx context.Context, user *models.User) error {
	query :=
		`UPDATE users SET
		   user_name = $2, email = $3, email_confirmed = $4, password_hash = $5,
		   security_stamp = $6, phone_number = $7, phone_number_confirmed = $8,
		   two_factor_enabled = $9, lockout_end = $10, lockout_enabled = $11,
		   access_failed_count = $12
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query,
		user.ID, user.UserName, nullString(user.Email), user.EmailConfirmed,
		nullString(user.PasswordHash), nullString(user.SecurityStamp),
		nullString(user.PhoneNumber), user.PhoneNumberConfirmed, user.TwoFactorEnabled,
		nullTime(user.LockoutEnd), user.LockoutEnabled, user.AccessFailedCount)
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

	user.MarkClean()
	return nil
}

// Delete removes the user by id. Logins, claims and memberships go with it
// through ON DELETE CASCADE. Deleting a missing user is a no-op.
func (r *PostgresRepository) Delete(ctx context.Context, user *models.User) error {
	query := `DELETE FROM users WHERE id = $1`

	if _, err := r.db.ExecContext(ctx, query, user.ID); err != nil {
		return pgerr.Wrap(err)
	}
	return nil
}

func (r *PostgresRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *PostgresRepository) FindByName(ctx context.Context, userName string) (*models.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE user_name = $1`, userName)
}

func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}
