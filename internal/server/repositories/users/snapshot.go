package users

import (
	"time"

	"github.com/dmitrijs2005/gophidentity/internal/server/models"
)

// In-memory capabilities: each call changes only the snapshot.

func (r *PostgresRepository) SetPasswordHash(user *models.User, hash string) {
	user.SetPasswordHash(hash)
}

func (r *PostgresRepository) GetPasswordHash(user *models.User) string { return user.PasswordHash }

func (r *PostgresRepository) HasPassword(user *models.User) bool { return user.HasPassword() }

func (r *PostgresRepository) SetSecurityStamp(user *models.User, stamp string) {
	user.SetSecurityStamp(stamp)
}

func (r *PostgresRepository) GetSecurityStamp(user *models.User) string { return user.SecurityStamp }

func (r *PostgresRepository) SetEmail(user *models.User, email string) { user.SetEmail(email) }

func (r *PostgresRepository) GetEmail(user *models.User) string { return user.Email }

func (r *PostgresRepository) GetEmailConfirmed(user *models.User) bool { return user.EmailConfirmed }

func (r *PostgresRepository) SetEmailConfirmed(user *models.User, confirmed bool) {
	user.SetEmailConfirmed(confirmed)
}

func (r *PostgresRepository) GetLockoutEndDate(user *models.User) time.Time { return user.LockoutEnd }

func (r *PostgresRepository) SetLockoutEndDate(user *models.User, end time.Time) {
	user.SetLockoutEnd(end)
}

func (r *PostgresRepository) IncrementAccessFailedCount(user *models.User) int {
	return user.IncrementAccessFailedCount()
}

func (r *PostgresRepository) ResetAccessFailedCount(user *models.User) {
	user.ResetAccessFailedCount()
}

func (r *PostgresRepository) GetAccessFailedCount(user *models.User) int {
	return user.AccessFailedCount
}

func (r *PostgresRepository) GetLockoutEnabled(user *models.User) bool { return user.LockoutEnabled }

func (r *PostgresRepository) SetLockoutEnabled(user *models.User, enabled bool) {
	user.SetLockoutEnabled(enabled)
}

func (r *PostgresRepository) SetTwoFactorEnabled(user *models.User, enabled bool) {
	user.SetTwoFactorEnabled(enabled)
}

func (r *PostgresRepository) GetTwoFactorEnabled(user *models.User) bool {
	return user.TwoFactorEnabled
}

func (r *PostgresRepository) SetPhoneNumber(user *models.User, phone string) {
	user.SetPhoneNumber(phone)
}

func (r *PostgresRepository) GetPhoneNumber(user *models.User) string { return user.PhoneNumber }

func (r *PostgresRepository) GetPhoneNumberConfirmed(user *models.User) bool {
	return user.PhoneNumberConfirmed
}

func (r *PostgresRepository) SetPhoneNumberConfirmed(user *models.User, confirmed bool) {
	user.SetPhoneNumberConfirmed(confirmed)
}
