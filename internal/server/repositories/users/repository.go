package users

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gophidentity/internal/server/models"
)

// Capabilities are split so callers depend only on what they use. Methods
// without a context work on the in-memory snapshot and must be followed by
// UserStore.Update to be persisted.

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByName(ctx context.Context, userName string) (*models.User, error)
}

type PasswordStore interface {
	SetPasswordHash(user *models.User, hash string)
	GetPasswordHash(user *models.User) string
	HasPassword(user *models.User) bool
}

type SecurityStampStore interface {
	SetSecurityStamp(user *models.User, stamp string)
	GetSecurityStamp(user *models.User) string
}

type EmailStore interface {
	SetEmail(user *models.User, email string)
	GetEmail(user *models.User) string
	GetEmailConfirmed(user *models.User) bool
	SetEmailConfirmed(user *models.User, confirmed bool)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

type LockoutStore interface {
	// GetLockoutEndDate returns the zero time when no lockout is set.
	GetLockoutEndDate(user *models.User) time.Time
	SetLockoutEndDate(user *models.User, end time.Time)
	IncrementAccessFailedCount(user *models.User) int
	ResetAccessFailedCount(user *models.User)
	GetAccessFailedCount(user *models.User) int
	GetLockoutEnabled(user *models.User) bool
	SetLockoutEnabled(user *models.User, enabled bool)
}

type TwoFactorStore interface {
	SetTwoFactorEnabled(user *models.User, enabled bool)
	GetTwoFactorEnabled(user *models.User) bool
}

type PhoneNumberStore interface {
	SetPhoneNumber(user *models.User, phone string)
	GetPhoneNumber(user *models.User) string
	GetPhoneNumberConfirmed(user *models.User) bool
	SetPhoneNumberConfirmed(user *models.User, confirmed bool)
}

type LoginStore interface {
	AddLogin(ctx context.Context, user *models.User, login models.UserLoginInfo) error
	RemoveLogin(ctx context.Context, user *models.User, login models.UserLoginInfo) error
	GetLogins(ctx context.Context, user *models.User) ([]models.UserLoginInfo, error)
	FindByLogin(ctx context.Context, login models.UserLoginInfo) (*models.User, error)
}

type UserRoleStore interface {
	// AddToRole is a no-op when roleName does not resolve to a role.
	AddToRole(ctx context.Context, user *models.User, roleName string) error
	RemoveFromRole(ctx context.Context, user *models.User, roleName string) error
	GetRoles(ctx context.Context, user *models.User) ([]string, error)
	IsInRole(ctx context.Context, user *models.User, roleName string) (bool, error)
}

type ClaimStore interface {
	GetClaims(ctx context.Context, user *models.User) ([]models.Claim, error)
	AddClaim(ctx context.Context, user *models.User, claim models.Claim) error
	RemoveClaim(ctx context.Context, user *models.User, claim models.Claim) error
}

// Store is every capability at once.
type Store interface {
	UserStore
	PasswordStore
	SecurityStampStore
	EmailStore
	LockoutStore
	TwoFactorStore
	PhoneNumberStore
	LoginStore
	UserRoleStore
	ClaimStore
}
