// Package services contains the identity manager: user and role workflows
// built on the stores and the password hasher.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophidentity/internal/common"
	"github.com/dmitrijs2005/gophidentity/internal/logging"
	"github.com/dmitrijs2005/gophidentity/internal/server/auth"
	"github.com/dmitrijs2005/gophidentity/internal/server/config"
	"github.com/dmitrijs2005/gophidentity/internal/server/hasher"
	"github.com/dmitrijs2005/gophidentity/internal/server/metrics"
	"github.com/dmitrijs2005/gophidentity/internal/server/models"
	"github.com/dmitrijs2005/gophidentity/internal/server/repositories/pgerr"
	"github.com/dmitrijs2005/gophidentity/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophidentity/internal/server/repositories/users"
)

// UserManager runs user workflows. Every method that changes a user flushes
// it with Update before returning.
type UserManager struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hasher      hasher.PasswordHasher
	logger      logging.Logger
	metrics     metrics.Recorder

	passwordPolicy          PasswordPolicy
	requireUniqueEmail      bool
	maxFailedAccessAttempts int
	lockoutTimeSpan         time.Duration
	lockoutEnabledByDefault bool
	tokenSecret             []byte
	tokenLifespan           time.Duration

	now func() time.Time
}

func NewUserManager(db *sql.DB, m repomanager.RepositoryManager, h hasher.PasswordHasher,
	cfg *config.Config, logger logging.Logger, rec metrics.Recorder) *UserManager {
	if rec == nil {
		rec = metrics.Nop{}
	}
	return &UserManager{
		db:                      db,
		repomanager:             m,
		hasher:                  h,
		logger:                  logger.With("component", "user_manager"),
		metrics:                 rec,
		passwordPolicy:          DefaultPasswordPolicy(),
		requireUniqueEmail:      true,
		maxFailedAccessAttempts: cfg.MaxFailedAccessAttempts,
		lockoutTimeSpan:         cfg.DefaultLockoutTimeSpan,
		lockoutEnabledByDefault: cfg.UserLockoutEnabledByDefault,
		tokenSecret:             []byte(cfg.SecretKey),
		tokenLifespan:           cfg.UserTokenLifespan,
		now:                     time.Now,
	}
}

func (s *UserManager) store() users.Store {
	return s.repomanager.Users(s.db)
}

func invalid(err error) error {
	return fmt.Errorf("%w: %w", common.ErrorInvalidInput, err)
}

// duplicateFor names the field behind a unique violation.
func duplicateFor(err error) error {
	if pgerr.Constraint(err) == users.ConstraintUniqueEmail {
		return ErrDuplicateEmail
	}
	return ErrDuplicateUserName
}

// CreateUser validates user and password, hashes the password, assigns a
// fresh security stamp and inserts the row.
func (s *UserManager) CreateUser(ctx context.Context, user *models.User, password string) error {
	store := s.store()

	if err := validateUser(ctx, store, user, s.requireUniqueEmail); err != nil {
		if errors.Is(err, ErrInvalidUserName) || errors.Is(err, ErrDuplicateUserName) ||
			errors.Is(err, ErrInvalidEmail) || errors.Is(err, ErrDuplicateEmail) {
			return invalid(err)
		}
		return fmt.Errorf("validate user: %w", err)
	}
	if err := s.passwordPolicy.Validate(password); err != nil {
		return invalid(err)
	}

	hash, err := s.hasher.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	store.SetPasswordHash(user, hash)
	store.SetSecurityStamp(user, models.NewSecurityStamp())
	store.SetLockoutEnabled(user, s.lockoutEnabledByDefault)

	if err := store.Create(ctx, user); err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return invalid(duplicateFor(err))
		}
		return fmt.Errorf("create user: %w", err)
	}

	s.logger.Info(ctx, "user created", "user_id", user.ID, "user_name", user.UserName)
	return nil
}

func (s *UserManager) FindByID(ctx context.Context, id string) (*models.User, error) {
	return s.store().FindByID(ctx, id)
}

func (s *UserManager) FindByName(ctx context.Context, userName string) (*models.User, error) {
	return s.store().FindByName(ctx, userName)
}

func (s *UserManager) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.store().FindByEmail(ctx, email)
}

func (s *UserManager) Delete(ctx context.Context, user *models.User) error {
	if err := s.store().Delete(ctx, user); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

// CheckPassword verifies password against the stored hash. A match on a
// legacy hash rewrites the hash in the current format and persists it; a
// failure to persist is logged and does not fail the check.
func (s *UserManager) CheckPassword(ctx context.Context, user *models.User, password string) bool {
	store := s.store()
	if !store.HasPassword(user) {
		s.metrics.ObserveVerification(hasher.Failed.String())
		return false
	}

	result := s.hasher.VerifyHashedPassword(store.GetPasswordHash(user), password)
	s.metrics.ObserveVerification(result.String())

	switch result {
	case hasher.Success:
		return true
	case hasher.SuccessRehashNeeded:
		s.rehash(ctx, store, user, password)
		return true
	default:
		return false
	}
}

func (s *UserManager) rehash(ctx context.Context, store users.Store, user *models.User, password string) {
	hash, err := s.hasher.HashPassword(password)
	if err != nil {
		s.logger.Warn(ctx, "rehash failed", "user_id", user.ID, "error", err)
		return
	}
	store.SetPasswordHash(user, hash)
	if err := store.Update(ctx, user); err != nil {
		s.logger.Warn(ctx, "persisting rehashed password failed", "user_id", user.ID, "error", err)
		return
	}
	s.logger.Info(ctx, "password hash upgraded", "user_id", user.ID)
}

// PasswordSignIn checks lockout, verifies the password and maintains the
// failed attempt counter.
func (s *UserManager) PasswordSignIn(ctx context.Context, userName, password string) (SignInResult, error) {
	result, err := s.passwordSignIn(ctx, userName, password)
	if err == nil {
		s.metrics.ObserveSignIn(result.String())
	}
	return result, err
}

func (s *UserManager) passwordSignIn(ctx context.Context, userName, password string) (SignInResult, error) {
	store := s.store()

	user, err := store.FindByName(ctx, userName)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return SignInFailure, nil
		}
		return SignInFailure, fmt.Errorf("find user: %w", err)
	}

	if user.IsLockedOut(s.now()) {
		s.logger.Warn(ctx, "sign-in refused, user locked out", "user_id", user.ID)
		return SignInLockedOut, nil
	}

	if !s.CheckPassword(ctx, user, password) {
		return s.accessFailed(ctx, store, user)
	}

	if store.GetAccessFailedCount(user) > 0 || !store.GetLockoutEndDate(user).IsZero() {
		store.ResetAccessFailedCount(user)
		store.SetLockoutEndDate(user, time.Time{})
		if err := store.Update(ctx, user); err != nil {
			return SignInFailure, fmt.Errorf("reset access failed count: %w", err)
		}
	}

	if store.GetTwoFactorEnabled(user) {
		return SignInRequiresVerification, nil
	}
	return SignInSuccess, nil
}

func (s *UserManager) accessFailed(ctx context.Context, store users.Store, user *models.User) (SignInResult, error) {
	if !store.GetLockoutEnabled(user) {
		return SignInFailure, nil
	}

	result := SignInFailure
	if store.IncrementAccessFailedCount(user) >= s.maxFailedAccessAttempts {
		store.SetLockoutEndDate(user, s.now().Add(s.lockoutTimeSpan))
		store.ResetAccessFailedCount(user)
		result = SignInLockedOut
		s.logger.Warn(ctx, "user locked out", "user_id", user.ID, "until", store.GetLockoutEndDate(user))
	}

	if err := store.Update(ctx, user); err != nil {
		return SignInFailure, fmt.Errorf("record failed access: %w", err)
	}
	return result, nil
}

// ChangePassword replaces the password after checking the current one.
func (s *UserManager) ChangePassword(ctx context.Context, user *models.User, currentPassword, newPassword string) error {
	if !s.CheckPassword(ctx, user, currentPassword) {
		return invalid(ErrPasswordMismatch)
	}
	return s.setPassword(ctx, user, newPassword)
}

// ResetPassword replaces the password when token is a valid reset token for user.
func (s *UserManager) ResetPassword(ctx context.Context, user *models.User, token, newPassword string) error {
	if !s.VerifyUserToken(user, common.TokenPurposeResetPassword, token) {
		return common.ErrInvalidToken
	}
	return s.setPassword(ctx, user, newPassword)
}

func (s *UserManager) setPassword(ctx context.Context, user *models.User, password string) error {
	if err := s.passwordPolicy.Validate(password); err != nil {
		return invalid(err)
	}
	hash, err := s.hasher.HashPassword(password)
	if err != nil {
		return invalid(err)
	}

	store := s.store()
	store.SetPasswordHash(user, hash)
	store.SetSecurityStamp(user, models.NewSecurityStamp())
	if err := store.Update(ctx, user); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	s.logger.Info(ctx, "password changed", "user_id", user.ID)
	return nil
}

// UpdateSecurityStamp rotates the stamp, revoking outstanding user tokens.
func (s *UserManager) UpdateSecurityStamp(ctx context.Context, user *models.User) error {
	store := s.store()
	store.SetSecurityStamp(user, models.NewSecurityStamp())
	if err := store.Update(ctx, user); err != nil {
		return fmt.Errorf("update security stamp: %w", err)
	}
	return nil
}

// GenerateUserToken issues a token bound to purpose and the user's current stamp.
func (s *UserManager) GenerateUserToken(user *models.User, purpose string) (string, error) {
	return auth.GenerateToken(user.ID, purpose, user.SecurityStamp, s.tokenSecret, s.tokenLifespan)
}

// VerifyUserToken reports whether token was issued for user and purpose and
// the user's stamp has not changed since.
func (s *UserManager) VerifyUserToken(user *models.User, purpose, token string) bool {
	claims, err := auth.ParseToken(token, s.tokenSecret)
	if err != nil {
		return false
	}
	return claims.UserID == user.ID && claims.Purpose == purpose && claims.Stamp == user.SecurityStamp
}

func (s *UserManager) GeneratePasswordResetToken(user *models.User) (string, error) {
	return s.GenerateUserToken(user, common.TokenPurposeResetPassword)
}

func (s *UserManager) GenerateEmailConfirmationToken(user *models.User) (string, error) {
	return s.GenerateUserToken(user, common.TokenPurposeConfirmEmail)
}

// ConfirmEmail marks the email confirmed when token is valid.
func (s *UserManager) ConfirmEmail(ctx context.Context, user *models.User, token string) error {
	if !s.VerifyUserToken(user, common.TokenPurposeConfirmEmail, token) {
		return common.ErrInvalidToken
	}
	store := s.store()
	store.SetEmailConfirmed(user, true)
	if err := store.Update(ctx, user); err != nil {
		return fmt.Errorf("confirm email: %w", err)
	}
	return nil
}

func (s *UserManager) AddToRole(ctx context.Context, user *models.User, roleName string) error {
	if err := s.store().AddToRole(ctx, user, roleName); err != nil {
		return fmt.Errorf("add to role %q: %w", roleName, err)
	}
	return nil
}

func (s *UserManager) RemoveFromRole(ctx context.Context, user *models.User, roleName string) error {
	if err := s.store().RemoveFromRole(ctx, user, roleName); err != nil {
		return fmt.Errorf("remove from role %q: %w", roleName, err)
	}
	return nil
}

func (s *UserManager) IsInRole(ctx context.Context, user *models.User, roleName string) (bool, error) {
	return s.store().IsInRole(ctx, user, roleName)
}

func (s *UserManager) GetRoles(ctx context.Context, user *models.User) ([]string, error) {
	return s.store().GetRoles(ctx, user)
}
