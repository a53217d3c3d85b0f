package services

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"github.com/dmitrijs2005/gophidentity/internal/common"
	"github.com/dmitrijs2005/gophidentity/internal/server/models"
	"github.com/dmitrijs2005/gophidentity/internal/server/repositories/users"
)

const allowedUserNameSymbols = "@._-+"

func validUserName(name string) bool {
	if strings.TrimSpace(name) == "" {
		return false
	}
	for _, r := range name {
		if r > 127 {
			return false
		}
		if ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') || ('0' <= r && r <= '9') {
			continue
		}
		if !strings.ContainsRune(allowedUserNameSymbols, r) {
			return false
		}
	}
	return true
}

// validateUser checks name and email rules. Uniqueness ignores the user's
// own row so it can be reused on update.
func validateUser(ctx context.Context, store users.Store, user *models.User, requireUniqueEmail bool) error {
	var errs []error

	if !validUserName(user.UserName) {
		errs = append(errs, ErrInvalidUserName)
	} else {
		owner, err := store.FindByName(ctx, user.UserName)
		switch {
		case err == nil && owner.ID != user.ID:
			errs = append(errs, ErrDuplicateUserName)
		case err != nil && !errors.Is(err, common.ErrorNotFound):
			return err
		}
	}

	if requireUniqueEmail {
		if _, err := mail.ParseAddress(user.Email); err != nil || user.Email == "" {
			errs = append(errs, ErrInvalidEmail)
		} else {
			owner, err := store.FindByEmail(ctx, user.Email)
			switch {
			case err == nil && owner.ID != user.ID:
				errs = append(errs, ErrDuplicateEmail)
			case err != nil && !errors.Is(err, common.ErrorNotFound):
				return err
			}
		}
	}

	return errors.Join(errs...)
}
