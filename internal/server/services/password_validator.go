package services

import (
	"errors"
	"unicode"
	"unicode/utf8"
)

// PasswordPolicy describes the character classes a new password must contain.
type PasswordPolicy struct {
	RequiredLength          int
	RequireDigit            bool
	RequireLowercase        bool
	RequireUppercase        bool
	RequireNonLetterOrDigit bool
}

// DefaultPasswordPolicy requires six characters from all four classes.
func DefaultPasswordPolicy() PasswordPolicy {
	return PasswordPolicy{
		RequiredLength:          6,
		RequireDigit:            true,
		RequireLowercase:        true,
		RequireUppercase:        true,
		RequireNonLetterOrDigit: true,
	}
}

// Validate returns every rule the password breaks, joined, or nil.
func (p PasswordPolicy) Validate(password string) error {
	var errs []error

	if utf8.RuneCountInString(password) < p.RequiredLength {
		errs = append(errs, ErrPasswordTooShort)
	}

	var digit, lower, upper, symbol bool
	for _, r := range password {
		switch {
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case !unicode.IsLetter(r):
			symbol = true
		}
	}

	if p.RequireDigit && !digit {
		errs = append(errs, ErrPasswordNoDigit)
	}
	if p.RequireLowercase && !lower {
		errs = append(errs, ErrPasswordNoLower)
	}
	if p.RequireUppercase && !upper {
		errs = append(errs, ErrPasswordNoUpper)
	}
	if p.RequireNonLetterOrDigit && !symbol {
		errs = append(errs, ErrPasswordNoSymbol)
	}

	return errors.Join(errs...)
}
