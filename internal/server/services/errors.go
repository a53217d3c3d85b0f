package services

import "errors"

// Validation failures. CreateUser and friends return them joined and wrapped
// with common.ErrorInvalidInput, so both errors.Is checks work.
var (
	ErrInvalidUserName   = errors.New("user name is empty or contains invalid characters")
	ErrDuplicateUserName = errors.New("user name is already taken")
	ErrInvalidEmail      = errors.New("email is empty or malformed")
	ErrDuplicateEmail    = errors.New("email is already taken")
	ErrPasswordTooShort  = errors.New("password too short")
	ErrPasswordNoDigit   = errors.New("password must contain a digit")
	ErrPasswordNoLower   = errors.New("password must contain a lowercase letter")
	ErrPasswordNoUpper   = errors.New("password must contain an uppercase letter")
	ErrPasswordNoSymbol  = errors.New("password must contain a non letter or digit character")
	ErrPasswordMismatch  = errors.New("incorrect password")
	ErrInvalidRoleName   = errors.New("role name is empty")
	ErrDuplicateRoleName = errors.New("role name is already taken")
	ErrInvalidPermission = errors.New("permission is empty")
)
