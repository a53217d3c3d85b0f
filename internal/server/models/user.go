// Package models defines the identity entities persisted by the stores.
package models

import (
	"time"

	"github.com/google/uuid"
)

// User is an owned, mutable snapshot of a user row.
//
// Setter methods change only this value and mark it dirty; nothing reaches
// storage until the snapshot is passed to the store's Update (or Create),
// which clears the flag. Callers must flush a dirty user or lose the change.
//
// LockoutEnd uses the zero time.Time as the single "no lockout" value.
type User struct {
	ID                   string
	UserName             string
	Email                string
	EmailConfirmed       bool
	PasswordHash         string
	SecurityStamp        string
	PhoneNumber          string
	PhoneNumberConfirmed bool
	TwoFactorEnabled     bool
	LockoutEnd           time.Time
	LockoutEnabled       bool
	AccessFailedCount    int

	dirty bool
}

// NewUser returns a user with a fresh random ID.
func NewUser(userName string) *User {
	return &User{ID: uuid.NewString(), UserName: userName}
}

// Dirty reports whether the snapshot has changes not yet flushed to storage.
func (u *User) Dirty() bool { return u.dirty }

// MarkClean is called by the store after a successful write.
func (u *User) MarkClean() { u.dirty = false }

func (u *User) SetUserName(name string) {
	u.UserName = name
	u.dirty = true
}

func (u *User) SetEmail(email string) {
	u.Email = email
	u.dirty = true
}

func (u *User) SetEmailConfirmed(confirmed bool) {
	u.EmailConfirmed = confirmed
	u.dirty = true
}

func (u *User) SetPasswordHash(hash string) {
	u.PasswordHash = hash
	u.dirty = true
}

// HasPassword reports whether a password hash is present.
func (u *User) HasPassword() bool { return u.PasswordHash != "" }

func (u *User) SetSecurityStamp(stamp string) {
	u.SecurityStamp = stamp
	u.dirty = true
}

func (u *User) SetPhoneNumber(phone string) {
	u.PhoneNumber = phone
	u.dirty = true
}

func (u *User) SetPhoneNumberConfirmed(confirmed bool) {
	u.PhoneNumberConfirmed = confirmed
	u.dirty = true
}

func (u *User) SetTwoFactorEnabled(enabled bool) {
	u.TwoFactorEnabled = enabled
	u.dirty = true
}

// SetLockoutEnd sets the lockout end; the zero time clears the lockout.
// Non-zero values are normalized to UTC.
func (u *User) SetLockoutEnd(end time.Time) {
	if !end.IsZero() {
		end = end.UTC()
	}
	u.LockoutEnd = end
	u.dirty = true
}

func (u *User) SetLockoutEnabled(enabled bool) {
	u.LockoutEnabled = enabled
	u.dirty = true
}

// IncrementAccessFailedCount bumps the failed attempt counter and returns the new value.
func (u *User) IncrementAccessFailedCount() int {
	u.AccessFailedCount++
	u.dirty = true
	return u.AccessFailedCount
}

func (u *User) ResetAccessFailedCount() {
	u.AccessFailedCount = 0
	u.dirty = true
}

// IsLockedOut reports whether lockout is enabled and LockoutEnd lies after now.
func (u *User) IsLockedOut(now time.Time) bool {
	if !u.LockoutEnabled || u.LockoutEnd.IsZero() {
		return false
	}
	return u.LockoutEnd.After(now)
}
