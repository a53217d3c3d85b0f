package models

import "github.com/google/uuid"

type Role struct {
	ID   string
	Name string
}

// NewRole returns a role with a fresh random ID.
func NewRole(name string) *Role {
	return &Role{ID: uuid.NewString(), Name: name}
}

// UserRole is a row of the user/role join table.
type UserRole struct {
	UserID string
	RoleID string
}

// RolePermission grants an opaque permission string to a role.
type RolePermission struct {
	RoleID     string
	Permission string
}

// UserSummary is the listing shape used by role membership screens.
type UserSummary struct {
	ID       string
	UserName string
	Email    string
}
