package roles

import (
	"context"

	"github.com/dmitrijs2005/gophidentity/internal/server/models"
)

type RoleStore interface {
	Create(ctx context.Context, role *models.Role) error
	Update(ctx context.Context, role *models.Role) error
	Delete(ctx context.Context, role *models.Role) error
	FindByID(ctx context.Context, id string) (*models.Role, error)
	FindByName(ctx context.Context, name string) (*models.Role, error)
}

// ListOptions filters and pages role listings. Search matches a case-insensitive
// substring of the name; Limit <= 0 means no limit.
type ListOptions struct {
	Search string
	Limit  int
	Offset int
}

type RoleQuery interface {
	List(ctx context.Context, opts ListOptions) ([]models.Role, error)
	Count(ctx context.Context, search string) (int, error)
}

type MembershipQuery interface {
	UsersInRole(ctx context.Context, roleID string) ([]models.UserSummary, error)
	UsersNotInRole(ctx context.Context, roleID string) ([]models.UserSummary, error)
}

type PermissionStore interface {
	EnsureSchema(ctx context.Context) error
	GetPermissions(ctx context.Context, roleID string) ([]string, error)
	AddPermission(ctx context.Context, roleID, permission string) error
	RemovePermissions(ctx context.Context, roleID string, permissions []string) error
}

type Store interface {
	RoleStore
	RoleQuery
	MembershipQuery
	PermissionStore
}
