package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gophidentity/internal/common"
	"github.com/dmitrijs2005/gophidentity/internal/dbx"
	"github.com/dmitrijs2005/gophidentity/internal/logging"
	"github.com/dmitrijs2005/gophidentity/internal/server/models"
	"github.com/dmitrijs2005/gophidentity/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophidentity/internal/server/repositories/roles"
)

// RolePage is one page of a role listing plus the total match count.
type RolePage struct {
	Roles []models.Role
	Total int
}

// RoleManager runs role administration. Bulk operations run in one transaction.
type RoleManager struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func NewRoleManager(db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger) *RoleManager {
	return &RoleManager{db: db, repomanager: m, logger: logger.With("component", "role_manager")}
}

func (s *RoleManager) store() roles.Store {
	return s.repomanager.Roles(s.db)
}

// Create adds a role after checking the name is free.
func (s *RoleManager) Create(ctx context.Context, name string) (*models.Role, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid(ErrInvalidRoleName)
	}

	exists, err := s.RoleExists(ctx, name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, invalid(ErrDuplicateRoleName)
	}

	role := models.NewRole(name)
	if err := s.store().Create(ctx, role); err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, invalid(ErrDuplicateRoleName)
		}
		return nil, fmt.Errorf("create role: %w", err)
	}

	s.logger.Info(ctx, "role created", "role_id", role.ID, "name", role.Name)
	return role, nil
}

func (s *RoleManager) Update(ctx context.Context, role *models.Role) error {
	if strings.TrimSpace(role.Name) == "" {
		return invalid(ErrInvalidRoleName)
	}
	if err := s.store().Update(ctx, role); err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return invalid(ErrDuplicateRoleName)
		}
		return fmt.Errorf("update role: %w", err)
	}
	return nil
}

func (s *RoleManager) Delete(ctx context.Context, role *models.Role) error {
	if err := s.store().Delete(ctx, role); err != nil {
		return fmt.Errorf("delete role: %w", err)
	}
	return nil
}

// BulkDelete removes the listed roles; ids that do not resolve are skipped.
// Returns the number of roles deleted.
func (s *RoleManager) BulkDelete(ctx context.Context, ids []string) (int, error) {
	deleted := 0
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		deleted = 0
		store := s.repomanager.Roles(tx)
		for _, id := range ids {
			role, err := store.FindByID(ctx, id)
			if errors.Is(err, common.ErrorNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			if err := store.Delete(ctx, role); err != nil {
				return err
			}
			deleted++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("bulk delete roles: %w", err)
	}
	s.logger.Info(ctx, "roles deleted", "count", deleted)
	return deleted, nil
}

func (s *RoleManager) RoleExists(ctx context.Context, name string) (bool, error) {
	_, err := s.store().FindByName(ctx, name)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, common.ErrorNotFound):
		return false, nil
	default:
		return false, fmt.Errorf("find role: %w", err)
	}
}

func (s *RoleManager) FindByID(ctx context.Context, id string) (*models.Role, error) {
	return s.store().FindByID(ctx, id)
}

func (s *RoleManager) FindByName(ctx context.Context, name string) (*models.Role, error) {
	return s.store().FindByName(ctx, name)
}

func (s *RoleManager) List(ctx context.Context, opts roles.ListOptions) (*RolePage, error) {
	store := s.store()
	list, err := store.List(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	total, err := store.Count(ctx, opts.Search)
	if err != nil {
		return nil, fmt.Errorf("count roles: %w", err)
	}
	return &RolePage{Roles: list, Total: total}, nil
}

func (s *RoleManager) UsersInRole(ctx context.Context, roleID string) ([]models.UserSummary, error) {
	return s.store().UsersInRole(ctx, roleID)
}

func (s *RoleManager) UsersNotInRole(ctx context.Context, roleID string) ([]models.UserSummary, error) {
	return s.store().UsersNotInRole(ctx, roleID)
}

// AddUsers puts every listed user into the role in one transaction.
// Unknown user ids are skipped. Returns the links that were written.
func (s *RoleManager) AddUsers(ctx context.Context, roleName string, userIDs []string) ([]models.UserRole, error) {
	return s.changeMembership(ctx, roleName, userIDs, true)
}

// RemoveUsers takes every listed user out of the role in one transaction.
func (s *RoleManager) RemoveUsers(ctx context.Context, roleName string, userIDs []string) ([]models.UserRole, error) {
	return s.changeMembership(ctx, roleName, userIDs, false)
}

func (s *RoleManager) changeMembership(ctx context.Context, roleName string, userIDs []string, add bool) ([]models.UserRole, error) {
	var links []models.UserRole
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		links = links[:0]
		role, err := s.repomanager.Roles(tx).FindByName(ctx, roleName)
		if err != nil {
			return err
		}
		store := s.repomanager.Users(tx)
		for _, id := range userIDs {
			user, err := store.FindByID(ctx, id)
			if errors.Is(err, common.ErrorNotFound) {
				s.logger.Debug(ctx, "skipping unknown user", "user_id", id)
				continue
			}
			if err != nil {
				return err
			}
			if add {
				err = store.AddToRole(ctx, user, roleName)
			} else {
				err = store.RemoveFromRole(ctx, user, roleName)
			}
			if err != nil {
				return err
			}
			links = append(links, models.UserRole{UserID: user.ID, RoleID: role.ID})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("change membership of %q: %w", roleName, err)
	}
	s.logger.Info(ctx, "role membership changed", "role", roleName, "added", add, "count", len(links))
	return links, nil
}

func (s *RoleManager) GetPermissions(ctx context.Context, roleID string) ([]string, error) {
	return s.store().GetPermissions(ctx, roleID)
}

func (s *RoleManager) AddPermission(ctx context.Context, roleID, permission string) error {
	permission = strings.TrimSpace(permission)
	if permission == "" {
		return invalid(ErrInvalidPermission)
	}
	if err := s.store().AddPermission(ctx, roleID, permission); err != nil {
		return fmt.Errorf("add permission: %w", err)
	}
	return nil
}

func (s *RoleManager) RemovePermissions(ctx context.Context, roleID string, permissions []string) error {
	if err := s.store().RemovePermissions(ctx, roleID, permissions); err != nil {
		return fmt.Errorf("remove permissions: %w", err)
	}
	return nil
}
