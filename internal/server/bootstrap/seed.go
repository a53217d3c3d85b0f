// Package bootstrap seeds the administrator role and account on startup.
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophidentity/internal/common"
	"github.com/dmitrijs2005/gophidentity/internal/logging"
	"github.com/dmitrijs2005/gophidentity/internal/server/config"
	"github.com/dmitrijs2005/gophidentity/internal/server/models"
	"github.com/dmitrijs2005/gophidentity/internal/server/services"
)

type Seeder struct {
	users  *services.UserManager
	roles  *services.RoleManager
	cfg    *config.Config
	logger logging.Logger
}

func NewSeeder(um *services.UserManager, rm *services.RoleManager, cfg *config.Config, logger logging.Logger) *Seeder {
	return &Seeder{users: um, roles: rm, cfg: cfg, logger: logger.With("module", "bootstrap")}
}

// SeedAdmin makes sure the admin role and account exist and are linked.
// Existing rows are left alone, so it is safe to run on every start.
func (s *Seeder) SeedAdmin(ctx context.Context) error {
	roleName := s.cfg.AdminRoleName

	exists, err := s.roles.RoleExists(ctx, roleName)
	if err != nil {
		return fmt.Errorf("seed admin role: %w", err)
	}
	if !exists {
		if _, err := s.roles.Create(ctx, roleName); err != nil {
			return fmt.Errorf("seed admin role: %w", err)
		}
		s.logger.Info(ctx, "admin role created", "role", roleName)
	}

	admin, err := s.users.FindByEmail(ctx, s.cfg.AdminEmail)
	switch {
	case errors.Is(err, common.ErrorNotFound):
		admin = models.NewUser(s.cfg.AdminEmail)
		admin.SetEmail(s.cfg.AdminEmail)
		admin.SetEmailConfirmed(true)
		if err := s.users.CreateUser(ctx, admin, s.cfg.AdminPassword); err != nil {
			return fmt.Errorf("seed admin user: %w", err)
		}
		s.logger.Info(ctx, "admin user created", "user_id", admin.ID)
	case err != nil:
		return fmt.Errorf("seed admin user: %w", err)
	}

	in, err := s.users.IsInRole(ctx, admin, roleName)
	if err != nil {
		return fmt.Errorf("seed admin membership: %w", err)
	}
	if !in {
		if err := s.users.AddToRole(ctx, admin, roleName); err != nil {
			return fmt.Errorf("seed admin membership: %w", err)
		}
	}
	return nil
}
