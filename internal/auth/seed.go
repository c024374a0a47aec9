package auth

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/stringmaster/stringmaster-backend/internal/users"
	"github.com/stringmaster/stringmaster-backend/pkg/config"
	"github.com/stringmaster/stringmaster-backend/pkg/enums"
	pkgerrors "github.com/stringmaster/stringmaster-backend/pkg/errors"
	"github.com/stringmaster/stringmaster-backend/pkg/logger"
	"github.com/stringmaster/stringmaster-backend/pkg/security"
)

// EnsureAdmin creates the bootstrap admin account when seed credentials are
// configured and no account with that email exists yet.
func EnsureAdmin(ctx context.Context, repo *users.Repository, cfg config.SeedConfig, passwordCfg config.PasswordConfig, logg *logger.Logger) error {
	email := strings.ToLower(strings.TrimSpace(cfg.AdminEmail))
	if email == "" || cfg.AdminPassword == "" {
		return nil
	}

	if _, err := repo.FindByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check admin email")
	}

	passwordHash, err := security.HashPassword(cfg.AdminPassword, passwordCfg)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash admin password")
	}

	if _, err := repo.Create(ctx, users.CreateUserDTO{
		Email:        email,
		PasswordHash: passwordHash,
		Name:         cfg.AdminName,
		Role:         enums.UserRoleAdmin,
	}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create admin user")
	}

	if logg != nil {
		logg.Info(logg.WithField(ctx, "email", email), "seeded admin account")
	}
	return nil
}
