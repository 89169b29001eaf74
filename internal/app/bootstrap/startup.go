// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/dalemusser/waffle/config"
	userstore "github.com/studypointin/studypoint/internal/app/store/users"
	"github.com/studypointin/studypoint/internal/domain/models"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if err := ensureAdmin(ctx, appCfg, deps, logger); err != nil {
		return err
	}
	return nil
}

// ensureAdmin creates the first admin account when admin_email and
// admin_password are configured and no user with that email exists yet.
// Without it a fresh deployment has no way into the back office.
func ensureAdmin(ctx context.Context, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if appCfg.AdminEmail == "" || appCfg.AdminPassword == "" {
		return nil
	}

	users := userstore.New(deps.MongoDatabase)

	_, err := users.GetByEmail(ctx, appCfg.AdminEmail)
	if err == nil {
		return nil
	}
	if !errors.Is(err, userstore.ErrNotFound) {
		return fmt.Errorf("look up admin user: %w", err)
	}

	_, err = users.Create(ctx, models.User{
		FullName: appCfg.AdminName,
		Email:    appCfg.AdminEmail,
		Role:     "admin",
	}, appCfg.AdminPassword)
	if err != nil {
		if errors.Is(err, userstore.ErrDuplicateEmail) {
			return nil
		}
		return fmt.Errorf("create admin user: %w", err)
	}

	logger.Info("created first admin user", zap.String("email", appCfg.AdminEmail))
	return nil
}
