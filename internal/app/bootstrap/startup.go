// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections
// and schema setup are complete, but before the HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if appCfg.AdminSecret != "" {
		logger.Info("admin bootstrap API is enabled at POST /api/system/admins")
	}
	if appCfg.GoogleClientID == "" {
		logger.Info("Google sign-in is disabled (no client credentials configured)")
	}
	return nil
}
