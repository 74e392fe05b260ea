// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/waffle/config"
	userstore "github.com/staffhub/staffhub/internal/app/store/users"
	"github.com/staffhub/staffhub/internal/app/system/timeouts"
	"github.com/staffhub/staffhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections
// and schema setup are complete, but before the HTTP handler is built.
//
// StaffHub uses it to promote the configured bootstrap manager, so a
// fresh deployment has an account that can create projects and
// assignments.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if appCfg.BootstrapManagerEmail == "" {
		return nil
	}
	return promoteManager(ctx, deps, appCfg.BootstrapManagerEmail, logger)
}

// promoteManager looks up the user with the given email and sets their
// role to manager. The user must already exist (registration is open); a
// missing account is logged, not fatal, since it may simply register
// later.
func promoteManager(ctx context.Context, deps DBDeps, email string, logger *zap.Logger) error {
	opCtx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	users := userstore.New(deps.MongoDatabase)
	u, err := users.GetByEmail(opCtx, email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			logger.Warn("bootstrap manager not found; register the account and restart to promote it",
				zap.String("email", email))
			return nil
		}
		return err
	}

	if u.Role == models.RoleManager {
		return nil
	}

	_, err = deps.MongoDatabase.Collection("users").UpdateOne(opCtx,
		bson.M{"_id": u.ID},
		bson.M{"$set": bson.M{"role": models.RoleManager, "updated_at": time.Now().UTC()}})
	if err != nil {
		return err
	}

	logger.Info("promoted bootstrap manager",
		zap.String("email", email),
		zap.String("user_id", u.ID.Hex()))
	return nil
}
