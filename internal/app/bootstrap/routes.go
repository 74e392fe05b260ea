// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	assignmentsfeature "github.com/staffhub/staffhub/internal/app/features/assignments"
	authfeature "github.com/staffhub/staffhub/internal/app/features/auth"
	healthfeature "github.com/staffhub/staffhub/internal/app/features/health"
	projectsfeature "github.com/staffhub/staffhub/internal/app/features/projects"
	usersfeature "github.com/staffhub/staffhub/internal/app/features/users"
	assignmentstore "github.com/staffhub/staffhub/internal/app/store/assignments"
	projectstore "github.com/staffhub/staffhub/internal/app/store/projects"
	userstore "github.com/staffhub/staffhub/internal/app/store/users"
	"github.com/staffhub/staffhub/internal/app/system/auth"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup,
// and any Startup hooks have completed. StaffHub builds the stores, the
// token manager, and mounts one feature router per API area. The token
// middleware runs on every request: it loads the bearer identity when a
// valid token is present and passes anonymous requests through, leaving
// access decisions to each feature's own route guards.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	tokens, err := auth.NewTokenManager(appCfg.JWTSecret, appCfg.TokenTTL, logger)
	if err != nil {
		logger.Error("token manager init failed", zap.Error(err))
		return nil, err
	}

	users := userstore.New(deps.MongoDatabase)
	projects := projectstore.New(deps.MongoDatabase)
	assignments := assignmentstore.New(deps.MongoDatabase)

	r := chi.NewRouter()
	r.Use(tokens.LoadTokenUser)

	r.Mount("/health", healthfeature.Routes(healthfeature.NewHandler(deps.MongoClient, logger)))
	r.Mount("/auth", authfeature.Routes(authfeature.NewHandler(users, tokens, logger)))
	r.Mount("/users", usersfeature.Routes(usersfeature.NewHandler(users, logger)))
	r.Mount("/projects", projectsfeature.Routes(projectsfeature.NewHandler(projects, logger)))
	r.Mount("/assignments", assignmentsfeature.Routes(assignmentsfeature.NewHandler(assignments, logger)))

	return r, nil
}
