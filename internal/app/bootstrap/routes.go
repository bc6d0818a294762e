// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	accountsfeature "github.com/dalemusser/osprey/internal/app/features/accounts"
	auditfeature "github.com/dalemusser/osprey/internal/app/features/auditlog"
	contentfeature "github.com/dalemusser/osprey/internal/app/features/content"
	eventfeature "github.com/dalemusser/osprey/internal/app/features/event"
	functionfeature "github.com/dalemusser/osprey/internal/app/features/function"
	healthfeature "github.com/dalemusser/osprey/internal/app/features/health"
	loginfeature "github.com/dalemusser/osprey/internal/app/features/login"
	membershipfeature "github.com/dalemusser/osprey/internal/app/features/membership"
	messagefeature "github.com/dalemusser/osprey/internal/app/features/message"
	notificationfeature "github.com/dalemusser/osprey/internal/app/features/notification"
	partnershipfeature "github.com/dalemusser/osprey/internal/app/features/partnership"
	userpartnershipfeature "github.com/dalemusser/osprey/internal/app/features/userpartnership"
	"github.com/dalemusser/osprey/internal/app/system/tokens"
	"github.com/dalemusser/osprey/internal/domain/models"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// accountMounts maps each partition to the path its account API is served
// under. The paths predate this service and are kept for existing clients.
var accountMounts = []struct {
	Role models.Role
	Path string
}{
	{models.RoleUser, "/api/users"},
	{models.RoleSportsman, "/api/sportsman"},
	{models.RoleEntertainer, "/api/entertainer"},
	{models.RoleBusinessOwner, "/api/businessowners"},
}

// BuildHandler constructs the root HTTP handler for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup and
// Startup have completed. Every request passes through tokens.LoadClaims,
// so handlers can read the caller from tokens.CurrentClaims(r).
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	svc, err := BuildServices(appCfg, deps, logger)
	if err != nil {
		logger.Error("build services failed", zap.Error(err))
		return nil, err
	}
	return buildRouter(appCfg, deps, svc, logger), nil
}

func buildRouter(appCfg AppConfig, deps DBDeps, svc *Services, logger *zap.Logger) chi.Router {
	db := deps.MongoDatabase

	r := chi.NewRouter()
	r.Use(tokens.LoadClaims(svc.Tokens, logger))

	healthHandler := healthfeature.NewHandler(deps.MongoClient, deps.Files.Dir(), logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Stored pictures and offer files
	if appCfg.PictureURLPrefix != "" {
		r.Handle(appCfg.PictureURLPrefix+"/*", fileserver.Handler(appCfg.PictureURLPrefix, deps.Files.Dir()))
	}

	// Identity: one account API per partition, login, search and profiles
	for _, m := range accountMounts {
		h := accountsfeature.NewHandler(m.Role, svc.Registrar, svc.Accounts, svc.AuditLog, appCfg.RequireAuth, logger)
		r.Mount(m.Path, accountsfeature.Routes(h))
	}

	loginHandler := loginfeature.NewHandler(svc.Authenticator, svc.Tokens, deps.LoginLimiter, svc.AuditLog, logger)
	r.Mount("/api/login", loginfeature.Routes(loginHandler))

	functionHandler := functionfeature.NewHandler(svc.Resolver, logger)
	r.Mount("/api/function", functionfeature.Routes(functionHandler))

	auditHandler := auditfeature.NewHandler(db, logger)
	r.Mount("/api/audit", auditfeature.Routes(auditHandler))

	// Content and social features
	r.Group(func(r chi.Router) {
		if appCfg.RequireAuth {
			r.Use(tokens.RequireClaims)
		}

		r.Mount("/api/content", contentfeature.Routes(contentfeature.NewHandler(db, svc.Counters, logger)))
		r.Mount("/api/event", eventfeature.Routes(eventfeature.NewHandler(db, svc.Counters, logger)))
		r.Mount("/api/membership", membershipfeature.Routes(membershipfeature.NewHandler(db, svc.Counters, logger)))
		r.Mount("/api/message", messagefeature.Routes(messagefeature.NewHandler(db, logger)))
		r.Mount("/api/notification", notificationfeature.Routes(notificationfeature.NewHandler(db, logger)))
		r.Mount("/api/partnership", partnershipfeature.Routes(partnershipfeature.NewHandler(db, svc.Counters, deps.Files, logger)))
		r.Mount("/api/userpartnership", userpartnershipfeature.Routes(userpartnershipfeature.NewHandler(db, svc.Counters, logger)))
	})

	return r
}
