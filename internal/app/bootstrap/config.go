// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/osprey/internal/app/system/auditlog"
	"github.com/dalemusser/osprey/internal/app/system/passwords"
	"github.com/dalemusser/osprey/internal/app/system/timeouts"
	"github.com/dalemusser/osprey/internal/app/system/tokens"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for Osprey.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, jwt_secret, etc.
//   - Environment variables: OSPREY_MONGO_URI, OSPREY_JWT_SECRET, etc.
//   - Command-line flags: --mongo_uri, --jwt_secret, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "osprey", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	// Tokens
	{Name: "jwt_secret", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "HMAC secret for login tokens (at least 32 characters)"},
	{Name: "jwt_issuer", Default: "osprey", Desc: "Issuer claim on login tokens"},
	{Name: "jwt_ttl", Default: "168h", Desc: "Login token lifetime (e.g., 24h, 168h)"},

	// Passwords
	{Name: "password_hasher", Default: "sha256", Desc: "Password hasher: 'sha256' or 'bcrypt'"},
	{Name: "bcrypt_cost", Default: 0, Desc: "bcrypt cost (0 selects the library default)"},

	// File storage
	{Name: "picture_path", Default: "./uploads/pictures", Desc: "Local directory for profile pictures and offer files"},
	{Name: "picture_url_prefix", Default: "/files/pictures", Desc: "URL prefix for serving stored files (blank disables)"},

	// Identity engine
	{Name: "fanout_timeout", Default: "5s", Desc: "Bound on one cross-partition lookup"},
	{Name: "reserve_identities", Default: true, Desc: "Claim usernames and emails in the identity_reservations collection"},
	{Name: "reservation_sweep_interval", Default: "10m", Desc: "How often orphaned identity reservations are released"},
	{Name: "reservation_grace", Default: "15m", Desc: "Minimum age of a reservation before the sweep checks it"},

	// Login rate limiting
	{Name: "login_rate_ip", Default: 20, Desc: "Login attempts allowed per IP per minute"},
	{Name: "login_rate_email", Default: 5, Desc: "Login attempts allowed per email per 5 minutes"},

	// Audit logging settings
	{Name: "audit_log_auth", Default: "all", Desc: "Auth event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_admin", Default: "all", Desc: "Admin event logging: 'all' (db+log), 'db', 'log', or 'off'"},

	{Name: "require_auth", Default: false, Desc: "Require bearer tokens: owner-only account writes, signed-in access to content and social routes"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig reads .env and config files, WAFFLE_*
// and OSPREY_* environment variables and command-line flags, merged with
// precedence flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "OSPREY", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		JWTSecret: appValues.String("jwt_secret"),
		JWTIssuer: appValues.String("jwt_issuer"),
		JWTTTL:    appValues.Duration("jwt_ttl", 7*24*time.Hour),

		PasswordHasher: appValues.String("password_hasher"),
		BcryptCost:     appValues.Int("bcrypt_cost"),

		PicturePath:      appValues.String("picture_path"),
		PictureURLPrefix: strings.TrimRight(appValues.String("picture_url_prefix"), "/"),

		FanoutTimeout:     appValues.Duration("fanout_timeout", timeouts.DefaultFanout),
		ReserveIdentities: appValues.Bool("reserve_identities"),
		SweepInterval:     appValues.Duration("reservation_sweep_interval", 10*time.Minute),
		SweepGrace:        appValues.Duration("reservation_grace", 15*time.Minute),

		LoginRateIP:    appValues.Int("login_rate_ip"),
		LoginRateEmail: appValues.Int("login_rate_email"),

		AuditLogAuth:  appValues.String("audit_log_auth"),
		AuditLogAdmin: appValues.String("audit_log_admin"),

		RequireAuth: appValues.Bool("require_auth"),
	}

	return coreCfg, appCfg, nil
}

func validAuditDest(s string) bool {
	switch s {
	case auditlog.All, auditlog.DB, auditlog.Log, auditlog.Off, "":
		return true
	}
	return false
}

// ValidateConfig rejects configurations that would fail later at runtime:
// a malformed MongoDB URI, a short JWT secret, an unknown password hasher,
// non-positive rate limits or an unknown audit destination.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	if len(appCfg.JWTSecret) < tokens.MinSecretLength {
		return fmt.Errorf("jwt_secret must be at least %d characters", tokens.MinSecretLength)
	}
	if appCfg.JWTTTL < 0 {
		return fmt.Errorf("jwt_ttl must not be negative")
	}
	if _, err := passwords.NewHasher(appCfg.PasswordHasher, appCfg.BcryptCost); err != nil {
		return err
	}
	if strings.TrimSpace(appCfg.PicturePath) == "" {
		return fmt.Errorf("picture_path is required")
	}
	if appCfg.PictureURLPrefix != "" && !strings.HasPrefix(appCfg.PictureURLPrefix, "/") {
		return fmt.Errorf("picture_url_prefix must start with '/'")
	}
	if appCfg.LoginRateIP <= 0 || appCfg.LoginRateEmail <= 0 {
		return fmt.Errorf("login_rate_ip and login_rate_email must be positive")
	}
	if !validAuditDest(appCfg.AuditLogAuth) || !validAuditDest(appCfg.AuditLogAdmin) {
		return fmt.Errorf("audit_log_auth and audit_log_admin must be one of all, db, log, off")
	}
	if appCfg.FanoutTimeout <= 0 {
		return fmt.Errorf("fanout_timeout must be positive")
	}
	if appCfg.ReserveIdentities && (appCfg.SweepInterval <= 0 || appCfg.SweepGrace <= 0) {
		return fmt.Errorf("reservation_sweep_interval and reservation_grace must be positive")
	}
	return nil
}
