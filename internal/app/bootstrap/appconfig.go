// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables (OSPREY_*), configuration
// files, or command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig
// covers ports, TLS, log level and CORS; everything Osprey needs beyond that
// lives here.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string
	MongoDatabase    string
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Bearer tokens issued at login
	JWTSecret string
	JWTIssuer string
	JWTTTL    time.Duration

	// Password hashing: "sha256" (stored format of existing records) or "bcrypt"
	PasswordHasher string
	BcryptCost     int

	// Profile picture and offer file storage
	PicturePath      string // local directory holding uploaded files
	PictureURLPrefix string // URL prefix the directory is served under; blank disables

	// Identity engine
	FanoutTimeout     time.Duration // bound on one cross-partition lookup
	ReserveIdentities bool          // claim usernames/emails in identity_reservations
	SweepInterval     time.Duration // how often orphaned reservations are released
	SweepGrace        time.Duration // minimum age of a reservation before it is checked

	// Login rate limiting
	LoginRateIP    int // attempts per IP per minute
	LoginRateEmail int // attempts per email per 5 minutes

	// Audit logging: "all", "db", "log" or "off"
	AuditLogAuth  string
	AuditLogAdmin string

	// RequireAuth restricts account writes to the signed-in owner and puts
	// the content and social routes behind a bearer token.
	RequireAuth bool
}
