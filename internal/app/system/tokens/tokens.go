// internal/app/system/tokens/tokens.go
package tokens

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/osprey/internal/app/system/apierr"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// DefaultTTL is how long an issued token stays valid.
const DefaultTTL = 7 * 24 * time.Hour

// MinSecretLength is the shortest HS256 secret accepted.
const MinSecretLength = 32

// ErrInvalid is returned by Parse for any token that fails verification.
var ErrInvalid = errors.New("invalid token")

// Subject is the identity a token is issued for.
type Subject struct {
	ID    string
	UqID  string
	Email string
	Role  string
}

// Claims is what a verified token carries.
type Claims struct {
	Subject
	ExpiresAt time.Time
}

type tokenClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Role  string `json:"role"`
	UqID  string `json:"uqid"`
}

// Issuer signs and verifies HS256 bearer tokens.
type Issuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
	Now    func() time.Time
}

// NewIssuer returns an Issuer. A zero ttl selects DefaultTTL.
func NewIssuer(secret, issuer string, ttl time.Duration) (*Issuer, error) {
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("jwt secret must be at least %d characters", MinSecretLength)
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Issuer{secret: []byte(secret), issuer: issuer, ttl: ttl, Now: time.Now}, nil
}

// Issue signs a token for s and returns it with its expiry.
func (i *Issuer) Issue(s Subject) (string, time.Time, error) {
	now := i.Now().UTC()
	exp := now.Add(i.ttl)
	claims := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.issuer,
			Subject:   s.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		Email: s.Email,
		Role:  s.Role,
		UqID:  s.UqID,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Parse verifies raw and returns its claims. Any failure yields ErrInvalid.
func (i *Issuer) Parse(raw string) (*Claims, error) {
	var parsed tokenClaims
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.Now),
	}
	if i.issuer != "" {
		opts = append(opts, jwt.WithIssuer(i.issuer))
	}
	_, err := jwt.ParseWithClaims(raw, &parsed, func(*jwt.Token) (any, error) {
		return i.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return &Claims{
		Subject: Subject{
			ID:    parsed.Subject,
			UqID:  parsed.UqID,
			Email: parsed.Email,
			Role:  parsed.Role,
		},
		ExpiresAt: parsed.ExpiresAt.Time.UTC(),
	}, nil
}

type ctxKey string

const claimsKey ctxKey = "claims"

// CurrentClaims returns the verified claims placed by LoadClaims.
func CurrentClaims(r *http.Request) (*Claims, bool) {
	c, ok := r.Context().Value(claimsKey).(*Claims)
	return c, ok
}

// WithClaims returns r carrying c. Handler tests use it to skip signing.
func WithClaims(r *http.Request, c *Claims) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), claimsKey, c))
}

// LoadClaims verifies an "Authorization: Bearer" token when one is present
// and places its claims in the request context. Requests without a valid
// token pass through unchanged.
func LoadClaims(i *Issuer, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearer(r)
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}
			c, err := i.Parse(raw)
			if err != nil {
				logger.Debug("bearer token rejected", zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, WithClaims(r, c))
		})
	}
}

// RequireClaims rejects requests that LoadClaims did not authenticate.
func RequireClaims(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentClaims(r); !ok {
			apierr.Write(w, apierr.New(apierr.Unauthorized, "authentication required"), nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearer(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}
