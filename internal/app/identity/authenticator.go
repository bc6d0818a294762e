// internal/app/identity/authenticator.go
package identity

import (
	"context"
	"time"

	"github.com/dalemusser/osprey/internal/app/system/apierr"
	"github.com/dalemusser/osprey/internal/app/system/fanout"
	"github.com/dalemusser/osprey/internal/app/system/normalize"
	"github.com/dalemusser/osprey/internal/app/system/passwords"
	"github.com/dalemusser/osprey/internal/domain/models"
	"go.uber.org/zap"
)

// Principal is the identity a successful login resolves to.
type Principal struct {
	ID       string      `json:"id"`
	UqID     string      `json:"uqid"`
	Username string      `json:"username"`
	Email    string      `json:"email"`
	Role     models.Role `json:"role"`
}

func principalOf(acct models.Account) Principal {
	b := acct.Base()
	return Principal{
		ID:       b.ID.Hex(),
		UqID:     b.UqID,
		Username: b.Username,
		Email:    b.Email,
		Role:     acct.AccountRole(),
	}
}

// Authenticator checks an email and password against every partition.
type Authenticator struct {
	Dir     *Directory
	Hasher  passwords.Hasher
	Timeout time.Duration
	Log     *zap.Logger
}

func NewAuthenticator(dir *Directory, hasher passwords.Hasher, timeout time.Duration, logger *zap.Logger) *Authenticator {
	return &Authenticator{Dir: dir, Hasher: hasher, Timeout: timeout, Log: logger}
}

// Authenticate queries all partitions by email concurrently, then takes the
// first partition in models.AuthOrder whose stored hash verifies. A wrong
// email or password is Unauthorized. An email present in more than one
// partition is logged as a consistency violation; the earlier partition in
// AuthOrder wins.
func (a *Authenticator) Authenticate(ctx context.Context, email, password string) (Principal, error) {
	email = normalize.Email(email)
	if email == "" || password == "" {
		return Principal{}, apierr.New(apierr.Unauthorized, "invalid email or password")
	}

	found, err := fanout.Gather(ctx, fanoutTimeout(a.Timeout), a.Dir.InOrder(models.AuthOrder),
		func(ctx context.Context, p Partition) (models.Account, error) {
			return p.FindByEmail(ctx, email)
		})
	if err != nil {
		return Principal{}, apierr.Storage(err)
	}

	var (
		holders []string
		match   models.Account
	)
	for _, acct := range found {
		if acct == nil {
			continue
		}
		holders = append(holders, acct.AccountRole().String())
		if match == nil && a.Hasher.Verify(password, acct.Base().PasswordHash) {
			match = acct
		}
	}
	if len(holders) > 1 && a.Log != nil {
		a.Log.Warn("email registered in more than one partition",
			zap.Strings("roles", holders))
	}
	if match == nil {
		return Principal{}, apierr.New(apierr.Unauthorized, "invalid email or password")
	}
	return principalOf(match), nil
}
