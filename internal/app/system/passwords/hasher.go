// internal/app/system/passwords/hasher.go
package passwords

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Hasher turns plaintext passwords into stored digests and checks
// candidates against them.
type Hasher interface {
	Hash(plain string) (string, error)
	Verify(plain, stored string) bool
}

// Hasher names accepted by NewHasher.
const (
	NameSHA256 = "sha256"
	NameBcrypt = "bcrypt"
)

// NewHasher returns the hasher for name. bcryptCost is ignored for sha256;
// zero selects bcrypt.DefaultCost.
func NewHasher(name string, bcryptCost int) (Hasher, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", NameSHA256:
		return SHA256Hasher{}, nil
	case NameBcrypt:
		if bcryptCost == 0 {
			bcryptCost = bcrypt.DefaultCost
		}
		if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
			return nil, fmt.Errorf("bcrypt cost %d out of range [%d, %d]", bcryptCost, bcrypt.MinCost, bcrypt.MaxCost)
		}
		return BcryptHasher{Cost: bcryptCost}, nil
	}
	return nil, fmt.Errorf("unknown password hasher %q", name)
}

// SHA256Hasher stores the lowercase hex SHA-256 digest of the password.
// It is deterministic, which is what existing account records hold.
type SHA256Hasher struct{}

func (SHA256Hasher) Hash(plain string) (string, error) {
	sum := sha256.Sum256([]byte(plain))
	return hex.EncodeToString(sum[:]), nil
}

func (h SHA256Hasher) Verify(plain, stored string) bool {
	got, _ := h.Hash(plain)
	return subtle.ConstantTimeCompare([]byte(got), []byte(strings.ToLower(stored))) == 1
}

// BcryptHasher stores salted bcrypt hashes. Verify still accepts legacy
// SHA-256 digests so accounts created before a switch can sign in.
type BcryptHasher struct {
	Cost int
}

func (h BcryptHasher) Hash(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), h.Cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (h BcryptHasher) Verify(plain, stored string) bool {
	if !strings.HasPrefix(stored, "$2") {
		return SHA256Hasher{}.Verify(plain, stored)
	}
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(plain)) == nil
}
