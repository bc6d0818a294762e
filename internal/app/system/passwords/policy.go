// internal/app/system/passwords/policy.go
package passwords

import (
	"errors"
	"strings"
)

// Symbols are the non-alphanumeric characters a password may contain; at
// least one is required.
const Symbols = "@$!%*?&"

// MinLength is the shortest acceptable password.
const MinLength = 8

// ErrWeak is returned by CheckPolicy for any password that does not meet
// the policy.
var ErrWeak = errors.New("password must be at least 8 characters and include an uppercase letter, a lowercase letter, a digit and one of @$!%*?&")

// CheckPolicy validates a plaintext password: at least MinLength characters
// drawn only from ASCII letters, digits and Symbols, with at least one of
// each class.
func CheckPolicy(plain string) error {
	if len(plain) < MinLength {
		return ErrWeak
	}
	var upper, lower, digit, symbol bool
	for _, c := range plain {
		switch {
		case c >= 'A' && c <= 'Z':
			upper = true
		case c >= 'a' && c <= 'z':
			lower = true
		case c >= '0' && c <= '9':
			digit = true
		case strings.ContainsRune(Symbols, c):
			symbol = true
		default:
			return ErrWeak
		}
	}
	if !upper || !lower || !digit || !symbol {
		return ErrWeak
	}
	return nil
}
