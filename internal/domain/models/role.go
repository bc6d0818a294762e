// internal/domain/models/role.go
package models

import (
	"fmt"
	"strings"

	"github.com/dalemusser/waffle/pantry/text"
)

// Role names one of the four identity partitions. The string value is what
// gets stored in the "Role" field of partition records and in the owner tag
// of content and events.
type Role string

const (
	RoleUser          Role = "User"
	RoleSportsman     Role = "Sportsman"
	RoleEntertainer   Role = "Entertainer"
	RoleBusinessOwner Role = "BusinessOwner"
)

// Roles lists the partitions in declared order. Search results and profile
// lookups are reported in this order.
var Roles = []Role{RoleUser, RoleSportsman, RoleEntertainer, RoleBusinessOwner}

// AuthOrder is the order in which login checks the partitions. It differs from
// Roles: BusinessOwner is checked before Entertainer.
var AuthOrder = []Role{RoleUser, RoleSportsman, RoleBusinessOwner, RoleEntertainer}

// Collection returns the MongoDB collection holding this role's records.
func (r Role) Collection() string {
	switch r {
	case RoleUser:
		return "Users"
	case RoleSportsman:
		return "Sportsman"
	case RoleEntertainer:
		return "Entertainer"
	case RoleBusinessOwner:
		return "BusinessOwner"
	}
	return ""
}

// CounterName returns the sequence counter used for this role's numeric id.
func (r Role) CounterName() string {
	switch r {
	case RoleUser:
		return "UserID"
	case RoleSportsman:
		return "sportsmanID"
	case RoleEntertainer:
		return "EntertainerId"
	case RoleBusinessOwner:
		return "BusinessOwnerID"
	}
	return ""
}

// Valid reports whether r is one of the four partitions.
func (r Role) Valid() bool {
	return r.Collection() != ""
}

func (r Role) String() string { return string(r) }

// ParseRole maps a client-supplied role name to a Role. Matching is
// case-insensitive and accepts the plural forms older clients send.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "user", "users":
		return RoleUser, nil
	case "sportsman", "sportsmen":
		return RoleSportsman, nil
	case "entertainer", "entertainers":
		return RoleEntertainer, nil
	case "businessowner", "businessowners":
		return RoleBusinessOwner, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// SameRole compares two stored role tags the way owner lookups do:
// case-insensitively, after resolving plural aliases.
func SameRole(a, b string) bool {
	ra, errA := ParseRole(a)
	rb, errB := ParseRole(b)
	if errA != nil || errB != nil {
		return text.Fold(strings.TrimSpace(a)) == text.Fold(strings.TrimSpace(b))
	}
	return ra == rb
}
