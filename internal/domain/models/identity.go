// internal/domain/models/identity.go
package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Field names shared by every partition record. They are the bson keys used
// in filters and $set documents.
const (
	FieldID             = "_id"
	FieldUqID           = "UqId"
	FieldUsername       = "Username"
	FieldEmail          = "email"
	FieldPassword       = "password"
	FieldProfilePicture = "profilepic"
	FieldRole           = "Role"
	FieldCreatedAt      = "IDcreateddate"
)

// FieldSet is a partial record keyed by bson field name, used for $set updates.
type FieldSet map[string]any

// Identity holds the fields every partition record carries. It is inlined
// into User, Sportsman, Entertainer and BusinessOwner documents.
//
// UqID is the stable identifier shared with clients and used as the owner tag
// on content and events. It is distinct from the per-partition numeric id.
type Identity struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UqID           string             `bson:"UqId" json:"uqid"`
	Username       string             `bson:"Username" json:"username"`
	Email          string             `bson:"email" json:"email"`
	PasswordHash   string             `bson:"password" json:"-"`
	ProfilePicture string             `bson:"profilepic,omitempty" json:"profile_picture,omitempty"`
	Role           Role               `bson:"Role" json:"role"`
	CreatedAt      time.Time          `bson:"IDcreateddate" json:"created_at"`
}

// Stamp gives a record being constructed its immutable identifiers.
func (i *Identity) Stamp(role Role, now time.Time) {
	i.ID = primitive.NewObjectID()
	i.UqID = uuid.NewString()
	i.Role = role
	i.CreatedAt = now.UTC()
}

// editable returns the identity fields a profile update may overwrite.
func (i *Identity) editable() FieldSet {
	return FieldSet{
		FieldUsername: i.Username,
		FieldEmail:    i.Email,
	}
}

// Account is implemented by pointers to the four partition record types.
// It lets the identity engine treat records uniformly without reflection.
type Account interface {
	// Base returns the inlined identity fields.
	Base() *Identity
	// AccountRole is the partition this record type lives in.
	AccountRole() Role
	// Sequence is the per-partition numeric id (UserID, sportsmanID, ...).
	Sequence() int64
	SetSequence(n int64)
	// MissingFields lists required role-specific fields that are empty.
	MissingFields() []string
	// EditableFields is the $set document a profile update writes.
	EditableFields() FieldSet
	// Summary projects the public, role-specific view.
	Summary() Summary
}

// NewAccount returns an empty record for role, or nil for an unknown role.
func NewAccount(role Role) Account {
	switch role {
	case RoleUser:
		return &User{}
	case RoleSportsman:
		return &Sportsman{}
	case RoleEntertainer:
		return &Entertainer{}
	case RoleBusinessOwner:
		return &BusinessOwner{}
	}
	return nil
}

func missing(pairs ...string) []string {
	var out []string
	for i := 0; i+1 < len(pairs); i += 2 {
		if strings.TrimSpace(pairs[i+1]) == "" {
			out = append(out, pairs[i])
		}
	}
	return out
}
