// internal/domain/models/membership.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Membership statuses.
const (
	MembershipActive  = "active"
	MembershipExpired = "expired"
)

// Membership is a subscription held by an identity.
type Membership struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	MembershipID   int64              `bson:"MembershipID" json:"membership_id"`
	UserID         string             `bson:"userId" json:"user_id"`
	MembershipType string             `bson:"membershipType" json:"membership_type"`
	StartDate      time.Time          `bson:"startDate" json:"start_date"`
	EndDate        time.Time          `bson:"endDate" json:"end_date"`
	Status         string             `bson:"status" json:"status"`
	CreatedAt      time.Time          `bson:"createdAt" json:"created_at"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updated_at"`
}
