// internal/domain/models/partnership.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Partnership is a brand offer. OfferDetails holds the blob key of the
// uploaded offer document.
type Partnership struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PartnershipID int64              `bson:"partnershipId" json:"partnership_id"`
	BrandName     string             `bson:"brandName" json:"brand_name"`
	Description   string             `bson:"description" json:"description"`
	OfferDetails  string             `bson:"offerDetails,omitempty" json:"offer_details,omitempty"`
	CreatedAt     time.Time          `bson:"createdAt" json:"created_at"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updated_at"`
}

// UserPartnership links an identity to a partnership it has taken up.
type UserPartnership struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserPartnershipID int64              `bson:"userPartnershipId" json:"user_partnership_id"`
	UserID            string             `bson:"userId" json:"user_id"`
	PartnershipID     string             `bson:"partnershipId" json:"partnership_id"`
	CreatedAt         time.Time          `bson:"createdAt" json:"created_at"`
}
