// internal/domain/models/content.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Content is a post owned by one identity. The owner is a weak reference
// (UqId plus Role); deleting the owner does not remove its content.
type Content struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UniqueID      string             `bson:"UniqueId" json:"unique_id"`
	ContentID     int64              `bson:"ContentId" json:"content_id"`
	Title         string             `bson:"Title" json:"title"`
	TypeOfContent string             `bson:"typeofcontent,omitempty" json:"type_of_content,omitempty"`
	URL           string             `bson:"url,omitempty" json:"url,omitempty"`
	Items         []ContentItem      `bson:"Items,omitempty" json:"items,omitempty"`
	OwnerUqID     string             `bson:"UqId" json:"owner_uqid"`
	OwnerRole     string             `bson:"Role" json:"owner_role"`
	CreatedAt     time.Time          `bson:"created_date" json:"created_date"`
}

// ContentItem is one piece of a mixed-content post.
type ContentItem struct {
	TypeOfContent string    `bson:"TypeOfContent" json:"type_of_content"`
	URL           string    `bson:"Url,omitempty" json:"url,omitempty"`
	Text          string    `bson:"Text,omitempty" json:"text,omitempty"`
	CreatedAt     time.Time `bson:"CreatedDate" json:"created_date"`
}
