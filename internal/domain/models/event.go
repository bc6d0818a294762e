// internal/domain/models/event.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Event is a scheduled happening owned by one identity.
type Event struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UniqueID    string             `bson:"UniqueId" json:"unique_id"`
	EventID     int64              `bson:"EventId" json:"event_id"`
	OwnerUqID   string             `bson:"UqId" json:"owner_uqid"`
	OwnerRole   string             `bson:"Role" json:"owner_role"`
	Title       string             `bson:"Title" json:"title"`
	Location    string             `bson:"Location" json:"location"`
	Description string             `bson:"Description" json:"description"`
	StartDate   time.Time          `bson:"StartDate" json:"start_date"`
	EndDate     time.Time          `bson:"EndDate" json:"end_date"`
	Date        time.Time          `bson:"Date" json:"date"`
	MaxCapacity int                `bson:"MaxCapacity" json:"max_capacity"`
	Contents    []EventContentItem `bson:"Contents" json:"contents"`
}

// EventContentItem is media attached to an event. Type is derived from Text
// or the URL extension when the item is added.
type EventContentItem struct {
	Type        string    `bson:"Type" json:"type"`
	URL         string    `bson:"Url,omitempty" json:"url,omitempty"`
	Text        string    `bson:"Text,omitempty" json:"text,omitempty"`
	Description string    `bson:"Description,omitempty" json:"description,omitempty"`
	CreatedAt   time.Time `bson:"CreatedDate" json:"created_date"`
}
