// internal/app/store/counters/counterstore.go
package counterstore

import (
	"context"
	"errors"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection holds one document per named sequence: {_id: name, seq: n}.
const Collection = "Counter"

// Counter names used outside the identity partitions. Partition counters
// come from models.Role.CounterName.
const (
	ContentID         = "ContentID"
	EventID           = "EventID"
	MembershipID      = "MembershipID"
	PartnershipID     = "PartnershipId"
	UserPartnershipID = "userPartnershipID"
)

// Sequencer hands out strictly increasing numbers per counter name.
type Sequencer interface {
	NextValue(ctx context.Context, name string) (int64, error)
}

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(Collection)}
}

type counterDoc struct {
	ID  string `bson:"_id"`
	Seq int64  `bson:"seq"`
}

// NextValue atomically increments the named counter and returns the new
// value. A counter that does not exist yet starts at 1.
//
// Two callers creating the same counter at once can both attempt the upsert
// insert; the loser gets a duplicate key error and repeats the increment,
// which then finds the document.
func (s *Store) NextValue(ctx context.Context, name string) (int64, error) {
	filter := bson.M{"_id": name}
	update := bson.M{"$inc": bson.M{"seq": int64(1)}}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	for {
		var doc counterDoc
		err := s.c.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
		if err == nil {
			return doc.Seq, nil
		}
		if !wafflemongo.IsDup(err) {
			return 0, err
		}
		if err := ctx.Err(); err != nil {
			return 0, err
		}
	}
}

// Current returns the last value handed out for name, or 0 when the counter
// has never been used.
func (s *Store) Current(ctx context.Context, name string) (int64, error) {
	var doc counterDoc
	err := s.c.FindOne(ctx, bson.M{"_id": name}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return doc.Seq, nil
}
