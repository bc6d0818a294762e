// internal/app/store/events/eventstore.go
package eventstore

import (
	"context"
	"errors"

	"github.com/dalemusser/osprey/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const Collection = "Events"

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(Collection)}
}

func (s *Store) Insert(ctx context.Context, e *models.Event) error {
	_, err := s.c.InsertOne(ctx, e)
	return err
}

// Get loads an event by its UniqueId. Returns mongo.ErrNoDocuments if absent.
func (s *Store) Get(ctx context.Context, uniqueID string) (*models.Event, error) {
	var e models.Event
	if err := s.c.FindOne(ctx, bson.M{"UniqueId": uniqueID}).Decode(&e); err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *Store) List(ctx context.Context) ([]models.Event, error) {
	return s.find(ctx, bson.M{})
}

// ListByOwner returns the owner's events, soonest first, matching the role
// tag with models.SameRole.
func (s *Store) ListByOwner(ctx context.Context, uqid, role string) ([]models.Event, error) {
	all, err := s.find(ctx, bson.M{"UqId": uqid})
	if err != nil {
		return nil, err
	}
	out := make([]models.Event, 0, len(all))
	for _, e := range all {
		if models.SameRole(e.OwnerRole, role) {
			out = append(out, e)
		}
	}
	return out, nil
}

// Replace overwrites the event with uniqueID, keeping its _id, and reports
// whether it existed.
func (s *Store) Replace(ctx context.Context, uniqueID string, e *models.Event) (bool, error) {
	cur, err := s.Get(ctx, uniqueID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	e.ID = cur.ID
	res, err := s.c.ReplaceOne(ctx, bson.M{"UniqueId": uniqueID}, e)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

// PushContent appends item to the event's media.
func (s *Store) PushContent(ctx context.Context, uniqueID string, item models.EventContentItem) (bool, error) {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"UniqueId": uniqueID},
		bson.M{"$push": bson.M{"Contents": item}},
	)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

// PullContentByURL removes every media item whose Url equals url.
func (s *Store) PullContentByURL(ctx context.Context, uniqueID, url string) (bool, error) {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"UniqueId": uniqueID},
		bson.M{"$pull": bson.M{"Contents": bson.M{"Url": url}}},
	)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

func (s *Store) Delete(ctx context.Context, uniqueID string) (bool, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"UniqueId": uniqueID})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

func (s *Store) find(ctx context.Context, filter bson.M) ([]models.Event, error) {
	opts := options.Find().SetSort(bson.D{{Key: "StartDate", Value: 1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Event{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
