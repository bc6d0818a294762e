// internal/app/store/userpartnerships/userpartnershipstore.go
package userpartnershipstore

import (
	"context"
	"time"

	"github.com/dalemusser/osprey/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const Collection = "UserPartnerships"

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(Collection)}
}

func (s *Store) Insert(ctx context.Context, up *models.UserPartnership) error {
	if up.ID.IsZero() {
		up.ID = primitive.NewObjectID()
	}
	_, err := s.c.InsertOne(ctx, up)
	return err
}

// Get loads a link by _id. Returns mongo.ErrNoDocuments if absent.
func (s *Store) Get(ctx context.Context, id primitive.ObjectID) (*models.UserPartnership, error) {
	var up models.UserPartnership
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&up); err != nil {
		return nil, err
	}
	return &up, nil
}

func (s *Store) List(ctx context.Context) ([]models.UserPartnership, error) {
	opts := options.Find().SetSort(bson.D{{Key: "userPartnershipId", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.UserPartnership{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Update re-points the link and restamps createdAt. It reports whether the
// link exists.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, userID, partnershipID string) (bool, error) {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"userId":        userID,
		"partnershipId": partnershipID,
		"createdAt":     time.Now().UTC(),
	}})
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (bool, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}
