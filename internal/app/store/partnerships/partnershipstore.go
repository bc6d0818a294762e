// internal/app/store/partnerships/partnershipstore.go
package partnershipstore

import (
	"context"
	"time"

	"github.com/dalemusser/osprey/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const Collection = "Partnerships"

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(Collection)}
}

func (s *Store) Insert(ctx context.Context, p *models.Partnership) error {
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	_, err := s.c.InsertOne(ctx, p)
	return err
}

// Get loads a partnership by _id. Returns mongo.ErrNoDocuments if absent.
func (s *Store) Get(ctx context.Context, id primitive.ObjectID) (*models.Partnership, error) {
	var p models.Partnership
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) List(ctx context.Context) ([]models.Partnership, error) {
	opts := options.Find().SetSort(bson.D{{Key: "partnershipId", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Partnership{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Update holds the fields a partnership edit may change. An empty
// OfferDetails leaves the stored offer in place.
type Update struct {
	BrandName    string
	Description  string
	OfferDetails string
}

// Update applies upd and bumps updatedAt. It reports whether the
// partnership exists.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, upd Update) (bool, error) {
	set := bson.M{
		"brandName":   upd.BrandName,
		"description": upd.Description,
		"updatedAt":   time.Now().UTC(),
	}
	if upd.OfferDetails != "" {
		set["offerDetails"] = upd.OfferDetails
	}
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
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
