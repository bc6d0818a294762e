// internal/app/store/contents/contentstore.go
package contentstore

import (
	"context"

	"github.com/dalemusser/osprey/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const Collection = "Content"

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(Collection)}
}

func (s *Store) Insert(ctx context.Context, c *models.Content) error {
	_, err := s.c.InsertOne(ctx, c)
	return err
}

// Get loads content by its UniqueId. Returns mongo.ErrNoDocuments if absent.
func (s *Store) Get(ctx context.Context, uniqueID string) (*models.Content, error) {
	var c models.Content
	if err := s.c.FindOne(ctx, bson.M{"UniqueId": uniqueID}).Decode(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Store) List(ctx context.Context) ([]models.Content, error) {
	return s.find(ctx, bson.M{})
}

// ListByOwner returns the owner's content, newest first. The stored role tag
// is compared with models.SameRole, so casing and plural spellings written
// by older clients still match.
func (s *Store) ListByOwner(ctx context.Context, uqid, role string) ([]models.Content, error) {
	all, err := s.find(ctx, bson.M{"UqId": uqid})
	if err != nil {
		return nil, err
	}
	out := make([]models.Content, 0, len(all))
	for _, c := range all {
		if models.SameRole(c.OwnerRole, role) {
			out = append(out, c)
		}
	}
	return out, nil
}

// Delete removes content by UniqueId and reports whether it existed.
func (s *Store) Delete(ctx context.Context, uniqueID string) (bool, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"UniqueId": uniqueID})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

func (s *Store) find(ctx context.Context, filter bson.M) ([]models.Content, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_date", Value: -1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Content{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
