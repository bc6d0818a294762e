// internal/app/store/memberships/membershipstore.go
package membershipstore

import (
	"context"
	"errors"

	"github.com/dalemusser/osprey/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const Collection = "Memberships"

// ErrDuplicateMembershipID is returned when the MembershipID unique index
// rejects an insert.
var ErrDuplicateMembershipID = errors.New("membership id already exists")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(Collection)}
}

func (s *Store) Insert(ctx context.Context, m *models.Membership) error {
	if _, err := s.c.InsertOne(ctx, m); err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateMembershipID
		}
		return err
	}
	return nil
}

// Get loads a membership by MembershipID. Returns mongo.ErrNoDocuments if
// absent.
func (s *Store) Get(ctx context.Context, membershipID int64) (*models.Membership, error) {
	var m models.Membership
	if err := s.c.FindOne(ctx, bson.M{"MembershipID": membershipID}).Decode(&m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *Store) List(ctx context.Context) ([]models.Membership, error) {
	opts := options.Find().SetSort(bson.D{{Key: "MembershipID", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Membership{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Replace overwrites the membership, keeping its _id, and reports whether
// it existed.
func (s *Store) Replace(ctx context.Context, membershipID int64, m *models.Membership) (bool, error) {
	cur, err := s.Get(ctx, membershipID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	m.ID = cur.ID
	m.MembershipID = membershipID
	res, err := s.c.ReplaceOne(ctx, bson.M{"MembershipID": membershipID}, m)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

func (s *Store) Delete(ctx context.Context, membershipID int64) (bool, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"MembershipID": membershipID})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}
