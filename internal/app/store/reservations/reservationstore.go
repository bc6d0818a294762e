// internal/app/store/reservations/reservationstore.go
package reservationstore

import (
	"context"
	"errors"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection holds one document per claimed username or email, across all
// partitions. Its _id is "<kind>:<value>", so the primary key index alone
// makes a claim atomic.
const Collection = "identity_reservations"

// Reservation kinds.
const (
	KindUsername = "username"
	KindEmail    = "email"
)

// ErrTaken is returned by Reserve when another identity holds the value.
var ErrTaken = errors.New("identity value already reserved")

type reservation struct {
	ID        string    `bson:"_id"`
	Kind      string    `bson:"kind"`
	Value     string    `bson:"value"`
	OwnerUqID string    `bson:"owner"`
	Role      string    `bson:"role"`
	CreatedAt time.Time `bson:"created_at"`
}

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(Collection)}
}

func key(kind, value string) string { return kind + ":" + value }

// Reserve claims value for owner. Reserving a value the same owner already
// holds succeeds.
func (s *Store) Reserve(ctx context.Context, kind, value, owner, role string) error {
	doc := reservation{
		ID:        key(kind, value),
		Kind:      kind,
		Value:     value,
		OwnerUqID: owner,
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}
	_, err := s.c.InsertOne(ctx, doc)
	if err == nil {
		return nil
	}
	if !wafflemongo.IsDup(err) {
		return err
	}

	var existing reservation
	if ferr := s.c.FindOne(ctx, bson.M{"_id": doc.ID}).Decode(&existing); ferr != nil {
		if errors.Is(ferr, mongo.ErrNoDocuments) {
			return ErrTaken
		}
		return ferr
	}
	if existing.OwnerUqID == owner {
		return nil
	}
	return ErrTaken
}

// Release drops the claim on value if owner holds it.
func (s *Store) Release(ctx context.Context, kind, value, owner string) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"_id": key(kind, value), "owner": owner})
	return err
}

// Owner returns the UqID holding value, or "" when it is free.
func (s *Store) Owner(ctx context.Context, kind, value string) (string, error) {
	var r reservation
	err := s.c.FindOne(ctx, bson.M{"_id": key(kind, value)}).Decode(&r)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return r.OwnerUqID, nil
}

// ReleaseOwner drops every claim held by owner.
func (s *Store) ReleaseOwner(ctx context.Context, owner string) error {
	_, err := s.c.DeleteMany(ctx, bson.M{"owner": owner})
	return err
}

// Claim is one reservation as listed by ClaimsBefore. Key is the
// document _id and, with CreatedAt, the paging cursor.
type Claim struct {
	Key       string
	Kind      string
	Value     string
	Owner     string
	Role      string
	CreatedAt time.Time
}

// ClaimsBefore lists up to limit reservations created before cutoff in
// (created_at, _id) order. A non-nil after resumes past that claim.
func (s *Store) ClaimsBefore(ctx context.Context, cutoff time.Time, after *Claim, limit int64) ([]Claim, error) {
	filter := bson.M{"created_at": bson.M{"$lt": cutoff}}
	if after != nil {
		filter = bson.M{"$and": bson.A{
			filter,
			bson.M{"$or": bson.A{
				bson.M{"created_at": bson.M{"$gt": after.CreatedAt}},
				bson.M{"created_at": after.CreatedAt, "_id": bson.M{"$gt": after.Key}},
			}},
		}}
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}).
		SetLimit(limit)
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rows []reservation
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	out := make([]Claim, len(rows))
	for i, r := range rows {
		out[i] = Claim{Key: r.ID, Kind: r.Kind, Value: r.Value, Owner: r.OwnerUqID, Role: r.Role, CreatedAt: r.CreatedAt}
	}
	return out, nil
}
