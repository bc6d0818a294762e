// internal/app/store/partitions/partitionstore.go
package partitionstore

import (
	"context"
	"errors"
	"regexp"

	"github.com/dalemusser/osprey/internal/app/system/normalize"
	"github.com/dalemusser/osprey/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrDuplicate is returned when an insert or update collides with the
// unique UqId, Username or email index of the partition.
var ErrDuplicate = errors.New("uqid, username or email already exists in this partition")

// Record constrains P to a pointer to T that implements models.Account.
type Record[T any] interface {
	*T
	models.Account
}

// Store is the persistence for one identity partition. Lookups return
// (nil, nil) when nothing matches.
type Store[T any, P Record[T]] struct {
	c    *mongo.Collection
	role models.Role
}

// New returns the store for the partition T belongs to.
func New[T any, P Record[T]](db *mongo.Database) *Store[T, P] {
	role := P(new(T)).AccountRole()
	return &Store[T, P]{c: db.Collection(role.Collection()), role: role}
}

// Role is the partition this store serves.
func (s *Store[T, P]) Role() models.Role { return s.role }

func (s *Store[T, P]) findOne(ctx context.Context, filter bson.M) (P, error) {
	var v T
	err := s.c.FindOne(ctx, filter).Decode(&v)
	if errors.Is(err, mongo.ErrNoDocuments) {
		var zero P
		return zero, nil
	}
	if err != nil {
		var zero P
		return zero, err
	}
	return P(&v), nil
}

func (s *Store[T, P]) find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]P, error) {
	cur, err := s.c.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []P
	for cur.Next(ctx) {
		var v T
		if err := cur.Decode(&v); err != nil {
			return nil, err
		}
		out = append(out, P(&v))
	}
	return out, cur.Err()
}

func (s *Store[T, P]) FindByUniqueID(ctx context.Context, uqid string) (P, error) {
	return s.findOne(ctx, bson.M{models.FieldUqID: uqid})
}

func (s *Store[T, P]) FindByUsername(ctx context.Context, username string) (P, error) {
	return s.findOne(ctx, bson.M{models.FieldUsername: username})
}

func (s *Store[T, P]) FindByEmail(ctx context.Context, email string) (P, error) {
	return s.findOne(ctx, bson.M{models.FieldEmail: email})
}

// Search returns records whose username equals query (exact) or starts with
// it. Matching is case-sensitive; query is quoted so regex metacharacters
// match literally.
func (s *Store[T, P]) Search(ctx context.Context, query string, exact bool) ([]P, error) {
	var filter bson.M
	if exact {
		filter = bson.M{models.FieldUsername: query}
	} else {
		filter = bson.M{models.FieldUsername: primitive.Regex{Pattern: "^" + regexp.QuoteMeta(query)}}
	}
	return s.find(ctx, filter, options.Find().SetSort(bson.D{{Key: models.FieldUsername, Value: 1}}))
}

// List returns every record in the partition, oldest first.
func (s *Store[T, P]) List(ctx context.Context) ([]P, error) {
	return s.find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: models.FieldCreatedAt, Value: 1}}))
}

// Insert writes a fully populated record.
func (s *Store[T, P]) Insert(ctx context.Context, rec P) error {
	if _, err := s.c.InsertOne(ctx, rec); err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// UpdateFields applies a $set to the record with uqid and reports whether
// one matched. Identifier fields in fields are ignored.
func (s *Store[T, P]) UpdateFields(ctx context.Context, uqid string, fields models.FieldSet) (bool, error) {
	set := bson.M{}
	for k, v := range fields {
		switch k {
		case models.FieldID, models.FieldUqID, models.FieldRole, models.FieldCreatedAt:
			continue
		}
		set[k] = v
	}
	if len(set) == 0 {
		n, err := s.c.CountDocuments(ctx, bson.M{models.FieldUqID: uqid})
		return n > 0, err
	}

	res, err := s.c.UpdateOne(ctx, bson.M{models.FieldUqID: uqid}, bson.M{"$set": set})
	if err != nil {
		if wafflemongo.IsDup(err) {
			return false, ErrDuplicate
		}
		return false, err
	}
	return res.MatchedCount > 0, nil
}

// Delete removes the record with uqid and reports whether one existed.
func (s *Store[T, P]) Delete(ctx context.Context, uqid string) (bool, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{models.FieldUqID: uqid})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

// NormalizeEmails rewrites stored emails that are not in normalized form
// (mixed case or padded) so exact lookups find them. Records whose
// normalized email is already taken in the partition are left unchanged and
// their uqids returned in conflicts.
func (s *Store[T, P]) NormalizeEmails(ctx context.Context) (fixed int, conflicts []string, err error) {
	filter := bson.M{models.FieldEmail: primitive.Regex{Pattern: `[A-Z]|^\s|\s$`}}
	proj := options.Find().SetProjection(bson.M{models.FieldUqID: 1, models.FieldEmail: 1})
	cur, err := s.c.Find(ctx, filter, proj)
	if err != nil {
		return 0, nil, err
	}
	var rows []bson.M
	if err := cur.All(ctx, &rows); err != nil {
		return 0, nil, err
	}

	for _, row := range rows {
		uqid, _ := row[models.FieldUqID].(string)
		email, _ := row[models.FieldEmail].(string)
		_, err := s.c.UpdateOne(ctx,
			bson.M{models.FieldUqID: uqid},
			bson.M{"$set": bson.M{models.FieldEmail: normalize.Email(email)}})
		if wafflemongo.IsDup(err) {
			conflicts = append(conflicts, uqid)
			continue
		}
		if err != nil {
			return fixed, conflicts, err
		}
		fixed++
	}
	return fixed, conflicts, nil
}
