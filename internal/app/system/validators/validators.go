// internal/app/system/validators/validators.go
package validators

import (
	"context"
	"errors"
	"strings"

	"github.com/dalemusser/osprey/internal/domain/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// EnsureAll creates collections (if missing) and attaches JSON-Schema
// validators. Servers that don't support collMod validators are logged and
// skipped.
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	ensure := func(coll string, schema bson.M) {
		if _, err := ensureCollection(ctx, db, coll); err != nil {
			problems = append(problems, coll+": "+err.Error())
			return
		}
		if schema == nil {
			return
		}
		if err := setValidator(ctx, db, coll, schema); err != nil {
			if isNoSuchCommand(err) || isNotImplemented(err) {
				zap.L().Info("validator skipped (unsupported)", zap.String("collection", coll))
				return
			}
			problems = append(problems, coll+": "+err.Error())
		}
	}

	// Identity partitions
	for _, role := range models.Roles {
		ensure(role.Collection(), partitionSchema(role))
	}

	// Activity collections
	ensure("Content", contentSchema())
	ensure("Events", eventsSchema())
	ensure("Memberships", membershipsSchema())
	ensure("Messages", messagesSchema())
	ensure("Notifications", nil)
	ensure("Partnerships", nil)
	ensure("UserPartnerships", nil)
	ensure("Counter", nil)

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* ---------------------- collection helpers & logging ---------------------- */

// collectionExists returns true when <name> already exists.
// Uses ListCollectionNames to avoid "created collection" log when it didn't.
func collectionExists(ctx context.Context, db *mongo.Database, name string) (bool, error) {
	names, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		return false, err
	}
	for _, n := range names {
		if n == name {
			return true, nil
		}
	}
	return false, nil
}

// ensureCollection idempotently makes sure <name> exists.
// Returns created==true only if we actually created it.
func ensureCollection(ctx context.Context, db *mongo.Database, name string) (created bool, err error) {
	exists, listErr := collectionExists(ctx, db, name)
	if listErr == nil && exists {
		zap.L().Info("collection exists", zap.String("collection", name))
		return false, nil
	}
	// If listing failed, fall back to create-and-handle-race.
	if err := db.CreateCollection(ctx, name); err != nil {
		// NamespaceExists / already exists is fine (race or prior run).
		if isNamespaceExistsErr(err) {
			zap.L().Info("collection exists", zap.String("collection", name))
			return false, nil
		}
		zap.L().Warn("createCollection failed", zap.String("collection", name), zap.Error(err))
		return false, err
	}
	zap.L().Info("created collection", zap.String("collection", name))
	return true, nil
}

/* ------------------------------ validators ------------------------------- */

func setValidator(ctx context.Context, db *mongo.Database, name string, validator bson.M) error {
	cmd := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
		{Key: "validationLevel", Value: "moderate"},
		{Key: "validationAction", Value: "error"},
	}
	var out bson.M
	if err := db.RunCommand(ctx, cmd).Decode(&out); err != nil {
		return err
	}
	zap.L().Info("validator ensured", zap.String("collection", name))
	return nil
}

/* ------------------------- error helpers ------------------------- */

func isNamespaceExistsErr(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 48 || strings.Contains(strings.ToLower(ce.Message), "already exists")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "already exists") || strings.Contains(s, "namespace exists")
}

func isNoSuchCommand(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 59 || strings.Contains(strings.ToLower(ce.Message), "no such command")) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "no such command")
}

func isNotImplemented(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 115 ||
		strings.Contains(strings.ToLower(ce.Message), "not implemented") ||
		strings.Contains(strings.ToLower(ce.Message), "not supported")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "not implemented") || strings.Contains(s, "not supported")
}

/* ------------------------- JSON-Schema docs ---------------------- */

var nonBlank = bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"}

// partitionSchema requires the identity fields on every record and pins the
// Role tag to the partition. Role-specific fields stay optional at this level.
func partitionSchema(role models.Role) bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{models.FieldUqID, models.FieldUsername, models.FieldEmail, models.FieldPassword, models.FieldRole},
			"properties": bson.M{
				models.FieldUqID:           nonBlank,
				models.FieldUsername:       nonBlank,
				models.FieldEmail:          nonBlank,
				models.FieldPassword:       nonBlank,
				models.FieldRole:           bson.M{"enum": bson.A{role.String()}},
				models.FieldProfilePicture: bson.M{"bsonType": "string"},
				models.FieldCreatedAt:      bson.M{"bsonType": "date"},
				role.CounterName():         bson.M{"bsonType": bson.A{"long", "int"}},
			},
		},
	}
}

func contentSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"UniqueId", "Title", "UqId"},
			"properties": bson.M{
				"UniqueId":     nonBlank,
				"Title":        nonBlank,
				"UqId":         bson.M{"bsonType": "string"},
				"Items":        bson.M{"bsonType": bson.A{"array", "null"}},
				"created_date": bson.M{"bsonType": "date"},
			},
		},
	}
}

func eventsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"UniqueId", "UqId"},
			"properties": bson.M{
				"UniqueId":    nonBlank,
				"UqId":        bson.M{"bsonType": "string"},
				"MaxCapacity": bson.M{"bsonType": bson.A{"int", "long"}, "minimum": 0},
				"Contents":    bson.M{"bsonType": bson.A{"array", "null"}},
			},
		},
	}
}

func membershipsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"MembershipID", "userId", "status"},
			"properties": bson.M{
				"MembershipID": bson.M{"bsonType": bson.A{"long", "int"}},
				"userId":       bson.M{"bsonType": "string"},
				"status":       bson.M{"bsonType": "string"},
			},
		},
	}
}

func messagesSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"senderId", "receiverId", "timestamp"},
			"properties": bson.M{
				"senderId":   nonBlank,
				"receiverId": nonBlank,
				"content":    bson.M{"bsonType": "string"},
				"timestamp":  bson.M{"bsonType": "date"},
			},
		},
	}
}
