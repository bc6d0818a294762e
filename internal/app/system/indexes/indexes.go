// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/osprey/internal/app/store/audit"
	"github.com/dalemusser/osprey/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll is called at startup. Each ensure* function is idempotent.
Errors are aggregated so every problem is visible and startup can fail fast.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	for _, role := range models.Roles {
		if err := ensurePartition(ctx, db, role); err != nil {
			problems = append(problems, role.Collection()+": "+err.Error())
		}
	}
	if err := ensureContent(ctx, db); err != nil {
		problems = append(problems, "Content: "+err.Error())
	}
	if err := ensureEvents(ctx, db); err != nil {
		problems = append(problems, "Events: "+err.Error())
	}
	if err := ensureMemberships(ctx, db); err != nil {
		problems = append(problems, "Memberships: "+err.Error())
	}
	if err := ensureMessages(ctx, db); err != nil {
		problems = append(problems, "Messages: "+err.Error())
	}
	if err := ensureNotifications(ctx, db); err != nil {
		problems = append(problems, "Notifications: "+err.Error())
	}
	if err := ensurePartnerships(ctx, db); err != nil {
		problems = append(problems, "Partnerships: "+err.Error())
	}
	if err := ensureReservations(ctx, db); err != nil {
		problems = append(problems, "identity_reservations: "+err.Error())
	}
	if err := ensureAudit(ctx, db); err != nil {
		problems = append(problems, audit.Collection+": "+err.Error())
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Reconcile a set of desired indexes for one collection                      */
/* -------------------------------------------------------------------------- */

type existingIndex struct {
	Name   string `bson:"name"`
	Key    bson.D `bson:"key"`
	Unique *bool  `bson:"unique,omitempty"`
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func isUnique(p *bool) bool { return p != nil && *p }

func isDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	if mongo.IsDuplicateKeyError(err) {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "E11000") || strings.Contains(strings.ToLower(s), "duplicate key")
}

func listIndexes(ctx context.Context, coll *mongo.Collection) map[string]existingIndex {
	out := map[string]existingIndex{}
	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		return out
	}
	defer cur.Close(ctx)
	for cur.Next(ctx) {
		var idx existingIndex
		if err := cur.Decode(&idx); err != nil {
			zap.L().Warn("failed to decode existing index",
				zap.String("collection", coll.Name()),
				zap.Error(err))
			continue
		}
		out[keySig(idx.Key)] = idx
	}
	return out
}

// ensureIndexSet makes coll carry every index in want. An index whose keys
// already exist is reused when its uniqueness matches and its name agrees;
// otherwise it is dropped and recreated.
func ensureIndexSet(ctx context.Context, coll *mongo.Collection, want []mongo.IndexModel) error {
	var errs []string
	existing := listIndexes(ctx, coll)

	for _, m := range want {
		name := *m.Options.Name
		unique := isUnique(m.Options.Unique)
		sig := keySig(m.Keys.(bson.D))
		start := time.Now()
		log := zap.L().With(
			zap.String("collection", coll.Name()),
			zap.String("name", name),
			zap.String("keys", sig),
			zap.Bool("unique", unique))

		if ex, ok := existing[sig]; ok {
			if isUnique(ex.Unique) == unique && ex.Name == name {
				log.Debug("reusing existing index")
				continue
			}
			log.Info("replacing index", zap.String("existing_name", ex.Name))
			if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
				errs = append(errs, fmt.Sprintf("%s(%s): drop failed: %v", coll.Name(), name, err))
				continue
			}
		}

		if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
			log.Warn("index ensure failed", zap.Duration("took", time.Since(start)), zap.Error(err))
			if unique && isDuplicateKeyErr(err) {
				errs = append(errs, fmt.Sprintf("%s(%s): cannot create unique index (duplicates present)", coll.Name(), name))
				continue
			}
			errs = append(errs, fmt.Sprintf("%s(%s): %v", coll.Name(), name, err))
			continue
		}
		log.Info("index ensured", zap.Duration("took", time.Since(start)))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func index(name string, unique bool, keys bson.D) mongo.IndexModel {
	opts := options.Index().SetName(name)
	if unique {
		opts.SetUnique(true)
	}
	return mongo.IndexModel{Keys: keys, Options: opts}
}

/* -------------------------------------------------------------------------- */
/* Collection-specific index sets                                             */
/* -------------------------------------------------------------------------- */

// ensurePartition enforces uniqueness within one partition. Uniqueness
// across partitions is checked by the identity engine, optionally backed by
// the reservations collection.
func ensurePartition(ctx context.Context, db *mongo.Database, role models.Role) error {
	prefix := strings.ToLower(role.Collection())
	return ensureIndexSet(ctx, db.Collection(role.Collection()), []mongo.IndexModel{
		index("uniq_"+prefix+"_uqid", true, bson.D{{Key: models.FieldUqID, Value: 1}}),
		index("uniq_"+prefix+"_username", true, bson.D{{Key: models.FieldUsername, Value: 1}}),
		index("uniq_"+prefix+"_email", true, bson.D{{Key: models.FieldEmail, Value: 1}}),
		index("idx_"+prefix+"_seq", false, bson.D{{Key: role.CounterName(), Value: 1}}),
		index("idx_"+prefix+"_created", false, bson.D{{Key: models.FieldCreatedAt, Value: 1}}),
	})
}

func ensureContent(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("Content"), []mongo.IndexModel{
		index("uniq_content_uniqueid", true, bson.D{{Key: "UniqueId", Value: 1}}),
		index("idx_content_owner_created", false, bson.D{{Key: "UqId", Value: 1}, {Key: "created_date", Value: -1}}),
	})
}

func ensureEvents(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("Events"), []mongo.IndexModel{
		index("uniq_events_uniqueid", true, bson.D{{Key: "UniqueId", Value: 1}}),
		index("idx_events_owner_start", false, bson.D{{Key: "UqId", Value: 1}, {Key: "StartDate", Value: 1}}),
	})
}

func ensureMemberships(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("Memberships"), []mongo.IndexModel{
		index("uniq_memberships_id", true, bson.D{{Key: "MembershipID", Value: 1}}),
		index("idx_memberships_user", false, bson.D{{Key: "userId", Value: 1}}),
	})
}

func ensureMessages(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("Messages"), []mongo.IndexModel{
		index("idx_messages_pair_time", false, bson.D{
			{Key: "senderId", Value: 1},
			{Key: "receiverId", Value: 1},
			{Key: "timestamp", Value: 1},
		}),
	})
}

func ensureNotifications(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("Notifications"), []mongo.IndexModel{
		index("idx_notifications_user_created", false, bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}),
	})
}

func ensurePartnerships(ctx context.Context, db *mongo.Database) error {
	if err := ensureIndexSet(ctx, db.Collection("Partnerships"), []mongo.IndexModel{
		index("uniq_partnerships_id", true, bson.D{{Key: "partnershipId", Value: 1}}),
	}); err != nil {
		return err
	}
	return ensureIndexSet(ctx, db.Collection("UserPartnerships"), []mongo.IndexModel{
		index("uniq_userpartnerships_id", true, bson.D{{Key: "userPartnershipId", Value: 1}}),
		index("idx_userpartnerships_user", false, bson.D{{Key: "userId", Value: 1}}),
	})
}

func ensureReservations(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("identity_reservations"), []mongo.IndexModel{
		index("idx_reservations_owner", false, bson.D{{Key: "owner", Value: 1}}),
		index("idx_reservations_created", false, bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}),
	})
}

func ensureAudit(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection(audit.Collection), []mongo.IndexModel{
		index("idx_audit_uqid_time", false, bson.D{{Key: "uqid", Value: 1}, {Key: "timestamp", Value: -1}}),
		index("idx_audit_category_time", false, bson.D{{Key: "category", Value: 1}, {Key: "timestamp", Value: -1}}),
		index("idx_audit_time", false, bson.D{{Key: "timestamp", Value: -1}}),
	})
}
