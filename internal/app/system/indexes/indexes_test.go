package indexes_test

import (
	"context"
	"testing"

	"github.com/dalemusser/osprey/internal/app/system/indexes"
	"github.com/dalemusser/osprey/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func indexNames(t *testing.T, ctx context.Context, db *mongo.Database, coll string) map[string]bool {
	t.Helper()
	cur, err := db.Collection(coll).Indexes().List(ctx)
	if err != nil {
		t.Fatalf("List indexes on %s failed: %v", coll, err)
	}
	defer cur.Close(ctx)

	names := make(map[string]bool)
	for cur.Next(ctx) {
		var idx bson.M
		if err := cur.Decode(&idx); err != nil {
			continue
		}
		if name, ok := idx["name"].(string); ok {
			names[name] = true
		}
	}
	return names
}

func TestEnsureAll(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
}

func TestEnsureAll_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("First EnsureAll failed: %v", err)
	}
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("Second EnsureAll failed: %v", err)
	}
}

func TestEnsureAll_CreatesPartitionIndexes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	for coll, prefix := range map[string]string{
		"Users":         "users",
		"Sportsman":     "sportsman",
		"Entertainer":   "entertainer",
		"BusinessOwner": "businessowner",
	} {
		names := indexNames(t, ctx, db, coll)
		for _, want := range []string{
			"uniq_" + prefix + "_uqid",
			"uniq_" + prefix + "_username",
			"uniq_" + prefix + "_email",
			"idx_" + prefix + "_seq",
		} {
			if !names[want] {
				t.Errorf("expected index %q on %s", want, coll)
			}
		}
	}
}

func TestEnsureAll_CreatesActivityIndexes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	expected := map[string][]string{
		"Content":          {"uniq_content_uniqueid", "idx_content_owner_created"},
		"Events":           {"uniq_events_uniqueid", "idx_events_owner_start"},
		"Memberships":      {"uniq_memberships_id"},
		"Messages":         {"idx_messages_pair_time"},
		"Notifications":    {"idx_notifications_user_created"},
		"Partnerships":     {"uniq_partnerships_id"},
		"UserPartnerships": {"uniq_userpartnerships_id"},
		"audit_events":     {"idx_audit_uqid_time"},
	}
	for coll, want := range expected {
		names := indexNames(t, ctx, db, coll)
		for _, n := range want {
			if !names[n] {
				t.Errorf("expected index %q on %s", n, coll)
			}
		}
	}
}

func TestEnsureAll_ReplacesMisnamedIndex(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := db.Collection("Users").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "Username", Value: 1}},
		Options: options.Index().SetName("legacy_username").SetUnique(true),
	})
	if err != nil {
		t.Fatalf("create legacy index: %v", err)
	}

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	names := indexNames(t, ctx, db, "Users")
	if names["legacy_username"] {
		t.Error("expected legacy index to be replaced")
	}
	if !names["uniq_users_username"] {
		t.Error("expected uniq_users_username")
	}
}

func TestEnsureAll_UniqueIndexEnforced(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	c := db.Collection("Sportsman")
	if _, err := c.InsertOne(ctx, bson.M{"UqId": "a", "Username": "striker", "email": "a@example.com"}); err != nil {
		t.Fatalf("first insert failed: %v", err)
	}
	if _, err := c.InsertOne(ctx, bson.M{"UqId": "b", "Username": "striker", "email": "b@example.com"}); err == nil {
		t.Error("expected duplicate key error on Sportsman.Username")
	}
}
