// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/osprey/internal/app/system/blobstore"
	"github.com/dalemusser/osprey/internal/app/system/ratelimit"
	"github.com/dalemusser/osprey/internal/app/system/workers"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database and backend dependencies for this WAFFLE app.
//
// It is created in ConnectDB and passed to EnsureSchema, Startup,
// BuildHandler and Shutdown. Shutdown releases everything held here.
type DBDeps struct {
	// MongoDB client and database
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	// Files holds profile pictures and partnership offer files.
	Files *blobstore.Local

	// LoginLimiter runs a cleanup goroutine until Shutdown closes it.
	LoginLimiter *ratelimit.LoginLimiter

	// Sweeper releases orphaned identity reservations. Nil when
	// reservations are disabled.
	Sweeper *workers.ReservationSweep
}
