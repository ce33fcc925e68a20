// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/bemyforce/bemyforce/internal/app/system/auditlog"
	"github.com/bemyforce/bemyforce/internal/app/system/metrics"
	"github.com/bemyforce/bemyforce/internal/app/system/objectstore"
	"github.com/bemyforce/bemyforce/internal/app/system/tasks"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database and back-end dependencies for the app.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	Storage *objectstore.Store
	Metrics *metrics.Metrics
	Jobs    *tasks.Runner
	Audit   *auditlog.Logger
}
