// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/studypointin/studypoint/internal/app/system/storage"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database and storage back-end dependencies for the app.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	// Files is the material storage backend selected by config: local disk
	// in development, S3-compatible object storage in production.
	Files storage.Store
}
