// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"

	"github.com/dalemusser/waffle/config"
	"github.com/studypointin/studypoint/internal/app/system/indexes"
	"github.com/studypointin/studypoint/internal/app/system/storage"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// ConnectDB establishes the MongoDB connection and builds the file storage
// backend selected by config.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	opts := options.Client().
		ApplyURI(appCfg.MongoURI).
		SetMaxPoolSize(appCfg.MongoMaxPoolSize).
		SetMinPoolSize(appCfg.MongoMinPoolSize)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return DBDeps{}, fmt.Errorf("connect mongodb: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return DBDeps{}, fmt.Errorf("ping mongodb: %w", err)
	}
	logger.Info("connected to MongoDB",
		zap.String("database", appCfg.MongoDatabase))

	files, err := buildStorage(ctx, appCfg, logger)
	if err != nil {
		_ = client.Disconnect(ctx)
		return DBDeps{}, err
	}

	return DBDeps{
		MongoClient:   client,
		MongoDatabase: client.Database(appCfg.MongoDatabase),
		Files:         files,
	}, nil
}

func buildStorage(ctx context.Context, appCfg AppConfig, logger *zap.Logger) (storage.Store, error) {
	switch appCfg.StorageType {
	case "s3":
		s, err := storage.NewS3(ctx, storage.S3Config{
			Endpoint:      appCfg.StorageS3Endpoint,
			AccessKey:     appCfg.StorageS3AccessKey,
			SecretKey:     appCfg.StorageS3SecretKey,
			Bucket:        appCfg.StorageS3Bucket,
			Region:        appCfg.StorageS3Region,
			UseSSL:        appCfg.StorageS3UseSSL,
			PublicBaseURL: appCfg.StorageS3PublicURL,
		})
		if err != nil {
			return nil, fmt.Errorf("init s3 storage: %w", err)
		}
		logger.Info("file storage: s3",
			zap.String("endpoint", appCfg.StorageS3Endpoint),
			zap.String("bucket", appCfg.StorageS3Bucket))
		return s, nil

	default:
		l, err := storage.NewLocal(appCfg.StorageLocalPath, appCfg.StorageLocalURL)
		if err != nil {
			return nil, fmt.Errorf("init local storage: %w", err)
		}
		logger.Info("file storage: local",
			zap.String("path", appCfg.StorageLocalPath),
			zap.String("url", appCfg.StorageLocalURL))
		return l, nil
	}
}

// EnsureSchema creates the MongoDB indexes the queries rely on.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if err := indexes.EnsureAll(ctx, deps.MongoDatabase); err != nil {
		return fmt.Errorf("ensure indexes: %w", err)
	}
	logger.Info("database indexes ensured")
	return nil
}
