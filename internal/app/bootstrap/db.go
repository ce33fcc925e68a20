// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"
	"strings"

	"github.com/bemyforce/bemyforce/internal/app/store/audit"
	needstore "github.com/bemyforce/bemyforce/internal/app/store/needs"
	"github.com/bemyforce/bemyforce/internal/app/system/auditlog"
	"github.com/bemyforce/bemyforce/internal/app/system/indexes"
	"github.com/bemyforce/bemyforce/internal/app/system/metrics"
	"github.com/bemyforce/bemyforce/internal/app/system/objectstore"
	"github.com/bemyforce/bemyforce/internal/app/system/tasks"
	"github.com/bemyforce/bemyforce/internal/app/system/timeouts"
	"github.com/bemyforce/bemyforce/internal/app/system/validators"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/storage"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// ConnectDB connects to MongoDB and builds the other back ends handlers
// and jobs share: object storage, metrics and the job runner.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	opts := options.Client().
		ApplyURI(appCfg.MongoURI).
		SetMaxPoolSize(appCfg.MongoMaxPoolSize).
		SetMinPoolSize(appCfg.MongoMinPoolSize)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return DBDeps{}, fmt.Errorf("mongo connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeouts.Ping())
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return DBDeps{}, fmt.Errorf("mongo ping: %w", err)
	}
	logger.Info("connected to MongoDB", zap.String("database", appCfg.MongoDatabase))

	db := client.Database(appCfg.MongoDatabase)

	objects, err := newStorage(ctx, appCfg)
	if err != nil {
		_ = client.Disconnect(context.Background())
		return DBDeps{}, err
	}
	logger.Info("object storage ready", zap.String("type", appCfg.StorageType), zap.String("backend", objects.Backend().Backend()))

	m := metrics.New()
	auditLogger := auditlog.New(audit.New(db), logger, auditlog.Config{
		Moderation: appCfg.AuditLogModeration,
		Content:    appCfg.AuditLogContent,
	})
	jobs := tasks.NewRunner(logger,
		tasks.NeedExpiryJob(needstore.New(db), m, auditLogger, logger, appCfg.NeedExpiryInterval),
	)

	return DBDeps{
		MongoClient:   client,
		MongoDatabase: db,
		Storage:       objects,
		Metrics:       m,
		Jobs:          jobs,
		Audit:         auditLogger,
	}, nil
}

// newStorage builds the storage backend named by storage_type and wraps
// it for media uploads.
func newStorage(ctx context.Context, appCfg AppConfig) (*objectstore.Store, error) {
	var (
		backend storage.Store
		err     error
	)
	switch appCfg.StorageType {
	case "s3":
		endpoint := strings.TrimSuffix(appCfg.StorageS3Endpoint, "/")
		publicURL := strings.TrimSuffix(appCfg.StorageS3PublicURL, "/")
		if publicURL == "" && endpoint != "" {
			publicURL = endpoint + "/" + appCfg.StorageS3Bucket
		}
		backend, err = storage.NewS3(ctx, storage.S3Config{
			Region:       appCfg.StorageS3Region,
			Bucket:       appCfg.StorageS3Bucket,
			Endpoint:     endpoint,
			UsePathStyle: endpoint != "",
			BaseURL:      publicURL,
			DefaultACL:   "public-read",
		})
	default:
		backend, err = storage.NewLocal(storage.LocalConfig{
			BasePath: appCfg.StorageLocalPath,
			BaseURL:  strings.TrimSuffix(appCfg.BaseURL, "/") + appCfg.StorageLocalURL,
		})
	}
	if err != nil {
		return nil, fmt.Errorf("%s storage: %w", appCfg.StorageType, err)
	}
	return objectstore.New(backend), nil
}

// EnsureSchema installs collection validators and indexes. Both steps are
// idempotent and safe to run on every start.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if err := validators.EnsureAll(ctx, deps.MongoDatabase); err != nil {
		logger.Error("ensure validators failed", zap.Error(err))
		return err
	}
	if err := indexes.EnsureAll(ctx, deps.MongoDatabase); err != nil {
		logger.Error("ensure indexes failed", zap.Error(err))
		return err
	}
	logger.Info("schema ensured")
	return nil
}
