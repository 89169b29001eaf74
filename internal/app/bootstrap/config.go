// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for StudyPoint.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: STUDYPOINT_MONGO_URI, STUDYPOINT_SESSION_NAME, etc.
//   - Command-line flags: --mongo_uri, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "studypoint", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size"},

	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "studypoint-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "720h", Desc: "Session lifetime (e.g., 720h for 30 days)"},

	{Name: "csrf_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "CSRF signing key (32+ bytes, must be strong in production)"},

	// File storage configuration
	{Name: "storage_type", Default: "local", Desc: "Storage backend: 'local' or 's3'"},
	{Name: "storage_local_path", Default: "./uploads", Desc: "Local storage path for uploaded files"},
	{Name: "storage_local_url", Default: "/files", Desc: "URL prefix for serving local files"},

	// S3-compatible storage
	{Name: "storage_s3_endpoint", Default: "", Desc: "S3-compatible endpoint (e.g., s3.amazonaws.com)"},
	{Name: "storage_s3_region", Default: "", Desc: "S3 region"},
	{Name: "storage_s3_bucket", Default: "", Desc: "S3 bucket name"},
	{Name: "storage_s3_access_key", Default: "", Desc: "S3 access key"},
	{Name: "storage_s3_secret_key", Default: "", Desc: "S3 secret key"},
	{Name: "storage_s3_use_ssl", Default: true, Desc: "Use TLS for the S3 endpoint"},
	{Name: "storage_s3_public_url", Default: "", Desc: "Public base URL for stored objects"},

	{Name: "base_url", Default: "http://localhost:3000", Desc: "Base URL of this instance"},

	{Name: "upload_max_body_bytes", Default: 4 << 20, Desc: "Body size ceiling for the upload endpoint"},

	// Bulk upload
	{Name: "bulk_spool_dir", Default: "", Desc: "Spool directory for bulk-upload files (blank means the OS temp dir)"},
	{Name: "bulk_idle_ttl", Default: "2h", Desc: "Idle time before an abandoned bulk-upload batch is reclaimed"},

	// First-run admin account
	{Name: "admin_email", Default: "", Desc: "Email of the first admin user (created on startup when missing)"},
	{Name: "admin_password", Default: "", Desc: "Password for the first admin user"},
	{Name: "admin_name", Default: "Administrator", Desc: "Display name for the first admin user"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// CoreConfig comes from the shared WAFFLE layer; AppConfig is specific to
// this app. Precedence is flags, then environment, then files, then the
// defaults above.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "STUDYPOINT", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),
		SessionMaxAge: appValues.Duration("session_max_age", 30*24*time.Hour),

		CSRFKey: appValues.String("csrf_key"),

		StorageType:      appValues.String("storage_type"),
		StorageLocalPath: appValues.String("storage_local_path"),
		StorageLocalURL:  appValues.String("storage_local_url"),

		StorageS3Endpoint:  appValues.String("storage_s3_endpoint"),
		StorageS3Region:    appValues.String("storage_s3_region"),
		StorageS3Bucket:    appValues.String("storage_s3_bucket"),
		StorageS3AccessKey: appValues.String("storage_s3_access_key"),
		StorageS3SecretKey: appValues.String("storage_s3_secret_key"),
		StorageS3UseSSL:    appValues.Bool("storage_s3_use_ssl"),
		StorageS3PublicURL: appValues.String("storage_s3_public_url"),

		BaseURL:            appValues.String("base_url"),
		UploadMaxBodyBytes: int64(appValues.Int("upload_max_body_bytes")),

		BulkSpoolDir: appValues.String("bulk_spool_dir"),
		BulkIdleTTL:  appValues.Duration("bulk_idle_ttl", 2*time.Hour),

		AdminEmail:    appValues.String("admin_email"),
		AdminPassword: appValues.String("admin_password"),
		AdminName:     appValues.String("admin_name"),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation before any backends
// are built, so misconfiguration fails fast.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	switch appCfg.StorageType {
	case "local":
		if appCfg.StorageLocalPath == "" {
			return fmt.Errorf("storage_local_path is required for local storage")
		}
	case "s3":
		if appCfg.StorageS3Endpoint == "" || appCfg.StorageS3Bucket == "" {
			return fmt.Errorf("storage_s3_endpoint and storage_s3_bucket are required for s3 storage")
		}
	default:
		return fmt.Errorf("storage_type must be 'local' or 's3', got %q", appCfg.StorageType)
	}

	if coreCfg.Env == "prod" {
		if len(appCfg.SessionKey) < 32 {
			return fmt.Errorf("session_key must be at least 32 characters in production")
		}
		if len(appCfg.CSRFKey) < 32 {
			return fmt.Errorf("csrf_key must be at least 32 characters in production")
		}
	}

	return nil
}
