// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// WAFFLE's CoreConfig handles framework-level settings (ports, TLS, logging,
// environment). AppConfig is everything specific to StudyPoint: database
// connection details, session cookies, file storage, and the bulk-upload
// pipeline's knobs.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Session management configuration
	SessionKey    string        // Secret key for signing session cookies (must be strong in production)
	SessionName   string        // Cookie name for sessions
	SessionDomain string        // Cookie domain (blank means current host)
	SessionMaxAge time.Duration // How long a sign-in lasts

	// CSRF protection
	CSRFKey string // 32-byte key for gorilla/csrf

	// File storage configuration
	StorageType      string // Storage backend: "local" or "s3"
	StorageLocalPath string // Local storage path (e.g., "./uploads")
	StorageLocalURL  string // URL prefix for serving local files (e.g., "/files")

	// S3-compatible storage (only used if StorageType is "s3")
	StorageS3Endpoint  string // e.g., "s3.amazonaws.com" or a MinIO host
	StorageS3Region    string
	StorageS3Bucket    string
	StorageS3AccessKey string
	StorageS3SecretKey string
	StorageS3UseSSL    bool
	StorageS3PublicURL string // Public base URL for stored objects (CDN or bucket URL)

	// Base URL of this instance; the bulk-upload pipeline submits batch
	// items to BaseURL + /api/upload.
	BaseURL string

	// UploadMaxBodyBytes caps the upload endpoint's multipart body. Zero
	// means the built-in default.
	UploadMaxBodyBytes int64

	// Bulk upload configuration
	BulkSpoolDir string        // Where selected files wait between add and submit
	BulkIdleTTL  time.Duration // Idle time before an abandoned batch is reclaimed

	// First-run admin account. When set and no user with this email
	// exists, one is created at startup so the back office is reachable.
	AdminEmail    string
	AdminPassword string
	AdminName     string
}
