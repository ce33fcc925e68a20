// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// WAFFLE's CoreConfig covers ports, TLS, logging level, CORS and the
// environment name. Everything the content API itself needs lives here and
// is passed to every lifecycle hook.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string
	MongoDatabase    string
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Session cookie shared with the identity service
	SessionKey    string
	SessionName   string
	SessionDomain string

	// File storage: "local" or "s3"
	StorageType      string
	StorageLocalPath string // directory files are written to
	StorageLocalURL  string // path prefix local files are served under

	StorageS3Region    string
	StorageS3Bucket    string
	StorageS3Endpoint  string // optional, for S3-compatible services
	StorageS3PublicURL string // CDN or bucket URL objects are served from

	// Video normalization
	FFmpegPath   string
	FFprobePath  string
	VideoCRF     int
	VideoTimeout time.Duration

	// Uploads
	UploadMaxMemory int64
	UploadRateLimit int // create requests per user per minute; 0 disables

	// Background jobs
	NeedExpiryInterval time.Duration

	// Audit trail destinations (all, db, log, off)
	AuditLogModeration string
	AuditLogContent    string

	// Interests created at startup when missing (comma separated)
	SeedInterests []string

	// Public base URL, prefixed to local file URLs
	BaseURL string
}
