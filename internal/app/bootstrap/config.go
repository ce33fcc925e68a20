// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"strings"
	"time"

	"github.com/bemyforce/bemyforce/internal/app/system/auditlog"
	"github.com/bemyforce/bemyforce/internal/app/system/limits"
	"github.com/bemyforce/bemyforce/internal/app/system/tasks"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for the content API.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: BEMYFORCE_MONGO_URI, BEMYFORCE_SESSION_NAME, etc.
//   - Command-line flags: --mongo_uri, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "bemyforce", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},
	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key shared with the identity service"},
	{Name: "session_name", Default: "bemyforce-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},

	// File storage configuration
	{Name: "storage_type", Default: "local", Desc: "Storage backend: 'local' or 's3'"},
	{Name: "storage_local_path", Default: "./uploads", Desc: "Local storage path for uploaded files"},
	{Name: "storage_local_url", Default: "/files", Desc: "URL prefix for serving local files"},

	// S3 configuration
	{Name: "storage_s3_region", Default: "", Desc: "AWS region for S3"},
	{Name: "storage_s3_bucket", Default: "", Desc: "S3 bucket name"},
	{Name: "storage_s3_endpoint", Default: "", Desc: "Custom S3 endpoint (S3-compatible services)"},
	{Name: "storage_s3_public_url", Default: "", Desc: "Public base URL for stored objects (CDN or bucket URL)"},

	// Video normalization
	{Name: "ffmpeg_path", Default: "ffmpeg", Desc: "Path to the ffmpeg binary"},
	{Name: "ffprobe_path", Default: "ffprobe", Desc: "Path to the ffprobe binary"},
	{Name: "video_crf", Default: 30, Desc: "H.264 constant rate factor for re-encoded videos"},
	{Name: "video_timeout", Default: "3m", Desc: "Maximum time for one video probe + re-encode"},

	// Uploads
	{Name: "upload_max_memory", Default: limits.MaxMultipartMemory, Desc: "Bytes of a multipart body held in memory before spilling to disk"},
	{Name: "upload_rate_limit", Default: 20, Desc: "Create requests allowed per user per minute (0 disables)"},

	// Background jobs
	{Name: "need_expiry_interval", Default: "1h", Desc: "How often approved needs past their event date are expired"},

	// Audit trail destinations: all, db, log or off
	{Name: "audit_log_moderation", Default: "all", Desc: "Where approve/reject events go"},
	{Name: "audit_log_content", Default: "all", Desc: "Where fulfill, expiry and delete events go"},

	{Name: "seed_interests", Default: "", Desc: "Comma-separated interests created at startup when missing"},

	{Name: "base_url", Default: "http://localhost:8080", Desc: "Public base URL, used for local file links"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig merges .env files, config files,
// BEMYFORCE_* environment variables and flags with precedence
// flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "BEMYFORCE", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),
		SessionKey:       appValues.String("session_key"),
		SessionName:      appValues.String("session_name"),
		SessionDomain:    appValues.String("session_domain"),

		StorageType:      strings.ToLower(strings.TrimSpace(appValues.String("storage_type"))),
		StorageLocalPath: appValues.String("storage_local_path"),
		StorageLocalURL:  appValues.String("storage_local_url"),

		StorageS3Region:    appValues.String("storage_s3_region"),
		StorageS3Bucket:    appValues.String("storage_s3_bucket"),
		StorageS3Endpoint:  appValues.String("storage_s3_endpoint"),
		StorageS3PublicURL: appValues.String("storage_s3_public_url"),

		FFmpegPath:   appValues.String("ffmpeg_path"),
		FFprobePath:  appValues.String("ffprobe_path"),
		VideoCRF:     appValues.Int("video_crf"),
		VideoTimeout: appValues.Duration("video_timeout", 3*time.Minute),

		UploadMaxMemory: int64(appValues.Int("upload_max_memory")),
		UploadRateLimit: appValues.Int("upload_rate_limit"),

		NeedExpiryInterval: appValues.Duration("need_expiry_interval", tasks.NeedExpiryInterval),
		SeedInterests:      splitList(appValues.String("seed_interests")),

		AuditLogModeration: strings.ToLower(strings.TrimSpace(appValues.String("audit_log_moderation"))),
		AuditLogContent:    strings.ToLower(strings.TrimSpace(appValues.String("audit_log_content"))),

		BaseURL: strings.TrimSuffix(appValues.String("base_url"), "/"),
	}

	return coreCfg, appCfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ValidateConfig performs app-specific config validation.
//
// It catches a malformed Mongo URI, an incomplete S3 setup and nonsensical
// media settings before anything connects.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	switch appCfg.StorageType {
	case "local":
		if strings.TrimSpace(appCfg.StorageLocalPath) == "" {
			return fmt.Errorf("storage_type=local requires storage_local_path")
		}
		if !strings.HasPrefix(appCfg.StorageLocalURL, "/") {
			return fmt.Errorf("storage_local_url must be a path starting with '/'")
		}
	case "s3":
		if appCfg.StorageS3Bucket == "" || appCfg.StorageS3Region == "" {
			return fmt.Errorf("storage_type=s3 requires storage_s3_bucket and storage_s3_region")
		}
	default:
		return fmt.Errorf("unknown storage_type %q (want 'local' or 's3')", appCfg.StorageType)
	}

	if appCfg.VideoCRF <= 0 || appCfg.VideoCRF > 51 {
		return fmt.Errorf("video_crf must be between 1 and 51, got %d", appCfg.VideoCRF)
	}
	if appCfg.NeedExpiryInterval <= 0 {
		return fmt.Errorf("need_expiry_interval must be positive")
	}
	if appCfg.UploadRateLimit < 0 {
		return fmt.Errorf("upload_rate_limit must not be negative")
	}
	for key, v := range map[string]string{
		"audit_log_moderation": appCfg.AuditLogModeration,
		"audit_log_content":    appCfg.AuditLogContent,
	} {
		switch v {
		case "", auditlog.DestAll, auditlog.DestDB, auditlog.DestLog, auditlog.DestOff:
		default:
			return fmt.Errorf("%s must be one of all, db, log, off; got %q", key, v)
		}
	}

	return nil
}
