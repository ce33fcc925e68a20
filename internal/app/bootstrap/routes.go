// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"
	"strings"
	"time"

	achievementsfeature "github.com/bemyforce/bemyforce/internal/app/features/achievements"
	assetsfeature "github.com/bemyforce/bemyforce/internal/app/features/assets"
	auditlogfeature "github.com/bemyforce/bemyforce/internal/app/features/auditlog"
	errorsfeature "github.com/bemyforce/bemyforce/internal/app/features/errors"
	healthfeature "github.com/bemyforce/bemyforce/internal/app/features/health"
	interestsfeature "github.com/bemyforce/bemyforce/internal/app/features/interests"
	needsfeature "github.com/bemyforce/bemyforce/internal/app/features/needs"
	usersfeature "github.com/bemyforce/bemyforce/internal/app/features/users"
	assetstore "github.com/bemyforce/bemyforce/internal/app/store/assets"
	userstore "github.com/bemyforce/bemyforce/internal/app/store/users"
	"github.com/bemyforce/bemyforce/internal/app/system/attachments"
	"github.com/bemyforce/bemyforce/internal/app/system/auth"
	"github.com/bemyforce/bemyforce/internal/app/system/ratelimit"
	"github.com/bemyforce/bemyforce/internal/app/system/respond"
	"github.com/bemyforce/bemyforce/internal/app/system/videoproc"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup and
// Startup have completed. Every feature shares one Responder, one
// attachment service and one video processor.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// Role, verification and onboarding flags are read fresh on every request.
	sessionMgr.SetUserFetcher(userstore.NewFetcher(deps.MongoDatabase))

	db := deps.MongoDatabase
	resp := respond.New(logger, coreCfg.Env != "prod")
	attach := attachments.New(assetstore.New(db), deps.Storage, deps.Metrics, logger)
	video := videoproc.New(videoproc.Config{
		FFmpegPath:  appCfg.FFmpegPath,
		FFprobePath: appCfg.FFprobePath,
		CRF:         appCfg.VideoCRF,
		Timeout:     appCfg.VideoTimeout,
	}, logger)

	var limiter *ratelimit.Limiter
	if appCfg.UploadRateLimit > 0 {
		limiter = ratelimit.New(appCfg.UploadRateLimit, time.Minute, appCfg.UploadRateLimit, 10*time.Minute)
	}

	errorsHandler := errorsfeature.NewHandler(resp)

	r := chi.NewRouter()
	r.Use(stripAPIPrefix)
	r.Use(deps.Metrics.Middleware)

	// Loads the SessionUser into context when the request carries a valid
	// session; gates are applied per route.
	r.Use(sessionMgr.LoadSessionUser)

	r.NotFound(errorsHandler.NotFound)
	r.MethodNotAllowed(errorsHandler.MethodNotAllowed)

	healthHandler := healthfeature.NewHandler(deps.MongoClient, []string{appCfg.FFmpegPath, appCfg.FFprobePath}, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))
	r.Handle("/metrics", deps.Metrics.Handler())

	if appCfg.StorageType == "local" {
		prefix := strings.TrimSuffix(appCfg.StorageLocalURL, "/")
		r.Handle(prefix+"/*", fileserver.Handler(prefix, appCfg.StorageLocalPath))
	}

	achievementsHandler := achievementsfeature.NewHandler(db, attach, video, deps.Metrics, resp, logger)
	achievementsHandler.MaxMemory = appCfg.UploadMaxMemory
	achievementsHandler.Audit = deps.Audit
	r.Mount("/achievements", achievementsfeature.Routes(achievementsHandler, sessionMgr, limiter))

	needsHandler := needsfeature.NewHandler(db, attach, video, deps.Metrics, resp, logger)
	needsHandler.MaxMemory = appCfg.UploadMaxMemory
	needsHandler.Audit = deps.Audit
	r.Mount("/needs", needsfeature.Routes(needsHandler, sessionMgr, limiter))

	assetsHandler := assetsfeature.NewHandler(db, attach, resp, logger)
	assetsHandler.Audit = deps.Audit
	r.Mount("/assets", assetsfeature.Routes(assetsHandler, sessionMgr))

	usersHandler := usersfeature.NewHandler(attach, resp, logger)
	usersHandler.Audit = deps.Audit
	r.Mount("/users", usersfeature.Routes(usersHandler, sessionMgr))

	interestsHandler := interestsfeature.NewHandler(db, resp, logger)
	r.Mount("/master/interests", interestsfeature.Routes(interestsHandler, sessionMgr))

	auditHandler := auditlogfeature.NewHandler(db, resp, logger)
	r.Mount("/audit", auditlogfeature.Routes(auditHandler, sessionMgr))

	return r, nil
}

// stripAPIPrefix lets clients call either /api/needs or /needs. A bare
// /api maps to /.
func stripAPIPrefix(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api" || strings.HasPrefix(r.URL.Path, "/api/") {
			r.URL.Path = trimAPI(r.URL.Path)
			if r.URL.RawPath != "" {
				r.URL.RawPath = trimAPI(r.URL.RawPath)
			}
		}
		next.ServeHTTP(w, r)
	})
}

func trimAPI(p string) string {
	if p = strings.TrimPrefix(p, "/api"); p == "" {
		return "/"
	}
	return p
}
