// internal/app/bootstrap/routes.go
package bootstrap

import (
	"context"
	"net/http"

	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/csrf"
	bulkuploadfeature "github.com/studypointin/studypoint/internal/app/features/bulkupload"
	contentfeature "github.com/studypointin/studypoint/internal/app/features/content"
	errorsfeature "github.com/studypointin/studypoint/internal/app/features/errors"
	healthfeature "github.com/studypointin/studypoint/internal/app/features/health"
	homefeature "github.com/studypointin/studypoint/internal/app/features/home"
	loginfeature "github.com/studypointin/studypoint/internal/app/features/login"
	logoutfeature "github.com/studypointin/studypoint/internal/app/features/logout"
	_ "github.com/studypointin/studypoint/internal/app/features/shared" // registers the shared header/footer partials
	uploadapifeature "github.com/studypointin/studypoint/internal/app/features/uploadapi"
	chapterstore "github.com/studypointin/studypoint/internal/app/store/chapters"
	materialstore "github.com/studypointin/studypoint/internal/app/store/materials"
	subjectstore "github.com/studypointin/studypoint/internal/app/store/subjects"
	userstore "github.com/studypointin/studypoint/internal/app/store/users"
	"github.com/studypointin/studypoint/internal/app/system/auth"
	"github.com/studypointin/studypoint/internal/app/system/storage"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. It creates the session manager, boots the
// template engine, wires the feature routers, and returns the assembled
// chi router.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// Initialize and boot the template engine once at startup.
	// Dev mode enables template reloading for faster iteration.
	eng := templates.New(coreCfg.Env == "dev")
	if err := eng.Boot(logger); err != nil {
		logger.Error("template engine boot failed", zap.Error(err))
		return nil, err
	}
	templates.UseEngine(eng, logger)

	errLog := errorsfeature.NewErrorLogger(logger)

	subjects := subjectstore.New(deps.MongoDatabase)
	chapters := chapterstore.New(deps.MongoDatabase)
	materials := materialstore.New(deps.MongoDatabase)
	users := userstore.New(deps.MongoDatabase)

	r := chi.NewRouter()

	// Global auth middleware: loads SessionUser into context if logged in.
	r.Use(sessionMgr.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Static assets with pre-compressed file support (gzip/brotli)
	r.Handle("/static/*", fileserver.Handler("/static", "public"))

	// When materials are stored on local disk, serve them directly. With S3
	// storage the material URLs point at the bucket instead.
	if local, ok := deps.Files.(*storage.Local); ok {
		prefix := appCfg.StorageLocalURL
		fs := http.StripPrefix(prefix, http.FileServer(http.Dir(local.Dir())))
		r.Handle(prefix+"/*", fs)
	}

	// The upload API sits outside CSRF protection: it is session-cookie and
	// admin-role gated, and the bulk-upload pipeline re-submits to it with
	// only the caller's cookie attached.
	uploadHandler := uploadapifeature.NewHandler(materials, deps.Files, logger)
	uploadHandler.MaxBodyBytes = appCfg.UploadMaxBodyBytes
	r.Mount("/api/upload", uploadapifeature.Routes(uploadHandler, sessionMgr))

	// Everything below renders HTML forms, so it goes through CSRF.
	protect := csrf.Protect(
		[]byte(appCfg.CSRFKey),
		csrf.Secure(secure),
		csrf.Path("/"),
	)

	r.Group(func(r chi.Router) {
		r.Use(protect)

		// Public pages
		homeHandler := homefeature.NewHandler(subjects, materials, errLog, logger)
		r.Mount("/", homefeature.Routes(homeHandler))

		contentHandler := contentfeature.NewHandler(subjects, chapters, materials, deps.Files, errLog, logger)
		r.Mount("/subjects", contentfeature.Routes(contentHandler))
		r.Mount("/materials", contentfeature.FileRoutes(contentHandler))

		// Authentication
		loginHandler := loginfeature.NewHandler(users, sessionMgr, errLog, logger)
		r.Mount("/login", loginfeature.Routes(loginHandler))

		logoutHandler := logoutfeature.NewHandler(sessionMgr, logger)
		r.Mount("/logout", logoutfeature.Routes(logoutHandler, sessionMgr))

		// Error pages
		errorsHandler := errorsfeature.NewHandler()
		r.Get("/forbidden", errorsHandler.Forbidden)
		r.Get("/unauthorized", errorsHandler.Unauthorized)

		// Admin bulk upload. The registry holds one in-memory batch per
		// admin; the janitor reclaims batches abandoned past the idle TTL.
		registry := bulkuploadfeature.NewRegistry(appCfg.BulkIdleTTL, logger)
		go registry.Janitor(context.Background())

		bulkHandler := bulkuploadfeature.NewHandler(
			registry,
			subjects,
			chapters,
			errLog,
			appCfg.BaseURL+"/api/upload",
			appCfg.BulkSpoolDir,
			logger,
		)
		r.Mount("/admin/bulk-upload", bulkuploadfeature.Routes(bulkHandler, sessionMgr))
	})

	return r, nil
}
